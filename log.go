package h2proto

import (
	"io"
	"log"
	"os"
)

// logger is the package-level logger. The core never logs on the hot
// path (per-frame Generate/Parse); it only notes the seams the
// connection layer is expected to watch, such as an unrecognized
// SETTINGS id arriving over the wire.
var logger = log.New(os.Stderr, "[h2proto] ", log.LstdFlags)

// SetOutput redirects the package logger, letting the connection layer
// route these notes into its own logging pipeline instead of stderr.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}
