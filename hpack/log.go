package hpack

import (
	"io"
	"log"
	"os"
)

// logger mirrors the root package's package-level logger
// convention. HPACK encoding never logs on the hot path; the one seam
// worth a note is an eviction cascade that fails to stabilize, which is
// also a connection-fatal compression error.
var logger = log.New(os.Stderr, "[h2proto/hpack] ", log.LstdFlags)

// SetOutput redirects the package logger, mirroring h2proto.SetOutput.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}
