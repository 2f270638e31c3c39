package h2proto

import "fmt"

// ErrorCode is the 32-bit HTTP/2 error code carried by RST_STREAM and
// GOAWAY frames.
type ErrorCode uint32

const (
	NoError            ErrorCode = 0x0
	ProtocolErrorCode  ErrorCode = 0x1
	InternalError      ErrorCode = 0x2
	FlowControlError   ErrorCode = 0x3
	SettingsTimeout    ErrorCode = 0x4
	StreamClosedCode   ErrorCode = 0x5
	FrameSizeError     ErrorCode = 0x6
	RefusedStreamError ErrorCode = 0x7
	CancelError        ErrorCode = 0x8
	CompressionErrCode ErrorCode = 0x9
	ConnectError       ErrorCode = 0xa
	EnhanceYourCalm    ErrorCode = 0xb
	InadequateSecurity ErrorCode = 0xc
)

var errorCodeNames = map[ErrorCode]string{
	NoError:            "no_error",
	ProtocolErrorCode:  "protocol_error",
	InternalError:      "internal_error",
	FlowControlError:   "flow_control_error",
	SettingsTimeout:    "settings_timeout",
	StreamClosedCode:   "stream_closed",
	FrameSizeError:     "frame_size_error",
	RefusedStreamError: "refused_stream",
	CancelError:        "cancel",
	CompressionErrCode: "compression_error",
	ConnectError:       "connect_error",
	EnhanceYourCalm:    "enhance_your_calm",
	InadequateSecurity: "inadequate_security",
}

// String implements fmt.Stringer so ErrorCode prints its symbolic name
// via a lookup table.
func (c ErrorCode) String() string {
	if s, ok := errorCodeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("error_code(0x%x)", uint32(c))
}

// CompressionError is raised by the HPACK codec on table-limit
// violations or invalid dynamic-table-size directives, and by the frame
// codec on invalid field values at encode time. It is connection-fatal.
type CompressionError struct {
	Code ErrorCode
	Msg  string
	// Descriptor optionally names the frame or header field that
	// triggered the error.
	Descriptor any
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("http2: compression error (%s): %s", e.Code, e.Msg)
}

// NewCompressionError builds a CompressionError with code CompressionErrCode.
func NewCompressionError(msg string) *CompressionError {
	return &CompressionError{Code: CompressionErrCode, Msg: msg}
}

// ProtocolError is raised by the frame parser on structural violations
// (pad > remaining, self-dependency). The stream state machine reports
// disallowed transitions as *StreamError instead. Named error codes
// (stream-closed, refused-stream, ...) are carried via Code.
type ProtocolError struct {
	Code ErrorCode
	Msg  string
	// Descriptor optionally names the frame or header field that
	// triggered the error.
	Descriptor any
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("http2: protocol error (%s): %s", e.Code, e.Msg)
}

// NewProtocolError builds a ProtocolError with the given named code.
func NewProtocolError(code ErrorCode, msg string) *ProtocolError {
	return &ProtocolError{Code: code, Msg: msg}
}

// StreamError is raised by the stream state machine. Kind carries the generic `stream-error` sentinel when
// no more specific code applies; RSTCode reports the code that must
// actually be placed on the outbound RST_STREAM, mapping the generic
// kind to ProtocolErrorCode rather than round-tripping it.
type StreamError struct {
	StreamID uint32
	Kind     ErrorCode
	RSTCode  ErrorCode
	Msg      string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("http2: stream %d error (%s): %s", e.StreamID, e.Kind, e.Msg)
}

// ErrGenericStreamError is the Kind used for stream errors that do not
// name a specific error code; NewStreamError maps it to ProtocolErrorCode
// on the wire.
const ErrGenericStreamError ErrorCode = 0xff00

// NewStreamError builds a StreamError, resolving the outbound RST_STREAM
// code to use when the caller has only a generic stream-error kind.
func NewStreamError(streamID uint32, kind ErrorCode, msg string) *StreamError {
	rst := kind
	if kind == ErrGenericStreamError {
		rst = ProtocolErrorCode
	}
	return &StreamError{StreamID: streamID, Kind: kind, RSTCode: rst, Msg: msg}
}
