package h2proto

import "github.com/haberdash/h2proto/wire"

var _ Frame = (*RstStream)(nil)

// RstStream represents a RST_STREAM frame carrying a 32-bit error code.
//
// https://tools.ietf.org/html/rfc7540#section-6.4
type RstStream struct {
	code ErrorCode
}

func (rst *RstStream) Type() FrameType { return FrameRstStream }

func (rst *RstStream) Code() ErrorCode    { return rst.code }
func (rst *RstStream) SetCode(c ErrorCode) { rst.code = c }
func (rst *RstStream) Reset()             { rst.code = 0 }
func (rst *RstStream) CopyTo(r *RstStream) { r.code = rst.code }

func (rst *RstStream) Deserialize(frh *FrameHeader) error {
	if len(frh.payload) < 4 {
		return NewProtocolError(FrameSizeError, "RST_STREAM payload truncated")
	}
	rst.code = ErrorCode(wire.BytesToUint32(frh.payload))
	return nil
}

func (rst *RstStream) Serialize(frh *FrameHeader) {
	frh.setPayload(wire.AppendUint32Bytes(frh.payload[:0], uint32(rst.code)))
}
