package h2proto

import (
	"fmt"

	"github.com/haberdash/h2proto/wire"
)

var _ Frame = (*GoAway)(nil)

// GoAway represents a GOAWAY frame: last-stream-id, error code, and an
// opaque debug payload.
//
// https://tools.ietf.org/html/rfc7540#section-6.8
type GoAway struct {
	lastStreamID uint32
	code         ErrorCode
	data         []byte
}

func (ga *GoAway) Error() string {
	return fmt.Sprintf("GOAWAY last_stream=%d code=%s data=%q", ga.lastStreamID, ga.code, ga.data)
}

func (ga *GoAway) Type() FrameType { return FrameGoAway }

func (ga *GoAway) Reset() {
	ga.lastStreamID = 0
	ga.code = 0
	ga.data = ga.data[:0]
}

func (ga *GoAway) CopyTo(other *GoAway) {
	other.lastStreamID = ga.lastStreamID
	other.code = ga.code
	other.data = append(other.data[:0], ga.data...)
}

func (ga *GoAway) Code() ErrorCode        { return ga.code }
func (ga *GoAway) SetCode(code ErrorCode) { ga.code = code }

func (ga *GoAway) LastStreamID() uint32        { return ga.lastStreamID }
func (ga *GoAway) SetLastStreamID(stream uint32) { ga.lastStreamID = wire.Mask31(stream) }

func (ga *GoAway) Data() []byte        { return ga.data }
func (ga *GoAway) SetData(b []byte)    { ga.data = append(ga.data[:0], b...) }

func (ga *GoAway) Deserialize(frh *FrameHeader) error {
	if len(frh.payload) < 8 {
		return NewProtocolError(FrameSizeError, "GOAWAY payload truncated")
	}

	ga.lastStreamID = wire.Mask31(wire.BytesToUint32(frh.payload[:4]))
	ga.code = ErrorCode(wire.BytesToUint32(frh.payload[4:8]))

	if rest := frh.payload[8:]; len(rest) != 0 {
		ga.data = append(ga.data[:0], rest...)
	} else {
		ga.data = ga.data[:0]
	}

	return nil
}

func (ga *GoAway) Serialize(frh *FrameHeader) {
	payload := wire.AppendUint32Bytes(frh.payload[:0], ga.lastStreamID)
	payload = wire.AppendUint32Bytes(payload, uint32(ga.code))
	payload = append(payload, ga.data...)

	frh.setPayload(payload)
}
