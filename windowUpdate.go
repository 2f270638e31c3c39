package h2proto

import "github.com/haberdash/h2proto/wire"

var (
	_ Frame     = (*WindowUpdate)(nil)
	_ validator = (*WindowUpdate)(nil)
)

// WindowUpdate represents a WINDOW_UPDATE frame carrying a 31-bit
// increment.
//
// https://tools.ietf.org/html/rfc7540#section-6.9
type WindowUpdate struct {
	increment uint32
}

func (wu *WindowUpdate) Type() FrameType { return FrameWindowUpdate }

func (wu *WindowUpdate) Reset() { wu.increment = 0 }

func (wu *WindowUpdate) CopyTo(w *WindowUpdate) { w.increment = wu.increment }

func (wu *WindowUpdate) Increment() uint32 { return wu.increment }

// SetIncrement sets the increment. Values above 2^31-1 are rejected by
// Validate at Generate time.
func (wu *WindowUpdate) SetIncrement(increment uint32) { wu.increment = increment }

func (wu *WindowUpdate) Validate() error {
	if wire.Mask31(wu.increment) != wu.increment {
		return NewCompressionError("window-update increment exceeds 2^31-1")
	}
	return nil
}

func (wu *WindowUpdate) Deserialize(frh *FrameHeader) error {
	if len(frh.payload) < 4 {
		return NewProtocolError(FrameSizeError, "WINDOW_UPDATE payload truncated")
	}
	wu.increment = wire.Mask31(wire.BytesToUint32(frh.payload))
	return nil
}

func (wu *WindowUpdate) Serialize(frh *FrameHeader) {
	frh.setPayload(wire.AppendUint32Bytes(frh.payload[:0], wu.increment))
}
