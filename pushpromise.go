package h2proto

import "github.com/haberdash/h2proto/wire"

var _ Frame = (*PushPromise)(nil)

// PushPromise represents a PUSH_PROMISE frame.
//
// https://tools.ietf.org/html/rfc7540#section-6.6
type PushPromise struct {
	padded           bool
	endHeaders       bool
	promisedStreamID uint32
	rawHeaders       []byte // header block fragment
}

func (pp *PushPromise) Type() FrameType { return FramePushPromise }

func (pp *PushPromise) Reset() {
	pp.padded = false
	pp.endHeaders = false
	pp.promisedStreamID = 0
	pp.rawHeaders = pp.rawHeaders[:0]
}

func (pp *PushPromise) PromisedStreamID() uint32 { return pp.promisedStreamID }
func (pp *PushPromise) SetPromisedStreamID(id uint32) {
	pp.promisedStreamID = wire.Mask31(id)
}

func (pp *PushPromise) HeaderBlock() []byte       { return pp.rawHeaders }
func (pp *PushPromise) SetHeaderBlock(b []byte)    { pp.rawHeaders = append(pp.rawHeaders[:0], b...) }
func (pp *PushPromise) AppendHeaderBlock(b []byte) { pp.rawHeaders = append(pp.rawHeaders, b...) }

func (pp *PushPromise) SetEndHeaders(v bool) { pp.endHeaders = v }
func (pp *PushPromise) EndHeaders() bool     { return pp.endHeaders }
func (pp *PushPromise) Padded() bool         { return pp.padded }
func (pp *PushPromise) SetPadded(v bool)     { pp.padded = v }

func (pp *PushPromise) Deserialize(frh *FrameHeader) error {
	payload := frh.payload

	if frh.Flags().Has(FlagPadded) {
		var err error
		payload, err = wire.CutPadding(payload, frh.Len())
		if err != nil {
			return NewProtocolError(ProtocolErrorCode, err.Error())
		}
		pp.padded = true
	}

	if len(payload) < 4 {
		return NewProtocolError(FrameSizeError, "PUSH_PROMISE payload truncated")
	}

	pp.promisedStreamID = wire.Mask31(wire.BytesToUint32(payload))
	pp.rawHeaders = append(pp.rawHeaders[:0], payload[4:]...)
	pp.endHeaders = frh.Flags().Has(FlagEndHeaders)

	return nil
}

func (pp *PushPromise) Serialize(frh *FrameHeader) {
	if pp.endHeaders {
		frh.SetFlags(frh.Flags().Add(FlagEndHeaders))
	}
	if pp.padded {
		frh.SetFlags(frh.Flags().Add(FlagPadded))
	}

	payload := wire.AppendUint32Bytes(frh.payload[:0], pp.promisedStreamID)
	payload = append(payload, pp.rawHeaders...)

	frh.setPayload(payload)
}
