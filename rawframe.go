package h2proto

// RawFrame carries frame types in the extensible (0x10..0xEF) or
// experimental (0xF0..0xFF) ranges verbatim. Generate
// round-trips TypeCode rather than coercing it to one of the nine known
// types, preserving the caller's override instead of silently
// normalizing it.
type RawFrame struct {
	typeCode FrameType
	payload  []byte
}

func (r *RawFrame) Type() FrameType { return r.typeCode }

// TypeCode returns the raw numeric frame type this frame was read with
// or will be written with.
func (r *RawFrame) TypeCode() FrameType { return r.typeCode }

// SetTypeCode overrides the numeric type used on Generate. Must fall in
// the extensible or experimental range.
func (r *RawFrame) SetTypeCode(t FrameType) { r.typeCode = t }

func (r *RawFrame) Payload() []byte { return r.payload }

func (r *RawFrame) SetPayload(b []byte) { r.payload = append(r.payload[:0], b...) }

func (r *RawFrame) Reset() {
	r.payload = r.payload[:0]
}

func (r *RawFrame) Deserialize(frh *FrameHeader) error {
	r.typeCode = frh.kind
	r.payload = append(r.payload[:0], frh.payload...)
	return nil
}

func (r *RawFrame) Serialize(frh *FrameHeader) {
	frh.setPayload(r.payload)
}
