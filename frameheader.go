package h2proto

import (
	"sync"

	"github.com/haberdash/h2proto/wire"
)

// CommonHeaderSize is the size in bytes of the frame header shared by
// every HTTP/2 frame type: 16-bit length, 8-bit type, 8-bit flags,
// 32-bit stream-id (draft-06 framing; the final RFC 7540 header widens
// the length field to 24 bits and grows to 9 bytes, which this codec
// does not implement).
const CommonHeaderSize = 8

// MaxFramePayload is the largest payload length Generate will produce.
// Parse does not check it: it accepts any length the 16-bit field
// carries.
const MaxFramePayload = 1<<14 - 1 // 16383

var frameHeaderPool = sync.Pool{New: func() any { return &FrameHeader{} }}

// FrameHeader is the parsed/to-be-generated common header plus the
// type-specific body, read from and written to the Buffer host
// service.
type FrameHeader struct {
	length int
	kind   FrameType
	flags  FrameFlags
	stream uint32

	payload []byte
	fr      Frame
}

// AcquireFrameHeader returns a pooled FrameHeader.
func AcquireFrameHeader() *FrameHeader {
	frh := frameHeaderPool.Get().(*FrameHeader)
	frh.Reset()
	return frh
}

// ReleaseFrameHeader releases fr's body (if any) and returns frh to the pool.
func ReleaseFrameHeader(frh *FrameHeader) {
	ReleaseFrame(frh.fr)
	frameHeaderPool.Put(frh)
}

// Reset clears all fields for reuse.
func (frh *FrameHeader) Reset() {
	frh.kind = 0
	frh.flags = 0
	frh.stream = 0
	frh.length = 0
	frh.fr = nil
	frh.payload = frh.payload[:0]
}

func (frh *FrameHeader) Type() FrameType     { return frh.kind }
func (frh *FrameHeader) Flags() FrameFlags   { return frh.flags }
func (frh *FrameHeader) SetFlags(f FrameFlags) { frh.flags = f }
func (frh *FrameHeader) Stream() uint32      { return frh.stream }
func (frh *FrameHeader) SetStream(id uint32) { frh.stream = wire.Mask31(id) }
func (frh *FrameHeader) Len() int            { return frh.length }
func (frh *FrameHeader) Body() Frame         { return frh.fr }

// SetBody attaches fr as the header's body, adopting its frame type.
func (frh *FrameHeader) SetBody(fr Frame) {
	if fr == nil {
		panic("h2proto: frame body cannot be nil")
	}
	frh.kind = fr.Type()
	frh.fr = fr
}

func (frh *FrameHeader) setPayload(b []byte) {
	frh.payload = append(frh.payload[:0], b...)
}

// Generate serializes frh (which must already have a body set via
// SetBody) into wire bytes, applying every Generate
// validation rule. Errors are *CompressionError.
func Generate(frh *FrameHeader) ([]byte, error) {
	if frh.fr == nil {
		return nil, NewCompressionError("frame has no body")
	}

	if raw, ok := frh.fr.(*RawFrame); ok {
		frh.kind = raw.typeCode
	} else {
		frh.kind = frh.fr.Type()
	}

	if !knownFrameType(frh.kind) && !isExtensionRange(frh.kind) {
		return nil, NewCompressionError("unknown frame type")
	}

	if wire.Mask31(frh.stream) != frh.stream {
		return nil, NewCompressionError("stream id exceeds 31 bits")
	}

	if frh.kind == FrameSettings && frh.stream != 0 {
		return nil, NewCompressionError("SETTINGS stream id must be 0")
	}

	if v, ok := frh.fr.(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}

	frh.fr.Serialize(frh)
	frh.length = len(frh.payload)

	if frh.length > MaxFramePayload {
		return nil, NewCompressionError("payload exceeds maximum frame length")
	}

	out := make([]byte, CommonHeaderSize+frh.length)
	out[0] = byte(frh.length >> 8)
	out[1] = byte(frh.length)
	out[2] = byte(frh.kind)
	out[3] = byte(frh.flags)
	wire.Uint32ToBytes(out[4:8], frh.stream)
	copy(out[8:], frh.payload)

	return out, nil
}

// Parse reads one frame from buf. It returns (nil, nil) and leaves buf's
// cursor untouched when fewer than CommonHeaderSize+length bytes are
// available. Structural violations return
// *ProtocolError.
func Parse(buf *wire.Buffer) (*FrameHeader, error) {
	mark := buf.Mark()

	header, err := buf.Peek(CommonHeaderSize)
	if err != nil {
		return nil, nil
	}

	length := int(wire.BytesToUint16(header[:2]))
	kind := FrameType(header[2])
	flags := FrameFlags(header[3])
	stream := wire.Mask31(wire.BytesToUint32(header[4:8]))

	if buf.Len() < CommonHeaderSize+length {
		buf.Rewind(mark)
		return nil, nil
	}

	buf.ReadN(CommonHeaderSize)
	payload, _ := buf.ReadN(length)

	frh := AcquireFrameHeader()
	frh.length = length
	frh.kind = kind
	frh.flags = flags
	frh.stream = stream
	frh.setPayload(payload)

	if !knownFrameType(kind) {
		if !isExtensionRange(kind) {
			ReleaseFrameHeader(frh)
			buf.Rewind(mark)
			return nil, NewProtocolError(ProtocolErrorCode, "unknown frame type")
		}
		raw := &RawFrame{typeCode: kind}
		frh.fr = raw
		if err := raw.Deserialize(frh); err != nil {
			ReleaseFrameHeader(frh)
			return nil, err
		}
		return frh, nil
	}

	body := AcquireFrame(kind)
	frh.fr = body

	if err := body.Deserialize(frh); err != nil {
		ReleaseFrameHeader(frh)
		return nil, err
	}

	return frh, nil
}
