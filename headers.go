package h2proto

import "github.com/haberdash/h2proto/wire"

var _ Frame = (*Headers)(nil)

// Headers represents a HEADERS frame. When the priority
// flag is present the payload carries a 5-byte prefix
// (exclusive-bit | 31-bit dependency, 8-bit weight-1) ahead of the
// header block fragment.
//
// https://tools.ietf.org/html/rfc7540#section-6.2
type Headers struct {
	padded     bool
	endStream  bool
	endHeaders bool

	hasPriority bool
	exclusive   bool
	dependency  uint32
	weight      uint16 // 1..256; the wire form stores weight-1 in one byte

	rawHeaders []byte
}

func (h *Headers) Type() FrameType { return FrameHeaders }

func (h *Headers) Reset() {
	h.padded = false
	h.endStream = false
	h.endHeaders = false
	h.hasPriority = false
	h.exclusive = false
	h.dependency = 0
	h.weight = 16
	h.rawHeaders = h.rawHeaders[:0]
}

func (h *Headers) CopyTo(h2 *Headers) {
	h2.padded = h.padded
	h2.endStream = h.endStream
	h2.endHeaders = h.endHeaders
	h2.hasPriority = h.hasPriority
	h2.exclusive = h.exclusive
	h2.dependency = h.dependency
	h2.weight = h.weight
	h2.rawHeaders = append(h2.rawHeaders[:0], h.rawHeaders...)
}

// HeaderBlock returns the (possibly partial, if CONTINUATION follows)
// header block fragment bytes for the HPACK codec to decode.
func (h *Headers) HeaderBlock() []byte { return h.rawHeaders }

// SetHeaderBlock sets the header block fragment bytes.
func (h *Headers) SetHeaderBlock(b []byte) { h.rawHeaders = append(h.rawHeaders[:0], b...) }

// AppendHeaderBlock appends to the header block fragment, used to
// reassemble CONTINUATION frames.
func (h *Headers) AppendHeaderBlock(b []byte) { h.rawHeaders = append(h.rawHeaders, b...) }

func (h *Headers) SetEndStream(v bool)  { h.endStream = v }
func (h *Headers) EndStream() bool      { return h.endStream }
func (h *Headers) SetEndHeaders(v bool) { h.endHeaders = v }
func (h *Headers) EndHeaders() bool     { return h.endHeaders }
func (h *Headers) Padded() bool         { return h.padded }
func (h *Headers) SetPadded(v bool)     { h.padded = v }

// HasPriority reports whether this HEADERS frame carries (or should
// serialize) the 5-byte priority prefix.
func (h *Headers) HasPriority() bool { return h.hasPriority }

// Exclusive, Dependency and Weight describe the stream priority carried
// in the frame when HasPriority is true; Weight defaults to 16 and
// ranges 1..256.
func (h *Headers) Exclusive() bool    { return h.exclusive }
func (h *Headers) Dependency() uint32 { return h.dependency }
func (h *Headers) Weight() uint16     { return h.weight }

// SetPriority marks the frame as carrying priority data. weight must be
// in 1..256; Generate synthesizes the priority flag whenever exclusive,
// a non-zero dependency, or a weight other than 16 is set.
func (h *Headers) SetPriority(exclusive bool, dependency uint32, weight uint16) {
	h.exclusive = exclusive
	h.dependency = wire.Mask31(dependency)
	h.weight = weight
	h.hasPriority = true
}

func (h *Headers) Deserialize(frh *FrameHeader) error {
	payload := frh.payload

	if frh.Flags().Has(FlagPadded) {
		var err error
		payload, err = wire.CutPadding(payload, frh.Len())
		if err != nil {
			return NewProtocolError(ProtocolErrorCode, err.Error())
		}
		h.padded = true
	}

	h.weight = 16
	h.exclusive = false
	h.dependency = 0
	h.hasPriority = frh.Flags().Has(FlagPriority)

	if h.hasPriority {
		if len(payload) < 5 {
			return NewProtocolError(FrameSizeError, "HEADERS priority prefix truncated")
		}
		raw := wire.BytesToUint32(payload[:4])
		h.exclusive = raw&(1<<31) != 0
		h.dependency = wire.Mask31(raw)
		h.weight = uint16(payload[4]) + 1
		payload = payload[5:]

		if h.dependency == frh.Stream() {
			return NewProtocolError(ProtocolErrorCode, "HEADERS self-dependency")
		}
	}

	h.endStream = frh.Flags().Has(FlagEndStream)
	h.endHeaders = frh.Flags().Has(FlagEndHeaders)
	h.rawHeaders = append(h.rawHeaders[:0], payload...)

	return nil
}

func (h *Headers) Serialize(frh *FrameHeader) {
	if h.endStream {
		frh.SetFlags(frh.Flags().Add(FlagEndStream))
	}
	if h.endHeaders {
		frh.SetFlags(frh.Flags().Add(FlagEndHeaders))
	}

	emitPriority := h.hasPriority || h.exclusive || h.dependency != 0 || (h.weight != 0 && h.weight != 16)

	payload := frh.payload[:0]
	if emitPriority {
		frh.SetFlags(frh.Flags().Add(FlagPriority))

		dep := h.dependency
		if h.exclusive {
			dep |= 1 << 31
		}
		payload = wire.AppendUint32Bytes(payload, dep)

		w := h.weight
		if w == 0 {
			w = 16
		}
		payload = append(payload, byte(w-1))
	}

	payload = append(payload, h.rawHeaders...)

	if h.padded {
		frh.SetFlags(frh.Flags().Add(FlagPadded))
	}

	frh.setPayload(payload)
}
