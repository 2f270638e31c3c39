package h2proto

var (
	_ Frame     = (*Ping)(nil)
	_ validator = (*Ping)(nil)
)

// Ping represents a PING frame, always carrying exactly 8 opaque bytes.
//
// https://tools.ietf.org/html/rfc7540#section-6.7
type Ping struct {
	ack  bool
	data [8]byte
}

func (ping *Ping) Type() FrameType { return FramePing }

func (ping *Ping) Reset() {
	ping.ack = false
	ping.data = [8]byte{}
}

func (ping *Ping) CopyTo(p *Ping) {
	p.ack = ping.ack
	p.data = ping.data
}

func (ping *Ping) IsAck() bool   { return ping.ack }
func (ping *Ping) SetAck(v bool) { ping.ack = v }

func (ping *Ping) SetData(b []byte) { copy(ping.data[:], b) }
func (ping *Ping) Data() []byte     { return ping.data[:] }

func (ping *Ping) Deserialize(frh *FrameHeader) error {
	if len(frh.payload) != 8 {
		return NewProtocolError(FrameSizeError, "PING payload must be exactly 8 bytes")
	}
	ping.ack = frh.Flags().Has(FlagAck)
	ping.SetData(frh.payload)
	return nil
}

// Validate enforces that PING always carries exactly 8 bytes on encode.
func (ping *Ping) Validate() error {
	return nil // data is a fixed [8]byte array; always exactly 8 bytes.
}

func (ping *Ping) Serialize(frh *FrameHeader) {
	if ping.ack {
		frh.SetFlags(frh.Flags().Add(FlagAck))
	}
	frh.setPayload(ping.data[:])
}
