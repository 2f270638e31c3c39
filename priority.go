package h2proto

import "github.com/haberdash/h2proto/wire"

var _ Frame = (*Priority)(nil)

// Priority represents a PRIORITY frame: {exclusive, dependency, weight}.
//
// https://tools.ietf.org/html/rfc7540#section-6.3
type Priority struct {
	exclusive  bool
	dependency uint32
	weight     uint16 // 1..256
}

func (pry *Priority) Type() FrameType { return FramePriority }

func (pry *Priority) Reset() {
	pry.exclusive = false
	pry.dependency = 0
	pry.weight = 16
}

func (pry *Priority) CopyTo(p *Priority) {
	p.exclusive = pry.exclusive
	p.dependency = pry.dependency
	p.weight = pry.weight
}

func (pry *Priority) Exclusive() bool    { return pry.exclusive }
func (pry *Priority) Dependency() uint32 { return pry.dependency }
func (pry *Priority) Weight() uint16     { return pry.weight }

// SetPriority sets the exclusive/dependency/weight triple. weight must
// be in 1..256.
func (pry *Priority) SetPriority(exclusive bool, dependency uint32, weight uint16) {
	pry.exclusive = exclusive
	pry.dependency = wire.Mask31(dependency)
	pry.weight = weight
}

func (pry *Priority) Deserialize(frh *FrameHeader) error {
	if len(frh.payload) < 5 {
		return NewProtocolError(FrameSizeError, "PRIORITY payload truncated")
	}

	raw := wire.BytesToUint32(frh.payload[:4])
	pry.exclusive = raw&(1<<31) != 0
	pry.dependency = wire.Mask31(raw)
	pry.weight = uint16(frh.payload[4]) + 1

	if pry.dependency == frh.Stream() {
		return NewProtocolError(ProtocolErrorCode, "PRIORITY self-dependency")
	}

	return nil
}

func (pry *Priority) Serialize(frh *FrameHeader) {
	dep := pry.dependency
	if pry.exclusive {
		dep |= 1 << 31
	}

	payload := wire.AppendUint32Bytes(frh.payload[:0], dep)

	w := pry.weight
	if w == 0 {
		w = 16
	}
	payload = append(payload, byte(w-1))

	frh.setPayload(payload)
}
