package h2stream

// Priority is the (weight, dependency, exclusive) triple carried by a
// PRIORITY frame or a HEADERS frame's priority prefix.
type Priority struct {
	Exclusive  bool
	Dependency uint32
	Weight     uint8 // wire weight-1; effective weight is Weight+1
}

// DefaultWeight is the wire weight-1 value corresponding to the
// default effective weight of 16 ("priority weight (default
// 16)").
const DefaultWeight uint8 = 15

// ApplyPriority updates the stream's local weight/dependency bookkeeping
// and, when reg is non-nil, p.Exclusive is set and the referenced
// dependency exists, re-points every other stream depending on it to
// depend on this stream instead.
func (s *Stream) ApplyPriority(reg *Registry, p Priority) {
	s.weight = p.Weight
	s.dependency = p.Dependency
	s.exclusive = p.Exclusive

	if reg == nil || p.Dependency == 0 {
		return
	}
	if reg.Get(p.Dependency) == nil {
		return
	}
	if p.Exclusive {
		reg.dependOn(p.Dependency, s.id)
	}
}

// PriorityFromHeaders extracts the priority triple a HEADERS frame
// carried, converting its 1..256 wire weight to the Weight-1 form
// Priority stores.
func PriorityFromHeaders(exclusive bool, dependency uint32, weight uint16) Priority {
	return Priority{Exclusive: exclusive, Dependency: dependency, Weight: uint8(weight - 1)}
}

// Weight returns the effective priority weight (1..256).
func (s *Stream) Weight() int { return int(s.weight) + 1 }

// Dependency returns the stream id this stream depends on, or 0.
func (s *Stream) Dependency() uint32 { return s.dependency }
