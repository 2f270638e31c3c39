package h2stream

import "sort"

// Registry is the stream-id → stream collaborator the connection layer
// supplies so PRIORITY/HEADERS dependency updates can re-point sibling
// streams. It keeps streams sorted by id in a flat slice.
type Registry struct {
	list []*Stream
}

// Insert adds s to the registry, keeping the list sorted by id.
func (r *Registry) Insert(s *Stream) {
	i := sort.Search(len(r.list), func(i int) bool {
		return r.list[i].id >= s.id
	})
	if i == len(r.list) {
		r.list = append(r.list, s)
		return
	}
	r.list = append(r.list, nil)
	copy(r.list[i+1:], r.list[i:])
	r.list[i] = s
}

// Del removes and returns the stream with the given id, or nil.
func (r *Registry) Del(id uint32) *Stream {
	i := sort.Search(len(r.list), func(i int) bool {
		return r.list[i].id >= id
	})
	if i < len(r.list) && r.list[i].id == id {
		s := r.list[i]
		r.list = append(r.list[:i], r.list[i+1:]...)
		return s
	}
	return nil
}

// Get returns the stream with the given id, or nil.
func (r *Registry) Get(id uint32) *Stream {
	i := sort.Search(len(r.list), func(i int) bool {
		return r.list[i].id >= id
	})
	if i < len(r.list) && r.list[i].id == id {
		return r.list[i]
	}
	return nil
}

// Len returns the number of registered streams.
func (r *Registry) Len() int { return len(r.list) }

// dependOn re-points every stream currently depending on old to instead
// depend on newParent, implementing the exclusive-insertion reparenting
// for PRIORITY/HEADERS updates that change a stream's parent.
func (r *Registry) dependOn(old, newParent uint32) {
	for _, s := range r.list {
		if s.id != newParent && s.dependency == old {
			s.dependency = newParent
		}
	}
}
