package sim

import "github.com/milk9111/vrcam/host"

const handleIDBits = 32

// Handles pack a slot id in the low bits and the slot generation in the high
// bits, so a handle to a destroyed entity never matches a later one reusing
// its slot.
func makeHandle(id, gen uint32) host.Handle {
	return host.Handle(uint64(gen)<<handleIDBits | uint64(id))
}

func handleID(h host.Handle) uint32 {
	return uint32(h)
}

func handleGen(h host.Handle) uint32 {
	return uint32(uint64(h) >> handleIDBits)
}

// handleStore tracks slot generations and free slots. Slot ids start at 1.
type handleStore struct {
	gen  []uint32
	free []uint32
}

func (s *handleStore) create() host.Handle {
	var id uint32
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.gen = append(s.gen, 0)
		id = uint32(len(s.gen))
	}
	return makeHandle(id, s.gen[id-1])
}

func (s *handleStore) destroy(h host.Handle) bool {
	if !s.alive(h) {
		return false
	}
	id := handleID(h)
	s.gen[id-1]++
	s.free = append(s.free, id)
	return true
}

func (s *handleStore) alive(h host.Handle) bool {
	id := handleID(h)
	if id == 0 || int(id) > len(s.gen) {
		return false
	}
	return s.gen[id-1] == handleGen(h)
}
