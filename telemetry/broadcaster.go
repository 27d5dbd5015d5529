package telemetry

import (
	"sync"
)

// Broadcaster fans frames out to subscribers. Slow subscribers miss frames
// rather than stall the game loop. The latest frame is replayed to new
// subscribers.
type Broadcaster struct {
	mu       sync.RWMutex
	subs     map[int]chan Frame
	nextID   int
	last     Frame
	haveLast bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[int]chan Frame),
	}
}

func (b *Broadcaster) Subscribe(buffer int) (int, <-chan Frame) {
	if b == nil {
		return 0, nil
	}
	if buffer <= 0 {
		buffer = 4
	}
	ch := make(chan Frame, buffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	last := b.last
	have := b.haveLast
	b.mu.Unlock()
	if have {
		select {
		case ch <- last:
		default:
		}
	}
	return id, ch
}

func (b *Broadcaster) Unsubscribe(id int) {
	if b == nil {
		return
	}
	b.mu.Lock()
	ch, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish never blocks.
func (b *Broadcaster) Publish(f Frame) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- f:
		default:
		}
	}
	b.last = f
	b.haveLast = true
}

// Last returns the most recent frame.
func (b *Broadcaster) Last() (Frame, bool) {
	if b == nil {
		return Frame{}, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last, b.haveLast
}

func (b *Broadcaster) Subscribers() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
