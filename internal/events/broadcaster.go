package events

import "sync"

// Broadcaster fans out "cart changed" signals to subscribers of an owner.
// Signals carry no payload; a subscriber that has not drained its channel
// sees several publishes as one.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

type subscriber struct {
	ch chan struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[string]map[*subscriber]struct{}),
	}
}

// Subscribe returns the signal channel of ownerID and a cancel func that
// unregisters it and closes the channel. Cancel is safe to call more than once.
func (b *Broadcaster) Subscribe(ownerID string) (<-chan struct{}, func()) {
	s := &subscriber{ch: make(chan struct{}, 1)}

	b.mu.Lock()
	set, ok := b.subs[ownerID]
	if !ok {
		set = make(map[*subscriber]struct{})
		b.subs[ownerID] = set
	}
	set[s] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			delete(b.subs[ownerID], s)
			if len(b.subs[ownerID]) == 0 {
				delete(b.subs, ownerID)
			}
			close(s.ch)
		})
	}

	return s.ch, cancel
}

// Publish never blocks.
func (b *Broadcaster) Publish(ownerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for s := range b.subs[ownerID] {
		select {
		case s.ch <- struct{}{}:
		default:
		}
	}
}

func (b *Broadcaster) Subscribers(ownerID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subs[ownerID])
}
