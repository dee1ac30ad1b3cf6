// Package events is a small in-process pub/sub bus. Admin mutations publish
// here and connected clients pick the events up over the websocket stream,
// so an override or banner change reaches open sessions without polling.
package events

import "sync"

// Topics published by the server.
const (
	TopicOverride = "override-updated"
	TopicBanner   = "banner-updated"
	TopicRace     = "race-updated"
)

// Event is one published notification. DayKey and Version are set for
// override events so clients can discard state that no longer matches.
type Event struct {
	Topic   string `json:"topic"`
	DayKey  string `json:"dayKey,omitempty"`
	Version int64  `json:"version,omitempty"`
}

// Bus fans events out to subscribers. Publishing never blocks; a subscriber
// that falls behind its buffer misses events rather than stalling the
// publisher.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Event
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The cancel func releases it; after cancel
// returns the channel is closed.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, 8)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber with buffer room.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
