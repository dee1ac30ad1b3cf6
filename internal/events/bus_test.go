package events

import "testing"

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()
	a, cancelA := bus.Subscribe()
	b, cancelB := bus.Subscribe()
	defer cancelA()
	defer cancelB()

	bus.Publish(Event{Topic: TopicOverride, DayKey: "2025-10-13", Version: 2})

	for _, ch := range []<-chan Event{a, b} {
		ev := <-ch
		if ev.Topic != TopicOverride || ev.DayKey != "2025-10-13" || ev.Version != 2 {
			t.Fatalf("unexpected event %+v", ev)
		}
	}
}

func TestCancelClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	cancel()

	if _, open := <-ch; open {
		t.Fatal("channel should be closed after cancel")
	}
	// A second cancel and later publishes are harmless.
	cancel()
	bus.Publish(Event{Topic: TopicBanner})
}

func TestPublishNeverBlocks(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	// Overfill the subscriber buffer; extra events are dropped.
	for i := 0; i < 20; i++ {
		bus.Publish(Event{Topic: TopicRace})
	}
	if len(ch) != cap(ch) {
		t.Fatalf("expected a full buffer of %d, got %d", cap(ch), len(ch))
	}
}
