package telemetry

import "testing"

func TestPublishDropsWhenQueueFull(t *testing.T) {
	pub := New("tcp://unused:1883", "test-client", "isp/events")

	// No Connect(): the draining goroutine never starts, so the queue
	// (capacity 256) fills and every event past that is dropped.
	for i := 0; i < 256; i++ {
		pub.Publish(Event{Kind: EventFrameComplete, Frame: uint64(i)})
	}
	if got := pub.Stats().Dropped; got != 0 {
		t.Fatalf("Dropped = %d before the queue filled, want 0", got)
	}

	pub.Publish(Event{Kind: EventFrameComplete, Frame: 256})
	pub.Publish(Event{Kind: EventUnderrun, Frame: 257})

	stats := pub.Stats()
	if stats.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", stats.Dropped)
	}
	if stats.Published != 0 {
		t.Errorf("Published = %d, want 0 (no connection was ever established)", stats.Published)
	}
}

func TestStatsSnapshotInitiallyZero(t *testing.T) {
	pub := New("tcp://unused:1883", "test-client", "isp/events")
	stats := pub.Stats()
	if stats != (Stats{}) {
		t.Errorf("initial Stats() = %+v, want zero value", stats)
	}
}
