package notify

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestQueuePreservesOrder(t *testing.T) {
	q := NewQueue(8)
	q.OnLog("NoteOn channel: 1, note: 60, velocity: 100")
	q.OnNoteActivate(60)
	q.OnLog("NoteOff channel: 1, note: 60, velocity: 0")
	q.OnNoteDeactivate(60)

	got := q.Drain()
	want := []Kind{KindLog, KindNoteOn, KindLog, KindNoteOff}
	if len(got) != len(want) {
		t.Fatalf("Drain() returned %d notifications, want %d", len(got), len(want))
	}
	for i, k := range want {
		if got[i].Kind != k {
			t.Errorf("got[%d].Kind = %v, want %v", i, got[i].Kind, k)
		}
	}
	if got[1].Note != 60 || got[3].Note != 60 {
		t.Errorf("notes = %d, %d, want 60", got[1].Note, got[3].Note)
	}
	if q.Len() != 0 {
		t.Errorf("Len() after Drain = %d", q.Len())
	}
}

func TestQueueDropsWhenFull(t *testing.T) {
	q := NewQueue(2)
	q.OnLog("a")
	q.OnLog("b")
	q.OnLog("c")

	got := q.Drain()
	if len(got) != 2 || got[0].Text != "a" || got[1].Text != "b" {
		t.Errorf("Drain() = %+v, want a, b", got)
	}
	if q.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", q.Dropped())
	}
}

func TestDrainEmpty(t *testing.T) {
	if got := NewQueue(0).Drain(); got != nil {
		t.Errorf("Drain() = %v, want nil", got)
	}
}

func TestPumpDeliversToAllSinks(t *testing.T) {
	q := NewQueue(16)

	var mu sync.Mutex
	var a, b []Notification
	sinkA := SinkFunc(func(n Notification) { mu.Lock(); a = append(a, n); mu.Unlock() })
	sinkB := SinkFunc(func(n Notification) { mu.Lock(); b = append(b, n); mu.Unlock() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Pump(ctx, q, time.Millisecond, sinkA, sinkB)
		close(done)
	}()

	q.OnNoteActivate(64)
	q.OnNoteDeactivate(64)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("sinks got %d and %d notifications, want 2 each", len(a), len(b))
	}
	if a[0].Kind != KindNoteOn || a[1].Kind != KindNoteOff {
		t.Errorf("order = %v, %v", a[0].Kind, a[1].Kind)
	}
}
