// Package notify carries forwarding notifications from the loop goroutine
// to slower consumers without ever blocking the loop.
package notify

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultCapacity bounds how many notifications wait for the consumer
const DefaultCapacity = 4096

// DefaultInterval is how often Pump drains the queue
const DefaultInterval = 100 * time.Millisecond

// Kind says what a Notification reports
type Kind int

const (
	KindLog Kind = iota
	KindNoteOn
	KindNoteOff
)

func (k Kind) String() string {
	switch k {
	case KindNoteOn:
		return "note_on"
	case KindNoteOff:
		return "note_off"
	default:
		return "log"
	}
}

// MarshalText renders Kind as its name in JSON
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Notification is one message from the forwarding loop
type Notification struct {
	Kind Kind      `json:"kind"`
	Text string    `json:"text,omitempty"`
	Note uint8     `json:"note,omitempty"`
	Time time.Time `json:"time"`
}

// Queue is a bounded FIFO with one producer and one consumer. It implements
// forwarder.Observer; when the consumer falls behind new notifications are
// dropped rather than stalling the producer.
type Queue struct {
	ch      chan Notification
	dropped atomic.Uint64
	now     func() time.Time
}

// NewQueue returns a queue holding up to capacity notifications
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		ch:  make(chan Notification, capacity),
		now: time.Now,
	}
}

func (q *Queue) OnLog(text string) {
	q.push(Notification{Kind: KindLog, Text: text})
}

func (q *Queue) OnNoteActivate(note uint8) {
	q.push(Notification{Kind: KindNoteOn, Note: note})
}

func (q *Queue) OnNoteDeactivate(note uint8) {
	q.push(Notification{Kind: KindNoteOff, Note: note})
}

func (q *Queue) push(n Notification) {
	n.Time = q.now()
	select {
	case q.ch <- n:
	default:
		q.dropped.Add(1)
	}
}

// Drain returns everything queued so far, oldest first, without blocking
func (q *Queue) Drain() []Notification {
	var out []Notification
	for {
		select {
		case n := <-q.ch:
			out = append(out, n)
		default:
			return out
		}
	}
}

// Len returns the number of queued notifications
func (q *Queue) Len() int {
	return len(q.ch)
}

// Dropped returns how many notifications were discarded on a full queue
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

// Sink consumes drained notifications
type Sink interface {
	Handle(n Notification)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(Notification)

func (f SinkFunc) Handle(n Notification) { f(n) }

// Pump drains q every interval and hands each notification to every sink
// in order, until ctx is done. A final drain runs before it returns.
func Pump(ctx context.Context, q *Queue, interval time.Duration, sinks ...Sink) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	deliver := func() {
		for _, n := range q.Drain() {
			for _, s := range sinks {
				s.Handle(n)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			deliver()
			return
		case <-ticker.C:
			deliver()
		}
	}
}
