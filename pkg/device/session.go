package device

import (
	"errors"
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2"
)

// DefaultMaxPending bounds how many received messages a session buffers between polls
const DefaultMaxPending = 1024

// Event is one received message with the driver timestamp in milliseconds
type Event struct {
	Message   midi.Message
	Timestamp int32
}

// Session owns an opened input/output pair. Received messages are buffered
// until the next Poll; sends are synchronous.
type Session struct {
	InputID  string
	OutputID string

	in  Input
	out Output

	mu         sync.Mutex
	pending    []Event
	maxPending int
	dropped    uint64
	recvErr    error

	sendMu sync.RWMutex
	closed bool
}

// Option configures a Session
type Option func(*Session)

// WithMaxPending overrides DefaultMaxPending
func WithMaxPending(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxPending = n
		}
	}
}

// Open opens both devices and starts buffering input. Either both handles
// are open on return or neither is.
func Open(drv Driver, inputID, outputID string, opts ...Option) (*Session, error) {
	if inputID == "" || outputID == "" {
		return nil, fmt.Errorf("%w: select both an input and an output device", ErrConfiguration)
	}

	s := &Session{
		InputID:    inputID,
		OutputID:   outputID,
		maxPending: DefaultMaxPending,
	}
	for _, opt := range opts {
		opt(s)
	}

	in, err := drv.OpenInput(inputID)
	if err != nil {
		return nil, fmt.Errorf("%w: input %q: %v", ErrDeviceUnavailable, inputID, err)
	}

	out, err := drv.OpenOutput(outputID)
	if err != nil {
		_ = in.Close()
		return nil, fmt.Errorf("%w: output %q: %v", ErrDeviceUnavailable, outputID, err)
	}

	s.in = in
	s.out = out

	if err := in.Listen(s.receive, s.receiveFailed); err != nil {
		_ = in.Close()
		_ = out.Close()
		return nil, fmt.Errorf("%w: listen on %q: %v", ErrDeviceUnavailable, inputID, err)
	}

	return s, nil
}

// receive runs on the driver's callback goroutine
func (s *Session) receive(msg midi.Message, timestampms int32) {
	// drivers may reuse the buffer
	cp := make(midi.Message, len(msg))
	copy(cp, msg)

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) >= s.maxPending {
		s.pending = s.pending[1:]
		s.dropped++
	}
	s.pending = append(s.pending, Event{Message: cp, Timestamp: timestampms})
}

// receiveFailed keeps the first error the input reports
func (s *Session) receiveFailed(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recvErr == nil {
		s.recvErr = err
	}
}

// Poll returns the messages received since the last call, in arrival order.
// It never blocks on the transport.
func (s *Session) Poll() ([]Event, error) {
	s.sendMu.RLock()
	closed := s.closed
	s.sendMu.RUnlock()
	if closed {
		return nil, fmt.Errorf("%w: poll on closed session", ErrTransportIO)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recvErr != nil {
		return nil, fmt.Errorf("%w: receive from %q: %v", ErrTransportIO, s.InputID, s.recvErr)
	}
	if len(s.pending) == 0 {
		return nil, nil
	}
	events := s.pending
	s.pending = nil
	return events, nil
}

// Send writes msg to the output. A send that loses a race with Close
// fails with ErrTransportIO.
func (s *Session) Send(msg midi.Message) error {
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()
	if s.closed {
		return fmt.Errorf("%w: send on closed session", ErrTransportIO)
	}
	if err := s.out.Send(msg); err != nil {
		return fmt.Errorf("%w: send to %q: %v", ErrTransportIO, s.OutputID, err)
	}
	return nil
}

// Dropped returns how many messages were discarded because nobody polled
func (s *Session) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Closed reports whether Close has been called
func (s *Session) Closed() bool {
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()
	return s.closed
}

// Close releases both handles. Calling it again is a no-op.
func (s *Session) Close() error {
	s.sendMu.Lock()
	if s.closed {
		s.sendMu.Unlock()
		return nil
	}
	s.closed = true
	s.sendMu.Unlock()

	errIn := s.in.Close()
	errOut := s.out.Close()

	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()

	return errors.Join(errIn, errOut)
}
