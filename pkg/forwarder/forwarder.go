// Package forwarder runs the forwarding loop: it polls a device session,
// routes every message through the active policy, sends the result and
// reports what was sent to an Observer.
package forwarder

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/james-see/midiunion/pkg/device"
	"github.com/james-see/midiunion/pkg/logging"
	"github.com/james-see/midiunion/pkg/router"
)

// DefaultInterval is the polling cadence of a running session
const DefaultInterval = time.Millisecond

// State is the lifecycle state of a Forwarder
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// MarshalText lets State render as a string in JSON
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Observer receives notifications from the forwarding loop. Calls are made
// on the loop goroutine, in message order, and must not block.
type Observer interface {
	OnLog(text string)
	OnNoteActivate(note uint8)
	OnNoteDeactivate(note uint8)
}

type nopObserver struct{}

func (nopObserver) OnLog(string)           {}
func (nopObserver) OnNoteActivate(uint8)   {}
func (nopObserver) OnNoteDeactivate(uint8) {}

// Status is a snapshot of the forwarder
type Status struct {
	State     State          `json:"state"`
	SessionID string         `json:"session_id,omitempty"`
	Input     string         `json:"input,omitempty"`
	Output    string         `json:"output,omitempty"`
	Routing   *router.Config `json:"routing,omitempty"`
	StartedAt *time.Time     `json:"started_at,omitempty"`
	Forwarded uint64         `json:"forwarded"`
	Dropped   uint64         `json:"dropped"`
	LastError string         `json:"last_error,omitempty"`
}

// Forwarder owns at most one running session at a time
type Forwarder struct {
	driver   device.Driver
	interval time.Duration
	logger   *logging.Logger
	observer Observer
	notes    *NoteSet

	mu      sync.Mutex
	run     *run
	lastErr error
}

type run struct {
	id        string
	session   *device.Session
	policy    router.Policy
	cancel    context.CancelFunc
	done      chan struct{}
	started   time.Time
	forwarded atomic.Uint64
}

// Option configures a Forwarder
type Option func(*Forwarder)

// WithInterval sets the polling cadence
func WithInterval(d time.Duration) Option {
	return func(f *Forwarder) {
		if d > 0 {
			f.interval = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(f *Forwarder) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithObserver sets the observer notified about forwarded messages
func WithObserver(o Observer) Option {
	return func(f *Forwarder) {
		if o != nil {
			f.observer = o
		}
	}
}

// New creates an idle Forwarder for drv
func New(drv device.Driver, opts ...Option) *Forwarder {
	f := &Forwarder{
		driver:   drv,
		interval: DefaultInterval,
		logger:   logging.Nop(),
		observer: nopObserver{},
		notes:    NewNoteSet(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With("component", "forwarder")
	return f
}

// Devices lists the input and output names the driver currently sees
func (f *Forwarder) Devices() (inputs, outputs []string, err error) {
	if inputs, err = f.driver.Inputs(); err != nil {
		return nil, nil, fmt.Errorf("list inputs: %w", err)
	}
	if outputs, err = f.driver.Outputs(); err != nil {
		return nil, nil, fmt.Errorf("list outputs: %w", err)
	}
	return inputs, outputs, nil
}

// Start opens both devices and begins forwarding with cfg. On any error the
// forwarder stays Idle with no device left open.
func (f *Forwarder) Start(inputID, outputID string, cfg router.Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.run != nil {
		return ErrRunning
	}
	if inputID == "" || outputID == "" {
		return fmt.Errorf("%w: select both an input and an output device", ErrConfiguration)
	}

	policy, err := router.NewPolicy(cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	session, err := device.Open(f.driver, inputID, outputID)
	if err != nil {
		f.lastErr = err
		f.logger.Warn("failed to open devices", "input", inputID, "output", outputID, "error", err)
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &run{
		id:      uuid.NewString(),
		session: session,
		policy:  policy,
		cancel:  cancel,
		done:    make(chan struct{}),
		started: time.Now(),
	}
	f.run = r
	f.lastErr = nil

	f.logger.Info("forwarding started",
		"session", r.id,
		"input", inputID,
		"output", outputID,
		"routing", cfg.String(),
	)
	f.observer.OnLog(fmt.Sprintf("Forwarding %s -> %s (%s)", inputID, outputID, cfg))

	go f.loop(ctx, r)
	return nil
}

// Stop asks the loop to finish at its next cycle boundary, then closes the
// devices. Messages not yet polled are dropped. Stop is safe to call at
// any time and any number of times.
func (f *Forwarder) Stop() {
	f.mu.Lock()
	r := f.run
	f.mu.Unlock()
	if r == nil {
		return
	}

	r.cancel()
	<-r.done
	if err := r.session.Close(); err != nil {
		f.logger.Warn("closing devices", "session", r.id, "error", err)
	}

	f.mu.Lock()
	if f.run == r {
		f.run = nil
		f.notes.Clear()
		f.logger.Info("forwarding stopped", "session", r.id, "forwarded", r.forwarded.Load())
		f.observer.OnLog("Stopped")
	}
	f.mu.Unlock()
}

// State returns Idle or Running
func (f *Forwarder) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.run == nil {
		return Idle
	}
	return Running
}

// Err returns the error that ended the last session, if any
func (f *Forwarder) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// ActiveNotes returns the notes currently sounding on the output
func (f *Forwarder) ActiveNotes() []uint8 {
	return f.notes.Snapshot()
}

// Status returns a snapshot of the forwarder
func (f *Forwarder) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := Status{State: Idle}
	if f.lastErr != nil {
		st.LastError = f.lastErr.Error()
	}
	r := f.run
	if r == nil {
		return st
	}

	cfg := r.policy.Config()
	st.State = Running
	st.SessionID = r.id
	st.Input = r.session.InputID
	st.Output = r.session.OutputID
	st.Routing = &cfg
	st.StartedAt = &r.started
	st.Forwarded = r.forwarded.Load()
	st.Dropped = r.session.Dropped()
	return st
}

func (f *Forwarder) loop(ctx context.Context, r *run) {
	defer close(r.done)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		// stop requests are only honored here, between cycles
		if ctx.Err() != nil {
			return
		}
		if err := f.cycle(r); err != nil {
			f.fail(r, err)
			return
		}
	}
}

func (f *Forwarder) cycle(r *run) error {
	events, err := r.session.Poll()
	if err != nil {
		return err
	}
	for _, ev := range events {
		res := r.policy.Apply(ev.Message)
		if err := r.session.Send(res.Message); err != nil {
			return err
		}
		r.forwarded.Add(1)
		f.emit(res)
	}
	return nil
}

func (f *Forwarder) emit(res router.Result) {
	f.observer.OnLog(router.Describe(res))

	switch {
	case router.IsNoteStart(res.Message):
		note := res.Message[1]
		f.notes.Add(note)
		f.observer.OnNoteActivate(note)
	case router.IsNoteEnd(res.Message):
		note := res.Message[1]
		f.notes.Remove(note)
		f.observer.OnNoteDeactivate(note)
	}
}

// fail ends a session after a transport error. No retry is attempted.
func (f *Forwarder) fail(r *run, err error) {
	f.logger.Error("forwarding failed", "session", r.id, "error", err)
	if cerr := r.session.Close(); cerr != nil {
		f.logger.Warn("closing devices", "session", r.id, "error", cerr)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.run != r {
		return
	}
	f.run = nil
	f.lastErr = err
	f.notes.Clear()
	f.observer.OnLog("Error: " + err.Error())
}
