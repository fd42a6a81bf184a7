// Package devicetest provides an in-memory device.Driver for tests
package devicetest

import (
	"errors"
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"github.com/james-see/midiunion/pkg/device"
)

var (
	// ErrSendFailed is a ready-made error for SetSendError
	ErrSendFailed = errors.New("devicetest: send failed")

	// ErrReceiveFailed is a ready-made error for FailReceive
	ErrReceiveFailed = errors.New("devicetest: port disconnected")
)

// Driver is a fake driver with fixed port names. Messages injected into an
// input are delivered to whoever listens on it; sends are recorded per output.
type Driver struct {
	mu        sync.Mutex
	inputs    []string
	outputs   []string
	openErr   map[string]error
	sendErr   error
	openIns   map[string]*input
	sent      map[string][]midi.Message
	closedIn  map[string]int
	closedOut map[string]int
}

// New returns a driver exposing the given input and output names
func New(inputs, outputs []string) *Driver {
	return &Driver{
		inputs:    inputs,
		outputs:   outputs,
		openErr:   make(map[string]error),
		openIns:   make(map[string]*input),
		sent:      make(map[string][]midi.Message),
		closedIn:  make(map[string]int),
		closedOut: make(map[string]int),
	}
}

// FailOpen makes opening the named port fail with err
func (d *Driver) FailOpen(id string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.openErr[id] = err
}

// SetSendError makes every subsequent send fail; nil restores sending
func (d *Driver) SetSendError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sendErr = err
}

// Inject delivers msg to the listener of the named input. It reports
// whether anyone was listening.
func (d *Driver) Inject(id string, msg midi.Message) bool {
	d.mu.Lock()
	in := d.openIns[id]
	d.mu.Unlock()
	if in == nil {
		return false
	}
	return in.deliver(msg)
}

// FailReceive reports err to the listener of the named input as if the
// port broke while receiving. It reports whether anyone was listening.
func (d *Driver) FailReceive(id string, err error) bool {
	d.mu.Lock()
	in := d.openIns[id]
	d.mu.Unlock()
	if in == nil {
		return false
	}
	return in.fail(err)
}

// Sent returns a copy of everything sent to the named output
func (d *Driver) Sent(id string) []midi.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]midi.Message, len(d.sent[id]))
	copy(out, d.sent[id])
	return out
}

// InputCloses returns how often the named input was closed
func (d *Driver) InputCloses(id string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closedIn[id]
}

// OutputCloses returns how often the named output was closed
func (d *Driver) OutputCloses(id string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closedOut[id]
}

func (d *Driver) Inputs() ([]string, error) {
	return append([]string(nil), d.inputs...), nil
}

func (d *Driver) Outputs() ([]string, error) {
	return append([]string(nil), d.outputs...), nil
}

func (d *Driver) OpenInput(id string) (device.Input, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.openErr[id]; err != nil {
		return nil, err
	}
	if !contains(d.inputs, id) {
		return nil, fmt.Errorf("no input %q", id)
	}
	in := &input{id: id, drv: d}
	d.openIns[id] = in
	return in, nil
}

func (d *Driver) OpenOutput(id string) (device.Output, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.openErr[id]; err != nil {
		return nil, err
	}
	if !contains(d.outputs, id) {
		return nil, fmt.Errorf("no output %q", id)
	}
	return &output{id: id, drv: d}, nil
}

type input struct {
	id    string
	drv   *Driver
	mu    sync.Mutex
	recv  func(midi.Message, int32)
	onErr func(error)
	ts    int32
}

func (i *input) Listen(recv func(msg midi.Message, timestampms int32), onErr func(error)) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.recv = recv
	i.onErr = onErr
	return nil
}

func (i *input) fail(err error) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.onErr == nil {
		return false
	}
	i.onErr(err)
	return true
}

func (i *input) deliver(msg midi.Message) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.recv == nil {
		return false
	}
	i.ts++
	i.recv(msg, i.ts)
	return true
}

func (i *input) Close() error {
	i.mu.Lock()
	i.recv = nil
	i.onErr = nil
	i.mu.Unlock()

	i.drv.mu.Lock()
	defer i.drv.mu.Unlock()
	if i.drv.openIns[i.id] == i {
		delete(i.drv.openIns, i.id)
	}
	i.drv.closedIn[i.id]++
	return nil
}

type output struct {
	id  string
	drv *Driver
}

func (o *output) Send(msg midi.Message) error {
	o.drv.mu.Lock()
	defer o.drv.mu.Unlock()
	if o.drv.sendErr != nil {
		return o.drv.sendErr
	}
	cp := make(midi.Message, len(msg))
	copy(cp, msg)
	o.drv.sent[o.id] = append(o.drv.sent[o.id], cp)
	return nil
}

func (o *output) Close() error {
	o.drv.mu.Lock()
	defer o.drv.mu.Unlock()
	o.drv.closedOut[o.id]++
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
