// Package device opens MIDI input/output pairs and exposes them as a polled session
package device

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Input is an opened input port delivering messages to a callback.
// onErr is called when the port fails while receiving.
type Input interface {
	Listen(recv func(msg midi.Message, timestampms int32), onErr func(error)) error
	Close() error
}

// Output is an opened output port
type Output interface {
	Send(msg midi.Message) error
	Close() error
}

// Driver lists and opens MIDI ports by name
type Driver interface {
	Inputs() ([]string, error)
	Outputs() ([]string, error)
	OpenInput(id string) (Input, error)
	OpenOutput(id string) (Output, error)
}

// GoMIDI is the Driver backed by the registered gomidi driver. Binaries
// register one with a blank import of gitlab.com/gomidi/midi/v2/drivers/rtmididrv.
type GoMIDI struct{}

// NewGoMIDI returns the gomidi backed driver
func NewGoMIDI() *GoMIDI {
	return &GoMIDI{}
}

func (GoMIDI) Inputs() ([]string, error) {
	return portNames(midi.GetInPorts()), nil
}

func (GoMIDI) Outputs() ([]string, error) {
	return portNames(midi.GetOutPorts()), nil
}

func (GoMIDI) OpenInput(id string) (Input, error) {
	in, err := midi.FindInPort(id)
	if err != nil {
		return nil, fmt.Errorf("find input %q: %w", id, err)
	}
	return &goMIDIInput{port: in}, nil
}

func (GoMIDI) OpenOutput(id string) (Output, error) {
	out, err := midi.FindOutPort(id)
	if err != nil {
		return nil, fmt.Errorf("find output %q: %w", id, err)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output %q: %w", id, err)
	}
	return &goMIDIOutput{port: out, send: send}, nil
}

// Close shuts down the registered gomidi driver
func (GoMIDI) Close() {
	midi.CloseDriver()
}

type goMIDIInput struct {
	port drivers.In
	stop func()
}

func (i *goMIDIInput) Listen(recv func(msg midi.Message, timestampms int32), onErr func(error)) error {
	stop, err := midi.ListenTo(i.port, recv, midi.HandleError(onErr))
	if err != nil {
		return err
	}
	i.stop = stop
	return nil
}

func (i *goMIDIInput) Close() error {
	if i.stop != nil {
		i.stop()
		i.stop = nil
	}
	return i.port.Close()
}

type goMIDIOutput struct {
	port drivers.Out
	send func(msg midi.Message) error
}

func (o *goMIDIOutput) Send(msg midi.Message) error {
	return o.send(msg)
}

func (o *goMIDIOutput) Close() error {
	return o.port.Close()
}

func portNames[T fmt.Stringer](ports []T) []string {
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	return names
}
