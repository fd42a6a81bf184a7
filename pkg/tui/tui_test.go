package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"gitlab.com/gomidi/midi/v2"

	"github.com/james-see/midiunion/pkg/device/devicetest"
	"github.com/james-see/midiunion/pkg/forwarder"
	"github.com/james-see/midiunion/pkg/notify"
	"github.com/james-see/midiunion/pkg/router"
)

func newModel(t *testing.T, opts ...Option) (Model, *devicetest.Driver, *forwarder.Forwarder) {
	t.Helper()
	drv := devicetest.New([]string{"Keys", "Pads"}, []string{"Synth"})
	q := notify.NewQueue(64)
	fwd := forwarder.New(drv, forwarder.WithObserver(q))
	t.Cleanup(fwd.Stop)

	m := New(fwd, q, opts...)
	ins, outs, _ := fwd.Devices()
	m = update(m, devicesMsg{inputs: ins, outputs: outs})
	return m, drv, fwd
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m = update(m, msg)
	}
	return m
}

func TestSelectDevicesAndStart(t *testing.T) {
	m, drv, fwd := newModel(t)

	m = press(m, "down", "enter")
	if m.state != StateOutput || m.wantInput != "Pads" {
		t.Fatalf("state = %v, input = %q", m.state, m.wantInput)
	}
	m = press(m, "enter")
	if m.state != StateRouting || m.wantOutput != "Synth" {
		t.Fatalf("state = %v, output = %q", m.state, m.wantOutput)
	}

	// uniform -> channel 3
	m = press(m, "down", "right", "right", "right")
	if m.routing.OverrideChannel != router.Ch(2) {
		t.Fatalf("override channel = %v, want 3", m.routing.OverrideChannel)
	}

	m = press(m, "enter")
	if m.state != StateRunning || fwd.State() != forwarder.Running {
		t.Fatalf("state = %v, forwarder = %v", m.state, fwd.State())
	}
	if !strings.HasPrefix(m.status, "Forwarding Pads -> Synth") {
		t.Errorf("status = %q", m.status)
	}

	drv.Inject("Pads", midi.NoteOn(0, 60, 100))
	deadline := time.Now().Add(2 * time.Second)
	for !m.active[60] && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
		m = update(m, tickMsg(time.Now()))
	}
	if !m.active[60] {
		t.Fatalf("note 60 not highlighted")
	}
	if sent := drv.Sent("Synth"); len(sent) != 1 || sent[0][0] != 0x92 {
		t.Errorf("sent = %v", sent)
	}

	m = press(m, "s")
	if m.state != StateRouting || fwd.State() != forwarder.Idle {
		t.Errorf("after stop: state = %v, forwarder = %v", m.state, fwd.State())
	}
	if len(m.active) != 0 || m.status != "Stopped" {
		t.Errorf("after stop: active = %v, status = %q", m.active, m.status)
	}
}

func TestStartFailureShowsError(t *testing.T) {
	m, drv, fwd := newModel(t, WithDevices("Keys", "Synth"))
	drv.FailOpen("Synth", devicetest.ErrSendFailed)

	m = press(m, "enter", "enter", "enter")
	if m.state != StateRouting {
		t.Errorf("state = %v, want routing", m.state)
	}
	if fwd.State() != forwarder.Idle || !strings.HasPrefix(m.status, "Error: ") {
		t.Errorf("forwarder = %v, status = %q", fwd.State(), m.status)
	}
}

func TestSessionErrorReturnsToRouting(t *testing.T) {
	m, drv, _ := newModel(t, WithDevices("Keys", "Synth"))
	m = press(m, "enter", "enter", "enter")
	if m.state != StateRunning {
		t.Fatalf("state = %v", m.state)
	}

	drv.SetSendError(devicetest.ErrSendFailed)
	drv.Inject("Keys", midi.NoteOn(0, 60, 100))

	deadline := time.Now().Add(2 * time.Second)
	for m.state == StateRunning && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
		m = update(m, tickMsg(time.Now()))
	}
	if m.state != StateRouting || !strings.HasPrefix(m.status, "Error: ") {
		t.Errorf("state = %v, status = %q", m.state, m.status)
	}
}

func TestRoutingFormSplit(t *testing.T) {
	m, _, _ := newModel(t, WithDevices("Keys", "Synth"))
	m = press(m, "enter", "enter")

	m = press(m, "right") // mode -> split
	if m.routing.Mode != router.ModeSplit {
		t.Fatalf("mode = %v", m.routing.Mode)
	}
	if got := len(formFields(m.routing)); got != 6 {
		t.Fatalf("split form has %d fields", got)
	}

	// cutoff 4 -> 5, above transpose +1
	m = press(m, "down", "right", "down", "down", "down", "down", "right")
	if m.routing.CutoffOctave != 5 || m.routing.Above.Transpose != 1 {
		t.Errorf("routing = %+v", m.routing)
	}

	// back to uniform clamps the cursor
	m = press(m, "up", "up", "up", "up", "up", "left", "down", "down", "down")
	if m.routing.Mode != router.ModeUniform || m.fieldIndex != 1 {
		t.Errorf("mode = %v, fieldIndex = %d", m.routing.Mode, m.fieldIndex)
	}
}

func TestOctaveShift(t *testing.T) {
	m, _, _ := newModel(t, WithDevices("Keys", "Synth"))
	m = press(m, "enter", "enter", "enter")

	m = press(m, "]", "]", "]", "]", "]")
	if m.displayOctave != maxDisplayOctave {
		t.Errorf("displayOctave = %d, want %d", m.displayOctave, maxDisplayOctave)
	}
	for i := 0; i < 20; i++ {
		m = press(m, "[")
	}
	if m.displayOctave != minDisplayOctave {
		t.Errorf("displayOctave = %d, want %d", m.displayOctave, minDisplayOctave)
	}
}

func TestAppendLog(t *testing.T) {
	var log []string
	for _, line := range []string{"one", "two", "three", "four"} {
		log = appendLog(log, line)
	}
	if strings.Join(log, ",") != "two,three,four" {
		t.Errorf("log = %q", log)
	}

	log = appendLog(nil, strings.Repeat("x", 100))
	if len(log[0]) != logWidth {
		t.Errorf("line length = %d, want %d", len(log[0]), logWidth)
	}
}

func TestStepChannel(t *testing.T) {
	tests := []struct {
		from  router.Channel
		delta int
		want  router.Channel
	}{
		{router.Omni, 1, router.Ch(0)},
		{router.Ch(15), 1, router.Omni},
		{router.Omni, -1, router.Ch(15)},
		{router.Ch(0), -1, router.Omni},
	}
	for _, tt := range tests {
		if got := stepChannel(tt.from, tt.delta); got != tt.want {
			t.Errorf("stepChannel(%v, %d) = %v, want %v", tt.from, tt.delta, got, tt.want)
		}
	}
}

func TestRenderPiano(t *testing.T) {
	out := renderPiano(4, map[uint8]bool{60: true})
	for _, name := range []string{"C4", "B4", "C6", "B6"} {
		if !strings.Contains(out, name) {
			t.Errorf("piano missing %s:\n%s", name, out)
		}
	}
	if strings.Contains(out, "C7") {
		t.Errorf("piano shows more than three octaves")
	}

	// top of the range has keys past note 127
	if out := renderPiano(maxDisplayOctave, nil); !strings.Contains(out, "G9") || strings.Contains(out, "A9") {
		t.Errorf("top octave rendering:\n%s", out)
	}
}

func TestViewScreens(t *testing.T) {
	m, _, _ := newModel(t)
	if v := m.View(); !strings.Contains(v, "SELECT INPUT") || !strings.Contains(v, "Keys") {
		t.Errorf("input view:\n%s", v)
	}
	m = press(m, "enter", "enter")
	if v := m.View(); !strings.Contains(v, "ROUTING") || !strings.Contains(v, "omni") {
		t.Errorf("routing view:\n%s", v)
	}
}
