// Package tui provides a terminal user interface for midiunion
package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/midiunion/pkg/forwarder"
	"github.com/james-see/midiunion/pkg/notify"
	"github.com/james-see/midiunion/pkg/router"
)

const (
	// logLines is how many message log lines stay on screen
	logLines = 3
	// logWidth truncates each log line
	logWidth = 60
)

// State represents the current TUI screen
type State int

const (
	StateInput State = iota
	StateOutput
	StateRouting
	StateRunning
)

// Model represents the TUI model
type Model struct {
	fwd     *forwarder.Forwarder
	queue   *notify.Queue
	sinks   []notify.Sink
	refresh time.Duration
	keys    keyMap
	help    help.Model
	spinner spinner.Model

	state       State
	inputs      []string
	outputs     []string
	inputIndex  int
	outputIndex int
	wantInput   string
	wantOutput  string

	routing       router.Config
	fieldIndex    int
	displayOctave int
	active        map[uint8]bool
	log           []string
	status        string
	err           error
	width         int
}

// Option configures the model
type Option func(*Model)

// WithRefreshInterval sets how often notifications are drained
func WithRefreshInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.refresh = d
		}
	}
}

// WithRouting presets the routing form
func WithRouting(cfg router.Config) Option {
	return func(m *Model) { m.routing = cfg }
}

// WithDevices preselects devices by name once they are listed
func WithDevices(input, output string) Option {
	return func(m *Model) {
		m.wantInput = input
		m.wantOutput = output
	}
}

// WithSinks forwards every drained notification to sinks as well
func WithSinks(sinks ...notify.Sink) Option {
	return func(m *Model) { m.sinks = append(m.sinks, sinks...) }
}

// devicesMsg carries the result of a device listing
type devicesMsg struct {
	inputs  []string
	outputs []string
	err     error
}

// tickMsg triggers a drain of the notification queue
type tickMsg time.Time

// New creates a new TUI model. queue must be the observer fwd reports to.
func New(fwd *forwarder.Forwarder, queue *notify.Queue, opts ...Option) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(acidGreen)

	m := Model{
		fwd:           fwd,
		queue:         queue,
		refresh:       notify.DefaultInterval,
		keys:          newKeyMap(),
		help:          help.New(),
		spinner:       s,
		state:         StateInput,
		routing:       router.DefaultConfig(),
		displayOctave: defaultDisplayOctave,
		active:        make(map[uint8]bool),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listDevices(), m.tick(), m.spinner.Tick)
}

func (m Model) listDevices() tea.Cmd {
	fwd := m.fwd
	return func() tea.Msg {
		ins, outs, err := fwd.Devices()
		return devicesMsg{inputs: ins, outputs: outs, err: err}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case devicesMsg:
		m.err = msg.err
		m.inputs = msg.inputs
		m.outputs = msg.outputs
		m.inputIndex = indexOf(m.inputs, m.wantInput)
		m.outputIndex = indexOf(m.outputs, m.wantOutput)
		return m, nil

	case tickMsg:
		m = m.drain()
		return m, m.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.fwd.Stop()
			return m, tea.Quit
		}
		switch m.state {
		case StateInput:
			return m.updateInput(msg)
		case StateOutput:
			return m.updateOutput(msg)
		case StateRouting:
			return m.updateRouting(msg)
		case StateRunning:
			return m.updateRunning(msg)
		}
	}

	return m, nil
}

// drain applies queued notifications and notices a session that ended on
// its own
func (m Model) drain() Model {
	for _, n := range m.queue.Drain() {
		for _, s := range m.sinks {
			s.Handle(n)
		}
		switch n.Kind {
		case notify.KindNoteOn:
			m.active[n.Note] = true
		case notify.KindNoteOff:
			delete(m.active, n.Note)
		default:
			m.log = appendLog(m.log, n.Text)
		}
	}

	if m.state == StateRunning && m.fwd.State() == forwarder.Idle {
		m.state = StateRouting
		m.active = make(map[uint8]bool)
		if err := m.fwd.Err(); err != nil {
			m.err = err
			m.status = "Error: " + err.Error()
		} else {
			m.status = "Stopped"
		}
	}
	return m
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.inputIndex > 0 {
			m.inputIndex--
		}
	case key.Matches(msg, m.keys.Down):
		if m.inputIndex < len(m.inputs)-1 {
			m.inputIndex++
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.listDevices()
	case key.Matches(msg, m.keys.Select):
		if len(m.inputs) == 0 {
			return m, nil
		}
		m.wantInput = m.inputs[m.inputIndex]
		m.state = StateOutput
	}
	return m, nil
}

func (m Model) updateOutput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.outputIndex > 0 {
			m.outputIndex--
		}
	case key.Matches(msg, m.keys.Down):
		if m.outputIndex < len(m.outputs)-1 {
			m.outputIndex++
		}
	case key.Matches(msg, m.keys.Back):
		m.state = StateInput
	case key.Matches(msg, m.keys.Select):
		if len(m.outputs) == 0 {
			return m, nil
		}
		m.wantOutput = m.outputs[m.outputIndex]
		m.state = StateRouting
	}
	return m, nil
}

func (m Model) updateRouting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fields := formFields(m.routing)
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.fieldIndex > 0 {
			m.fieldIndex--
		}
	case key.Matches(msg, m.keys.Down):
		if m.fieldIndex < len(fields)-1 {
			m.fieldIndex++
		}
	case key.Matches(msg, m.keys.Left):
		m.routing = adjust(m.routing, fields[m.fieldIndex], -1)
	case key.Matches(msg, m.keys.Right):
		m.routing = adjust(m.routing, fields[m.fieldIndex], 1)
	case key.Matches(msg, m.keys.Back):
		m.state = StateOutput
	case key.Matches(msg, m.keys.Select):
		return m.start()
	}
	if n := len(formFields(m.routing)); m.fieldIndex >= n {
		m.fieldIndex = n - 1
	}
	return m, nil
}

func (m Model) start() (tea.Model, tea.Cmd) {
	if err := m.fwd.Start(m.wantInput, m.wantOutput, m.routing); err != nil {
		m.err = err
		m.status = "Error: " + err.Error()
		return m, nil
	}
	m.err = nil
	m.active = make(map[uint8]bool)
	m.status = fmt.Sprintf("Forwarding %s -> %s (%s)", m.wantInput, m.wantOutput, m.routing)
	m.state = StateRunning
	return m, nil
}

func (m Model) updateRunning(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.OctaveDown):
		m.displayOctave = clampDisplayOctave(m.displayOctave - 1)
	case key.Matches(msg, m.keys.OctaveUp):
		m.displayOctave = clampDisplayOctave(m.displayOctave + 1)
	case key.Matches(msg, m.keys.Stop):
		m.fwd.Stop()
		m = m.drain()
		m.active = make(map[uint8]bool)
		m.status = "Stopped"
		m.state = StateRouting
	}
	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateInput:
		s.WriteString(m.viewList(" SELECT INPUT ", m.inputs, m.inputIndex))
	case StateOutput:
		s.WriteString(m.viewList(" SELECT OUTPUT ", m.outputs, m.outputIndex))
	case StateRouting:
		s.WriteString(m.viewRouting())
	case StateRunning:
		s.WriteString(m.viewRunning())
	}

	s.WriteString("\n")
	s.WriteString(m.help.ShortHelpView(m.keys.bindings(m.state)))

	return s.String()
}

func (m Model) viewList(title string, items []string, index int) string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")

	if len(items) == 0 {
		s.WriteString(menuStyle.Render("No devices found"))
		s.WriteString("\n")
	}
	for i, item := range items {
		if i == index {
			s.WriteString(selectedStyle.Render("▸ " + item))
		} else {
			s.WriteString(menuStyle.Render("  " + item))
		}
		s.WriteString("\n")
	}
	if m.err != nil {
		s.WriteString(errorStyle.Render("✗ " + m.err.Error()))
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewRouting() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" ROUTING "))
	s.WriteString("\n\n")
	s.WriteString(menuStyle.Render(fmt.Sprintf("%s -> %s", m.wantInput, m.wantOutput)))
	s.WriteString("\n\n")

	for i, f := range formFields(m.routing) {
		line := fmt.Sprintf("%-20s %s", f.label(), valueStyle.Render(fieldValue(m.routing, f)))
		if i == m.fieldIndex {
			s.WriteString(selectedStyle.Render("▸ " + line))
		} else {
			s.WriteString(menuStyle.Render("  " + line))
		}
		s.WriteString("\n")
	}

	if m.status != "" {
		style := statusStyle
		if m.err != nil {
			style = errorStyle
		}
		s.WriteString(style.Render(m.status))
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewRunning() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" FORWARDING "))
	s.WriteString("\n\n")
	s.WriteString(renderPiano(m.displayOctave, m.active))
	s.WriteString("\n")
	s.WriteString(statusStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.status)))
	s.WriteString("\n")
	s.WriteString(menuStyle.Render(fmt.Sprintf("Showing octaves %d-%d", m.displayOctave, m.displayOctave+pianoOctaves-1)))
	s.WriteString("\n\n")
	for _, line := range m.log {
		s.WriteString(logStyle.Render(line))
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

// appendLog keeps the last logLines lines, each cut to logWidth characters
func appendLog(log []string, line string) []string {
	if utf8.RuneCountInString(line) > logWidth {
		line = string([]rune(line)[:logWidth])
	}
	log = append(log, line)
	if len(log) > logLines {
		log = log[len(log)-logLines:]
	}
	return log
}

func indexOf(items []string, want string) int {
	for i, item := range items {
		if item == want {
			return i
		}
	}
	return 0
}

func asciiLogo() string {
	logo := `
   __  __  ___  ____   ___  _   _  _   _  ___   ___   _   _
  |  \/  ||_ _||  _ \ |_ _|| | | || \ | ||_ _| / _ \ | \ | |
  | |\/| | | | | | | | | | | | | ||  \| | | | | | | ||  \| |
  | |  | | | | | |_| | | | | |_| || |\  | | | | |_| || |\  |
  |_|  |_||___||____/ |___| \___/ |_| \_||___| \___/ |_| \_|
`
	return lipgloss.NewStyle().Foreground(acidGreen).Render(logo)
}

// Run starts the TUI application and stops forwarding when it exits
func Run(fwd *forwarder.Forwarder, queue *notify.Queue, opts ...Option) error {
	defer fwd.Stop()
	p := tea.NewProgram(New(fwd, queue, opts...), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
