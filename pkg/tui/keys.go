package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Select     key.Binding
	Back       key.Binding
	Refresh    key.Binding
	Stop       key.Binding
	OctaveDown key.Binding
	OctaveUp   key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "less")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "more")),
		Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh devices")),
		Stop:       key.NewBinding(key.WithKeys("s", "esc"), key.WithHelp("s", "stop")),
		OctaveDown: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "octave down")),
		OctaveUp:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "octave up")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// bindings returns the keys that apply to a screen, for the help line
func (k keyMap) bindings(s State) []key.Binding {
	switch s {
	case StateInput:
		return []key.Binding{k.Up, k.Down, k.Select, k.Refresh, k.Quit}
	case StateOutput:
		return []key.Binding{k.Up, k.Down, k.Select, k.Back, k.Quit}
	case StateRouting:
		return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Select, k.Back, k.Quit}
	default:
		return []key.Binding{k.OctaveDown, k.OctaveUp, k.Stop, k.Quit}
	}
}
