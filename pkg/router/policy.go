package router

import (
	"gitlab.com/gomidi/midi/v2"
)

// Transform records what a policy changed in a message. Pointers are nil
// when the corresponding field was left alone.
type Transform struct {
	FromChannel *uint8
	ToChannel   *uint8
	FromNote    *uint8
	ToNote      *uint8
}

// Changed reports whether any field was rewritten
func (t Transform) Changed() bool {
	return t.ToChannel != nil || t.ToNote != nil
}

// Result is the outcome of applying a policy to one message
type Result struct {
	Original  midi.Message
	Message   midi.Message // what should be sent
	Transform Transform
}

// Policy maps an incoming message to the message that is forwarded
type Policy interface {
	Apply(msg midi.Message) Result
	Config() Config
}

// NewPolicy returns the policy variant selected by the shape of cfg
func NewPolicy(cfg Config) (Policy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Mode {
	case ModeSplit:
		return &CutoffSplit{cfg: cfg}, nil
	default:
		return &Uniform{cfg: cfg}, nil
	}
}

// Uniform overrides the channel of every channel-voice message
type Uniform struct {
	cfg Config
}

func (u *Uniform) Config() Config {
	return u.cfg
}

// Apply rewrites the channel unless the override is Omni
func (u *Uniform) Apply(msg midi.Message) Result {
	res := Result{Original: msg, Message: msg}
	if u.cfg.OverrideChannel.IsOmni() || !IsChannelVoice(msg) {
		return res
	}
	out := clone(msg)
	setChannel(out, uint8(u.cfg.OverrideChannel), &res.Transform)
	res.Message = out
	return res
}

// CutoffSplit routes notes below and at-or-above a cutoff octave through
// separate channel and transpose rules.
type CutoffSplit struct {
	cfg Config
}

func (s *CutoffSplit) Config() Config {
	return s.cfg
}

// RuleFor returns the rule a note falls under. The cutoff octave itself
// belongs to the above zone.
func (s *CutoffSplit) RuleFor(note uint8) Rule {
	if Octave(note) < s.cfg.CutoffOctave {
		return s.cfg.Below
	}
	return s.cfg.Above
}

// Apply rewrites NoteOn/NoteOff messages; everything else passes through
func (s *CutoffSplit) Apply(msg midi.Message) Result {
	res := Result{Original: msg, Message: msg}
	if !IsNote(msg) {
		return res
	}
	note := msg[1]
	rule := s.RuleFor(note)

	var out midi.Message
	if !rule.Channel.IsOmni() {
		out = clone(msg)
		setChannel(out, uint8(rule.Channel), &res.Transform)
	}

	// a rejected transpose leaves the note alone, channel rewrite stands
	if to, ok := transpose(note, rule.Transpose); ok {
		if out == nil {
			out = clone(msg)
		}
		out[1] = to
		res.Transform.FromNote = &note
		res.Transform.ToNote = &to
	}

	if out != nil {
		res.Message = out
	}
	return res
}

// maxOctaveShift is the largest shift that can keep any note in 0-127
const maxOctaveShift = 10

// transpose shifts note by whole octaves, reporting false when the result
// leaves 0-127 or there is nothing to do
func transpose(note uint8, octaves int) (uint8, bool) {
	if octaves == 0 || octaves < -maxOctaveShift || octaves > maxOctaveShift {
		return note, false
	}
	candidate := int(note) + octaves*12
	if candidate < 0 || candidate > 127 {
		return note, false
	}
	return uint8(candidate), true
}

func clone(msg midi.Message) midi.Message {
	out := make(midi.Message, len(msg))
	copy(out, msg)
	return out
}

func setChannel(msg midi.Message, ch uint8, t *Transform) {
	from := msg[0] & 0x0F
	to := ch & 0x0F
	msg[0] = (msg[0] & 0xF0) | to
	t.FromChannel = &from
	t.ToChannel = &to
}
