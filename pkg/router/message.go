package router

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// Kind classifies a message for routing purposes
type Kind int

const (
	KindOther Kind = iota
	KindNoteOn
	KindNoteOff
	KindControlChange
	KindProgramChange
	KindPitchWheel
)

func (k Kind) String() string {
	switch k {
	case KindNoteOn:
		return "NoteOn"
	case KindNoteOff:
		return "NoteOff"
	case KindControlChange:
		return "ControlChange"
	case KindProgramChange:
		return "ProgramChange"
	case KindPitchWheel:
		return "PitchWheel"
	default:
		return "Other"
	}
}

// KindOf returns the kind of msg from its status byte
func KindOf(msg midi.Message) Kind {
	if !IsChannelVoice(msg) {
		return KindOther
	}
	switch msg[0] & 0xF0 {
	case 0x90:
		return KindNoteOn
	case 0x80:
		return KindNoteOff
	case 0xB0:
		return KindControlChange
	case 0xC0:
		return KindProgramChange
	case 0xE0:
		return KindPitchWheel
	default:
		return KindOther
	}
}

// IsChannelVoice reports whether msg carries a channel (status 0x80-0xEF)
func IsChannelVoice(msg midi.Message) bool {
	return len(msg) >= 1 && msg[0] >= 0x80 && msg[0] <= 0xEF
}

// IsNote reports whether msg is a complete NoteOn or NoteOff, the only
// messages carrying both a note and a channel.
func IsNote(msg midi.Message) bool {
	k := KindOf(msg)
	return (k == KindNoteOn || k == KindNoteOff) && len(msg) >= 3
}

// ChannelOf returns the zero-based channel of a channel-voice message
func ChannelOf(msg midi.Message) (uint8, bool) {
	if !IsChannelVoice(msg) {
		return 0, false
	}
	return msg[0] & 0x0F, true
}

// NoteOf returns note number and velocity of a NoteOn/NoteOff message
func NoteOf(msg midi.Message) (note, velocity uint8, ok bool) {
	if !IsNote(msg) {
		return 0, 0, false
	}
	return msg[1], msg[2], true
}

// IsNoteStart reports NoteOn with velocity > 0
func IsNoteStart(msg midi.Message) bool {
	_, vel, ok := NoteOf(msg)
	return ok && KindOf(msg) == KindNoteOn && vel > 0
}

// IsNoteEnd reports NoteOff, or NoteOn with velocity 0
func IsNoteEnd(msg midi.Message) bool {
	_, vel, ok := NoteOf(msg)
	if !ok {
		return false
	}
	return KindOf(msg) == KindNoteOff || vel == 0
}

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Octave returns the MIDI octave number of a note (middle C, 60, is octave 4)
func Octave(note uint8) int {
	return int(note)/12 - 1
}

// NoteName converts a MIDI note number to a name such as C4 or F#-1
func NoteName(note uint8) string {
	return fmt.Sprintf("%s%d", noteNames[note%12], Octave(note))
}
