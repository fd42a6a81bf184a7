package router

import (
	"encoding/json"
	"errors"
	"testing"

	"gitlab.com/gomidi/midi/v2"
)

func TestParseChannel(t *testing.T) {
	tests := []struct {
		in      string
		want    Channel
		wantErr bool
	}{
		{"omni", Omni, false},
		{"Omni (0)", Omni, false},
		{"0", Omni, false},
		{"1", 0, false},
		{"16", 15, false},
		{" 10 ", 9, false},
		{"17", Omni, true},
		{"-1", Omni, true},
		{"bass", Omni, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseChannel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseChannel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
			if got != tt.want {
				t.Errorf("ParseChannel(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestChannelJSON(t *testing.T) {
	var cfg Config
	data := `{"mode":"split","cutoff_octave":3,"below":{"channel":"omni","transpose":-1},"above":{"channel":10,"transpose":2}}`
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Below.Channel != Omni {
		t.Errorf("below channel = %d, want omni", cfg.Below.Channel)
	}
	if cfg.Above.Channel != 9 {
		t.Errorf("above channel = %d, want 9", cfg.Above.Channel)
	}

	out, err := json.Marshal(cfg.Above)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `{"channel":10,"transpose":2}` {
		t.Errorf("Marshal() = %s", out)
	}
}

func TestDefaultConfigKeepsOmniWhenPartiallyFilled(t *testing.T) {
	cfg := DefaultConfig()
	if err := json.Unmarshal([]byte(`{"mode":"split","above":{"transpose":1}}`), &cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Below.Channel != Omni || cfg.Above.Channel != Omni {
		t.Errorf("channels = %d/%d, want omni", cfg.Below.Channel, cfg.Above.Channel)
	}
	if cfg.CutoffOctave != DefaultCutoffOctave {
		t.Errorf("cutoff = %d, want %d", cfg.CutoffOctave, DefaultCutoffOctave)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		msg  midi.Message
		want Kind
	}{
		{midi.Message{0x91, 60, 1}, KindNoteOn},
		{midi.Message{0x8F, 60, 0}, KindNoteOff},
		{midi.Message{0xB0, 1, 2}, KindControlChange},
		{midi.Message{0xC0, 1}, KindProgramChange},
		{midi.Message{0xE0, 0, 64}, KindPitchWheel},
		{midi.Message{0xD0, 10}, KindOther},
		{midi.Message{0xFE}, KindOther},
		{midi.Message{}, KindOther},
	}
	for _, tt := range tests {
		if got := KindOf(tt.msg); got != tt.want {
			t.Errorf("KindOf(%v) = %v, want %v", []byte(tt.msg), got, tt.want)
		}
	}
}

func TestNoteStartEnd(t *testing.T) {
	if !IsNoteStart(midi.Message{0x90, 60, 1}) {
		t.Error("NoteOn velocity 1 should start a note")
	}
	if IsNoteStart(midi.Message{0x90, 60, 0}) {
		t.Error("NoteOn velocity 0 should not start a note")
	}
	if !IsNoteEnd(midi.Message{0x90, 60, 0}) {
		t.Error("NoteOn velocity 0 should end a note")
	}
	if !IsNoteEnd(midi.Message{0x80, 60, 64}) {
		t.Error("NoteOff should end a note")
	}
	if IsNoteEnd(midi.Message{0xB0, 60, 0}) {
		t.Error("ControlChange is not a note")
	}
}

func TestNoteName(t *testing.T) {
	tests := map[uint8]string{0: "C-1", 60: "C4", 61: "C#4", 69: "A4", 127: "G9"}
	for note, want := range tests {
		if got := NoteName(note); got != want {
			t.Errorf("NoteName(%d) = %q, want %q", note, got, want)
		}
	}
}

func TestDescribe(t *testing.T) {
	p, _ := NewPolicy(SplitConfig(4, Rule{Channel: 1}, Rule{Channel: 2, Transpose: 1}))
	got := Describe(p.Apply(midi.Message{0x90, 60, 100}))
	want := "NoteOn channel: 1->3, note: 60->72, velocity: 100"
	if got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}

	u, _ := NewPolicy(UniformConfig(Omni))
	got = Describe(u.Apply(midi.Message{0xB0, 7, 100}))
	want = "ControlChange channel: 1, data: [7 100]"
	if got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}
