package forwarder

import (
	"sort"
	"sync"
)

// NoteSet tracks which notes are currently sounding on the output
type NoteSet struct {
	mu    sync.Mutex
	notes map[uint8]struct{}
}

// NewNoteSet returns an empty set
func NewNoteSet() *NoteSet {
	return &NoteSet{notes: make(map[uint8]struct{})}
}

func (s *NoteSet) Add(note uint8) {
	s.mu.Lock()
	s.notes[note] = struct{}{}
	s.mu.Unlock()
}

func (s *NoteSet) Remove(note uint8) {
	s.mu.Lock()
	delete(s.notes, note)
	s.mu.Unlock()
}

func (s *NoteSet) Contains(note uint8) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.notes[note]
	return ok
}

func (s *NoteSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

func (s *NoteSet) Clear() {
	s.mu.Lock()
	s.notes = make(map[uint8]struct{})
	s.mu.Unlock()
}

// Snapshot returns the sounding notes in ascending order
func (s *NoteSet) Snapshot() []uint8 {
	s.mu.Lock()
	out := make([]uint8, 0, len(s.notes))
	for n := range s.notes {
		out = append(out, n)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
