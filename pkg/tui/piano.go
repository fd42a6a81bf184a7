package tui

import (
	"fmt"
	"strings"

	"github.com/james-see/midiunion/pkg/router"
)

const (
	// pianoOctaves is how many octaves the keyboard shows
	pianoOctaves = 3

	minDisplayOctave     = -1
	maxDisplayOctave     = 9 - pianoOctaves + 1
	defaultDisplayOctave = 4

	keyWidth = 4
)

// semitone offsets of the white keys and whether a black key follows each
var (
	whiteKeys  = [7]uint8{0, 2, 4, 5, 7, 9, 11}
	sharpAfter = [7]bool{true, true, false, true, true, true, false}
)

// noteAt returns the MIDI note for a semitone in an octave, or false when
// it falls outside 0-127
func noteAt(octave int, semitone uint8) (uint8, bool) {
	n := (octave+1)*12 + int(semitone)
	if n < 0 || n > 127 {
		return 0, false
	}
	return uint8(n), true
}

// renderPiano draws pianoOctaves octaves starting at startOctave. Sounding
// notes are highlighted.
func renderPiano(startOctave int, active map[uint8]bool) string {
	var black, white strings.Builder

	for o := 0; o < pianoOctaves; o++ {
		octave := startOctave + o
		for i, semi := range whiteKeys {
			note, ok := noteAt(octave, semi)
			label := strings.Repeat(" ", keyWidth)
			if ok {
				label = fmt.Sprintf(" %-3s", router.NoteName(note))
			}
			style := whiteKeyStyle
			if ok && active[note] {
				style = whiteKeyOnStyle
			}
			white.WriteString(style.Render(label))

			black.WriteString("  ")
			if !sharpAfter[i] {
				black.WriteString("  ")
				continue
			}
			sharp, ok := noteAt(octave, semi+1)
			if ok && active[sharp] {
				black.WriteString(blackKeyOnStyle.Render("██"))
			} else {
				black.WriteString(blackKeyStyle.Render("██"))
			}
		}
	}
	return black.String() + "\n" + white.String()
}

func clampDisplayOctave(o int) int {
	if o < minDisplayOctave {
		return minDisplayOctave
	}
	if o > maxDisplayOctave {
		return maxDisplayOctave
	}
	return o
}
