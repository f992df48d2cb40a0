// Package surface implements the interaction surfaces of the trainer: a grid of
// notes and a ukulele fretboard. Both turn a point in surface pixels into a
// selection and a selection into a MIDI note.
package surface

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/leandrodaf/gazeuke/sdk/contracts"
)

// ErrUnknownNote is returned when a note name cannot be parsed.
var ErrUnknownNote = errors.New("unknown note")

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var pitchClasses = map[string]int{
	"C": 0, "C#": 1, "DB": 1, "D": 2, "D#": 3, "EB": 3, "E": 4, "F": 5, "F#": 6, "GB": 6,
	"G": 7, "G#": 8, "AB": 8, "A": 9, "A#": 10, "BB": 10, "B": 11,
}

// UkuleleTuning holds the open string pitches of a standard (re-entrant) ukulele,
// from the top string: G4, C4, E4, A4.
var UkuleleTuning = []contracts.NoteID{67, 60, 64, 69}

// ParseNoteName converts scientific pitch notation ("C4", "G#4", "Bb3") to a MIDI note.
// C4 is 60.
func ParseNoteName(name string) (contracts.NoteID, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	i := 1
	if len(s) > 1 && (s[1] == '#' || s[1] == 'B') {
		i = 2
	}
	if len(s) <= i {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}

	pc, ok := pitchClasses[s[:i]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}
	octave, err := strconv.Atoi(s[i:])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}

	n := (octave+1)*12 + pc
	if n < 0 || n > 127 {
		return 0, fmt.Errorf("%w: %q out of MIDI range", ErrUnknownNote, name)
	}
	return contracts.NoteID(n), nil
}

// NoteName formats a MIDI note using sharps, e.g. 61 -> "C#4".
func NoteName(n contracts.NoteID) string {
	return noteNames[int(n)%12] + strconv.Itoa(int(n)/12-1)
}

// stringNote returns the note of fret on the string with the given open pitch.
func stringNote(open contracts.NoteID, fret int) (contracts.NoteID, bool) {
	n := int(open) + fret
	if fret < 0 || n > 127 {
		return 0, false
	}
	return contracts.NoteID(n), true
}
