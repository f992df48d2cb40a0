package surface

import (
	"math"

	"github.com/leandrodaf/gazeuke/sdk/contracts"
)

// StringLine is a drawn string from the nut (Start) to the end of the neck (End).
type StringLine struct {
	Start contracts.Point `yaml:"start"`
	End   contracts.Point `yaml:"end"`
}

// FretboardLayout describes the strings of a fretboard and how frets divide them.
type FretboardLayout struct {
	Strings   []StringLine `yaml:"strings"`
	Frets     int          `yaml:"frets"`
	Tolerance float64      `yaml:"tolerance"` // Max vertical distance from a string, in pixels.
}

// DefaultFretboardLayout is a 4 string, 12 fret neck drawn on a 1920x1080 surface.
func DefaultFretboardLayout() FretboardLayout {
	ys := []float64{235, 380, 525, 670}
	strs := make([]StringLine, len(ys))
	for i, y := range ys {
		strs[i] = StringLine{
			Start: contracts.Point{X: 250, Y: y},
			End:   contracts.Point{X: 1735, Y: y},
		}
	}
	return FretboardLayout{Strings: strs, Frets: 12, Tolerance: 10}
}

// Fretboard resolves points to (string, fret) pairs.
type Fretboard struct {
	layout FretboardLayout
	tuning []contracts.NoteID
}

// NewFretboard creates a fretboard. String s at fret f plays tuning[s]+f.
// A nil tuning means UkuleleTuning.
func NewFretboard(layout FretboardLayout, tuning []contracts.NoteID) *Fretboard {
	if tuning == nil {
		tuning = UkuleleTuning
	}
	return &Fretboard{layout: layout, tuning: tuning}
}

func (f *Fretboard) Name() string { return "fretboard" }

// Layout returns the fretboard geometry.
func (f *Fretboard) Layout() FretboardLayout { return f.layout }

// ResolveSelection returns the first string within tolerance of p and the fret gap containing p.X.
func (f *Fretboard) ResolveSelection(p contracts.Point) (contracts.Selection, bool) {
	for i, s := range f.layout.Strings {
		minX, maxX := math.Min(s.Start.X, s.End.X), math.Max(s.Start.X, s.End.X)
		if p.X < minX || p.X > maxX {
			continue
		}
		if math.Abs(p.Y-s.yAt(p.X)) > f.layout.Tolerance {
			continue
		}
		fret, ok := f.fretAt(s, p.X)
		if !ok {
			return contracts.Selection{}, false
		}
		return contracts.Selection{Row: i, Col: fret}, true
	}
	return contracts.Selection{}, false
}

// NoteFor returns the note of a (string, fret) pair.
func (f *Fretboard) NoteFor(sel contracts.Selection) (contracts.NoteID, bool) {
	if sel.Row < 0 || sel.Row >= len(f.layout.Strings) || sel.Row >= len(f.tuning) {
		return 0, false
	}
	if sel.Col < 0 || sel.Col >= f.layout.Frets {
		return 0, false
	}
	return stringNote(f.tuning[sel.Row], sel.Col)
}

func (f *Fretboard) fretAt(s StringLine, x float64) (int, bool) {
	span := s.End.X - s.Start.X
	if span == 0 || f.layout.Frets <= 0 {
		return 0, false
	}
	fret := int(math.Floor((x - s.Start.X) / span * float64(f.layout.Frets)))
	if fret == f.layout.Frets {
		fret-- // x exactly on the end of the string
	}
	if fret < 0 || fret >= f.layout.Frets {
		return 0, false
	}
	return fret, true
}

// yAt interpolates the string height at x.
func (s StringLine) yAt(x float64) float64 {
	dx := s.End.X - s.Start.X
	if dx == 0 {
		return s.Start.Y
	}
	return s.Start.Y + (s.End.Y-s.Start.Y)*(x-s.Start.X)/dx
}
