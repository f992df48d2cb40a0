package contracts

import (
	"fmt"
	"time"
)

// Selection identifies a position on an interaction surface: a grid cell or a
// fretboard (string, fret) pair.
type Selection struct {
	Row int `json:"row"` // Grid row or fretboard string index.
	Col int `json:"col"` // Grid column or fret number.
}

func (s Selection) String() string {
	return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
}

// Surface resolves points to selections and selections to notes.
type Surface interface {
	Name() string
	ResolveSelection(p Point) (Selection, bool)
	NoteFor(sel Selection) (NoteID, bool)
}

// Highlighter receives transient visual feedback for a selection.
type Highlighter interface {
	AddHighlight(sel Selection)
	RemoveHighlight(sel Selection)
}

// StatusReporter receives user-visible status messages and playback progress.
type StatusReporter interface {
	SetStatus(msg string)
	SetProgress(percent int)
}

// Scheduler runs one-shot delayed callbacks. The returned function cancels
// the callback if it has not run yet.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// Metrics receives session counters. All methods must be cheap and non-blocking.
type Metrics interface {
	SelectionTriggered(origin string)
	DwellTransition(inDwell bool)
	GazeSample(accepted bool)
	PlaybackRun(result string)
}
