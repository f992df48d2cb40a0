package sequence

import (
	"errors"
	"time"
)

var (
	// ErrEmptySequence is returned by Start when there is nothing to play.
	ErrEmptySequence = errors.New("no recorded sequence to play")
	// ErrPlaying is returned by Start while a playback is already running.
	ErrPlaying = errors.New("playback already running")
)

// State is the player state.
type State int

const (
	Idle State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "idle"
}

// Progress is the outcome of one Tick.
type Progress struct {
	Percent    int  // 0..100
	Dispatched int  // Events dispatched during this tick.
	Done       bool // The last event was dispatched and the player returned to Idle.
}

// Player replays a sequence against a sink, driven by periodic Tick calls.
type Player[P any] struct {
	now     func() time.Time
	events  []Event[P]
	cursor  int
	state   State
	started time.Time
	percent int
	gen     uint64
}

// NewPlayer creates an idle player reading time from now. A nil now means time.Now.
func NewPlayer[P any](now func() time.Time) *Player[P] {
	if now == nil {
		now = time.Now
	}
	return &Player[P]{now: now}
}

// Start begins replaying a snapshot of events from the first one.
func (p *Player[P]) Start(events []Event[P]) error {
	if p.state == Playing {
		return ErrPlaying
	}
	if len(events) == 0 {
		return ErrEmptySequence
	}

	p.events = make([]Event[P], len(events))
	copy(p.events, events)
	p.cursor = 0
	p.percent = 0
	p.started = p.now()
	p.state = Playing
	p.gen++
	return nil
}

// Tick dispatches, in order, every pending event whose offset has elapsed.
// The sink may call Stop; dispatching ends right after the current event.
func (p *Player[P]) Tick(sink func(Event[P])) Progress {
	if p.state != Playing {
		return Progress{Percent: p.percent}
	}

	gen := p.gen
	elapsed := p.now().Sub(p.started)
	var dispatched int

	for p.cursor < len(p.events) && p.events[p.cursor].Offset <= elapsed {
		ev := p.events[p.cursor]
		p.cursor++
		dispatched++
		sink(ev)
		if p.state != Playing || p.gen != gen {
			return Progress{Percent: p.percent, Dispatched: dispatched}
		}
	}

	if p.cursor >= len(p.events) {
		p.state = Idle
		p.percent = 100
		return Progress{Percent: 100, Dispatched: dispatched, Done: true}
	}

	p.percent = percentOf(elapsed, p.events[len(p.events)-1].Offset)
	return Progress{Percent: p.percent, Dispatched: dispatched}
}

// Stop returns to Idle immediately. Pending events are not dispatched and the
// sequence is kept.
func (p *Player[P]) Stop() {
	p.state = Idle
	p.percent = 0
	p.gen++
}

// State returns the current state.
func (p *Player[P]) State() State {
	return p.state
}

// Percent returns the last reported progress.
func (p *Player[P]) Percent() int {
	return p.percent
}

// Remaining returns the number of events not yet dispatched in the current pass.
func (p *Player[P]) Remaining() int {
	if p.state != Playing {
		return 0
	}
	return len(p.events) - p.cursor
}

func percentOf(elapsed, last time.Duration) int {
	lastMs := last.Milliseconds()
	if lastMs < 1 {
		lastMs = 1
	}
	pct := elapsed.Milliseconds() * 100 / lastMs
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return int(pct)
}
