// Package sequence records timestamped selection events and replays them in
// real time. Both the Recorder and the Player are single-owner state machines
// and are not safe for concurrent use.
package sequence

import (
	"errors"
	"time"
)

// ErrNotRecording is returned by RecordEvent when no recording is in progress.
var ErrNotRecording = errors.New("not recording")

// Event is a recorded payload with its offset from the recording start,
// truncated to whole milliseconds.
type Event[P any] struct {
	Payload P
	Offset  time.Duration
}

// Recorder captures events relative to the instant recording started.
type Recorder[P any] struct {
	now       func() time.Time
	events    []Event[P]
	recording bool
	t0        time.Time
}

// NewRecorder creates a recorder reading time from now. A nil now means time.Now.
func NewRecorder[P any](now func() time.Time) *Recorder[P] {
	if now == nil {
		now = time.Now
	}
	return &Recorder[P]{now: now}
}

// StartRecording discards the previous sequence and starts a new one.
func (r *Recorder[P]) StartRecording() {
	r.events = nil
	r.t0 = r.now()
	r.recording = true
}

// RecordEvent appends payload at the current offset.
// Offsets never go below zero and never decrease, even if the clock does.
func (r *Recorder[P]) RecordEvent(payload P) (Event[P], error) {
	if !r.recording {
		return Event[P]{}, ErrNotRecording
	}

	offset := r.now().Sub(r.t0).Truncate(time.Millisecond)
	if offset < 0 {
		offset = 0
	}
	if n := len(r.events); n > 0 && offset < r.events[n-1].Offset {
		offset = r.events[n-1].Offset
	}

	ev := Event[P]{Payload: payload, Offset: offset}
	r.events = append(r.events, ev)
	return ev, nil
}

// StopRecording ends the recording and keeps the sequence.
func (r *Recorder[P]) StopRecording() {
	r.recording = false
}

// Clear empties the sequence. A recording in progress keeps going.
func (r *Recorder[P]) Clear() {
	r.events = nil
}

// IsRecording reports whether events are being captured.
func (r *Recorder[P]) IsRecording() bool {
	return r.recording
}

// Len returns the number of recorded events.
func (r *Recorder[P]) Len() int {
	return len(r.events)
}

// Events returns a copy of the recorded sequence.
func (r *Recorder[P]) Events() []Event[P] {
	out := make([]Event[P], len(r.events))
	copy(out, r.events)
	return out
}
