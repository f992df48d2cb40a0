// Package dwell classifies a stream of timestamped gaze points into dwell and
// no-dwell states. A dwell is reported once every point of the trailing window
// lies within a radius of the window centroid for at least a minimum duration.
package dwell

import (
	"math"
	"time"

	"github.com/leandrodaf/gazeuke/sdk/contracts"
)

// Epsilon widens the pruning cutoff so that samples lying exactly on the
// window boundary survive floating point rounding.
const Epsilon = 1e-4

// Default detector settings.
const (
	DefaultDuration = 750 * time.Millisecond
	DefaultRange    = 75.0
)

// Result is the outcome of a single AddPoint call.
type Result struct {
	Changed   bool            // Changed reports an edge: InDwell differs from the previous state.
	InDwell   bool            // InDwell is the current classification.
	Center    contracts.Point // Center is the window centroid, valid only when HasCenter is true.
	HasCenter bool            // HasCenter is false while the window spans less than the minimum delay.
	Rejected  bool            // Rejected marks a sample dropped for being out of order or non-finite.
}

// Detector is a sliding window fixation filter. It is not safe for concurrent use.
type Detector struct {
	duration     time.Duration
	minimumDelay float64 // seconds, cached from duration
	radius       float64 // pixels
	inDwell      bool
	win          window
}

// NewDetector creates a detector with the given minimum dwell duration and range in pixels.
func NewDetector(duration time.Duration, radius float64) *Detector {
	return &Detector{
		duration:     duration,
		minimumDelay: duration.Seconds(),
		radius:       radius,
	}
}

// SetDuration changes the minimum dwell duration. It applies from the next AddPoint.
func (d *Detector) SetDuration(duration time.Duration) {
	d.duration = duration
	d.minimumDelay = duration.Seconds()
}

// SetRange changes the dwell radius in pixels. It applies from the next AddPoint.
func (d *Detector) SetRange(radius float64) {
	d.radius = radius
}

// Duration returns the current minimum dwell duration.
func (d *Detector) Duration() time.Duration {
	return d.duration
}

// Range returns the current dwell radius.
func (d *Detector) Range() float64 {
	return d.radius
}

// InDwell returns the current state without feeding a sample.
func (d *Detector) InDwell() bool {
	return d.inDwell
}

// Reset empties the window and returns to the no-dwell state.
func (d *Detector) Reset() {
	d.win.reset()
	d.inDwell = false
}

// Accepts reports whether AddPoint would take the sample: all values finite
// and the timestamp not older than the newest held sample.
func (d *Detector) Accepts(x, y, timestamp float64) bool {
	if !finite(x) || !finite(y) || !finite(timestamp) {
		return false
	}
	return d.win.len() == 0 || timestamp >= d.win.newest().t
}

// AddPoint feeds one sample, timestamp in seconds, and returns the classification.
//
// Samples older than the newest held sample, or with non-finite coordinates,
// are rejected without touching the window.
func (d *Detector) AddPoint(x, y, timestamp float64) Result {
	if !d.Accepts(x, y, timestamp) {
		return Result{InDwell: d.inDwell, Rejected: true}
	}

	d.win.push(sample{x: x, y: y, t: timestamp})

	if d.win.len() < 2 || timestamp-d.win.oldest().t < d.minimumDelay {
		return Result{}
	}

	d.win.dropBefore(timestamp - d.minimumDelay - Epsilon)

	center, maxDist := spread(d.win.live())
	state := maxDist < d.radius
	changed := state != d.inDwell
	d.inDwell = state

	return Result{
		Changed:   changed,
		InDwell:   state,
		Center:    center,
		HasCenter: true,
	}
}

// spread returns the centroid of pts and the largest distance of any point to it.
func spread(pts []sample) (contracts.Point, float64) {
	var sx, sy float64
	for _, p := range pts {
		sx += p.x
		sy += p.y
	}
	n := float64(len(pts))
	c := contracts.Point{X: sx / n, Y: sy / n}

	var maxDist float64
	for _, p := range pts {
		if dist := math.Hypot(p.x-c.X, p.y-c.Y); dist > maxDist {
			maxDist = dist
		}
	}
	return c, maxDist
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
