// Package gaze provides gaze sample sources and the filters applied to them
// before dwell detection.
package gaze

import "github.com/leandrodaf/gazeuke/sdk/contracts"

// DefaultSmoothing is the weight kept from the previous smoothed position.
const DefaultSmoothing = 0.8

// Smoother is an exponential moving average over gaze positions:
// p = p*factor + g*(1-factor). A factor of 0 passes samples through.
type Smoother struct {
	factor float64
	p      contracts.Point
	primed bool
}

// NewSmoother creates a smoother; factor is clamped to [0,1].
func NewSmoother(factor float64) *Smoother {
	s := &Smoother{}
	s.SetFactor(factor)
	return s
}

// SetFactor changes the smoothing factor, clamped to [0,1]. The current
// position is kept.
func (s *Smoother) SetFactor(factor float64) {
	switch {
	case factor < 0 || factor != factor:
		factor = 0
	case factor > 1:
		factor = 1
	}
	s.factor = factor
}

// Factor returns the smoothing factor.
func (s *Smoother) Factor() float64 {
	return s.factor
}

// Apply folds g into the running position and returns it. The first sample
// initializes the position.
func (s *Smoother) Apply(g contracts.Point) contracts.Point {
	if !s.primed {
		s.p = g
		s.primed = true
		return s.p
	}
	s.p.X = s.p.X*s.factor + g.X*(1-s.factor)
	s.p.Y = s.p.Y*s.factor + g.Y*(1-s.factor)
	return s.p
}

// Reset forgets the running position.
func (s *Smoother) Reset() {
	s.primed = false
	s.p = contracts.Point{}
}
