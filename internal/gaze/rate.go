package gaze

import (
	"time"

	"github.com/paulbellamy/ratecounter"
)

// RateMeter counts gaze samples over a sliding interval.
type RateMeter struct {
	interval time.Duration
	counter  *ratecounter.RateCounter
	total    int64
}

// NewRateMeter creates a meter over interval; zero means one second.
func NewRateMeter(interval time.Duration) *RateMeter {
	if interval <= 0 {
		interval = time.Second
	}
	return &RateMeter{
		interval: interval,
		counter:  ratecounter.NewRateCounter(interval),
	}
}

// Mark records one sample.
func (m *RateMeter) Mark() {
	m.counter.Incr(1)
	m.total++
}

// Rate returns the number of samples seen during the last interval.
func (m *RateMeter) Rate() int64 {
	return m.counter.Rate()
}

// PerSecond scales Rate to samples per second.
func (m *RateMeter) PerSecond() float64 {
	return float64(m.counter.Rate()) / m.interval.Seconds()
}

// Total returns the number of samples marked since creation.
func (m *RateMeter) Total() int64 {
	return m.total
}
