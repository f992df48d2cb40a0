package contracts

import "context"

// Point is a position in surface pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GazeSample is a gaze point already mapped into surface coordinates.
type GazeSample struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Timestamp float64 `json:"timestamp"` // Seconds, non-decreasing within a session.
}

// Point returns the sample position.
func (s GazeSample) Point() Point {
	return Point{X: s.X, Y: s.Y}
}

// GazeSource delivers gaze samples asynchronously.
type GazeSource interface {
	// Start begins delivering samples on out and returns immediately.
	// Delivery stops when ctx is cancelled or Close is called.
	Start(ctx context.Context, out chan<- GazeSample) error
	Close() error
}

// ClickSource delivers manual selection points (e.g. physical mouse clicks).
type ClickSource interface {
	Start(ctx context.Context, out chan<- Point) error
	Close() error
}

// PointerController drives the OS cursor.
type PointerController interface {
	MoveTo(p Point) error
	ClickAt(p Point) error
}
