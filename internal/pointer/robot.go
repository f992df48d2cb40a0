// Package pointer drives the OS cursor and listens to physical mouse clicks.
// Coordinates are translated between surface pixels and screen pixels with a
// fixed origin: the screen position of the surface's top left corner.
package pointer

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/leandrodaf/gazeuke/sdk/contracts"
)

var _ contracts.PointerController = (*Robot)(nil)

// Robot moves and clicks the OS cursor.
type Robot struct {
	Origin contracts.Point // Screen position of the surface origin.
}

func (r *Robot) toScreen(p contracts.Point) (int, int) {
	return int(math.Round(p.X + r.Origin.X)), int(math.Round(p.Y + r.Origin.Y))
}

// MoveTo warps the cursor to a surface point.
func (r *Robot) MoveTo(p contracts.Point) error {
	x, y := r.toScreen(p)
	robotgo.Move(x, y)
	return nil
}

// ClickAt moves to a surface point and sends a left click.
func (r *Robot) ClickAt(p contracts.Point) error {
	x, y := r.toScreen(p)
	robotgo.Move(x, y)
	robotgo.Click("left", false)
	return nil
}

var _ contracts.GazeSource = (*CursorGazeSource)(nil)

// CursorGazeSource simulates a gaze tracker by polling the cursor position.
type CursorGazeSource struct {
	Origin contracts.Point
	PollHz int

	once sync.Once
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewCursorGazeSource creates a source polling pollHz times per second.
func NewCursorGazeSource(origin contracts.Point, pollHz int) *CursorGazeSource {
	if pollHz <= 0 {
		pollHz = 30
	}
	return &CursorGazeSource{Origin: origin, PollHz: pollHz, stop: make(chan struct{})}
}

func (c *CursorGazeSource) Start(ctx context.Context, out chan<- contracts.GazeSample) error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(time.Second / time.Duration(c.PollHz))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stop:
				return
			case now := <-ticker.C:
				x, y := robotgo.Location()
				s := contracts.GazeSample{
					X:         float64(x) - c.Origin.X,
					Y:         float64(y) - c.Origin.Y,
					Timestamp: float64(now.UnixNano()) / float64(time.Second),
				}
				select {
				case out <- s:
				default: // consumer busy, drop the sample
				}
			}
		}
	}()
	return nil
}

func (c *CursorGazeSource) Close() error {
	c.once.Do(func() { close(c.stop) })
	c.wg.Wait()
	return nil
}
