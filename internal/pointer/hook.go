package pointer

import (
	"context"
	"sync"

	"github.com/leandrodaf/gazeuke/sdk/contracts"
	hook "github.com/robotn/gohook"
)

var _ contracts.ClickSource = (*ClickHook)(nil)

// ClickHook reports left mouse button presses as surface points.
// Only one hook can run per process.
type ClickHook struct {
	Origin contracts.Point

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewClickHook creates a hook translating screen clicks by origin.
func NewClickHook(origin contracts.Point) *ClickHook {
	return &ClickHook{Origin: origin}
}

// Start registers the global hook and processes events in the background.
func (h *ClickHook) Start(ctx context.Context, out chan<- contracts.Point) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return nil
	}

	hook.Register(hook.MouseDown, []string{}, func(e hook.Event) {
		if e.Button != hook.MouseMap["left"] && e.Button != 1 {
			return
		}
		p := contracts.Point{X: float64(e.X) - h.Origin.X, Y: float64(e.Y) - h.Origin.Y}
		select {
		case out <- p:
		case <-ctx.Done():
		}
	})

	evChan := hook.Start()
	h.done = make(chan struct{})
	h.running = true
	go func(done chan struct{}) {
		defer close(done)
		// Blocks until hook.End() is called.
		<-hook.Process(evChan)
	}(h.done)
	go func() {
		<-ctx.Done()
		_ = h.Close()
	}()
	return nil
}

// Close ends the hook and waits for event processing to stop.
func (h *ClickHook) Close() error {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return nil
	}
	h.running = false
	done := h.done
	h.mu.Unlock()

	hook.End()
	<-done
	return nil
}
