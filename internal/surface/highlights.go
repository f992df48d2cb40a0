package surface

import (
	"sync"

	"github.com/leandrodaf/gazeuke/sdk/contracts"
)

// Highlights keeps the list of highlighted selections. A selection highlighted
// twice stays lit until both highlights are removed.
type Highlights struct {
	mu    sync.Mutex
	items []contracts.Selection
}

// AddHighlight lights sel.
func (h *Highlights) AddHighlight(sel contracts.Selection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, sel)
}

// RemoveHighlight removes the first entry equal to sel, if any.
func (h *Highlights) RemoveHighlight(sel contracts.Selection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, it := range h.items {
		if it == sel {
			h.items = append(h.items[:i], h.items[i+1:]...)
			return
		}
	}
}

// Active returns the lit selections, in the order they were added.
func (h *Highlights) Active() []contracts.Selection {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]contracts.Selection, len(h.items))
	copy(out, h.items)
	return out
}

// IsLit reports whether sel is highlighted.
func (h *Highlights) IsLit(sel contracts.Selection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, it := range h.items {
		if it == sel {
			return true
		}
	}
	return false
}
