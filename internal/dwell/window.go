package dwell

// sample is a single gaze point held in the window.
type sample struct {
	x, y, t float64
}

// window is a FIFO of samples backed by a slice with a moving head.
// Pruned entries are reclaimed lazily when the dead prefix outgrows the live tail.
type window struct {
	buf  []sample
	head int
}

func (w *window) push(s sample) {
	w.buf = append(w.buf, s)
}

func (w *window) len() int {
	return len(w.buf) - w.head
}

func (w *window) oldest() sample {
	return w.buf[w.head]
}

func (w *window) newest() sample {
	return w.buf[len(w.buf)-1]
}

// dropBefore removes every sample with t < cutoff from the front.
func (w *window) dropBefore(cutoff float64) {
	for w.head < len(w.buf) && w.buf[w.head].t < cutoff {
		w.head++
	}
	w.compact()
}

func (w *window) compact() {
	if w.head == 0 {
		return
	}
	if w.head == len(w.buf) {
		w.buf = w.buf[:0]
		w.head = 0
		return
	}
	if w.head >= len(w.buf)-w.head {
		n := copy(w.buf, w.buf[w.head:])
		w.buf = w.buf[:n]
		w.head = 0
	}
}

func (w *window) live() []sample {
	return w.buf[w.head:]
}

func (w *window) reset() {
	w.buf = w.buf[:0]
	w.head = 0
}
