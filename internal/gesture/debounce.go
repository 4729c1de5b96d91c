package gesture

import "sync"

// Debouncer suppresses pinch chatter near the threshold. The reported state
// only flips after Frames consecutive raw frames disagree with it.
// Frames <= 1 passes raw classifications straight through.
type Debouncer struct {
	mu      sync.Mutex
	frames  int
	state   bool
	pending int
}

// NewDebouncer creates a debouncer requiring frames agreeing frames to flip.
func NewDebouncer(frames int) *Debouncer {
	return &Debouncer{frames: frames}
}

// Update feeds one raw classification and returns the debounced state.
func (d *Debouncer) Update(raw bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frames <= 1 {
		d.state = raw
		return raw
	}

	if raw == d.state {
		d.pending = 0
		return d.state
	}

	d.pending++
	if d.pending >= d.frames {
		d.state = raw
		d.pending = 0
	}
	return d.state
}

// Reset returns the debouncer to the not-pinching state.
func (d *Debouncer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = false
	d.pending = 0
}
