// Package tone turns tone parameters into short audio pulses.
package tone

import (
	"errors"
	"sync"
	"time"
)

// Default pulse settings.
const (
	DefaultDuration   = 10 * time.Millisecond
	DefaultSampleRate = 44100
)

// Params is one (frequency, gain) pair driving a single pulse.
type Params struct {
	Frequency float64 `json:"frequency"`
	Gain      float64 `json:"gain"`
}

// Emitter plays one short pulse per call. Emit never blocks on playback
// and never reports failure; an unavailable audio device is a silent no-op.
type Emitter interface {
	Emit(p Params)
	Close() error
}

// NopEmitter discards every pulse.
type NopEmitter struct{}

func (NopEmitter) Emit(Params)  {}
func (NopEmitter) Close() error { return nil }

// Multi fans each pulse out to all of its emitters.
type Multi []Emitter

// Emit forwards p to every emitter in order.
func (m Multi) Emit(p Params) {
	for _, e := range m {
		e.Emit(p)
	}
}

// Close closes every emitter and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, e := range m {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pulse is a recorded emission.
type Pulse struct {
	Params Params    `json:"params"`
	At     time.Time `json:"at"`
}

// Recorder keeps the pulses it is asked to emit. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	pulses []Pulse
	now    func() time.Time
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Emit records p.
func (r *Recorder) Emit(p Params) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pulses = append(r.pulses, Pulse{Params: p, At: r.now()})
}

// Pulses returns a copy of everything recorded so far.
func (r *Recorder) Pulses() []Pulse {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Pulse, len(r.pulses))
	copy(out, r.pulses)
	return out
}

// Last returns the most recent pulse, if any.
func (r *Recorder) Last() (Pulse, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pulses) == 0 {
		return Pulse{}, false
	}
	return r.pulses[len(r.pulses)-1], true
}

// Reset forgets all recorded pulses.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pulses = nil
}

func (r *Recorder) Close() error { return nil }
