package app

import (
	"time"

	"github.com/ayusman/theremin/internal/detector"
	"github.com/ayusman/theremin/internal/gesture"
	"github.com/ayusman/theremin/internal/tone"
)

// Result is the outcome for one detected hand.
type Result struct {
	Hand       int          `json:"hand"`
	Handedness string       `json:"handedness,omitempty"`
	Pinch      bool         `json:"pinch"`
	Params     *tone.Params `json:"params,omitempty"`
}

// ProcessFrame classifies every hand in one frame and emits a pulse for each
// pinching hand, in detection order. width and height are the frame size in
// pixels. A disabled app or a frame with no usable size produces nothing.
func (a *App) ProcessFrame(hands []detector.HandLandmarks, width, height int) []Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.enabled || width <= 0 || height <= 0 {
		return nil
	}

	if len(hands) == 0 {
		// Hands left the frame; start fresh when they return.
		a.debouncers = nil
		return nil
	}

	results := make([]Result, len(hands))
	for i := range hands {
		hand := &hands[i]

		pinch := a.classifier.Classify(hand, width, height)
		if a.settings.DebounceFrames > 1 {
			pinch = a.debouncer(i).Update(pinch)
		}

		results[i] = Result{Hand: i, Handedness: hand.Handedness, Pinch: pinch}
		if !pinch {
			continue
		}

		p := a.settings.Mapper.Map(hand)
		a.emitter.Emit(p)
		a.lastPulse = &tone.Pulse{Params: p, At: time.Now()}
		results[i].Params = &p
	}

	return results
}

// debouncer returns the debouncer for hand slot i, growing the set as needed.
// Callers hold a.mu.
func (a *App) debouncer(i int) *gesture.Debouncer {
	for len(a.debouncers) <= i {
		a.debouncers = append(a.debouncers, gesture.NewDebouncer(a.settings.DebounceFrames))
	}
	return a.debouncers[i]
}
