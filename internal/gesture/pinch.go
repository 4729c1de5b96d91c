// Package gesture classifies hand landmarks and maps them to tone parameters.
package gesture

import (
	"math"

	"github.com/ayusman/theremin/internal/detector"
)

// DefaultPinchThreshold is the pixel distance, per axis, below which
// thumb tip and index fingertip count as touching.
const DefaultPinchThreshold = 50.0

// PinchClassifier decides whether a hand is pinching.
type PinchClassifier struct {
	// Threshold is the per-axis pixel distance. A displacement of exactly
	// Threshold on either axis is not a pinch.
	Threshold float64
}

// NewPinchClassifier returns a classifier with the given threshold.
// Non-positive thresholds fall back to DefaultPinchThreshold.
func NewPinchClassifier(threshold float64) PinchClassifier {
	if threshold <= 0 {
		threshold = DefaultPinchThreshold
	}
	return PinchClassifier{Threshold: threshold}
}

// PixelDelta returns the thumb-to-index displacement in pixels for a
// frame of width x height.
func PixelDelta(hand *detector.HandLandmarks, width, height int) (dx, dy float64) {
	thumb := hand.ThumbTip()
	index := hand.IndexTip()
	dx = (thumb.X - index.X) * float64(width)
	dy = (thumb.Y - index.Y) * float64(height)
	return dx, dy
}

// Classify reports whether hand is pinching in a frame of width x height pixels.
// A nil hand is never pinching.
func (c PinchClassifier) Classify(hand *detector.HandLandmarks, width, height int) bool {
	if hand == nil {
		return false
	}
	dx, dy := PixelDelta(hand, width, height)
	return math.Abs(dx) < c.Threshold && math.Abs(dy) < c.Threshold
}
