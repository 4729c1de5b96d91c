package gesture

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/theremin/internal/detector"
	"github.com/ayusman/theremin/internal/tone"
)

// Default parameter bounds.
const (
	DefaultMinFrequency = 10.0
	DefaultMaxFrequency = 2500.0
	DefaultMinGain      = 0.0
	DefaultMaxGain      = 1.0
)

// ErrInvalidRange is returned when a range is inverted or not finite.
var ErrInvalidRange = errors.New("invalid range")

// Range is a closed interval [Min, Max].
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Lerp interpolates linearly: Lerp(0) == Min, Lerp(1) == Max.
// t is not clamped.
func (r Range) Lerp(t float64) float64 {
	return r.Min + t*(r.Max-r.Min)
}

// Validate rejects NaN, infinite and inverted ranges.
func (r Range) Validate() error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
		return fmt.Errorf("%w: bounds must be finite", ErrInvalidRange)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%w: min %g greater than max %g", ErrInvalidRange, r.Min, r.Max)
	}
	return nil
}

// Mapper turns the thumb tip position into tone parameters:
// left to right raises frequency, bottom to top raises gain.
type Mapper struct {
	Frequency Range
	Gain      Range
}

// DefaultMapper returns a mapper over 10-2500 Hz and gain 0-1.
func DefaultMapper() Mapper {
	return Mapper{
		Frequency: Range{Min: DefaultMinFrequency, Max: DefaultMaxFrequency},
		Gain:      Range{Min: DefaultMinGain, Max: DefaultMaxGain},
	}
}

// Validate checks both ranges. Gain bounds must also lie within [0, 1].
func (m Mapper) Validate() error {
	if err := m.Frequency.Validate(); err != nil {
		return fmt.Errorf("frequency: %w", err)
	}
	if m.Frequency.Min < 0 {
		return fmt.Errorf("frequency: %w: negative bound", ErrInvalidRange)
	}
	if err := m.Gain.Validate(); err != nil {
		return fmt.Errorf("gain: %w", err)
	}
	if m.Gain.Min < 0 || m.Gain.Max > 1 {
		return fmt.Errorf("gain: %w: bounds must lie within [0, 1]", ErrInvalidRange)
	}
	return nil
}

// Map computes the tone parameters for hand. It is a pure function of the
// thumb tip coordinates.
func (m Mapper) Map(hand *detector.HandLandmarks) tone.Params {
	thumb := hand.ThumbTip()
	return tone.Params{
		Frequency: m.Frequency.Lerp(thumb.X),
		Gain:      m.Gain.Lerp(1 - thumb.Y),
	}
}
