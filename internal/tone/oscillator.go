package tone

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/viterin/vek/vek32"
)

// Envelope timing. The attack approaches the target gain exponentially with
// attackTimeConstant; the last releaseTime of the pulse fades linearly to zero.
const (
	attackTimeConstant = 10 * time.Millisecond
	releaseTime        = time.Millisecond
)

// Oscillator renders sine pulses of a fixed duration.
type Oscillator struct {
	SampleRate int
	Duration   time.Duration
}

// NewOscillator returns an oscillator with the given settings. Non-positive
// values fall back to DefaultSampleRate and DefaultDuration.
func NewOscillator(sampleRate int, duration time.Duration) Oscillator {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	return Oscillator{SampleRate: sampleRate, Duration: duration}
}

// Samples returns the number of mono samples in one pulse.
func (o Oscillator) Samples() int {
	return int(o.Duration.Seconds() * float64(o.SampleRate))
}

// Render returns one mono pulse for p in [-1, 1].
// Gain is clamped to [0, 1] so a mapped value never clips the output.
func (o Oscillator) Render(p Params) []float32 {
	n := o.Samples()
	if n <= 0 {
		return nil
	}

	gain := math.Max(0, math.Min(1, p.Gain))
	sr := float64(o.SampleRate)
	step := 2 * math.Pi * p.Frequency / sr
	tau := attackTimeConstant.Seconds()

	wave := make([]float32, n)
	env := make([]float32, n)
	for i := range wave {
		t := float64(i) / sr
		wave[i] = float32(math.Sin(step * float64(i)))
		env[i] = float32(gain * (1 - math.Exp(-t/tau)))
	}

	release := int(releaseTime.Seconds() * sr)
	if release > n {
		release = n
	}
	for i := 0; i < release; i++ {
		env[n-release+i] *= float32(release-i-1) / float32(release)
	}

	vek32.Mul_Inplace(wave, env)
	return wave
}

// Peak returns the largest absolute sample value in buf.
func Peak(buf []float32) float32 {
	if len(buf) == 0 {
		return 0
	}
	abs := vek32.Abs(buf)
	return vek32.Max(abs)
}

// EncodeInt16LE converts float samples to signed 16-bit little-endian PCM,
// appending to out. Samples outside [-1, 1] are clipped.
func EncodeInt16LE(buf []float32, out []byte) []byte {
	for _, v := range buf {
		var s int16
		switch {
		case v < -1:
			s = -math.MaxInt16
		case v > 1:
			s = math.MaxInt16
		default:
			s = int16(v * math.MaxInt16)
		}
		out = binary.LittleEndian.AppendUint16(out, uint16(s))
	}
	return out
}
