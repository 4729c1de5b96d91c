package tone

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	midiChannel = 0
	midiTempo   = 120.0
	midiTicks   = smf.MetricTicks(960)
)

// NoteForFrequency returns the nearest MIDI note for freq (A4 = 440 Hz = 69),
// clamped to the MIDI range.
func NoteForFrequency(freq float64) uint8 {
	if freq <= 0 {
		return 0
	}
	n := math.Round(69 + 12*math.Log2(freq/440))
	return uint8(math.Max(0, math.Min(127, n)))
}

// VelocityForGain maps gain in [0, 1] to a MIDI velocity.
func VelocityForGain(gain float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, gain)) * 127))
}

type midiEvent struct {
	at  time.Duration
	msg midi.Message
}

// MIDIRecorder captures pulses as notes and writes them as a Standard MIDI File.
// Each pulse becomes a note-on at emission time and a note-off one pulse
// duration later. Pulses with zero velocity are skipped.
type MIDIRecorder struct {
	mu       sync.Mutex
	path     string
	duration time.Duration
	start    time.Time
	now      func() time.Time
	events   []midiEvent
}

// NewMIDIRecorder records into path; the file is written on Close.
func NewMIDIRecorder(path string, pulse time.Duration) *MIDIRecorder {
	if pulse <= 0 {
		pulse = DefaultDuration
	}
	r := &MIDIRecorder{
		path:     path,
		duration: pulse,
		now:      time.Now,
	}
	r.start = r.now()
	return r
}

// Emit records p as one note.
func (r *MIDIRecorder) Emit(p Params) {
	vel := VelocityForGain(p.Gain)
	if vel == 0 {
		return
	}
	key := NoteForFrequency(p.Frequency)

	r.mu.Lock()
	defer r.mu.Unlock()

	at := r.now().Sub(r.start)
	r.events = append(r.events,
		midiEvent{at: at, msg: midi.NoteOn(midiChannel, key, vel)},
		midiEvent{at: at + r.duration, msg: midi.NoteOff(midiChannel, key)},
	)
}

// Notes returns the number of recorded notes.
func (r *MIDIRecorder) Notes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events) / 2
}

// WriteTo writes the recording as a single-track SMF.
func (r *MIDIRecorder) WriteTo(w io.Writer) (int64, error) {
	r.mu.Lock()
	events := make([]midiEvent, len(r.events))
	copy(events, r.events)
	r.mu.Unlock()

	sort.SliceStable(events, func(i, j int) bool { return events[i].at < events[j].at })

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(midiTempo))

	var last time.Duration
	for _, ev := range events {
		tr.Add(midiTicks.Ticks(midiTempo, ev.at-last), ev.msg)
		last = ev.at
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = midiTicks
	if err := s.Add(tr); err != nil {
		return 0, fmt.Errorf("add midi track: %w", err)
	}
	return s.WriteTo(w)
}

// Close writes the recording to its file.
func (r *MIDIRecorder) Close() error {
	f, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("create midi file: %w", err)
	}
	defer f.Close()

	if _, err := r.WriteTo(f); err != nil {
		return fmt.Errorf("write midi file: %w", err)
	}
	return nil
}
