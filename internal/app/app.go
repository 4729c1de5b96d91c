// Package app wires capture, detection, classification and tone output
// into the running theremin.
package app

import (
	"fmt"
	"log"
	"sync"

	"github.com/ayusman/theremin/internal/capture"
	"github.com/ayusman/theremin/internal/detector"
	"github.com/ayusman/theremin/internal/gesture"
	"github.com/ayusman/theremin/internal/store"
	"github.com/ayusman/theremin/internal/tone"
)

// Settings are the tunable parts of the frame processor.
type Settings struct {
	Threshold      float64        `json:"threshold"`
	Mapper         gesture.Mapper `json:"mapper"`
	DebounceFrames int            `json:"debounce_frames"`
}

// DefaultSettings returns a 50 px threshold, 10-2500 Hz, gain 0-1, no debouncing.
func DefaultSettings() Settings {
	return Settings{
		Threshold: gesture.DefaultPinchThreshold,
		Mapper:    gesture.DefaultMapper(),
	}
}

// Validate checks the threshold, both ranges and the debounce count.
func (s Settings) Validate() error {
	if s.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %g", s.Threshold)
	}
	if s.DebounceFrames < 0 {
		return fmt.Errorf("debounce frames must not be negative, got %d", s.DebounceFrames)
	}
	return s.Mapper.Validate()
}

// SettingsFromPreset converts a stored preset.
func SettingsFromPreset(p *store.Preset) Settings {
	return Settings{
		Threshold: p.Threshold,
		Mapper: gesture.Mapper{
			Frequency: gesture.Range{Min: p.MinFrequency, Max: p.MaxFrequency},
			Gain:      gesture.Range{Min: p.MinGain, Max: p.MaxGain},
		},
		DebounceFrames: p.DebounceFrames,
	}
}

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	Camera   capture.Config
	Detector detector.Config
	Settings Settings

	// Emitter receives pulses. When nil the default audio device is opened,
	// falling back to a silent emitter if there is none.
	Emitter tone.Emitter

	// Oscillator shapes pulses for the default audio device.
	Oscillator tone.Oscillator
}

// App is the main application that turns detected hands into tones.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	emitter  tone.Emitter

	settings   Settings
	classifier gesture.PinchClassifier
	debouncers []*gesture.Debouncer
	lastPulse  *tone.Pulse

	enabled bool
	mu      sync.RWMutex
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a new App instance with the given configuration.
// Invalid settings fall back to DefaultSettings.
func New(config Config) *App {
	settings := config.Settings
	if err := settings.Validate(); err != nil {
		log.Printf("Invalid theremin settings (%v), using defaults", err)
		settings = DefaultSettings()
	}

	a := &App{
		config:  config,
		camera:  capture.NewCamera(config.Camera),
		enabled: true,
	}
	a.applySettings(settings)

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	if config.Emitter != nil {
		a.emitter = config.Emitter
	} else if e, err := tone.NewOtoEmitter(tone.NewOscillator(config.Oscillator.SampleRate, config.Oscillator.Duration)); err == nil {
		a.emitter = e
		log.Println("Using default audio device")
	} else {
		log.Printf("Audio output not available (%v), tones are muted", err)
		a.emitter = tone.NopEmitter{}
	}

	return a
}

// applySettings swaps the processor settings. Callers hold a.mu or own a.
func (a *App) applySettings(s Settings) {
	a.settings = s
	a.classifier = gesture.NewPinchClassifier(s.Threshold)
	a.debouncers = nil
}

// ApplySettings validates and installs new processor settings.
// Frames already in flight finish with the old settings.
func (a *App) ApplySettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.applySettings(s)
	return nil
}

// ApplyPreset installs the settings of a stored preset.
func (a *App) ApplyPreset(p *store.Preset) error {
	if err := a.ApplySettings(SettingsFromPreset(p)); err != nil {
		return fmt.Errorf("preset %q: %w", p.Name, err)
	}
	log.Printf("Applied preset %q", p.Name)
	return nil
}

// LoadActivePreset applies the active preset from the store, if any.
func (a *App) LoadActivePreset() error {
	if a.config.Store == nil {
		return nil
	}

	p, err := a.config.Store.ActivePreset()
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}
	return a.ApplyPreset(p)
}

// Settings returns the current processor settings.
func (a *App) Settings() Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// SetEnabled enables or disables tone output.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
	a.debouncers = nil
}

// IsEnabled returns whether tone output is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the frame source. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetEmitter replaces the tone output.
func (a *App) SetEmitter(e tone.Emitter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.emitter = e
}

// Emitter returns the current tone output.
func (a *App) Emitter() tone.Emitter {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.emitter
}

// LastPulse returns the most recent pulse, if any.
func (a *App) LastPulse() (tone.Pulse, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.lastPulse == nil {
		return tone.Pulse{}, false
	}
	return *a.lastPulse, true
}

// Start begins the camera pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh, a.camera.FPS())

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the camera pipeline and releases capture and detection resources.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}

	close(stopCh)
	<-doneCh

	a.mu.RLock()
	defer a.mu.RUnlock()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}

// Close stops the pipeline and releases the tone output.
func (a *App) Close() error {
	a.Stop()

	a.mu.RLock()
	e := a.emitter
	a.mu.RUnlock()

	return e.Close()
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}
