// Package config loads theremin settings from defaults, a YAML file and
// THEREMIN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. THEREMIN_PINCH_THRESHOLD.
const EnvPrefix = "THEREMIN"

// FileName is the config file looked up in DefaultDir.
const FileName = "config.yaml"

// ErrExists is returned by WriteDefault when the target file already exists.
var ErrExists = errors.New("config file already exists")

// Config holds all service settings.
type Config struct {
	Server    ServerConfig   `mapstructure:"server" yaml:"server"`
	DataDir   string         `mapstructure:"data_dir" yaml:"data_dir"`
	Camera    CameraConfig   `mapstructure:"camera" yaml:"camera"`
	Detector  DetectorConfig `mapstructure:"detector" yaml:"detector"`
	Pinch     PinchConfig    `mapstructure:"pinch" yaml:"pinch"`
	Frequency RangeConfig    `mapstructure:"frequency" yaml:"frequency"`
	Gain      RangeConfig    `mapstructure:"gain" yaml:"gain"`
	Tone      ToneConfig     `mapstructure:"tone" yaml:"tone"`
	Record    RecordConfig   `mapstructure:"record" yaml:"record"`
	Tray      bool           `mapstructure:"tray" yaml:"tray"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr   string `mapstructure:"addr" yaml:"addr"`
	WebDir string `mapstructure:"web_dir" yaml:"web_dir"` // empty disables static files
}

// CameraConfig selects the capture device and requested frame size.
type CameraConfig struct {
	Device int `mapstructure:"device" yaml:"device"`
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
	FPS    int `mapstructure:"fps" yaml:"fps"`
}

// DetectorConfig tunes the hand landmark model.
type DetectorConfig struct {
	MaxHands      int     `mapstructure:"max_hands" yaml:"max_hands"`
	MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence"`
}

// PinchConfig tunes the pinch classifier.
type PinchConfig struct {
	Threshold      float64 `mapstructure:"threshold" yaml:"threshold"`
	DebounceFrames int     `mapstructure:"debounce_frames" yaml:"debounce_frames"`
}

// RangeConfig is a closed interval.
type RangeConfig struct {
	Min float64 `mapstructure:"min" yaml:"min"`
	Max float64 `mapstructure:"max" yaml:"max"`
}

// ToneConfig shapes each pulse.
type ToneConfig struct {
	Duration   time.Duration `mapstructure:"duration" yaml:"duration"`
	SampleRate int           `mapstructure:"sample_rate" yaml:"sample_rate"`
}

// RecordConfig controls optional pulse recording.
type RecordConfig struct {
	MIDI string `mapstructure:"midi" yaml:"midi"` // empty disables recording
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:   ":8080",
			WebDir: "web",
		},
		Camera: CameraConfig{
			Device: 0,
			Width:  1280,
			Height: 720,
			FPS:    30,
		},
		Detector: DetectorConfig{
			MaxHands:      1,
			MinConfidence: 0.5,
		},
		Pinch: PinchConfig{
			Threshold: 50,
		},
		Frequency: RangeConfig{Min: 10, Max: 2500},
		Gain:      RangeConfig{Min: 0, Max: 1},
		Tone: ToneConfig{
			Duration:   10 * time.Millisecond,
			SampleRate: 44100,
		},
	}
}

// DefaultDir returns ~/.theremin, or .theremin when the home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".theremin"
	}
	return filepath.Join(home, ".theremin")
}

// SetDefaults registers every key with its built-in value so environment
// overrides are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.web_dir", d.Server.WebDir)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("camera.device", d.Camera.Device)
	v.SetDefault("camera.width", d.Camera.Width)
	v.SetDefault("camera.height", d.Camera.Height)
	v.SetDefault("camera.fps", d.Camera.FPS)
	v.SetDefault("detector.max_hands", d.Detector.MaxHands)
	v.SetDefault("detector.min_confidence", d.Detector.MinConfidence)
	v.SetDefault("pinch.threshold", d.Pinch.Threshold)
	v.SetDefault("pinch.debounce_frames", d.Pinch.DebounceFrames)
	v.SetDefault("frequency.min", d.Frequency.Min)
	v.SetDefault("frequency.max", d.Frequency.Max)
	v.SetDefault("gain.min", d.Gain.Min)
	v.SetDefault("gain.max", d.Gain.Max)
	v.SetDefault("tone.duration", d.Tone.Duration)
	v.SetDefault("tone.sample_rate", d.Tone.SampleRate)
	v.SetDefault("record.midi", d.Record.MIDI)
	v.SetDefault("tray", d.Tray)
}

// Load reads settings into v and decodes them. An explicit path must exist;
// with an empty path the file in DefaultDir is optional.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if c.DataDir == "" {
		c.DataDir = DefaultDir()
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Camera.FPS <= 0 {
		errs = append(errs, fmt.Errorf("camera.fps must be positive, got %d", c.Camera.FPS))
	}
	if c.Detector.MaxHands <= 0 {
		errs = append(errs, fmt.Errorf("detector.max_hands must be positive, got %d", c.Detector.MaxHands))
	}
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("detector.min_confidence must be within [0, 1], got %g", c.Detector.MinConfidence))
	}
	if c.Pinch.Threshold <= 0 {
		errs = append(errs, fmt.Errorf("pinch.threshold must be positive, got %g", c.Pinch.Threshold))
	}
	if c.Pinch.DebounceFrames < 0 {
		errs = append(errs, fmt.Errorf("pinch.debounce_frames must not be negative, got %d", c.Pinch.DebounceFrames))
	}
	if c.Frequency.Min < 0 || c.Frequency.Min > c.Frequency.Max {
		errs = append(errs, fmt.Errorf("frequency range [%g, %g] is invalid", c.Frequency.Min, c.Frequency.Max))
	}
	if c.Gain.Min < 0 || c.Gain.Max > 1 || c.Gain.Min > c.Gain.Max {
		errs = append(errs, fmt.Errorf("gain range [%g, %g] is invalid", c.Gain.Min, c.Gain.Max))
	}
	if c.Tone.Duration <= 0 {
		errs = append(errs, fmt.Errorf("tone.duration must be positive, got %s", c.Tone.Duration))
	}
	if c.Tone.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("tone.sample_rate must be positive, got %d", c.Tone.SampleRate))
	}

	return errors.Join(errs...)
}

// DBPath returns the SQLite database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "theremin.db")
}

// Marshal encodes c as YAML.
func Marshal(c *Config) ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return out, nil
}

// WriteDefault writes the built-in settings as YAML to path, creating parent
// directories. An existing file is left alone and ErrExists returned.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}

	out, err := Marshal(Default())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
