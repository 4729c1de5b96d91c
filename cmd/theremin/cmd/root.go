// Package cmd contains the CLI commands for the theremin.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ayusman/theremin/internal/app"
	"github.com/ayusman/theremin/internal/capture"
	"github.com/ayusman/theremin/internal/config"
	"github.com/ayusman/theremin/internal/detector"
	"github.com/ayusman/theremin/internal/gesture"
	"github.com/ayusman/theremin/internal/tone"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "theremin",
	Short: "Virtual theremin - pinch in front of the camera to play",
	Long: `Theremin watches your hand through the camera and plays a tone while
your thumb and index finger pinch.

  - Left to right raises the pitch
  - Bottom to top raises the volume

Running 'theremin' without arguments starts the service, same as 'theremin serve'.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.theremin/config.yaml)")
	addServeFlags(rootCmd)
}

// loadConfig binds the running command's flags and loads settings.
// Flags beat environment, environment beats the file.
func loadConfig(cmd *cobra.Command, bindings map[string]string) (*config.Config, error) {
	v := viper.New()
	for flag, key := range bindings {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}
	return config.Load(v, cfgFile)
}

// appSettings converts loaded settings into frame processor settings.
func appSettings(c *config.Config) app.Settings {
	return app.Settings{
		Threshold: c.Pinch.Threshold,
		Mapper: gesture.Mapper{
			Frequency: gesture.Range{Min: c.Frequency.Min, Max: c.Frequency.Max},
			Gain:      gesture.Range{Min: c.Gain.Min, Max: c.Gain.Max},
		},
		DebounceFrames: c.Pinch.DebounceFrames,
	}
}

// appConfig assembles the application config minus the store and emitter.
func appConfig(c *config.Config) app.Config {
	det := detector.DefaultConfig()
	det.MaxHands = c.Detector.MaxHands
	det.MinConfidence = c.Detector.MinConfidence
	det.MinTrackingConf = c.Detector.MinConfidence

	return app.Config{
		Camera: capture.Config{
			DeviceID: c.Camera.Device,
			Width:    c.Camera.Width,
			Height:   c.Camera.Height,
			FPS:      c.Camera.FPS,
		},
		Detector:   det,
		Settings:   appSettings(c),
		Oscillator: tone.NewOscillator(c.Tone.SampleRate, c.Tone.Duration),
	}
}
