package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/theremin/internal/tone"
)

var toneCmd = &cobra.Command{
	Use:   "tone",
	Short: "Play a test tone",
	Long: `Play a burst of pulses at a fixed frequency and gain, exactly as a
held pinch would. Useful for checking the audio device.`,
	RunE: runTone,
}

func init() {
	rootCmd.AddCommand(toneCmd)
	toneCmd.Flags().Float64("freq", 440, "frequency in Hz")
	toneCmd.Flags().Float64("gain", 0.5, "gain between 0 and 1")
	toneCmd.Flags().Duration("for", time.Second, "how long to play")
}

func runTone(cmd *cobra.Command, args []string) error {
	freq, _ := cmd.Flags().GetFloat64("freq")
	gain, _ := cmd.Flags().GetFloat64("gain")
	length, _ := cmd.Flags().GetDuration("for")

	if freq <= 0 {
		return fmt.Errorf("frequency must be positive, got %g", freq)
	}
	if gain < 0 || gain > 1 {
		return fmt.Errorf("gain must be within [0, 1], got %g", gain)
	}

	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	osc := tone.NewOscillator(cfg.Tone.SampleRate, cfg.Tone.Duration)
	e, err := tone.NewOtoEmitter(osc)
	if err != nil {
		return fmt.Errorf("opening audio device: %w", err)
	}
	defer e.Close()

	p := tone.Params{Frequency: freq, Gain: gain}
	fmt.Printf("Playing %.1f Hz at gain %.2f for %s\n", freq, gain, length)

	// One pulse per display frame, like a held pinch.
	ticker := time.NewTicker(time.Second / time.Duration(cfg.Camera.FPS))
	defer ticker.Stop()

	deadline := time.After(length)
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case <-deadline:
			return nil
		case <-ticker.C:
			e.Emit(p)
		}
	}
}
