package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/theremin/internal/app"
	"github.com/ayusman/theremin/internal/config"
	"github.com/ayusman/theremin/internal/server"
	"github.com/ayusman/theremin/internal/store"
	"github.com/ayusman/theremin/internal/tone"
	"github.com/ayusman/theremin/internal/tray"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the camera pipeline and HTTP API",
	Long: `Start the theremin: open the camera, detect hands, play tones and
serve the HTTP API, landmark WebSocket and camera stream.

When no camera is available the API still runs; browser clients can send
landmarks to /api/landmarks instead.`,
	RunE: runServe,
}

// serveFlags maps flag names to config keys.
var serveFlags = map[string]string{
	"addr":        "server.addr",
	"web-dir":     "server.web_dir",
	"camera":      "camera.device",
	"threshold":   "pinch.threshold",
	"record-midi": "record.midi",
	"tray":        "tray",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().String("addr", d.Server.Addr, "HTTP listen address")
	cmd.Flags().String("web-dir", d.Server.WebDir, "static web directory")
	cmd.Flags().Int("camera", d.Camera.Device, "camera device index")
	cmd.Flags().Float64("threshold", d.Pinch.Threshold, "pinch threshold in pixels per axis")
	cmd.Flags().String("record-midi", d.Record.MIDI, "write played notes to this MIDI file")
	cmd.Flags().Bool("tray", d.Tray, "show a system tray icon")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, serveFlags)
	if err != nil {
		return err
	}

	fmt.Println("Theremin - pinch to play")

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	appCfg := appConfig(cfg)
	appCfg.Store = st
	a := app.New(appCfg)

	if cfg.Record.MIDI != "" {
		a.SetEmitter(tone.Multi{a.Emitter(), tone.NewMIDIRecorder(cfg.Record.MIDI, cfg.Tone.Duration)})
		log.Printf("Recording notes to %s", cfg.Record.MIDI)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("Error closing tone output: %v", err)
		}
	}()

	if err := a.LoadActivePreset(); err != nil {
		log.Printf("Failed to load active preset: %v", err)
	}

	srvCfg := server.Config{
		StaticDir: findWebDir(cfg.Server.WebDir, cfg.DataDir),
		Store:     st,
		App:       a,
	}
	if err := a.Start(); err != nil {
		log.Printf("Camera not available (%v), waiting for WebSocket landmarks", err)
	} else {
		srvCfg.Camera = a.Camera()
		srvCfg.Detector = a.Detector()
	}

	if srvCfg.StaticDir != "" {
		fmt.Printf("Serving static files from: %s\n", srvCfg.StaticDir)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(srvCfg)

	if !cfg.Tray {
		fmt.Printf("Starting server on %s\n", cfg.Server.Addr)
		return srv.Run(ctx, cfg.Server.Addr)
	}

	// The tray owns the main goroutine; the server runs beside it.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Server.Addr)
		errCh <- srv.Run(ctx, cfg.Server.Addr)
	}()

	runTray(ctx, cancel, a, cfg.Server.Addr)
	cancel()
	return <-errCh
}

// runTray shows the tray icon until quit is chosen or ctx ends.
func runTray(ctx context.Context, cancel context.CancelFunc, a *app.App, addr string) {
	t := tray.New()
	t.SetEnabled(a.IsEnabled())
	t.OnToggle(a.SetEnabled)
	t.OnSettings(func() {
		log.Printf("Settings are served at http://%s/", displayAddr(addr))
	})
	t.OnQuit(cancel)

	go func() {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				t.Quit()
				return
			case <-ticker.C:
				t.SetEnabled(a.IsEnabled())
				t.SetLastPulse(a.LastPulse())
			}
		}
	}()

	t.Run()
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

// findWebDir resolves the static web directory. A relative dir is tried
// against the working directory and its parents, then under dataDir.
// Returns "" if nothing exists.
func findWebDir(dir, dataDir string) string {
	if dir == "" {
		return ""
	}

	candidates := []string{dir}
	if !filepath.IsAbs(dir) {
		candidates = append(candidates,
			filepath.Join("..", dir),
			filepath.Join("..", "..", dir),
			filepath.Join(dataDir, dir),
		)
	}

	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
