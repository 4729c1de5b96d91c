package app

import (
	"errors"
	"log"
	"time"

	"github.com/ayusman/theremin/internal/capture"
)

// runPipeline is the main detection loop. Each tick reads a frame, detects
// hands and hands them to ProcessFrame with the frame's own dimensions.
// Read and detection errors skip the frame; the loop only exits on stop.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}, fps int) {
	defer close(doneCh)

	if fps <= 0 {
		fps = capture.DefaultFPS
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	// Track pinch transitions for logging only
	pinching := false

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			// Skip processing if output is disabled
			if !a.IsEnabled() {
				continue
			}

			cam := a.Camera()
			det := a.Detector()

			frame, err := cam.ReadFrame()
			if err != nil {
				if errors.Is(err, capture.ErrNoMoreFrames) {
					continue
				}
				log.Printf("Error reading frame: %v", err)
				continue
			}

			width, height := frame.Cols(), frame.Rows()

			if det == nil {
				frame.Close()
				continue
			}

			hands, err := det.Detect(frame)
			frame.Close() // Done with the frame

			if err != nil {
				log.Printf("Error detecting hands: %v", err)
				continue
			}

			active := false
			for _, r := range a.ProcessFrame(hands, width, height) {
				if r.Pinch {
					active = true
					break
				}
			}

			if active != pinching {
				pinching = active
				if pinching {
					log.Println("Pinch started")
				} else {
					log.Println("Pinch released")
				}
			}
		}
	}
}
