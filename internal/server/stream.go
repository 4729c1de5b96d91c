package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/theremin/internal/capture"
	"github.com/ayusman/theremin/internal/detector"
	"github.com/ayusman/theremin/internal/overlay"
	"gocv.io/x/gocv"
)

// streamInterval paces the MJPEG stream at ~15 FPS.
const streamInterval = 66 * time.Millisecond

// StreamHandler serves MJPEG frames from the camera with the detected
// hand skeleton drawn on top.
type StreamHandler struct {
	camera   capture.Camera
	detector detector.Detector
}

// NewStreamHandler creates a new StreamHandler. A nil detector streams
// plain frames.
func NewStreamHandler(camera capture.Camera, d detector.Detector) *StreamHandler {
	return &StreamHandler{camera: camera, detector: d}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		frame, err := h.camera.ReadFrame()
		if err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		if h.detector != nil {
			if hands, err := h.detector.Detect(frame); err == nil {
				overlay.Draw(frame, hands)
			}
		}

		// Encode as JPEG
		buf, err := gocv.IMEncode(".jpg", *frame)
		frame.Close()
		if err != nil {
			continue
		}

		// Write MJPEG frame
		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
		w.Write(buf.GetBytes())
		fmt.Fprintf(w, "\r\n")
		buf.Close()

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(streamInterval)
	}
}
