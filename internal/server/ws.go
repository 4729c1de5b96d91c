package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/ayusman/theremin/internal/app"
	"github.com/ayusman/theremin/internal/detector"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FrameProcessor classifies the hands of one frame and emits tones.
type FrameProcessor interface {
	ProcessFrame(hands []detector.HandLandmarks, width, height int) []app.Result
}

// LandmarksHandler accepts landmark frames from clients over WebSocket,
// runs them through the frame processor and replies with the results.
// Each connection is served on its own goroutine.
type LandmarksHandler struct {
	processor FrameProcessor
}

// NewLandmarksHandler creates a new LandmarksHandler.
func NewLandmarksHandler(p FrameProcessor) *LandmarksHandler {
	return &LandmarksHandler{processor: p}
}

// landmarkFrame is one client message.
type landmarkFrame struct {
	Width  int                 `json:"width"`
	Height int                 `json:"height"`
	Hands  []detector.WireHand `json:"hands"`
}

type landmarkReply struct {
	Results   []app.Result `json:"results"`
	Dropped   int          `json:"dropped,omitempty"`
	Timestamp int64        `json:"timestamp"`
}

type landmarkError struct {
	Error string `json:"error"`
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LandmarksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}

		if err := conn.WriteJSON(h.handleFrame(data)); err != nil {
			log.Printf("websocket write error: %v", err)
			return
		}
	}
}

// handleFrame decodes one message and returns the reply to send.
func (h *LandmarksHandler) handleFrame(data []byte) interface{} {
	var frame landmarkFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return landmarkError{Error: "invalid landmark frame: " + err.Error()}
	}

	hands, dropped := detector.DecodeHands(frame.Hands)
	results := h.processor.ProcessFrame(hands, frame.Width, frame.Height)
	if results == nil {
		results = []app.Result{}
	}

	return landmarkReply{
		Results:   results,
		Dropped:   dropped,
		Timestamp: time.Now().UnixMilli(),
	}
}
