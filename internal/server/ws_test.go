package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/theremin/internal/app"
	"github.com/ayusman/theremin/internal/detector"
	"github.com/ayusman/theremin/internal/tone"
	"github.com/gorilla/websocket"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	a, _ := newRecordingApp(t)
	return a
}

func newRecordingApp(t *testing.T) (*app.App, *tone.Recorder) {
	t.Helper()
	rec := tone.NewRecorder()
	a := app.New(app.Config{Settings: app.DefaultSettings(), Emitter: rec})
	a.SetDetector(detector.NewMockDetector())
	return a, rec
}

// wireHand converts fixture landmarks to the client message shape.
func wireHand(h detector.HandLandmarks) detector.WireHand {
	return detector.WireHand{
		Points:     h.Points[:],
		Handedness: h.Handedness,
		Score:      h.Score,
	}
}

func dialLandmarks(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/landmarks"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

type wsReply struct {
	Results   []app.Result `json:"results"`
	Dropped   int          `json:"dropped"`
	Timestamp int64        `json:"timestamp"`
	Error     string       `json:"error"`
}

func TestLandmarksHandler_RoundTrip(t *testing.T) {
	a, rec := newRecordingApp(t)
	ts := httptest.NewServer(New(Config{App: a}))
	defer ts.Close()

	conn := dialLandmarks(t, ts)

	frame := map[string]interface{}{
		"width":  1280,
		"height": 720,
		"hands": []detector.WireHand{
			wireHand(detector.PinchLandmarks(0.5, 0.5)),
			wireHand(detector.OpenHandLandmarks(0.5, 0.5)),
		},
	}
	if err := conn.WriteJSON(frame); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var reply wsReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}

	if reply.Error != "" {
		t.Fatalf("unexpected error reply: %s", reply.Error)
	}
	if reply.Timestamp == 0 {
		t.Error("expected a timestamp")
	}
	if len(reply.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(reply.Results))
	}
	if !reply.Results[0].Pinch || reply.Results[0].Params == nil {
		t.Errorf("first hand should pinch: %+v", reply.Results[0])
	}
	if reply.Results[1].Pinch {
		t.Errorf("second hand should not pinch: %+v", reply.Results[1])
	}
	if reply.Results[0].Params.Frequency != 1255 || reply.Results[0].Params.Gain != 0.5 {
		t.Errorf("params = %+v, want 1255 Hz at gain 0.5", reply.Results[0].Params)
	}

	if n := len(rec.Pulses()); n != 1 {
		t.Errorf("expected 1 pulse, got %d", n)
	}
}

func TestLandmarksHandler_MalformedInput(t *testing.T) {
	a, rec := newRecordingApp(t)
	ts := httptest.NewServer(New(Config{App: a}))
	defer ts.Close()

	conn := dialLandmarks(t, ts)

	// Bad JSON gets an error reply and the connection stays open.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{nope")); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	var reply wsReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if reply.Error == "" {
		t.Error("expected an error reply for bad JSON")
	}

	// A hand with too few points is dropped, the valid one is processed.
	short := detector.WireHand{Points: make([]detector.Point3D, 5)}
	frame := map[string]interface{}{
		"width":  1280,
		"height": 720,
		"hands":  []detector.WireHand{short, wireHand(detector.PinchLandmarks(0.2, 0.2))},
	}
	if err := conn.WriteJSON(frame); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	reply = wsReply{}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if reply.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", reply.Dropped)
	}
	if len(reply.Results) != 1 || !reply.Results[0].Pinch {
		t.Errorf("expected one pinching result, got %+v", reply.Results)
	}

	// No hands means no results and no pulses.
	if err := conn.WriteJSON(map[string]interface{}{"width": 1280, "height": 720, "hands": []detector.WireHand{}}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	reply = wsReply{}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if reply.Results == nil || len(reply.Results) != 0 {
		t.Errorf("expected empty results, got %+v", reply.Results)
	}

	if n := len(rec.Pulses()); n != 1 {
		t.Errorf("expected 1 pulse, got %d", n)
	}
}
