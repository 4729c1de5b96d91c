package app

import (
	"errors"
	"testing"
	"time"

	"github.com/ayusman/theremin/internal/capture"
	"github.com/ayusman/theremin/internal/detector"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestApp_Pipeline_EmitsPulses(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, rec := newTestApp(t, DefaultSettings())

	cam, frame := capture.NewBlankCamera(640, 480)
	defer frame.Close()
	cam.SetFPS(100)
	a.SetCamera(cam)

	mock := detector.NewMockDetector()
	mock.SetHands([]detector.HandLandmarks{detector.PinchLandmarks(0.25, 0.75)})
	a.SetDetector(mock)

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if !waitFor(t, 2*time.Second, func() bool { return len(rec.Pulses()) >= 3 }) {
		a.Stop()
		t.Fatalf("expected pulses from the pipeline, got %d", len(rec.Pulses()))
	}

	a.Stop()

	if cam.IsOpen() {
		t.Error("camera should be closed after Stop()")
	}

	last, _ := rec.Last()
	if !almostEqual(last.Params.Frequency, 10+0.25*2490) || !almostEqual(last.Params.Gain, 0.25) {
		t.Errorf("pulse = %+v", last.Params)
	}

	// Stopping twice is harmless.
	a.Stop()
}

func TestApp_Pipeline_SkipsDetectorErrors(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, rec := newTestApp(t, DefaultSettings())

	cam, frame := capture.NewBlankCamera(640, 480)
	defer frame.Close()
	cam.SetFPS(100)
	a.SetCamera(cam)

	mock := detector.NewMockDetector()
	mock.SetError(errors.New("model crashed"))
	a.SetDetector(mock)

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer a.Stop()

	if !waitFor(t, 2*time.Second, func() bool { return mock.Calls() >= 3 }) {
		t.Fatalf("pipeline stopped calling the detector after an error")
	}

	if n := len(rec.Pulses()); n != 0 {
		t.Errorf("expected no pulses, got %d", n)
	}

	// Recover once the detector does.
	mock.SetError(nil)
	mock.SetHands([]detector.HandLandmarks{detector.PinchLandmarks(0.5, 0.5)})

	if !waitFor(t, 2*time.Second, func() bool { return len(rec.Pulses()) > 0 }) {
		t.Error("expected pulses after the detector recovered")
	}
}

func TestApp_Pipeline_Disabled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, rec := newTestApp(t, DefaultSettings())
	a.SetEnabled(false)

	cam, frame := capture.NewBlankCamera(640, 480)
	defer frame.Close()
	cam.SetFPS(100)
	a.SetCamera(cam)

	mock := detector.NewMockDetector()
	mock.SetHands([]detector.HandLandmarks{detector.PinchLandmarks(0.5, 0.5)})
	a.SetDetector(mock)

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	a.Stop()

	if cam.Reads() != 0 {
		t.Errorf("disabled pipeline read %d frames", cam.Reads())
	}
	if n := len(rec.Pulses()); n != 0 {
		t.Errorf("expected no pulses, got %d", n)
	}
}
