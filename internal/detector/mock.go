package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// PinchLandmarks returns a right hand whose thumb tip and index tip
// touch at (x, y). The rest of the hand hangs below the pinch point.
func PinchLandmarks(x, y float64) HandLandmarks {
	return handAround(x, y, Point3D{X: x, Y: y}, Point3D{X: x, Y: y})
}

// OpenHandLandmarks returns a right hand with the thumb tip at (x, y)
// and the index fingertip spread far above and to the left of it.
func OpenHandLandmarks(x, y float64) HandLandmarks {
	return handAround(x, y, Point3D{X: x, Y: y}, Point3D{X: x - 0.2, Y: y - 0.3})
}

// HandWithTips returns a hand with only the thumb and index tips placed;
// every other landmark sits at the thumb tip.
func HandWithTips(thumb, index Point3D) HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}
	for i := range h.Points {
		h.Points[i] = thumb
	}
	h.Points[ThumbTip] = thumb
	h.Points[IndexTip] = index
	return h
}

func handAround(x, y float64, thumb, index Point3D) HandLandmarks {
	h := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	// Wrist and knuckles sit below the pinch point; Y grows downward.
	h.Points[Wrist] = Point3D{X: x - 0.05, Y: y + 0.25}

	h.Points[ThumbCMC] = Point3D{X: x + 0.02, Y: y + 0.20}
	h.Points[ThumbMCP] = Point3D{X: x + 0.04, Y: y + 0.14}
	h.Points[ThumbIP] = Point3D{X: x + 0.03, Y: y + 0.07}
	h.Points[ThumbTip] = thumb

	h.Points[IndexMCP] = Point3D{X: x - 0.03, Y: y + 0.12}
	h.Points[IndexPIP] = Point3D{X: x - 0.03, Y: y + 0.07}
	h.Points[IndexDIP] = Point3D{X: x - 0.02, Y: y + 0.03}
	h.Points[IndexTip] = index

	h.Points[MiddleMCP] = Point3D{X: x - 0.07, Y: y + 0.12}
	h.Points[MiddlePIP] = Point3D{X: x - 0.08, Y: y + 0.04}
	h.Points[MiddleDIP] = Point3D{X: x - 0.08, Y: y - 0.01}
	h.Points[MiddleTip] = Point3D{X: x - 0.08, Y: y - 0.05}

	h.Points[RingMCP] = Point3D{X: x - 0.10, Y: y + 0.13}
	h.Points[RingPIP] = Point3D{X: x - 0.11, Y: y + 0.06}
	h.Points[RingDIP] = Point3D{X: x - 0.11, Y: y + 0.01}
	h.Points[RingTip] = Point3D{X: x - 0.11, Y: y - 0.03}

	h.Points[PinkyMCP] = Point3D{X: x - 0.13, Y: y + 0.15}
	h.Points[PinkyPIP] = Point3D{X: x - 0.14, Y: y + 0.10}
	h.Points[PinkyDIP] = Point3D{X: x - 0.14, Y: y + 0.06}
	h.Points[PinkyTip] = Point3D{X: x - 0.14, Y: y + 0.03}

	return h
}
