package detector

import (
	"errors"
	"testing"
)

func TestNewHandLandmarks(t *testing.T) {
	t.Run("accepts exactly 21 points", func(t *testing.T) {
		points := make([]Point3D, NumLandmarks)
		points[ThumbTip] = Point3D{X: 0.25, Y: 0.75}
		points[IndexTip] = Point3D{X: 0.3, Y: 0.7}

		hand, err := NewHandLandmarks(points, "Left", 0.8)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hand.ThumbTip() != points[ThumbTip] {
			t.Errorf("ThumbTip() = %v, want %v", hand.ThumbTip(), points[ThumbTip])
		}
		if hand.IndexTip() != points[IndexTip] {
			t.Errorf("IndexTip() = %v, want %v", hand.IndexTip(), points[IndexTip])
		}
		if hand.Handedness != "Left" || hand.Score != 0.8 {
			t.Errorf("metadata not preserved: %s %f", hand.Handedness, hand.Score)
		}
	})

	tests := []struct {
		name  string
		count int
	}{
		{name: "empty", count: 0},
		{name: "too few", count: 9},
		{name: "too many", count: 22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHandLandmarks(make([]Point3D, tt.count), "Right", 1)
			if !errors.Is(err, ErrMalformedHand) {
				t.Errorf("expected ErrMalformedHand, got %v", err)
			}
		})
	}
}

func TestDecodeHands(t *testing.T) {
	t.Run("nil input yields no hands", func(t *testing.T) {
		hands, dropped := DecodeHands(nil)
		if hands != nil || dropped != 0 {
			t.Errorf("expected nil, 0; got %v, %d", hands, dropped)
		}
	})

	t.Run("drops malformed hands and keeps order", func(t *testing.T) {
		good := make([]Point3D, NumLandmarks)
		good[ThumbTip] = Point3D{X: 0.1}
		other := make([]Point3D, NumLandmarks)
		other[ThumbTip] = Point3D{X: 0.9}

		hands, dropped := DecodeHands([]WireHand{
			{Points: good, Handedness: "Right"},
			{Points: good[:5]},
			{Points: other, Handedness: "Left"},
		})

		if dropped != 1 {
			t.Errorf("dropped = %d, want 1", dropped)
		}
		if len(hands) != 2 {
			t.Fatalf("expected 2 hands, got %d", len(hands))
		}
		if hands[0].ThumbTip().X != 0.1 || hands[1].ThumbTip().X != 0.9 {
			t.Errorf("hands out of order: %v, %v", hands[0].ThumbTip(), hands[1].ThumbTip())
		}
	})
}

func TestConnections_InRange(t *testing.T) {
	for _, c := range Connections {
		for _, idx := range c {
			if idx < 0 || idx >= NumLandmarks {
				t.Errorf("connection %v references landmark %d out of range", c, idx)
			}
		}
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{PinchLandmarks(0.5, 0.5), OpenHandLandmarks(0.5, 0.5)})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
		if mock.Calls() != 1 {
			t.Errorf("Calls() = %d, want 1", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestPinchLandmarks(t *testing.T) {
	hand := PinchLandmarks(0.4, 0.6)

	if hand.ThumbTip() != hand.IndexTip() {
		t.Errorf("thumb %v and index %v should coincide", hand.ThumbTip(), hand.IndexTip())
	}
	if hand.ThumbTip().X != 0.4 || hand.ThumbTip().Y != 0.6 {
		t.Errorf("thumb tip = %v, want (0.4, 0.6)", hand.ThumbTip())
	}
	if hand.Points[Wrist].Y <= hand.ThumbTip().Y {
		t.Error("wrist should be below the pinch point (higher Y value)")
	}
}

func TestOpenHandLandmarks(t *testing.T) {
	hand := OpenHandLandmarks(0.5, 0.5)

	if hand.IndexTip().Y >= hand.ThumbTip().Y {
		t.Error("index tip should be above the thumb tip (lower Y value)")
	}
	if hand.IndexTip().X >= hand.ThumbTip().X {
		t.Error("index tip should be left of the thumb tip")
	}
}

func TestHandWithTips(t *testing.T) {
	thumb := Point3D{X: 0.1, Y: 0.2}
	index := Point3D{X: 0.3, Y: 0.4}

	hand := HandWithTips(thumb, index)

	if hand.ThumbTip() != thumb || hand.IndexTip() != index {
		t.Errorf("tips = %v, %v; want %v, %v", hand.ThumbTip(), hand.IndexTip(), thumb, index)
	}
}
