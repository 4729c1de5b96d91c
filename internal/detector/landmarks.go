// Package detector provides hand detection interfaces and landmark types for the theremin.
package detector

import (
	"errors"
	"fmt"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ErrMalformedHand is returned when a hand does not carry exactly NumLandmarks points.
var ErrMalformedHand = errors.New("malformed hand landmarks")

// Connections lists the landmark pairs joined when a hand skeleton is drawn.
var Connections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// Point3D is one landmark. X and Y are normalized to the frame width and height.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks of one detected hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// ThumbTip returns the thumb tip landmark.
func (h *HandLandmarks) ThumbTip() Point3D {
	return h.Points[ThumbTip]
}

// IndexTip returns the index fingertip landmark.
func (h *HandLandmarks) IndexTip() Point3D {
	return h.Points[IndexTip]
}

// NewHandLandmarks builds a hand from a decoded point list.
// The list must hold exactly NumLandmarks points.
func NewHandLandmarks(points []Point3D, handedness string, score float64) (HandLandmarks, error) {
	if len(points) != NumLandmarks {
		return HandLandmarks{}, fmt.Errorf("%w: got %d points, want %d", ErrMalformedHand, len(points), NumLandmarks)
	}

	h := HandLandmarks{
		Handedness: handedness,
		Score:      score,
	}
	copy(h.Points[:], points)
	return h, nil
}

// WireHand is the JSON shape of a hand as sent by the landmark model
// and by browser clients. Points is a slice so short lists can be rejected.
type WireHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

// DecodeHands converts wire hands into HandLandmarks, dropping malformed ones.
// The number of dropped hands is returned alongside the valid ones.
func DecodeHands(wire []WireHand) ([]HandLandmarks, int) {
	if len(wire) == 0 {
		return nil, 0
	}

	hands := make([]HandLandmarks, 0, len(wire))
	dropped := 0
	for _, w := range wire {
		h, err := NewHandLandmarks(w.Points, w.Handedness, w.Score)
		if err != nil {
			dropped++
			continue
		}
		hands = append(hands, h)
	}
	return hands, dropped
}
