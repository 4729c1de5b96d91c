// Package overlay draws detected hands over camera frames.
package overlay

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/theremin/internal/detector"
)

// Drawing style: green skeleton, red joints.
var (
	ConnectorColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	LandmarkColor  = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

const (
	connectorThickness = 2
	landmarkRadius     = 3
)

// PixelPoint converts a normalized landmark to pixel coordinates.
func PixelPoint(p detector.Point3D, width, height int) image.Point {
	return image.Point{
		X: int(p.X * float64(width)),
		Y: int(p.Y * float64(height)),
	}
}

// Draw renders every hand onto frame in place.
func Draw(frame *gocv.Mat, hands []detector.HandLandmarks) {
	if frame == nil || frame.Empty() {
		return
	}

	w, h := frame.Cols(), frame.Rows()
	for i := range hands {
		hand := &hands[i]

		for _, c := range detector.Connections {
			gocv.Line(frame,
				PixelPoint(hand.Points[c[0]], w, h),
				PixelPoint(hand.Points[c[1]], w, h),
				ConnectorColor, connectorThickness)
		}

		for _, p := range hand.Points {
			gocv.Circle(frame, PixelPoint(p, w, h), landmarkRadius, LandmarkColor, -1)
		}
	}
}
