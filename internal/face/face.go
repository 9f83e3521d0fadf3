// Package face holds detector output: face boxes and 68-point landmarks.
package face

import (
	"image"

	"github.com/dudu/gazetrack/internal/eye"
)

// Point represents a 2D point in model space
type Point struct {
	X, Y float32
}

// BoundingBox represents a face bounding box
type BoundingBox struct {
	X1, Y1 float32 // top-left
	X2, Y2 float32 // bottom-right
}

// BoxFromRect converts an integer rectangle
func BoxFromRect(r image.Rectangle) BoundingBox {
	return BoundingBox{
		X1: float32(r.Min.X), Y1: float32(r.Min.Y),
		X2: float32(r.Max.X), Y2: float32(r.Max.Y),
	}
}

// Width returns box width
func (b BoundingBox) Width() float32 {
	return b.X2 - b.X1
}

// Height returns box height
func (b BoundingBox) Height() float32 {
	return b.Y2 - b.Y1
}

// Center returns box center point
func (b BoundingBox) Center() Point {
	return Point{
		X: (b.X1 + b.X2) / 2,
		Y: (b.Y1 + b.Y2) / 2,
	}
}

// Area returns box area
func (b BoundingBox) Area() float32 {
	return b.Width() * b.Height()
}

// Rect returns the box as an integer rectangle
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2))
}

// Index ranges of the eyes in the 68-point scheme (end exclusive)
const (
	NumLandmarks  = 68
	LeftEyeStart  = 36
	LeftEyeEnd    = 42
	RightEyeStart = 42
	RightEyeEnd   = 48
)

// Landmarks68 holds the 68 facial landmarks of the iBUG 300-W scheme
type Landmarks68 [NumLandmarks]image.Point

// LeftEye returns points 36-41
func (l *Landmarks68) LeftEye() eye.Landmarks {
	var e eye.Landmarks
	copy(e[:], l[LeftEyeStart:LeftEyeEnd])
	return e
}

// RightEye returns points 42-47
func (l *Landmarks68) RightEye() eye.Landmarks {
	var e eye.Landmarks
	copy(e[:], l[RightEyeStart:RightEyeEnd])
	return e
}

// BoundingBox computes tight bounding box around all 68 points
func (l *Landmarks68) BoundingBox() BoundingBox {
	minX, minY := l[0].X, l[0].Y
	maxX, maxY := l[0].X, l[0].Y
	for i := 1; i < len(l); i++ {
		minX = min(minX, l[i].X)
		maxX = max(maxX, l[i].X)
		minY = min(minY, l[i].Y)
		maxY = max(maxY, l[i].Y)
	}
	return BoundingBox{X1: float32(minX), Y1: float32(minY), X2: float32(maxX), Y2: float32(maxY)}
}

// Face represents a detected face
type Face struct {
	BoundingBox BoundingBox
	Landmarks   *Landmarks68 // nil until a landmark detector ran
	Score       float32
}
