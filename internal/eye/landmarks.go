// Package eye computes per-eye measurements from six ordered eye landmarks:
// the eye aspect ratio, the isolated binary eye crop and the gaze ratio
// derived from it.
package eye

import (
	"errors"
	"image"
	"math"
)

var (
	// ErrDegenerateEye is returned when the eye corners coincide and the
	// aspect ratio is undefined.
	ErrDegenerateEye = errors.New("eye: degenerate landmarks (corner distance is zero)")
	// ErrInvalidRegion is returned when the eye crop has zero area.
	ErrInvalidRegion = errors.New("eye: crop region is empty")
	// ErrInvalidThreshold is returned for binarize thresholds outside [0,255].
	ErrInvalidThreshold = errors.New("eye: binarize threshold out of range")
)

// Landmarks are the six eye contour points in anatomical order:
// outer corner, upper-outer lid, upper-inner lid, inner corner,
// lower-inner lid, lower-outer lid.
type Landmarks [6]image.Point

// Indices into Landmarks
const (
	OuterCorner = 0
	UpperOuter  = 1
	UpperInner  = 2
	InnerCorner = 3
	LowerInner  = 4
	LowerOuter  = 5
)

// Points returns the landmarks as a slice
func (l Landmarks) Points() []image.Point {
	pts := make([]image.Point, len(l))
	copy(pts, l[:])
	return pts
}

// Translate returns the landmarks shifted by d
func (l Landmarks) Translate(d image.Point) Landmarks {
	var out Landmarks
	for i, p := range l {
		out[i] = p.Add(d)
	}
	return out
}

func distance(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// AspectRatio computes the eye aspect ratio (Soukupová and Čech, 2016):
// the two vertical lid distances over twice the corner distance.
func AspectRatio(l Landmarks) (float64, error) {
	a := distance(l[UpperOuter], l[LowerOuter])
	b := distance(l[UpperInner], l[LowerInner])
	c := distance(l[OuterCorner], l[InnerCorner])
	if c == 0 {
		return 0, ErrDegenerateEye
	}
	return (a + b) / (2.0 * c), nil
}

// Midpoint returns the component-wise average of p1 and p2, truncated
// to integer pixel coordinates.
func Midpoint(p1, p2 image.Point) image.Point {
	return image.Point{
		X: int(float64(p1.X+p2.X) / 2),
		Y: int(float64(p1.Y+p2.Y) / 2),
	}
}

// Bounds returns the bounding rectangle of the landmarks. Max is exclusive,
// so the extreme right column and bottom row are not part of the crop.
func Bounds(l Landmarks) image.Rectangle {
	minX, minY := l[0].X, l[0].Y
	maxX, maxY := l[0].X, l[0].Y
	for _, p := range l[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return image.Rect(minX, minY, maxX, maxY)
}
