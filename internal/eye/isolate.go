package eye

import (
	"fmt"
	"image"
)

// Isolator is a grayscale frame able to produce binarized eye crops.
// Implementations live in the imaging packages.
type Isolator interface {
	// Isolate zeroes every pixel outside polygon, crops the result to
	// bounds (clipped to the frame) and binarizes it: pixels >= threshold
	// become 255, all others 0. An empty crop returns ErrInvalidRegion.
	Isolate(polygon []image.Point, bounds image.Rectangle, threshold uint8) (BinaryImage, error)
}

// BinaryImage is a binarized eye crop. Its coordinate space starts at (0,0).
type BinaryImage interface {
	// Size returns the width (X) and height (Y) of the image.
	Size() image.Point
	// CountNonZero counts the non-zero pixels inside r.
	CountNonZero(r image.Rectangle) int
	Close() error
}

// Isolate cuts the eye described by l out of src and binarizes it at
// threshold.
func Isolate(src Isolator, l Landmarks, threshold int) (BinaryImage, error) {
	if threshold < 0 || threshold > 255 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreshold, threshold)
	}
	bounds := Bounds(l)
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegion, bounds)
	}
	return src.Isolate(l.Points(), bounds, uint8(threshold))
}
