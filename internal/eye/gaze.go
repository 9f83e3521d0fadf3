package eye

import "image"

const (
	// DefaultGazeRatio is reported when the left half holds no white
	// pixels, and substituted for eyes whose crop could not be isolated.
	DefaultGazeRatio = 1.0
	// RightEmptyGazeRatio is reported when only the right half is empty.
	RightEmptyGazeRatio = 5.0
)

// GazeRatio compares the white (sclera) pixels in the left and right half
// of a binary eye crop. The left half receives the middle column on odd
// widths.
func GazeRatio(img BinaryImage) float64 {
	size := img.Size()
	split := (size.X + 1) / 2

	left := img.CountNonZero(image.Rect(0, 0, split, size.Y))
	right := img.CountNonZero(image.Rect(split, 0, size.X, size.Y))

	switch {
	case left == 0:
		return DefaultGazeRatio
	case right == 0:
		return RightEmptyGazeRatio
	default:
		return float64(left) / float64(right)
	}
}
