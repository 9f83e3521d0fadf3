// Package cv implements the eye imaging primitives with OpenCV via gocv
package cv

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/dudu/gazetrack/internal/eye"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Gray holds the grayscale conversion of a BGR frame
type Gray struct {
	mat gocv.Mat
}

// NewGray converts a BGR frame to grayscale. The caller must Close the result.
func NewGray(frame gocv.Mat) *Gray {
	gray := gocv.NewMat()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	return &Gray{mat: gray}
}

// Mat returns the grayscale Mat
func (g *Gray) Mat() gocv.Mat {
	return g.mat
}

// Isolate masks polygon out of the frame, crops it to bounds and binarizes
// the crop at threshold.
func (g *Gray) Isolate(polygon []image.Point, bounds image.Rectangle, threshold uint8) (eye.BinaryImage, error) {
	frameRect := image.Rect(0, 0, g.mat.Cols(), g.mat.Rows())
	crop := bounds.Intersect(frameRect)
	if crop.Empty() {
		return nil, fmt.Errorf("%w: %v outside frame %v", eye.ErrInvalidRegion, bounds, frameRect)
	}

	// Mask of the inside of the eye, outline included
	mask := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), g.mat.Rows(), g.mat.Cols(), gocv.MatTypeCV8U)
	defer mask.Close()
	pts := gocv.NewPointsVectorFromPoints([][]image.Point{polygon})
	defer pts.Close()
	gocv.Polylines(&mask, pts, true, white, 2)
	gocv.FillPoly(&mask, pts, white)

	masked := gocv.NewMat()
	defer masked.Close()
	gocv.BitwiseAndWithMask(g.mat, g.mat, &masked, mask)

	region := masked.Region(crop)
	defer region.Close()

	// THRESH_BINARY keeps pixels strictly above the threshold, so shift by
	// one to include pixels equal to it.
	bin := gocv.NewMat()
	gocv.Threshold(region, &bin, float32(threshold)-1, 255, gocv.ThresholdBinary)
	return &Binary{mat: bin}, nil
}

// Close releases the grayscale Mat
func (g *Gray) Close() error {
	return g.mat.Close()
}

// Binary is a binarized eye crop backed by a Mat
type Binary struct {
	mat gocv.Mat
}

// Mat returns the binary Mat for previews
func (b *Binary) Mat() gocv.Mat {
	return b.mat
}

// Size returns the crop dimensions
func (b *Binary) Size() image.Point {
	return image.Pt(b.mat.Cols(), b.mat.Rows())
}

// CountNonZero counts non-zero pixels in r
func (b *Binary) CountNonZero(r image.Rectangle) int {
	r = r.Intersect(image.Rect(0, 0, b.mat.Cols(), b.mat.Rows()))
	if r.Empty() {
		return 0
	}
	region := b.mat.Region(r)
	defer region.Close()
	return gocv.CountNonZero(region)
}

// Close releases the Mat
func (b *Binary) Close() error {
	return b.mat.Close()
}
