// Package raster implements the eye imaging primitives in pure Go on top of
// image.Gray. It backs offline processing and tests that must run without
// OpenCV.
package raster

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/gift"
	"golang.org/x/image/vector"

	"github.com/dudu/gazetrack/internal/eye"
)

// Gray is a grayscale frame
type Gray struct {
	img *image.Gray
}

// NewGray converts src to grayscale. *image.Gray inputs are used as is.
func NewGray(src image.Image) *Gray {
	if g, ok := src.(*image.Gray); ok {
		return &Gray{img: g}
	}
	g := gift.New(gift.Grayscale())
	dst := image.NewGray(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return &Gray{img: dst}
}

// Image returns the underlying grayscale image
func (g *Gray) Image() *image.Gray {
	return g.img
}

// Isolate masks polygon out of the frame, crops it to bounds and binarizes
// the crop at threshold.
func (g *Gray) Isolate(polygon []image.Point, bounds image.Rectangle, threshold uint8) (eye.BinaryImage, error) {
	crop := bounds.Intersect(g.img.Bounds())
	if crop.Empty() {
		return nil, fmt.Errorf("%w: %v outside frame %v", eye.ErrInvalidRegion, bounds, g.img.Bounds())
	}

	mask := polygonMask(polygon, crop)

	// Pixels outside the polygon become black
	masked := image.NewGray(crop)
	for y := crop.Min.Y; y < crop.Max.Y; y++ {
		for x := crop.Min.X; x < crop.Max.X; x++ {
			if mask.AlphaAt(x-crop.Min.X, y-crop.Min.Y).A == 0 {
				continue
			}
			masked.SetGray(x, y, g.img.GrayAt(x, y))
		}
	}

	filter := gift.New(binarize(threshold))
	out := image.NewGray(filter.Bounds(masked.Bounds()))
	filter.Draw(out, masked)
	return &Binary{img: out}, nil
}

// polygonMask rasterizes polygon into an alpha mask covering r. Vertices
// sit on pixel centres so that boundary pixels are part of the mask.
func polygonMask(polygon []image.Point, r image.Rectangle) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, r.Dx(), r.Dy()))
	if len(polygon) < 3 {
		return mask
	}

	z := vector.NewRasterizer(r.Dx(), r.Dy())
	z.DrawOp = draw.Src
	for i, p := range polygon {
		x := float32(p.X-r.Min.X) + 0.5
		y := float32(p.Y-r.Min.Y) + 0.5
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

// binarize maps pixels >= threshold to white and everything else to black
func binarize(threshold uint8) gift.Filter {
	t := float64(threshold)
	return gift.ColorFunc(func(r0, g0, b0, a0 float32) (r, g, b, a float32) {
		if math.Round(float64(r0)*255) >= t {
			return 1, 1, 1, 1
		}
		return 0, 0, 0, 1
	})
}

// Binary is a binarized eye crop backed by image.Gray
type Binary struct {
	img *image.Gray
}

// NewBinary wraps img. Any non-zero pixel counts as white.
func NewBinary(img *image.Gray) *Binary {
	return &Binary{img: img}
}

// Image returns the underlying image
func (b *Binary) Image() *image.Gray {
	return b.img
}

// Size returns the crop dimensions
func (b *Binary) Size() image.Point {
	return b.img.Bounds().Size()
}

// CountNonZero counts non-zero pixels in r, relative to the crop origin
func (b *Binary) CountNonZero(r image.Rectangle) int {
	bounds := b.img.Bounds()
	r = r.Add(bounds.Min).Intersect(bounds)

	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := b.img.Pix[b.img.PixOffset(r.Min.X, y):b.img.PixOffset(r.Max.X, y)]
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// Close is a no-op; Binary holds no native resources
func (b *Binary) Close() error {
	return nil
}
