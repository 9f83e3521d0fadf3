package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudu/gazetrack/internal/eye"
)

func uniform(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func binaryAt(t *testing.T, b eye.BinaryImage, x, y int) uint8 {
	t.Helper()
	rb, ok := b.(*Binary)
	require.True(t, ok)
	return rb.Image().GrayAt(x, y).Y
}

func TestNewGrayConvertsColour(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.White)
	src.Set(1, 0, color.Black)

	g := NewGray(src)
	assert.Equal(t, uint8(255), g.Image().GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), g.Image().GrayAt(1, 0).Y)
}

func TestIsolateSquare(t *testing.T) {
	g := NewGray(uniform(40, 40, 200))
	square := []image.Point{{10, 10}, {20, 10}, {20, 20}, {10, 20}}

	b, err := g.Isolate(square, image.Rect(10, 10, 20, 20), 45)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, image.Pt(10, 10), b.Size())
	assert.Equal(t, 100, b.CountNonZero(image.Rect(0, 0, 10, 10)))
	assert.Equal(t, 50, b.CountNonZero(image.Rect(0, 0, 5, 10)))
}

func TestIsolateMasksOutsidePolygon(t *testing.T) {
	g := NewGray(uniform(20, 20, 255))
	triangle := []image.Point{{0, 0}, {10, 0}, {0, 10}}

	b, err := g.Isolate(triangle, image.Rect(0, 0, 10, 10), 1)
	require.NoError(t, err)

	assert.Equal(t, uint8(255), binaryAt(t, b, 0, 0))
	assert.Equal(t, uint8(0), binaryAt(t, b, 9, 9))

	n := b.CountNonZero(image.Rect(0, 0, 10, 10))
	assert.Greater(t, n, 40)
	assert.Less(t, n, 100)
}

func TestIsolateThresholdIsInclusive(t *testing.T) {
	img := uniform(10, 10, 0)
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			if x < 5 {
				img.SetGray(x, y, color.Gray{Y: 44})
			} else {
				img.SetGray(x, y, color.Gray{Y: 45})
			}
		}
	}
	g := NewGray(img)
	square := []image.Point{{0, 0}, {9, 0}, {9, 9}, {0, 9}}

	b, err := g.Isolate(square, image.Rect(0, 0, 10, 10), 45)
	require.NoError(t, err)

	assert.Equal(t, 0, b.CountNonZero(image.Rect(0, 0, 5, 10)))
	assert.Equal(t, 50, b.CountNonZero(image.Rect(5, 0, 10, 10)))
}

func TestIsolateClipsToFrame(t *testing.T) {
	g := NewGray(uniform(50, 50, 200))
	square := []image.Point{{45, 45}, {55, 45}, {55, 55}, {45, 55}}

	b, err := g.Isolate(square, image.Rect(45, 45, 55, 55), 45)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(5, 5), b.Size())
}

func TestIsolateOutsideFrame(t *testing.T) {
	g := NewGray(uniform(50, 50, 200))
	square := []image.Point{{100, 100}, {110, 100}, {110, 110}, {100, 110}}

	_, err := g.Isolate(square, image.Rect(100, 100, 110, 110), 45)
	assert.ErrorIs(t, err, eye.ErrInvalidRegion)
}

func TestCountNonZeroOffsetImage(t *testing.T) {
	img := image.NewGray(image.Rect(5, 5, 9, 7))
	img.SetGray(5, 5, color.Gray{Y: 255})
	img.SetGray(8, 6, color.Gray{Y: 1})

	b := NewBinary(img)
	assert.Equal(t, image.Pt(4, 2), b.Size())
	assert.Equal(t, 2, b.CountNonZero(image.Rect(0, 0, 4, 2)))
	assert.Equal(t, 1, b.CountNonZero(image.Rect(0, 0, 1, 1)))
	assert.Equal(t, 1, b.CountNonZero(image.Rect(2, 0, 10, 10)))
}
