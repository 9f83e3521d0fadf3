package eye_test

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudu/gazetrack/internal/eye"
	"github.com/dudu/gazetrack/internal/imaging/raster"
	"github.com/dudu/gazetrack/internal/overlay"
)

// hexagon is a regular-ish hexagon of radius 20 centred on (30, 30)
var hexagon = eye.Landmarks{
	{10, 30}, {20, 13}, {40, 13}, {50, 30}, {40, 47}, {20, 47},
}

func TestAspectRatio(t *testing.T) {
	t.Run("hexagon", func(t *testing.T) {
		ear, err := eye.AspectRatio(hexagon)
		require.NoError(t, err)
		// (34 + 34) / (2 * 40)
		assert.InDelta(t, 0.85, ear, 1e-12)
		assert.InDelta(t, math.Sqrt(3)/2, ear, 0.02)
	})

	t.Run("flat eye", func(t *testing.T) {
		flat := hexagon
		flat[eye.LowerOuter] = flat[eye.UpperOuter]
		flat[eye.LowerInner] = flat[eye.UpperInner]
		ear, err := eye.AspectRatio(flat)
		require.NoError(t, err)
		assert.InDelta(t, 0, ear, 1e-12)
	})

	t.Run("coincident corners", func(t *testing.T) {
		collapsed := hexagon
		collapsed[eye.InnerCorner] = collapsed[eye.OuterCorner]
		_, err := eye.AspectRatio(collapsed)
		assert.ErrorIs(t, err, eye.ErrDegenerateEye)
	})
}

func TestAspectRatioInvariance(t *testing.T) {
	irregular := eye.Landmarks{{3, 11}, {9, 6}, {17, 7}, {24, 12}, {16, 15}, {8, 16}}
	want, err := eye.AspectRatio(irregular)
	require.NoError(t, err)

	t.Run("translation", func(t *testing.T) {
		for _, d := range []image.Point{{100, 0}, {0, -40}, {-7, 250}} {
			got, err := eye.AspectRatio(irregular.Translate(d))
			require.NoError(t, err)
			assert.InDelta(t, want, got, 1e-12, "offset %v", d)
		}
	})

	t.Run("scale", func(t *testing.T) {
		for _, k := range []int{2, 3, 10} {
			var scaled eye.Landmarks
			for i, p := range irregular {
				scaled[i] = p.Mul(k)
			}
			got, err := eye.AspectRatio(scaled)
			require.NoError(t, err)
			assert.InDelta(t, want, got, 1e-12, "scale %d", k)
		}
	})
}

func TestMidpoint(t *testing.T) {
	assert.Equal(t, image.Pt(2, 4), eye.Midpoint(image.Pt(1, 2), image.Pt(4, 7)))
	assert.Equal(t, image.Pt(5, 5), eye.Midpoint(image.Pt(5, 5), image.Pt(5, 5)))
	// Truncation toward zero
	assert.Equal(t, image.Pt(-1, 0), eye.Midpoint(image.Pt(-3, 0), image.Pt(0, 1)))
}

func TestBounds(t *testing.T) {
	assert.Equal(t, image.Rect(10, 13, 50, 47), eye.Bounds(hexagon))

	line := eye.Landmarks{{0, 5}, {2, 5}, {4, 5}, {6, 5}, {4, 5}, {2, 5}}
	assert.True(t, eye.Bounds(line).Empty())
}

func TestConvexHull(t *testing.T) {
	t.Run("hexagon keeps all points", func(t *testing.T) {
		hull := eye.ConvexHull(hexagon.Points())
		assert.ElementsMatch(t, hexagon.Points(), hull)
	})

	t.Run("interior point dropped", func(t *testing.T) {
		pts := []image.Point{{0, 0}, {10, 0}, {5, 5}, {10, 10}, {0, 10}}
		hull := eye.ConvexHull(pts)
		assert.ElementsMatch(t, []image.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}, hull)
	})

	t.Run("collinear", func(t *testing.T) {
		hull := eye.ConvexHull([]image.Point{{0, 0}, {1, 0}, {2, 0}})
		assert.ElementsMatch(t, []image.Point{{0, 0}, {2, 0}}, hull)
	})
}

// binaryFromColumns builds a w x h crop whose listed columns are white
func binaryFromColumns(w, h int, white ...int) *raster.Binary {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for _, x := range white {
		for y := 0; y < h; y++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return raster.NewBinary(img)
}

func TestGazeRatio(t *testing.T) {
	tests := []struct {
		name string
		img  *raster.Binary
		want float64
	}{
		{"left half black", binaryFromColumns(4, 3, 2, 3), eye.DefaultGazeRatio},
		{"right half black", binaryFromColumns(4, 3, 0, 1), eye.RightEmptyGazeRatio},
		{"all black", binaryFromColumns(4, 3), eye.DefaultGazeRatio},
		{"equal halves", binaryFromColumns(4, 3, 0, 1, 2, 3), 1.0},
		{"odd width gives left the middle column", binaryFromColumns(5, 2, 0, 1, 2, 3, 4), 1.5},
		{"three to one", binaryFromColumns(8, 1, 0, 1, 2, 4), 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, eye.GazeRatio(tt.img), 1e-12)
		})
	}
}

// splitFrame is a w x h frame, bright left of splitX and dark from it on
func splitFrame(w, h, splitX int) *raster.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(200)
			if x >= splitX {
				v = 10
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return raster.NewGray(img)
}

func TestIsolateErrors(t *testing.T) {
	frame := splitFrame(60, 60, 60)

	_, err := eye.Isolate(frame, hexagon, 256)
	assert.ErrorIs(t, err, eye.ErrInvalidThreshold)
	_, err = eye.Isolate(frame, hexagon, -1)
	assert.ErrorIs(t, err, eye.ErrInvalidThreshold)

	line := eye.Landmarks{{0, 5}, {2, 5}, {4, 5}, {6, 5}, {4, 5}, {2, 5}}
	_, err = eye.Isolate(frame, line, 45)
	assert.ErrorIs(t, err, eye.ErrInvalidRegion)

	_, err = eye.Isolate(frame, hexagon.Translate(image.Pt(500, 500)), 45)
	assert.ErrorIs(t, err, eye.ErrInvalidRegion)
}

func TestMeasure(t *testing.T) {
	t.Run("dark right half", func(t *testing.T) {
		frame := splitFrame(60, 60, 30)
		m := eye.Measure(frame, hexagon, 45)

		require.NoError(t, m.EARErr)
		require.NoError(t, m.GazeErr)
		require.NotNil(t, m.Crop)
		defer m.Crop.Close()

		assert.InDelta(t, 0.85, m.AspectRatio, 1e-12)
		assert.Equal(t, image.Pt(40, 34), m.Crop.Size())
		assert.Equal(t, eye.RightEmptyGazeRatio, m.GazeRatio)
	})

	t.Run("eye outside frame", func(t *testing.T) {
		frame := splitFrame(60, 60, 60)
		m := eye.Measure(frame, hexagon.Translate(image.Pt(200, 0)), 45)

		require.NoError(t, m.EARErr)
		assert.ErrorIs(t, m.GazeErr, eye.ErrInvalidRegion)
		assert.Nil(t, m.Crop)
		assert.Equal(t, eye.DefaultGazeRatio, m.GazeRatio)
	})

	t.Run("collapsed eye", func(t *testing.T) {
		frame := splitFrame(60, 60, 60)
		var collapsed eye.Landmarks
		for i := range collapsed {
			collapsed[i] = image.Pt(30, 30)
		}
		m := eye.Measure(frame, collapsed, 45)

		assert.ErrorIs(t, m.EARErr, eye.ErrDegenerateEye)
		assert.ErrorIs(t, m.GazeErr, eye.ErrInvalidRegion)
		assert.Equal(t, eye.DefaultGazeRatio, m.GazeRatio)
	})
}

func TestDrawOverlay(t *testing.T) {
	cmds := eye.DrawOverlay(hexagon)
	require.Len(t, cmds, 3)

	assert.Equal(t, overlay.KindHull, cmds[0].Kind)
	assert.ElementsMatch(t, hexagon.Points(), cmds[0].Points)
	assert.Equal(t, overlay.Green, cmds[0].Color)

	assert.Equal(t, overlay.KindLine, cmds[1].Kind)
	assert.Equal(t, []image.Point{{10, 30}, {50, 30}}, cmds[1].Points)

	assert.Equal(t, overlay.KindLine, cmds[2].Kind)
	assert.Equal(t, []image.Point{{30, 13}, {30, 47}}, cmds[2].Points)
	assert.Equal(t, overlay.Cyan, cmds[2].Color)
}
