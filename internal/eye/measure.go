package eye

import (
	"github.com/dudu/gazetrack/internal/overlay"
)

// Metrics holds the derived per-frame values of one eye
type Metrics struct {
	AspectRatio float64
	GazeRatio   float64
}

// Measurement is the outcome of measuring one eye in one frame.
// EARErr is set when the aspect ratio could not be computed; GazeErr is set
// when isolation failed and GazeRatio holds DefaultGazeRatio instead.
type Measurement struct {
	Metrics
	EARErr  error
	GazeErr error
	// Crop is the binarized eye image, nil when GazeErr is set.
	Crop BinaryImage
}

// Measure computes the aspect ratio and gaze ratio of one eye
func Measure(src Isolator, l Landmarks, threshold int) Measurement {
	var m Measurement

	m.AspectRatio, m.EARErr = AspectRatio(l)

	crop, err := Isolate(src, l, threshold)
	if err != nil {
		m.GazeErr = err
		m.GazeRatio = DefaultGazeRatio
		return m
	}
	m.Crop = crop
	m.GazeRatio = GazeRatio(crop)
	return m
}

// DrawOverlay returns the outline hull and the horizontal and vertical
// axis lines of the eye.
func DrawOverlay(l Landmarks) []overlay.Command {
	centreTop := Midpoint(l[UpperOuter], l[UpperInner])
	centreBottom := Midpoint(l[LowerOuter], l[LowerInner])

	return []overlay.Command{
		overlay.Hull(ConvexHull(l.Points()), overlay.Green, 1),
		overlay.Line(l[OuterCorner], l[InnerCorner], overlay.Cyan, 1),
		overlay.Line(centreTop, centreBottom, overlay.Cyan, 1),
	}
}
