package overlay

import (
	"image"
	"image/color"
)

// Kind identifies the shape of a draw instruction
type Kind int

const (
	KindLine Kind = iota
	KindHull
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindHull:
		return "hull"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Colors used by the tracker. Values are RGBA; gocv converts them to BGR.
var (
	Green  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Cyan   = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Red    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// Command is a single draw instruction produced by the tracker.
// Renderers interpret Points according to Kind:
// a line uses Points[0] and Points[1], a hull is a closed polygon,
// and text is drawn at Points[0] (bottom-left of the string).
type Command struct {
	Kind      Kind
	Points    []image.Point
	Text      string
	Scale     float64
	Color     color.RGBA
	Thickness int
}

// Line returns a line segment command
func Line(a, b image.Point, c color.RGBA, thickness int) Command {
	return Command{Kind: KindLine, Points: []image.Point{a, b}, Color: c, Thickness: thickness}
}

// Hull returns a closed contour command
func Hull(points []image.Point, c color.RGBA, thickness int) Command {
	pts := make([]image.Point, len(points))
	copy(pts, points)
	return Command{Kind: KindHull, Points: pts, Color: c, Thickness: thickness}
}

// Text returns a text label command anchored at origin
func Text(s string, origin image.Point, scale float64, c color.RGBA, thickness int) Command {
	return Command{Kind: KindText, Points: []image.Point{origin}, Text: s, Scale: scale, Color: c, Thickness: thickness}
}
