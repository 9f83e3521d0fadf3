package ui

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/dudu/gazetrack/internal/eye"
	"github.com/dudu/gazetrack/internal/overlay"
)

// Render draws overlay commands onto a BGR frame
func Render(frame *gocv.Mat, cmds []overlay.Command) {
	for _, cmd := range cmds {
		switch cmd.Kind {
		case overlay.KindLine:
			if len(cmd.Points) == 2 {
				gocv.Line(frame, cmd.Points[0], cmd.Points[1], cmd.Color, cmd.Thickness)
			}
		case overlay.KindHull:
			if len(cmd.Points) == 0 {
				continue
			}
			contours := gocv.NewPointsVectorFromPoints([][]image.Point{cmd.Points})
			gocv.DrawContours(frame, contours, -1, cmd.Color, cmd.Thickness)
			contours.Close()
		case overlay.KindText:
			if len(cmd.Points) == 0 {
				continue
			}
			gocv.PutText(frame, cmd.Text, cmd.Points[0], gocv.FontHersheySimplex, cmd.Scale, cmd.Color, cmd.Thickness)
		}
	}
}

// cropMat returns a Mat copy of an eye crop for display
func cropMat(crop eye.BinaryImage) (gocv.Mat, error) {
	switch c := crop.(type) {
	case interface{ Mat() gocv.Mat }:
		m := c.Mat()
		return m.Clone(), nil
	case interface{ Image() *image.Gray }:
		return gocv.ImageGrayToMatGray(c.Image())
	default:
		return gocv.NewMat(), fmt.Errorf("unsupported crop type %T", crop)
	}
}
