package camera

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScaledSize(t *testing.T) {
	tests := []struct {
		name  string
		size  image.Point
		width int
		want  image.Point
	}{
		{"downscale 1280x720", image.Pt(1280, 720), 720, image.Pt(720, 405)},
		{"upscale 640x480", image.Pt(640, 480), 720, image.Pt(720, 540)},
		{"already wide enough", image.Pt(720, 400), 720, image.Pt(720, 400)},
		{"disabled", image.Pt(1280, 720), 0, image.Pt(1280, 720)},
		{"empty frame", image.Point{}, 720, image.Point{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScaledSize(tt.size, tt.width))
		})
	}
}
