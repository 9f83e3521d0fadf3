package detector

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/dudu/gazetrack/internal/face"
)

// Common install locations of the OpenCV Haar cascades
var cascadeSearchPaths = []string{
	"haarcascade_frontalface_default.xml",
	"models/haarcascade_frontalface_default.xml",
	"/opt/homebrew/share/opencv4/haarcascades/haarcascade_frontalface_default.xml",
	"/usr/local/share/opencv4/haarcascades/haarcascade_frontalface_default.xml",
	"/usr/share/opencv4/haarcascades/haarcascade_frontalface_default.xml",
}

// CascadeConfig holds Haar detector parameters
type CascadeConfig struct {
	Path         string
	ScaleFactor  float64
	MinNeighbors int
	MinSize      int
	IoUThreshold float32
}

// DefaultCascadeConfig returns the parameters used for webcam frames
func DefaultCascadeConfig() CascadeConfig {
	return CascadeConfig{
		ScaleFactor:  1.1,
		MinNeighbors: 5,
		MinSize:      60,
		IoUThreshold: 0.4,
	}
}

// Cascade detects frontal faces with an OpenCV Haar cascade
type Cascade struct {
	classifier gocv.CascadeClassifier
	config     CascadeConfig
}

// NewCascade loads the cascade at config.Path, falling back to the usual
// OpenCV install locations when the path is empty or unreadable.
func NewCascade(config CascadeConfig) (*Cascade, error) {
	classifier := gocv.NewCascadeClassifier()

	paths := cascadeSearchPaths
	if config.Path != "" {
		paths = append([]string{config.Path}, paths...)
	}

	for _, p := range paths {
		if classifier.Load(p) {
			config.Path = p
			return &Cascade{classifier: classifier, config: config}, nil
		}
	}

	classifier.Close()
	return nil, fmt.Errorf("failed to load face cascade from %q or default locations", config.Path)
}

// Path returns the cascade file in use
func (c *Cascade) Path() string {
	return c.config.Path
}

// Detect finds faces in a grayscale or BGR frame, largest first
func (c *Cascade) Detect(img gocv.Mat) ([]face.Face, error) {
	if img.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	minSize := image.Pt(c.config.MinSize, c.config.MinSize)
	rects := c.classifier.DetectMultiScaleWithParams(img, c.config.ScaleFactor, c.config.MinNeighbors, 0, minSize, image.Point{})

	faces := make([]face.Face, 0, len(rects))
	for _, r := range rects {
		faces = append(faces, face.Face{BoundingBox: face.BoxFromRect(r)})
	}

	return nms(faces, c.config.IoUThreshold), nil
}

// Close releases detector resources
func (c *Cascade) Close() error {
	return c.classifier.Close()
}
