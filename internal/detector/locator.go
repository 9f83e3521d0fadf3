package detector

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/dudu/gazetrack/internal/face"
)

// FaceDetector interface for face detection
type FaceDetector interface {
	Detect(img gocv.Mat) ([]face.Face, error)
	Close() error
}

// LandmarkDetector interface for 68-point landmark detection
type LandmarkDetector interface {
	Detect(img gocv.Mat, f *face.Face) error
	Close() error
}

// Locator runs face detection on the grayscale frame and landmark
// regression on the colour frame
type Locator struct {
	Faces     FaceDetector
	Landmarks LandmarkDetector
}

// Locate returns the faces of a frame that received landmarks. Faces whose
// landmark regression fails are dropped and reported in the joined error.
func (l *Locator) Locate(frame, gray gocv.Mat) ([]face.Face, error) {
	faces, err := l.Faces.Detect(gray)
	if err != nil {
		return nil, fmt.Errorf("detection failed: %w", err)
	}

	var errs []error
	located := faces[:0]
	for i := range faces {
		if err := l.Landmarks.Detect(frame, &faces[i]); err != nil {
			errs = append(errs, err)
			continue
		}
		located = append(located, faces[i])
	}
	return located, errors.Join(errs...)
}

// Close releases both detectors
func (l *Locator) Close() error {
	var errs []error
	if l.Faces != nil {
		errs = append(errs, l.Faces.Close())
	}
	if l.Landmarks != nil {
		errs = append(errs, l.Landmarks.Close())
	}
	return errors.Join(errs...)
}
