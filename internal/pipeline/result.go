package pipeline

import (
	"errors"
	"fmt"

	"github.com/dudu/gazetrack/internal/blink"
	"github.com/dudu/gazetrack/internal/eye"
	"github.com/dudu/gazetrack/internal/face"
	"github.com/dudu/gazetrack/internal/gaze"
	"github.com/dudu/gazetrack/internal/overlay"
)

// Classification is the discrete event of a processed face
type Classification int

const (
	None Classification = iota
	Blink
	LookLeft
	LookCenter
	LookRight
)

var classificationNames = map[Classification]string{
	None:       "NONE",
	Blink:      "BLINK",
	LookLeft:   "LEFT",
	LookCenter: "CENTER",
	LookRight:  "RIGHT",
}

func (c Classification) String() string {
	if s, ok := classificationNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Classification(%d)", int(c))
}

// MarshalText encodes the classification by name
func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a classification name
func (c *Classification) UnmarshalText(text []byte) error {
	for k, v := range classificationNames {
		if v == string(text) {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("unknown classification %q", text)
}

// fromDirection maps a gaze direction to its classification
func fromDirection(d gaze.Direction) Classification {
	switch d {
	case gaze.Left:
		return LookLeft
	case gaze.Right:
		return LookRight
	default:
		return LookCenter
	}
}

// EyeResult is the measurement of one eye in one frame
type EyeResult struct {
	Landmarks eye.Landmarks
	eye.Measurement
}

// FrameResult is the outcome of processing one face in one frame. The
// renderer must Close it to release the eye crops.
type FrameResult struct {
	Face           face.BoundingBox
	AveragedEAR    float64
	EARValid       bool
	AveragedGaze   float64
	Classification Classification
	Blink          blink.State
	Left           EyeResult
	Right          EyeResult
	Overlay        []overlay.Command
}

// Close releases the eye crops
func (r *FrameResult) Close() error {
	var errs []error
	for _, e := range []*EyeResult{&r.Left, &r.Right} {
		if e.Crop != nil {
			errs = append(errs, e.Crop.Close())
			e.Crop = nil
		}
	}
	return errors.Join(errs...)
}

// CloseAll closes every result
func CloseAll(results []FrameResult) error {
	var errs []error
	for i := range results {
		errs = append(errs, results[i].Close())
	}
	return errors.Join(errs...)
}
