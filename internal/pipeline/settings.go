package pipeline

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/dudu/gazetrack/internal/blink"
	"github.com/dudu/gazetrack/internal/gaze"
)

// ErrInvalidSettings is returned for thresholds outside their valid ranges
var ErrInvalidSettings = errors.New("pipeline: invalid settings")

var validate = validator.New()

// Settings are the tunable thresholds of a tracking session. The UI layer
// may replace them between frames through Tracker.SetSettings.
type Settings struct {
	EARThresh      float64 `yaml:"earThresh" json:"earThresh" validate:"gte=0,lte=1"`
	BinarizeThresh int     `yaml:"binarizeThresh" json:"binarizeThresh" validate:"gte=0,lte=255"`
	ConsecFrames   int     `yaml:"consecFrames" json:"consecFrames" validate:"gte=1"`
	GazeLow        float64 `yaml:"gazeLow" json:"gazeLow" validate:"gte=0"`
	GazeHigh       float64 `yaml:"gazeHigh" json:"gazeHigh" validate:"gtfield=GazeLow"`
}

// DefaultSettings returns the default thresholds
func DefaultSettings() Settings {
	return Settings{
		EARThresh:      0.25,
		BinarizeThresh: 45,
		ConsecFrames:   blink.EARConsecFrames,
		GazeLow:        gaze.DefaultLow,
		GazeHigh:       gaze.DefaultHigh,
	}
}

// Validate rejects out-of-range thresholds
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := s.Classifier().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

// Classifier returns the gaze classifier for the configured bounds
func (s Settings) Classifier() gaze.Classifier {
	return gaze.Classifier{Low: s.GazeLow, High: s.GazeHigh}
}
