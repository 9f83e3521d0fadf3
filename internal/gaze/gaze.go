// Package gaze maps gaze ratios to a coarse horizontal direction
package gaze

import (
	"errors"
	"fmt"
)

// Direction is a discrete horizontal gaze direction
type Direction int

const (
	Right Direction = iota
	Center
	Left
)

func (d Direction) String() string {
	switch d {
	case Right:
		return "RIGHT"
	case Center:
		return "CENTER"
	case Left:
		return "LEFT"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Default band bounds and a wider alternative band
const (
	DefaultLow  = 0.7
	DefaultHigh = 1.5
	AltLow      = 0.5
	AltHigh     = 1.7
)

// ErrInvalidBounds is returned when the classifier band is empty or negative
var ErrInvalidBounds = errors.New("gaze: invalid classifier bounds")

// Classifier splits gaze ratios into three bands.
// Ratios at or below Low look right, at or above High look left.
type Classifier struct {
	Low  float64
	High float64
}

// NewClassifier returns a classifier with the default bounds
func NewClassifier() Classifier {
	return Classifier{Low: DefaultLow, High: DefaultHigh}
}

// Validate checks that 0 <= Low < High
func (c Classifier) Validate() error {
	if c.Low < 0 || c.Low >= c.High {
		return fmt.Errorf("%w: low=%v high=%v", ErrInvalidBounds, c.Low, c.High)
	}
	return nil
}

// Classify returns the direction for ratio
func (c Classifier) Classify(ratio float64) Direction {
	switch {
	case ratio <= c.Low:
		return Right
	case ratio < c.High:
		return Center
	default:
		return Left
	}
}
