package gaze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBoundaries(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		ratio float64
		want  Direction
	}{
		{0, Right},
		{0.69, Right},
		{DefaultLow, Right},
		{0.71, Center},
		{1.0, Center},
		{1.49, Center},
		{DefaultHigh, Left},
		{5.0, Left},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.ratio), "ratio %v", tt.ratio)
	}
}

func TestClassifyAlternativeBounds(t *testing.T) {
	c := Classifier{Low: AltLow, High: AltHigh}
	assert.Equal(t, Right, c.Classify(0.5))
	assert.Equal(t, Center, c.Classify(0.7))
	assert.Equal(t, Center, c.Classify(1.5))
	assert.Equal(t, Left, c.Classify(1.7))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, NewClassifier().Validate())
	assert.ErrorIs(t, Classifier{Low: 1.5, High: 0.7}.Validate(), ErrInvalidBounds)
	assert.ErrorIs(t, Classifier{Low: 1, High: 1}.Validate(), ErrInvalidBounds)
	assert.ErrorIs(t, Classifier{Low: -0.1, High: 1}.Validate(), ErrInvalidBounds)
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "RIGHT", Right.String())
	assert.Equal(t, "CENTER", Center.String())
	assert.Equal(t, "LEFT", Left.String())
	assert.Equal(t, "Direction(7)", Direction(7).String())
}
