package blink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const thresh = 0.25

func feed(m *Machine, ears ...float64) (fired []bool) {
	for _, ear := range ears {
		fired = append(fired, m.Update(ear, thresh))
	}
	return fired
}

func TestTwoClosedFramesDoNotCount(t *testing.T) {
	m := NewMachine(EARConsecFrames)
	fired := feed(m, 0.1, 0.1, 0.3)

	assert.Equal(t, []bool{false, false, false}, fired)
	assert.Equal(t, State{}, m.State())
}

func TestThreeClosedFramesCountOnce(t *testing.T) {
	m := NewMachine(EARConsecFrames)
	fired := feed(m, 0.1, 0.1, 0.1)
	assert.Equal(t, []bool{false, false, false}, fired)
	assert.Equal(t, State{ConsecutiveLowFrames: 3}, m.State())
	assert.Equal(t, AccumulatingClosed, m.State().Phase())

	assert.True(t, m.Update(0.3, thresh))
	assert.Equal(t, State{TotalBlinks: 1}, m.State())
	assert.Equal(t, Open, m.State().Phase())

	assert.False(t, m.Update(0.3, thresh))
	assert.Equal(t, 1, m.State().TotalBlinks)
}

func TestLongClosureCountsOnce(t *testing.T) {
	m := NewMachine(EARConsecFrames)
	fired := feed(m, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.3)
	assert.Equal(t, []bool{false, false, false, false, false, false, true}, fired)
	assert.Equal(t, 1, m.State().TotalBlinks)
}

func TestThresholdIsExclusive(t *testing.T) {
	m := NewMachine(EARConsecFrames)
	feed(m, thresh, thresh, thresh, 0.3)
	assert.Equal(t, State{}, m.State())
}

func TestStepIsPure(t *testing.T) {
	s := State{ConsecutiveLowFrames: 2, TotalBlinks: 5}

	next, fired := Step(s, 0.1, thresh, 3)
	assert.False(t, fired)
	assert.Equal(t, State{ConsecutiveLowFrames: 3, TotalBlinks: 5}, next)
	assert.Equal(t, State{ConsecutiveLowFrames: 2, TotalBlinks: 5}, s)

	next, fired = Step(next, 0.4, thresh, 3)
	assert.True(t, fired)
	assert.Equal(t, State{TotalBlinks: 6}, next)
}

func TestConsecFrames(t *testing.T) {
	assert.Equal(t, EARConsecFrames, NewMachine(0).consecFrames)

	m := NewMachine(EARConsecFrames)
	m.SetConsecFrames(2)
	assert.Equal(t, []bool{false, false, true}, feed(m, 0.1, 0.1, 0.3))

	m.SetConsecFrames(-1)
	assert.Equal(t, 2, m.consecFrames)
}

func TestReset(t *testing.T) {
	m := NewMachine(EARConsecFrames)
	feed(m, 0.1, 0.1, 0.1, 0.3, 0.1)
	m.Reset()
	assert.Equal(t, State{}, m.State())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "accumulating-closed", AccumulatingClosed.String())
}
