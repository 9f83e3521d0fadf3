package events

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudu/gazetrack/internal/blink"
	"github.com/dudu/gazetrack/internal/eye"
	"github.com/dudu/gazetrack/internal/pipeline"
)

func TestIDSourceMonotonic(t *testing.T) {
	ids := NewIDSource()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	a, err := ids.New(now)
	require.NoError(t, err)
	b, err := ids.New(now)
	require.NoError(t, err)

	assert.Len(t, a, 26)
	assert.Less(t, a, b)
}

func TestFromResult(t *testing.T) {
	r := pipeline.FrameResult{
		AveragedEAR:    0.12,
		EARValid:       true,
		AveragedGaze:   5,
		Classification: pipeline.Blink,
		Blink:          blink.State{TotalBlinks: 2},
	}
	r.Right.EARErr = eye.ErrDegenerateEye

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	rec := FromResult("id", "session", 9, 0, &r, now)

	assert.Equal(t, "session", rec.Session)
	assert.Equal(t, uint64(9), rec.Frame)
	assert.Equal(t, 0.12, rec.EAR)
	assert.Equal(t, pipeline.Blink, rec.Classification)
	assert.Equal(t, 2, rec.TotalBlinks)
	assert.Empty(t, rec.LeftEyeError)
	assert.Equal(t, eye.ErrDegenerateEye.Error(), rec.RightEyeError)
	assert.Equal(t, time.UTC, rec.Time.Location())
}

func TestSinkWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf)

	results := []pipeline.FrameResult{
		{Classification: pipeline.LookLeft, AveragedGaze: 1.8},
		{Classification: pipeline.LookRight, AveragedGaze: 0.4},
	}
	sink.ObserveFrame("session", results, pipeline.Timing{Frame: 1})
	sink.ObserveFrame("session", nil, pipeline.Timing{Frame: 2})
	require.NoError(t, sink.Close())
	assert.Equal(t, 2, sink.Count())

	var records []Record
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.Len(t, records, 2)
	assert.Equal(t, pipeline.LookLeft, records[0].Classification)
	assert.Equal(t, 1, records[1].Face)
}

func TestSinkEncodesClassificationByName(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf)
	require.NoError(t, sink.Write(Record{Classification: pipeline.LookCenter}))
	assert.Contains(t, buf.String(), `"classification":"CENTER"`)
}

func TestOpenFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	for i := 0; i < 2; i++ {
		sink, err := OpenFile(path)
		require.NoError(t, err)
		require.NoError(t, sink.Write(Record{Frame: uint64(i)}))
		require.NoError(t, sink.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")))
}
