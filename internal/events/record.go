// Package events turns frame results into timestamped records and writes
// them as JSON lines.
package events

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/dudu/gazetrack/internal/pipeline"
)

// Record is the serialisable summary of one FrameResult
type Record struct {
	ID                   string                  `json:"id"`
	Session              string                  `json:"session"`
	Time                 time.Time               `json:"time"`
	Frame                uint64                  `json:"frame"`
	Face                 int                     `json:"face"`
	EAR                  float64                 `json:"ear"`
	EARValid             bool                    `json:"earValid"`
	Gaze                 float64                 `json:"gaze"`
	Classification       pipeline.Classification `json:"classification"`
	TotalBlinks          int                     `json:"totalBlinks"`
	ConsecutiveLowFrames int                     `json:"consecutiveLowFrames"`
	LeftEyeError         string                  `json:"leftEyeError,omitempty"`
	RightEyeError        string                  `json:"rightEyeError,omitempty"`
}

// IDSource issues monotonically increasing ULIDs
type IDSource struct {
	mu      sync.Mutex
	entropy io.Reader
}

// NewIDSource creates an IDSource seeded from crypto/rand
func NewIDSource() *IDSource {
	return &IDSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a ULID for t
func (s *IDSource) New(t time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t), s.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// FromResults builds one record per result of a frame
func FromResults(ids *IDSource, session string, timing pipeline.Timing, results []pipeline.FrameResult, now time.Time) ([]Record, error) {
	records := make([]Record, 0, len(results))
	for i := range results {
		id, err := ids.New(now)
		if err != nil {
			return records, err
		}
		records = append(records, FromResult(id, session, timing.Frame, i, &results[i], now))
	}
	return records, nil
}

// FromResult summarises a single result
func FromResult(id, session string, frame uint64, face int, r *pipeline.FrameResult, now time.Time) Record {
	rec := Record{
		ID:                   id,
		Session:              session,
		Time:                 now.UTC(),
		Frame:                frame,
		Face:                 face,
		EAR:                  r.AveragedEAR,
		EARValid:             r.EARValid,
		Gaze:                 r.AveragedGaze,
		Classification:       r.Classification,
		TotalBlinks:          r.Blink.TotalBlinks,
		ConsecutiveLowFrames: r.Blink.ConsecutiveLowFrames,
	}
	rec.LeftEyeError = eyeError(r.Left)
	rec.RightEyeError = eyeError(r.Right)
	return rec
}

func eyeError(e pipeline.EyeResult) string {
	switch {
	case e.EARErr != nil:
		return e.EARErr.Error()
	case e.GazeErr != nil:
		return e.GazeErr.Error()
	default:
		return ""
	}
}
