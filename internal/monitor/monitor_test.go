package monitor

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudu/gazetrack/internal/eye"
	"github.com/dudu/gazetrack/internal/pipeline"
)

func TestObserveFrame(t *testing.T) {
	m := New()

	results := []pipeline.FrameResult{
		{Classification: pipeline.Blink},
		{Classification: pipeline.LookLeft},
	}
	results[1].Left.EARErr = eye.ErrDegenerateEye
	results[1].Right.GazeErr = fmt.Errorf("crop: %w", eye.ErrInvalidRegion)

	m.ObserveFrame("session", results, pipeline.Timing{Total: 2 * time.Millisecond})
	m.ObserveFrame("session", nil, pipeline.Timing{Total: time.Millisecond})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.frames))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.faces))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.blinks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.classifications.WithLabelValues("BLINK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.classifications.WithLabelValues("LEFT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eyeErrors.WithLabelValues("degenerate_eye")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eyeErrors.WithLabelValues("invalid_region")))
}

func TestHandlerServesMetrics(t *testing.T) {
	m := New()
	m.ObserveFrame("session", []pipeline.FrameResult{{Classification: pipeline.LookCenter}}, pipeline.Timing{})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gazetrack_frames_total 1")
	assert.Contains(t, rec.Body.String(), `gazetrack_classifications_total{label="CENTER"} 1`)
}
