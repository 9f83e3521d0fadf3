package monitor

import (
	"context"
	"errors"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"

	"github.com/dudu/gazetrack/internal/eye"
	"github.com/dudu/gazetrack/internal/logger"
	"github.com/dudu/gazetrack/internal/pipeline"
)

// SampleInterval is how often process usage is sampled
const SampleInterval = 500 * time.Millisecond

// Monitor exports tracking counters and process usage to Prometheus.
// It implements pipeline.Observer.
type Monitor struct {
	registry        *prometheus.Registry
	frames          prometheus.Counter
	faces           prometheus.Counter
	blinks          prometheus.Counter
	classifications *prometheus.CounterVec
	eyeErrors       *prometheus.CounterVec
	frameSeconds    prometheus.Histogram
	memUsage        prometheus.Gauge
	cpuUsage        prometheus.Gauge
}

// New creates a monitor with its own registry
func New() *Monitor {
	m := &Monitor{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gazetrack_frames_total",
			Help: "Total number of frames processed",
		}),
		faces: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gazetrack_faces_total",
			Help: "Total number of faces measured",
		}),
		blinks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gazetrack_blinks_total",
			Help: "Total number of blinks detected",
		}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gazetrack_classifications_total",
			Help: "Frame results by classification",
		}, []string{"label"}),
		eyeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gazetrack_eye_errors_total",
			Help: "Eye measurements skipped or defaulted, by reason",
		}, []string{"reason"}),
		frameSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gazetrack_frame_seconds",
			Help:    "Per-frame tracking time",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		memUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "memory_usage_megabytes",
			Help: "Memory usage in Megabytes",
		}),
		cpuUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cpu_usage_percent",
			Help: "CPU usage in percent",
		}),
	}

	m.registry.MustRegister(m.frames, m.faces, m.blinks, m.classifications,
		m.eyeErrors, m.frameSeconds, m.memUsage, m.cpuUsage)
	return m
}

// Registry returns the registry the metrics are registered with
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveFrame updates the counters from one processed frame
func (m *Monitor) ObserveFrame(_ string, results []pipeline.FrameResult, timing pipeline.Timing) {
	m.frames.Inc()
	m.frameSeconds.Observe(timing.Total.Seconds())
	m.faces.Add(float64(len(results)))

	for i := range results {
		r := &results[i]
		if r.Classification == pipeline.Blink {
			m.blinks.Inc()
		}
		m.classifications.WithLabelValues(r.Classification.String()).Inc()
		for _, e := range []pipeline.EyeResult{r.Left, r.Right} {
			if e.EARErr != nil {
				m.eyeErrors.WithLabelValues(errorReason(e.EARErr)).Inc()
			}
			if e.GazeErr != nil {
				m.eyeErrors.WithLabelValues(errorReason(e.GazeErr)).Inc()
			}
		}
	}
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, eye.ErrDegenerateEye):
		return "degenerate_eye"
	case errors.Is(err, eye.ErrInvalidRegion):
		return "invalid_region"
	case errors.Is(err, eye.ErrInvalidThreshold):
		return "invalid_threshold"
	default:
		return "other"
	}
}

// Run samples process memory and CPU usage until ctx is done
func (m *Monitor) Run(ctx context.Context) {
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		logger.Log().Warn("process usage unavailable", zap.Error(err))
		return
	}

	ticker := time.NewTicker(SampleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sample(ctx, proc)
		}
	}
}

func (m *Monitor) sample(ctx context.Context, proc *process.Process) {
	if memInfo, err := proc.MemoryInfoWithContext(ctx); err == nil {
		m.memUsage.Set(float64(memInfo.RSS / 1024 / 1024))
	}
	if cpuPercent, err := proc.CPUPercentWithContext(ctx); err == nil {
		m.cpuUsage.Set(math.Round(cpuPercent*100) / 100)
	}
}
