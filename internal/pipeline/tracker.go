package pipeline

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dudu/gazetrack/internal/blink"
	"github.com/dudu/gazetrack/internal/eye"
	"github.com/dudu/gazetrack/internal/face"
	"github.com/dudu/gazetrack/internal/gaze"
	"github.com/dudu/gazetrack/internal/logger"
	"github.com/dudu/gazetrack/internal/overlay"
)

// Timing holds performance timing information
type Timing struct {
	Frame   uint64
	Faces   int
	Measure time.Duration
	Total   time.Duration
}

// Label positions on the annotated frame
var (
	blinksOrigin    = image.Pt(10, 30)
	earOrigin       = image.Pt(300, 30)
	gazeOrigin      = image.Pt(300, 60)
	directionOrigin = image.Pt(30, 100)
)

// Tracker turns located faces into per-frame eye state. It owns the blink
// counter, so one Tracker follows one video stream.
type Tracker struct {
	mu         sync.Mutex
	id         string
	settings   Settings
	classifier gaze.Classifier
	blink      *blink.Machine
	observers  []Observer
	frame      uint64
	lastTiming Timing
}

// Option configures a Tracker
type Option func(*Tracker)

// WithObserver registers an observer notified after every frame
func WithObserver(o Observer) Option {
	return func(t *Tracker) {
		if o != nil {
			t.observers = append(t.observers, o)
		}
	}
}

// WithSessionID overrides the generated session identifier
func WithSessionID(id string) Option {
	return func(t *Tracker) {
		t.id = id
	}
}

// NewTracker creates a tracker with the given thresholds
func NewTracker(settings Settings, opts ...Option) (*Tracker, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	t := &Tracker{
		id:         uuid.NewString(),
		settings:   settings,
		classifier: settings.Classifier(),
		blink:      blink.NewMachine(settings.ConsecFrames),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// SessionID identifies the stream this tracker follows
func (t *Tracker) SessionID() string {
	return t.id
}

// Settings returns the active thresholds
func (t *Tracker) Settings() Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

// SetSettings replaces the thresholds. The blink counter is kept.
func (t *Tracker) SetSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s != t.settings {
		logger.Log().Debug("tracker settings changed",
			zap.Float64("ear_thresh", s.EARThresh),
			zap.Int("binarize_thresh", s.BinarizeThresh),
			zap.Int("consec_frames", s.ConsecFrames),
			zap.Float64("gaze_low", s.GazeLow),
			zap.Float64("gaze_high", s.GazeHigh),
		)
	}
	t.settings = s
	t.classifier = s.Classifier()
	t.blink.SetConsecFrames(s.ConsecFrames)
	return nil
}

// State returns the blink counter
func (t *Tracker) State() blink.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.blink.State()
}

// Reset clears the blink counter
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.blink.Reset()
}

// LastTiming returns timing information from the last processed frame
func (t *Tracker) LastTiming() Timing {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastTiming
}

// Process measures every face of one frame. src is the grayscale frame the
// eyes are cut from. Faces without landmarks are skipped. A frame without
// faces yields no results and leaves the blink counter untouched.
func (t *Tracker) Process(src eye.Isolator, faces []face.Face) []FrameResult {
	totalStart := time.Now()

	t.mu.Lock()
	t.frame++
	timing := Timing{Frame: t.frame}

	var results []FrameResult
	for i := range faces {
		if faces[i].Landmarks == nil {
			continue
		}
		results = append(results, t.processFace(src, &faces[i]))
	}

	timing.Faces = len(results)
	timing.Measure = time.Since(totalStart)
	timing.Total = time.Since(totalStart)
	t.lastTiming = timing
	observers := t.observers
	t.mu.Unlock()

	for _, o := range observers {
		o.ObserveFrame(t.id, results, timing)
	}
	return results
}

// processFace runs the per-face steps. Called with t.mu held.
func (t *Tracker) processFace(src eye.Isolator, f *face.Face) FrameResult {
	s := t.settings
	r := FrameResult{Face: f.BoundingBox}

	r.Left = t.measureEye(src, f.Landmarks.LeftEye(), "left")
	r.Right = t.measureEye(src, f.Landmarks.RightEye(), "right")

	var ears []float64
	for _, e := range []EyeResult{r.Left, r.Right} {
		if e.EARErr == nil {
			ears = append(ears, e.AspectRatio)
		}
	}
	if len(ears) > 0 {
		var sum float64
		for _, v := range ears {
			sum += v
		}
		r.AveragedEAR = sum / float64(len(ears))
		r.EARValid = true
	}
	r.AveragedGaze = (r.Left.GazeRatio + r.Right.GazeRatio) / 2

	// With neither eye measurable the frame neither extends nor breaks a
	// closed run.
	fired := false
	if r.EARValid {
		fired = t.blink.Update(r.AveragedEAR, s.EARThresh)
	}
	r.Blink = t.blink.State()

	switch {
	case fired:
		r.Classification = Blink
	case r.EARValid && r.AveragedEAR < s.EARThresh:
		r.Classification = None
	default:
		r.Classification = fromDirection(t.classifier.Classify(r.AveragedGaze))
	}

	r.Overlay = buildOverlay(r)
	return r
}

func (t *Tracker) measureEye(src eye.Isolator, l eye.Landmarks, side string) EyeResult {
	m := eye.Measure(src, l, t.settings.BinarizeThresh)
	if m.EARErr != nil {
		logger.Log().Debug("eye aspect ratio unavailable", zap.String("eye", side), zap.Error(m.EARErr))
	}
	if m.GazeErr != nil {
		logger.Log().Debug("eye isolation failed", zap.String("eye", side), zap.Error(m.GazeErr))
	}
	return EyeResult{Landmarks: l, Measurement: m}
}

// buildOverlay returns the eye outlines and the text labels of a result
func buildOverlay(r FrameResult) []overlay.Command {
	cmds := append(eye.DrawOverlay(r.Left.Landmarks), eye.DrawOverlay(r.Right.Landmarks)...)

	cmds = append(cmds, overlay.Text(fmt.Sprintf("Blinks: %d", r.Blink.TotalBlinks), blinksOrigin, 1, overlay.Red, 2))
	if r.EARValid {
		cmds = append(cmds, overlay.Text(fmt.Sprintf("EAR: %.2f", r.AveragedEAR), earOrigin, 1, overlay.Red, 2))
	}
	cmds = append(cmds, overlay.Text(fmt.Sprintf("Gaze ratio: %.2f", r.AveragedGaze), gazeOrigin, 1, overlay.Red, 2))
	if r.Classification != None {
		cmds = append(cmds, overlay.Text(r.Classification.String(), directionOrigin, 2, overlay.Red, 3))
	}
	return cmds
}
