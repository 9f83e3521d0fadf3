package ui

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"

	"github.com/dudu/gazetrack/internal/eye"
	"github.com/dudu/gazetrack/internal/pipeline"
)

const (
	earTrackbar      = "EAR threshold"
	binarizeTrackbar = "Binarise threshold"

	// EAR trackbar positions are hundredths
	earTrackbarMax      = 40
	binarizeTrackbarMax = 100
)

// Window manages the preview display, its threshold trackbars and the eye
// crop previews
type Window struct {
	window     *gocv.Window
	name       string
	ear        *gocv.Trackbar
	binarize   *gocv.Trackbar
	leftEye    *gocv.Window
	rightEye   *gocv.Window
	lastFrame  time.Time
	frameCount int
	fps        float64
}

// NewWindow creates a new preview window with trackbars set from s
func NewWindow(name string, s pipeline.Settings) *Window {
	window := gocv.NewWindow(name)
	// Force window to appear on macOS
	window.MoveWindow(100, 100)

	w := &Window{
		window:    window,
		name:      name,
		lastFrame: time.Now(),
	}
	w.ear = window.CreateTrackbar(earTrackbar, earTrackbarMax)
	w.ear.SetPos(min(int(s.EARThresh*100+0.5), earTrackbarMax))
	w.binarize = window.CreateTrackbar(binarizeTrackbar, binarizeTrackbarMax)
	w.binarize.SetPos(min(s.BinarizeThresh, binarizeTrackbarMax))
	return w
}

// Settings returns s with the thresholds currently selected on the
// trackbars
func (w *Window) Settings(s pipeline.Settings) pipeline.Settings {
	s.EARThresh = float64(w.ear.GetPos()) / 100
	s.BinarizeThresh = w.binarize.GetPos()
	return s
}

// Show displays a frame and updates FPS counter
func (w *Window) Show(frame *gocv.Mat) {
	w.frameCount++
	now := time.Now()

	// Calculate FPS every second
	elapsed := now.Sub(w.lastFrame)
	if elapsed >= time.Second {
		w.fps = float64(w.frameCount) / elapsed.Seconds()
		w.frameCount = 0
		w.lastFrame = now
	}

	// Bottom left, clear of the tracking labels
	fpsText := fmt.Sprintf("FPS: %.1f", w.fps)
	gocv.PutText(frame, fpsText, image.Pt(10, frame.Rows()-10),
		gocv.FontHersheyPlain, 1.5, color.RGBA{R: 0, G: 255, B: 0, A: 255}, 2)

	w.window.IMShow(*frame)
}

// ShowEyes displays the binarized eye crops of a result. Eyes without a
// crop keep their previous image.
func (w *Window) ShowEyes(r *pipeline.FrameResult) {
	w.showCrop(&w.leftEye, "left eye", r.Left.Crop)
	w.showCrop(&w.rightEye, "right eye", r.Right.Crop)
}

func (w *Window) showCrop(win **gocv.Window, title string, crop eye.BinaryImage) {
	if crop == nil {
		return
	}
	mat, err := cropMat(crop)
	if err != nil {
		return
	}
	defer mat.Close()

	if *win == nil {
		*win = gocv.NewWindow(title)
	}
	(*win).IMShow(mat)
}

// WaitKey waits for key press, returns key code or -1
func (w *Window) WaitKey(delayMs int) int {
	return w.window.WaitKey(delayMs)
}

// FPS returns current frames per second
func (w *Window) FPS() float64 {
	return w.fps
}

// Close closes the windows
func (w *Window) Close() error {
	for _, win := range []*gocv.Window{w.leftEye, w.rightEye} {
		if win != nil {
			win.Close()
		}
	}
	if w.window != nil {
		return w.window.Close()
	}
	return nil
}
