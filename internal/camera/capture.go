package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
	"golang.org/x/time/rate"
)

// ErrEndOfStream is returned by Next when a video file has no more frames
var ErrEndOfStream = errors.New("camera: end of stream")

// Capture manages webcam or video file capture
type Capture struct {
	source  *gocv.VideoCapture
	name    string
	isFile  bool
	limiter *rate.Limiter
	width   int
	height  int
	mu      sync.Mutex
}

// NewCapture opens a camera device. maxFPS <= 0 disables pacing.
func NewCapture(deviceID int, maxFPS float64) (*Capture, error) {
	source, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %w", deviceID, err)
	}
	if maxFPS > 0 {
		source.Set(gocv.VideoCaptureFPS, maxFPS)
	}
	return newCapture(source, fmt.Sprintf("camera %d", deviceID), false, maxFPS), nil
}

// NewFileCapture opens a video file. Frames are paced at maxFPS, or at the
// file's own frame rate when maxFPS <= 0.
func NewFileCapture(path string, maxFPS float64) (*Capture, error) {
	source, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video %s: %w", path, err)
	}
	if !source.IsOpened() {
		source.Close()
		return nil, fmt.Errorf("failed to open video %s", path)
	}
	if maxFPS <= 0 {
		maxFPS = source.Get(gocv.VideoCaptureFPS)
	}
	return newCapture(source, path, true, maxFPS), nil
}

func newCapture(source *gocv.VideoCapture, name string, isFile bool, maxFPS float64) *Capture {
	// Actual dimensions; the device may not honour requests
	c := &Capture{
		source: source,
		name:   name,
		isFile: isFile,
		width:  int(source.Get(gocv.VideoCaptureFrameWidth)),
		height: int(source.Get(gocv.VideoCaptureFrameHeight)),
	}
	if maxFPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(maxFPS), 1)
	}
	return c
}

// Read captures a frame into the provided Mat
func (c *Capture) Read(frame *gocv.Mat) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.source == nil {
		return false
	}

	return c.source.Read(frame)
}

// Next waits for the frame rate limit and reads the next non-empty frame.
// A camera that returns no frame is retried until ctx is done; a video file
// that runs out returns ErrEndOfStream.
func (c *Capture) Next(ctx context.Context, frame *gocv.Mat) error {
	for {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if c.Read(frame) && !frame.Empty() {
			return nil
		}
		if c.isFile {
			return ErrEndOfStream
		}
	}
}

// Name describes the source
func (c *Capture) Name() string {
	return c.name
}

// Width returns frame width
func (c *Capture) Width() int {
	return c.width
}

// Height returns frame height
func (c *Capture) Height() int {
	return c.height
}

// Close releases the capture device
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.source != nil {
		err := c.source.Close()
		c.source = nil
		return err
	}
	return nil
}

// ResizeToWidth scales frame in place so that it is width pixels wide,
// keeping the aspect ratio. width <= 0 or a frame already that wide is a
// no-op.
func ResizeToWidth(frame *gocv.Mat, width int) {
	size := image.Pt(frame.Cols(), frame.Rows())
	scaled := ScaledSize(size, width)
	if scaled == size {
		return
	}
	gocv.Resize(*frame, frame, scaled, 0, 0, gocv.InterpolationArea)
}

// ScaledSize returns the frame size after ResizeToWidth
func ScaledSize(size image.Point, width int) image.Point {
	if width <= 0 || size.X == 0 {
		return size
	}
	return image.Pt(width, size.Y*width/size.X)
}
