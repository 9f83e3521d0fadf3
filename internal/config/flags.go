package config

import (
	"flag"
	"fmt"
	"io"
)

// Flags holds the command line overrides. Only flags set explicitly on the
// command line replace values loaded from the file and environment.
type Flags struct {
	ConfigPath string

	fs     *flag.FlagSet
	values Config
}

// flagTargets copies a parsed flag value from src into dst
var flagTargets = map[string]func(dst, src *Config){
	"camera":    func(dst, src *Config) { dst.Camera.Device = src.Camera.Device },
	"c":         func(dst, src *Config) { dst.Camera.Device = src.Camera.Device },
	"video":     func(dst, src *Config) { dst.Camera.Video = src.Camera.Video },
	"fps":       func(dst, src *Config) { dst.Camera.FPS = src.Camera.FPS },
	"preview":   func(dst, src *Config) { dst.Camera.Preview = src.Camera.Preview },
	"p":         func(dst, src *Config) { dst.Camera.Preview = src.Camera.Preview },
	"detector":  func(dst, src *Config) { dst.Models.Detector = src.Models.Detector },
	"cascade":   func(dst, src *Config) { dst.Models.Cascade = src.Models.Cascade },
	"scrfd":     func(dst, src *Config) { dst.Models.SCRFD = src.Models.SCRFD },
	"landmarks": func(dst, src *Config) { dst.Models.Landmarks = src.Models.Landmarks },
	"coreml":    func(dst, src *Config) { dst.Models.CoreML = src.Models.CoreML },
	"ear":       func(dst, src *Config) { dst.Tracking.EARThresh = src.Tracking.EARThresh },
	"binarize":  func(dst, src *Config) { dst.Tracking.BinarizeThresh = src.Tracking.BinarizeThresh },
	"gaze-low":  func(dst, src *Config) { dst.Tracking.GazeLow = src.Tracking.GazeLow },
	"gaze-high": func(dst, src *Config) { dst.Tracking.GazeHigh = src.Tracking.GazeHigh },
	"events":    func(dst, src *Config) { dst.Events.Path = src.Events.Path },
	"listen":    func(dst, src *Config) { dst.Server.Listen = src.Server.Listen },
	"dev":       func(dst, src *Config) { dst.Log.Development = src.Log.Development },
	"log-level": func(dst, src *Config) { dst.Log.Level = src.Log.Level },
	"log-file":  func(dst, src *Config) { dst.Log.File = src.Log.File },
}

// NewFlags registers the gazetrack flags on a new FlagSet
func NewFlags(name string, output io.Writer) *Flags {
	f := &Flags{
		fs:     flag.NewFlagSet(name, flag.ContinueOnError),
		values: Default(),
	}
	fs, v := f.fs, &f.values
	fs.SetOutput(output)

	fs.StringVar(&f.ConfigPath, "config", "", "YAML configuration file")
	fs.IntVar(&v.Camera.Device, "camera", v.Camera.Device, "Camera device index")
	fs.IntVar(&v.Camera.Device, "c", v.Camera.Device, "Camera device index (shorthand)")
	fs.StringVar(&v.Camera.Video, "video", "", "Read frames from a video file instead of the camera")
	fs.Float64Var(&v.Camera.FPS, "fps", v.Camera.FPS, "Maximum frames per second (0 = unlimited)")
	fs.BoolVar(&v.Camera.Preview, "preview", v.Camera.Preview, "Show preview window")
	fs.BoolVar(&v.Camera.Preview, "p", v.Camera.Preview, "Show preview window (shorthand)")
	fs.StringVar(&v.Models.Detector, "detector", v.Models.Detector, "Face detector: cascade or scrfd")
	fs.StringVar(&v.Models.Cascade, "cascade", "", "Haar cascade for face detection")
	fs.StringVar(&v.Models.SCRFD, "scrfd", "", "SCRFD ONNX model for face detection")
	fs.StringVar(&v.Models.Landmarks, "landmarks", v.Models.Landmarks, "68-point landmark ONNX model")
	fs.BoolVar(&v.Models.CoreML, "coreml", false, "Run the landmark model with the CoreML execution provider")
	fs.Float64Var(&v.Tracking.EARThresh, "ear", v.Tracking.EARThresh, "Eye aspect ratio below which an eye counts as closed")
	fs.IntVar(&v.Tracking.BinarizeThresh, "binarize", v.Tracking.BinarizeThresh, "Grayscale threshold for the eye crops (0-255)")
	fs.Float64Var(&v.Tracking.GazeLow, "gaze-low", v.Tracking.GazeLow, "Gaze ratio at or below which the gaze is RIGHT")
	fs.Float64Var(&v.Tracking.GazeHigh, "gaze-high", v.Tracking.GazeHigh, "Gaze ratio at or above which the gaze is LEFT")
	fs.StringVar(&v.Events.Path, "events", "", "Append per-frame events to this JSON-lines file")
	fs.StringVar(&v.Server.Listen, "listen", "", "Status API address, e.g. :8080")
	fs.BoolVar(&v.Log.Development, "dev", false, "Development logging")
	fs.StringVar(&v.Log.Level, "log-level", v.Log.Level, "Log level: debug, info, warn or error")
	fs.StringVar(&v.Log.File, "log-file", "", "Also write logs to this rotating file")

	fs.Usage = func() {
		fmt.Fprintf(output, "gazetrack - Blink counting and gaze direction from a webcam\n\n")
		fmt.Fprintf(output, "Usage: %s [options]\n\n", name)
		fmt.Fprintf(output, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(output, "\nExamples:\n")
		fmt.Fprintf(output, "  %s --landmarks models/landmark68.onnx\n", name)
		fmt.Fprintf(output, "  %s --video clip.mp4 --events events.jsonl\n", name)
		fmt.Fprintf(output, "  %s --detector scrfd --scrfd models/scrfd_10g.onnx\n", name)
		fmt.Fprintf(output, "  %s --config gazetrack.yaml --listen :8080\n", name)
	}
	return f
}

// Parse parses the command line arguments, without the program name
func (f *Flags) Parse(args []string) error {
	return f.fs.Parse(args)
}

// Apply copies every flag set on the command line into c
func (f *Flags) Apply(c *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		if set, ok := flagTargets[fl.Name]; ok {
			set(c, &f.values)
		}
	})
}

// Usage prints the flag help
func (f *Flags) Usage() {
	f.fs.Usage()
}
