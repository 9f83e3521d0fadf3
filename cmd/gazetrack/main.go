package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/dudu/gazetrack/internal/camera"
	"github.com/dudu/gazetrack/internal/config"
	"github.com/dudu/gazetrack/internal/detector"
	"github.com/dudu/gazetrack/internal/events"
	"github.com/dudu/gazetrack/internal/imaging/cv"
	"github.com/dudu/gazetrack/internal/inference"
	"github.com/dudu/gazetrack/internal/logger"
	"github.com/dudu/gazetrack/internal/monitor"
	"github.com/dudu/gazetrack/internal/pipeline"
	"github.com/dudu/gazetrack/internal/server"
	"github.com/dudu/gazetrack/internal/ui"
)

func init() {
	// Lock the main goroutine to the main OS thread.
	// This is required on macOS for OpenCV's highgui (window creation).
	runtime.LockOSThread()
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := logger.Init(logger.Options{
		Development: cfg.Log.Development,
		Level:       cfg.Log.Level,
		File:        cfg.Log.File,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAgeDays:  cfg.Log.MaxAgeDays,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Log().Error("gazetrack stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

// loadConfig layers flags over file and environment settings
func loadConfig(args []string) (config.Config, error) {
	flags := config.NewFlags("gazetrack", os.Stderr)
	if err := flags.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return cfg, err
	}
	flags.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func run(cfg config.Config) error {
	log := logger.Log()
	fmt.Println("gazetrack starting...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Face detection and landmarks
	if err := inference.Initialize(inference.Options{
		SharedLibraryPath: cfg.Models.OrtLibrary,
		CoreML:            cfg.Models.CoreML,
	}); err != nil {
		return err
	}
	defer inference.Shutdown()

	faces, err := newFaceDetector(cfg.Models)
	if err != nil {
		return err
	}

	landmarkConfig := detector.DefaultLandmark68Config(cfg.Models.Landmarks)
	if cfg.Models.InputSize > 0 {
		landmarkConfig.InputSize = cfg.Models.InputSize
	}
	landmarks, err := detector.NewLandmark68(landmarkConfig)
	if err != nil {
		faces.Close()
		return err
	}

	locator := &detector.Locator{Faces: faces, Landmarks: landmarks}
	defer locator.Close()
	log.Info("models loaded", zap.String("detector", cfg.Models.Detector), zap.String("landmarks", cfg.Models.Landmarks))

	// Observers
	mon := monitor.New()
	go mon.Run(ctx)
	opts := []pipeline.Option{pipeline.WithObserver(mon)}

	if cfg.Events.Path != "" {
		sink, err := events.OpenFile(cfg.Events.Path)
		if err != nil {
			return err
		}
		defer sink.Close()
		opts = append(opts, pipeline.WithObserver(sink))
		log.Info("event log enabled", zap.String("path", cfg.Events.Path))
	}

	var tracker *pipeline.Tracker
	var srv *server.Server
	if cfg.Server.Listen != "" {
		srv = server.New(server.Options{
			Addr:        cfg.Server.Listen,
			Metrics:     mon.Handler(),
			Development: cfg.Log.Development,
		}, func() pipeline.Settings { return tracker.Settings() })
		opts = append(opts, pipeline.WithObserver(srv))
	}

	tracker, err = pipeline.NewTracker(cfg.Tracking, opts...)
	if err != nil {
		return err
	}
	log.Info("tracking session started", zap.String("session", tracker.SessionID()))

	if srv != nil {
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				log.Error("status API failed", zap.Error(err))
			}
		}()
		log.Info("status API listening", zap.String("addr", cfg.Server.Listen))
	}

	// Frame source
	var cam *camera.Capture
	if cfg.Camera.Video != "" {
		fmt.Printf("Opening video %s...\n", cfg.Camera.Video)
		cam, err = camera.NewFileCapture(cfg.Camera.Video, cfg.Camera.FPS)
	} else {
		fmt.Printf("Opening camera %d...\n", cfg.Camera.Device)
		cam, err = camera.NewCapture(cfg.Camera.Device, cfg.Camera.FPS)
	}
	if err != nil {
		return err
	}
	defer cam.Close()
	fmt.Printf("%s opened: %dx%d\n", cam.Name(), cam.Width(), cam.Height())

	var window *ui.Window
	if cfg.Camera.Preview {
		window = ui.NewWindow("gazetrack", tracker.Settings())
		defer window.Close()
	}

	frame := gocv.NewMat()
	defer frame.Close()

	fmt.Println("\nRunning... Press 'q' or ESC to quit")

	for {
		if err := cam.Next(ctx, &frame); err != nil {
			if errors.Is(err, camera.ErrEndOfStream) {
				fmt.Println("\nEnd of video")
			} else {
				fmt.Println("\nShutting down...")
			}
			break
		}

		camera.ResizeToWidth(&frame, cfg.Camera.Width)

		// Trackbars are read between frames
		if window != nil {
			if err := tracker.SetSettings(window.Settings(tracker.Settings())); err != nil {
				log.Warn("trackbar settings rejected", zap.Error(err))
			}
		}

		processFrame(tracker, locator, &frame, window)

		if window != nil {
			window.Show(&frame)
			// WaitKey must be called to process window events on macOS
			key := window.WaitKey(1)
			if key == 'q' || key == 27 { // 'q' or ESC
				fmt.Println("\nQuitting...")
				break
			}
		}
	}

	state := tracker.State()
	log.Info("tracking session finished",
		zap.String("session", tracker.SessionID()),
		zap.Int("blinks", state.TotalBlinks),
	)
	return nil
}

// newFaceDetector opens the configured face detector
func newFaceDetector(models config.ModelsConfig) (detector.FaceDetector, error) {
	if models.Detector == "scrfd" {
		return detector.NewSCRFD(detector.DefaultSCRFDConfig(models.SCRFD))
	}

	cascadeConfig := detector.DefaultCascadeConfig()
	cascadeConfig.Path = models.Cascade
	if models.MinFaceSize > 0 {
		cascadeConfig.MinSize = models.MinFaceSize
	}
	return detector.NewCascade(cascadeConfig)
}

// processFrame locates faces, runs the tracker and draws the results
func processFrame(tracker *pipeline.Tracker, locator *detector.Locator, frame *gocv.Mat, window *ui.Window) {
	gray := cv.NewGray(*frame)
	defer gray.Close()

	faces, err := locator.Locate(*frame, gray.Mat())
	if err != nil {
		logger.Log().Warn("face location failed", zap.Error(err))
	}

	results := tracker.Process(gray, faces)
	defer pipeline.CloseAll(results)

	for i := range results {
		ui.Render(frame, results[i].Overlay)
		if window != nil {
			window.ShowEyes(&results[i])
		}
	}

	timing := tracker.LastTiming()
	state := tracker.State()
	fmt.Printf("\rFaces:%d Blinks:%3d T:%5.2fms  ", timing.Faces, state.TotalBlinks,
		float64(timing.Total.Microseconds())/1000)
}
