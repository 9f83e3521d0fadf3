// Package config loads gazetrack settings from defaults, an optional YAML
// file, GAZETRACK_* environment variables (optionally from a .env file) and
// command line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dudu/gazetrack/internal/pipeline"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("config: invalid configuration")

// CameraConfig selects and paces the frame source
type CameraConfig struct {
	Device  int     `yaml:"device" validate:"gte=0"`
	Video   string  `yaml:"video"`
	FPS     float64 `yaml:"fps" validate:"gte=0"`
	Width   int     `yaml:"width" validate:"gte=0"`
	Preview bool    `yaml:"preview"`
}

// ModelsConfig locates the detector files
type ModelsConfig struct {
	Detector    string `yaml:"detector" validate:"oneof=cascade scrfd"`
	Cascade     string `yaml:"cascade"`
	SCRFD       string `yaml:"scrfd" validate:"required_if=Detector scrfd"`
	Landmarks   string `yaml:"landmarks"`
	OrtLibrary  string `yaml:"ortLibrary"`
	CoreML      bool   `yaml:"coreml"`
	InputSize   int    `yaml:"inputSize" validate:"gte=0"`
	MinFaceSize int    `yaml:"minFaceSize" validate:"gte=0"`
}

// ServerConfig configures the status API. An empty Listen disables it.
type ServerConfig struct {
	Listen string `yaml:"listen" validate:"omitempty,hostname_port"`
}

// EventsConfig configures the JSON-lines event log. An empty Path disables it.
type EventsConfig struct {
	Path string `yaml:"path"`
}

// LogConfig configures zap
type LogConfig struct {
	Development bool   `yaml:"development"`
	Level       string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"maxSizeMB" validate:"gte=0"`
	MaxBackups  int    `yaml:"maxBackups" validate:"gte=0"`
	MaxAgeDays  int    `yaml:"maxAgeDays" validate:"gte=0"`
}

// Config is the complete runtime configuration
type Config struct {
	Camera   CameraConfig      `yaml:"camera"`
	Models   ModelsConfig      `yaml:"models"`
	Tracking pipeline.Settings `yaml:"tracking"`
	Server   ServerConfig      `yaml:"server"`
	Events   EventsConfig      `yaml:"events"`
	Log      LogConfig         `yaml:"log"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Camera: CameraConfig{
			Width:   720,
			Preview: true,
		},
		Models: ModelsConfig{
			Detector:    "cascade",
			Landmarks:   "models/landmark68.onnx",
			InputSize:   112,
			MinFaceSize: 60,
		},
		Tracking: pipeline.DefaultSettings(),
		Log: LogConfig{
			Level: "info",
		},
	}
}

var validate = validator.New()

// Validate checks every field range
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Load builds the configuration from defaults, the YAML file at path (if
// not empty), a .env file in the working directory (if present) and the
// process environment. Flags are applied afterwards by the caller.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

type envBinding struct {
	key string
	set func(c *Config, v string) error
}

var envBindings = []envBinding{
	{"GAZETRACK_CAMERA", intField(func(c *Config) *int { return &c.Camera.Device })},
	{"GAZETRACK_VIDEO", stringField(func(c *Config) *string { return &c.Camera.Video })},
	{"GAZETRACK_FPS", floatField(func(c *Config) *float64 { return &c.Camera.FPS })},
	{"GAZETRACK_PREVIEW", boolField(func(c *Config) *bool { return &c.Camera.Preview })},
	{"GAZETRACK_DETECTOR", stringField(func(c *Config) *string { return &c.Models.Detector })},
	{"GAZETRACK_SCRFD", stringField(func(c *Config) *string { return &c.Models.SCRFD })},
	{"GAZETRACK_CASCADE", stringField(func(c *Config) *string { return &c.Models.Cascade })},
	{"GAZETRACK_LANDMARKS", stringField(func(c *Config) *string { return &c.Models.Landmarks })},
	{"GAZETRACK_ORT_LIBRARY", stringField(func(c *Config) *string { return &c.Models.OrtLibrary })},
	{"GAZETRACK_EAR_THRESH", floatField(func(c *Config) *float64 { return &c.Tracking.EARThresh })},
	{"GAZETRACK_BINARIZE_THRESH", intField(func(c *Config) *int { return &c.Tracking.BinarizeThresh })},
	{"GAZETRACK_GAZE_LOW", floatField(func(c *Config) *float64 { return &c.Tracking.GazeLow })},
	{"GAZETRACK_GAZE_HIGH", floatField(func(c *Config) *float64 { return &c.Tracking.GazeHigh })},
	{"GAZETRACK_LISTEN", stringField(func(c *Config) *string { return &c.Server.Listen })},
	{"GAZETRACK_EVENTS", stringField(func(c *Config) *string { return &c.Events.Path })},
	{"GAZETRACK_LOG_LEVEL", stringField(func(c *Config) *string { return &c.Log.Level })},
	{"GAZETRACK_LOG_FILE", stringField(func(c *Config) *string { return &c.Log.File })},
}

func applyEnv(c *Config, lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		v, ok := lookup(b.key)
		if !ok || v == "" {
			continue
		}
		if err := b.set(c, v); err != nil {
			return fmt.Errorf("invalid %s=%q: %w", b.key, v, err)
		}
	}
	return nil
}

func stringField(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func intField(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func floatField(field func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*field(c) = f
		return nil
	}
}

func boolField(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}
