package detector

import (
	"fmt"
	"image"
	"math"

	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"github.com/dudu/gazetrack/internal/face"
	"github.com/dudu/gazetrack/internal/inference"
)

// Landmark68Config describes a 68-point landmark regression model.
// The model takes a square RGB crop and outputs 136 values, (x, y) pairs
// normalised to [0, 1] over the crop.
type Landmark68Config struct {
	ModelPath  string
	InputName  string
	OutputName string
	InputSize  int
	// Expand scales the face box before cropping
	Expand float32
	// Mean and Std normalise pixel values: (x - Mean) / Std
	Mean float32
	Std  float32
}

// DefaultLandmark68Config returns settings for a PFLD-style 112x112 model
func DefaultLandmark68Config(modelPath string) Landmark68Config {
	return Landmark68Config{
		ModelPath:  modelPath,
		InputName:  "input",
		OutputName: "output",
		InputSize:  112,
		Expand:     1.2,
		Mean:       0,
		Std:        255,
	}
}

// Landmark68 regresses the 68 facial landmarks of a detected face
type Landmark68 struct {
	session *inference.Session
	config  Landmark68Config
}

// NewLandmark68 creates a new 68-point landmark detector
func NewLandmark68(config Landmark68Config) (*Landmark68, error) {
	if config.InputSize <= 0 {
		return nil, fmt.Errorf("invalid landmark input size %d", config.InputSize)
	}
	if config.Std == 0 {
		config.Std = 1
	}

	session, err := inference.NewSession(config.ModelPath, []string{config.InputName}, []string{config.OutputName})
	if err != nil {
		return nil, fmt.Errorf("failed to create landmark session: %w", err)
	}

	return &Landmark68{session: session, config: config}, nil
}

// Detect fills f.Landmarks for a face found in img (BGR)
func (l *Landmark68) Detect(img gocv.Mat, f *face.Face) error {
	size := l.config.InputSize
	bbox := f.BoundingBox

	// Square crop around the box centre
	center := bbox.Center()
	side := max(bbox.Width(), bbox.Height()) * l.config.Expand
	if side <= 0 {
		return fmt.Errorf("empty face box %+v", bbox)
	}
	scale := float32(size) / side

	M := l.getTransformMatrix(center.X, center.Y, scale)
	aligned := gocv.NewMat()
	defer aligned.Close()
	gocv.WarpAffine(img, &aligned, M, image.Pt(size, size))
	M.Close()

	// Normalise and convert HWC to NCHW
	blob := gocv.BlobFromImage(aligned, 1.0/float64(l.config.Std), image.Pt(size, size),
		gocv.NewScalar(float64(l.config.Mean), float64(l.config.Mean), float64(l.config.Mean), 0), true, false)
	defer blob.Close()

	inputTensor, err := ort.NewTensor(
		ort.NewShape(1, 3, int64(size), int64(size)),
		bytesToFloat32(blob.ToBytes()),
	)
	if err != nil {
		return fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := inference.CreateEmptyTensor[float32]([]int64{1, 2 * face.NumLandmarks})
	if err != nil {
		return fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := l.session.Run([]ort.Value{inputTensor}, []ort.Value{outputTensor}); err != nil {
		return fmt.Errorf("landmark inference failed: %w", err)
	}

	landmarks := l.postprocess(outputTensor.GetData(), center, scale)
	f.Landmarks = &landmarks
	return nil
}

// getTransformMatrix maps the face crop centred on (centerX, centerY)
// onto the model input
func (l *Landmark68) getTransformMatrix(centerX, centerY, scale float32) gocv.Mat {
	half := float64(l.config.InputSize) / 2

	M := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	M.SetDoubleAt(0, 0, float64(scale))
	M.SetDoubleAt(0, 1, 0)
	M.SetDoubleAt(0, 2, half-float64(centerX*scale))
	M.SetDoubleAt(1, 0, 0)
	M.SetDoubleAt(1, 1, float64(scale))
	M.SetDoubleAt(1, 2, half-float64(centerY*scale))
	return M
}

// postprocess maps normalised model output back to frame pixels
func (l *Landmark68) postprocess(output []float32, center face.Point, scale float32) face.Landmarks68 {
	return decodeLandmarks68(output, l.config.InputSize, center, scale)
}

func decodeLandmarks68(output []float32, inputSize int, center face.Point, scale float32) face.Landmarks68 {
	var landmarks face.Landmarks68
	size := float32(inputSize)
	half := size / 2

	for i := 0; i < face.NumLandmarks && 2*i+1 < len(output); i++ {
		x := output[2*i] * size
		y := output[2*i+1] * size
		landmarks[i] = image.Pt(
			int(math.Round(float64((x-half)/scale+center.X))),
			int(math.Round(float64((y-half)/scale+center.Y))),
		)
	}
	return landmarks
}

// Close releases detector resources
func (l *Landmark68) Close() error {
	return l.session.Destroy()
}

func bytesToFloat32(data []byte) []float32 {
	result := make([]float32, len(data)/4)
	for i := range result {
		bits := uint32(data[i*4]) | uint32(data[i*4+1])<<8 | uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
		result[i] = math.Float32frombits(bits)
	}
	return result
}
