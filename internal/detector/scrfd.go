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

// SCRFDConfig holds the parameters of the SCRFD ONNX face detector
type SCRFDConfig struct {
	ModelPath     string
	InputSize     int
	ConfThreshold float32
	NMSThreshold  float32
}

// DefaultSCRFDConfig returns the parameters for the 640x640 scrfd_10g model
func DefaultSCRFDConfig(modelPath string) SCRFDConfig {
	return SCRFDConfig{
		ModelPath:     modelPath,
		InputSize:     640,
		ConfThreshold: 0.5,
		NMSThreshold:  0.4,
	}
}

// Feature pyramid levels of SCRFD, two anchors per cell
var scrfdStrides = []int{8, 16, 32}

const scrfdAnchors = 2

// SCRFD detects faces with an SCRFD model. It is more robust than the Haar
// cascade to head rotation and poor lighting.
type SCRFD struct {
	session *inference.Session
	config  SCRFDConfig
}

// NewSCRFD creates a new SCRFD detector
func NewSCRFD(config SCRFDConfig) (*SCRFD, error) {
	if config.InputSize <= 0 || config.InputSize%32 != 0 {
		return nil, fmt.Errorf("SCRFD input size %d is not a positive multiple of 32", config.InputSize)
	}

	// 1 input and 3 outputs per level: score, bbox, kps
	inputNames := []string{"input.1"}
	outputNames := []string{
		"score_8", "score_16", "score_32",
		"bbox_8", "bbox_16", "bbox_32",
		"kps_8", "kps_16", "kps_32",
	}

	session, err := inference.NewSession(config.ModelPath, inputNames, outputNames)
	if err != nil {
		return nil, fmt.Errorf("failed to create SCRFD session: %w", err)
	}

	return &SCRFD{session: session, config: config}, nil
}

// Detect finds faces in a grayscale or BGR frame, best first
func (s *SCRFD) Detect(img gocv.Mat) ([]face.Face, error) {
	if img.Empty() {
		return nil, fmt.Errorf("empty frame")
	}
	switch img.Channels() {
	case 3:
	case 1:
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(img, &bgr, gocv.ColorGrayToBGR)
		img = bgr
	default:
		return nil, fmt.Errorf("unsupported frame with %d channels", img.Channels())
	}
	size := s.config.InputSize

	blob, scale := s.preprocess(img)
	defer blob.Close()

	inputTensor, err := ort.NewTensor(
		ort.NewShape(1, 3, int64(size), int64(size)),
		bytesToFloat32(blob.ToBytes()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputs := make([]ort.Value, 3*len(scrfdStrides))
	tensors := make([]*ort.Tensor[float32], 0, len(outputs))
	defer func() {
		for _, t := range tensors {
			t.Destroy()
		}
	}()

	widths := []int64{1, 4, 10}
	for kind, width := range widths {
		for level, stride := range scrfdStrides {
			cells := int64(size/stride) * int64(size/stride) * scrfdAnchors
			t, err := inference.CreateEmptyTensor[float32]([]int64{cells, width})
			if err != nil {
				return nil, fmt.Errorf("failed to create output tensor: %w", err)
			}
			tensors = append(tensors, t)
			outputs[kind*len(scrfdStrides)+level] = t
		}
	}

	if err := s.session.Run([]ort.Value{inputTensor}, outputs); err != nil {
		return nil, fmt.Errorf("SCRFD inference failed: %w", err)
	}

	frame := image.Pt(img.Cols(), img.Rows())
	var faces []face.Face
	for level, stride := range scrfdStrides {
		scores := tensors[level].GetData()
		boxes := tensors[len(scrfdStrides)+level].GetData()
		faces = append(faces, decodeSCRFDLevel(scores, boxes, stride, size, scale, s.config.ConfThreshold, frame)...)
	}

	return nms(faces, s.config.NMSThreshold), nil
}

// preprocess letterboxes img into the top-left of a square input and
// normalises it to (x - 127.5) / 128 in RGB NCHW order
func (s *SCRFD) preprocess(img gocv.Mat) (gocv.Mat, float32) {
	size := s.config.InputSize
	scale := float32(size) / float32(max(img.Rows(), img.Cols()))
	newWidth := int(float32(img.Cols()) * scale)
	newHeight := int(float32(img.Rows()) * scale)

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(img, &resized, image.Pt(newWidth, newHeight), 0, 0, gocv.InterpolationLinear)

	padded := gocv.NewMatWithSize(size, size, gocv.MatTypeCV8UC3)
	defer padded.Close()
	padded.SetTo(gocv.NewScalar(0, 0, 0, 0))
	roi := padded.Region(image.Rect(0, 0, newWidth, newHeight))
	resized.CopyTo(&roi)
	roi.Close()

	blob := gocv.BlobFromImage(padded, 1.0/128.0, image.Pt(size, size),
		gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	return blob, scale
}

// decodeSCRFDLevel turns one pyramid level into face boxes in frame
// coordinates. Boxes are distances from the anchor centre to each edge, in
// stride units.
func decodeSCRFDLevel(scores, boxes []float32, stride, inputSize int, scale, threshold float32, frame image.Point) []face.Face {
	var faces []face.Face
	cellsPerRow := inputSize / stride
	s := float32(stride)

	for i, raw := range scores {
		score := sigmoid(raw)
		if score <= threshold || 4*i+3 >= len(boxes) {
			continue
		}

		cell := i / scrfdAnchors
		cx := (float32(cell%cellsPerRow) + 0.5) * s
		cy := (float32(cell/cellsPerRow) + 0.5) * s

		b := boxes[4*i : 4*i+4]
		faces = append(faces, face.Face{
			BoundingBox: face.BoundingBox{
				X1: clamp((cx-b[0]*s)/scale, 0, float32(frame.X)),
				Y1: clamp((cy-b[1]*s)/scale, 0, float32(frame.Y)),
				X2: clamp((cx+b[2]*s)/scale, 0, float32(frame.X)),
				Y2: clamp((cy+b[3]*s)/scale, 0, float32(frame.Y)),
			},
			Score: score,
		})
	}
	return faces
}

// Close releases detector resources
func (s *SCRFD) Close() error {
	return s.session.Destroy()
}

func sigmoid(x float32) float32 {
	return 1.0 / (1.0 + float32(math.Exp(float64(-x))))
}

func clamp(x, lo, hi float32) float32 {
	return min(max(x, lo), hi)
}
