package detector

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudu/gazetrack/internal/face"
)

func box(x1, y1, x2, y2 float32) face.BoundingBox {
	return face.BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func TestIoU(t *testing.T) {
	a := box(0, 0, 10, 10)
	assert.InDelta(t, 1.0, iou(a, a), 1e-6)
	assert.InDelta(t, 0.0, iou(a, box(20, 20, 30, 30)), 1e-6)
	// 50 overlap over 150 union
	assert.InDelta(t, 1.0/3, iou(a, box(5, 0, 15, 10)), 1e-6)
}

func TestNMSKeepsLargestFirst(t *testing.T) {
	faces := []face.Face{
		{BoundingBox: box(0, 0, 10, 10)},
		{BoundingBox: box(100, 100, 160, 160)},
		{BoundingBox: box(1, 1, 11, 11)},
		{BoundingBox: box(200, 0, 220, 20)},
	}

	kept := nms(faces, 0.4)
	require.Len(t, kept, 3)
	assert.Equal(t, box(100, 100, 160, 160), kept[0].BoundingBox)
	assert.Equal(t, box(200, 0, 220, 20), kept[1].BoundingBox)
	assert.Equal(t, box(0, 0, 10, 10), kept[2].BoundingBox)
}

func TestNMSPrefersScore(t *testing.T) {
	faces := []face.Face{
		{BoundingBox: box(0, 0, 100, 100), Score: 0.5},
		{BoundingBox: box(5, 5, 95, 95), Score: 0.9},
	}
	kept := nms(faces, 0.4)
	require.Len(t, kept, 1)
	assert.Equal(t, float32(0.9), kept[0].Score)
}

func TestNMSEmpty(t *testing.T) {
	assert.Empty(t, nms(nil, 0.4))
}

func TestDecodeLandmarks68(t *testing.T) {
	output := make([]float32, 2*face.NumLandmarks)
	for i := 0; i < face.NumLandmarks; i++ {
		output[2*i] = 0.5
		output[2*i+1] = 0.5
	}
	// Top-left corner of the crop
	output[2*36] = 0
	output[2*36+1] = 0

	// 112 px input over a 224 px face box centred on (300, 200)
	l := decodeLandmarks68(output, 112, face.Point{X: 300, Y: 200}, 0.5)

	assert.Equal(t, image.Pt(300, 200), l[0])
	assert.Equal(t, image.Pt(188, 88), l[36])
	assert.Equal(t, image.Pt(188, 88), l.LeftEye()[0])
}

func TestDecodeLandmarks68ShortOutput(t *testing.T) {
	l := decodeLandmarks68([]float32{0.5, 0.5}, 112, face.Point{X: 10, Y: 10}, 1)
	assert.Equal(t, image.Pt(10, 10), l[0])
	assert.Equal(t, image.Point{}, l[1])
}

func TestBytesToFloat32(t *testing.T) {
	// 1.0 and -2.0, little endian
	data := []byte{0x00, 0x00, 0x80, 0x3f, 0x00, 0x00, 0x00, 0xc0}
	assert.Equal(t, []float32{1, -2}, bytesToFloat32(data))
}

func TestDecodeSCRFDLevel(t *testing.T) {
	// 32 px input at stride 8: 4x4 cells, two anchors each
	scores := make([]float32, 32)
	for i := range scores {
		scores[i] = -10
	}
	scores[2] = 10 // cell (1, 0), first anchor
	boxes := make([]float32, 4*len(scores))
	copy(boxes[8:12], []float32{1, 0.5, 1, 1})

	faces := decodeSCRFDLevel(scores, boxes, 8, 32, 0.5, 0.5, image.Pt(100, 100))
	require.Len(t, faces, 1)
	assert.Equal(t, box(8, 0, 40, 24), faces[0].BoundingBox)
	assert.Greater(t, faces[0].Score, float32(0.99))
	assert.Nil(t, faces[0].Landmarks)

	clipped := decodeSCRFDLevel(scores, boxes, 8, 32, 0.5, 0.5, image.Pt(30, 20))
	require.Len(t, clipped, 1)
	assert.Equal(t, box(8, 0, 30, 20), clipped[0].BoundingBox)

	assert.Empty(t, decodeSCRFDLevel(scores, boxes, 8, 32, 0.5, 0.99999, image.Pt(100, 100)))
}
