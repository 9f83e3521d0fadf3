package detector

import (
	"sort"

	"github.com/dudu/gazetrack/internal/face"
)

// nms performs Non-Maximum Suppression on detected faces.
// Faces are ranked by score, then by area, so the largest face wins when
// the detector does not score its boxes.
func nms(faces []face.Face, iouThreshold float32) []face.Face {
	if len(faces) == 0 {
		return faces
	}

	sort.SliceStable(faces, func(i, j int) bool {
		if faces[i].Score != faces[j].Score {
			return faces[i].Score > faces[j].Score
		}
		return faces[i].BoundingBox.Area() > faces[j].BoundingBox.Area()
	})

	keep := make([]bool, len(faces))
	for i := range keep {
		keep[i] = true
	}

	for i := 0; i < len(faces); i++ {
		if !keep[i] {
			continue
		}
		for j := i + 1; j < len(faces); j++ {
			if !keep[j] {
				continue
			}
			if iou(faces[i].BoundingBox, faces[j].BoundingBox) > iouThreshold {
				keep[j] = false
			}
		}
	}

	result := make([]face.Face, 0, len(faces))
	for i, f := range faces {
		if keep[i] {
			result = append(result, f)
		}
	}

	return result
}

// iou calculates Intersection over Union of two bounding boxes
func iou(a, b face.BoundingBox) float32 {
	x1 := max(a.X1, b.X1)
	y1 := max(a.Y1, b.Y1)
	x2 := min(a.X2, b.X2)
	y2 := min(a.Y2, b.Y2)

	if x1 >= x2 || y1 >= y2 {
		return 0
	}

	intersection := (x2 - x1) * (y2 - y1)
	union := a.Area() + b.Area() - intersection

	if union <= 0 {
		return 0
	}

	return intersection / union
}
