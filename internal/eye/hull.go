package eye

import (
	"image"
	"sort"
)

// ConvexHull returns the convex hull of points in counter-clockwise order
// (image coordinates, y down). Collinear and duplicate points are dropped,
// so a fully collapsed eye yields fewer than three points.
func ConvexHull(points []image.Point) []image.Point {
	if len(points) < 3 {
		out := make([]image.Point, len(points))
		copy(out, points)
		return out
	}

	pts := make([]image.Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	// Monotone chain: lower hull then upper hull
	hull := make([]image.Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// Last point repeats the first
	return hull[:len(hull)-1]
}

// cross returns the z component of (b-a) x (c-a)
func cross(a, b, c image.Point) int {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
