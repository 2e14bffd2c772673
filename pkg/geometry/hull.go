package geometry

import "sort"

// ConvexHull returns the convex hull of points as a counter-clockwise ring
// without collinear vertices (Andrew's monotone chain). Fewer than three
// distinct, non-collinear points produce a ring with fewer than three vertices.
func ConvexHull(points []Point) Polygon {
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X == sorted[j].X {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})
	if len(sorted) < 3 {
		return dedupe(sorted)
	}

	turn := func(o, a, b Point) float64 {
		return a.Minus(o).CrossProductZ(b.Minus(o))
	}

	hull := make(Polygon, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && turn(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && turn(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

func dedupe(sorted []Point) Polygon {
	var out Polygon
	for i, p := range sorted {
		if i > 0 && p == sorted[i-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}
