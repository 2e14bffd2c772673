package geometry

// Simplify simplifies the polyline using the Douglas-Peucker algorithm.
func (points Polyline) Simplify(epsilon float64) Polyline {
	if len(points) < 2 {
		return nil
	}

	// find the point with the max distance from the line segment between the first and last points
	firstPoint, lastPoint := points[0], points[len(points)-1]
	chord := LineSegment{A: firstPoint, B: lastPoint}
	if len(points) == 2 {
		return Polyline{firstPoint, lastPoint}
	}

	dmax := 0.0
	index := 0
	for i := 1; i < len(points)-1; i++ {
		d := chord.Distance(points[i])
		if d > dmax {
			index = i
			dmax = d
		}
	}

	if dmax < epsilon {
		return Polyline{firstPoint, lastPoint}
	}

	// note: need to be careful on the recursive step to not call with < 2 points
	recResults1 := Polyline(points[:index+1]).Simplify(epsilon)
	recResults2 := Polyline(points[index:]).Simplify(epsilon)

	return append(recResults1[:len(recResults1)-1], recResults2...)
}

// Clean drops repeated and collinear vertices from a closed ring. The first
// vertex is always kept, so the result is deterministic for a given input.
func (poly Polygon) Clean(epsilon float64) Polygon {
	if len(poly) < 3 {
		return nil
	}

	// Split at the vertex farthest from the first one, so neither half is a
	// degenerate chord with coincident endpoints.
	far := 0
	dmax := 0.0
	for i, p := range poly {
		if d := p.Distance(poly[0]); d > dmax {
			far, dmax = i, d
		}
	}
	if far == 0 || dmax < epsilon {
		return nil
	}

	first := make(Polyline, 0, far+1)
	first = append(first, poly[:far+1]...)
	second := make(Polyline, 0, len(poly)-far+1)
	second = append(second, poly[far:]...)
	second = append(second, poly[0])

	a := first.Simplify(epsilon)
	b := second.Simplify(epsilon)
	out := Polygon(append(a[:len(a)-1], b[:len(b)-1]...))
	if len(out) < 3 {
		return nil
	}
	return out
}
