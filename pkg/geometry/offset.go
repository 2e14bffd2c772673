package geometry

import "math"

// OffsetOutward grows a convex counter-clockwise ring by distance d. Corners are
// rounded; each quarter circle is approximated by quarterSegments segments.
func (poly Polygon) OffsetOutward(d float64, quarterSegments int) Polygon {
	n := len(poly)
	if n < 3 || d <= 0 {
		return poly
	}
	if quarterSegments < 1 {
		quarterSegments = 1
	}
	step := math.Pi / 2 / float64(quarterSegments)

	out := make(Polygon, 0, n*(quarterSegments+1))
	for i, p := range poly {
		prev := poly[(i+n-1)%n]
		next := poly[(i+1)%n]
		nIn := outwardNormal(prev, p)
		nOut := outwardNormal(p, next)

		start := math.Atan2(nIn.Y, nIn.X)
		sweep := math.Atan2(nIn.CrossProductZ(nOut), nIn.Dot(nOut))
		if sweep < 0 {
			// reflex corner; cannot happen on a convex ring, keep the shifted edge end
			sweep = 0
		}
		segments := int(math.Ceil(sweep/step - 1e-9))
		if segments < 1 {
			out = append(out, p.Add(nIn.Scale(d)))
			if sweep > 0 {
				out = append(out, p.Add(nOut.Scale(d)))
			}
			continue
		}
		for s := 0; s <= segments; s++ {
			a := start + sweep*float64(s)/float64(segments)
			out = append(out, Point{X: p.X + d*math.Cos(a), Y: p.Y + d*math.Sin(a)})
		}
	}
	return out
}

// OffsetInward shrinks a convex counter-clockwise ring by distance d by clipping
// it against every edge shifted inwards. Corners stay sharp. The result is nil
// when the ring collapses.
func (poly Polygon) OffsetInward(d float64, epsilon float64) Polygon {
	n := len(poly)
	if n < 3 {
		return nil
	}
	if d <= 0 {
		return poly
	}

	clipped := make(Polygon, n)
	copy(clipped, poly)
	for i, a := range poly {
		b := poly[(i+1)%n]
		inward := outwardNormal(a, b).Scale(-1)
		origin := a.Add(inward.Scale(d))
		clipped = clipHalfPlane(clipped, origin, inward)
		if len(clipped) < 3 {
			return nil
		}
	}

	clipped = clipped.Clean(epsilon)
	if len(clipped) < 3 || clipped.SignedArea() <= epsilon {
		return nil
	}
	return clipped
}

// outwardNormal is the unit normal on the right of a->b, which points out of a
// counter-clockwise ring.
func outwardNormal(a, b Point) Vector2 {
	d := b.Minus(a)
	return Vector2{X: d.Y, Y: -d.X}.Normalize()
}

// clipHalfPlane keeps the part of poly where (p - origin) . normal >= 0
// (Sutherland-Hodgman against a single edge).
func clipHalfPlane(poly Polygon, origin Point, normal Vector2) Polygon {
	side := func(p Point) float64 {
		return p.Minus(origin).Dot(normal)
	}

	var out Polygon
	for i, cur := range poly {
		next := poly[(i+1)%len(poly)]
		sc, sn := side(cur), side(next)
		if sc >= 0 {
			out = append(out, cur)
		}
		if (sc >= 0) != (sn >= 0) {
			t := sc / (sc - sn)
			out = append(out, cur.Add(next.Minus(cur).Scale(t)))
		}
	}
	return out
}
