package geometry

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var floatOpt = cmp.Comparer(func(x, y float64) bool {
	return math.Abs(x-y) < 0.00001
})

func TestConvexHull(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		want   Polygon
	}{
		{
			name: "square with interior and edge points",
			points: []Point{
				{X: 1, Y: 1}, {X: 0, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 0},
				{X: 2, Y: 2}, {X: 0, Y: 2}, {X: 0.5, Y: 1.5},
			},
			want: Polygon{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}},
		},
		{
			name:   "duplicates only",
			points: []Point{{X: 1, Y: 1}, {X: 1, Y: 1}},
			want:   Polygon{{X: 1, Y: 1}},
		},
		{
			name:   "collinear",
			points: []Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
			want:   Polygon{{X: 0, Y: 0}, {X: 2, Y: 0}},
		},
	}

	for _, test := range tests {
		got := ConvexHull(test.points)
		if diff := cmp.Diff(test.want, got, floatOpt); diff != "" {
			t.Errorf("test %s: ConvexHull incorrect output: %s", test.name, diff)
		}
	}
}

func TestConvexHullOrderIndependent(t *testing.T) {
	a := []Point{{X: 3, Y: 1}, {X: -1, Y: 2}, {X: 0, Y: -4}, {X: 1, Y: 1}, {X: 2, Y: 5}}
	b := []Point{a[4], a[2], a[0], a[3], a[1]}
	if diff := cmp.Diff(ConvexHull(a), ConvexHull(b)); diff != "" {
		t.Errorf("hull depends on input order: %s", diff)
	}
	if area := ConvexHull(a).SignedArea(); area <= 0 {
		t.Errorf("hull should be counter-clockwise, signed area %g", area)
	}
}

func TestOffsetOutward(t *testing.T) {
	square := Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	grown := square.OffsetOutward(1, 5)

	// 4 corners, each a quarter circle of 5 segments (6 points)
	if len(grown) != 24 {
		t.Fatalf("expected 24 points, got %d", len(grown))
	}

	corners := []Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	for _, p := range grown {
		nearest := math.Inf(1)
		for _, c := range corners {
			nearest = math.Min(nearest, p.Distance(c))
		}
		if math.Abs(nearest-1) > 1e-9 {
			t.Errorf("offset point %v is %g from the nearest corner, want 1", p, nearest)
		}
	}

	// the arc at the first corner starts on the normal of the incoming left edge
	want := Point{X: -1, Y: 0}
	if diff := cmp.Diff(want, grown[0], floatOpt); diff != "" {
		t.Errorf("first point incorrect: %s", diff)
	}

	// area of a rounded square: 100 + 4*10*1 + polygonal approximation of a unit circle
	circle := 5 * 4 * 0.5 * math.Sin(math.Pi/10)
	if got := grown.SignedArea(); math.Abs(got-(140+circle)) > 1e-9 {
		t.Errorf("area = %g, want %g", got, 140+circle)
	}
}

func TestOffsetInward(t *testing.T) {
	square := Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}

	shrunk := square.OffsetInward(2, 1e-9)
	want := Polygon{{X: 2, Y: 2}, {X: 8, Y: 2}, {X: 8, Y: 8}, {X: 2, Y: 8}}
	if diff := cmp.Diff(want, shrunk, floatOpt); diff != "" {
		t.Errorf("OffsetInward incorrect output: %s", diff)
	}

	if collapsed := square.OffsetInward(5, 1e-9); collapsed != nil {
		t.Errorf("expected collapse at half width, got %v", collapsed)
	}
	if collapsed := square.OffsetInward(6, 1e-9); collapsed != nil {
		t.Errorf("expected collapse beyond half width, got %v", collapsed)
	}
}
