package geometry

import (
	"reflect"
	"testing"
)

func TestSimplify(t *testing.T) {
	tests := []struct {
		points     Polyline
		epsilon    float64
		simplified Polyline
	}{
		{
			points:     Polyline{{0, 0}},
			epsilon:    0.001,
			simplified: nil,
		},
		{
			points:     Polyline{{0, 0}, {1, 1}},
			epsilon:    0.001,
			simplified: Polyline{{0, 0}, {1, 1}},
		},
		{
			points: Polyline{
				{0, 0},
				{1, 1},
				{2, 2},
				{3, 3},
				{4, 2},
				{5, 1},
				{6, 0},
			},
			epsilon:    0.001,
			simplified: Polyline{{0, 0}, {3, 3}, {6, 0}},
		},
		{
			points: Polyline{
				{0, 0},
				{1, 0},
				{2, 0},
				{3, 0},
				{4, 0},
				{5, 0},
				{6, 0},
			},
			epsilon:    0.001,
			simplified: Polyline{{0, 0}, {6, 0}},
		},
		{
			points: Polyline{
				{0, 0},
				{1, 1},
				{2, 2},
				{3, 3},
				{4, 2},
				{5, 1},
				{6, 0},
			},
			epsilon:    5,
			simplified: Polyline{{0, 0}, {6, 0}},
		},
	}
	for _, test := range tests {
		simplified := test.points.Simplify(test.epsilon)
		if !reflect.DeepEqual(simplified, test.simplified) {
			t.Errorf("Simplify(%v, %f) = %+v, want %+v", test.points, test.epsilon, simplified, test.simplified)
		}
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   Polygon
		want Polygon
	}{
		{
			name: "square with redundant midpoints",
			in:   Polygon{{0, 0}, {1, 0}, {2, 0}, {2, 2}, {2, 2}, {0, 2}, {0, 1}},
			want: Polygon{{0, 0}, {2, 0}, {2, 2}, {0, 2}},
		},
		{
			name: "already clean triangle",
			in:   Polygon{{0, 0}, {4, 0}, {0, 3}},
			want: Polygon{{0, 0}, {4, 0}, {0, 3}},
		},
		{
			name: "collinear collapses",
			in:   Polygon{{0, 0}, {1, 0}, {2, 0}},
			want: nil,
		},
		{
			name: "single point repeated",
			in:   Polygon{{1, 1}, {1, 1}, {1, 1}},
			want: nil,
		},
	}
	for _, test := range tests {
		got := test.in.Clean(1e-9)
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("test %s: Clean(%v) = %v, want %v", test.name, test.in, got, test.want)
		}
	}
}
