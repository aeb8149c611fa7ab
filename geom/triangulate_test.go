package geom

import (
	"math"
	"testing"
)

func TestTriangulateSquare(t *testing.T) {
	square := Path{
		Points: []Vec2{{0, 0}, {2, 0}, {2, 2}, {0, 2}},
		Closed: true,
	}
	poly := Triangulate(square)
	if poly.Triangles() != 2 {
		t.Fatalf("got %d triangles, want 2", poly.Triangles())
	}
	if math.Abs(poly.Area()-4) > 1e-9 {
		t.Fatalf("area = %v, want 4", poly.Area())
	}
}

func TestTriangulateClockwiseInput(t *testing.T) {
	// Same square wound clockwise; output winding must still be CCW.
	square := Path{
		Points: []Vec2{{0, 2}, {2, 2}, {2, 0}, {0, 0}},
		Closed: true,
	}
	poly := Triangulate(square)
	for i := 0; i < poly.Triangles(); i++ {
		a, b, c := poly.Triangle(i)
		if b.Sub(a).Cross(c.Sub(a)) <= 0 {
			t.Fatalf("triangle %d winds clockwise", i)
		}
	}
}

func TestTriangulateConcaveStar(t *testing.T) {
	star := Path{
		Points: []Vec2{
			{0, 50}, {10.75, 17}, {47, 17}, {17.88, -4.88}, {29.5, -40.5},
			{0, -18.33}, {-29.5, -40.5}, {-17.88, -4.88}, {-47, 17}, {-10.75, 17},
		},
		Closed: true,
	}
	poly := Triangulate(star)
	// A simple polygon with n vertices yields n-2 triangles.
	if poly.Triangles() != 8 {
		t.Fatalf("got %d triangles, want 8", poly.Triangles())
	}
	if poly.Area() <= 0 {
		t.Fatalf("area = %v, want > 0", poly.Area())
	}
	for i := 0; i < poly.Triangles(); i++ {
		a, b, c := poly.Triangle(i)
		if b.Sub(a).Cross(c.Sub(a)) <= 0 {
			t.Fatalf("triangle %d winds clockwise", i)
		}
	}
}

func TestTriangulateDegenerateInput(t *testing.T) {
	if got := Triangulate(Path{Points: []Vec2{{0, 0}, {1, 1}}}); got.Triangles() != 0 {
		t.Fatalf("two points produced %d triangles", got.Triangles())
	}
	if got := Triangulate(Path{}); got.Triangles() != 0 {
		t.Fatalf("empty path produced %d triangles", got.Triangles())
	}
}

func TestPolygonScale(t *testing.T) {
	tri := Polygon{
		Vertices: []Vec2{{0, 0}, {2, 0}, {0, 2}},
		Indices:  []int{0, 1, 2},
	}
	scaled := tri.Scale(0.5)
	if scaled.Vertices[1] != (Vec2{1, 0}) || scaled.Vertices[2] != (Vec2{0, 1}) {
		t.Fatalf("scaled vertices = %v", scaled.Vertices)
	}
	if math.Abs(scaled.Area()-tri.Area()/4) > 1e-9 {
		t.Fatalf("area should scale quadratically: %v vs %v", scaled.Area(), tri.Area())
	}
	// Source polygon untouched.
	if tri.Vertices[1] != (Vec2{2, 0}) {
		t.Fatalf("Scale mutated the source polygon")
	}
}
