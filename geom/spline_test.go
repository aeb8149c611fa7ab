package geom

import (
	"math"
	"testing"
)

// ringControls is a 4-segment closed control ring, the same layout the
// demo level uses.
func ringControls() []Vec2 {
	return []Vec2{
		{0, 200}, {120, 200}, {200, 120}, {200, 0},
		{200, -120}, {120, -200}, {0, -200}, {-120, -200},
		{-200, -120}, {-200, 0}, {-200, 120}, {-120, 200},
		{0, 200},
	}
}

func newRing(t *testing.T) *Spline {
	t.Helper()
	s, err := NewSpline(ringControls())
	if err != nil {
		t.Fatalf("NewSpline: %v", err)
	}
	s.SetClosed(true)
	return s
}

func TestNewSplineValidation(t *testing.T) {
	cases := []struct {
		name   string
		count  int
		wantOK bool
	}{
		{"empty", 0, false},
		{"too_short", 3, false},
		{"one_segment", 4, true},
		{"broken_segment", 6, false},
		{"two_segments", 7, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			pts := make([]Vec2, c.count)
			for i := range pts {
				pts[i] = Vec2{X: float64(i)}
			}
			_, err := NewSpline(pts)
			if c.wantOK && err != nil {
				t.Fatalf("NewSpline(%d points): %v", c.count, err)
			}
			if !c.wantOK && err == nil {
				t.Fatalf("NewSpline(%d points) should fail", c.count)
			}
		})
	}
}

func TestSplineCounts(t *testing.T) {
	s := newRing(t)
	if s.Segments() != 4 {
		t.Fatalf("segments = %d, want 4", s.Segments())
	}
	if s.Anchors() != 4 {
		t.Fatalf("anchors = %d, want 4", s.Anchors())
	}
	if s.Tangents() != 8 {
		t.Fatalf("tangents = %d, want 8", s.Tangents())
	}
}

func TestSplineTangentIndexing(t *testing.T) {
	s := newRing(t)
	ctrl := ringControls()
	// Tangent 2k leaves anchor k, tangent 2k+1 enters anchor k+1.
	for seg := 0; seg < 4; seg++ {
		if got := s.Tangent(2 * seg); got != ctrl[3*seg+1] {
			t.Fatalf("tangent %d = %v, want %v", 2*seg, got, ctrl[3*seg+1])
		}
		if got := s.Tangent(2*seg + 1); got != ctrl[3*seg+2] {
			t.Fatalf("tangent %d = %v, want %v", 2*seg+1, got, ctrl[3*seg+2])
		}
	}
}

func TestSetTangentSymmetric(t *testing.T) {
	s := newRing(t)

	// Moving the tangent leaving anchor 1 must mirror the one entering it.
	moved := Vec2{X: 250, Y: 60}
	s.SetTangent(2, moved, true)
	if s.Tangent(2) != moved {
		t.Fatalf("tangent 2 = %v, want %v", s.Tangent(2), moved)
	}
	anchor := s.Anchor(1)
	wantSibling := anchor.Add(anchor.Sub(moved))
	if s.Tangent(1) != wantSibling {
		t.Fatalf("sibling tangent = %v, want mirror %v", s.Tangent(1), wantSibling)
	}

	// The pair at the closed seam wraps around to the last tangent.
	seamMove := Vec2{X: 140, Y: 210}
	s.SetTangent(0, seamMove, true)
	anchor = s.Anchor(0)
	wantSibling = anchor.Add(anchor.Sub(seamMove))
	if s.Tangent(7) != wantSibling {
		t.Fatalf("seam sibling = %v, want %v", s.Tangent(7), wantSibling)
	}
}

func TestSetTangentAsymmetric(t *testing.T) {
	s := newRing(t)
	before := s.Tangent(1)
	s.SetTangent(2, Vec2{X: 300, Y: 0}, false)
	if s.Tangent(1) != before {
		t.Fatalf("asymmetric set moved the sibling tangent")
	}
}

func TestFlattenClosedRing(t *testing.T) {
	s := newRing(t)
	path := s.Flatten(16)
	if !path.Closed {
		t.Fatalf("flattened closed spline should be a closed path")
	}
	if len(path.Points) != 4*16 {
		t.Fatalf("got %d points, want %d", len(path.Points), 4*16)
	}
	// Each segment's first sample is its anchor.
	for seg := 0; seg < 4; seg++ {
		if path.Points[seg*16] != s.Anchor(seg) {
			t.Fatalf("segment %d does not start at its anchor", seg)
		}
	}
}

func TestFlattenOpenSpline(t *testing.T) {
	s, err := NewSpline([]Vec2{{0, 0}, {1, 1}, {2, 1}, {3, 0}})
	if err != nil {
		t.Fatalf("NewSpline: %v", err)
	}
	path := s.Flatten(8)
	if path.Closed {
		t.Fatalf("open spline flattened to a closed path")
	}
	if len(path.Points) != 9 {
		t.Fatalf("got %d points, want 9", len(path.Points))
	}
	if path.Points[0] != (Vec2{0, 0}) || path.Points[8] != (Vec2{3, 0}) {
		t.Fatalf("endpoints not preserved: %v .. %v", path.Points[0], path.Points[8])
	}
}

func TestCubicMidpoint(t *testing.T) {
	// Symmetric control points put the curve midpoint on the axis of
	// symmetry.
	got := cubic(Vec2{0, 0}, Vec2{0, 1}, Vec2{2, 1}, Vec2{2, 0}, 0.5)
	if math.Abs(got.X-1) > 1e-12 || math.Abs(got.Y-0.75) > 1e-12 {
		t.Fatalf("midpoint = %v, want (1, 0.75)", got)
	}
}
