package geom

import "fmt"

// Spline is a piecewise cubic Bezier curve. The control points are laid out
// as [a0 t0 t1 a1 t2 t3 a2 ...]: each segment contributes an anchor and two
// tangent points, and the final anchor closes the list (3n+1 points for n
// segments). A closed spline must end on a copy of its first anchor.
type Spline struct {
	points []Vec2
	closed bool
}

// NewSpline builds a spline from a control point list. The list length must
// be 3n+1 for at least one segment.
func NewSpline(points []Vec2) (*Spline, error) {
	if len(points) < 4 || len(points)%3 != 1 {
		return nil, fmt.Errorf("geom: spline needs 3n+1 control points, got %d", len(points))
	}
	return &Spline{points: append([]Vec2(nil), points...)}, nil
}

// SetClosed marks the spline as a loop. The caller is responsible for the
// last anchor matching the first.
func (s *Spline) SetClosed(closed bool) {
	s.closed = closed
}

func (s *Spline) Closed() bool {
	return s.closed
}

// Segments returns the number of cubic segments.
func (s *Spline) Segments() int {
	return (len(s.points) - 1) / 3
}

// Anchors returns the number of distinct anchors (the shared endpoint of a
// closed spline counts once).
func (s *Spline) Anchors() int {
	if s.closed {
		return s.Segments()
	}
	return s.Segments() + 1
}

// Anchor returns on-curve point i.
func (s *Spline) Anchor(i int) Vec2 {
	return s.points[3*i]
}

// Tangents returns the number of tangent points (two per segment).
func (s *Spline) Tangents() int {
	return 2 * s.Segments()
}

// Tangent returns off-curve control point i. Tangent 2k leaves anchor k;
// tangent 2k+1 enters anchor k+1.
func (s *Spline) Tangent(i int) Vec2 {
	return s.points[s.tangentIndex(i)]
}

func (s *Spline) tangentIndex(i int) int {
	seg := i / 2
	if i%2 == 0 {
		return 3*seg + 1
	}
	return 3*seg + 2
}

// SetTangent moves tangent point i to p. When symmetric is true, the
// sibling tangent on the other side of the shared anchor is mirrored so the
// curve stays smooth through that anchor.
func (s *Spline) SetTangent(i int, p Vec2, symmetric bool) {
	s.points[s.tangentIndex(i)] = p
	if !symmetric {
		return
	}

	// The sibling of a leaving tangent is the one entering the same anchor,
	// and vice versa. Open splines have no sibling at the endpoints.
	n := s.Segments()
	var anchor int
	var sibling int
	if i%2 == 0 {
		anchor = i / 2
		if anchor == 0 {
			if !s.closed {
				return
			}
			sibling = 3*n - 1
		} else {
			sibling = 3*anchor - 1
		}
	} else {
		anchor = i/2 + 1
		if anchor == n {
			if !s.closed {
				return
			}
			anchor = 0
			sibling = 1
		} else {
			sibling = 3*anchor + 1
		}
	}
	a := s.Anchor(anchor)
	s.points[sibling] = a.Add(a.Sub(p))
}

// ControlPoints returns a copy of the raw control point list.
func (s *Spline) ControlPoints() []Vec2 {
	return append([]Vec2(nil), s.points...)
}

// Flatten samples the spline into a path with segs points per cubic
// segment. Closed splines produce closed paths without a duplicated seam
// point.
func (s *Spline) Flatten(segs int) Path {
	if segs < 1 {
		segs = 1
	}
	n := s.Segments()
	pts := make([]Vec2, 0, n*segs+1)
	for seg := 0; seg < n; seg++ {
		p0 := s.points[3*seg]
		p1 := s.points[3*seg+1]
		p2 := s.points[3*seg+2]
		p3 := s.points[3*seg+3]
		for i := 0; i < segs; i++ {
			t := float64(i) / float64(segs)
			pts = append(pts, cubic(p0, p1, p2, p3, t))
		}
	}
	if !s.closed {
		pts = append(pts, s.points[len(s.points)-1])
	}
	return Path{Points: pts, Closed: s.closed}
}

func cubic(p0, p1, p2, p3 Vec2, t float64) Vec2 {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Vec2{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}
