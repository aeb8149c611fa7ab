package geom

// maxMiter caps how far a sharp corner's miter point may extend, in
// multiples of the half stroke width.
const maxMiter = 4.0

// Extrude thickens a path into a solid polygon of the given stroke width,
// centered on the path. Corners are mitered, with sharp corners clamped so
// a near-reversal cannot shoot the miter point off to infinity.
func Extrude(p Path, width float64) Polygon {
	n := len(p.Points)
	if n < 2 || width <= 0 {
		return Polygon{}
	}

	half := width / 2
	verts := make([]Vec2, 0, 2*n)
	for i := 0; i < n; i++ {
		off := miterOffset(p, i).Scale(half)
		pt := p.Points[i]
		verts = append(verts, pt.Add(off), pt.Sub(off))
	}

	segs := n - 1
	if p.Closed {
		segs = n
	}
	idx := make([]int, 0, 6*segs)
	for i := 0; i < segs; i++ {
		j := (i + 1) % n
		li, ri := 2*i, 2*i+1
		lj, rj := 2*j, 2*j+1
		idx = append(idx, li, ri, rj, li, rj, lj)
	}
	return Polygon{Vertices: verts, Indices: idx}
}

// miterOffset returns the unit-scaled offset direction at path point i: the
// averaged normal of the adjacent segments, lengthened to keep the stroke
// width constant through the corner.
func miterOffset(p Path, i int) Vec2 {
	n := len(p.Points)

	var din, dout Vec2
	if i > 0 || p.Closed {
		din = p.Points[i].Sub(p.Points[(i-1+n)%n]).Normalize()
	}
	if i < n-1 || p.Closed {
		dout = p.Points[(i+1)%n].Sub(p.Points[i]).Normalize()
	}
	if din == (Vec2{}) {
		din = dout
	}
	if dout == (Vec2{}) {
		dout = din
	}

	nin := din.Perp()
	nout := dout.Perp()
	miter := nin.Add(nout).Normalize()
	if miter == (Vec2{}) {
		// Segments reverse exactly; fall back to the incoming normal.
		return nin
	}
	scale := 1.0 / miter.Dot(nin)
	if scale > maxMiter {
		scale = maxMiter
	}
	return miter.Scale(scale)
}
