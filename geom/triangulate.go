package geom

// Triangulate decomposes a simple (non self-intersecting) closed path into
// triangles by ear clipping. The input may wind in either direction; the
// output triangles always wind counterclockwise.
func Triangulate(p Path) Polygon {
	n := len(p.Points)
	if n < 3 {
		return Polygon{}
	}

	verts := append([]Vec2(nil), p.Points...)
	if signedArea(verts) < 0 {
		for i, j := 0, len(verts)-1; i < j; i, j = i+1, j-1 {
			verts[i], verts[j] = verts[j], verts[i]
		}
	}

	// Index ring over the vertex pool; clipping removes ring entries only.
	ring := make([]int, n)
	for i := range ring {
		ring[i] = i
	}

	idx := make([]int, 0, 3*(n-2))
	guard := 0
	for len(ring) > 3 && guard < n*n {
		clipped := false
		for i := 0; i < len(ring); i++ {
			prev := ring[(i-1+len(ring))%len(ring)]
			curr := ring[i]
			next := ring[(i+1)%len(ring)]
			if isEar(verts, ring, prev, curr, next) {
				idx = append(idx, prev, curr, next)
				ring = append(ring[:i], ring[i+1:]...)
				clipped = true
				break
			}
		}
		if !clipped {
			// Degenerate input (collinear runs or self-intersection);
			// emit what we have rather than spin.
			break
		}
		guard++
	}
	if len(ring) == 3 {
		idx = append(idx, ring[0], ring[1], ring[2])
	}
	return Polygon{Vertices: verts, Indices: idx}
}

func signedArea(verts []Vec2) float64 {
	var area float64
	for i := range verts {
		j := (i + 1) % len(verts)
		area += verts[i].Cross(verts[j])
	}
	return area / 2
}

func isEar(verts []Vec2, ring []int, prev, curr, next int) bool {
	a, b, c := verts[prev], verts[curr], verts[next]
	if b.Sub(a).Cross(c.Sub(a)) <= 0 {
		return false // reflex or collinear corner
	}
	for _, k := range ring {
		if k == prev || k == curr || k == next {
			continue
		}
		if pointInTriangle(verts[k], a, b, c) {
			return false
		}
	}
	return true
}

func pointInTriangle(p, a, b, c Vec2) bool {
	d1 := b.Sub(a).Cross(p.Sub(a))
	d2 := c.Sub(b).Cross(p.Sub(b))
	d3 := a.Sub(c).Cross(p.Sub(c))
	return d1 >= 0 && d2 >= 0 && d3 >= 0
}
