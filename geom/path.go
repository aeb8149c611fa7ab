package geom

import "math"

// Path is a chain of points, optionally closed. Paths are outlines only;
// use Extrude or Triangulate to turn one into a solid Polygon.
type Path struct {
	Points []Vec2
	Closed bool
}

// Polygon is a triangulated solid: a vertex pool plus triangle indices in
// groups of three.
type Polygon struct {
	Vertices []Vec2
	Indices  []int
}

// Scale returns a copy of the polygon with every vertex multiplied by s.
func (p Polygon) Scale(s float64) Polygon {
	out := Polygon{
		Vertices: make([]Vec2, len(p.Vertices)),
		Indices:  append([]int(nil), p.Indices...),
	}
	for i, v := range p.Vertices {
		out.Vertices[i] = v.Scale(s)
	}
	return out
}

// Triangles returns the triangle count.
func (p Polygon) Triangles() int {
	return len(p.Indices) / 3
}

// Triangle returns the three corners of triangle i.
func (p Polygon) Triangle(i int) (Vec2, Vec2, Vec2) {
	a := p.Vertices[p.Indices[3*i]]
	b := p.Vertices[p.Indices[3*i+1]]
	c := p.Vertices[p.Indices[3*i+2]]
	return a, b, c
}

// Area returns the total (unsigned) area of the triangulation.
func (p Polygon) Area() float64 {
	var area float64
	for i := 0; i < p.Triangles(); i++ {
		a, b, c := p.Triangle(i)
		area += math.Abs(b.Sub(a).Cross(c.Sub(a))) / 2
	}
	return area
}

// AppendArc appends a circular arc to pts, sweeping from the start angle by
// sweep radians in segs equal steps. The point at the start angle is
// included; the end point is not, so consecutive arcs can share corners.
func AppendArc(pts []Vec2, center Vec2, radius, start, sweep float64, segs int) []Vec2 {
	for i := 0; i < segs; i++ {
		a := start + sweep*float64(i)/float64(segs)
		pts = append(pts, Vec2{
			X: center.X + radius*math.Cos(a),
			Y: center.Y + radius*math.Sin(a),
		})
	}
	return pts
}

// CircleOutline returns a closed path approximating a circle.
func CircleOutline(center Vec2, radius float64, segs int) Path {
	return Path{
		Points: AppendArc(nil, center, radius, 0, 2*math.Pi, segs),
		Closed: true,
	}
}
