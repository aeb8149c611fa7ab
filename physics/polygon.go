package physics

import (
	"fmt"

	"github.com/ByteArena/box2d"

	"github.com/tmarche/starlab/geom"
)

// PolygonObstacle is a (not necessarily convex) solid built from a
// triangulated polygon, one fixture per triangle on each body.
type PolygonObstacle struct {
	baseObstacle

	poly     geom.Polygon
	realFixs []*box2d.B2Fixture
	refFixs  []*box2d.B2Fixture
}

// NewPolygonObstacle builds an obstacle from an already triangulated
// polygon. The body origin sits at the polygon's local origin.
func NewPolygonObstacle(pos box2d.B2Vec2, poly geom.Polygon) *PolygonObstacle {
	return &PolygonObstacle{
		baseObstacle: makeBaseObstacle(pos),
		poly:         poly,
	}
}

// SetPolygon swaps the collision polygon and rebuilds any live fixtures.
func (p *PolygonObstacle) SetPolygon(poly geom.Polygon) {
	p.poly = poly
	if len(p.realFixs) > 0 {
		p.CreateFixtures()
	}
	p.geometryChanged()
}

// Polygon returns the collision polygon.
func (p *PolygonObstacle) Polygon() geom.Polygon { return p.poly }

// SetDensity applies a uniform density to every triangle fixture and
// recomputes mass data unless the mass is manually overridden.
func (p *PolygonObstacle) SetDensity(value float64) error {
	if value < 0 {
		return fmt.Errorf("physics: density must be non-negative, got %v", value)
	}
	p.density = value
	for i := range p.realFixs {
		p.realFixs[i].SetDensity(value)
		p.refFixs[i].SetDensity(value)
	}
	if p.realBody != nil && !p.massOverride {
		p.realBody.ResetMassData()
		p.refBody.ResetMassData()
	}
	return nil
}

// CreateFixtures builds one triangle fixture per polygon triangle on both
// bodies. Existing fixtures are released first. Triangles too thin for the
// engine's polygon radius are skipped rather than asserted on.
func (p *PolygonObstacle) CreateFixtures() {
	if p.realBody == nil || p.refBody == nil {
		return
	}
	p.ReleaseFixtures()

	for i := 0; i < p.poly.Triangles(); i++ {
		a, b, c := p.poly.Triangle(i)
		if degenerateTriangle(a, b, c) {
			continue
		}
		shape := box2d.NewB2PolygonShape()
		shape.Set([]box2d.B2Vec2{
			box2d.MakeB2Vec2(a.X, a.Y),
			box2d.MakeB2Vec2(b.X, b.Y),
			box2d.MakeB2Vec2(c.X, c.Y),
		}, 3)

		def := box2d.MakeB2FixtureDef()
		def.Shape = shape
		def.Density = p.density
		def.Friction = p.friction
		def.Restitution = p.restitution
		p.realFixs = append(p.realFixs, p.realBody.CreateFixtureFromDef(&def))
		p.refFixs = append(p.refFixs, p.refBody.CreateFixtureFromDef(&def))
	}

	if !p.massOverride {
		p.realBody.ResetMassData()
		p.refBody.ResetMassData()
	}
}

// ReleaseFixtures destroys every triangle fixture on both bodies.
func (p *PolygonObstacle) ReleaseFixtures() {
	if p.realBody != nil && p.refBody != nil {
		for i := range p.realFixs {
			p.realBody.DestroyFixture(p.realFixs[i])
			p.refBody.DestroyFixture(p.refFixs[i])
		}
	}
	p.realFixs = nil
	p.refFixs = nil
}

// minTriangleArea guards against fixtures Box2D cannot build a valid hull
// for.
const minTriangleArea = 1e-6

func degenerateTriangle(a, b, c geom.Vec2) bool {
	area := b.Sub(a).Cross(c.Sub(a)) / 2
	if area < 0 {
		area = -area
	}
	return area < minTriangleArea
}
