package physics

import (
	"fmt"
	"math"

	"github.com/ByteArena/box2d"

	"github.com/tmarche/starlab/geom"
)

// Orientation selects which ends of a capsule's major axis are rounded.
type Orientation int

const (
	// Full rounds both ends of the major axis.
	Full Orientation = iota
	// Half rounds only the low end (left when horizontal, bottom when
	// vertical).
	Half
	// HalfReverse rounds only the high end.
	HalfReverse
	// Degenerate collapses the capsule to a single circle.
	Degenerate
)

func (o Orientation) String() string {
	switch o {
	case Full:
		return "full"
	case Half:
		return "half"
	case HalfReverse:
		return "half-reverse"
	case Degenerate:
		return "degenerate"
	}
	return fmt.Sprintf("orientation(%d)", int(o))
}

// defaultSeamEpsilon keeps the core rectangle strictly inside the cap
// circles so contacts cannot catch on the flat/round seam.
const defaultSeamEpsilon = 0.01

// outlineSegments is the arc tessellation used for debug outlines.
const outlineSegments = 12

// capsuleGeometry is the resolved shape of a capsule: the core rectangle
// bounds, the cap radius and the orientation actually in effect. A capsule
// whose width equals its height has no major axis and always resolves to
// Degenerate, whatever orientation was requested.
type capsuleGeometry struct {
	orient     Orientation
	horizontal bool
	lower      box2d.B2Vec2
	upper      box2d.B2Vec2
	radius     float64
}

// resolveCapsule derives the capsule geometry for a bounding extent. The
// core rectangle starts at the full extent, loses the cap radius from each
// rounded end of the major axis, and is inset by seam on the minor axis.
// Any axis left with a zero span is re-expanded by seam on each side so the
// rectangle is never degenerate. Zero and negative extents are absorbed,
// not rejected, so interactive resizing can pass through them.
func resolveCapsule(width, height float64, orient Orientation, seam float64) capsuleGeometry {
	g := capsuleGeometry{
		orient:     orient,
		horizontal: width > height,
		lower:      box2d.MakeB2Vec2(-width/2, -height/2),
		upper:      box2d.MakeB2Vec2(width/2, height/2),
	}
	if width == height {
		g.orient = Degenerate
	}

	if g.orient == Degenerate {
		g.radius = width / 2
		g.lower = box2d.MakeB2Vec2(0, 0)
		g.upper = box2d.MakeB2Vec2(0, 0)
	} else if g.horizontal {
		g.radius = height / 2
		switch g.orient {
		case Full:
			g.lower.X += g.radius
			g.upper.X -= g.radius
		case Half:
			g.lower.X += g.radius
		case HalfReverse:
			g.upper.X -= g.radius
		}
		g.lower.Y += seam
		g.upper.Y -= seam
	} else {
		g.radius = width / 2
		switch g.orient {
		case Full:
			g.lower.Y += g.radius
			g.upper.Y -= g.radius
		case Half:
			g.lower.Y += g.radius
		case HalfReverse:
			g.upper.Y -= g.radius
		}
		g.lower.X += seam
		g.upper.X -= seam
	}

	if g.lower.X == g.upper.X {
		g.lower.X -= seam
		g.upper.X += seam
	}
	if g.lower.Y == g.upper.Y {
		g.lower.Y -= seam
		g.upper.Y += seam
	}
	return g
}

// capsulePart is an immutable descriptor for one fixture of the composite:
// either the core box or a cap circle, with its share of the material
// density. Core at full density plus caps at half density approximates a
// uniform material over the capsule silhouette.
type capsulePart struct {
	circle       bool
	center       box2d.B2Vec2
	lower, upper box2d.B2Vec2
	densityScale float64
}

// parts lists the fixtures the geometry calls for, core first.
func (g capsuleGeometry) parts() []capsulePart {
	if g.orient == Degenerate {
		return []capsulePart{{circle: true, densityScale: 1}}
	}

	out := []capsulePart{{lower: g.lower, upper: g.upper, densityScale: 1}}
	low := box2d.MakeB2Vec2(g.lower.X, 0)
	high := box2d.MakeB2Vec2(g.upper.X, 0)
	if !g.horizontal {
		low = box2d.MakeB2Vec2(0, g.lower.Y)
		high = box2d.MakeB2Vec2(0, g.upper.Y)
	}
	switch g.orient {
	case Full:
		out = append(out,
			capsulePart{circle: true, center: low, densityScale: 0.5},
			capsulePart{circle: true, center: high, densityScale: 0.5})
	case Half:
		out = append(out, capsulePart{circle: true, center: low, densityScale: 0.5})
	case HalfReverse:
		out = append(out, capsulePart{circle: true, center: high, densityScale: 0.5})
	}
	return out
}

func (p capsulePart) shape(radius float64) box2d.B2ShapeInterface {
	if p.circle {
		s := box2d.NewB2CircleShape()
		s.M_radius = radius
		s.M_p = p.center
		return s
	}
	s := box2d.NewB2PolygonShape()
	corners := []box2d.B2Vec2{
		box2d.MakeB2Vec2(p.lower.X, p.lower.Y),
		box2d.MakeB2Vec2(p.upper.X, p.lower.Y),
		box2d.MakeB2Vec2(p.upper.X, p.upper.Y),
		box2d.MakeB2Vec2(p.lower.X, p.upper.Y),
	}
	s.Set(corners, 4)
	return s
}

// fixtureSet holds one body's share of the composite: the core box and up
// to two cap circles. A degenerate capsule stores its lone circle in cap1.
type fixtureSet struct {
	core *box2d.B2Fixture
	cap1 *box2d.B2Fixture
	cap2 *box2d.B2Fixture
}

func (fs *fixtureSet) slots() []**box2d.B2Fixture {
	return []**box2d.B2Fixture{&fs.core, &fs.cap1, &fs.cap2}
}

// CapsuleObstacle is a box with semicircular ends along its major axis.
// The rounded ends keep characters from snagging on edges and let them
// roll off platforms naturally.
type CapsuleObstacle struct {
	baseObstacle

	width, height float64
	orient        Orientation
	seamEpsilon   float64

	geometry capsuleGeometry
	realFix  fixtureSet
	refFix   fixtureSet
}

// NewCapsuleObstacle builds a capsule of the given extent. The obstacle is
// unattached until added to a World.
func NewCapsuleObstacle(pos box2d.B2Vec2, width, height float64, orient Orientation) *CapsuleObstacle {
	c := &CapsuleObstacle{
		baseObstacle: makeBaseObstacle(pos),
		orient:       orient,
		seamEpsilon:  defaultSeamEpsilon,
	}
	c.Resize(width, height)
	return c
}

// Width returns the bounding extent width.
func (c *CapsuleObstacle) Width() float64 { return c.width }

// Height returns the bounding extent height.
func (c *CapsuleObstacle) Height() float64 { return c.height }

// Orientation returns the requested orientation, which may differ from the
// one in effect when width equals height.
func (c *CapsuleObstacle) Orientation() Orientation { return c.orient }

// TrueOrientation returns the orientation actually in effect.
func (c *CapsuleObstacle) TrueOrientation() Orientation { return c.geometry.orient }

// Radius returns the resolved cap radius, half the minor axis extent.
func (c *CapsuleObstacle) Radius() float64 { return c.geometry.radius }

// CoreBounds returns the resolved core rectangle corners.
func (c *CapsuleObstacle) CoreBounds() (lower, upper box2d.B2Vec2) {
	return c.geometry.lower, c.geometry.upper
}

// SeamOffset returns the current seam epsilon.
func (c *CapsuleObstacle) SeamOffset() float64 { return c.seamEpsilon }

// Resize changes the bounding extent and rebuilds any live fixtures.
func (c *CapsuleObstacle) Resize(width, height float64) {
	c.width = width
	c.height = height
	c.refresh()
}

// SetOrientation changes which ends are rounded and rebuilds any live
// fixtures. No-op when the orientation is unchanged.
func (c *CapsuleObstacle) SetOrientation(value Orientation) {
	if value == c.orient {
		return
	}
	c.orient = value
	c.refresh()
}

// SetSeamOffset changes the seam epsilon. The offset must be positive; an
// invalid value is rejected without touching any state.
func (c *CapsuleObstacle) SetSeamOffset(value float64) error {
	if value <= 0 {
		return fmt.Errorf("physics: seam offset must be positive, got %v", value)
	}
	c.seamEpsilon = value
	c.refresh()
	return nil
}

func (c *CapsuleObstacle) refresh() {
	c.geometry = resolveCapsule(c.width, c.height, c.orient, c.seamEpsilon)
	if c.realFix != (fixtureSet{}) || c.refFix != (fixtureSet{}) {
		c.CreateFixtures()
	}
	c.geometryChanged()
}

// SetDensity updates the material density and pushes it onto whichever
// fixtures currently exist: the core box (or a lone degenerate circle)
// takes the full value, each cap takes half. Both bodies' mass data is
// recomputed unless the mass is manually overridden. Fixtures are neither
// created nor destroyed.
func (c *CapsuleObstacle) SetDensity(value float64) error {
	if value < 0 {
		return fmt.Errorf("physics: density must be non-negative, got %v", value)
	}
	c.density = value

	capDensity := value / 2
	if c.realFix.core == nil {
		// Single-circle capsule: the lone fixture is the whole body.
		capDensity = value
	}
	if c.realFix.core != nil {
		c.realFix.core.SetDensity(value)
		c.refFix.core.SetDensity(value)
	}
	if c.realFix.cap1 != nil {
		c.realFix.cap1.SetDensity(capDensity)
		c.refFix.cap1.SetDensity(capDensity)
	}
	if c.realFix.cap2 != nil {
		c.realFix.cap2.SetDensity(capDensity)
		c.refFix.cap2.SetDensity(capDensity)
	}
	if c.realBody != nil && !c.massOverride {
		c.realBody.ResetMassData()
		c.refBody.ResetMassData()
	}
	return nil
}

// CreateFixtures builds matching fixtures on the authoritative and
// reference bodies from the resolved geometry. Any existing fixtures are
// released first, so repeated calls never leak engine handles. A no-op
// while detached.
func (c *CapsuleObstacle) CreateFixtures() {
	if c.realBody == nil || c.refBody == nil {
		return
	}
	c.ReleaseFixtures()

	for _, part := range c.geometry.parts() {
		def := box2d.MakeB2FixtureDef()
		def.Shape = part.shape(c.geometry.radius)
		def.Density = c.density * part.densityScale
		def.Friction = c.friction
		def.Restitution = c.restitution

		real := c.realBody.CreateFixtureFromDef(&def)
		ref := c.refBody.CreateFixtureFromDef(&def)
		switch {
		case !part.circle:
			c.realFix.core, c.refFix.core = real, ref
		case c.realFix.cap1 == nil:
			c.realFix.cap1, c.refFix.cap1 = real, ref
		default:
			c.realFix.cap2, c.refFix.cap2 = real, ref
		}
	}

	if !c.massOverride {
		c.realBody.ResetMassData()
		c.refBody.ResetMassData()
	}
}

// ReleaseFixtures destroys whichever fixtures currently exist on both
// bodies and clears the handles. Safe to call repeatedly or while
// detached.
func (c *CapsuleObstacle) ReleaseFixtures() {
	if c.realBody == nil || c.refBody == nil {
		c.realFix = fixtureSet{}
		c.refFix = fixtureSet{}
		return
	}
	realSlots := c.realFix.slots()
	refSlots := c.refFix.slots()
	for i := range realSlots {
		if *realSlots[i] == nil {
			continue
		}
		c.realBody.DestroyFixture(*realSlots[i])
		c.refBody.DestroyFixture(*refSlots[i])
		*realSlots[i] = nil
		*refSlots[i] = nil
	}
}

// Outline returns a closed path tracing the capsule silhouette in local
// coordinates, with each semicircular arc tessellated into a fixed number
// of segments. Visualization only; the simulation never reads it.
func (c *CapsuleObstacle) Outline() geom.Path {
	g := c.geometry
	if g.orient == Degenerate {
		return geom.CircleOutline(geom.Vec2{}, g.radius, 2*outlineSegments)
	}

	lx, ly := g.lower.X, g.lower.Y
	ux, uy := g.upper.X, g.upper.Y
	r := g.radius
	var pts []geom.Vec2
	if g.horizontal {
		// Counterclockwise from the lower-left corner.
		pts = append(pts, geom.Vec2{X: lx, Y: ly})
		pts = append(pts, geom.Vec2{X: ux, Y: ly})
		if g.orient == Full || g.orient == HalfReverse {
			pts = geom.AppendArc(pts, geom.Vec2{X: ux}, r, -math.Pi/2, math.Pi, outlineSegments)
		}
		pts = append(pts, geom.Vec2{X: ux, Y: uy})
		pts = append(pts, geom.Vec2{X: lx, Y: uy})
		if g.orient == Full || g.orient == Half {
			pts = geom.AppendArc(pts, geom.Vec2{X: lx}, r, math.Pi/2, math.Pi, outlineSegments)
		}
	} else {
		pts = append(pts, geom.Vec2{X: ux, Y: ly})
		pts = append(pts, geom.Vec2{X: ux, Y: uy})
		if g.orient == Full || g.orient == HalfReverse {
			pts = geom.AppendArc(pts, geom.Vec2{Y: uy}, r, 0, math.Pi, outlineSegments)
		}
		pts = append(pts, geom.Vec2{X: lx, Y: uy})
		pts = append(pts, geom.Vec2{X: lx, Y: ly})
		if g.orient == Full || g.orient == Half {
			pts = geom.AppendArc(pts, geom.Vec2{Y: ly}, r, math.Pi, math.Pi, outlineSegments)
		}
	}
	return geom.Path{Points: pts, Closed: true}
}
