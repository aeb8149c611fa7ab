// Package physics wraps the Box2D engine with obstacle types that own
// their fixture lifecycles. Every obstacle keeps two bodies in lockstep: an
// authoritative body in the simulation world and a reference body in a
// passive mirror world, with structurally identical fixture sets.
package physics

import (
	"fmt"

	"github.com/ByteArena/box2d"
)

// Obstacle is a physics object that manages its own bodies and fixtures.
type Obstacle interface {
	Name() string
	SetName(name string)
	Position() box2d.B2Vec2
	Angle() float64

	// CreateFixtures builds the obstacle's collision shapes on both
	// bodies. It is a no-op while detached and idempotent otherwise.
	CreateFixtures()
	// ReleaseFixtures destroys whatever fixtures currently exist on both
	// bodies. Safe to call repeatedly or while detached.
	ReleaseFixtures()

	attach(sim, ref *box2d.B2World) error
	detach()
	syncReference()
}

// baseObstacle carries the body pair and material shared by all obstacle
// types. It is embedded, never used on its own.
type baseObstacle struct {
	name     string
	bodyType uint8

	position box2d.B2Vec2
	angle    float64

	density      float64
	friction     float64
	restitution  float64
	massOverride bool

	simWorld *box2d.B2World
	refWorld *box2d.B2World
	realBody *box2d.B2Body
	refBody  *box2d.B2Body

	onGeometryChanged func()
}

func makeBaseObstacle(pos box2d.B2Vec2) baseObstacle {
	return baseObstacle{
		bodyType: box2d.B2BodyType.B2_staticBody,
		position: pos,
		density:  1.0,
		friction: 0.2,
	}
}

func (o *baseObstacle) Name() string        { return o.name }
func (o *baseObstacle) SetName(name string) { o.name = name }

// Position returns the authoritative body position, or the pending spawn
// position while detached.
func (o *baseObstacle) Position() box2d.B2Vec2 {
	if o.realBody != nil {
		return o.realBody.GetPosition()
	}
	return o.position
}

func (o *baseObstacle) Angle() float64 {
	if o.realBody != nil {
		return o.realBody.GetAngle()
	}
	return o.angle
}

func (o *baseObstacle) SetPosition(pos box2d.B2Vec2) {
	o.position = pos
	if o.realBody != nil {
		o.realBody.SetTransform(pos, o.angle)
		o.refBody.SetTransform(pos, o.angle)
	}
}

func (o *baseObstacle) SetBodyType(bodyType uint8) {
	o.bodyType = bodyType
	if o.realBody != nil {
		o.realBody.SetType(bodyType)
		o.refBody.SetType(bodyType)
	}
}

func (o *baseObstacle) BodyType() uint8 { return o.bodyType }

func (o *baseObstacle) Density() float64 { return o.density }

func (o *baseObstacle) Friction() float64 { return o.friction }

func (o *baseObstacle) SetFriction(value float64) { o.friction = value }

func (o *baseObstacle) Restitution() float64 { return o.restitution }

func (o *baseObstacle) SetRestitution(value float64) { o.restitution = value }

// SetMass overrides the computed mass on both bodies. Density updates stop
// recomputing mass data until ClearMassOverride.
func (o *baseObstacle) SetMass(value float64) {
	o.massOverride = true
	if o.realBody == nil {
		return
	}
	data := box2d.MakeMassData()
	data.Mass = value
	o.realBody.SetMassData(&data)
	o.refBody.SetMassData(&data)
}

// ClearMassOverride returns both bodies to fixture-derived mass.
func (o *baseObstacle) ClearMassOverride() {
	o.massOverride = false
	if o.realBody != nil {
		o.realBody.ResetMassData()
		o.refBody.ResetMassData()
	}
}

// SetGeometryListener registers a callback fired whenever the obstacle's
// resolved geometry changes, for visualization layers that want to rebuild
// an outline lazily. A nil listener clears it.
func (o *baseObstacle) SetGeometryListener(fn func()) {
	o.onGeometryChanged = fn
}

func (o *baseObstacle) geometryChanged() {
	if o.onGeometryChanged != nil {
		o.onGeometryChanged()
	}
}

// RealBody exposes the authoritative body, nil while detached.
func (o *baseObstacle) RealBody() *box2d.B2Body { return o.realBody }

// ReferenceBody exposes the mirror body, nil while detached.
func (o *baseObstacle) ReferenceBody() *box2d.B2Body { return o.refBody }

func (o *baseObstacle) attach(sim, ref *box2d.B2World) error {
	if o.realBody != nil {
		return fmt.Errorf("physics: obstacle %q already attached", o.name)
	}
	def := box2d.MakeB2BodyDef()
	def.Type = o.bodyType
	def.Position = o.position
	def.Angle = o.angle
	o.simWorld = sim
	o.refWorld = ref
	o.realBody = sim.CreateBody(&def)
	o.refBody = ref.CreateBody(&def)
	return nil
}

// detach destroys both bodies. Callers must release fixtures first.
func (o *baseObstacle) detach() {
	if o.realBody == nil {
		return
	}
	o.position = o.realBody.GetPosition()
	o.angle = o.realBody.GetAngle()
	o.simWorld.DestroyBody(o.realBody)
	o.refWorld.DestroyBody(o.refBody)
	o.realBody = nil
	o.refBody = nil
	o.simWorld = nil
	o.refWorld = nil
}

// syncReference copies the authoritative transform onto the mirror body
// after a simulation step.
func (o *baseObstacle) syncReference() {
	if o.realBody == nil {
		return
	}
	o.refBody.SetTransform(o.realBody.GetPosition(), o.realBody.GetAngle())
}
