package physics

import "github.com/ByteArena/box2d"

const (
	velocityIterations = 8
	positionIterations = 3
)

// World steps a Box2D world and tracks the obstacles living in it. A
// second, never-stepped mirror world hosts each obstacle's reference body;
// after every step the reference transforms are synced from the
// authoritative ones.
type World struct {
	sim   box2d.B2World
	ref   box2d.B2World
	ticks int

	obstacles []Obstacle
}

// NewWorld creates an empty world with the given gravity vector.
func NewWorld(gravity box2d.B2Vec2) *World {
	return &World{
		sim: box2d.MakeB2World(gravity),
		ref: box2d.MakeB2World(gravity),
	}
}

// AddObstacle attaches the obstacle's body pair and creates its fixtures.
// Fails if the obstacle is already attached to a world.
func (w *World) AddObstacle(o Obstacle) error {
	if err := o.attach(&w.sim, &w.ref); err != nil {
		return err
	}
	o.CreateFixtures()
	w.obstacles = append(w.obstacles, o)
	return nil
}

// RemoveObstacle releases the obstacle's fixtures and bodies. Unknown
// obstacles are ignored.
func (w *World) RemoveObstacle(o Obstacle) {
	for i, existing := range w.obstacles {
		if existing == o {
			o.ReleaseFixtures()
			o.detach()
			w.obstacles = append(w.obstacles[:i], w.obstacles[i+1:]...)
			return
		}
	}
}

// Obstacles returns the attached obstacles in insertion order.
func (w *World) Obstacles() []Obstacle {
	return w.obstacles
}

// Step advances the simulation by dt seconds and mirrors the resulting
// transforms onto every reference body.
func (w *World) Step(dt float64) {
	w.sim.Step(dt, velocityIterations, positionIterations)
	w.ticks++
	for _, o := range w.obstacles {
		o.syncReference()
	}
}

// Ticks returns how many steps have run since creation or the last
// ResetTime.
func (w *World) Ticks() int { return w.ticks }

// ResetTime rewinds the tick counter without touching the simulation.
func (w *World) ResetTime() { w.ticks = 0 }

// Clear removes every obstacle, releasing fixtures before bodies so no
// engine handles dangle.
func (w *World) Clear() {
	for _, o := range w.obstacles {
		o.ReleaseFixtures()
		o.detach()
	}
	w.obstacles = nil
}
