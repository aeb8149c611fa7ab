package physics

import (
	"testing"

	"github.com/ByteArena/box2d"

	"github.com/tmarche/starlab/geom"
)

func testTriangle() geom.Polygon {
	return geom.Polygon{
		Vertices: []geom.Vec2{{X: -1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}},
		Indices:  []int{0, 1, 2},
	}
}

func TestWorldAddStepClear(t *testing.T) {
	w := newTestWorld()

	ground := NewPolygonObstacle(box2d.MakeB2Vec2(0, -5), testTriangle())
	ground.SetName("ground")
	if err := w.AddObstacle(ground); err != nil {
		t.Fatalf("AddObstacle: %v", err)
	}

	capsule := NewCapsuleObstacle(box2d.MakeB2Vec2(0, 2), 1, 2, Full)
	capsule.SetBodyType(box2d.B2BodyType.B2_dynamicBody)
	if err := w.AddObstacle(capsule); err != nil {
		t.Fatalf("AddObstacle: %v", err)
	}
	if len(w.Obstacles()) != 2 {
		t.Fatalf("got %d obstacles, want 2", len(w.Obstacles()))
	}

	start := capsule.Position().Y
	for i := 0; i < 30; i++ {
		w.Step(1.0 / 60)
	}
	if w.Ticks() != 30 {
		t.Fatalf("ticks = %d, want 30", w.Ticks())
	}
	if capsule.Position().Y >= start {
		t.Fatalf("capsule did not fall: start %v, now %v", start, capsule.Position().Y)
	}

	w.ResetTime()
	if w.Ticks() != 0 {
		t.Fatalf("ticks after ResetTime = %d, want 0", w.Ticks())
	}

	w.Clear()
	if len(w.Obstacles()) != 0 {
		t.Fatalf("obstacles after Clear = %d, want 0", len(w.Obstacles()))
	}
	if capsule.RealBody() != nil {
		t.Fatalf("cleared obstacle still has a body")
	}

	// A cleared obstacle can join a fresh world.
	w2 := newTestWorld()
	if err := w2.AddObstacle(capsule); err != nil {
		t.Fatalf("re-add after Clear: %v", err)
	}
}

func TestReferenceBodyTracksSimulation(t *testing.T) {
	w := newTestWorld()
	capsule := NewCapsuleObstacle(box2d.MakeB2Vec2(0, 5), 1, 2, Full)
	capsule.SetBodyType(box2d.B2BodyType.B2_dynamicBody)
	if err := w.AddObstacle(capsule); err != nil {
		t.Fatalf("AddObstacle: %v", err)
	}

	for i := 0; i < 10; i++ {
		w.Step(1.0 / 60)
	}
	real := capsule.RealBody()
	ref := capsule.ReferenceBody()
	if real.GetPosition() != ref.GetPosition() || real.GetAngle() != ref.GetAngle() {
		t.Fatalf("reference transform drifted: real (%v, %v), ref (%v, %v)",
			real.GetPosition(), real.GetAngle(), ref.GetPosition(), ref.GetAngle())
	}
}

func TestIdenticalTimestepsStayInLockstep(t *testing.T) {
	build := func() (*World, *CapsuleObstacle) {
		w := newTestWorld()
		ground := NewPolygonObstacle(box2d.MakeB2Vec2(0, -3), testTriangle())
		if err := w.AddObstacle(ground); err != nil {
			t.Fatalf("AddObstacle: %v", err)
		}
		c := NewCapsuleObstacle(box2d.MakeB2Vec2(0.2, 3), 1, 2, Full)
		c.SetBodyType(box2d.B2BodyType.B2_dynamicBody)
		if err := w.AddObstacle(c); err != nil {
			t.Fatalf("AddObstacle: %v", err)
		}
		return w, c
	}

	w1, c1 := build()
	w2, c2 := build()
	for i := 0; i < 240; i++ {
		w1.Step(1.0 / 60)
		w2.Step(1.0 / 60)
		if w1.Ticks() != w2.Ticks() {
			t.Fatalf("tick counters diverged: %d vs %d", w1.Ticks(), w2.Ticks())
		}
		if c1.Position() != c2.Position() || c1.Angle() != c2.Angle() {
			t.Fatalf("tick %d: positions diverged: (%v, %v) vs (%v, %v)",
				w1.Ticks(), c1.Position(), c1.Angle(), c2.Position(), c2.Angle())
		}
	}
}

func TestRemoveObstacle(t *testing.T) {
	w := newTestWorld()
	capsule := NewCapsuleObstacle(box2d.MakeB2Vec2(0, 0), 1, 2, Full)
	if err := w.AddObstacle(capsule); err != nil {
		t.Fatalf("AddObstacle: %v", err)
	}
	w.RemoveObstacle(capsule)
	if len(w.Obstacles()) != 0 {
		t.Fatalf("obstacle not removed")
	}
	if capsule.RealBody() != nil {
		t.Fatalf("removed obstacle still has a body")
	}
	// Removing again is harmless.
	w.RemoveObstacle(capsule)
}

func TestPolygonObstacleDensity(t *testing.T) {
	w := newTestWorld()
	poly := NewPolygonObstacle(box2d.MakeB2Vec2(0, 0), testTriangle())
	poly.SetBodyType(box2d.B2BodyType.B2_dynamicBody)
	if err := w.AddObstacle(poly); err != nil {
		t.Fatalf("AddObstacle: %v", err)
	}
	if err := poly.SetDensity(3); err != nil {
		t.Fatalf("SetDensity: %v", err)
	}
	for f := poly.RealBody().GetFixtureList(); f != nil; f = f.GetNext() {
		if f.GetDensity() != 3 {
			t.Fatalf("fixture density = %v, want 3", f.GetDensity())
		}
	}
	if err := poly.SetDensity(-2); err == nil {
		t.Fatalf("SetDensity(-2) should fail")
	}
	if poly.RealBody().GetMass() <= 0 {
		t.Fatalf("dynamic polygon mass should be positive")
	}
}
