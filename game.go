package main

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"path/filepath"
	"time"

	"github.com/ByteArena/box2d"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/tmarche/starlab/geom"
	"github.com/tmarche/starlab/levels"
	"github.com/tmarche/starlab/physics"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

// Frame timesteps are clamped so a stall or a debugger pause cannot feed
// the simulation a huge dt.
const (
	minTimestep = 1.0 / 240
	maxTimestep = 1.0 / 20
)

// Game is the falling-star scene: a closed spline terrain the user can
// reshape by dragging tangent knobs, with a star and a capsule dropped
// into two independently stepped worlds to watch for timestep-dependent
// divergence.
type Game struct {
	spec      *levels.Spec
	levelPath string
	watcher   *levels.Watcher
	input     *Input
	debug     bool

	spline     *geom.Spline
	splinePath geom.Path
	splinePoly geom.Polygon
	starPoly   geom.Polygon
	handles    []geom.Polygon
	knobs      []geom.Vec2

	// sel is the tangent knob being dragged, -1 when none.
	sel int

	world *physics.World
	echo  *physics.World

	star        *physics.PolygonObstacle
	echoStar    *physics.PolygonObstacle
	capsule     *physics.CapsuleObstacle
	echoCapsule *physics.CapsuleObstacle

	capsuleOutline geom.Path
	capsulePoly    geom.Polygon
	outlineStale   bool

	prevTimestep float64
	lastStep     time.Time
	divergedAt   int

	clipboardOK bool
	whiteImg    *ebiten.Image
	frames      int
}

func NewGame(levelPath string, debug bool) (*Game, error) {
	spec, err := loadSpec(levelPath)
	if err != nil {
		return nil, err
	}

	g := &Game{
		levelPath:    levelPath,
		input:        NewInput(),
		debug:        debug,
		sel:          -1,
		prevTimestep: 0.009,
		divergedAt:   -1,
		lastStep:     time.Now(),
	}

	g.whiteImg = ebiten.NewImage(3, 3)
	g.whiteImg.Fill(color.White)

	if err := g.loadLevel(spec); err != nil {
		return nil, err
	}

	if levelPath != "" {
		watcher, err := levels.NewWatcher(filepath.Dir(levelPath))
		if err != nil {
			log.Printf("level watcher disabled: %v", err)
		} else {
			g.watcher = watcher
		}
	}

	if err := clipboard.Init(); err != nil {
		log.Printf("clipboard disabled: %v", err)
	} else {
		g.clipboardOK = true
	}

	return g, nil
}

func loadSpec(levelPath string) (*levels.Spec, error) {
	if levelPath == "" {
		return levels.Default()
	}
	return levels.Load(levelPath)
}

// loadLevel replaces the spline and both worlds from a level spec.
func (g *Game) loadLevel(spec *levels.Spec) error {
	spline, err := geom.NewSpline(pointsToVecs(spec.Spline))
	if err != nil {
		return err
	}
	spline.SetClosed(true)

	g.spec = spec
	g.spline = spline
	g.buildGeometry()

	// Gravity may have changed, so both worlds start over.
	g.world = nil
	g.echo = nil
	g.resetWorlds()
	return nil
}

func pointsToVecs(pts []levels.Point) []geom.Vec2 {
	out := make([]geom.Vec2, len(pts))
	for i, p := range pts {
		out[i] = geom.Vec2{X: p.X, Y: p.Y}
	}
	return out
}

// buildGeometry rebuilds the drawable polygons from the current spline.
// It runs every frame while a knob is being dragged, so it must not touch
// the physics worlds.
func (g *Game) buildGeometry() {
	g.splinePath = g.spline.Flatten(g.spec.SplineSamples)
	g.splinePoly = geom.Extrude(g.splinePath, g.spec.LineWidth)

	g.handles = g.handles[:0]
	g.knobs = g.knobs[:0]
	for i := 0; i < g.spline.Anchors(); i++ {
		left := g.spline.Tangent(2 * i)
		right := g.spline.Tangent(g.enteringTangent(i))
		bar := geom.Path{Points: []geom.Vec2{left, right}}
		g.handles = append(g.handles, geom.Extrude(bar, g.spec.HandleWidth))
		g.knobs = append(g.knobs, left, right)
	}

	star := geom.Path{Points: pointsToVecs(g.spec.Star), Closed: true}
	g.starPoly = geom.Triangulate(star)
}

// enteringTangent maps anchor i to the index of the tangent arriving at
// it, wrapping for the closed spline.
func (g *Game) enteringTangent(anchor int) int {
	if anchor == 0 {
		return g.spline.Tangents() - 1
	}
	return 2*anchor - 1
}

// resetWorlds rebuilds both simulations from the current geometry and
// rewinds their clocks.
func (g *Game) resetWorlds() {
	gravity := box2d.MakeB2Vec2(0, -g.spec.Gravity)
	if g.world == nil {
		g.world = physics.NewWorld(gravity)
		g.echo = physics.NewWorld(gravity)
	}
	g.world.Clear()
	g.echo.Clear()

	g.star, g.capsule = g.populate(g.world)
	g.echoStar, g.echoCapsule = g.populate(g.echo)
	g.capsule.SetGeometryListener(func() { g.outlineStale = true })
	g.outlineStale = true

	g.world.ResetTime()
	g.echo.ResetTime()
	g.divergedAt = -1
}

// populate fills one world with the terrain, the star and the capsule.
// Scene geometry is in pixels around the scene center; the physics worlds
// run in meters with the origin at that center.
func (g *Game) populate(w *physics.World) (*physics.PolygonObstacle, *physics.CapsuleObstacle) {
	invScale := 1.0 / g.spec.PhysicsScale

	terrain := physics.NewPolygonObstacle(box2d.MakeB2Vec2(0, 0), g.splinePoly.Scale(invScale))
	terrain.SetName("terrain")
	if err := w.AddObstacle(terrain); err != nil {
		log.Printf("add terrain: %v", err)
	}

	star := physics.NewPolygonObstacle(box2d.MakeB2Vec2(0, 0), g.starPoly.Scale(invScale))
	star.SetName("star")
	star.SetBodyType(box2d.B2BodyType.B2_dynamicBody)
	if err := star.SetDensity(g.spec.StarDensity); err != nil {
		log.Printf("star density: %v", err)
	}
	if err := w.AddObstacle(star); err != nil {
		log.Printf("add star: %v", err)
	}

	cs := g.spec.Capsule
	orient, _ := cs.ParseOrientation()
	pos := box2d.MakeB2Vec2(cs.Offset.X*invScale, cs.Offset.Y*invScale)
	capsule := physics.NewCapsuleObstacle(pos, cs.Width*invScale, cs.Height*invScale, physics.Orientation(orient))
	capsule.SetName("capsule")
	capsule.SetBodyType(box2d.B2BodyType.B2_dynamicBody)
	if err := capsule.SetDensity(cs.Density); err != nil {
		log.Printf("capsule density: %v", err)
	}
	if cs.SeamOffset > 0 {
		if err := capsule.SetSeamOffset(cs.SeamOffset); err != nil {
			log.Printf("capsule seam offset: %v", err)
		}
	}
	if err := w.AddObstacle(capsule); err != nil {
		log.Printf("add capsule: %v", err)
	}

	return star, capsule
}

func (g *Game) Update() error {
	g.frames++
	g.pollWatcher()
	g.input.Update()

	now := time.Now()
	dt := now.Sub(g.lastStep).Seconds()
	g.lastStep = now
	if dt < minTimestep {
		dt = minTimestep
	}
	if dt > maxTimestep {
		dt = maxTimestep
	}

	pos := g.screenToScene(g.input.Position())
	if g.sel >= 0 {
		prev := g.screenToScene(g.input.Previous())
		moved := g.spline.Tangent(g.sel).Add(pos.Sub(prev))
		g.spline.SetTangent(g.sel, moved, true)
	} else {
		g.world.Step(dt)
		g.echo.Step(g.prevTimestep)
		g.prevTimestep = dt
	}

	if g.input.DidPress() {
		for i := 0; i < g.spline.Tangents(); i++ {
			if g.spline.Tangent(i).Dist(pos) < g.spec.KnobRadius {
				g.sel = i
				break
			}
		}
	}

	g.buildGeometry()

	if g.input.DidRelease() && g.sel >= 0 {
		g.sel = -1
		g.resetWorlds()
	}

	g.checkDivergence()

	if g.outlineStale {
		g.capsuleOutline = g.capsule.Outline()
		scaled := geom.Path{Points: make([]geom.Vec2, len(g.capsuleOutline.Points)), Closed: true}
		for i, p := range g.capsuleOutline.Points {
			scaled.Points[i] = p.Scale(g.spec.PhysicsScale)
		}
		g.capsulePoly = geom.Triangulate(scaled)
		g.outlineStale = false
	}

	if g.clipboardOK && inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyControlPoints()
	}

	return nil
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name := <-g.watcher.Events:
			spec, err := levels.Load(g.levelPath)
			if err != nil {
				log.Printf("reload %s: %v", name, err)
				continue
			}
			if err := g.loadLevel(spec); err != nil {
				log.Printf("reload %s: %v", name, err)
				continue
			}
			log.Printf("reloaded level %s", name)
		case err := <-g.watcher.Errors:
			log.Printf("level watcher: %v", err)
		default:
			return
		}
	}
}

// checkDivergence compares the two worlds whenever their clocks line up
// and records the first tick at which the simulations disagree.
func (g *Game) checkDivergence() {
	if g.world.Ticks() != g.echo.Ticks() || g.divergedAt >= 0 {
		return
	}
	if bodiesDiffer(g.star.Position(), g.echoStar.Position(), g.star.Angle(), g.echoStar.Angle()) {
		g.divergedAt = g.world.Ticks()
		log.Printf("star diverged at tick %d: (%f, %f) vs (%f, %f)",
			g.divergedAt, g.star.Position().X, g.star.Position().Y,
			g.echoStar.Position().X, g.echoStar.Position().Y)
		return
	}
	if bodiesDiffer(g.capsule.Position(), g.echoCapsule.Position(), g.capsule.Angle(), g.echoCapsule.Angle()) {
		g.divergedAt = g.world.Ticks()
		log.Printf("capsule diverged at tick %d: (%f, %f) vs (%f, %f)",
			g.divergedAt, g.capsule.Position().X, g.capsule.Position().Y,
			g.echoCapsule.Position().X, g.echoCapsule.Position().Y)
	}
}

func bodiesDiffer(p1, p2 box2d.B2Vec2, a1, a2 float64) bool {
	return p1.X != p2.X || p1.Y != p2.Y || a1 != a2
}

// copyControlPoints puts the edited spline onto the clipboard in the same
// yaml shape the level file uses.
func (g *Game) copyControlPoints() {
	ctrl := g.spline.ControlPoints()
	pts := make([]levels.Point, len(ctrl))
	for i, p := range ctrl {
		pts[i] = levels.Point{X: p.X, Y: p.Y}
	}
	data, err := yaml.Marshal(map[string][]levels.Point{"spline": pts})
	if err != nil {
		log.Printf("copy spline: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	log.Printf("copied %d control points", len(pts))
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Darkslategray)

	g.strokePath(screen, g.splinePath, 2, colornames.Gray, 0, geom.Vec2{})
	g.fillPolygon(screen, g.splinePoly, colornames.Black, 0, geom.Vec2{})

	for _, h := range g.handles {
		g.fillPolygon(screen, h, colornames.White, 0, geom.Vec2{})
	}
	for _, k := range g.knobs {
		x, y := g.sceneToScreen(k)
		vector.FillCircle(screen, x, y, float32(g.spec.KnobRadius), colornames.Red, true)
	}

	scale := g.spec.PhysicsScale
	starPos := geom.Vec2{X: g.star.Position().X, Y: g.star.Position().Y}.Scale(scale)
	g.fillPolygon(screen, g.starPoly, colornames.Blue, g.star.Angle(), starPos)

	capPos := geom.Vec2{X: g.capsule.Position().X, Y: g.capsule.Position().Y}.Scale(scale)
	g.fillPolygon(screen, g.capsulePoly, colornames.Goldenrod, g.capsule.Angle(), capPos)

	if g.divergedAt >= 0 && g.world.Ticks() == g.echo.Ticks() {
		echoPos := geom.Vec2{X: g.echoStar.Position().X, Y: g.echoStar.Position().Y}.Scale(scale)
		g.fillPolygon(screen, g.starPoly, colornames.Green, g.echoStar.Angle(), echoPos)
		echoCap := geom.Vec2{X: g.echoCapsule.Position().X, Y: g.echoCapsule.Position().Y}.Scale(scale)
		g.fillPolygon(screen, g.capsulePoly, colornames.Limegreen, g.echoCapsule.Angle(), echoCap)
	}

	if g.debug {
		outline := geom.Path{Points: make([]geom.Vec2, len(g.capsuleOutline.Points)), Closed: true}
		for i, p := range g.capsuleOutline.Points {
			outline.Points[i] = p.Scale(scale)
		}
		g.strokePath(screen, outline, 1, colornames.White, g.capsule.Angle(), capPos)
	}

	status := fmt.Sprintf("FPS: %.1f  tick: %d", ebiten.ActualFPS(), g.world.Ticks())
	if g.sel >= 0 {
		status += fmt.Sprintf("  dragging knob %d", g.sel)
	}
	if g.divergedAt >= 0 {
		status += fmt.Sprintf("  diverged at tick %d", g.divergedAt)
	}
	ebitenutil.DebugPrint(screen, status)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}

// screenToScene converts y-down screen pixels to y-up scene coordinates
// centered on the screen.
func (g *Game) screenToScene(p geom.Vec2) geom.Vec2 {
	return geom.Vec2{X: p.X - baseWidth/2, Y: baseHeight/2 - p.Y}
}

func (g *Game) sceneToScreen(p geom.Vec2) (float32, float32) {
	return float32(p.X + baseWidth/2), float32(baseHeight/2 - p.Y)
}

// fillPolygon draws a triangulated polygon rotated by angle and offset in
// scene coordinates.
func (g *Game) fillPolygon(screen *ebiten.Image, poly geom.Polygon, clr color.RGBA, angle float64, offset geom.Vec2) {
	if len(poly.Indices) == 0 {
		return
	}
	r := float32(clr.R) / 255
	gc := float32(clr.G) / 255
	b := float32(clr.B) / 255
	a := float32(clr.A) / 255

	verts := make([]ebiten.Vertex, len(poly.Vertices))
	for i, v := range poly.Vertices {
		x, y := g.sceneToScreen(rotate(v, angle).Add(offset))
		verts[i] = ebiten.Vertex{
			DstX: x, DstY: y,
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: gc, ColorB: b, ColorA: a,
		}
	}
	idx := make([]uint16, len(poly.Indices))
	for i, v := range poly.Indices {
		idx[i] = uint16(v)
	}
	screen.DrawTriangles(verts, idx, g.whiteImg, nil)
}

func (g *Game) strokePath(screen *ebiten.Image, path geom.Path, width float32, clr color.RGBA, angle float64, offset geom.Vec2) {
	n := len(path.Points)
	if n < 2 {
		return
	}
	segs := n - 1
	if path.Closed {
		segs = n
	}
	for i := 0; i < segs; i++ {
		p0 := rotate(path.Points[i], angle).Add(offset)
		p1 := rotate(path.Points[(i+1)%n], angle).Add(offset)
		x0, y0 := g.sceneToScreen(p0)
		x1, y1 := g.sceneToScreen(p1)
		vector.StrokeLine(screen, x0, y0, x1, y1, width, clr, true)
	}
}

func rotate(v geom.Vec2, angle float64) geom.Vec2 {
	if angle == 0 {
		return v
	}
	sin, cos := math.Sincos(angle)
	return geom.Vec2{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}
