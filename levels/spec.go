// Package levels loads the yaml scene descriptions: the spline terrain,
// the star polygon, the capsule and the tuning constants for the demo.
package levels

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Point is a 2D coordinate in scene pixels, relative to the scene center.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// CapsuleSpec describes the capsule obstacle dropped into the scene.
type CapsuleSpec struct {
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	Orientation string  `yaml:"orientation"`
	Density     float64 `yaml:"density"`
	SeamOffset  float64 `yaml:"seam_offset"`
	Offset      Point   `yaml:"offset"`
}

// Spec is a full level description.
type Spec struct {
	Name string `yaml:"name"`

	// PhysicsScale is the pixel size of one physics unit.
	PhysicsScale float64 `yaml:"physics_scale"`
	Gravity      float64 `yaml:"gravity"`

	LineWidth     float64 `yaml:"line_width"`
	HandleWidth   float64 `yaml:"handle_width"`
	KnobRadius    float64 `yaml:"knob_radius"`
	SplineSamples int     `yaml:"spline_samples"`

	StarDensity float64 `yaml:"star_density"`

	Spline  []Point     `yaml:"spline"`
	Star    []Point     `yaml:"star"`
	Capsule CapsuleSpec `yaml:"capsule"`
}

// Load reads and validates a level file from disk.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("levels: load %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals a level spec, fills in defaults and validates it.
func Parse(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("levels: unmarshal: %w", err)
	}
	spec.applyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s *Spec) applyDefaults() {
	if s.PhysicsScale == 0 {
		s.PhysicsScale = 50
	}
	if s.Gravity == 0 {
		s.Gravity = 9.8
	}
	if s.LineWidth == 0 {
		s.LineWidth = 50
	}
	if s.HandleWidth == 0 {
		s.HandleWidth = 3
	}
	if s.KnobRadius == 0 {
		s.KnobRadius = 15
	}
	if s.SplineSamples == 0 {
		s.SplineSamples = 24
	}
	if s.StarDensity == 0 {
		s.StarDensity = 1
	}
	if s.Capsule.Density == 0 {
		s.Capsule.Density = 1
	}
}

// Validate rejects specs the scene could not build a consistent world
// from.
func (s *Spec) Validate() error {
	if s.PhysicsScale <= 0 {
		return fmt.Errorf("levels: physics_scale must be positive, got %v", s.PhysicsScale)
	}
	if len(s.Spline) < 4 || len(s.Spline)%3 != 1 {
		return fmt.Errorf("levels: spline needs 3n+1 control points, got %d", len(s.Spline))
	}
	if s.Spline[0] != s.Spline[len(s.Spline)-1] {
		return fmt.Errorf("levels: spline must close on its first point")
	}
	if len(s.Star) < 3 {
		return fmt.Errorf("levels: star needs at least 3 points, got %d", len(s.Star))
	}
	if s.Capsule.Width <= 0 || s.Capsule.Height <= 0 {
		return fmt.Errorf("levels: capsule extent must be positive, got %vx%v",
			s.Capsule.Width, s.Capsule.Height)
	}
	if _, err := s.Capsule.ParseOrientation(); err != nil {
		return err
	}
	return nil
}

// orientationNames mirrors physics.Orientation; kept as strings here so
// the levels package stays independent of the physics layer.
var orientationNames = map[string]int{
	"":             0,
	"full":         0,
	"half":         1,
	"half-reverse": 2,
	"degenerate":   3,
}

// ParseOrientation maps the yaml orientation name onto the physics
// enumeration ordinal.
func (c CapsuleSpec) ParseOrientation() (int, error) {
	v, ok := orientationNames[c.Orientation]
	if !ok {
		return 0, fmt.Errorf("levels: unknown capsule orientation %q", c.Orientation)
	}
	return v, nil
}
