package scenarios

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("scenarios: invalid scenario")

// Spec describes a demo world: who the observer is, what vehicles and props
// exist, how fast models stream and which script drives it all.
type Spec struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Script      string        `yaml:"script"`
	Display     DisplaySpec   `yaml:"display"`
	Observer    ObserverSpec  `yaml:"observer"`
	Camera      CameraSpec    `yaml:"camera"`
	Models      []ModelSpec   `yaml:"models"`
	Vehicles    []VehicleSpec `yaml:"vehicles"`
	Props       []PropSpec    `yaml:"props"`
}

type DisplaySpec struct {
	Aspect    float64 `yaml:"aspect"`
	Recording bool    `yaml:"recording"`
}

type ObserverSpec struct {
	Position Vec3    `yaml:"position"`
	Heading  float64 `yaml:"heading"`
	Pitch    float64 `yaml:"pitch"`
	Vehicle  string  `yaml:"vehicle"`
}

type CameraSpec struct {
	EyeHeight  float64 `yaml:"eye_height"`
	Smoothness float64 `yaml:"smoothness"`
}

type ModelSpec struct {
	Name string `yaml:"name"`
	// LatencyFrames is how many frames the model takes to stream in. A
	// negative value never finishes.
	LatencyFrames int `yaml:"latency_frames"`
}

type VehicleSpec struct {
	Name     string     `yaml:"name"`
	Position Vec3       `yaml:"position"`
	Heading  float64    `yaml:"heading"`
	Velocity Vec3       `yaml:"velocity"`
	Size     [2]float64 `yaml:"size"`
	AttachTo string     `yaml:"attach_to"`
	Color    *YAMLColor `yaml:"color"`
}

type PropSpec struct {
	Name     string  `yaml:"name"`
	Position Vec3    `yaml:"position"`
	Radius   float64 `yaml:"radius"`
}

// Vec3 reads a [x, y, z] sequence. Missing trailing components are zero.
type Vec3 r3.Vec

func (v *Vec3) UnmarshalYAML(value *yaml.Node) error {
	var parts []float64
	if err := value.Decode(&parts); err != nil {
		return fmt.Errorf("vector: %w", err)
	}
	if len(parts) > 3 {
		return fmt.Errorf("vector: want at most 3 components, got %d", len(parts))
	}
	var out [3]float64
	copy(out[:], parts)
	*v = Vec3{X: out[0], Y: out[1], Z: out[2]}
	return nil
}

func (v Vec3) R3() r3.Vec {
	return r3.Vec(v)
}

// YAMLColor reads "#rrggbb", "#rrggbbaa" or an SVG color name.
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	if named, ok := colornames.Map[strings.ToLower(value.Value)]; ok {
		c.Color = named
		return nil
	}

	s := strings.TrimPrefix(value.Value, "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}

// Parse decodes and validates a scenario, filling defaults.
func Parse(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	if err := spec.normalize(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// LoadSpec reads a scenario by name from disk or the embedded set.
func LoadSpec(name string) (*Spec, error) {
	data, err := Load(name)
	if err != nil {
		return nil, fmt.Errorf("scenarios: load %s: %w", name, err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenarios: parse %s: %w", name, err)
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(cleanSpecPath(name), ".yaml")
	}
	return spec, nil
}

// Vehicle returns the vehicle spec with the given name.
func (s *Spec) Vehicle(name string) (VehicleSpec, bool) {
	if s == nil {
		return VehicleSpec{}, false
	}
	for _, v := range s.Vehicles {
		if v.Name == name {
			return v, true
		}
	}
	return VehicleSpec{}, false
}

func (s *Spec) normalize() error {
	if s.Display.Aspect == 0 {
		s.Display.Aspect = 1.25
	}
	if s.Display.Aspect < 0 {
		return fmt.Errorf("%w: negative display aspect %v", ErrInvalid, s.Display.Aspect)
	}
	if s.Camera.EyeHeight == 0 {
		s.Camera.EyeHeight = 1.7
	}
	if s.Camera.Smoothness <= 0 || s.Camera.Smoothness > 1 {
		s.Camera.Smoothness = 1
	}

	seen := make(map[string]bool, len(s.Vehicles))
	for i := range s.Vehicles {
		v := &s.Vehicles[i]
		if v.Name == "" {
			return fmt.Errorf("%w: vehicle %d has no name", ErrInvalid, i)
		}
		if seen[v.Name] {
			return fmt.Errorf("%w: duplicate vehicle %q", ErrInvalid, v.Name)
		}
		seen[v.Name] = true
		if v.Size == [2]float64{} {
			v.Size = [2]float64{2, 4.5}
		}
	}
	for _, v := range s.Vehicles {
		if v.AttachTo == "" {
			continue
		}
		if v.AttachTo == v.Name || !seen[v.AttachTo] {
			return fmt.Errorf("%w: vehicle %q attaches to unknown vehicle %q", ErrInvalid, v.Name, v.AttachTo)
		}
		cur, steps := v.AttachTo, 0
		for cur != "" {
			if steps++; steps > len(s.Vehicles) {
				return fmt.Errorf("%w: attachment cycle through %q", ErrInvalid, v.Name)
			}
			parent, _ := s.Vehicle(cur)
			cur = parent.AttachTo
		}
	}
	if s.Observer.Vehicle != "" && !seen[s.Observer.Vehicle] {
		return fmt.Errorf("%w: observer rides unknown vehicle %q", ErrInvalid, s.Observer.Vehicle)
	}

	for i := range s.Props {
		if s.Props[i].Radius <= 0 {
			s.Props[i].Radius = 0.5
		}
	}
	models := make(map[string]bool, len(s.Models))
	for _, m := range s.Models {
		if m.Name == "" {
			return fmt.Errorf("%w: model with no name", ErrInvalid)
		}
		if models[m.Name] {
			return fmt.Errorf("%w: duplicate model %q", ErrInvalid, m.Name)
		}
		models[m.Name] = true
	}
	return nil
}
