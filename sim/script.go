package sim

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/vrcam/scenarios"
	"gonum.org/v1/gonum/spatial/r3"
)

// Script drives a world from a tengo scenario script. The script must define
// update(engine, state); state is a map that persists between frames.
type Script struct {
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
	engine   *tengo.ImmutableMap
	world    *World

	lastErr string
}

const scenarioDispatchScript = `
update(__engine, __state)
`

// LoadScript compiles a scenario script by name.
func LoadScript(name string, w *World) (*Script, error) {
	src, err := scenarios.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("sim: load script %s: %w", name, err)
	}
	return CompileScript(name, src, w)
}

func CompileScript(name string, src []byte, w *World) (*Script, error) {
	if w == nil {
		return nil, fmt.Errorf("sim: script %s: nil world", name)
	}

	full := string(src) + "\n" + scenarioDispatchScript
	script := tengo.NewScript([]byte(full))
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("sim: compile script %s: %w", name, err)
	}

	s := &Script{
		name:     name,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
		world:    w,
	}
	s.engine = buildScenarioEngine(s)
	return s, nil
}

// Update runs the script's update function once. Errors are logged once per
// distinct message and returned.
func (s *Script) Update() error {
	if s == nil || s.compiled == nil {
		return nil
	}
	if err := s.compiled.Set("__engine", s.engine); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.state); err != nil {
		return err
	}
	if err := s.compiled.Run(); err != nil {
		if msg := err.Error(); msg != s.lastErr {
			s.lastErr = msg
			log.Printf("sim: script %s frame %d: %v", s.name, s.world.Frame(), err)
		}
		return err
	}
	s.lastErr = ""
	return nil
}

// State returns a script state value converted to Go, or nil.
func (s *Script) State(key string) any {
	if s == nil || s.state == nil {
		return nil
	}
	v, ok := s.state.Value[key]
	if !ok {
		return nil
	}
	return tengo.ToInterface(v)
}

func buildScenarioEngine(s *Script) *tengo.ImmutableMap {
	w := s.world
	values := map[string]tengo.Object{}

	fn := func(name string, f tengo.CallableFunc) {
		values[name] = &tengo.UserFunction{Name: name, Value: f}
	}

	fn("frame", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(w.Frame())}, nil
	})

	fn("time", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: w.Elapsed().Seconds()}, nil
	})

	fn("log", func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		log.Printf("script %s: %s", s.name, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	})

	fn("look", func(args ...tengo.Object) (tengo.Object, error) {
		vals, err := floats("look", args, 2)
		if err != nil {
			return nil, err
		}
		w.Look(vals[0], vals[1])
		return tengo.TrueValue, nil
	})

	fn("move", func(args ...tengo.Object) (tengo.Object, error) {
		vals, err := floats("move", args, 3)
		if err != nil {
			return nil, err
		}
		w.MoveObserver(r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]})
		return tengo.TrueValue, nil
	})

	fn("set_vehicle_velocity", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 {
			return nil, tengo.ErrWrongNumArguments
		}
		e, ok := w.Find(objectAsString(args[0]))
		if !ok {
			return tengo.FalseValue, nil
		}
		vals, err := floats("set_vehicle_velocity", args[1:], 2)
		if err != nil {
			return nil, err
		}
		v := r3.Vec{X: vals[0], Y: vals[1]}
		if len(vals) > 2 {
			v.Z = vals[2]
		}
		if err := w.SetVehicleVelocity(e.Handle, v); err != nil {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	})

	fn("set_heading", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		e, ok := w.Find(objectAsString(args[0]))
		if !ok {
			return tengo.FalseValue, nil
		}
		deg, ok := tengo.ToFloat64(args[1])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "heading", Expected: "float", Found: args[1].TypeName()}
		}
		_ = w.SetHeading(e.Handle, deg)
		return tengo.TrueValue, nil
	})

	fn("mount", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		if err := w.Mount(objectAsString(args[0])); err != nil {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	})

	fn("dismount", func(args ...tengo.Object) (tengo.Object, error) {
		w.Dismount()
		return tengo.TrueValue, nil
	})

	fn("attach", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		if err := w.AttachByName(objectAsString(args[0]), objectAsString(args[1])); err != nil {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	})

	fn("detach", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		e, ok := w.Find(objectAsString(args[0]))
		if !ok || !w.Detach(e.Handle) {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	})

	fn("destroy_tracked", func(args ...tengo.Object) (tengo.Object, error) {
		e, ok := w.Tracked()
		if !ok || !w.Destroy(e.Handle) {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	})

	fn("reset_flags", func(args ...tengo.Object) (tengo.Object, error) {
		e, ok := w.Tracked()
		if !ok {
			return tengo.FalseValue, nil
		}
		w.ResetPhysicsFlags(e.Handle)
		return tengo.TrueValue, nil
	})

	fn("tracked_position", func(args ...tengo.Object) (tengo.Object, error) {
		e, ok := w.Tracked()
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return vecObject(e.Position()), nil
	})

	fn("position", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		e, ok := w.Find(objectAsString(args[0]))
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return vecObject(e.Position()), nil
	})

	fn("set_recording", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		on, _ := tengo.ToBool(args[0])
		w.SetRecording(on)
		return tengo.TrueValue, nil
	})

	fn("set_aspect", func(args ...tengo.Object) (tengo.Object, error) {
		vals, err := floats("set_aspect", args, 1)
		if err != nil {
			return nil, err
		}
		w.SetAspect(vals[0])
		return tengo.TrueValue, nil
	})

	fn("subtitle", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		secs := 2.0
		if len(args) > 1 {
			if v, ok := tengo.ToFloat64(args[1]); ok {
				secs = v
			}
		}
		w.ShowSubtitle(objectAsString(args[0]), time.Duration(secs*float64(time.Second)))
		return tengo.TrueValue, nil
	})

	return &tengo.ImmutableMap{Value: values}
}

// floats converts at least min numeric arguments.
func floats(name string, args []tengo.Object, min int) ([]float64, error) {
	if len(args) < min {
		return nil, tengo.ErrWrongNumArguments
	}
	out := make([]float64, len(args))
	for i, a := range args {
		v, ok := tengo.ToFloat64(a)
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{
				Name:     fmt.Sprintf("%s[%d]", name, i),
				Expected: "number",
				Found:    a.TypeName(),
			}
		}
		out[i] = v
	}
	return out, nil
}

func vecObject(v r3.Vec) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{
		&tengo.Float{Value: v.X},
		&tengo.Float{Value: v.Y},
		&tengo.Float{Value: v.Z},
	}}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
