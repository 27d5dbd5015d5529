package scenarios

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestEmbeddedScenariosLoad(t *testing.T) {
	names, err := List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) < 3 {
		t.Fatalf("expected at least 3 scenarios, got %v", names)
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			spec, err := LoadSpec(name)
			if err != nil {
				t.Fatalf("LoadSpec: %v", err)
			}
			if spec.Name != name {
				t.Fatalf("name %q, want %q", spec.Name, name)
			}
			if spec.Script == "" {
				t.Fatalf("scenario has no script")
			}
			if _, err := LoadScript(spec.Script); err != nil {
				t.Fatalf("LoadScript(%q): %v", spec.Script, err)
			}
		})
	}
}

func TestParseDefaults(t *testing.T) {
	spec, err := Parse([]byte(`
vehicles:
  - name: van
props:
  - name: cone
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if spec.Display.Aspect != 1.25 {
		t.Fatalf("aspect default %v", spec.Display.Aspect)
	}
	if spec.Camera.EyeHeight != 1.7 || spec.Camera.Smoothness != 1 {
		t.Fatalf("camera defaults %+v", spec.Camera)
	}
	if spec.Vehicles[0].Size != [2]float64{2, 4.5} {
		t.Fatalf("vehicle size default %v", spec.Vehicles[0].Size)
	}
	if spec.Props[0].Radius != 0.5 {
		t.Fatalf("prop radius default %v", spec.Props[0].Radius)
	}
}

func TestParseVectorsAndColors(t *testing.T) {
	spec, err := Parse([]byte(`
observer:
  position: [1, 2]
vehicles:
  - name: a
    position: [1, 2, 3]
    color: "#10203040"
  - name: b
    color: Red
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := spec.Observer.Position.R3(); got != (r3.Vec{X: 1, Y: 2}) {
		t.Fatalf("short vector %+v", got)
	}
	if got := spec.Vehicles[0].Position.R3(); got != (r3.Vec{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("vector %+v", got)
	}
	if got := spec.Vehicles[0].Color.Color; got != (color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}) {
		t.Fatalf("hex color %v", got)
	}
	if got := spec.Vehicles[1].Color.Color; got != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("named color %v", got)
	}
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"unnamed_vehicle", "vehicles:\n  - position: [0, 0]\n"},
		{"duplicate_vehicle", "vehicles:\n  - name: a\n  - name: a\n"},
		{"unknown_parent", "vehicles:\n  - name: a\n    attach_to: b\n"},
		{"self_parent", "vehicles:\n  - name: a\n    attach_to: a\n"},
		{"cycle", "vehicles:\n  - name: a\n    attach_to: b\n  - name: b\n    attach_to: a\n"},
		{"unknown_observer_vehicle", "observer:\n  vehicle: bus\n"},
		{"duplicate_model", "models:\n  - name: m\n  - name: m\n"},
		{"negative_aspect", "display:\n  aspect: -1\n"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.src))
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}

	if _, err := Parse([]byte("observer:\n  position: [1, 2, 3, 4]\n")); err == nil {
		t.Fatalf("expected an error for a 4-component vector")
	}
	if _, err := Parse([]byte("vehicles:\n  - name: a\n    color: \"#12\"\n")); err == nil {
		t.Fatalf("expected an error for a short hex color")
	}
}

func TestCleanPaths(t *testing.T) {
	cases := []struct {
		in, spec, script string
	}{
		{"street", "street.yaml", "scripts/street.tengo"},
		{"scenarios/street.yaml", "street.yaml", "scripts/street.yaml"},
		{"scripts/street.tengo", "scripts/street.tengo", "scripts/street.tengo"},
	}
	for _, c := range cases {
		if got := cleanSpecPath(c.in); got != c.spec {
			t.Fatalf("cleanSpecPath(%q) = %q, want %q", c.in, got, c.spec)
		}
		if got := cleanScriptPath(c.in); got != c.script {
			t.Fatalf("cleanScriptPath(%q) = %q, want %q", c.in, got, c.script)
		}
	}
}

func TestChangesDropsRepeatedEvents(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := os.MkdirAll(filepath.Join(Dir, "scripts"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	spec := filepath.Join(Dir, "street.yaml")
	script := filepath.Join(Dir, "scripts", "street.tengo")
	for _, p := range []string{spec, script} {
		if err := os.WriteFile(p, []byte("name: street\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	var c Changes
	if !c.Fresh(spec) {
		t.Fatalf("first event was dropped")
	}
	if c.Fresh(spec) {
		t.Fatalf("repeated event for the same write was kept")
	}
	if !c.Fresh(script) {
		t.Fatalf("script event was dropped")
	}

	if _, ok := ModTime("street"); !ok {
		t.Fatalf("ModTime by scenario name found no override")
	}

	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(spec, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if !c.Fresh(spec) {
		t.Fatalf("new write was dropped")
	}

	if err := os.Remove(spec); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !c.Fresh(spec) {
		t.Fatalf("removal was dropped")
	}
	if _, ok := ModTime("street"); ok {
		t.Fatalf("ModTime found a removed override")
	}

	var nilChanges *Changes
	if !nilChanges.Fresh(spec) {
		t.Fatalf("nil Changes should pass every event")
	}
}
