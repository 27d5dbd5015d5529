package sim

import (
	"errors"
	"testing"
	"time"

	"github.com/milk9111/vrcam/config"
	"github.com/milk9111/vrcam/host"
	"github.com/milk9111/vrcam/scenarios"
	"github.com/milk9111/vrcam/tracking"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const frame = time.Second / 60

func newTestWorld(t *testing.T, src string) *World {
	t.Helper()
	spec, err := scenarios.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	w, err := NewWorld(spec)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return w
}

func newTestController(w *World, model string) *tracking.Controller {
	cfg := config.Default()
	cfg.TrackedModel = model
	c := tracking.NewController(&cfg, w)
	c.SetClock(w.Now)
	return c
}

func near(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}

const openGround = `
observer:
  position: [0, 0, 0]
models:
  - name: rat
    latency_frames: 0
`

func TestModelStreaming(t *testing.T) {
	w := newTestWorld(t, `
models:
  - name: rat
    latency_frames: 3
`)

	if err := w.RequestModel("ghost"); !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("unknown model: %v", err)
	}
	if w.ModelLoaded("rat") {
		t.Fatalf("model loaded before request")
	}
	if err := w.RequestModel("rat"); err != nil {
		t.Fatalf("RequestModel: %v", err)
	}
	for i := 0; i < 3; i++ {
		if w.ModelLoaded("rat") {
			t.Fatalf("model loaded after %d frames", i)
		}
		if _, err := w.SpawnTrackedEntity("rat", r3.Vec{}); !errors.Is(err, ErrModelNotLoaded) {
			t.Fatalf("spawn before load: %v", err)
		}
		w.Step(frame)
	}
	if !w.ModelLoaded("rat") {
		t.Fatalf("model not loaded after latency")
	}

	w.ReleaseModel("rat")
	if w.ModelLoaded("rat") {
		t.Fatalf("released model still loaded")
	}
}

func TestControllerFollowsCamera(t *testing.T) {
	w := newTestWorld(t, openGround)
	c := newTestController(w, "rat")

	if err := c.RequestSpawn(); err != nil {
		t.Fatalf("RequestSpawn: %v", err)
	}
	c.Update()
	h, ok := c.Entity()
	if !ok {
		t.Fatalf("controller state %s, want active", c.State())
	}
	if got := w.EntityPosition(h); !near(got, r3.Vec{Y: 2}, 1e-9) {
		t.Fatalf("spawned at %+v, want two units ahead", got)
	}

	for i := 0; i < 600; i++ {
		w.Step(frame)
		c.Update()
	}

	camPos, camRot, _ := w.CameraPose()
	target := r3.Add(camPos, r3.Vec{Y: 1})
	if got := w.EntityPosition(h); !near(got, target, 1e-3) {
		t.Fatalf("entity at %+v, want near %+v", got, target)
	}
	if got := w.EntityRotation(h); !near(got, camRot, 1e-6) {
		t.Fatalf("entity rotation %+v, want %+v", got, camRot)
	}
	e, _ := w.Entity(h)
	if e.Flags != host.Tracked {
		t.Fatalf("flags %+v", e.Flags)
	}
}

func TestHostFlagResetIsUndone(t *testing.T) {
	w := newTestWorld(t, openGround)
	c := newTestController(w, "rat")
	_ = c.RequestSpawn()
	c.Update()
	h, _ := c.Entity()

	w.ResetPhysicsFlags(h)
	e, _ := w.Entity(h)
	if e.Flags != (host.PhysicsFlags{}) {
		t.Fatalf("reset left flags %+v", e.Flags)
	}

	// With gravity back on the climb slows during the step.
	vz := e.VZ
	w.Step(frame)
	if e.VZ >= vz {
		t.Fatalf("gravity did not act: vz %v -> %v", vz, e.VZ)
	}

	c.Update()
	if e.Flags != host.Tracked {
		t.Fatalf("controller did not restore flags: %+v", e.Flags)
	}
}

func TestUnsmoothedEntityStaysWhereAssigned(t *testing.T) {
	w := newTestWorld(t, openGround)
	cfg := config.Default()
	cfg.TrackedModel = "rat"
	c := tracking.NewController(&cfg, w)
	c.SetClock(w.Now)

	_ = c.RequestSpawn()
	c.Update()
	h, ok := c.Entity()
	if !ok {
		t.Fatalf("controller state %s, want active", c.State())
	}
	w.MoveObserver(r3.Vec{X: 10})
	w.Step(frame)
	c.Update()
	if c.Velocity() == (r3.Vec{}) {
		t.Fatalf("smoothed frame sent no velocity")
	}

	cfg.DisableSmoothing = true
	for i := 0; i < 3; i++ {
		c.Update()
		w.Step(frame)
		if got, want := w.EntityPosition(h), c.Pose().Position; !near(got, want, 1e-9) {
			t.Fatalf("frame %d: entity at %+v, pose %+v", i, got, want)
		}
	}
}

func TestDestroyedTrackedEntityIsLost(t *testing.T) {
	w := newTestWorld(t, openGround)
	c := newTestController(w, "rat")
	_ = c.RequestSpawn()
	c.Update()
	h, _ := c.Entity()

	if !w.Destroy(h) {
		t.Fatalf("Destroy failed")
	}
	if w.EntityExists(h) {
		t.Fatalf("destroyed entity still exists")
	}
	c.Update()
	if c.State() != tracking.StateLost {
		t.Fatalf("state %s, want lost", c.State())
	}

	_ = c.RequestSpawn()
	c.Update()
	h2, ok := c.Entity()
	if !ok || h2 == h {
		t.Fatalf("respawn gave %s (ok=%t), old %s", h2, ok, h)
	}
	if handleID(h2) != handleID(h) {
		t.Fatalf("expected slot reuse")
	}
}

const towing = `
observer:
  position: [0, -26, 1.6]
  vehicle: trailer
vehicles:
  - name: truck
    position: [0, -20, 0]
    velocity: [0, 8, 0]
  - name: trailer
    position: [0, -28, 0]
    attach_to: truck
`

func TestTrailerFollowsTruck(t *testing.T) {
	w := newTestWorld(t, towing)
	truck, _ := w.Find("truck")
	trailer, _ := w.Find("trailer")

	for i := 0; i < 60; i++ {
		w.Step(frame)
	}

	if !scalar.EqualWithinAbs(truck.Position().Y, -12, 1e-6) {
		t.Fatalf("truck y=%v, want -12", truck.Position().Y)
	}
	if got := trailer.Position().Y - truck.Position().Y; !scalar.EqualWithinAbs(got, -8, 1e-9) {
		t.Fatalf("trailer gap %v, want -8", got)
	}
	if got := w.VehicleVelocity(trailer.Handle); got != (r3.Vec{}) {
		t.Fatalf("attached trailer reports velocity %+v", got)
	}

	feet, fwd := w.ObserverPose()
	if !near(feet, r3.Add(trailer.Position(), r3.Vec{Y: 2}), 1e-9) {
		t.Fatalf("observer feet %+v", feet)
	}
	if !near(fwd, r3.Vec{Y: 1}, 1e-9) {
		t.Fatalf("observer forward %+v", fwd)
	}
}

func TestTrailerInertiaComesFromTruck(t *testing.T) {
	w := newTestWorld(t, towing)

	v, ok := w.ObserverVehicle()
	trailer, _ := w.Find("trailer")
	if !ok || v != trailer.Handle {
		t.Fatalf("observer vehicle %s ok=%t", v, ok)
	}
	got := tracking.NewInertiaSource(w).Resolve(v, ok)
	if !near(got, r3.Vec{Y: 8}, 1e-9) {
		t.Fatalf("inertia %+v, want truck velocity", got)
	}
}

func TestAttachmentTurnsWithParent(t *testing.T) {
	w := newTestWorld(t, towing)
	truck, _ := w.Find("truck")
	trailer, _ := w.Find("trailer")
	_ = w.SetVehicleVelocity(truck.Handle, r3.Vec{})

	if err := w.SetHeading(truck.Handle, 90); err != nil {
		t.Fatalf("SetHeading: %v", err)
	}
	w.Step(frame)

	// Facing -X the trailer sits 8 units behind, on +X.
	want := r3.Add(truck.Position(), r3.Vec{X: 8})
	if !near(trailer.Position(), want, 1e-9) {
		t.Fatalf("trailer at %+v, want %+v", trailer.Position(), want)
	}
	if !scalar.EqualWithinAbs(trailer.Rot.Z, 90, 1e-9) {
		t.Fatalf("trailer heading %v", trailer.Rot.Z)
	}
}

func TestAttachRejectsCycle(t *testing.T) {
	w := newTestWorld(t, towing)
	truck, _ := w.Find("truck")
	trailer, _ := w.Find("trailer")
	if err := w.Attach(truck.Handle, trailer.Handle); err == nil {
		t.Fatalf("expected a cycle error")
	}
}

func TestMountAndDismount(t *testing.T) {
	w := newTestWorld(t, `
observer:
  position: [5, 5, 2.2]
props:
  - name: crate
    position: [5, 4, 0]
vehicles:
  - name: van
    position: [20, 0, 0]
`)

	if err := w.Mount("crate"); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if _, ok := w.ObserverVehicle(); ok {
		t.Fatalf("a prop is not a vehicle")
	}
	feet, _ := w.ObserverPose()
	if !near(feet, r3.Vec{X: 5, Y: 5, Z: 0}, 1e-9) {
		t.Fatalf("feet on crate %+v", feet)
	}

	w.Dismount()
	feet, _ = w.ObserverPose()
	if !near(feet, r3.Vec{X: 5, Y: 5, Z: 2.2}, 1e-9) {
		t.Fatalf("feet after dismount %+v", feet)
	}

	w.MoveObserver(r3.Vec{X: 20, Y: 1, Z: 1.6})
	if err := w.Mount("van"); err != nil {
		t.Fatalf("Mount van: %v", err)
	}
	if v, ok := w.ObserverVehicle(); !ok || !w.IsVehicle(v) {
		t.Fatalf("observer not in the van")
	}
	van, _ := w.Find("van")
	w.Destroy(van.Handle)
	if _, ok := w.ObserverVehicle(); ok {
		t.Fatalf("observer still rides a destroyed van")
	}
}

func TestSubtitleExpires(t *testing.T) {
	w := newTestWorld(t, openGround)
	w.ShowSubtitle("hello", 100*time.Millisecond)

	if s, ok := w.Subtitle(); !ok || s != "hello" {
		t.Fatalf("subtitle %q ok=%t", s, ok)
	}
	for i := 0; i < 6; i++ {
		w.Step(frame)
	}
	if _, ok := w.Subtitle(); !ok {
		t.Fatalf("subtitle expired early")
	}
	w.Step(frame)
	if _, ok := w.Subtitle(); ok {
		t.Fatalf("subtitle still shown after its duration")
	}
}

func TestDrawListPerFrame(t *testing.T) {
	w := newTestWorld(t, openGround)
	w.DrawScreenRect(host.Rect{W: 1, H: 1})
	w.DrawScreenText(host.Text{Value: "x"})
	if d := w.DrawList(); len(d.Rects) != 1 || len(d.Texts) != 1 {
		t.Fatalf("draw list %+v", d)
	}
	w.BeginFrame()
	if d := w.DrawList(); len(d.Rects) != 0 || len(d.Texts) != 0 {
		t.Fatalf("draw list not cleared")
	}
}

func TestCameraEasesTowardEye(t *testing.T) {
	w := newTestWorld(t, `
observer:
  position: [0, 0, 0]
camera:
  smoothness: 0.5
  eye_height: 2
`)
	pos, _, ok := w.CameraPose()
	if !ok || pos != (r3.Vec{Z: 2}) {
		t.Fatalf("initial camera %+v ok=%t", pos, ok)
	}

	w.MoveObserver(r3.Vec{X: 4})
	w.Step(frame)
	pos, _, _ = w.CameraPose()
	if !near(pos, r3.Vec{X: 2, Z: 2}, 1e-12) {
		t.Fatalf("camera after one step %+v, want halfway", pos)
	}

	w.Look(10, 30)
	for i := 0; i < 60; i++ {
		w.Step(frame)
	}
	_, rot, _ := w.CameraPose()
	if !near(rot, r3.Vec{X: 10, Z: 30}, 1e-9) {
		t.Fatalf("camera rotation %+v", rot)
	}
}
