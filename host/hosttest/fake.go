// Package hosttest provides an in-memory host that records every command
// it receives.
package hosttest

import (
	"errors"
	"time"

	"github.com/milk9111/vrcam/host"
	"gonum.org/v1/gonum/spatial/r3"
)

var ErrUnknownModel = errors.New("hosttest: unknown model")

type Entity struct {
	Pos     r3.Vec
	Rot     r3.Vec
	Vel     r3.Vec
	Flags   host.PhysicsFlags
	Vehicle bool
	Parent  host.Handle

	FlagWrites int
}

type Subtitle struct {
	Text     string
	Duration time.Duration
}

// Fake implements host.Tracking and host.Overlay.
type Fake struct {
	CamPos, CamRot r3.Vec
	NoCamera       bool

	ObserverPos, ObserverFwd r3.Vec
	Observer                 host.Handle

	Entities map[host.Handle]*Entity

	// Models maps a model name to the number of ModelLoaded polls it takes
	// to become ready. Absent names are rejected by RequestModel.
	Models    map[string]int
	requested map[string]int
	Released  []string

	Aspect    float64
	Recording bool

	Rects     []host.Rect
	Texts     []host.Text
	Subtitles []Subtitle

	VelocityCommands []r3.Vec
	PositionWrites   []r3.Vec

	next host.Handle
}

func New() *Fake {
	return &Fake{
		Entities:  map[host.Handle]*Entity{},
		Models:    map[string]int{"rat": 0},
		requested: map[string]int{},
		Aspect:    1.25,
	}
}

// AddVehicle registers a vehicle with a velocity and returns its handle.
func (f *Fake) AddVehicle(vel r3.Vec) host.Handle {
	f.next++
	f.Entities[f.next] = &Entity{Vel: vel, Vehicle: true}
	return f.next
}

// AddProp registers a non-vehicle entity.
func (f *Fake) AddProp() host.Handle {
	f.next++
	f.Entities[f.next] = &Entity{}
	return f.next
}

func (f *Fake) Attach(child, parent host.Handle) {
	if e, ok := f.Entities[child]; ok {
		e.Parent = parent
	}
}

func (f *Fake) Destroy(h host.Handle) {
	delete(f.Entities, h)
}

// ResetFrame clears draw output collected since the last call.
func (f *Fake) ResetFrame() {
	f.Rects = nil
	f.Texts = nil
}

func (f *Fake) CameraPose() (r3.Vec, r3.Vec, bool) {
	return f.CamPos, f.CamRot, !f.NoCamera
}

func (f *Fake) ObserverPose() (r3.Vec, r3.Vec) {
	return f.ObserverPos, f.ObserverFwd
}

func (f *Fake) ObserverVehicle() (host.Handle, bool) {
	return f.Observer, f.Observer.Valid()
}

func (f *Fake) EntityExists(h host.Handle) bool {
	_, ok := f.Entities[h]
	return ok
}

func (f *Fake) VehicleVelocity(h host.Handle) r3.Vec {
	if e, ok := f.Entities[h]; ok {
		return e.Vel
	}
	return r3.Vec{}
}

func (f *Fake) AttachedParent(h host.Handle) (host.Handle, bool) {
	e, ok := f.Entities[h]
	if !ok || !e.Parent.Valid() {
		return 0, false
	}
	return e.Parent, true
}

func (f *Fake) IsVehicle(h host.Handle) bool {
	e, ok := f.Entities[h]
	return ok && e.Vehicle
}

func (f *Fake) SpawnTrackedEntity(model string, pos r3.Vec) (host.Handle, error) {
	if _, ok := f.Models[model]; !ok {
		return 0, ErrUnknownModel
	}
	f.next++
	f.Entities[f.next] = &Entity{Pos: pos}
	return f.next, nil
}

func (f *Fake) SetEntityPhysicsFlags(h host.Handle, flags host.PhysicsFlags) {
	if e, ok := f.Entities[h]; ok {
		e.Flags = flags
		e.FlagWrites++
	}
}

func (f *Fake) SetEntityVelocity(h host.Handle, v r3.Vec) {
	if e, ok := f.Entities[h]; ok {
		e.Vel = v
		f.VelocityCommands = append(f.VelocityCommands, v)
	}
}

func (f *Fake) SetEntityPosition(h host.Handle, p r3.Vec) {
	if e, ok := f.Entities[h]; ok {
		e.Pos = p
		f.PositionWrites = append(f.PositionWrites, p)
	}
}

func (f *Fake) SetEntityRotation(h host.Handle, rot r3.Vec) {
	if e, ok := f.Entities[h]; ok {
		e.Rot = rot
	}
}

func (f *Fake) EntityPosition(h host.Handle) r3.Vec {
	if e, ok := f.Entities[h]; ok {
		return e.Pos
	}
	return r3.Vec{}
}

func (f *Fake) EntityRotation(h host.Handle) r3.Vec {
	if e, ok := f.Entities[h]; ok {
		return e.Rot
	}
	return r3.Vec{}
}

func (f *Fake) RequestModel(name string) error {
	if _, ok := f.Models[name]; !ok {
		return ErrUnknownModel
	}
	if _, ok := f.requested[name]; !ok {
		f.requested[name] = 0
	}
	return nil
}

func (f *Fake) ModelLoaded(name string) bool {
	polls, ok := f.requested[name]
	if !ok {
		return false
	}
	need := f.Models[name]
	if need < 0 {
		return false
	}
	f.requested[name] = polls + 1
	return polls >= need
}

func (f *Fake) ReleaseModel(name string) {
	delete(f.requested, name)
	f.Released = append(f.Released, name)
}

func (f *Fake) DrawScreenRect(r host.Rect) {
	f.Rects = append(f.Rects, r)
}

func (f *Fake) DrawScreenText(t host.Text) {
	f.Texts = append(f.Texts, t)
}

func (f *Fake) DisplayAspectRatio() float64 {
	return f.Aspect
}

func (f *Fake) IsRecordingActive() bool {
	return f.Recording
}

func (f *Fake) ShowSubtitle(text string, d time.Duration) {
	f.Subtitles = append(f.Subtitles, Subtitle{Text: text, Duration: d})
}

var (
	_ host.Tracking = (*Fake)(nil)
	_ host.Overlay  = (*Fake)(nil)
)
