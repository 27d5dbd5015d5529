package sim

import (
	"fmt"
	"log"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/vrcam/common"
	"github.com/milk9111/vrcam/host"
	"gonum.org/v1/gonum/spatial/r3"
)

func (w *World) CameraPose() (r3.Vec, r3.Vec, bool) {
	if w == nil || w.camera == nil || !w.camera.ready {
		return r3.Vec{}, r3.Vec{}, false
	}
	return w.camera.Pos, w.camera.Rot, true
}

func (w *World) ObserverPose() (r3.Vec, r3.Vec) {
	feet, heading := w.observerFeet()
	return feet, common.ForwardVector(r3.Vec{Z: heading})
}

func (w *World) ObserverVehicle() (host.Handle, bool) {
	e, ok := w.Entity(w.observer.anchor)
	if !ok || e.Kind != KindVehicle {
		return 0, false
	}
	return e.Handle, true
}

func (w *World) EntityExists(h host.Handle) bool {
	_, ok := w.Entity(h)
	return ok
}

func (w *World) VehicleVelocity(h host.Handle) r3.Vec {
	e, ok := w.Entity(h)
	if !ok {
		return r3.Vec{}
	}
	return e.Velocity()
}

func (w *World) AttachedParent(h host.Handle) (host.Handle, bool) {
	e, ok := w.Entity(h)
	if !ok || !e.Parent.Valid() {
		return 0, false
	}
	return e.Parent, true
}

func (w *World) IsVehicle(h host.Handle) bool {
	e, ok := w.Entity(h)
	return ok && e.Kind == KindVehicle
}

func (w *World) SpawnTrackedEntity(name string, pos r3.Vec) (host.Handle, error) {
	m, ok := w.models[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	if !m.requested || !w.loaded(m) {
		return 0, fmt.Errorf("%w: %s", ErrModelNotLoaded, name)
	}
	e := w.newEntity(KindTracked, name, pos)
	e.Model = name
	e.Radius = trackedRadius
	w.physics.addTracked(e)
	log.Printf("sim: spawned %s %s at (%.2f, %.2f, %.2f)", name, e.Handle, pos.X, pos.Y, pos.Z)
	return e.Handle, nil
}

func (w *World) SetEntityPhysicsFlags(h host.Handle, flags host.PhysicsFlags) {
	if e, ok := w.Entity(h); ok {
		w.physics.applyFlags(e, flags)
	}
}

func (w *World) SetEntityVelocity(h host.Handle, v r3.Vec) {
	e, ok := w.Entity(h)
	if !ok || e.body == nil {
		return
	}
	e.body.SetVelocity(v.X, v.Y)
	e.VZ = v.Z
}

func (w *World) SetEntityPosition(h host.Handle, p r3.Vec) {
	e, ok := w.Entity(h)
	if !ok {
		return
	}
	if e.body != nil {
		e.body.SetPosition(cp.Vector{X: p.X, Y: p.Y})
	}
	e.Z = p.Z
}

func (w *World) SetEntityRotation(h host.Handle, rot r3.Vec) {
	e, ok := w.Entity(h)
	if !ok {
		return
	}
	e.Rot = rot
	if e.Kind == KindVehicle && e.body != nil {
		e.body.SetAngle(common.DegToRad(rot.Z))
	}
}

func (w *World) EntityPosition(h host.Handle) r3.Vec {
	e, ok := w.Entity(h)
	if !ok {
		return r3.Vec{}
	}
	return e.Position()
}

func (w *World) EntityRotation(h host.Handle) r3.Vec {
	e, ok := w.Entity(h)
	if !ok {
		return r3.Vec{}
	}
	return e.Rot
}

func (w *World) RequestModel(name string) error {
	m, ok := w.models[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	if !m.requested {
		m.requested = true
		m.waited = 0
	}
	return nil
}

func (w *World) ModelLoaded(name string) bool {
	m, ok := w.models[name]
	return ok && m.requested && w.loaded(m)
}

func (w *World) loaded(m *model) bool {
	return m.latency >= 0 && m.waited >= m.latency
}

func (w *World) ReleaseModel(name string) {
	if m, ok := w.models[name]; ok {
		m.requested = false
		m.waited = 0
	}
}

func (w *World) DrawScreenRect(r host.Rect) {
	w.draw.Rects = append(w.draw.Rects, r)
}

func (w *World) DrawScreenText(t host.Text) {
	w.draw.Texts = append(w.draw.Texts, t)
}

func (w *World) DisplayAspectRatio() float64 {
	return w.aspect
}

func (w *World) IsRecordingActive() bool {
	return w.recording
}

func (w *World) ShowSubtitle(text string, d time.Duration) {
	w.subtitle = subtitle{text: text, remaining: d}
	log.Printf("sim: subtitle %q", text)
}

var (
	_ host.Tracking = (*World)(nil)
	_ host.Overlay  = (*World)(nil)
)
