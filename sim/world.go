// Package sim is a small 3D world that stands in for the live simulation.
// It implements every host capability: entities with generational handles,
// chipmunk-driven ground motion, vehicle attachments, a follow camera, model
// streaming with latency and the screen draw buffer.
package sim

import (
	"errors"
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/vrcam/common"
	"github.com/milk9111/vrcam/host"
	"github.com/milk9111/vrcam/scenarios"
	"github.com/milk9111/vrcam/tracking"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrUnknownModel   = errors.New("sim: unknown model")
	ErrModelNotLoaded = errors.New("sim: model not loaded")
	ErrUnknownEntity  = errors.New("sim: unknown entity")
)

// epoch anchors the simulated clock.
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type Kind int

const (
	KindProp Kind = iota
	KindVehicle
	KindTracked
)

func (k Kind) String() string {
	switch k {
	case KindProp:
		return "prop"
	case KindVehicle:
		return "vehicle"
	case KindTracked:
		return "tracked"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Entity is one simulated object. Planar position lives in the chipmunk
// body; Z is integrated by the world.
type Entity struct {
	Handle host.Handle
	Kind   Kind
	Name   string
	Model  string
	Rot    r3.Vec
	Z, VZ  float64
	Flags  host.PhysicsFlags
	Size   [2]float64
	Radius float64
	Color  color.Color

	Parent     host.Handle
	offset     r3.Vec
	relHeading float64

	spawn r3.Vec
	body  *cp.Body
	shape *cp.Shape
}

// Position returns the world position.
func (e *Entity) Position() r3.Vec {
	if e.body == nil {
		return r3.Vec{X: e.spawn.X, Y: e.spawn.Y, Z: e.Z}
	}
	p := e.body.Position()
	return r3.Vec{X: p.X, Y: p.Y, Z: e.Z}
}

// Velocity returns the world velocity.
func (e *Entity) Velocity() r3.Vec {
	if e.body == nil {
		return r3.Vec{Z: e.VZ}
	}
	v := e.body.Velocity()
	return r3.Vec{X: v.X, Y: v.Y, Z: e.VZ}
}

type model struct {
	latency   int
	requested bool
	waited    int
}

type observer struct {
	feet    r3.Vec
	heading float64
	pitch   float64
	yaw     float64

	anchor host.Handle
	seat   r3.Vec
	drop   float64
}

type subtitle struct {
	text      string
	remaining time.Duration
}

// World implements host.Tracking and host.Overlay.
type World struct {
	handles handleStore
	slots   []*Entity
	physics *physicsWorld

	observer observer
	camera   *Camera
	models   map[string]*model

	aspect    float64
	recording bool

	frame    int
	elapsed  time.Duration
	subtitle subtitle
	draw     DrawList
}

// DrawList is the screen output of one frame.
type DrawList struct {
	Rects []host.Rect
	Texts []host.Text
}

// NewWorld builds a world from a scenario.
func NewWorld(spec *scenarios.Spec) (*World, error) {
	if spec == nil {
		return nil, fmt.Errorf("sim: nil scenario")
	}

	w := &World{
		physics:   newPhysicsWorld(),
		camera:    NewCamera(spec.Camera.EyeHeight, spec.Camera.Smoothness),
		models:    make(map[string]*model, len(spec.Models)),
		aspect:    spec.Display.Aspect,
		recording: spec.Display.Recording,
	}
	for _, m := range spec.Models {
		w.models[m.Name] = &model{latency: m.LatencyFrames}
	}

	for _, vs := range spec.Vehicles {
		w.AddVehicle(vs.Name, vs.Position.R3(), vs.Heading, vs.Size, vs.Velocity.R3(), vehicleColor(vs))
	}
	for _, vs := range spec.Vehicles {
		if vs.AttachTo == "" {
			continue
		}
		if err := w.AttachByName(vs.Name, vs.AttachTo); err != nil {
			return nil, err
		}
	}
	for _, ps := range spec.Props {
		w.AddProp(ps.Name, ps.Position.R3(), ps.Radius)
	}

	w.observer.feet = spec.Observer.Position.R3()
	w.observer.heading = spec.Observer.Heading
	w.observer.pitch = spec.Observer.Pitch
	if spec.Observer.Vehicle != "" {
		if err := w.Mount(spec.Observer.Vehicle); err != nil {
			return nil, err
		}
	}
	w.updateCamera()
	return w, nil
}

func vehicleColor(vs scenarios.VehicleSpec) color.Color {
	if vs.Color != nil && vs.Color.Color != nil {
		return vs.Color.Color
	}
	return color.RGBA{R: 90, G: 140, B: 200, A: 255}
}

func (w *World) newEntity(kind Kind, name string, pos r3.Vec) *Entity {
	h := w.handles.create()
	e := &Entity{Handle: h, Kind: kind, Name: name, Z: pos.Z, spawn: pos}
	id := int(handleID(h))
	for len(w.slots) < id {
		w.slots = append(w.slots, nil)
	}
	w.slots[id-1] = e
	return e
}

// AddVehicle creates a vehicle and returns its handle.
func (w *World) AddVehicle(name string, pos r3.Vec, heading float64, size [2]float64, vel r3.Vec, c color.Color) host.Handle {
	e := w.newEntity(KindVehicle, name, pos)
	e.Rot = r3.Vec{Z: common.NormalizeAngle(heading)}
	e.Size = size
	e.Color = c
	e.Flags = host.PhysicsFlags{NoGravity: true}
	w.physics.addVehicle(e)
	e.body.SetVelocity(vel.X, vel.Y)
	e.VZ = vel.Z
	return e.Handle
}

// AddProp creates a static prop and returns its handle.
func (w *World) AddProp(name string, pos r3.Vec, radius float64) host.Handle {
	e := w.newEntity(KindProp, name, pos)
	e.Radius = radius
	e.Flags = host.PhysicsFlags{NoGravity: true}
	w.physics.addProp(e, radius)
	return e.Handle
}

// Entity looks up a live entity.
func (w *World) Entity(h host.Handle) (*Entity, bool) {
	if w == nil || !w.handles.alive(h) {
		return nil, false
	}
	e := w.slots[handleID(h)-1]
	return e, e != nil
}

// Find returns the first live entity with the given name.
func (w *World) Find(name string) (*Entity, bool) {
	if w == nil {
		return nil, false
	}
	for _, e := range w.slots {
		if e != nil && e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Each visits live entities in slot order.
func (w *World) Each(fn func(e *Entity)) {
	if w == nil {
		return
	}
	for _, e := range w.slots {
		if e != nil {
			fn(e)
		}
	}
}

// Tracked returns the live tracked entity, if any.
func (w *World) Tracked() (*Entity, bool) {
	if w == nil {
		return nil, false
	}
	for _, e := range w.slots {
		if e != nil && e.Kind == KindTracked {
			return e, true
		}
	}
	return nil, false
}

// Destroy removes an entity. Children are detached in place and an observer
// riding it is dismounted.
func (w *World) Destroy(h host.Handle) bool {
	e, ok := w.Entity(h)
	if !ok {
		return false
	}
	for _, c := range w.slots {
		if c != nil && c.Parent == h {
			w.detach(c)
		}
	}
	if w.observer.anchor == h {
		w.Dismount()
	}
	w.physics.remove(e)
	w.slots[handleID(h)-1] = nil
	w.handles.destroy(h)
	log.Printf("sim: destroyed %s %s", e.Kind, h)
	return true
}

// Attach pins child to parent at their current relative placement.
func (w *World) Attach(child, parent host.Handle) error {
	c, ok := w.Entity(child)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, child)
	}
	p, ok := w.Entity(parent)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, parent)
	}
	for cur := p; cur != nil; {
		if cur.Handle == child {
			return fmt.Errorf("sim: attaching %s to %s would form a cycle", child, parent)
		}
		next, ok := w.Entity(cur.Parent)
		if !ok {
			break
		}
		cur = next
	}

	c.Parent = parent
	c.offset = tracking.AnchorOffset(c.Position(), p.Position(), p.Rot.Z, 0)
	c.relHeading = common.NormalizeAngle(c.Rot.Z - p.Rot.Z)
	if c.body != nil {
		c.body.SetVelocity(0, 0)
	}
	c.VZ = 0
	return nil
}

func (w *World) AttachByName(child, parent string) error {
	c, ok := w.Find(child)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntity, child)
	}
	p, ok := w.Find(parent)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntity, parent)
	}
	return w.Attach(c.Handle, p.Handle)
}

func (w *World) Detach(child host.Handle) bool {
	c, ok := w.Entity(child)
	if !ok || !c.Parent.Valid() {
		return false
	}
	w.detach(c)
	return true
}

func (w *World) detach(c *Entity) {
	c.Parent = 0
	c.offset = r3.Vec{}
	c.relHeading = 0
}

// Mount seats the observer on a named vehicle or prop, keeping the current
// relative placement lowered by the seat drop of that kind of anchor.
func (w *World) Mount(name string) error {
	e, ok := w.Find(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntity, name)
	}
	drop := tracking.ObjectAnchorDrop
	if e.Kind == KindVehicle {
		drop = tracking.VehicleAnchorDrop
	}
	w.observer.anchor = e.Handle
	w.observer.drop = drop
	w.observer.seat = tracking.AnchorOffset(w.observer.feet, e.Position(), e.Rot.Z, drop)
	w.observer.heading = common.NormalizeAngle(w.observer.heading - e.Rot.Z)
	log.Printf("sim: observer mounted %s %q", e.Kind, name)
	return nil
}

// Dismount leaves the observer standing where they are.
func (w *World) Dismount() {
	if !w.observer.anchor.Valid() {
		return
	}
	feet, heading := w.observerFeet()
	feet.Z += w.observer.drop
	w.observer.feet = feet
	w.observer.heading = heading
	w.observer.anchor = 0
	w.observer.seat = r3.Vec{}
	w.observer.drop = 0
}

// Look sets the head pitch and yaw relative to the observer's heading.
func (w *World) Look(pitch, yaw float64) {
	w.observer.pitch = common.Clamp(pitch, -89, 89)
	w.observer.yaw = common.NormalizeAngle(yaw)
}

// MoveObserver places an unmounted observer.
func (w *World) MoveObserver(pos r3.Vec) {
	if w.observer.anchor.Valid() {
		return
	}
	w.observer.feet = pos
}

func (w *World) SetVehicleVelocity(h host.Handle, v r3.Vec) error {
	e, ok := w.Entity(h)
	if !ok || e.Kind != KindVehicle {
		return fmt.Errorf("%w: vehicle %s", ErrUnknownEntity, h)
	}
	e.body.SetVelocity(v.X, v.Y)
	e.VZ = v.Z
	return nil
}

func (w *World) SetHeading(h host.Handle, deg float64) error {
	e, ok := w.Entity(h)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, h)
	}
	e.Rot.Z = common.NormalizeAngle(deg)
	if e.body != nil {
		e.body.SetAngle(common.DegToRad(e.Rot.Z))
	}
	return nil
}

// ResetPhysicsFlags clears the flags on an entity, as the live simulation
// does on its own from time to time.
func (w *World) ResetPhysicsFlags(h host.Handle) {
	if e, ok := w.Entity(h); ok {
		w.physics.applyFlags(e, host.PhysicsFlags{})
	}
}

func (w *World) SetRecording(on bool) {
	w.recording = on
}

func (w *World) SetAspect(a float64) {
	if a > 0 {
		w.aspect = a
	}
}

// Frame is the number of completed steps.
func (w *World) Frame() int {
	return w.frame
}

// Elapsed is the simulated time since the world was built.
func (w *World) Elapsed() time.Duration {
	return w.elapsed
}

// Now is the simulated wall clock.
func (w *World) Now() time.Time {
	return epoch.Add(w.elapsed)
}

// Subtitle returns the subtitle on screen, if any.
func (w *World) Subtitle() (string, bool) {
	if w.subtitle.remaining <= 0 {
		return "", false
	}
	return w.subtitle.text, true
}

// BeginFrame clears the draw list collected during the previous frame.
func (w *World) BeginFrame() {
	w.draw.Rects = w.draw.Rects[:0]
	w.draw.Texts = w.draw.Texts[:0]
}

// DrawList returns what was drawn since BeginFrame.
func (w *World) DrawList() DrawList {
	return w.draw
}

// Step advances the world by dt.
func (w *World) Step(dt time.Duration) {
	if w == nil || dt <= 0 {
		return
	}
	secs := dt.Seconds()

	w.physics.step(secs)
	for _, e := range w.slots {
		if e != nil && !e.Parent.Valid() {
			integrateZ(e, secs)
		}
	}
	w.resolveAttachments()
	w.updateCamera()

	for _, m := range w.models {
		if m.requested {
			m.waited++
		}
	}
	if w.subtitle.remaining > 0 {
		w.subtitle.remaining -= dt
	}
	w.frame++
	w.elapsed += dt
}

// resolveAttachments moves every attached entity onto its parent, parents
// first.
func (w *World) resolveAttachments() {
	done := make(map[host.Handle]bool)
	var place func(e *Entity)
	place = func(e *Entity) {
		if done[e.Handle] {
			return
		}
		done[e.Handle] = true
		p, ok := w.Entity(e.Parent)
		if !ok {
			if e.Parent.Valid() {
				w.detach(e)
			}
			return
		}
		place(p)
		pos := tracking.AnchoredPosition(p.Position(), p.Rot.Z, e.offset)
		e.Z = pos.Z
		e.Rot.Z = common.NormalizeAngle(p.Rot.Z + e.relHeading)
		if e.body != nil {
			e.body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
			e.body.SetAngle(common.DegToRad(e.Rot.Z))
		}
	}
	for _, e := range w.slots {
		if e != nil {
			place(e)
		}
	}
}

func (w *World) observerFeet() (r3.Vec, float64) {
	o := w.observer
	if e, ok := w.Entity(o.anchor); ok {
		return tracking.AnchoredPosition(e.Position(), e.Rot.Z, o.seat), common.NormalizeAngle(e.Rot.Z + o.heading)
	}
	return o.feet, o.heading
}

func (w *World) updateCamera() {
	feet, heading := w.observerFeet()
	w.camera.Follow(feet, r3.Vec{X: w.observer.pitch, Z: common.NormalizeAngle(heading + w.observer.yaw)})
}

// Camera exposes the observer camera.
func (w *World) Camera() *Camera {
	return w.camera
}
