// Package host declares the capabilities the tracking and viewfinder code
// needs from the running simulation. Implementations live in sim (the demo
// world) and hosttest (a recording fake).
package host

import (
	"image/color"
	"strconv"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// Handle identifies an entity owned by the host. The zero handle is never
// valid.
type Handle uint64

func (h Handle) Valid() bool {
	return h > 0
}

func (h Handle) String() string {
	return strconv.FormatUint(uint64(h), 10)
}

// PhysicsFlags is the degraded physics mode forced on the tracked entity.
type PhysicsFlags struct {
	NoCollision      bool
	NoGravity        bool
	ExternallyDriven bool
}

// Tracked is the flag set re-asserted on the tracked entity every frame.
var Tracked = PhysicsFlags{NoCollision: true, NoGravity: true, ExternallyDriven: true}

// Rect is a screen rectangle in normalized [0,1] coordinates, positioned by
// its center.
type Rect struct {
	X, Y  float64
	W, H  float64
	Color color.RGBA
}

// Area returns W*H.
func (r Rect) Area() float64 {
	return r.W * r.H
}

// Text is a line of centered screen text in normalized coordinates.
type Text struct {
	X, Y  float64
	Scale float64
	Color color.RGBA
	Value string
}

type Camera interface {
	// CameraPose returns the render camera position and rotation in degrees.
	// ok is false when no camera is rendering.
	CameraPose() (pos, rot r3.Vec, ok bool)
}

type Observer interface {
	ObserverPose() (pos, forward r3.Vec)
	ObserverVehicle() (Handle, bool)
}

type Vehicles interface {
	EntityExists(h Handle) bool
	VehicleVelocity(h Handle) r3.Vec
	AttachedParent(h Handle) (Handle, bool)
	IsVehicle(h Handle) bool
}

type Entities interface {
	SpawnTrackedEntity(model string, pos r3.Vec) (Handle, error)
	EntityExists(h Handle) bool
	SetEntityPhysicsFlags(h Handle, flags PhysicsFlags)
	SetEntityVelocity(h Handle, v r3.Vec)
	SetEntityPosition(h Handle, p r3.Vec)
	SetEntityRotation(h Handle, rot r3.Vec)
	EntityPosition(h Handle) r3.Vec
	EntityRotation(h Handle) r3.Vec
}

type Models interface {
	// RequestModel starts streaming a model. It fails when the model is
	// unknown to the host.
	RequestModel(name string) error
	ModelLoaded(name string) bool
	ReleaseModel(name string)
}

type Renderer interface {
	DrawScreenRect(r Rect)
	DrawScreenText(t Text)
}

type Display interface {
	DisplayAspectRatio() float64
	IsRecordingActive() bool
}

type Notifier interface {
	ShowSubtitle(text string, d time.Duration)
}

// Tracking is everything the attachment controller consumes.
type Tracking interface {
	Camera
	Observer
	Vehicles
	Entities
	Models
	Notifier
}

// Overlay is everything the viewfinder consumes.
type Overlay interface {
	Renderer
	Display
	Notifier
}
