package sim

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/vrcam/common"
	"github.com/milk9111/vrcam/host"
)

const (
	// Gravity acts on Z only. The chipmunk space covers the ground plane.
	Gravity = 9.81

	// groundDamping is the fraction of planar velocity kept per second by a
	// body nobody is driving.
	groundDamping = 0.2

	trackedRadius = 0.3
)

// physicsWorld owns the chipmunk space for planar motion. Height is
// integrated separately in integrateZ.
type physicsWorld struct {
	space *cp.Space
}

func newPhysicsWorld() *physicsWorld {
	space := cp.NewSpace()
	space.Iterations = 10
	space.SetGravity(cp.Vector{})
	space.SetDamping(groundDamping)
	return &physicsWorld{space: space}
}

// addVehicle creates a kinematic box. Vehicles move only by the velocity a
// script gives them or by following the vehicle they are attached to.
func (pw *physicsWorld) addVehicle(e *Entity) {
	body := cp.NewKinematicBody()
	body.SetPosition(cp.Vector{X: e.spawn.X, Y: e.spawn.Y})
	body.SetAngle(common.DegToRad(e.Rot.Z))
	shape := cp.NewBox(body, e.Size[0], e.Size[1], 0)
	shape.SetFriction(0.8)
	pw.space.AddBody(body)
	pw.space.AddShape(shape)
	e.body, e.shape = body, shape
}

// addProp creates a static circle.
func (pw *physicsWorld) addProp(e *Entity, radius float64) {
	body := cp.NewStaticBody()
	body.SetPosition(cp.Vector{X: e.spawn.X, Y: e.spawn.Y})
	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetFriction(0.8)
	pw.space.AddBody(body)
	pw.space.AddShape(shape)
	e.body, e.shape = body, shape
}

// addTracked creates the dynamic body the tracking controller drives.
func (pw *physicsWorld) addTracked(e *Entity) {
	body := cp.NewBody(1, math.Inf(1))
	body.SetPosition(cp.Vector{X: e.spawn.X, Y: e.spawn.Y})
	body.SetVelocityUpdateFunc(func(b *cp.Body, gravity cp.Vector, damping float64, dt float64) {
		if e.Flags.ExternallyDriven {
			cp.BodyUpdateVelocity(b, cp.Vector{}, 1, dt)
			return
		}
		cp.BodyUpdateVelocity(b, cp.Vector{}, damping, dt)
	})
	shape := cp.NewCircle(body, trackedRadius, cp.Vector{})
	shape.SetFriction(0.5)
	pw.space.AddBody(body)
	pw.space.AddShape(shape)
	e.body, e.shape = body, shape
}

func (pw *physicsWorld) remove(e *Entity) {
	if e.shape != nil {
		pw.space.RemoveShape(e.shape)
	}
	if e.body != nil {
		pw.space.RemoveBody(e.body)
	}
	e.body, e.shape = nil, nil
}

func (pw *physicsWorld) applyFlags(e *Entity, flags host.PhysicsFlags) {
	e.Flags = flags
	if e.shape == nil {
		return
	}
	if flags.NoCollision {
		e.shape.SetFilter(cp.SHAPE_FILTER_NONE)
	} else {
		e.shape.SetFilter(cp.SHAPE_FILTER_ALL)
	}
}

func (pw *physicsWorld) step(dt float64) {
	if dt <= 0 {
		return
	}
	pw.space.Step(dt)
}

// integrateZ moves an entity along Z and lands it on the ground plane when
// gravity applies.
func integrateZ(e *Entity, dt float64) {
	if !e.Flags.NoGravity {
		e.VZ -= Gravity * dt
	}
	e.Z += e.VZ * dt
	if !e.Flags.NoGravity && e.Z < 0 {
		e.Z = 0
		e.VZ = 0
	}
}
