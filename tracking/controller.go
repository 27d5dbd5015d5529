package tracking

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/milk9111/vrcam/common"
	"github.com/milk9111/vrcam/config"
	"github.com/milk9111/vrcam/host"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrModelInvalid = errors.New("tracking: model not available")
	ErrModelTimeout = errors.New("tracking: model did not load in time")
)

const (
	spawnDistance    = 2.0
	subtitleDuration = 3 * time.Second
)

type State int

const (
	// StateUnspawned means no tracked entity has been requested yet.
	StateUnspawned State = iota
	// StateSpawning waits for the tracked model to stream in.
	StateSpawning
	// StateActive drives the tracked entity every frame.
	StateActive
	// StateLost means the entity was destroyed by the host. Only an
	// explicit spawn request leaves this state.
	StateLost
)

func (s State) String() string {
	switch s {
	case StateUnspawned:
		return "unspawned"
	case StateSpawning:
		return "spawning"
	case StateActive:
		return "active"
	case StateLost:
		return "lost"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Pose struct {
	Position r3.Vec
	Rotation r3.Vec
}

// Controller keeps one tracked entity glued in front of the render camera.
type Controller struct {
	cfg     *config.Config
	host    host.Tracking
	inertia *InertiaSource
	now     func() time.Time

	state    State
	idle     State
	entity   host.Handle
	model    string
	deadline time.Time

	pose     Pose
	velocity r3.Vec
	inertiaV r3.Vec
}

func NewController(cfg *config.Config, h host.Tracking) *Controller {
	return &Controller{
		cfg:     cfg,
		host:    h,
		inertia: NewInertiaSource(h),
		now:     time.Now,
	}
}

// SetClock replaces the time source used for the spawn deadline.
func (c *Controller) SetClock(now func() time.Time) {
	if c == nil || now == nil {
		return
	}
	c.now = now
}

func (c *Controller) State() State {
	if c == nil {
		return StateUnspawned
	}
	return c.state
}

// Entity returns the tracked entity while the controller is active.
func (c *Controller) Entity() (host.Handle, bool) {
	if c == nil || c.state != StateActive {
		return 0, false
	}
	return c.entity, true
}

// Pose is the pose written to the host on the last active frame.
func (c *Controller) Pose() Pose {
	if c == nil {
		return Pose{}
	}
	return c.pose
}

// Velocity is the last velocity command, zero in unsmoothed mode.
func (c *Controller) Velocity() r3.Vec {
	if c == nil {
		return r3.Vec{}
	}
	return c.velocity
}

// Inertia is the scaled vehicle velocity applied on the last frame.
func (c *Controller) Inertia() r3.Vec {
	if c == nil {
		return r3.Vec{}
	}
	return c.inertiaV
}

// RequestSpawn starts streaming the tracked model. It is a no-op while a
// spawn is pending or the tracked entity is alive.
func (c *Controller) RequestSpawn() error {
	if c == nil || c.host == nil || c.cfg == nil {
		return nil
	}

	switch c.state {
	case StateSpawning:
		return nil
	case StateActive:
		if c.host.EntityExists(c.entity) {
			return nil
		}
		c.markLost()
	}

	model := c.cfg.TrackedModel
	if err := c.host.RequestModel(model); err != nil {
		err = fmt.Errorf("%w: %s: %v", ErrModelInvalid, model, err)
		c.notifyFailure(err)
		return err
	}

	c.idle = c.state
	c.model = model
	c.deadline = c.now().Add(c.cfg.SpawnTimeout)
	c.state = StateSpawning
	log.Printf("tracking: waiting for model %s (timeout %s)", model, c.cfg.SpawnTimeout)
	return nil
}

// Update runs once per frame.
func (c *Controller) Update() {
	if c == nil || c.host == nil || c.cfg == nil {
		return
	}

	switch c.state {
	case StateSpawning:
		c.pollSpawn()
	case StateActive:
		c.track()
	}
}

func (c *Controller) pollSpawn() {
	if !c.host.ModelLoaded(c.model) {
		if !c.now().Before(c.deadline) {
			c.host.ReleaseModel(c.model)
			c.state = c.idle
			c.notifyFailure(fmt.Errorf("%w: %s", ErrModelTimeout, c.model))
		}
		return
	}

	pos, fwd := c.host.ObserverPose()
	at := r3.Add(pos, r3.Scale(spawnDistance, fwd))
	h, err := c.host.SpawnTrackedEntity(c.model, at)
	c.host.ReleaseModel(c.model)
	if err != nil {
		c.state = c.idle
		c.notifyFailure(fmt.Errorf("tracking: spawn %s: %w", c.model, err))
		return
	}

	c.host.SetEntityPhysicsFlags(h, host.Tracked)
	c.entity = h
	c.pose = Pose{Position: at}
	c.velocity = r3.Vec{}
	c.state = StateActive
	log.Printf("tracking: spawned %s as entity %s", c.model, h)
}

func (c *Controller) track() {
	if !c.host.EntityExists(c.entity) {
		c.markLost()
		return
	}

	// The host may clear these flags on its own, so they are set every frame.
	c.host.SetEntityPhysicsFlags(c.entity, host.Tracked)

	camPos, camRot, ok := c.host.CameraPose()
	if !ok {
		return
	}

	target := r3.Add(r3.Add(camPos, common.ForwardVector(camRot)), c.cfg.TrackingOffset)

	vehicle, inVehicle := c.host.ObserverVehicle()
	c.inertiaV = r3.Vec{}
	if inVehicle {
		c.inertiaV = r3.Scale(c.cfg.VehicleInertiaCompensationFactor, c.inertia.Resolve(vehicle, true))
		target = r3.Add(target, c.inertiaV)
	}

	if c.cfg.DisableSmoothing {
		pos := target
		if inVehicle {
			pos = r3.Add(pos, c.inertiaV)
		}
		// A velocity left over from a smoothed frame would carry the body
		// away from pos on the next physics step.
		c.host.SetEntityVelocity(c.entity, r3.Vec{})
		c.host.SetEntityPosition(c.entity, pos)
		c.host.SetEntityRotation(c.entity, camRot)
		c.velocity = r3.Vec{}
		c.pose = Pose{Position: pos, Rotation: camRot}
		return
	}

	// The inertia term is applied to the target above and again to the
	// velocity here.
	cur := c.host.EntityPosition(c.entity)
	vel := r3.Scale(c.cfg.PositionalSmoothingFactor, r3.Sub(target, cur))
	if inVehicle {
		vel = r3.Add(vel, c.inertiaV)
	}
	c.host.SetEntityVelocity(c.entity, vel)

	rot := common.LerpRotation(c.host.EntityRotation(c.entity), camRot, c.cfg.RotationSmoothingFactor)
	c.host.SetEntityRotation(c.entity, rot)

	c.velocity = vel
	c.pose = Pose{Position: cur, Rotation: rot}
}

func (c *Controller) markLost() {
	log.Printf("tracking: entity %s no longer exists", c.entity)
	c.state = StateLost
	c.entity = 0
	c.velocity = r3.Vec{}
	c.inertiaV = r3.Vec{}
}

func (c *Controller) notifyFailure(err error) {
	log.Printf("%v", err)
	c.host.ShowSubtitle("Failed to load tracked model.", subtitleDuration)
}
