package tracking

import (
	"github.com/milk9111/vrcam/host"
	"gonum.org/v1/gonum/spatial/r3"
)

// InertiaSource resolves which velocity the tracked entity should inherit.
type InertiaSource struct {
	vehicles host.Vehicles
}

func NewInertiaSource(vehicles host.Vehicles) *InertiaSource {
	return &InertiaSource{vehicles: vehicles}
}

// Resolve returns the velocity of the vehicle the observer rides in, or of
// the vehicle it is attached to when that parent is itself a vehicle. It
// returns zero for no vehicle or a stale handle. Nothing is cached; the
// attachment can change between any two frames.
func (s *InertiaSource) Resolve(vehicle host.Handle, inVehicle bool) r3.Vec {
	if s == nil || s.vehicles == nil || !inVehicle || !vehicle.Valid() {
		return r3.Vec{}
	}
	if !s.vehicles.EntityExists(vehicle) {
		return r3.Vec{}
	}

	if parent, ok := s.vehicles.AttachedParent(vehicle); ok && parent.Valid() {
		if s.vehicles.EntityExists(parent) && s.vehicles.IsVehicle(parent) {
			return s.vehicles.VehicleVelocity(parent)
		}
	}
	return s.vehicles.VehicleVelocity(vehicle)
}
