package sim

import (
	"github.com/milk9111/vrcam/common"
	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is the observer's head. It eases toward the eye point each step.
type Camera struct {
	Pos r3.Vec
	Rot r3.Vec

	// smoothing factor (0..1]. 1 locks the camera to the eye.
	smooth    float64
	eyeHeight float64
	ready     bool
}

func NewCamera(eyeHeight, smooth float64) *Camera {
	c := &Camera{eyeHeight: eyeHeight}
	c.SetSmooth(smooth)
	return c
}

func (c *Camera) SetSmooth(f float64) {
	if f <= 0 || f > 1 {
		f = 1
	}
	c.smooth = f
}

// Follow moves the camera toward an eye above feet, looking along rot. The
// first call snaps.
func (c *Camera) Follow(feet, rot r3.Vec) {
	target := r3.Add(feet, r3.Vec{Z: c.eyeHeight})
	if !c.ready {
		c.Pos = target
		c.Rot = rot
		c.ready = true
		return
	}
	c.Pos = r3.Add(c.Pos, r3.Scale(c.smooth, r3.Sub(target, c.Pos)))
	c.Rot = common.LerpRotation(c.Rot, rot, c.smooth)
}

// Forward is the unit view direction.
func (c *Camera) Forward() r3.Vec {
	return common.ForwardVector(c.Rot)
}
