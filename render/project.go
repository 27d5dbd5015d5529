package render

import (
	"math"

	"github.com/milk9111/vrcam/common"
	"github.com/milk9111/vrcam/host"
	"gonum.org/v1/gonum/spatial/r3"
)

// textPixels is the font size in pixels of scale 1.0 text per pixel of
// screen height.
const textPixels = 0.1

// ScreenRect converts a normalized center-positioned rect to pixel space.
func ScreenRect(r host.Rect, sw, sh float64) (x, y, w, h float32) {
	return float32((r.X - r.W/2) * sw), float32((r.Y - r.H/2) * sh), float32(r.W * sw), float32(r.H * sh)
}

// TextSize is the pixel font size for a text scale on a screen sh pixels
// tall.
func TextSize(scale, sh float64) float64 {
	return scale * sh * textPixels
}

// View is a pinhole camera over the screen.
type View struct {
	Pos    r3.Vec
	Rot    r3.Vec
	FOV    float64 // vertical, degrees
	Width  float64
	Height float64

	forward, right, up r3.Vec
	focal              float64
}

// NewView prepares the camera basis. Roll (Rot.Y) is ignored.
func NewView(pos, rot r3.Vec, fov, sw, sh float64) View {
	v := View{Pos: pos, Rot: rot, FOV: fov, Width: sw, Height: sh}
	v.forward = common.ForwardVector(rot)
	v.right = r3.Unit(r3.Cross(v.forward, r3.Vec{Z: 1}))
	if math.IsNaN(v.right.X) {
		// Looking straight up or down.
		v.right = common.ForwardVector(r3.Vec{Z: rot.Z - 90})
	}
	v.up = r3.Cross(v.right, v.forward)
	v.focal = (sh / 2) / math.Tan(common.DegToRad(fov)/2)
	return v
}

// Project maps a world point to pixels. ok is false behind the near plane.
func (v View) Project(p r3.Vec) (x, y, depth float64, ok bool) {
	d := r3.Sub(p, v.Pos)
	depth = r3.Dot(d, v.forward)
	if depth < 0.05 {
		return 0, 0, depth, false
	}
	x = v.Width/2 + r3.Dot(d, v.right)/depth*v.focal
	y = v.Height/2 - r3.Dot(d, v.up)/depth*v.focal
	return x, y, depth, true
}

// Scale converts a world length at depth to pixels.
func (v View) Scale(length, depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	return length / depth * v.focal
}

// Horizon is the screen row of the horizon for the view pitch.
func (v View) Horizon() float64 {
	return v.Height/2 + math.Tan(common.DegToRad(v.Rot.X))*v.focal
}

// MapView is a north-up top-down projection.
type MapView struct {
	Center           r3.Vec
	PixelsPerMeter   float64
	OriginX, OriginY float64
}

func (m MapView) Project(p r3.Vec) (x, y float32) {
	return float32(m.OriginX + (p.X-m.Center.X)*m.PixelsPerMeter),
		float32(m.OriginY - (p.Y-m.Center.Y)*m.PixelsPerMeter)
}

// BoxCorners returns the ground corners of a size[0] wide, size[1] long box
// facing heading degrees.
func BoxCorners(pos r3.Vec, heading float64, size [2]float64) [4]r3.Vec {
	hw, hl := size[0]/2, size[1]/2
	local := [4]r3.Vec{
		{X: -hw, Y: hl},
		{X: hw, Y: hl},
		{X: hw, Y: -hl},
		{X: -hw, Y: -hl},
	}
	var out [4]r3.Vec
	for i, c := range local {
		out[i] = r3.Add(pos, common.LocalToWorld(c, heading))
	}
	return out
}
