package common

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Lerp moves a toward b by t. t is not clamped.
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// NormalizeAngle wraps degrees into (-180, 180].
func NormalizeAngle(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r > 180 {
		r -= 360
	} else if r <= -180 {
		r += 360
	}
	return r
}

// LerpAngle moves current toward target by factor along the shorter arc.
// factor is not clamped; values outside [0,1] overshoot.
func LerpAngle(current, target, factor float64) float64 {
	delta := math.Mod(target-current+540, 360)
	if delta < 0 {
		delta += 360
	}
	delta -= 180
	return NormalizeAngle(current + delta*factor)
}

// LerpRotation applies LerpAngle to each Euler axis independently.
func LerpRotation(current, target r3.Vec, factor float64) r3.Vec {
	return r3.Vec{
		X: LerpAngle(current.X, target.X, factor),
		Y: LerpAngle(current.Y, target.Y, factor),
		Z: LerpAngle(current.Z, target.Z, factor),
	}
}

func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// ForwardVector returns the unit view direction for a rotation in degrees,
// with pitch on X and yaw on Z.
func ForwardVector(rot r3.Vec) r3.Vec {
	pitch := DegToRad(rot.X)
	yaw := DegToRad(rot.Z)
	return r3.Vec{
		X: -math.Sin(yaw) * math.Cos(pitch),
		Y: math.Cos(yaw) * math.Cos(pitch),
		Z: math.Sin(pitch),
	}
}

// WorldToLocal rotates a world-space offset into the frame of a parent
// facing headingDeg. Z passes through unchanged.
func WorldToLocal(offset r3.Vec, headingDeg float64) r3.Vec {
	h := DegToRad(headingDeg)
	cos := math.Cos(-h)
	sin := math.Sin(-h)
	return r3.Vec{
		X: offset.X*cos - offset.Y*sin,
		Y: offset.X*sin + offset.Y*cos,
		Z: offset.Z,
	}
}

// LocalToWorld is the inverse of WorldToLocal.
func LocalToWorld(offset r3.Vec, headingDeg float64) r3.Vec {
	return WorldToLocal(offset, -headingDeg)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ClampIndex(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
