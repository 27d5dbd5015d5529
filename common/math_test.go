package common

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func TestNormalizeAngle(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, 0},
		{"upper_bound_kept", 180, 180},
		{"lower_bound_flipped", -180, 180},
		{"just_past_upper", 181, -179},
		{"full_turn", 360, 0},
		{"one_and_half_turns", 540, 180},
		{"negative_wrap", -190, 170},
		{"large_negative", -725, -5},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := NormalizeAngle(c.in); !scalar.EqualWithinAbs(got, c.want, tol) {
				t.Fatalf("NormalizeAngle(%v) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestLerp(t *testing.T) {
	cases := []struct {
		a, b, t, want float64
	}{
		{0, 10, 0, 0},
		{0, 10, 1, 10},
		{2, 4, 0.25, 2.5},
		{1, 0.8, 0.1, 0.98},
		{0, 10, 1.5, 15},
	}
	for _, c := range cases {
		if got := Lerp(c.a, c.b, c.t); !scalar.EqualWithinAbs(got, c.want, tol) {
			t.Fatalf("Lerp(%v, %v, %v) = %v, want %v", c.a, c.b, c.t, got, c.want)
		}
	}
}

func TestLerpAngleShortestPath(t *testing.T) {
	cases := []struct {
		name    string
		current float64
		target  float64
		factor  float64
		want    float64
	}{
		{"wraps_forward_through_180", 179, -179, 1, -179},
		{"wraps_backward_through_180", -179, 179, 1, 179},
		{"half_way_across_seam", 170, -170, 0.5, 180},
		{"plain_half", 0, 90, 0.5, 45},
		{"factor_zero_keeps_current", 30, -120, 0, 30},
		{"negative_side", -10, -50, 0.25, -20},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := LerpAngle(c.current, c.target, c.factor)
			if !scalar.EqualWithinAbs(got, c.want, 1e-6) {
				t.Fatalf("LerpAngle(%v, %v, %v) = %v, want %v", c.current, c.target, c.factor, got, c.want)
			}
		})
	}
}

func TestLerpAngleProperties(t *testing.T) {
	factors := []float64{0, 0.1, 0.5, 0.9, 1}
	for cur := -179.0; cur <= 180; cur += 7.5 {
		for tgt := -179.0; tgt <= 180; tgt += 11.25 {
			for _, f := range factors {
				got := LerpAngle(cur, tgt, f)
				if got <= -180 || got > 180 {
					t.Fatalf("LerpAngle(%v, %v, %v) = %v outside (-180,180]", cur, tgt, f, got)
				}

				travelled := math.Abs(NormalizeAngle(got - cur))
				if travelled > 180+1e-9 {
					t.Fatalf("LerpAngle(%v, %v, %v) travelled %v degrees", cur, tgt, f, travelled)
				}
			}
		}
		for _, f := range factors {
			if got := LerpAngle(cur, cur, f); !scalar.EqualWithinAbs(got, cur, tol) {
				t.Fatalf("LerpAngle(%v, %v, %v) = %v, want unchanged", cur, cur, f, got)
			}
		}
	}
}

func TestLerpRotationPerAxis(t *testing.T) {
	got := LerpRotation(r3.Vec{X: 10, Y: 179, Z: -90}, r3.Vec{X: 20, Y: -179, Z: 90}, 0.5)
	want := r3.Vec{X: 15, Y: 180, Z: 0}
	if !scalar.EqualWithinAbs(got.X, want.X, tol) || !scalar.EqualWithinAbs(got.Y, want.Y, tol) {
		t.Fatalf("LerpRotation = %+v, want %+v", got, want)
	}
	// -90 to 90 is exactly opposite; the delta formula resolves the tie to -180.
	if !scalar.EqualWithinAbs(math.Abs(got.Z), 180, tol) {
		t.Fatalf("LerpRotation Z = %v, want +-180", got.Z)
	}
}

func TestForwardVector(t *testing.T) {
	cases := []struct {
		name string
		rot  r3.Vec
		want r3.Vec
	}{
		{"north", r3.Vec{}, r3.Vec{Y: 1}},
		{"yaw_90_faces_west", r3.Vec{Z: 90}, r3.Vec{X: -1}},
		{"pitch_up", r3.Vec{X: 90}, r3.Vec{Z: 1}},
		{"yaw_180", r3.Vec{Z: 180}, r3.Vec{Y: -1}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ForwardVector(c.rot)
			if r3.Norm(r3.Sub(got, c.want)) > 1e-9 {
				t.Fatalf("ForwardVector(%+v) = %+v, want %+v", c.rot, got, c.want)
			}
			if !scalar.EqualWithinAbs(r3.Norm(got), 1, 1e-9) {
				t.Fatalf("forward vector not unit: %v", r3.Norm(got))
			}
		})
	}
}

func TestWorldLocalRoundTrip(t *testing.T) {
	offset := r3.Vec{X: 3, Y: -2, Z: 1.5}
	for _, heading := range []float64{0, 33, 90, -145, 270} {
		local := WorldToLocal(offset, heading)
		back := LocalToWorld(local, heading)
		if r3.Norm(r3.Sub(back, offset)) > 1e-9 {
			t.Fatalf("heading %v: round trip %+v -> %+v -> %+v", heading, offset, local, back)
		}
		if local.Z != offset.Z {
			t.Fatalf("heading %v: Z changed to %v", heading, local.Z)
		}
	}

	// A point straight ahead of a parent facing 90 degrees lies on the parent's +Y axis.
	ahead := ForwardVector(r3.Vec{Z: 90})
	local := WorldToLocal(ahead, 90)
	if r3.Norm(r3.Sub(local, r3.Vec{Y: 1})) > 1e-9 {
		t.Fatalf("WorldToLocal(ahead, 90) = %+v, want +Y", local)
	}
}

func TestClampIndex(t *testing.T) {
	cases := []struct {
		i, n, want int
	}{
		{1, 6, 1},
		{-1, 6, 0},
		{9, 6, 5},
		{1, 1, 0},
		{3, 0, 0},
	}
	for _, c := range cases {
		if got := ClampIndex(c.i, c.n); got != c.want {
			t.Fatalf("ClampIndex(%d, %d) = %d, want %d", c.i, c.n, got, c.want)
		}
	}
}
