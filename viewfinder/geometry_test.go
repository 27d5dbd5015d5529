package viewfinder

import (
	"testing"

	"github.com/milk9111/vrcam/host"
	"gonum.org/v1/gonum/floats/scalar"
)

const tol = 1e-12

func edges(r host.Rect) (left, right, top, bottom float64) {
	return r.X - r.W/2, r.X + r.W/2, r.Y - r.H/2, r.Y + r.H/2
}

func TestComputeTilesScreen(t *testing.T) {
	for _, width := range []float64{0.2, 0.5, 0.9} {
		for _, height := range []float64{0.27, 0.35, 0.6} {
			for _, zoom := range []float64{1.0, 1.5, 2.0, 4.0} {
				l := Compute(width, height, zoom, true)

				total := l.WindowArea()
				for _, r := range l.Mask {
					total += r.Area()
				}
				if !scalar.EqualWithinAbs(total, 1, tol) {
					t.Fatalf("w=%v h=%v z=%v: covered area %v, want 1", width, height, zoom, total)
				}
			}
		}
	}
}

func TestComputeBandsMeetWindowEdges(t *testing.T) {
	l := Compute(0.5, 0.35, 1.5, false)

	type span struct{ left, right, top, bottom float64 }
	want := []span{
		{0, 1, 0, l.Top},
		{0, 1, l.Bottom, 1},
		{0, l.Left, l.Top, l.Bottom},
		{l.Right, 1, l.Top, l.Bottom},
	}
	for i, r := range l.Mask {
		left, right, top, bottom := edges(r)
		got := span{left, right, top, bottom}
		w := want[i]
		if !scalar.EqualWithinAbs(got.left, w.left, tol) ||
			!scalar.EqualWithinAbs(got.right, w.right, tol) ||
			!scalar.EqualWithinAbs(got.top, w.top, tol) ||
			!scalar.EqualWithinAbs(got.bottom, w.bottom, tol) {
			t.Fatalf("mask %d spans %+v, want %+v", i, got, w)
		}
		if r.Color != MaskColor {
			t.Fatalf("mask %d color %v", i, r.Color)
		}
	}
}

func TestComputeWindow(t *testing.T) {
	l := Compute(0.5, 0.35, 2, false)

	if !scalar.EqualWithinAbs(l.EffectiveWidth, 0.25, tol) || !scalar.EqualWithinAbs(l.EffectiveHeight, 0.175, tol) {
		t.Fatalf("effective size %vx%v", l.EffectiveWidth, l.EffectiveHeight)
	}
	if !scalar.EqualWithinAbs(l.Left, 0.375, tol) || !scalar.EqualWithinAbs(l.Right, 0.625, tol) {
		t.Fatalf("horizontal edges %v..%v", l.Left, l.Right)
	}
	if !scalar.EqualWithinAbs(l.Top, 0.4125, tol) || !scalar.EqualWithinAbs(l.Bottom, 0.5875, tol) {
		t.Fatalf("vertical edges %v..%v", l.Top, l.Bottom)
	}
	x, y := l.TextAnchor()
	if x != 0.5 || !scalar.EqualWithinAbs(y, 0.5975, tol) {
		t.Fatalf("text anchor (%v,%v)", x, y)
	}
}

func TestComputeBorderInsideWindow(t *testing.T) {
	l := Compute(0.5, 0.35, 1, false)

	for i, r := range l.Border {
		left, right, top, bottom := edges(r)
		if left < l.Left-tol || right > l.Right+tol || top < l.Top-tol || bottom > l.Bottom+tol {
			t.Fatalf("border %d (%v,%v,%v,%v) leaves the window", i, left, right, top, bottom)
		}
		if r.Color != BorderColor {
			t.Fatalf("border %d color %v", i, r.Color)
		}
	}
	if _, _, top, _ := edges(l.Border[0]); !scalar.EqualWithinAbs(top, l.Top, tol) {
		t.Fatalf("top border starts at %v, want %v", top, l.Top)
	}
	if _, right, _, _ := edges(l.Border[3]); !scalar.EqualWithinAbs(right, l.Right, tol) {
		t.Fatalf("right border ends at %v, want %v", right, l.Right)
	}
}

func TestComputeGrid(t *testing.T) {
	cases := []struct {
		name string
		grid bool
		want int
	}{
		{"off", false, 8},
		{"on", true, 12},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l := Compute(0.6, 0.3, 1, c.grid)
			if got := len(l.Rects()); got != c.want {
				t.Fatalf("got %d rects, want %d", got, c.want)
			}
		})
	}

	l := Compute(0.6, 0.3, 1, true)
	wantX := []float64{0.2 + 0.2, 0.2 + 0.4}
	for i := 0; i < 2; i++ {
		if !scalar.EqualWithinAbs(l.Grid[i].X, wantX[i], tol) {
			t.Fatalf("vertical line %d at x=%v, want %v", i, l.Grid[i].X, wantX[i])
		}
	}
	wantY := []float64{0.35 + 0.1, 0.35 + 0.2}
	for i := 0; i < 2; i++ {
		if !scalar.EqualWithinAbs(l.Grid[2+i].Y, wantY[i], tol) {
			t.Fatalf("horizontal line %d at y=%v, want %v", i, l.Grid[2+i].Y, wantY[i])
		}
	}
}
