package viewfinder

import (
	"image/color"

	"github.com/milk9111/vrcam/host"
)

const (
	BorderThickness = 0.002
	GridThickness   = 0.002

	// Gap between the bottom edge of the window and the status text.
	textMargin = 0.01
)

var (
	MaskColor   = color.RGBA{R: 0, G: 0, B: 0, A: 150}
	BorderColor = color.RGBA{R: 255, G: 255, B: 255, A: 200}
	GridColor   = color.RGBA{R: 200, G: 200, B: 200, A: 150}
)

// Layout is the overlay for one frame in normalized screen space, with the
// window centered on (0.5, 0.5).
type Layout struct {
	Left, Right, Top, Bottom        float64
	EffectiveWidth, EffectiveHeight float64

	// Mask holds the top, bottom, left and right bands.
	Mask   [4]host.Rect
	Border [4]host.Rect
	// Grid is empty when the rule-of-thirds grid is off.
	Grid []host.Rect
}

// Compute builds the overlay layout. zoom must be positive.
func Compute(baseWidth, height, zoom float64, grid bool) Layout {
	effW := baseWidth / zoom
	effH := height / zoom

	l := Layout{
		Left:            0.5 - effW/2,
		Right:           0.5 + effW/2,
		Top:             0.5 - effH/2,
		Bottom:          0.5 + effH/2,
		EffectiveWidth:  effW,
		EffectiveHeight: effH,
	}

	l.Mask = [4]host.Rect{
		{X: 0.5, Y: l.Top / 2, W: 1, H: l.Top, Color: MaskColor},
		{X: 0.5, Y: (l.Bottom + 1) / 2, W: 1, H: 1 - l.Bottom, Color: MaskColor},
		{X: l.Left / 2, Y: 0.5, W: l.Left, H: effH, Color: MaskColor},
		{X: (l.Right + 1) / 2, Y: 0.5, W: 1 - l.Right, H: effH, Color: MaskColor},
	}

	const bt = BorderThickness
	l.Border = [4]host.Rect{
		{X: 0.5, Y: l.Top + bt/2, W: effW, H: bt, Color: BorderColor},
		{X: 0.5, Y: l.Bottom - bt/2, W: effW, H: bt, Color: BorderColor},
		{X: l.Left + bt/2, Y: 0.5, W: bt, H: effH, Color: BorderColor},
		{X: l.Right - bt/2, Y: 0.5, W: bt, H: effH, Color: BorderColor},
	}

	if grid {
		midX := (l.Left + l.Right) / 2
		midY := (l.Top + l.Bottom) / 2
		const gt = GridThickness
		l.Grid = []host.Rect{
			{X: l.Left + effW/3, Y: midY, W: gt, H: effH, Color: GridColor},
			{X: l.Left + 2*effW/3, Y: midY, W: gt, H: effH, Color: GridColor},
			{X: midX, Y: l.Top + effH/3, W: effW, H: gt, Color: GridColor},
			{X: midX, Y: l.Top + 2*effH/3, W: effW, H: gt, Color: GridColor},
		}
	}
	return l
}

// WindowArea is the area of the uncovered viewfinder window.
func (l Layout) WindowArea() float64 {
	return l.EffectiveWidth * l.EffectiveHeight
}

// Rects returns every rectangle in draw order: mask, border, grid.
func (l Layout) Rects() []host.Rect {
	out := make([]host.Rect, 0, len(l.Mask)+len(l.Border)+len(l.Grid))
	out = append(out, l.Mask[:]...)
	out = append(out, l.Border[:]...)
	out = append(out, l.Grid...)
	return out
}

// TextAnchor is where the status line is drawn, centered below the window.
func (l Layout) TextAnchor() (x, y float64) {
	return 0.5, l.Bottom + textMargin
}
