// Package render draws the demo world with ebiten: a simple first-person
// view, the overlay commands collected from the viewfinder, subtitles and a
// top-down map.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/vrcam/host"
	"github.com/milk9111/vrcam/sim"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/gofont/goregular"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	fov = 60.0

	mapSize        = 220
	mapMargin      = 12
	mapMeters      = 60.0
	vehicleHeight  = 1.5
	subtitleScale  = 0.3
	subtitleMargin = 0.08
)

var (
	skyColor    = color.RGBA{R: 120, G: 160, B: 205, A: 255}
	groundColor = color.RGBA{R: 70, G: 90, B: 60, A: 255}
	mapBg       = color.RGBA{R: 20, G: 20, B: 24, A: 200}
)

type Renderer struct {
	source *text.GoTextFaceSource
	faces  map[int]*text.GoTextFace
}

func New() (*Renderer, error) {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("render: load font: %w", err)
	}
	return &Renderer{source: s, faces: map[int]*text.GoTextFace{}}, nil
}

func (r *Renderer) face(size float64) *text.GoTextFace {
	px := int(size + 0.5)
	if px < 6 {
		px = 6
	}
	if f, ok := r.faces[px]; ok {
		return f
	}
	f := &text.GoTextFace{Source: r.source, Size: float64(px)}
	r.faces[px] = f
	return f
}

// DrawScene draws sky, ground and every entity seen from the world camera.
func (r *Renderer) DrawScene(screen *ebiten.Image, w *sim.World) {
	sw, sh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	cam := w.Camera()
	v := NewView(cam.Pos, cam.Rot, fov, sw, sh)

	horizon := v.Horizon()
	screen.Fill(groundColor)
	if horizon > 0 {
		vector.FillRect(screen, 0, 0, float32(sw), float32(min(horizon, sh)), skyColor, false)
	}

	type sprite struct {
		depth float64
		draw  func()
	}
	var sprites []sprite
	w.Each(func(e *sim.Entity) {
		pos := e.Position()
		switch e.Kind {
		case sim.KindVehicle:
			x, y, d, ok := v.Project(r3.Add(pos, r3.Vec{Z: vehicleHeight / 2}))
			if !ok {
				return
			}
			wpx, hpx := v.Scale(e.Size[0], d), v.Scale(vehicleHeight, d)
			c := e.Color
			sprites = append(sprites, sprite{d, func() {
				vector.FillRect(screen, float32(x-wpx/2), float32(y-hpx/2), float32(wpx), float32(hpx), c, true)
			}})
		case sim.KindProp:
			x, y, d, ok := v.Project(r3.Add(pos, r3.Vec{Z: e.Radius}))
			if !ok {
				return
			}
			rad := v.Scale(e.Radius, d)
			sprites = append(sprites, sprite{d, func() {
				vector.FillCircle(screen, float32(x), float32(y), float32(rad), colornames.Slategray, true)
			}})
		case sim.KindTracked:
			x, y, d, ok := v.Project(pos)
			if !ok {
				return
			}
			rad := v.Scale(e.Radius, d)
			sprites = append(sprites, sprite{d, func() {
				vector.FillCircle(screen, float32(x), float32(y), float32(rad), colornames.Orange, true)
				vector.StrokeCircle(screen, float32(x), float32(y), float32(rad), 1, colornames.Black, true)
			}})
		}
	})
	sort.Slice(sprites, func(i, j int) bool { return sprites[i].depth > sprites[j].depth })
	for _, s := range sprites {
		s.draw()
	}
}

// DrawOverlay draws the screen commands collected during the frame.
func (r *Renderer) DrawOverlay(screen *ebiten.Image, d sim.DrawList) {
	sw, sh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	for _, rect := range d.Rects {
		x, y, w, h := ScreenRect(rect, sw, sh)
		vector.FillRect(screen, x, y, w, h, rect.Color, false)
	}
	for _, t := range d.Texts {
		r.drawText(screen, t, sw, sh)
	}
}

func (r *Renderer) drawText(screen *ebiten.Image, t host.Text, sw, sh float64) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(t.X*sw, t.Y*sh)
	op.ColorScale.ScaleWithColor(t.Color)
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter
	text.Draw(screen, t.Value, r.face(TextSize(t.Scale, sh)), op)
}

// DrawSubtitle draws s centered near the bottom of the screen.
func (r *Renderer) DrawSubtitle(screen *ebiten.Image, s string) {
	if s == "" {
		return
	}
	sw, sh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	r.drawText(screen, host.Text{
		X:     0.5,
		Y:     1 - subtitleMargin,
		Scale: subtitleScale,
		Color: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Value: s,
	}, sw, sh)
}

// DrawMap draws a north-up map of the world around the observer in the
// bottom-right corner.
func (r *Renderer) DrawMap(screen *ebiten.Image, w *sim.World) {
	sw, sh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	x0, y0 := sw-mapSize-mapMargin, sh-mapSize-mapMargin
	vector.FillRect(screen, float32(x0), float32(y0), mapSize, mapSize, mapBg, false)

	feet, fwd := w.ObserverPose()
	m := MapView{
		Center:         feet,
		PixelsPerMeter: mapSize / mapMeters,
		OriginX:        x0 + mapSize/2,
		OriginY:        y0 + mapSize/2,
	}
	inside := func(x, y float32) bool {
		return float64(x) >= x0 && float64(x) <= x0+mapSize && float64(y) >= y0 && float64(y) <= y0+mapSize
	}

	w.Each(func(e *sim.Entity) {
		pos := e.Position()
		switch e.Kind {
		case sim.KindVehicle:
			c := BoxCorners(pos, e.Rot.Z, e.Size)
			for i := range c {
				ax, ay := m.Project(c[i])
				bx, by := m.Project(c[(i+1)%len(c)])
				if inside(ax, ay) && inside(bx, by) {
					vector.StrokeLine(screen, ax, ay, bx, by, 1.5, e.Color, true)
				}
			}
			if e.Parent.Valid() {
				if p, ok := w.Entity(e.Parent); ok {
					ax, ay := m.Project(pos)
					bx, by := m.Project(p.Position())
					if inside(ax, ay) && inside(bx, by) {
						vector.StrokeLine(screen, ax, ay, bx, by, 1, colornames.Lightgrey, true)
					}
				}
			}
		case sim.KindProp:
			x, y := m.Project(pos)
			if inside(x, y) {
				vector.FillCircle(screen, x, y, float32(max(e.Radius*m.PixelsPerMeter, 2)), colornames.Slategray, true)
			}
		case sim.KindTracked:
			x, y := m.Project(pos)
			if inside(x, y) {
				vector.FillCircle(screen, x, y, 3, colornames.Orange, true)
			}
		}
	})

	ox, oy := m.Project(feet)
	tx, ty := m.Project(r3.Add(feet, r3.Scale(4, fwd)))
	vector.FillCircle(screen, ox, oy, 3, colornames.Lime, true)
	vector.StrokeLine(screen, ox, oy, tx, ty, 1, colornames.Lime, true)

	cam := w.Camera()
	cx, cy := m.Project(cam.Pos)
	lx, ly := m.Project(r3.Add(cam.Pos, r3.Scale(6, cam.Forward())))
	vector.StrokeLine(screen, cx, cy, lx, ly, 1, colornames.Yellow, true)
}

// DrawDebug prints lines in the top-left corner.
func (r *Renderer) DrawDebug(screen *ebiten.Image, lines []string) {
	for i, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, 4, 4+i*14)
	}
}
