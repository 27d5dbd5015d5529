package main

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/vrcam/input"
	"golang.org/x/image/font/basicfont"
)

var helpText = map[input.Action]string{
	input.ActionSpawn:      "spawn tracked entity",
	input.ActionViewfinder: "toggle viewfinder",
	input.ActionZoomIn:     "zoom in",
	input.ActionZoomOut:    "zoom out",
	input.ActionAspect:     "cycle aspect ratio",
	input.ActionGrid:       "toggle rule of thirds grid",
	input.ActionHelp:       "show / hide this panel",
	input.ActionCopy:       "copy settings to clipboard",
	input.ActionQuit:       "quit",
}

// NewHelpUI builds the centered controls panel with a smoothing toggle and a
// close button.
func NewHelpUI(g *Game) *ebitenui.UI {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})

	goFace := ebtext.NewGoXFace(basicfont.Face7x13)
	var face ebtext.Face = goFace

	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white}
	center := widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(6),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(baseWidth/3, baseHeight/3),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionCenter}),
		),
	)

	panel.AddChild(widget.NewText(
		widget.TextOpts.Text("Controls", &face, white),
		widget.TextOpts.WidgetOpts(center),
	))

	bindings := g.input.Bindings()
	for _, a := range input.Actions() {
		panel.AddChild(widget.NewText(
			widget.TextOpts.Text(fmt.Sprintf("%-8s %s", bindings[a], helpText[a]), &face, white),
		))
	}

	smoothing := widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Pressed: btnImg}),
		widget.ButtonOpts.Text(smoothingLabel(g), &face, btnTextColor),
		widget.ButtonOpts.WidgetOpts(center),
	)
	smoothing.ClickedEvent.AddHandler(func(args interface{}) {
		g.cfg.DisableSmoothing = !g.cfg.DisableSmoothing
		smoothing.Text().Label = smoothingLabel(g)
	})

	closeBtn := widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Pressed: btnImg}),
		widget.ButtonOpts.Text("Close", &face, btnTextColor),
		widget.ButtonOpts.WidgetOpts(center),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			g.showHelp = false
		}),
	)

	panel.AddChild(smoothing)
	panel.AddChild(closeBtn)

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	return &ebitenui.UI{Container: root}
}

func smoothingLabel(g *Game) string {
	if g.cfg.DisableSmoothing {
		return "Smoothing: Off"
	}
	return "Smoothing: On"
}
