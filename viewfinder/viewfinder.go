// Package viewfinder draws the masked aspect/zoom crop overlay and its status
// line.
package viewfinder

import (
	"log"
	"time"

	"github.com/milk9111/vrcam/config"
	"github.com/milk9111/vrcam/host"
)

const subtitleDuration = 2 * time.Second

// Viewfinder owns the overlay state and draws it through the host once per
// frame while enabled.
type Viewfinder struct {
	cfg  *config.Config
	host host.Overlay
	loop *Loop

	enabled bool
	grid    bool

	layout Layout
	status Status
}

// New returns a disabled viewfinder with the grid on.
func New(cfg *config.Config, h host.Overlay) *Viewfinder {
	return &Viewfinder{
		cfg:  cfg,
		host: h,
		loop: NewLoop(cfg),
		grid: true,
	}
}

func (v *Viewfinder) Enabled() bool {
	return v != nil && v.enabled
}

func (v *Viewfinder) GridEnabled() bool {
	return v != nil && v.grid
}

func (v *Viewfinder) Loop() *Loop {
	if v == nil {
		return nil
	}
	return v.loop
}

// Layout is the layout drawn on the last enabled frame.
func (v *Viewfinder) Layout() Layout {
	if v == nil {
		return Layout{}
	}
	return v.layout
}

// Status is the status line drawn on the last enabled frame.
func (v *Viewfinder) Status() Status {
	if v == nil {
		return Status{}
	}
	return v.status
}

func (v *Viewfinder) Toggle() {
	if v == nil {
		return
	}
	v.enabled = !v.enabled
	log.Printf("viewfinder: enabled=%t", v.enabled)
}

func (v *Viewfinder) ToggleGrid() {
	if v == nil {
		return
	}
	v.grid = !v.grid
	state := "Disabled"
	if v.grid {
		state = "Enabled"
	}
	v.notify("Rule of Thirds Grid " + state)
}

func (v *Viewfinder) ZoomIn() {
	if v == nil {
		return
	}
	v.loop.ZoomIn()
}

func (v *Viewfinder) ZoomOut() {
	if v == nil {
		return
	}
	v.loop.ZoomOut()
}

func (v *Viewfinder) CycleAspect() {
	if v == nil || !v.loop.CycleAspect() {
		return
	}
	v.notify("Aspect Ratio: " + v.loop.AspectLabel())
}

// Reconfigure points the viewfinder at a reloaded config.
func (v *Viewfinder) Reconfigure(cfg *config.Config) {
	if v == nil || cfg == nil {
		return
	}
	v.cfg = cfg
	v.loop.Reconfigure(cfg)
}

// Update smooths the zoom and aspect state and draws the overlay. A disabled
// viewfinder does neither.
func (v *Viewfinder) Update() {
	if v == nil || !v.enabled || v.cfg == nil || v.host == nil {
		return
	}

	v.loop.Step()
	v.layout = Compute(v.cfg.BaseWidth, v.loop.CurrentHeight, v.loop.CurrentZoom, v.grid)
	for _, r := range v.layout.Rects() {
		v.host.DrawScreenRect(r)
	}

	v.status = DeriveStatus(v.loop.CurrentZoom, v.loop.AspectLabel(), v.host.IsRecordingActive(), v.host.DisplayAspectRatio())
	x, y := v.layout.TextAnchor()
	v.host.DrawScreenText(host.Text{
		X:     x,
		Y:     y,
		Scale: TextScale,
		Color: v.status.Color,
		Value: v.status.Text,
	})
}

func (v *Viewfinder) notify(text string) {
	if v.host != nil {
		v.host.ShowSubtitle(text, subtitleDuration)
	}
}
