package viewfinder

import (
	"github.com/milk9111/vrcam/common"
	"github.com/milk9111/vrcam/config"
)

const initialZoomIndex = 1

// Loop holds the zoom and aspect state of the viewfinder. Discrete actions
// move only the targets; Step closes a fraction of the remaining gap.
type Loop struct {
	cfg *config.Config

	aspect int
	zoom   int

	CurrentZoom   float64
	TargetZoom    float64
	CurrentHeight float64
	TargetHeight  float64
}

func NewLoop(cfg *config.Config) *Loop {
	l := &Loop{cfg: cfg}
	if cfg == nil {
		return l
	}
	l.zoom = common.ClampIndex(initialZoomIndex, len(cfg.ZoomLevels))
	l.CurrentZoom = cfg.DefaultZoom
	l.TargetZoom = cfg.DefaultZoom
	if len(cfg.PresetHeights) > 0 {
		l.CurrentHeight = cfg.PresetHeights[0]
		l.TargetHeight = cfg.PresetHeights[0]
	}
	return l
}

func (l *Loop) AspectIndex() int {
	if l == nil {
		return 0
	}
	return l.aspect
}

func (l *Loop) ZoomIndex() int {
	if l == nil {
		return 0
	}
	return l.zoom
}

// AspectLabel is the label of the selected aspect preset.
func (l *Loop) AspectLabel() string {
	if l == nil || l.cfg == nil {
		return ""
	}
	return l.cfg.Label(l.aspect)
}

// Step advances current zoom and height one frame toward their targets.
func (l *Loop) Step() {
	if l == nil || l.cfg == nil {
		return
	}
	l.CurrentZoom = common.Lerp(l.CurrentZoom, l.TargetZoom, l.cfg.ViewfinderSmoothingFactor)
	l.CurrentHeight = common.Lerp(l.CurrentHeight, l.TargetHeight, l.cfg.AspectSmoothingFactor)
}

// ZoomIn selects the next zoom level. It reports false at the last level.
func (l *Loop) ZoomIn() bool {
	if l == nil || l.cfg == nil || l.zoom >= len(l.cfg.ZoomLevels)-1 {
		return false
	}
	l.zoom++
	l.TargetZoom = l.cfg.ZoomLevels[l.zoom]
	return true
}

// ZoomOut selects the previous zoom level. It reports false at index 0.
func (l *Loop) ZoomOut() bool {
	if l == nil || l.cfg == nil || l.zoom <= 0 || len(l.cfg.ZoomLevels) == 0 {
		return false
	}
	l.zoom--
	l.TargetZoom = l.cfg.ZoomLevels[l.zoom]
	return true
}

// CycleAspect selects the next aspect preset, wrapping to the first.
func (l *Loop) CycleAspect() bool {
	if l == nil || l.cfg == nil || len(l.cfg.PresetHeights) == 0 {
		return false
	}
	l.aspect = (l.aspect + 1) % len(l.cfg.PresetHeights)
	l.TargetHeight = l.cfg.PresetHeights[l.aspect]
	return true
}

// Reconfigure switches to cfg after a reload. Indices are clamped into the
// new lists and the targets follow them; current values keep smoothing from
// where they are.
func (l *Loop) Reconfigure(cfg *config.Config) {
	if l == nil || cfg == nil {
		return
	}
	l.cfg = cfg

	if n := len(cfg.ZoomLevels); n > 0 {
		l.zoom = common.ClampIndex(l.zoom, n)
		l.TargetZoom = cfg.ZoomLevels[l.zoom]
	} else {
		l.zoom = 0
	}
	if n := len(cfg.PresetHeights); n > 0 {
		l.aspect = common.ClampIndex(l.aspect, n)
		l.TargetHeight = cfg.PresetHeights[l.aspect]
	} else {
		l.aspect = 0
	}
}
