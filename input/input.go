package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// gamepadButtons are fixed; only the keyboard is configurable.
var gamepadButtons = map[Action]ebiten.StandardGamepadButton{
	ActionSpawn:      ebiten.StandardGamepadButtonRightTop,
	ActionViewfinder: ebiten.StandardGamepadButtonCenterRight,
	ActionZoomIn:     ebiten.StandardGamepadButtonFrontTopRight,
	ActionZoomOut:    ebiten.StandardGamepadButtonFrontTopLeft,
	ActionAspect:     ebiten.StandardGamepadButtonRightLeft,
	ActionGrid:       ebiten.StandardGamepadButtonRightRight,
	ActionHelp:       ebiten.StandardGamepadButtonCenterLeft,
}

// Input holds the triggers that fired this frame.
type Input struct {
	bindings Bindings
	fired    [actionCount]bool

	keyJustPressed    func(ebiten.Key) bool
	gamepads          func() []ebiten.GamepadID
	buttonJustPressed func(ebiten.GamepadID, ebiten.StandardGamepadButton) bool
}

func New(b Bindings) *Input {
	return &Input{
		bindings:       b,
		keyJustPressed: inpututil.IsKeyJustPressed,
		gamepads: func() []ebiten.GamepadID {
			return ebiten.AppendGamepadIDs(nil)
		},
		buttonJustPressed: inpututil.IsStandardGamepadButtonJustPressed,
	}
}

// SetBindings replaces the keyboard bindings, e.g. after a config reload.
func (i *Input) SetBindings(b Bindings) {
	if i == nil {
		return
	}
	i.bindings = b
}

func (i *Input) Bindings() Bindings {
	if i == nil {
		return DefaultBindings()
	}
	return i.bindings
}

// Update polls once per frame. Each trigger fires on the press edge only.
func (i *Input) Update() {
	if i == nil {
		return
	}
	var pads []ebiten.GamepadID
	if i.gamepads != nil {
		pads = i.gamepads()
	}
	for a := Action(0); a < actionCount; a++ {
		fired := i.keyJustPressed != nil && i.keyJustPressed(i.bindings[a])
		if btn, ok := gamepadButtons[a]; ok && !fired && i.buttonJustPressed != nil {
			for _, id := range pads {
				if i.buttonJustPressed(id, btn) {
					fired = true
					break
				}
			}
		}
		i.fired[a] = fired
	}
}

// Fired reports whether a fired this frame.
func (i *Input) Fired(a Action) bool {
	if i == nil || a < 0 || a >= actionCount {
		return false
	}
	return i.fired[a]
}

// Viewfinder is the set of overlay triggers a frame can fire.
type Viewfinder interface {
	Toggle()
	ZoomIn()
	ZoomOut()
	CycleAspect()
	ToggleGrid()
}

// DriveViewfinder forwards this frame's overlay triggers to v. Zoom, aspect
// and grid act whether or not the overlay is shown.
func (i *Input) DriveViewfinder(v Viewfinder) {
	if i == nil || v == nil {
		return
	}
	if i.Fired(ActionViewfinder) {
		v.Toggle()
	}
	if i.Fired(ActionZoomIn) {
		v.ZoomIn()
	}
	if i.Fired(ActionZoomOut) {
		v.ZoomOut()
	}
	if i.Fired(ActionAspect) {
		v.CycleAspect()
	}
	if i.Fired(ActionGrid) {
		v.ToggleGrid()
	}
}
