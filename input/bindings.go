// Package input maps configured keys and gamepad buttons to the discrete
// triggers the game reacts to.
package input

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/vrcam/config"
)

type Action int

const (
	ActionSpawn Action = iota
	ActionViewfinder
	ActionZoomIn
	ActionZoomOut
	ActionAspect
	ActionGrid
	ActionHelp
	ActionCopy
	ActionQuit
	actionCount
)

func (a Action) String() string {
	switch a {
	case ActionSpawn:
		return "spawn"
	case ActionViewfinder:
		return "viewfinder"
	case ActionZoomIn:
		return "zoom_in"
	case ActionZoomOut:
		return "zoom_out"
	case ActionAspect:
		return "aspect"
	case ActionGrid:
		return "grid"
	case ActionHelp:
		return "help"
	case ActionCopy:
		return "copy"
	case ActionQuit:
		return "quit"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Actions lists every action in order.
func Actions() []Action {
	out := make([]Action, 0, actionCount)
	for a := Action(0); a < actionCount; a++ {
		out = append(out, a)
	}
	return out
}

// Bindings holds one key per action. Several actions may share a key; all of
// them fire on the same press.
type Bindings [actionCount]ebiten.Key

// DefaultBindings matches config.Default plus the fixed tool keys.
func DefaultBindings() Bindings {
	var b Bindings
	b[ActionSpawn] = ebiten.KeyL
	b[ActionViewfinder] = ebiten.KeyL
	b[ActionZoomIn] = ebiten.KeyK
	b[ActionZoomOut] = ebiten.KeyJ
	b[ActionAspect] = ebiten.KeyH
	b[ActionGrid] = ebiten.KeyU
	b[ActionHelp] = ebiten.KeyF1
	b[ActionCopy] = ebiten.KeyC
	b[ActionQuit] = ebiten.KeyF12
	return b
}

// ParseKey accepts ebiten key names, case-insensitively ("L", "f1",
// "ArrowUp").
func ParseKey(name string) (ebiten.Key, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("input: empty key name")
	}
	var k ebiten.Key
	if err := k.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("input: key %q: %w", name, err)
	}
	return k, nil
}

// FromConfig builds bindings from the configured key names. A name that does
// not parse keeps the default key and is reported.
func FromConfig(keys config.Keys) (Bindings, []error) {
	b := DefaultBindings()
	var errs []error
	set := func(a Action, name string) {
		k, err := ParseKey(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a, err))
			return
		}
		b[a] = k
	}
	set(ActionSpawn, keys.Spawn)
	set(ActionViewfinder, keys.Viewfinder)
	set(ActionZoomIn, keys.ZoomIn)
	set(ActionZoomOut, keys.ZoomOut)
	set(ActionAspect, keys.Aspect)
	set(ActionGrid, keys.Grid)
	return b, errs
}
