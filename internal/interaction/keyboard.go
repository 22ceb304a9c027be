package interaction

import (
	"strings"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/canvas"
)

const (
	nudgeStep      = 1
	nudgeShiftStep = 5
)

// Arrow key names as reported by keyboard events.
const (
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// KeyEvent is a key press delivered to the canvas.
type KeyEvent struct {
	Key         string
	Shift       bool
	Alt         bool
	Ctrl        bool
	Meta        bool
	InTextInput bool
}

// KeyAction is what a key press asks the editor to do.
type KeyAction uint8

const (
	KeyActionNone KeyAction = iota
	KeyActionUndo
	KeyActionRedo
	KeyActionNudge
)

// ClassifyKey maps a key press onto an editor action. Presses inside text inputs
// are left to the input.
func ClassifyKey(event KeyEvent) KeyAction {
	if event.InTextInput {
		return KeyActionNone
	}
	key := strings.ToLower(event.Key)
	if event.Ctrl || event.Meta {
		switch {
		case key == "z" && !event.Shift:
			return KeyActionUndo
		case key == "z" && event.Shift, key == "y":
			return KeyActionRedo
		}
		return KeyActionNone
	}
	if event.Alt || !strings.HasPrefix(event.Key, "Arrow") {
		return KeyActionNone
	}
	return KeyActionNudge
}

// Nudge returns the geometry patch an arrow key applies to element.
func Nudge(element canvas.Element, event KeyEvent) (Patch, bool) {
	if ClassifyKey(event) != KeyActionNudge {
		return Patch{}, false
	}
	step := float64(nudgeStep)
	if event.Shift {
		step = nudgeShiftStep
	}
	top, left := element.Position()
	style := canvas.Style{}
	switch event.Key {
	case KeyArrowUp:
		style[canvas.PropTop] = canvas.Number(top - step)
	case KeyArrowDown:
		style[canvas.PropTop] = canvas.Number(top + step)
	case KeyArrowLeft:
		style[canvas.PropLeft] = canvas.Number(left - step)
	case KeyArrowRight:
		style[canvas.PropLeft] = canvas.Number(left + step)
	default:
		return Patch{}, false
	}
	return Patch{TargetID: element.ID, Style: style}, true
}
