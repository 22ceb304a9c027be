// Package interaction turns pointer and keyboard input into element geometry patches.
package interaction

import (
	"math"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/canvas"
)

// MinimumSize is the smallest width or height a resize can produce.
const MinimumSize = 32

const (
	fallbackResizeWidth  = 200
	fallbackResizeHeight = 100
)

// Mode enumerates the gesture states.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeDragging
	ModeResizing
)

func (m Mode) String() string {
	switch m {
	case ModeDragging:
		return "dragging"
	case ModeResizing:
		return "resizing"
	default:
		return "idle"
	}
}

// PrimaryButton is the only pointer button that starts a gesture.
const PrimaryButton = 0

// Point is a pointer position in client coordinates.
type Point struct {
	X float64
	Y float64
}

// Patch is a style change for one element.
type Patch struct {
	TargetID string
	Style    canvas.Style
}

// Machine is the gesture state. Transitions return a new Machine and never mutate the receiver.
type Machine struct {
	mode        Mode
	targetID    string
	origin      Point
	first       float64 // top while dragging, width while resizing
	second      float64 // left while dragging, height while resizing
	latestFirst float64
	latestSec   float64
	aspectRatio float64
}

// Mode returns the current gesture state.
func (m Machine) Mode() Mode {
	return m.mode
}

// TargetID returns the element the in-flight gesture targets, or "".
func (m Machine) TargetID() string {
	return m.targetID
}

// Active reports whether a gesture is in flight.
func (m Machine) Active() bool {
	return m.mode != ModeIdle
}

// BeginDrag starts moving element. It reports false when a gesture is already in flight
// or the button is not the primary one.
func (m Machine) BeginDrag(element canvas.Element, pointer Point, button int) (Machine, bool) {
	if m.mode != ModeIdle || button != PrimaryButton {
		return m, false
	}
	top, left := element.Position()
	return Machine{
		mode:        ModeDragging,
		targetID:    element.ID,
		origin:      pointer,
		first:       top,
		second:      left,
		latestFirst: top,
		latestSec:   left,
	}, true
}

// BeginResize starts resizing element from its corner handle. Missing or zero sizes
// start from 200x100.
func (m Machine) BeginResize(element canvas.Element, pointer Point, button int) (Machine, bool) {
	if m.mode != ModeIdle || button != PrimaryButton {
		return m, false
	}
	width := element.Styles.Get(canvas.PropWidth).FloatOr(0)
	if width == 0 || math.IsNaN(width) {
		width = fallbackResizeWidth
	}
	height := element.Styles.Get(canvas.PropHeight).FloatOr(0)
	if height == 0 || math.IsNaN(height) {
		height = fallbackResizeHeight
	}
	next := Machine{
		mode:        ModeResizing,
		targetID:    element.ID,
		origin:      pointer,
		first:       width,
		second:      height,
		latestFirst: width,
		latestSec:   height,
	}
	if element.Type == canvas.ElementTypeImage && element.MaintainAspectRatio && element.IntrinsicAspectRatio > 0 {
		next.aspectRatio = element.IntrinsicAspectRatio
	}
	return next, true
}

// Move computes the live patch for pointer. In Idle it returns false.
func (m Machine) Move(pointer Point) (Machine, Patch, bool) {
	deltaX := pointer.X - m.origin.X
	deltaY := pointer.Y - m.origin.Y
	switch m.mode {
	case ModeDragging:
		m.latestFirst = m.first + deltaY
		m.latestSec = m.second + deltaX
	case ModeResizing:
		m.latestFirst = math.Max(MinimumSize, m.first+deltaX)
		if m.aspectRatio > 0 {
			m.latestSec = math.Max(MinimumSize, m.latestFirst/m.aspectRatio)
		} else {
			m.latestSec = math.Max(MinimumSize, m.second+deltaY)
		}
	default:
		return m, Patch{}, false
	}
	return m, m.latestPatch(), true
}

// End finishes the gesture and returns the final patch to commit. In Idle it returns false.
func (m Machine) End() (Machine, Patch, bool) {
	if m.mode == ModeIdle {
		return m, Patch{}, false
	}
	return Machine{}, m.latestPatch(), true
}

// Abort drops the gesture without producing a patch.
func (m Machine) Abort() Machine {
	return Machine{}
}

func (m Machine) latestPatch() Patch {
	switch m.mode {
	case ModeDragging:
		return Patch{TargetID: m.targetID, Style: canvas.Style{
			canvas.PropTop:  canvas.Number(m.latestFirst),
			canvas.PropLeft: canvas.Number(m.latestSec),
		}}
	case ModeResizing:
		return Patch{TargetID: m.targetID, Style: canvas.Style{
			canvas.PropWidth:  canvas.Number(m.latestFirst),
			canvas.PropHeight: canvas.Number(m.latestSec),
		}}
	default:
		return Patch{}
	}
}
