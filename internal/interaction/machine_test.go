package interaction

import (
	"testing"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/canvas"
)

func sizedElement(t *testing.T, elementType canvas.ElementType, width, height float64) canvas.Element {
	t.Helper()
	element, err := canvas.NewElement(elementType)
	if err != nil {
		t.Fatalf("unexpected element error: %v", err)
	}
	element.Styles = element.Styles.Merge(elementType, canvas.Style{
		canvas.PropTop:    canvas.Number(10),
		canvas.PropLeft:   canvas.Number(20),
		canvas.PropWidth:  canvas.Number(width),
		canvas.PropHeight: canvas.Number(height),
	})
	return element
}

func TestDragAppliesPointerDelta(t *testing.T) {
	element := sizedElement(t, canvas.ElementTypeText, 200, 80)
	machine, started := Machine{}.BeginDrag(element, Point{X: 100, Y: 100}, PrimaryButton)
	if !started || machine.Mode() != ModeDragging {
		t.Fatalf("expected drag to start")
	}

	machine, live, ok := machine.Move(Point{X: 130, Y: 90})
	if !ok {
		t.Fatalf("expected live patch")
	}
	if live.Style.Get(canvas.PropTop) != canvas.Number(0) || live.Style.Get(canvas.PropLeft) != canvas.Number(50) {
		t.Fatalf("unexpected live patch %v", live.Style)
	}

	machine, live, _ = machine.Move(Point{X: 105, Y: 140})
	idle, final, ok := machine.End()
	if !ok || idle.Mode() != ModeIdle {
		t.Fatalf("expected end to return to idle")
	}
	if !final.Style.Equal(live.Style) || final.TargetID != element.ID {
		t.Fatalf("expected final patch to carry the latest live value, got %v", final.Style)
	}
	if final.Style.Get(canvas.PropTop) != canvas.Number(50) || final.Style.Get(canvas.PropLeft) != canvas.Number(25) {
		t.Fatalf("unexpected final patch %v", final.Style)
	}
}

func TestResizeClampsToMinimum(t *testing.T) {
	element := sizedElement(t, canvas.ElementTypeButton, 40, 40)
	machine, _ := Machine{}.BeginResize(element, Point{X: 0, Y: 0}, PrimaryButton)
	machine, _, _ = machine.Move(Point{X: -1000, Y: -1000})
	_, final, _ := machine.End()
	if final.Style.Get(canvas.PropWidth) != canvas.Number(32) || final.Style.Get(canvas.PropHeight) != canvas.Number(32) {
		t.Fatalf("expected 32x32, got %v", final.Style)
	}
}

func TestResizeDefaultsMissingSize(t *testing.T) {
	element, err := canvas.NewElement(canvas.ElementTypeText)
	if err != nil {
		t.Fatalf("unexpected element error: %v", err)
	}
	element.Styles[canvas.PropWidth] = canvas.Number(0)
	machine, _ := Machine{}.BeginResize(element, Point{}, PrimaryButton)
	_, patch, _ := machine.Move(Point{X: 10, Y: 10})
	if patch.Style.Get(canvas.PropWidth) != canvas.Number(210) || patch.Style.Get(canvas.PropHeight) != canvas.Number(110) {
		t.Fatalf("expected resize from 200x100 defaults, got %v", patch.Style)
	}
}

func TestResizeKeepsImageAspectRatio(t *testing.T) {
	element := sizedElement(t, canvas.ElementTypeImage, 400, 200)
	element.MaintainAspectRatio = true
	element.IntrinsicAspectRatio = 2
	machine, _ := Machine{}.BeginResize(element, Point{}, PrimaryButton)

	_, patch, _ := machine.Move(Point{X: 100, Y: -150})
	if patch.Style.Get(canvas.PropWidth) != canvas.Number(500) || patch.Style.Get(canvas.PropHeight) != canvas.Number(250) {
		t.Fatalf("expected ratio-locked 500x250, got %v", patch.Style)
	}

	_, tiny, _ := machine.Move(Point{X: -1000})
	if tiny.Style.Get(canvas.PropWidth) != canvas.Number(32) || tiny.Style.Get(canvas.PropHeight) != canvas.Number(32) {
		t.Fatalf("expected minimum size to win over ratio, got %v", tiny.Style)
	}
}

func TestGestureStartsOnlyFromIdleWithPrimaryButton(t *testing.T) {
	element := sizedElement(t, canvas.ElementTypeText, 100, 100)
	if _, started := (Machine{}).BeginDrag(element, Point{}, 2); started {
		t.Fatalf("expected secondary button to be ignored")
	}
	dragging, _ := Machine{}.BeginDrag(element, Point{}, PrimaryButton)
	if next, started := dragging.BeginResize(element, Point{}, PrimaryButton); started || next.Mode() != ModeDragging {
		t.Fatalf("expected resize to be refused while dragging")
	}
}

func TestIdleTransitionsAreNoOps(t *testing.T) {
	var machine Machine
	if _, _, ok := machine.Move(Point{X: 5}); ok {
		t.Fatalf("expected move in idle to produce nothing")
	}
	if _, _, ok := machine.End(); ok {
		t.Fatalf("expected end in idle to produce nothing")
	}
	dragging, _ := machine.BeginDrag(sizedElement(t, canvas.ElementTypeText, 1, 1), Point{}, PrimaryButton)
	if dragging.Abort().Active() {
		t.Fatalf("expected abort to return to idle")
	}
}

func TestClassifyKey(t *testing.T) {
	testCases := []struct {
		name  string
		event KeyEvent
		want  KeyAction
	}{
		{name: "undo", event: KeyEvent{Key: "z", Ctrl: true}, want: KeyActionUndo},
		{name: "undo meta", event: KeyEvent{Key: "Z", Meta: true}, want: KeyActionUndo},
		{name: "redo shift z", event: KeyEvent{Key: "Z", Ctrl: true, Shift: true}, want: KeyActionRedo},
		{name: "redo y", event: KeyEvent{Key: "y", Meta: true}, want: KeyActionRedo},
		{name: "arrow", event: KeyEvent{Key: KeyArrowLeft}, want: KeyActionNudge},
		{name: "arrow with alt", event: KeyEvent{Key: KeyArrowLeft, Alt: true}, want: KeyActionNone},
		{name: "text input", event: KeyEvent{Key: "z", Ctrl: true, InTextInput: true}, want: KeyActionNone},
		{name: "letter", event: KeyEvent{Key: "a"}, want: KeyActionNone},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := ClassifyKey(testCase.event); got != testCase.want {
				t.Fatalf("ClassifyKey(%+v) = %d, want %d", testCase.event, got, testCase.want)
			}
		})
	}
}

func TestNudgeSteps(t *testing.T) {
	element := sizedElement(t, canvas.ElementTypeText, 100, 100)
	patch, ok := Nudge(element, KeyEvent{Key: KeyArrowDown})
	if !ok || patch.Style.Get(canvas.PropTop) != canvas.Number(11) || patch.Style.Has(canvas.PropLeft) {
		t.Fatalf("unexpected nudge patch %v", patch.Style)
	}
	patch, _ = Nudge(element, KeyEvent{Key: KeyArrowLeft, Shift: true})
	if patch.Style.Get(canvas.PropLeft) != canvas.Number(15) {
		t.Fatalf("expected shift nudge of 5, got %v", patch.Style)
	}
	if _, ok := Nudge(element, KeyEvent{Key: KeyArrowUp, InTextInput: true}); ok {
		t.Fatalf("expected nudge to be ignored inside text inputs")
	}
}
