package editor

import (
	"errors"
	"strings"
	"testing"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/canvas"
)

func TestRunScript(t *testing.T) {
	session := newTestSession(t, &countingListeners{})
	textID := session.Document().Elements[0].ID

	steps, err := DecodeScript(strings.NewReader(`[
		{"action":"content","content":"Welcome"},
		{"action":"drag","from":{"x":0,"y":0},"to":{"x":10,"y":20}},
		{"action":"key","key":"ArrowDown","shift":true},
		{"action":"add","type":"button"},
		{"action":"undo"},
		{"action":"style","id":"` + textID + `","styles":{"color":"#ff0000","data-x":"1"}},
		{"action":"page","page":{"width":640,"height":"auto"}}
	]`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if err := session.Run(steps); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	document := session.Document()
	if len(document.Elements) != 3 {
		t.Fatalf("expected the added button to be undone, got %d elements", len(document.Elements))
	}
	text, _ := document.Element(textID)
	if text.Content != "Welcome" {
		t.Fatalf("unexpected content %q", text.Content)
	}
	if text.Styles.Get(canvas.PropTop) != canvas.Number(145) || text.Styles.Get(canvas.PropLeft) != canvas.Number(130) {
		t.Fatalf("unexpected geometry %v", text.Styles)
	}
	if text.Styles.Get(canvas.PropColor) != canvas.Text("#ff0000") {
		t.Fatalf("expected colour patch, got %v", text.Styles.Get(canvas.PropColor))
	}
	if document.Page.Width != 640 {
		t.Fatalf("expected page width 640, got %v", document.Page.Width)
	}
	if session.Listening() {
		t.Fatalf("expected listeners released after scripted gesture")
	}
}

func TestRunScriptErrors(t *testing.T) {
	testCases := []struct {
		name string
		step Step
		want error
	}{
		{"unknown action", Step{Action: "explode"}, ErrUnknownAction},
		{"missing target", Step{Action: "content", ID: "nope", Content: "x"}, ErrNoTarget},
		{"select missing", Step{Action: "select", ID: "nope"}, ErrNoTarget},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			session := newTestSession(t, nil)
			err := session.Run([]Step{{Action: "deselect"}, testCase.step})
			if !errors.Is(err, testCase.want) {
				t.Fatalf("expected %v, got %v", testCase.want, err)
			}
			if !strings.HasPrefix(err.Error(), "step 2") {
				t.Fatalf("expected step position in error, got %q", err.Error())
			}
		})
	}
}

func TestDecodeScriptRejectsMalformedInput(t *testing.T) {
	if _, err := DecodeScript(strings.NewReader(`{"action":"add"}`)); err == nil {
		t.Fatalf("expected an error for a non-array script")
	}
}
