package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/canvas"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/interaction"
)

var (
	// ErrUnknownAction indicates a script step names no supported action.
	ErrUnknownAction = errors.New("editor: unknown action")
	// ErrNoTarget indicates a step needs an element but none is named or selected.
	ErrNoTarget = errors.New("editor: no target element")
)

// ScriptPoint is a pointer position in canvas coordinates.
type ScriptPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Step is one scripted editor action. Steps without an id act on the selection.
type Step struct {
	Action       string              `json:"action"`
	ID           string              `json:"id,omitempty"`
	Over         string              `json:"over,omitempty"`
	Type         canvas.ElementType  `json:"type,omitempty"`
	Content      string              `json:"content,omitempty"`
	Styles       canvas.Style        `json:"styles,omitempty"`
	ImageURL     *string             `json:"imageUrl,omitempty"`
	LinkURL      *string             `json:"linkUrl,omitempty"`
	OpenInNewTab *bool               `json:"openInNewTab,omitempty"`
	TextStyleKey *canvas.TextVariant `json:"textStyleKey,omitempty"`
	From         ScriptPoint         `json:"from"`
	To           ScriptPoint         `json:"to"`
	Key          string              `json:"key,omitempty"`
	Shift        bool                `json:"shift,omitempty"`
	Ctrl         bool                `json:"ctrl,omitempty"`
	Meta         bool                `json:"meta,omitempty"`
	Alt          bool                `json:"alt,omitempty"`
	Color        string              `json:"color,omitempty"`
	Variant      canvas.TextVariant  `json:"variant,omitempty"`
	Font         string              `json:"font,omitempty"`
	Palette      string              `json:"palette,omitempty"`
	Page         *canvas.PagePatch   `json:"page,omitempty"`
}

// DecodeScript reads a JSON array of steps.
func DecodeScript(r io.Reader) ([]Step, error) {
	var steps []Step
	if err := json.NewDecoder(r).Decode(&steps); err != nil {
		return nil, fmt.Errorf("editor: decode script: %w", err)
	}
	return steps, nil
}

// Run applies steps in order, stopping at the first failing step.
func (s *Session) Run(steps []Step) error {
	for index, step := range steps {
		if err := s.runStep(step); err != nil {
			return fmt.Errorf("step %d (%s): %w", index+1, step.Action, err)
		}
	}
	return nil
}

func (s *Session) runStep(step Step) error {
	switch step.Action {
	case "add":
		_, err := s.AddElement(step.Type)
		return err
	case "select":
		if !s.Select(step.ID) {
			return ErrNoTarget
		}
	case "deselect":
		s.ClickCanvas()
	case "delete":
		return s.withTarget(step, s.DeleteElement)
	case "reorder":
		return s.withTarget(step, func(id string) { s.ReorderElement(id, step.Over) })
	case "content":
		return s.withTarget(step, func(id string) { s.SetContent(id, step.Content) })
	case "style":
		return s.withTarget(step, func(id string) { s.SetStyle(id, step.Styles, true) })
	case "meta":
		return s.withTarget(step, func(id string) {
			s.SetMeta(id, canvas.ElementMeta{
				ImageURL:     step.ImageURL,
				LinkURL:      step.LinkURL,
				OpenInNewTab: step.OpenInNewTab,
				TextStyleKey: step.TextStyleKey,
			}, true)
		})
	case "drag", "resize":
		return s.withTarget(step, func(id string) {
			from := interaction.Point{X: step.From.X, Y: step.From.Y}
			if s.PointerDown(id, from, interaction.PrimaryButton, step.Action == "resize") {
				s.PointerMove(interaction.Point{X: step.To.X, Y: step.To.Y})
				s.PointerUp()
			}
		})
	case "key":
		s.HandleKey(interaction.KeyEvent{Key: step.Key, Shift: step.Shift, Ctrl: step.Ctrl, Meta: step.Meta, Alt: step.Alt})
	case "textStyle":
		s.ApplyTextStyle(step.Variant)
	case "swatch":
		s.ApplyColorSwatch(step.Color)
	case "addSwatch":
		if step.Color == "" {
			s.AddSwatchFromSelection()
		} else {
			s.AddSwatch(step.Color)
		}
	case "removeSwatch":
		s.RemoveSwatch(step.Color)
	case "font":
		s.ApplyFonts([]string{step.Font})
	case "palette":
		s.ApplyPalettes([]string{step.Palette})
	case "page":
		if step.Page != nil {
			s.UpdatePage(*step.Page)
		}
	case "undo":
		s.Undo()
	case "redo":
		s.Redo()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, step.Action)
	}
	return nil
}

func (s *Session) withTarget(step Step, fn func(id string)) error {
	id := step.ID
	if id == "" {
		id = s.selected
	}
	if _, ok := s.document.Element(id); !ok {
		return ErrNoTarget
	}
	fn(id)
	return nil
}
