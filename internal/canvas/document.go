package canvas

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"
)

const defaultTokenFontFamily = "Inter, system-ui, -apple-system, BlinkMacSystemFont, sans-serif"

// PageHeight is either "auto" or a fixed number of logical pixels.
type PageHeight struct {
	fixed bool
	value float64
}

// AutoHeight returns a height derived from the content.
func AutoHeight() PageHeight {
	return PageHeight{}
}

// FixedHeight returns a fixed height.
func FixedHeight(value float64) PageHeight {
	return PageHeight{fixed: true, value: value}
}

// Fixed returns the fixed height and true, or false when the height is auto.
func (h PageHeight) Fixed() (float64, bool) {
	return h.value, h.fixed
}

// MarshalJSON encodes auto as the string "auto".
func (h PageHeight) MarshalJSON() ([]byte, error) {
	if !h.fixed {
		return []byte(`"auto"`), nil
	}
	return []byte(strconv.FormatFloat(h.value, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts "auto", a number, or a numeric string.
func (h *PageHeight) UnmarshalJSON(data []byte) error {
	var value Value
	if err := value.UnmarshalJSON(bytes.TrimSpace(data)); err != nil {
		return err
	}
	number, ok := value.Float()
	if !ok {
		*h = AutoHeight()
		return nil
	}
	*h = FixedHeight(number)
	return nil
}

// PageSettings describes the email content column.
type PageSettings struct {
	Width           float64    `json:"width"`
	Height          PageHeight `json:"height"`
	BackgroundColor string     `json:"backgroundColor"`
	Padding         float64    `json:"padding"`
}

// TextStyle is a typography preset.
type TextStyle struct {
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	FontWeight float64 `json:"fontWeight"`
	LineHeight float64 `json:"lineHeight"`
}

// Patch returns the preset as a style patch.
func (t TextStyle) Patch() Style {
	return Style{
		PropFontFamily: Text(t.FontFamily),
		PropFontSize:   Number(t.FontSize),
		PropFontWeight: Number(t.FontWeight),
		PropLineHeight: Number(t.LineHeight),
	}
}

// TextStyles groups the named typography presets.
type TextStyles struct {
	H1   TextStyle `json:"h1"`
	H2   TextStyle `json:"h2"`
	Body TextStyle `json:"body"`
}

// Lookup returns the preset for a variant.
func (t TextStyles) Lookup(variant TextVariant) (TextStyle, bool) {
	switch variant {
	case TextVariantH1:
		return t.H1, true
	case TextVariantH2:
		return t.H2, true
	case TextVariantBody:
		return t.Body, true
	default:
		return TextStyle{}, false
	}
}

// DesignTokens carries reusable typography and colour presets.
type DesignTokens struct {
	TextStyles    TextStyles `json:"textStyles"`
	ColorSwatches []string   `json:"colorSwatches"`
}

// Document is the complete editable state and the unit of persistence and undo.
type Document struct {
	Elements []Element    `json:"elements"`
	Page     PageSettings `json:"page"`
	Tokens   DesignTokens `json:"tokens"`
}

// DefaultPageSettings returns the page used by new documents.
func DefaultPageSettings() PageSettings {
	return PageSettings{
		Width:           600,
		Height:          AutoHeight(),
		BackgroundColor: "#ffffff",
		Padding:         24,
	}
}

// DefaultDesignTokens returns the token set used by new documents.
func DefaultDesignTokens() DesignTokens {
	return DesignTokens{
		TextStyles: TextStyles{
			H1:   TextStyle{FontFamily: defaultTokenFontFamily, FontSize: 28, FontWeight: 700, LineHeight: 1.2},
			H2:   TextStyle{FontFamily: defaultTokenFontFamily, FontSize: 22, FontWeight: 600, LineHeight: 1.3},
			Body: TextStyle{FontFamily: defaultTokenFontFamily, FontSize: 16, FontWeight: 400, LineHeight: 1.5},
		},
		ColorSwatches: []string{"#111827", "#2563EB", "#F97316", "#10B981"},
	}
}

// NewDocument builds a document with default page settings and tokens.
func NewDocument(elements []Element) Document {
	return Document{
		Elements: elements,
		Page:     DefaultPageSettings(),
		Tokens:   DefaultDesignTokens(),
	}
}

// Clone returns a value-independent copy of the document.
func (d Document) Clone() Document {
	clone := d
	clone.Elements = CloneElements(d.Elements)
	clone.Tokens.ColorSwatches = slices.Clone(d.Tokens.ColorSwatches)
	return clone
}

// IndexOf returns the position of the element with id, or -1.
func (d Document) IndexOf(id string) int {
	for index, element := range d.Elements {
		if element.ID == id {
			return index
		}
	}
	return -1
}

// Element returns the element with id.
func (d Document) Element(id string) (Element, bool) {
	index := d.IndexOf(id)
	if index < 0 {
		return Element{}, false
	}
	return d.Elements[index], true
}

// FirstElementID returns the id of the first element, or "" for an empty document.
func (d Document) FirstElementID() string {
	if len(d.Elements) == 0 {
		return ""
	}
	return d.Elements[0].ID
}

// MarshalJSON always emits an elements array, never null.
func (d Document) MarshalJSON() ([]byte, error) {
	type documentAlias Document
	alias := documentAlias(d)
	if alias.Elements == nil {
		alias.Elements = []Element{}
	}
	if alias.Tokens.ColorSwatches == nil {
		alias.Tokens.ColorSwatches = []string{}
	}
	return json.Marshal(alias)
}
