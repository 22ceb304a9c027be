package canvas

import (
	"slices"
	"strings"
)

// Palette is a named colour preset applied to a whole document.
type Palette struct {
	Name    string
	Primary string
	Accent  string
	Text    string
}

// DefaultPaletteName is used when a palette name is not recognised.
const DefaultPaletteName = "Blue & Silver"

var palettePresets = []Palette{
	{Name: "Blue & Silver", Primary: "#3F51B5", Accent: "#E0E7FF", Text: "#1F2937"},
	{Name: "Warm Coral", Primary: "#F97316", Accent: "#FED7AA", Text: "#7C2D12"},
	{Name: "Emerald Focus", Primary: "#059669", Accent: "#A7F3D0", Text: "#064E3B"},
	{Name: "Violet & Charcoal", Primary: "#7C3AED", Accent: "#EDE9FE", Text: "#312E81"},
	{Name: "Soft Lilac", Primary: "#C084FC", Accent: "#F5F3FF", Text: "#4C1D95"},
	{Name: "Deep Purple", Primary: "#6D28D9", Accent: "#DDD6FE", Text: "#2E1065"},
}

// Palettes returns the palette presets in display order.
func Palettes() []Palette {
	return slices.Clone(palettePresets)
}

// LookupPalette returns the named preset, falling back to the default palette.
func LookupPalette(name string) (Palette, bool) {
	for _, palette := range palettePresets {
		if palette.Name == name {
			return palette, true
		}
	}
	return palettePresets[0], false
}

// headingFontSize is the size from which text is treated as a heading by ApplyPalette.
const headingFontSize = 28

// IsHexColor reports whether value looks like #rgb, #rrggbb or #rrggbbaa.
func IsHexColor(value string) bool {
	if !strings.HasPrefix(value, "#") {
		return false
	}
	digits := value[1:]
	switch len(digits) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for _, r := range digits {
		isHex := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
		if !isHex {
			return false
		}
	}
	return true
}

// AddSwatch appends color to the swatch list. Invalid or duplicate colours leave the
// document unchanged and report false.
func AddSwatch(doc Document, color string) (Document, bool) {
	normalized := strings.TrimSpace(color)
	if !IsHexColor(normalized) {
		return doc, false
	}
	for _, swatch := range doc.Tokens.ColorSwatches {
		if strings.EqualFold(swatch, normalized) {
			return doc, false
		}
	}
	next := doc
	next.Tokens.ColorSwatches = append(slices.Clone(doc.Tokens.ColorSwatches), normalized)
	return next, true
}

// RemoveSwatch drops color from the swatch list.
func RemoveSwatch(doc Document, color string) Document {
	index := slices.IndexFunc(doc.Tokens.ColorSwatches, func(swatch string) bool {
		return strings.EqualFold(swatch, strings.TrimSpace(color))
	})
	if index < 0 {
		return doc
	}
	next := doc
	next.Tokens.ColorSwatches = slices.Delete(slices.Clone(doc.Tokens.ColorSwatches), index, index+1)
	return next
}

// TokenPatch carries optional replacements for the design tokens.
type TokenPatch struct {
	H1            *TextStyle
	H2            *TextStyle
	Body          *TextStyle
	ColorSwatches []string
}

// PatchTokens merges patch into the document tokens. Swatches are de-duplicated
// keeping first occurrence; invalid colours are skipped.
func PatchTokens(doc Document, patch TokenPatch) Document {
	next := doc
	if patch.H1 != nil {
		next.Tokens.TextStyles.H1 = *patch.H1
	}
	if patch.H2 != nil {
		next.Tokens.TextStyles.H2 = *patch.H2
	}
	if patch.Body != nil {
		next.Tokens.TextStyles.Body = *patch.Body
	}
	if patch.ColorSwatches != nil {
		next.Tokens.ColorSwatches = []string{}
		for _, color := range patch.ColorSwatches {
			next, _ = AddSwatch(next, color)
		}
	}
	return next
}

// PagePatch carries optional replacements for page settings.
type PagePatch struct {
	Width           *float64
	Height          *PageHeight
	BackgroundColor *string
	Padding         *float64
}

// PatchPage merges patch into the page settings. Non-positive sizes and negative
// padding are ignored.
func PatchPage(doc Document, patch PagePatch) Document {
	next := doc
	if patch.Width != nil && *patch.Width > 0 {
		next.Page.Width = *patch.Width
	}
	if patch.Height != nil {
		if height, fixed := patch.Height.Fixed(); !fixed || height > 0 {
			next.Page.Height = *patch.Height
		}
	}
	if patch.BackgroundColor != nil && strings.TrimSpace(*patch.BackgroundColor) != "" {
		next.Page.BackgroundColor = strings.TrimSpace(*patch.BackgroundColor)
	}
	if patch.Padding != nil && *patch.Padding >= 0 {
		next.Page.Padding = *patch.Padding
	}
	return next
}

// ApplyTextStyle copies a typography preset onto a text element and tags it with the variant.
func ApplyTextStyle(doc Document, id string, variant TextVariant) Document {
	preset, ok := doc.Tokens.TextStyles.Lookup(variant)
	if !ok {
		return doc
	}
	element, found := doc.Element(id)
	if !found || element.Type != ElementTypeText {
		return doc
	}
	return updateElement(doc, id, func(element Element) Element {
		element.Styles = element.Styles.Merge(element.Type, preset.Patch())
		element.TextStyleKey = variant
		return element
	})
}

// ApplyColorSwatch colours the text of text elements and the background of anything else.
func ApplyColorSwatch(doc Document, id string, color string) Document {
	element, found := doc.Element(id)
	if !found || strings.TrimSpace(color) == "" {
		return doc
	}
	property := PropBackgroundColor
	if element.Type == ElementTypeText {
		property = PropColor
	}
	return PatchElementStyle(doc, id, Style{property: Text(strings.TrimSpace(color))})
}

// SwatchCandidate returns the colour of element a swatch would be created from.
func SwatchCandidate(element Element) string {
	if element.Type == ElementTypeText {
		return element.Styles.Get(PropColor).String()
	}
	return element.Styles.Get(PropBackgroundColor).String()
}

// ApplyFont sets fontFamily on every text element.
func ApplyFont(doc Document, fontFamily string) Document {
	family := strings.TrimSpace(fontFamily)
	if family == "" {
		return doc
	}
	return MapElements(doc, func(element Element) Element {
		if element.Type != ElementTypeText {
			return element
		}
		element.Styles = element.Styles.Merge(element.Type, Style{PropFontFamily: Text(family)})
		return element
	})
}

// ApplyPalette recolours buttons and text with the named palette.
func ApplyPalette(doc Document, name string) Document {
	palette, _ := LookupPalette(name)
	return MapElements(doc, func(element Element) Element {
		switch element.Type {
		case ElementTypeButton:
			element.Styles = element.Styles.Merge(element.Type, Style{
				PropBackgroundColor: Text(palette.Primary),
				PropColor:           Text("#ffffff"),
				PropBoxShadow:       Text("0 10px 25px " + palette.Primary + "33"),
			})
		case ElementTypeText:
			color := palette.Text
			if element.Styles.Get(PropFontSize).FloatOr(18) >= headingFontSize {
				color = palette.Primary
			}
			element.Styles = element.Styles.Merge(element.Type, Style{PropColor: Text(color)})
		}
		return element
	})
}
