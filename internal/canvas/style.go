package canvas

import (
	"encoding/json"
	"strings"
)

// Property names one entry of the closed style vocabulary.
type Property string

// Geometry and layout properties shared by every element type.
const (
	PropTop       Property = "top"
	PropLeft      Property = "left"
	PropWidth     Property = "width"
	PropHeight    Property = "height"
	PropPosition  Property = "position"
	PropSrc       Property = "src"
	PropObjectFit Property = "objectFit"
	PropZIndex    Property = "zIndex"
)

// Visual properties.
const (
	PropColor           Property = "color"
	PropBackgroundColor Property = "backgroundColor"
	PropFontFamily      Property = "fontFamily"
	PropFontSize        Property = "fontSize"
	PropFontWeight      Property = "fontWeight"
	PropFontStyle       Property = "fontStyle"
	PropLineHeight      Property = "lineHeight"
	PropLetterSpacing   Property = "letterSpacing"
	PropTextAlign       Property = "textAlign"
	PropTextDecoration  Property = "textDecoration"
	PropTextTransform   Property = "textTransform"
	PropPadding         Property = "padding"
	PropMinHeight       Property = "minHeight"
	PropBorderRadius    Property = "borderRadius"
	PropBorderWidth     Property = "borderWidth"
	PropBorderStyle     Property = "borderStyle"
	PropBorderColor     Property = "borderColor"
	PropBoxShadow       Property = "boxShadow"
	PropOpacity         Property = "opacity"
	PropDisplay         Property = "display"
	PropAlignItems      Property = "alignItems"
	PropJustifyContent  Property = "justifyContent"
)

const reservedPrefix = "data-"

type typeMask uint8

const (
	maskText typeMask = 1 << iota
	maskImage
	maskButton

	maskAll     = maskText | maskImage | maskButton
	maskTextual = maskText | maskButton
)

// PropertySpec describes how a property is validated and serialised.
type PropertySpec struct {
	Property Property
	CSSName  string
	Layout   bool
	Unit     string
	types    typeMask
}

// AllowedFor reports whether elements of the given type accept the property.
func (spec PropertySpec) AllowedFor(elementType ElementType) bool {
	return spec.types&maskFor(elementType) != 0
}

// propertyTable fixes the order in which style declarations are serialised.
// fontWeight, lineHeight, zIndex and opacity carry no unit: a px suffix on them
// is invalid CSS, so they render bare even though the exporter they replace
// suffixed everything except fontWeight.
var propertyTable = []PropertySpec{
	{Property: PropTop, Layout: true, Unit: "px", types: maskAll},
	{Property: PropLeft, Layout: true, Unit: "px", types: maskAll},
	{Property: PropWidth, Layout: true, Unit: "px", types: maskAll},
	{Property: PropHeight, Layout: true, Unit: "px", types: maskAll},
	{Property: PropPosition, Layout: true, types: maskAll},
	{Property: PropSrc, Layout: true, types: maskImage},
	{Property: PropObjectFit, Layout: true, types: maskImage},
	{Property: PropZIndex, Layout: true, types: maskAll},
	{Property: PropDisplay, types: maskAll},
	{Property: PropAlignItems, types: maskAll},
	{Property: PropJustifyContent, types: maskAll},
	{Property: PropColor, types: maskTextual},
	{Property: PropBackgroundColor, types: maskAll},
	{Property: PropFontFamily, types: maskTextual},
	{Property: PropFontSize, Unit: "px", types: maskTextual},
	{Property: PropFontWeight, types: maskTextual},
	{Property: PropFontStyle, types: maskTextual},
	{Property: PropLineHeight, types: maskTextual},
	{Property: PropLetterSpacing, Unit: "px", types: maskTextual},
	{Property: PropTextAlign, types: maskTextual},
	{Property: PropTextDecoration, types: maskTextual},
	{Property: PropTextTransform, types: maskTextual},
	{Property: PropPadding, Unit: "px", types: maskTextual},
	{Property: PropMinHeight, Unit: "px", types: maskAll},
	{Property: PropBorderRadius, Unit: "px", types: maskAll},
	{Property: PropBorderWidth, Unit: "px", types: maskAll},
	{Property: PropBorderStyle, types: maskAll},
	{Property: PropBorderColor, types: maskAll},
	{Property: PropBoxShadow, types: maskAll},
	{Property: PropOpacity, types: maskAll},
}

var propertyIndex = buildPropertyIndex()

func buildPropertyIndex() map[Property]PropertySpec {
	index := make(map[Property]PropertySpec, len(propertyTable))
	for position, spec := range propertyTable {
		spec.CSSName = kebabCase(string(spec.Property))
		propertyTable[position] = spec
		index[spec.Property] = spec
	}
	return index
}

// PropertyTable returns the ordered property table.
func PropertyTable() []PropertySpec {
	table := make([]PropertySpec, len(propertyTable))
	copy(table, propertyTable)
	return table
}

// LookupProperty returns the table entry for a known property.
func LookupProperty(property Property) (PropertySpec, bool) {
	spec, ok := propertyIndex[property]
	return spec, ok
}

func maskFor(elementType ElementType) typeMask {
	switch elementType {
	case ElementTypeText:
		return maskText
	case ElementTypeImage:
		return maskImage
	case ElementTypeButton:
		return maskButton
	default:
		return 0
	}
}

func kebabCase(name string) string {
	var builder strings.Builder
	builder.Grow(len(name) + 4)
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			builder.WriteByte('-')
			builder.WriteRune(r + ('a' - 'A'))
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

// Style maps enumerated properties to values.
type Style map[Property]Value

// Get returns the value for property, or an unset Value.
func (s Style) Get(property Property) Value {
	if s == nil {
		return Value{}
	}
	return s[property]
}

// Has reports whether the property carries a value.
func (s Style) Has(property Property) bool {
	return s.Get(property).IsSet()
}

// Clone returns an independent copy. A nil style stays nil.
func (s Style) Clone() Style {
	if s == nil {
		return nil
	}
	clone := make(Style, len(s))
	for property, value := range s {
		clone[property] = value
	}
	return clone
}

// Merge returns a copy of s with patch shallow-merged on top. Keys are never removed.
// Entries the element type does not accept are skipped.
func (s Style) Merge(elementType ElementType, patch Style) Style {
	merged := s.Clone()
	if merged == nil {
		merged = make(Style, len(patch))
	}
	for property, value := range patch {
		spec, ok := propertyIndex[property]
		if !ok || !spec.AllowedFor(elementType) || !value.IsSet() {
			continue
		}
		merged[property] = value
	}
	return merged
}

// Equal compares two styles value by value.
func (s Style) Equal(other Style) bool {
	if len(s) != len(other) {
		return false
	}
	for property, value := range s {
		if otherValue, ok := other[property]; !ok || otherValue != value {
			return false
		}
	}
	return true
}

// UnmarshalJSON decodes a style object, dropping unknown and reserved keys.
func (s *Style) UnmarshalJSON(data []byte) error {
	var raw map[string]Value
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded := make(Style, len(raw))
	for key, value := range raw {
		if strings.HasPrefix(key, reservedPrefix) || !value.IsSet() {
			continue
		}
		property := Property(key)
		if _, ok := propertyIndex[property]; !ok {
			continue
		}
		decoded[property] = value
	}
	*s = decoded
	return nil
}
