package canvas

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ElementType enumerates the block kinds a document may contain.
type ElementType string

const (
	// ElementTypeText renders a block of copy.
	ElementTypeText ElementType = "text"
	// ElementTypeImage renders an image; content holds the alt text or url.
	ElementTypeImage ElementType = "image"
	// ElementTypeButton renders a call-to-action link; content holds the label.
	ElementTypeButton ElementType = "button"
)

// ErrInvalidElementType indicates an element type outside the supported set.
var ErrInvalidElementType = errors.New("canvas: invalid element type")

// ParseElementType validates raw input and returns an ElementType.
func ParseElementType(rawInput string) (ElementType, error) {
	switch ElementType(strings.ToLower(strings.TrimSpace(rawInput))) {
	case ElementTypeText:
		return ElementTypeText, nil
	case ElementTypeImage:
		return ElementTypeImage, nil
	case ElementTypeButton:
		return ElementTypeButton, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidElementType, rawInput)
	}
}

// TextVariant names a typography preset from the design tokens.
type TextVariant string

const (
	TextVariantH1   TextVariant = "h1"
	TextVariantH2   TextVariant = "h2"
	TextVariantBody TextVariant = "body"
)

// Valid reports whether the variant is one of the known presets.
func (v TextVariant) Valid() bool {
	return v == TextVariantH1 || v == TextVariantH2 || v == TextVariantBody
}

// PlaceholderImageURL is used when an image has neither a url nor content.
const PlaceholderImageURL = "https://placehold.co/600x400"

const defaultFontFamily = "Inter, 'Helvetica Neue', Arial, sans-serif"

// Element is one positioned block on the canvas.
type Element struct {
	ID                   string      `json:"id"`
	Type                 ElementType `json:"type"`
	Content              string      `json:"content"`
	Styles               Style       `json:"styles"`
	ImageURL             string      `json:"imageUrl,omitempty"`
	LinkURL              string      `json:"linkUrl,omitempty"`
	OpenInNewTab         bool        `json:"openInNewTab,omitempty"`
	TextStyleKey         TextVariant `json:"textStyleKey,omitempty"`
	MaintainAspectRatio  bool        `json:"maintainAspectRatio,omitempty"`
	IntrinsicAspectRatio float64     `json:"intrinsicAspectRatio,omitempty"`
}

// Clone copies the element and its style map.
func (e Element) Clone() Element {
	clone := e
	clone.Styles = e.Styles.Clone()
	return clone
}

// Position returns the numeric (top, left) of the element, defaulting to zero.
func (e Element) Position() (top, left float64) {
	return e.Styles.Get(PropTop).FloatOr(0), e.Styles.Get(PropLeft).FloatOr(0)
}

var baseElementStyles = map[ElementType]Style{
	ElementTypeText: {
		PropTop:        Number(120),
		PropLeft:       Number(120),
		PropWidth:      Number(360),
		PropMinHeight:  Number(48),
		PropColor:      Text("#111827"),
		PropFontSize:   Number(20),
		PropFontWeight: Number(600),
		PropFontFamily: Text(defaultFontFamily),
		PropLineHeight: Number(1.4),
		PropTextAlign:  Text("left"),
	},
	ElementTypeImage: {
		PropTop:             Number(220),
		PropLeft:            Number(80),
		PropWidth:           Number(440),
		PropHeight:          Number(240),
		PropObjectFit:       Text("cover"),
		PropBorderRadius:    Number(16),
		PropBackgroundColor: Text("#dfe3f5"),
	},
	ElementTypeButton: {
		PropTop:             Number(520),
		PropLeft:            Number(200),
		PropWidth:           Number(200),
		PropHeight:          Number(48),
		PropBackgroundColor: Text("#3F51B5"),
		PropColor:           Text("#ffffff"),
		PropBorderRadius:    Number(999),
		PropFontWeight:      Number(600),
		PropFontFamily:      Text(defaultFontFamily),
		PropTextAlign:       Text("center"),
		PropDisplay:         Text("flex"),
		PropAlignItems:      Text("center"),
		PropJustifyContent:  Text("center"),
	},
}

var defaultContent = map[ElementType]string{
	ElementTypeText:   "Tell your story with confident typography.",
	ElementTypeImage:  PlaceholderImageURL,
	ElementTypeButton: "Explore now",
}

// NewElement creates an element seeded with the type defaults and a fresh identifier.
func NewElement(elementType ElementType) (Element, error) {
	base, ok := baseElementStyles[elementType]
	if !ok {
		return Element{}, fmt.Errorf("%w: %q", ErrInvalidElementType, elementType)
	}
	identifier, err := uuid.NewRandom()
	if err != nil {
		return Element{}, err
	}
	return Element{
		ID:      string(elementType) + "-" + identifier.String(),
		Type:    elementType,
		Content: defaultContent[elementType],
		Styles:  base.Clone(),
	}, nil
}

// CloneElements copies every element and its style map.
func CloneElements(elements []Element) []Element {
	if elements == nil {
		return nil
	}
	clones := make([]Element, len(elements))
	for index, element := range elements {
		clones[index] = element.Clone()
	}
	return clones
}
