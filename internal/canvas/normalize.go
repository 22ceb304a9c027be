package canvas

import (
	"bytes"
	"encoding/json"
)

// NormalizeDocument decodes stored canvas state. A bare element array is treated as a
// legacy document; missing page or token sections are filled with defaults; anything
// undecodable yields an empty default document.
func NormalizeDocument(raw []byte) Document {
	defaults := NewDocument(nil)
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return defaults
	}

	if trimmed[0] == '[' {
		var elements []Element
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return defaults
		}
		defaults.Elements = sanitizeElements(elements)
		return defaults
	}

	var partial struct {
		Elements json.RawMessage `json:"elements"`
		Page     *PageSettings   `json:"page"`
		Tokens   *DesignTokens   `json:"tokens"`
	}
	if err := json.Unmarshal(trimmed, &partial); err != nil {
		return defaults
	}

	doc := defaults
	if len(partial.Elements) > 0 && partial.Elements[0] == '[' {
		var elements []Element
		if err := json.Unmarshal(partial.Elements, &elements); err == nil {
			doc.Elements = sanitizeElements(elements)
		}
	}
	if partial.Page != nil {
		doc.Page = *partial.Page
	}
	if partial.Tokens != nil {
		doc.Tokens = *partial.Tokens
	}
	return doc
}

// sanitizeElements drops elements with an unknown type or no id and guarantees the
// required geometry keys.
func sanitizeElements(elements []Element) []Element {
	sanitized := make([]Element, 0, len(elements))
	seen := make(map[string]struct{}, len(elements))
	for _, element := range elements {
		if _, err := ParseElementType(string(element.Type)); err != nil || element.ID == "" {
			continue
		}
		if _, duplicate := seen[element.ID]; duplicate {
			continue
		}
		seen[element.ID] = struct{}{}
		base := baseElementStyles[element.Type]
		geometry := Style{}
		for _, property := range []Property{PropTop, PropLeft, PropWidth} {
			if !element.Styles.Has(property) {
				geometry[property] = base[property]
			}
		}
		if len(geometry) > 0 {
			element.Styles = element.Styles.Merge(element.Type, geometry)
		}
		sanitized = append(sanitized, element)
	}
	return sanitized
}

// LegacyNode is a block from the row-based builder.
type LegacyNode struct {
	ID    string         `json:"id"`
	Type  ElementType    `json:"type"`
	Props LegacyNodeProp `json:"props"`
}

// LegacyNodeProp holds the union of row-builder node props.
type LegacyNodeProp struct {
	Text     string  `json:"text,omitempty"`
	Align    string  `json:"align,omitempty"`
	Color    string  `json:"color,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`
	URL      string  `json:"url,omitempty"`
	Alt      string  `json:"alt,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Label    string  `json:"label,omitempty"`
	Link     string  `json:"link,omitempty"`
	Variant  string  `json:"variant,omitempty"`
}

// MigrateLegacyNodes converts row-builder nodes into positioned elements stacked
// down the page in their original order.
func MigrateLegacyNodes(nodes []LegacyNode) []Element {
	elements := make([]Element, 0, len(nodes))
	for index, node := range nodes {
		offset := float64(index)
		switch node.Type {
		case ElementTypeText:
			styles := baseElementStyles[ElementTypeText].Merge(ElementTypeText, Style{
				PropTop:       Number(80 + offset*120),
				PropLeft:      Number(80),
				PropColor:     Text(node.Props.Color),
				PropTextAlign: Text(node.Props.Align),
			})
			if node.Props.FontSize > 0 {
				styles[PropFontSize] = Number(node.Props.FontSize)
			}
			elements = append(elements, Element{ID: node.ID, Type: ElementTypeText, Content: node.Props.Text, Styles: styles})
		case ElementTypeImage:
			content := node.Props.URL
			if content == "" {
				content = node.Props.Alt
			}
			styles := baseElementStyles[ElementTypeImage].Merge(ElementTypeImage, Style{PropTop: Number(140 + offset*140)})
			if node.Props.Width > 0 {
				styles[PropWidth] = Number(node.Props.Width)
			}
			elements = append(elements, Element{ID: node.ID, Type: ElementTypeImage, Content: content, ImageURL: node.Props.URL, Styles: styles})
		case ElementTypeButton:
			background, color, border := "#ffffff", "#111827", "#111827"
			if node.Props.Variant == "primary" {
				background, color, border = "#3F51B5", "#ffffff", "transparent"
			}
			link := node.Props.Link
			if link == "" {
				link = node.Props.URL
			}
			styles := baseElementStyles[ElementTypeButton].Merge(ElementTypeButton, Style{
				PropBackgroundColor: Text(background),
				PropColor:           Text(color),
				PropBorderColor:     Text(border),
				PropTop:             Number(180 + offset*100),
			})
			elements = append(elements, Element{ID: node.ID, Type: ElementTypeButton, Content: node.Props.Label, LinkURL: link, Styles: styles})
		}
	}
	return elements
}

type starterImage struct {
	url   string
	label string
}

var starterImages = []starterImage{
	{url: "https://images.unsplash.com/photo-1500530855697-b586d89ba3ee?auto=format&fit=crop&w=800&q=80", label: "Creative workspace"},
	{url: "https://images.unsplash.com/photo-1529333166437-7750a6dd5a70?auto=format&fit=crop&w=800&q=80", label: "Minimal interior"},
	{url: "https://images.unsplash.com/photo-1517248135467-4c7edcad34c4?auto=format&fit=crop&w=800&q=80", label: "Lifestyle moment"},
}

// StarterElements returns the heading, body copy, hero image and call to action that
// seed a new canvas.
func StarterElements() ([]Element, error) {
	heading, err := NewElement(ElementTypeText)
	if err != nil {
		return nil, err
	}
	heading.Content = "Design with intention"
	heading.Styles = heading.Styles.Merge(heading.Type, Style{
		PropTop: Number(40), PropLeft: Number(80), PropWidth: Number(360),
		PropFontSize: Number(36), PropFontWeight: Number(700), PropLineHeight: Number(1.25),
	})

	body, err := NewElement(ElementTypeText)
	if err != nil {
		return nil, err
	}
	body.Content = "Compose modular sections, drag them into place, and export production-ready HTML in seconds."
	body.Styles = body.Styles.Merge(body.Type, Style{
		PropTop: Number(120), PropLeft: Number(80), PropWidth: Number(360),
		PropFontSize: Number(18), PropFontWeight: Number(400), PropColor: Text("#4c4f65"),
	})

	hero, err := NewElement(ElementTypeImage)
	if err != nil {
		return nil, err
	}
	hero.ImageURL = starterImages[0].url
	hero.Content = starterImages[0].label
	hero.Styles = hero.Styles.Merge(hero.Type, Style{
		PropTop: Number(60), PropLeft: Number(360), PropWidth: Number(220),
		PropHeight: Number(320), PropBorderRadius: Number(24),
	})

	cta, err := NewElement(ElementTypeButton)
	if err != nil {
		return nil, err
	}
	cta.Content = "Preview canvas"
	cta.Styles = cta.Styles.Merge(cta.Type, Style{
		PropTop: Number(240), PropLeft: Number(80), PropWidth: Number(220),
		PropBackgroundColor: Text("#7953D2"), PropBoxShadow: Text("0 12px 30px rgba(121,83,210,0.35)"),
	})

	return []Element{heading, body, hero, cta}, nil
}
