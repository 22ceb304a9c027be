// Package export serialises canvas documents into standalone, inline-styled email HTML.
package export

import (
	"math"
	"strconv"
	"strings"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/canvas"
)

const (
	bodyPadding           = 32
	autoHeightMargin      = 160
	autoHeightFloor       = 720
	fallbackElementHeight = 120
	fallbackWrapperWidth  = 240
	previewTitle          = "Email Preview"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// EscapeHTML escapes &, <, > and " for element bodies and attribute values.
func EscapeHTML(value string) string {
	return htmlEscaper.Replace(value)
}

var cssTextSanitizer = strings.NewReplacer("<", "", ">", "", "{", "", "}", "")

// Render returns the complete HTML document for doc. Equal documents render to
// byte-identical output.
func Render(doc canvas.Document) string {
	page := doc.Page
	width := page.Width
	if width <= 0 {
		width = canvas.DefaultPageSettings().Width
	}
	background := EscapeHTML(page.BackgroundColor)
	if background == "" {
		background = "#ffffff"
	}
	padding := math.Max(0, page.Padding)
	contentWidth := math.Max(0, width-padding*2)

	var builder strings.Builder
	builder.Grow(1024 + 512*len(doc.Elements))

	builder.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charSet="utf-8" /><meta name="viewport" content="width=device-width, initial-scale=1" /><title>`)
	builder.WriteString(previewTitle)
	builder.WriteString(`</title><style type="text/css">`)
	builder.WriteString(TokenCSS(doc.Tokens))
	builder.WriteString(`</style></head><body style="margin:0;padding:`)
	builder.WriteString(formatNumber(bodyPadding))
	builder.WriteString(`px;background-color:`)
	builder.WriteString(background)
	builder.WriteString(`;font-family:Inter,Arial,sans-serif;"><table role="presentation" width="100%" style="width:100%;border-spacing:0;border-collapse:collapse;"><tr><td align="center" style="padding:0;"><table role="presentation" width="`)
	builder.WriteString(formatNumber(width))
	builder.WriteString(`" style="width:`)
	builder.WriteString(formatNumber(width))
	builder.WriteString(`px;border-spacing:0;border-collapse:collapse;background-color:`)
	builder.WriteString(background)
	builder.WriteString(`;border-radius:32px;box-shadow:0 20px 45px rgba(63,81,181,0.12);"><tr><td style="position:relative;padding:`)
	builder.WriteString(formatNumber(padding))
	builder.WriteString(`px;background-color:`)
	builder.WriteString(background)
	builder.WriteString(`;"><div style="position:relative;width:`)
	builder.WriteString(formatNumber(contentWidth))
	builder.WriteString(`px;height:`)
	builder.WriteString(formatNumber(ContentHeight(doc)))
	builder.WriteString(`px;margin:0 auto;">`)
	for _, element := range doc.Elements {
		writeElement(&builder, element)
	}
	builder.WriteString(`</div></td></tr></table></td></tr></table></body></html>`)
	return builder.String()
}

// ContentHeight is the fixed page height, or the lowest element bottom plus a
// margin, never less than 720.
func ContentHeight(doc canvas.Document) float64 {
	if height, fixed := doc.Page.Height.Fixed(); fixed {
		return height
	}
	lowest := 0.0
	for _, element := range doc.Elements {
		top := element.Styles.Get(canvas.PropTop).FloatOr(0)
		height := float64(fallbackElementHeight)
		if element.Styles.Has(canvas.PropHeight) {
			height = element.Styles.Get(canvas.PropHeight).FloatOr(0)
		}
		lowest = math.Max(lowest, top+height)
	}
	return math.Max(lowest+autoHeightMargin, autoHeightFloor)
}

// TokenCSS renders one class per typography preset.
func TokenCSS(tokens canvas.DesignTokens) string {
	var builder strings.Builder
	writeTokenRule(&builder, canvas.TextVariantH1, tokens.TextStyles.H1)
	writeTokenRule(&builder, canvas.TextVariantH2, tokens.TextStyles.H2)
	writeTokenRule(&builder, canvas.TextVariantBody, tokens.TextStyles.Body)
	return builder.String()
}

func writeTokenRule(builder *strings.Builder, variant canvas.TextVariant, style canvas.TextStyle) {
	builder.WriteString(".token-")
	builder.WriteString(string(variant))
	builder.WriteString("{font-family:")
	builder.WriteString(cssTextSanitizer.Replace(style.FontFamily))
	builder.WriteString(";font-size:")
	builder.WriteString(formatNumber(style.FontSize))
	builder.WriteString("px;font-weight:")
	builder.WriteString(formatNumber(style.FontWeight))
	builder.WriteString(";line-height:")
	builder.WriteString(formatNumber(style.LineHeight))
	builder.WriteString(";}")
}

// WrapperStyle returns the absolute positioning declarations for an element.
func WrapperStyle(styles canvas.Style) string {
	declarations := []string{
		"position:absolute",
		"top:" + formatNumber(roundHalfUp(styles.Get(canvas.PropTop).FloatOr(0))) + "px",
		"left:" + formatNumber(roundHalfUp(styles.Get(canvas.PropLeft).FloatOr(0))) + "px",
		"width:" + formatNumber(roundHalfUp(styles.Get(canvas.PropWidth).FloatOr(fallbackWrapperWidth))) + "px",
	}
	if height, ok := styles.Get(canvas.PropHeight).Float(); ok {
		declarations = append(declarations, "height:"+formatNumber(roundHalfUp(height))+"px")
	}
	declarations = append(declarations, "display:flex", "align-items:center", "justify-content:center")
	return strings.Join(declarations, ";")
}

// InlineStyle serialises the visual properties of styles in property table order.
// Layout properties and empty values are skipped; zero is kept.
func InlineStyle(styles canvas.Style) string {
	declarations := make([]string, 0, len(styles))
	for _, spec := range canvas.PropertyTable() {
		if spec.Layout {
			continue
		}
		value := styles.Get(spec.Property)
		if value.IsEmpty() {
			continue
		}
		declarations = append(declarations, spec.CSSName+":"+cssValue(spec, value))
	}
	return strings.Join(declarations, ";")
}

func cssValue(spec canvas.PropertySpec, value canvas.Value) string {
	if value.IsNumber() {
		return value.String() + spec.Unit
	}
	return EscapeHTML(value.String())
}

func writeElement(builder *strings.Builder, element canvas.Element) {
	builder.WriteString(`<div style="`)
	builder.WriteString(WrapperStyle(element.Styles))
	builder.WriteString(`">`)
	inline := InlineStyle(element.Styles)

	switch element.Type {
	case canvas.ElementTypeText:
		builder.WriteString("<div")
		if element.TextStyleKey.Valid() {
			builder.WriteString(` class="token-`)
			builder.WriteString(string(element.TextStyleKey))
			builder.WriteString(`"`)
		}
		builder.WriteString(` style="`)
		builder.WriteString(inline)
		builder.WriteString(`">`)
		builder.WriteString(EscapeHTML(element.Content))
		builder.WriteString("</div>")
	case canvas.ElementTypeImage:
		builder.WriteString(`<img src="`)
		builder.WriteString(EscapeHTML(imageSource(element)))
		builder.WriteString(`" alt="`)
		builder.WriteString(EscapeHTML(imageAlt(element)))
		builder.WriteString(`" style="`)
		builder.WriteString(joinDeclarations(inline,
			"object-fit:"+imageObjectFit(element),
			"width:100%",
			"height:100%",
			"border-radius:"+imageRadius(element),
		))
		builder.WriteString(`" />`)
	case canvas.ElementTypeButton:
		href := element.LinkURL
		if href == "" {
			href = "#"
		}
		builder.WriteString(`<a href="`)
		builder.WriteString(EscapeHTML(href))
		builder.WriteString(`"`)
		if element.OpenInNewTab {
			builder.WriteString(` target="_blank" rel="noopener noreferrer"`)
		}
		builder.WriteString(` style="`)
		builder.WriteString(joinDeclarations(inline,
			"display:inline-flex",
			"align-items:center",
			"justify-content:center",
			"text-decoration:none",
		))
		builder.WriteString(`;">`)
		builder.WriteString(EscapeHTML(element.Content))
		builder.WriteString("</a>")
	}
	builder.WriteString("</div>")
}

func imageSource(element canvas.Element) string {
	switch {
	case element.ImageURL != "":
		return element.ImageURL
	case element.Content != "":
		return element.Content
	default:
		return canvas.PlaceholderImageURL
	}
}

func imageAlt(element canvas.Element) string {
	if element.Content != "" {
		return element.Content
	}
	return "Image"
}

func imageObjectFit(element canvas.Element) string {
	fit := element.Styles.Get(canvas.PropObjectFit)
	if fit.IsEmpty() {
		return "cover"
	}
	return EscapeHTML(fit.String())
}

func imageRadius(element canvas.Element) string {
	radius := element.Styles.Get(canvas.PropBorderRadius)
	switch {
	case radius.IsNumber():
		return radius.String() + "px"
	case radius.IsEmpty():
		return "0px"
	default:
		return EscapeHTML(radius.String())
	}
}

func joinDeclarations(inline string, declarations ...string) string {
	if inline == "" {
		return strings.Join(declarations, ";")
	}
	return inline + ";" + strings.Join(declarations, ";")
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(value float64) float64 {
	return math.Floor(value + 0.5)
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
