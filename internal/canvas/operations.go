package canvas

import "slices"

// PatchElementStyle returns a document whose target element has patch shallow-merged into
// its styles. An unknown id returns the input unchanged.
func PatchElementStyle(doc Document, id string, patch Style) Document {
	return updateElement(doc, id, func(element Element) Element {
		element.Styles = element.Styles.Merge(element.Type, patch)
		return element
	})
}

// PatchElementContent replaces the content of the target element.
func PatchElementContent(doc Document, id string, content string) Document {
	return updateElement(doc, id, func(element Element) Element {
		element.Content = content
		return element
	})
}

// ElementMeta carries optional non-style attributes; nil fields are left untouched.
type ElementMeta struct {
	ImageURL             *string
	LinkURL              *string
	OpenInNewTab         *bool
	TextStyleKey         *TextVariant
	MaintainAspectRatio  *bool
	IntrinsicAspectRatio *float64
}

// PatchElementMeta applies the non-nil fields of meta to the target element.
func PatchElementMeta(doc Document, id string, meta ElementMeta) Document {
	return updateElement(doc, id, func(element Element) Element {
		if meta.ImageURL != nil {
			element.ImageURL = *meta.ImageURL
		}
		if meta.LinkURL != nil {
			element.LinkURL = *meta.LinkURL
		}
		if meta.OpenInNewTab != nil {
			element.OpenInNewTab = *meta.OpenInNewTab
		}
		if meta.TextStyleKey != nil && (*meta.TextStyleKey == "" || meta.TextStyleKey.Valid()) {
			element.TextStyleKey = *meta.TextStyleKey
		}
		if meta.MaintainAspectRatio != nil {
			element.MaintainAspectRatio = *meta.MaintainAspectRatio
		}
		if meta.IntrinsicAspectRatio != nil && *meta.IntrinsicAspectRatio >= 0 {
			element.IntrinsicAspectRatio = *meta.IntrinsicAspectRatio
		}
		return element
	})
}

// RemoveElement drops the element with id.
func RemoveElement(doc Document, id string) Document {
	index := doc.IndexOf(id)
	if index < 0 {
		return doc
	}
	next := doc
	next.Elements = slices.Delete(slices.Clone(doc.Elements), index, index+1)
	return next
}

// AddElement inserts element at index. A negative or out-of-range index appends.
func AddElement(doc Document, element Element, index int) Document {
	elements := slices.Clone(doc.Elements)
	if index < 0 || index > len(elements) {
		index = len(elements)
	}
	next := doc
	next.Elements = slices.Insert(elements, index, element)
	return next
}

// AppendElement adds element after every other element.
func AppendElement(doc Document, element Element) Document {
	return AddElement(doc, element, -1)
}

// ReorderElements moves activeID to the position held by overID.
// Equal or unknown ids leave the document unchanged.
func ReorderElements(doc Document, activeID, overID string) Document {
	if activeID == overID {
		return doc
	}
	from := doc.IndexOf(activeID)
	to := doc.IndexOf(overID)
	if from < 0 || to < 0 {
		return doc
	}
	elements := slices.Clone(doc.Elements)
	moved := elements[from]
	elements = slices.Delete(elements, from, from+1)
	elements = slices.Insert(elements, to, moved)
	next := doc
	next.Elements = elements
	return next
}

// MapElements applies fn to every element and returns the resulting document.
func MapElements(doc Document, fn func(Element) Element) Document {
	if len(doc.Elements) == 0 {
		return doc
	}
	elements := make([]Element, len(doc.Elements))
	for index, element := range doc.Elements {
		elements[index] = fn(element)
	}
	next := doc
	next.Elements = elements
	return next
}

func updateElement(doc Document, id string, fn func(Element) Element) Document {
	index := doc.IndexOf(id)
	if index < 0 {
		return doc
	}
	elements := slices.Clone(doc.Elements)
	elements[index] = fn(elements[index])
	next := doc
	next.Elements = elements
	return next
}
