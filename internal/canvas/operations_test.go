package canvas

import (
	"reflect"
	"testing"
)

func mustElement(t *testing.T, elementType ElementType) Element {
	t.Helper()
	element, err := NewElement(elementType)
	if err != nil {
		t.Fatalf("unexpected element error: %v", err)
	}
	return element
}

func threeElementDocument(t *testing.T) Document {
	t.Helper()
	return NewDocument([]Element{
		mustElement(t, ElementTypeText),
		mustElement(t, ElementTypeImage),
		mustElement(t, ElementTypeButton),
	})
}

func TestNewElementCarriesRequiredGeometry(t *testing.T) {
	for _, elementType := range []ElementType{ElementTypeText, ElementTypeImage, ElementTypeButton} {
		element := mustElement(t, elementType)
		for _, property := range []Property{PropTop, PropLeft, PropWidth} {
			if !element.Styles.Has(property) {
				t.Fatalf("expected %s element to carry %s", elementType, property)
			}
		}
		if element.ID == "" || element.Type != elementType {
			t.Fatalf("unexpected element identity: %+v", element)
		}
	}
	if mustElement(t, ElementTypeText).Styles.Has(PropHeight) {
		t.Fatalf("expected text element height to be derived, not stored")
	}
}

func TestNewElementIssuesUniqueIdentifiers(t *testing.T) {
	first := mustElement(t, ElementTypeText)
	second := mustElement(t, ElementTypeText)
	if first.ID == second.ID {
		t.Fatalf("expected distinct identifiers, got %q twice", first.ID)
	}
}

func TestNewElementRejectsUnknownType(t *testing.T) {
	if _, err := NewElement("video"); err == nil {
		t.Fatalf("expected error for unknown element type")
	}
}

func TestAddElementInsertsAtIndex(t *testing.T) {
	doc := threeElementDocument(t)
	inserted := mustElement(t, ElementTypeButton)

	first := AddElement(doc, inserted, 0)
	if len(first.Elements) != 4 || first.Elements[0].ID != inserted.ID {
		t.Fatalf("expected element to be placed first, got %v", elementIDs(first))
	}

	appended := AppendElement(doc, inserted)
	if appended.Elements[len(appended.Elements)-1].ID != inserted.ID {
		t.Fatalf("expected element to be appended last, got %v", elementIDs(appended))
	}

	clamped := AddElement(doc, inserted, 99)
	if clamped.Elements[len(clamped.Elements)-1].ID != inserted.ID {
		t.Fatalf("expected out-of-range index to append, got %v", elementIDs(clamped))
	}

	if len(doc.Elements) != 3 {
		t.Fatalf("expected input document to be untouched, got %d elements", len(doc.Elements))
	}
}

func TestReorderElements(t *testing.T) {
	doc := threeElementDocument(t)
	ids := elementIDs(doc)

	moved := ReorderElements(doc, ids[0], ids[2])
	expected := []string{ids[1], ids[2], ids[0]}
	if !reflect.DeepEqual(elementIDs(moved), expected) {
		t.Fatalf("unexpected order: got %v want %v", elementIDs(moved), expected)
	}

	unchanged := ReorderElements(doc, ids[0], "missing")
	if !reflect.DeepEqual(unchanged, doc) {
		t.Fatalf("expected unknown over id to leave the document unchanged")
	}
	if !reflect.DeepEqual(ReorderElements(doc, ids[1], ids[1]), doc) {
		t.Fatalf("expected equal ids to leave the document unchanged")
	}
}

func TestPatchElementStyleIsPure(t *testing.T) {
	doc := threeElementDocument(t)
	target := doc.Elements[0]
	before := doc.Clone()

	patched := PatchElementStyle(doc, target.ID, Style{PropTop: Number(10), PropColor: Text("#000000")})

	if !reflect.DeepEqual(doc, before) {
		t.Fatalf("expected the input document to be unchanged")
	}
	element, _ := patched.Element(target.ID)
	if element.Styles.Get(PropTop) != Number(10) {
		t.Fatalf("expected top to be patched, got %v", element.Styles.Get(PropTop))
	}
	if element.Styles.Get(PropLeft) != target.Styles.Get(PropLeft) {
		t.Fatalf("expected untouched keys to survive the merge")
	}
}

func TestPatchElementStyleSkipsPropertiesForeignToType(t *testing.T) {
	doc := threeElementDocument(t)
	image := doc.Elements[1]
	patched := PatchElementStyle(doc, image.ID, Style{PropFontSize: Number(40), PropBorderRadius: Number(4)})
	element, _ := patched.Element(image.ID)
	if element.Styles.Has(PropFontSize) {
		t.Fatalf("expected fontSize to be rejected for image elements")
	}
	if element.Styles.Get(PropBorderRadius) != Number(4) {
		t.Fatalf("expected borderRadius to apply to image elements")
	}
}

func TestOperationsOnUnknownIDAreNoOps(t *testing.T) {
	doc := threeElementDocument(t)
	if !reflect.DeepEqual(PatchElementStyle(doc, "missing", Style{PropTop: Number(1)}), doc) {
		t.Fatalf("expected style patch on missing id to be a no-op")
	}
	if !reflect.DeepEqual(PatchElementContent(doc, "missing", "x"), doc) {
		t.Fatalf("expected content patch on missing id to be a no-op")
	}
	if !reflect.DeepEqual(RemoveElement(doc, "missing"), doc) {
		t.Fatalf("expected remove on missing id to be a no-op")
	}
}

func TestRemoveElement(t *testing.T) {
	doc := threeElementDocument(t)
	removed := RemoveElement(doc, doc.Elements[1].ID)
	if len(removed.Elements) != 2 || removed.IndexOf(doc.Elements[1].ID) != -1 {
		t.Fatalf("expected element to be removed, got %v", elementIDs(removed))
	}
	if len(doc.Elements) != 3 {
		t.Fatalf("expected input to keep its elements")
	}
}

func TestCloneElementsProducesIndependentStyles(t *testing.T) {
	doc := threeElementDocument(t)
	clones := CloneElements(doc.Elements)
	clones[0].Styles[PropTop] = Number(999)
	if doc.Elements[0].Styles.Get(PropTop) == Number(999) {
		t.Fatalf("expected clone to be independent of its source")
	}
}

func TestPatchElementMeta(t *testing.T) {
	doc := threeElementDocument(t)
	button := doc.Elements[2]
	link := "https://example.com"
	openInNewTab := true
	invalid := TextVariant("h6")

	patched := PatchElementMeta(doc, button.ID, ElementMeta{LinkURL: &link, OpenInNewTab: &openInNewTab, TextStyleKey: &invalid})
	element, _ := patched.Element(button.ID)
	if element.LinkURL != link || !element.OpenInNewTab {
		t.Fatalf("unexpected meta: %+v", element)
	}
	if element.TextStyleKey != "" {
		t.Fatalf("expected unknown text variant to be ignored")
	}
}

func elementIDs(doc Document) []string {
	ids := make([]string, 0, len(doc.Elements))
	for _, element := range doc.Elements {
		ids = append(ids, element.ID)
	}
	return ids
}
