// Package editor hosts a single canvas editing session: the working document, its
// undo history, the gesture machine and the current selection.
package editor

import (
	"context"
	"errors"
	"math/rand/v2"
	"reflect"
	"time"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/canvas"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/documents"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/history"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/interaction"
	"go.uber.org/zap"
)

// SaveStatus tracks the most recent save attempt.
type SaveStatus string

const (
	SaveStatusIdle   SaveStatus = "idle"
	SaveStatusSaving SaveStatus = "saving"
	SaveStatusSaved  SaveStatus = "saved"
	SaveStatusError  SaveStatus = "error"
)

const (
	messageSignInToSave = "Please log in or sign up to save your canvas."
	messageSaveFailed   = "Failed to save template"
)

// Store is the persistence port the session saves through.
type Store interface {
	LoadDocument(ctx context.Context, id string) (canvas.Document, error)
	SaveDocument(ctx context.Context, id string, document canvas.Document) (string, error)
}

// PointerListeners is the scope of the global pointer-move and pointer-up handlers.
type PointerListeners interface {
	Attach()
	Detach()
}

type noopListeners struct{}

func (noopListeners) Attach() {}
func (noopListeners) Detach() {}

// Option configures a Session.
type Option func(*Session)

// WithListeners installs the pointer listener scope.
func WithListeners(listeners PointerListeners) Option {
	return func(s *Session) {
		if listeners != nil {
			s.listeners = listeners
		}
	}
}

// WithLogger installs a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the save timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithRandom overrides the jitter applied to newly added elements. It must return values in [0,1).
func WithRandom(random func() float64) Option {
	return func(s *Session) {
		if random != nil {
			s.random = random
		}
	}
}

// WithTemplateID binds the session to an existing stored template.
func WithTemplateID(templateID string) Option {
	return func(s *Session) {
		s.templateID = templateID
	}
}

// Session is single-goroutine; callers serialise access.
type Session struct {
	document  canvas.Document
	committed canvas.Document
	history   history.History
	machine   interaction.Machine
	selected  string

	listeners PointerListeners
	listening bool

	templateID  string
	saveStatus  SaveStatus
	saveMessage string
	savedAt     time.Time

	logger *zap.Logger
	clock  func() time.Time
	random func() float64
}

// NewSession starts editing document. The first element is selected.
func NewSession(document canvas.Document, options ...Option) *Session {
	session := &Session{
		document:   document.Clone(),
		listeners:  noopListeners{},
		saveStatus: SaveStatusIdle,
		logger:     zap.NewNop(),
		clock:      time.Now,
		random:     rand.Float64,
	}
	for _, option := range options {
		option(session)
	}
	session.committed = session.document
	session.selected = session.document.FirstElementID()
	return session
}

// Open loads templateID from store and starts a session bound to it.
func Open(ctx context.Context, store Store, templateID string, options ...Option) (*Session, error) {
	document, err := store.LoadDocument(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return NewSession(document, append(options, WithTemplateID(templateID))...), nil
}

// Document returns the working document. Callers must treat it as read-only.
func (s *Session) Document() canvas.Document {
	return s.document
}

// Snapshot returns an independent copy of the working document.
func (s *Session) Snapshot() canvas.Document {
	return s.document.Clone()
}

// Selected returns the selected element id, or "".
func (s *Session) Selected() string {
	return s.selected
}

// SelectedElement returns the selected element when it still exists.
func (s *Session) SelectedElement() (canvas.Element, bool) {
	if s.selected == "" {
		return canvas.Element{}, false
	}
	return s.document.Element(s.selected)
}

// Select selects an existing element.
func (s *Session) Select(id string) bool {
	if s.document.IndexOf(id) < 0 {
		return false
	}
	s.selected = id
	return true
}

// ClickCanvas handles a click on empty canvas space.
func (s *Session) ClickCanvas() {
	s.selected = ""
}

// Gesture returns the interaction state.
func (s *Session) Gesture() interaction.Mode {
	return s.machine.Mode()
}

// Listening reports whether the pointer listeners are attached.
func (s *Session) Listening() bool {
	return s.listening
}

func (s *Session) CanUndo() bool {
	return s.history.CanUndo()
}

func (s *Session) CanRedo() bool {
	return s.history.CanRedo()
}

// Dirty reports whether there are committed changes not yet saved.
func (s *Session) Dirty() bool {
	return s.history.Dirty()
}

// HistoryDepth returns the sizes of the undo and redo stacks.
func (s *Session) HistoryDepth() (past int, future int) {
	return s.history.Depth()
}

// TemplateID returns the stored template the session saves into, or "".
func (s *Session) TemplateID() string {
	return s.templateID
}

// SaveState reports the status and user-facing message of the last save.
func (s *Session) SaveState() (SaveStatus, string) {
	return s.saveStatus, s.saveMessage
}

// LastSavedAt returns when the last successful save finished.
func (s *Session) LastSavedAt() time.Time {
	return s.savedAt
}

// apply replaces the working document. A commit records the last committed state
// in history, once, and only when the document actually changed.
func (s *Session) apply(next canvas.Document, commit bool) {
	s.document = next
	if s.saveStatus != SaveStatusSaving {
		s.saveStatus = SaveStatusIdle
	}
	if !commit {
		return
	}
	if !reflect.DeepEqual(next, s.committed) {
		s.history.Commit(s.committed)
	}
	s.committed = next
}

// PointerDown starts a drag on the element body or a resize on its handle.
func (s *Session) PointerDown(id string, pointer interaction.Point, button int, onResizeHandle bool) bool {
	element, ok := s.document.Element(id)
	if !ok {
		return false
	}
	var (
		next    interaction.Machine
		started bool
	)
	if onResizeHandle {
		next, started = s.machine.BeginResize(element, pointer, button)
	} else {
		next, started = s.machine.BeginDrag(element, pointer, button)
	}
	if !started {
		return false
	}
	s.machine = next
	s.selected = id
	if !s.listening {
		s.listeners.Attach()
		s.listening = true
	}
	return true
}

// PointerMove applies a live patch for the gesture in flight.
func (s *Session) PointerMove(pointer interaction.Point) {
	next, patch, ok := s.machine.Move(pointer)
	if !ok {
		return
	}
	s.machine = next
	s.apply(canvas.PatchElementStyle(s.document, patch.TargetID, patch.Style), false)
}

// PointerUp commits the gesture and releases the pointer listeners.
func (s *Session) PointerUp() {
	next, patch, ok := s.machine.End()
	s.machine = next
	if ok {
		s.apply(canvas.PatchElementStyle(s.document, patch.TargetID, patch.Style), true)
	}
	s.releaseListeners()
}

// Close tears the session down. An in-flight gesture is dropped without a commit
// and the listeners are released.
func (s *Session) Close() {
	s.machine = s.machine.Abort()
	s.releaseListeners()
}

func (s *Session) releaseListeners() {
	if s.listening {
		s.listeners.Detach()
		s.listening = false
	}
}

// settle commits any gesture in flight so history stays linear.
func (s *Session) settle() {
	if s.machine.Active() {
		s.PointerUp()
	}
}

// AddElement appends a new element near the middle of the page and selects it.
func (s *Session) AddElement(elementType canvas.ElementType) (string, error) {
	element, err := canvas.NewElement(elementType)
	if err != nil {
		return "", err
	}
	element.Styles = element.Styles.Merge(element.Type, canvas.Style{
		canvas.PropTop:  canvas.Number(160 + s.random()*120),
		canvas.PropLeft: canvas.Number(140 + s.random()*120),
	})
	s.apply(canvas.AppendElement(s.document, element), true)
	s.selected = element.ID
	return element.ID, nil
}

// DeleteElement removes an element. Deleting the selection selects the first remaining element.
func (s *Session) DeleteElement(id string) {
	next := canvas.RemoveElement(s.document, id)
	if len(next.Elements) == len(s.document.Elements) {
		return
	}
	s.apply(next, true)
	if s.selected == id {
		s.selected = next.FirstElementID()
	}
}

// ReorderElement moves activeID to the position of overID.
func (s *Session) ReorderElement(activeID, overID string) {
	s.apply(canvas.ReorderElements(s.document, activeID, overID), true)
}

// SetContent replaces the content of an element.
func (s *Session) SetContent(id string, content string) {
	s.apply(canvas.PatchElementContent(s.document, id, content), true)
}

// SetMeta applies non-style attributes of an element.
func (s *Session) SetMeta(id string, meta canvas.ElementMeta, commit bool) {
	s.apply(canvas.PatchElementMeta(s.document, id, meta), commit)
}

// SetStyle merges patch into an element's styles. Live edits are recorded by the
// next commit.
func (s *Session) SetStyle(id string, patch canvas.Style, commit bool) {
	s.apply(canvas.PatchElementStyle(s.document, id, patch), commit)
}

// SetNumericStyle parses user input for a numeric property. Malformed input leaves
// the previous value in place and returns canvas.ErrInvalidNumber.
func (s *Session) SetNumericStyle(id string, property canvas.Property, rawInput string, commit bool) error {
	number, err := canvas.ParseNumber(rawInput)
	if err != nil {
		return err
	}
	s.SetStyle(id, canvas.Style{property: canvas.Number(number)}, commit)
	return nil
}

// ApplyTextStyle applies a typography preset to the selected text element.
func (s *Session) ApplyTextStyle(variant canvas.TextVariant) {
	if s.selected == "" {
		return
	}
	s.apply(canvas.ApplyTextStyle(s.document, s.selected, variant), true)
}

// ApplyColorSwatch colours the selected element.
func (s *Session) ApplyColorSwatch(color string) {
	if s.selected == "" {
		return
	}
	s.apply(canvas.ApplyColorSwatch(s.document, s.selected, color), true)
}

// AddSwatch adds color to the design tokens.
func (s *Session) AddSwatch(color string) bool {
	next, added := canvas.AddSwatch(s.document, color)
	if added {
		s.apply(next, true)
	}
	return added
}

// AddSwatchFromSelection saves the selected element's colour as a swatch.
func (s *Session) AddSwatchFromSelection() bool {
	element, ok := s.SelectedElement()
	if !ok {
		return false
	}
	return s.AddSwatch(canvas.SwatchCandidate(element))
}

// RemoveSwatch drops color from the design tokens.
func (s *Session) RemoveSwatch(color string) {
	s.apply(canvas.RemoveSwatch(s.document, color), true)
}

// UpdatePage merges page settings.
func (s *Session) UpdatePage(patch canvas.PagePatch) {
	s.apply(canvas.PatchPage(s.document, patch), true)
}

// UpdateTokens merges design tokens.
func (s *Session) UpdateTokens(patch canvas.TokenPatch) {
	s.apply(canvas.PatchTokens(s.document, patch), true)
}

// ApplyFonts applies the first suggested font to every text element.
func (s *Session) ApplyFonts(fonts []string) {
	if len(fonts) == 0 {
		return
	}
	s.apply(canvas.ApplyFont(s.document, fonts[0]), true)
}

// ApplyPalettes applies the first suggested palette.
func (s *Session) ApplyPalettes(palettes []string) {
	if len(palettes) == 0 {
		return
	}
	s.apply(canvas.ApplyPalette(s.document, palettes[0]), true)
}

// Undo restores the previous committed document and selects its first element.
func (s *Session) Undo() bool {
	s.settle()
	previous, ok := s.history.Undo(s.document)
	if !ok {
		return false
	}
	s.restore(previous)
	return true
}

// Redo re-applies an undone document and selects its first element.
func (s *Session) Redo() bool {
	s.settle()
	next, ok := s.history.Redo(s.document)
	if !ok {
		return false
	}
	s.restore(next)
	return true
}

func (s *Session) restore(document canvas.Document) {
	s.document = document
	s.committed = document
	s.selected = document.FirstElementID()
}

// HandleKey routes undo, redo and arrow-key nudges. It reports whether the key was consumed.
func (s *Session) HandleKey(event interaction.KeyEvent) bool {
	switch interaction.ClassifyKey(event) {
	case interaction.KeyActionUndo:
		s.Undo()
		return true
	case interaction.KeyActionRedo:
		s.Redo()
		return true
	case interaction.KeyActionNudge:
		element, ok := s.SelectedElement()
		if !ok {
			return false
		}
		patch, ok := interaction.Nudge(element, event)
		if !ok {
			return false
		}
		s.apply(canvas.PatchElementStyle(s.document, patch.TargetID, patch.Style), true)
		return true
	default:
		return false
	}
}

// Save writes the document as it is at call time. Edits made while the store call
// is outstanding are left for the next save.
func (s *Session) Save(ctx context.Context, store Store) error {
	snapshot := s.Snapshot()
	s.saveStatus = SaveStatusSaving
	s.saveMessage = ""

	templateID, err := store.SaveDocument(ctx, s.templateID, snapshot)
	if err != nil {
		s.saveStatus = SaveStatusError
		s.saveMessage = messageSaveFailed
		if errors.Is(err, documents.ErrUnauthenticated) {
			s.saveMessage = messageSignInToSave
		}
		s.logger.Warn("canvas save failed",
			zap.String("template_id", s.templateID),
			zap.Error(err))
		return err
	}

	s.templateID = templateID
	s.saveStatus = SaveStatusSaved
	s.savedAt = s.clock()
	if reflect.DeepEqual(snapshot, s.document) {
		s.history.MarkSaved()
	}
	return nil
}
