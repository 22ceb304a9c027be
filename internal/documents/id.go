package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const maxIdentifierLength = 190

var (
	// ErrInvalidTemplateID indicates that a template identifier is empty or exceeds storage bounds.
	ErrInvalidTemplateID = errors.New("documents: invalid template id")
	// ErrInvalidOwnerID indicates that an owner identifier is empty or exceeds storage bounds.
	ErrInvalidOwnerID = errors.New("documents: invalid owner id")
)

// TemplateID represents a validated template identifier.
type TemplateID string

// NewTemplateID validates raw input and returns a TemplateID.
func NewTemplateID(rawInput string) (TemplateID, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidTemplateID)
	}
	if len(trimmed) > maxIdentifierLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidTemplateID, maxIdentifierLength)
	}
	return TemplateID(trimmed), nil
}

func (id TemplateID) String() string {
	return string(id)
}

// OwnerID represents the canonical user that owns templates.
type OwnerID string

// NewOwnerID validates raw input and returns an OwnerID.
func NewOwnerID(rawInput string) (OwnerID, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidOwnerID)
	}
	if len(trimmed) > maxIdentifierLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidOwnerID, maxIdentifierLength)
	}
	return OwnerID(trimmed), nil
}

func (id OwnerID) String() string {
	return string(id)
}

type ownerContextKey struct{}

// WithOwner returns a context carrying the authenticated owner.
func WithOwner(ctx context.Context, owner OwnerID) context.Context {
	return context.WithValue(ctx, ownerContextKey{}, owner)
}

// OwnerFrom extracts the authenticated owner placed by WithOwner.
func OwnerFrom(ctx context.Context) (OwnerID, bool) {
	if ctx == nil {
		return "", false
	}
	owner, ok := ctx.Value(ownerContextKey{}).(OwnerID)
	if !ok || owner == "" {
		return "", false
	}
	return owner, true
}

// IDProvider issues template identifiers.
type IDProvider interface {
	NewID() (string, error)
}

type uuidProvider struct{}

// NewUUIDProvider constructs an IDProvider that issues UUIDv7 identifiers.
func NewUUIDProvider() IDProvider {
	return &uuidProvider{}
}

func (p *uuidProvider) NewID() (string, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return value.String(), nil
}
