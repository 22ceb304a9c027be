package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/auth"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/documents"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultProvider = "tauth"

// ErrInvalidIdentity indicates the session carried no usable subject.
var ErrInvalidIdentity = errors.New("users: invalid identity")

// DirectoryConfig wires a Directory.
type DirectoryConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Directory resolves session claims to owner ids, recording first sightings.
type Directory struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
	cache  sync.Map
}

func NewDirectory(cfg DirectoryConfig) (*Directory, error) {
	if cfg.Database == nil {
		return nil, errors.New("users: database connection required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{db: cfg.Database, clock: clock, logger: logger}, nil
}

// Resolve returns the owner for claims. A "provider:subject" user id is split so
// the same person keeps one owner id across sessions.
func (d *Directory) Resolve(ctx context.Context, claims auth.Claims) (documents.OwnerID, error) {
	provider, subject := splitLogin(claims)
	if subject == "" {
		return "", ErrInvalidIdentity
	}
	key := provider + ":" + subject
	if cached, ok := d.cache.Load(key); ok {
		return cached.(documents.OwnerID), nil
	}

	db := d.db.WithContext(ctx)
	var identity Identity
	err := db.Where("provider = ? AND subject = ?", provider, subject).First(&identity).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		identity = Identity{
			Provider:    provider,
			Subject:     subject,
			OwnerID:     subject,
			Email:       strings.TrimSpace(claims.UserEmail),
			DisplayName: strings.TrimSpace(claims.UserDisplayName),
			LastSeenAt:  d.clock().UTC(),
		}
		if err := db.Create(&identity).Error; err != nil {
			return "", fmt.Errorf("users: record identity: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("users: lookup identity: %w", err)
	default:
		if err := db.Model(&Identity{}).
			Where("provider = ? AND subject = ?", provider, subject).
			Update("last_seen_at", d.clock().UTC()).Error; err != nil {
			d.logger.Warn("failed to touch identity", zap.String("provider", provider), zap.Error(err))
		}
	}

	owner, err := documents.NewOwnerID(identity.OwnerID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	d.cache.Store(key, owner)
	return owner, nil
}

func splitLogin(claims auth.Claims) (string, string) {
	provider := defaultProvider
	subject := strings.TrimSpace(claims.Subject)
	if raw := strings.TrimSpace(claims.UserID); raw != "" {
		if prefix, rest, found := strings.Cut(raw, ":"); found && strings.TrimSpace(prefix) != "" && strings.TrimSpace(rest) != "" {
			provider = strings.TrimSpace(prefix)
			subject = strings.TrimSpace(rest)
		} else if subject == "" {
			subject = raw
		}
	}
	if subject == "" {
		subject = strings.ToLower(strings.TrimSpace(claims.UserEmail))
	}
	return provider, subject
}
