package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/canvas"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNotFound indicates that no template matches the identifier.
	ErrNotFound = errors.New("documents: template not found")
	// ErrUnauthenticated indicates that the call carries no owner.
	ErrUnauthenticated = errors.New("documents: not authenticated")
	// ErrPersistence indicates a storage failure.
	ErrPersistence = errors.New("documents: unable to save template")

	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()
)

// ServiceError carries a dotted failure code alongside its cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew = "documents.service.new"
	opLoad       = "documents.load"
	opSave       = "documents.save"
	opDuplicate  = "documents.duplicate"
	opList       = "documents.list"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// ServiceConfig wires the template service.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Service stores canvas documents as templates owned by a user.
type Service struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider IDProvider
	logger     *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:         cfg.Database,
		clock:      clock,
		idProvider: cfg.IDProvider,
		logger:     logger,
	}, nil
}

// LoadDocument returns the canvas document stored under rawID.
func (s *Service) LoadDocument(ctx context.Context, rawID string) (canvas.Document, error) {
	templateID, err := NewTemplateID(rawID)
	if err != nil {
		return canvas.Document{}, newServiceError(opLoad, "not_found", fmt.Errorf("%w: %v", ErrNotFound, err))
	}

	var template Template
	err = s.db.WithContext(ctx).Where("template_id = ?", templateID.String()).Take(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return canvas.Document{}, newServiceError(opLoad, "not_found", ErrNotFound)
	}
	if err != nil {
		s.logError(opLoad, "query_failed", err, zap.String("template_id", templateID.String()))
		return canvas.Document{}, newServiceError(opLoad, "query_failed", err)
	}

	return documentFromTemplate(template, s.logger), nil
}

// SaveDocument creates a template when rawID is empty and updates the caller's
// template otherwise. It returns the template identifier.
func (s *Service) SaveDocument(ctx context.Context, rawID string, document canvas.Document) (string, error) {
	owner, ok := OwnerFrom(ctx)
	if !ok {
		return "", newServiceError(opSave, "unauthenticated", ErrUnauthenticated)
	}

	payload, err := json.Marshal(document)
	if err != nil {
		s.logError(opSave, "encode_failed", err, zap.String("owner_id", owner.String()))
		return "", newServiceError(opSave, "encode_failed", fmt.Errorf("%w: %v", ErrPersistence, err))
	}
	now := s.clock().UTC().Unix()

	if strings.TrimSpace(rawID) == "" {
		templateID, err := s.idProvider.NewID()
		if err != nil {
			s.logError(opSave, "id_generation_failed", err, zap.String("owner_id", owner.String()))
			return "", newServiceError(opSave, "id_generation_failed", fmt.Errorf("%w: %v", ErrPersistence, err))
		}
		template := Template{
			TemplateID:       templateID,
			OwnerID:          owner.String(),
			Name:             defaultTemplateName,
			Status:           TemplateStatusDraft,
			CanvasStateJSON:  string(payload),
			CreatedAtSeconds: now,
			UpdatedAtSeconds: now,
		}
		if err := s.db.WithContext(ctx).Create(&template).Error; err != nil {
			s.logError(opSave, "insert_failed", err, zap.String("owner_id", owner.String()))
			return "", newServiceError(opSave, "insert_failed", fmt.Errorf("%w: %v", ErrPersistence, err))
		}
		return templateID, nil
	}

	templateID, err := NewTemplateID(rawID)
	if err != nil {
		return "", newServiceError(opSave, "invalid_template_id", fmt.Errorf("%w: %v", ErrPersistence, err))
	}
	result := s.db.WithContext(ctx).
		Model(&Template{}).
		Where("template_id = ? AND owner_id = ?", templateID.String(), owner.String()).
		Updates(map[string]any{
			"canvas_state": string(payload),
			"updated_at_s": now,
		})
	if result.Error != nil {
		s.logError(opSave, "update_failed", result.Error,
			zap.String("owner_id", owner.String()),
			zap.String("template_id", templateID.String()))
		return "", newServiceError(opSave, "update_failed", fmt.Errorf("%w: %v", ErrPersistence, result.Error))
	}
	if result.RowsAffected == 0 {
		s.logError(opSave, "update_missing", nil,
			zap.String("owner_id", owner.String()),
			zap.String("template_id", templateID.String()))
		return "", newServiceError(opSave, "update_missing", ErrPersistence)
	}
	return templateID.String(), nil
}

// DuplicateDocument copies a template into a new draft owned by the caller.
func (s *Service) DuplicateDocument(ctx context.Context, rawID string) (string, error) {
	owner, ok := OwnerFrom(ctx)
	if !ok {
		return "", newServiceError(opDuplicate, "unauthenticated", ErrUnauthenticated)
	}
	sourceID, err := NewTemplateID(rawID)
	if err != nil {
		return "", newServiceError(opDuplicate, "not_found", fmt.Errorf("%w: %v", ErrNotFound, err))
	}

	var copyID string
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var source Template
		err := tx.Where("template_id = ?", sourceID.String()).Take(&source).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newServiceError(opDuplicate, "not_found", ErrNotFound)
		}
		if err != nil {
			s.logError(opDuplicate, "query_failed", err, zap.String("template_id", sourceID.String()))
			return newServiceError(opDuplicate, "query_failed", fmt.Errorf("%w: %v", ErrPersistence, err))
		}

		newID, err := s.idProvider.NewID()
		if err != nil {
			s.logError(opDuplicate, "id_generation_failed", err, zap.String("template_id", sourceID.String()))
			return newServiceError(opDuplicate, "id_generation_failed", fmt.Errorf("%w: %v", ErrPersistence, err))
		}

		name := source.Name
		if strings.TrimSpace(name) == "" {
			name = untitledTemplateName
		}
		now := s.clock().UTC().Unix()
		duplicate := Template{
			TemplateID:       newID,
			OwnerID:          owner.String(),
			Name:             name,
			Subject:          source.Subject,
			Status:           TemplateStatusDraft,
			CanvasStateJSON:  source.CanvasStateJSON,
			BuilderTreeJSON:  source.BuilderTreeJSON,
			CreatedAtSeconds: now,
			UpdatedAtSeconds: now,
		}
		if err := tx.Create(&duplicate).Error; err != nil {
			s.logError(opDuplicate, "insert_failed", err,
				zap.String("owner_id", owner.String()),
				zap.String("template_id", sourceID.String()))
			return newServiceError(opDuplicate, "insert_failed", fmt.Errorf("%w: %v", ErrPersistence, err))
		}
		copyID = newID
		return nil
	})
	if txErr != nil {
		return "", txErr
	}
	return copyID, nil
}

// ListDocuments returns the caller's templates, most recently updated first.
func (s *Service) ListDocuments(ctx context.Context) ([]Summary, error) {
	owner, ok := OwnerFrom(ctx)
	if !ok {
		return nil, newServiceError(opList, "unauthenticated", ErrUnauthenticated)
	}

	var templates []Template
	if err := s.db.WithContext(ctx).
		Where("owner_id = ?", owner.String()).
		Order("updated_at_s DESC").
		Find(&templates).Error; err != nil {
		s.logError(opList, "query_failed", err, zap.String("owner_id", owner.String()))
		return nil, newServiceError(opList, "query_failed", err)
	}

	summaries := make([]Summary, 0, len(templates))
	for _, template := range templates {
		summaries = append(summaries, template.summary())
	}
	return summaries, nil
}

// documentFromTemplate decodes the stored canvas state, falling back to the legacy
// row-builder tree when the template was never opened on the canvas.
func documentFromTemplate(template Template, logger *zap.Logger) canvas.Document {
	if strings.TrimSpace(template.CanvasStateJSON) == "" && strings.TrimSpace(template.BuilderTreeJSON) != "" {
		var nodes []canvas.LegacyNode
		if err := json.Unmarshal([]byte(template.BuilderTreeJSON), &nodes); err != nil {
			logger.Warn("builder tree decode failed",
				zap.String("template_id", template.TemplateID),
				zap.Error(err))
			return canvas.NewDocument(nil)
		}
		return canvas.NewDocument(canvas.MigrateLegacyNodes(nodes))
	}
	return canvas.NormalizeDocument([]byte(template.CanvasStateJSON))
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil || s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("documents service error", attrs...)
}
