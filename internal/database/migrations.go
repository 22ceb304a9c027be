package database

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/canvas"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/documents"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	migrationBackfillCanvasState = "2025-01-14_backfill_canvas_state_from_builder_tree"
	migrationDefaultDraftStatus  = "2025-02-02_default_draft_status"
)

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB, *zap.Logger) error
}

var migrations = []migrationDefinition{
	{name: migrationBackfillCanvasState, apply: backfillCanvasState},
	{name: migrationDefaultDraftStatus, apply: defaultDraftStatus},
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := migration.apply(tx, logger); err != nil {
				return err
			}
			return tx.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: time.Now().UTC().Unix()}).Error
		})
		if err != nil {
			return err
		}
		logger.Info("database migration applied", zap.String("migration", migration.name))
	}
	return nil
}

// backfillCanvasState converts rows that only carry the row-based builder tree.
// Rows whose tree cannot be decoded are left for the load path to report.
func backfillCanvasState(db *gorm.DB, logger *zap.Logger) error {
	var legacy []documents.Template
	err := db.Where("canvas_state = '' AND builder_tree <> ''").Find(&legacy).Error
	if err != nil {
		return err
	}
	for _, template := range legacy {
		var nodes []canvas.LegacyNode
		if err := json.Unmarshal([]byte(template.BuilderTreeJSON), &nodes); err != nil {
			logger.Warn("skipping undecodable builder tree",
				zap.String("template_id", template.TemplateID),
				zap.Error(err))
			continue
		}
		encoded, err := json.Marshal(canvas.NewDocument(canvas.MigrateLegacyNodes(nodes)))
		if err != nil {
			return err
		}
		if err := db.Model(&documents.Template{}).
			Where("template_id = ?", template.TemplateID).
			Update("canvas_state", string(encoded)).Error; err != nil {
			return err
		}
	}
	return nil
}

func defaultDraftStatus(db *gorm.DB, _ *zap.Logger) error {
	return db.Model(&documents.Template{}).
		Where("status = '' OR status IS NULL").
		Update("status", documents.TemplateStatusDraft).Error
}
