package database

import (
	"path/filepath"
	"testing"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/canvas"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/documents"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func openMigrationDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "migration.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&documents.Template{}, &migrationRecord{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func TestApplyMigrationsBackfillsCanvasState(t *testing.T) {
	db := openMigrationDatabase(t)
	rows := []documents.Template{
		{TemplateID: "legacy", OwnerID: "owner-1", Name: "Legacy", Status: documents.TemplateStatusDraft,
			BuilderTreeJSON: `[{"id":"n1","type":"text","props":{"text":"Hi"}}]`, CreatedAtSeconds: 1, UpdatedAtSeconds: 1},
		{TemplateID: "broken", OwnerID: "owner-1", Name: "Broken", Status: documents.TemplateStatusDraft,
			BuilderTreeJSON: `{not json`, CreatedAtSeconds: 1, UpdatedAtSeconds: 1},
		{TemplateID: "current", OwnerID: "owner-1", Name: "Current", Status: documents.TemplateStatusDraft,
			CanvasStateJSON: `{"elements":[]}`, BuilderTreeJSON: `[{"id":"x","type":"text"}]`, CreatedAtSeconds: 1, UpdatedAtSeconds: 1},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("failed to seed templates: %v", err)
	}

	core, recorded := observer.New(zap.WarnLevel)
	if err := applyMigrations(db, zap.New(core)); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	var legacy documents.Template
	if err := db.Where("template_id = ?", "legacy").Take(&legacy).Error; err != nil {
		t.Fatalf("failed to reload template: %v", err)
	}
	migrated := canvas.NormalizeDocument([]byte(legacy.CanvasStateJSON))
	if len(migrated.Elements) != 1 || migrated.Elements[0].Content != "Hi" {
		t.Fatalf("expected migrated text element, got %+v", migrated.Elements)
	}

	var current documents.Template
	if err := db.Where("template_id = ?", "current").Take(&current).Error; err != nil {
		t.Fatalf("failed to reload template: %v", err)
	}
	if current.CanvasStateJSON != `{"elements":[]}` {
		t.Fatalf("expected existing canvas state untouched, got %s", current.CanvasStateJSON)
	}
	if recorded.FilterMessage("skipping undecodable builder tree").Len() != 1 {
		t.Fatalf("expected the broken row to be reported")
	}

	var record migrationRecord
	if err := db.Where("name = ?", migrationBackfillCanvasState).Take(&record).Error; err != nil {
		t.Fatalf("expected migration record to be created: %v", err)
	}
	if record.AppliedAtSeconds == 0 {
		t.Fatalf("expected migration timestamp to be set")
	}
}

func TestApplyMigrationsRunsOnce(t *testing.T) {
	db := openMigrationDatabase(t)
	if err := applyMigrations(db, nil); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if err := applyMigrations(db, nil); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	var count int64
	if err := db.Model(&migrationRecord{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != int64(len(migrations)) {
		t.Fatalf("expected %d records, got %d", len(migrations), count)
	}
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite("", nil); err != ErrMissingPath {
		t.Fatalf("expected missing path error, got %v", err)
	}
}
