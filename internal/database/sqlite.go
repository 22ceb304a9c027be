// Package database opens the template store and keeps its schema current.
package database

import (
	"errors"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/documents"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/users"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrMissingPath indicates no database path was configured.
var ErrMissingPath = errors.New("database: path is required")

// OpenSQLite opens path, migrates the schema and applies pending data migrations.
func OpenSQLite(path string, logger *zap.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, ErrMissingPath
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db, logger); err != nil {
		return nil, err
	}
	logger.Info("database initialized", zap.String("path", path))
	return db, nil
}

// Migrate creates the tables and runs data migrations on an open connection.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	if err := db.AutoMigrate(&documents.Template{}, &users.Identity{}, &migrationRecord{}); err != nil {
		return err
	}
	return applyMigrations(db, logger)
}
