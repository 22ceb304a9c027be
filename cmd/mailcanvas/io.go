package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/canvas"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/config"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/database"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/documents"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const stdinPath = "-"

// readInput reads path, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == stdinPath {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// writeOutput writes to path, or stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// loadDocument reads a document from a file argument or from the template store.
func loadDocument(ctx context.Context, cmd *cobra.Command, appConfig config.AppConfig, logger *zap.Logger, args []string, templateID string) (canvas.Document, error) {
	if templateID != "" {
		store, closeStore, err := openStore(appConfig, logger)
		if err != nil {
			return canvas.Document{}, err
		}
		defer closeStore()
		return store.LoadDocument(ctx, templateID)
	}
	if len(args) == 0 {
		return canvas.Document{}, fmt.Errorf("a document file or --template-id is required")
	}
	raw, err := readInput(cmd, args[0])
	if err != nil {
		return canvas.Document{}, err
	}
	return canvas.NormalizeDocument(raw), nil
}

func openStore(appConfig config.AppConfig, logger *zap.Logger) (*documents.Service, func(), error) {
	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	store, err := documents.NewService(documents.ServiceConfig{
		Database:   db,
		Clock:      time.Now,
		IDProvider: documents.NewUUIDProvider(),
		Logger:     logger,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	return store, func() { _ = sqlDB.Close() }, nil
}
