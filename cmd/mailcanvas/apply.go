package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/config"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/documents"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/editor"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/export"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type applyOptions struct {
	scriptPath string
	outputPath string
	templateID string
	ownerID    string
	renderHTML bool
	save       bool
}

func newApplyCommand(configViper *viper.Viper) *cobra.Command {
	options := applyOptions{}
	cmd := &cobra.Command{
		Use:   "apply [document.json|-]",
		Short: "Run an editing script against a canvas document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := config.Load(configViper)
			if err != nil {
				return err
			}
			logger, err := logging.NewCLILogger(appConfig.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			return runApply(cmd, appConfig, logger, args, options)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&options.scriptPath, "script", "s", "", "JSON array of editor steps")
	flags.StringVarP(&options.outputPath, "output", "o", "", "Write the result to this file instead of stdout")
	flags.StringVar(&options.templateID, "template-id", "", "Load the document from the template store")
	flags.StringVar(&options.ownerID, "owner", "", "Owner used when saving")
	flags.BoolVar(&options.renderHTML, "html", false, "Emit rendered HTML instead of document JSON")
	flags.BoolVar(&options.save, "save", false, "Save the edited document to the template store")
	_ = cmd.MarkFlagRequired("script")
	return cmd
}

func runApply(cmd *cobra.Command, appConfig config.AppConfig, logger *zap.Logger, args []string, options applyOptions) error {
	ctx := cmd.Context()
	document, err := loadDocument(ctx, cmd, appConfig, logger, args, options.templateID)
	if err != nil {
		return err
	}
	rawScript, err := readInput(cmd, options.scriptPath)
	if err != nil {
		return err
	}
	steps, err := editor.DecodeScript(bytes.NewReader(rawScript))
	if err != nil {
		return err
	}

	session := editor.NewSession(document, editor.WithLogger(logger), editor.WithTemplateID(options.templateID))
	defer session.Close()
	if err := session.Run(steps); err != nil {
		return err
	}
	past, future := session.HistoryDepth()
	logger.Debug("script applied", zap.Int("steps", len(steps)), zap.Int("undo_depth", past), zap.Int("redo_depth", future))

	if options.save {
		owner, err := documents.NewOwnerID(options.ownerID)
		if err != nil {
			return fmt.Errorf("--owner is required with --save: %w", err)
		}
		store, closeStore, err := openStore(appConfig, logger)
		if err != nil {
			return err
		}
		defer closeStore()
		if err := session.Save(documents.WithOwner(ctx, owner), store); err != nil {
			_, message := session.SaveState()
			return fmt.Errorf("%s: %w", message, err)
		}
		logger.Info("template saved", zap.String("template_id", session.TemplateID()))
	}

	if options.renderHTML {
		return writeOutput(cmd, options.outputPath, []byte(export.Render(session.Document())))
	}
	encoded, err := json.MarshalIndent(session.Document(), "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(cmd, options.outputPath, append(encoded, '\n'))
}
