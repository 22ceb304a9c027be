package main

import (
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/config"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/export"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newExportCommand(configViper *viper.Viper) *cobra.Command {
	var (
		outputPath string
		templateID string
	)
	cmd := &cobra.Command{
		Use:   "export [document.json|-]",
		Short: "Render a canvas document to email HTML",
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

			document, err := loadDocument(cmd.Context(), cmd, appConfig, logger, args, templateID)
			if err != nil {
				return err
			}
			return writeOutput(cmd, outputPath, []byte(export.Render(document)))
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write HTML to this file instead of stdout")
	cmd.Flags().StringVar(&templateID, "template-id", "", "Load the document from the template store")
	return cmd
}
