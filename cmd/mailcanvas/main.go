package main

import (
	"errors"
	"os"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand(viper.New()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(configViper *viper.Viper) *cobra.Command {
	config.ApplyDefaults(configViper)
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:          "mailcanvas",
		Short:        "Canvas email layout service and tools",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return readConfigFile(configViper, cfgFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().String("log-level", configViper.GetString("log.level"), "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("database-path", configViper.GetString("database.path"), "SQLite database path")
	bindFlag(configViper, rootCmd.PersistentFlags().Lookup("log-level"), "log.level")
	bindFlag(configViper, rootCmd.PersistentFlags().Lookup("database-path"), "database.path")

	rootCmd.AddCommand(
		newServeCommand(configViper),
		newExportCommand(configViper),
		newApplyCommand(configViper),
	)
	return rootCmd
}

func readConfigFile(configViper *viper.Viper, cfgFile string) error {
	if cfgFile == "" {
		configViper.SetConfigName("mailcanvas")
		configViper.AddConfigPath(".")
	} else {
		configViper.SetConfigFile(cfgFile)
	}
	if err := configViper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}
