package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/auth"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/config"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/database"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/documents"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/logging"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/server"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/suggest"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(configViper *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the document API",
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := config.Load(configViper)
			if err != nil {
				return err
			}
			if err := appConfig.ValidateServer(); err != nil {
				return err
			}
			return runServer(cmd.Context(), appConfig)
		},
	}

	flags := cmd.Flags()
	flags.String("http-address", configViper.GetString("http.address"), "HTTP listen address")
	flags.StringSlice("allowed-origins", nil, "Origins allowed to call the API with credentials")
	flags.String("signing-secret", "", "TAuth session signing secret (overrides env)")
	flags.String("cookie-name", configViper.GetString("tauth.cookie_name"), "TAuth session cookie name")
	flags.String("issuer", configViper.GetString("tauth.issuer"), "Expected TAuth token issuer")
	flags.String("suggest-provider", configViper.GetString("suggest.provider"), "Suggestion provider (static, openai, gemini)")
	flags.String("suggest-model", "", "Suggestion model override")

	bindFlag(configViper, flags.Lookup("http-address"), "http.address")
	bindFlag(configViper, flags.Lookup("allowed-origins"), "http.allowed_origins")
	bindFlag(configViper, flags.Lookup("signing-secret"), "tauth.signing_secret")
	bindFlag(configViper, flags.Lookup("cookie-name"), "tauth.cookie_name")
	bindFlag(configViper, flags.Lookup("issuer"), "tauth.issuer")
	bindFlag(configViper, flags.Lookup("suggest-provider"), "suggest.provider")
	bindFlag(configViper, flags.Lookup("suggest-model"), "suggest.model")
	return cmd
}

func runServer(ctx context.Context, appConfig config.AppConfig) error {
	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	validator, err := auth.NewValidator(auth.ValidatorConfig{
		SigningSecret: []byte(appConfig.TAuthSigningKey),
		Issuer:        appConfig.TAuthIssuer,
		CookieName:    appConfig.TAuthCookieName,
	})
	if err != nil {
		return err
	}
	directory, err := users.NewDirectory(users.DirectoryConfig{Database: db, Logger: logger})
	if err != nil {
		return err
	}
	store, err := documents.NewService(documents.ServiceConfig{
		Database:   db,
		Clock:      time.Now,
		IDProvider: documents.NewUUIDProvider(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	generator, err := suggest.NewGenerator(ctx, suggest.ProviderConfig{
		Provider: appConfig.SuggestProvider,
		APIKey:   appConfig.SuggestAPIKey,
		Model:    appConfig.SuggestModel,
		BaseURL:  appConfig.SuggestBaseURL,
	})
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	handler, err := server.NewHTTPHandler(server.Dependencies{
		Sessions:  validator,
		Owners:    directory,
		Documents: store,
		Suggester: suggest.NewService(suggest.ServiceConfig{
			Generator: generator,
			Timeout:   appConfig.SuggestTimeout,
			Logger:    logger,
		}),
		Events:         server.NewDocumentEvents(),
		AllowedOrigins: appConfig.AllowedOrigins,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              appConfig.HTTPAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("address", appConfig.HTTPAddress),
			zap.String("suggest_provider", appConfig.SuggestProvider))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
