// Package config loads mailcanvas runtime settings through viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix             = "MAILCANVAS"
	defaultHTTPAddress    = "0.0.0.0:8080"
	defaultDatabasePath   = "mailcanvas.db"
	defaultLogLevel       = "info"
	defaultCookieName     = "app_session"
	defaultIssuer         = "tauth"
	defaultProvider       = "static"
	defaultSuggestTimeout = 20
)

var supportedProviders = map[string]struct{}{
	"static": {},
	"none":   {},
	"openai": {},
	"gemini": {},
}

// AppConfig is the resolved configuration for every mailcanvas command.
type AppConfig struct {
	HTTPAddress     string
	DatabasePath    string
	LogLevel        string
	TAuthSigningKey string
	TAuthCookieName string
	TAuthIssuer     string
	AllowedOrigins  []string
	SuggestProvider string
	SuggestAPIKey   string
	SuggestModel    string
	SuggestBaseURL  string
	SuggestTimeout  time.Duration
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and MAILCANVAS_ env bindings.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("http.allowed_origins", []string{})
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("tauth.cookie_name", defaultCookieName)
	configViper.SetDefault("tauth.issuer", defaultIssuer)
	configViper.SetDefault("suggest.provider", defaultProvider)
	configViper.SetDefault("suggest.timeout_seconds", defaultSuggestTimeout)
}

// Load reads every key. Server-only requirements are checked by ValidateServer.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:     strings.TrimSpace(configViper.GetString("http.address")),
		DatabasePath:    strings.TrimSpace(configViper.GetString("database.path")),
		LogLevel:        configViper.GetString("log.level"),
		TAuthSigningKey: configViper.GetString("tauth.signing_secret"),
		TAuthCookieName: strings.TrimSpace(configViper.GetString("tauth.cookie_name")),
		TAuthIssuer:     strings.TrimSpace(configViper.GetString("tauth.issuer")),
		AllowedOrigins:  splitOrigins(configViper.GetStringSlice("http.allowed_origins")),
		SuggestProvider: strings.ToLower(strings.TrimSpace(configViper.GetString("suggest.provider"))),
		SuggestAPIKey:   configViper.GetString("suggest.api_key"),
		SuggestModel:    strings.TrimSpace(configViper.GetString("suggest.model")),
		SuggestBaseURL:  strings.TrimSpace(configViper.GetString("suggest.base_url")),
		SuggestTimeout:  time.Duration(configViper.GetInt("suggest.timeout_seconds")) * time.Second,
	}
	if _, ok := supportedProviders[cfg.SuggestProvider]; !ok {
		return AppConfig{}, fmt.Errorf("suggest.provider %q is not supported", cfg.SuggestProvider)
	}
	if cfg.SuggestProvider != "static" && cfg.SuggestProvider != "none" && strings.TrimSpace(cfg.SuggestAPIKey) == "" {
		return AppConfig{}, fmt.Errorf("suggest.api_key is required for provider %s", cfg.SuggestProvider)
	}
	if cfg.SuggestTimeout <= 0 {
		return AppConfig{}, fmt.Errorf("suggest.timeout_seconds must be positive")
	}
	return cfg, nil
}

// ValidateServer checks the settings the HTTP service cannot start without.
func (c AppConfig) ValidateServer() error {
	if strings.TrimSpace(c.TAuthSigningKey) == "" {
		return fmt.Errorf("tauth.signing_secret is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.TAuthCookieName == "" {
		return fmt.Errorf("tauth.cookie_name is required")
	}
	if c.HTTPAddress == "" {
		return fmt.Errorf("http.address is required")
	}
	return nil
}

// env values arrive as one comma separated string
func splitOrigins(values []string) []string {
	origins := make([]string, 0, len(values))
	for _, value := range values {
		for _, origin := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}
	return origins
}
