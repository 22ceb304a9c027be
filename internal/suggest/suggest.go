// Package suggest proposes fonts and colour palettes for an email layout using a
// hosted language model, degrading to a deterministic fallback.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

var (
	// ErrUpstreamUnavailable indicates the model call itself failed. Suggestions are
	// still returned from the fallback.
	ErrUpstreamUnavailable = errors.New("suggest: upstream unavailable")
	// ErrInvalidAPIKey indicates a provider was configured without credentials.
	ErrInvalidAPIKey = errors.New("suggest: invalid or missing api key")
	// ErrUnknownProvider indicates an unsupported provider name.
	ErrUnknownProvider = errors.New("suggest: unknown provider")

	errEmptySuggestions = errors.New("suggest: model returned no suggestions")
)

const (
	maxPromptHTML     = 2000
	defaultTimeout    = 20 * time.Second
	systemInstruction = "You are Email Canvas, an assistant that returns JSON only."
)

// DefaultPreferredFonts seeds requests that carry no font preferences.
var DefaultPreferredFonts = []string{"Inter", "Roboto", "Lato"}

// DefaultPreferredPalettes seeds requests that carry no palette preferences.
var DefaultPreferredPalettes = []string{"Blue/Gray", "Purple/Orange", "Monochromatic Green"}

// Request is the layout and preferences a suggestion is made for.
type Request struct {
	HTML              string   `json:"html"`
	PreferredFonts    []string `json:"preferredFonts"`
	PreferredPalettes []string `json:"preferredPalettes"`
}

// Suggestions lists fonts and named palettes, best first.
type Suggestions struct {
	SuggestedFonts         []string `json:"suggestedFonts"`
	SuggestedColorPalettes []string `json:"suggestedColorPalettes"`
}

// Generator sends a prompt to a language model and returns its raw reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// BuildPrompt renders the user prompt. Only the first 2000 bytes of HTML are
// sent, cut back to a rune boundary. The system instruction travels separately.
func BuildPrompt(request Request) string {
	html := truncateHTML(request.HTML, maxPromptHTML)
	fonts := request.PreferredFonts
	if len(fonts) == 0 {
		fonts = DefaultPreferredFonts
	}
	palettes := request.PreferredPalettes
	if len(palettes) == 0 {
		palettes = DefaultPreferredPalettes
	}
	return strings.Join([]string{
		`Analyze the provided HTML snippet and suggest modern fonts and color palettes. Reply with {"suggestedFonts":[...],"suggestedColorPalettes":[...]}.`,
		"HTML:" + html,
		"Preferred fonts:" + strings.Join(fonts, ","),
		"Preferred palettes:" + strings.Join(palettes, ","),
	}, "\n")
}

func truncateHTML(html string, limit int) string {
	if len(html) <= limit {
		return html
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(html[cut]) {
		cut--
	}
	return html[:cut]
}

// Fallback derives suggestions from keywords in the prompt.
func Fallback(prompt string) Suggestions {
	lower := strings.ToLower(prompt)
	fonts := []string{"Inter", "Roboto", "Lato"}
	if strings.Contains(lower, "editorial") || strings.Contains(lower, "story") {
		fonts = []string{"Playfair Display", "Inter", "Source Serif"}
	}
	palettes := []string{"Blue & Silver", "Warm Coral", "Emerald Focus"}
	if strings.Contains(lower, "violet") {
		palettes = []string{"Violet & Charcoal", "Soft Lilac", "Deep Purple"}
	}
	return Suggestions{SuggestedFonts: fonts, SuggestedColorPalettes: palettes}
}

// ParseSuggestions decodes a model reply, tolerating markdown code fences.
func ParseSuggestions(raw string) (Suggestions, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var suggestions Suggestions
	if err := json.Unmarshal([]byte(trimmed), &suggestions); err != nil {
		return Suggestions{}, err
	}
	suggestions.SuggestedFonts = compact(suggestions.SuggestedFonts)
	suggestions.SuggestedColorPalettes = compact(suggestions.SuggestedColorPalettes)
	if len(suggestions.SuggestedFonts) == 0 && len(suggestions.SuggestedColorPalettes) == 0 {
		return Suggestions{}, errEmptySuggestions
	}
	return suggestions, nil
}

func compact(values []string) []string {
	result := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, duplicate := seen[trimmed]; duplicate {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

// ServiceConfig wires the suggestion service. A nil Generator always uses the fallback.
type ServiceConfig struct {
	Generator Generator
	Timeout   time.Duration
	Logger    *zap.Logger
}

// Service asks the configured model for suggestions.
type Service struct {
	generator Generator
	timeout   time.Duration
	logger    *zap.Logger
}

func NewService(cfg ServiceConfig) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{generator: cfg.Generator, timeout: timeout, logger: logger}
}

// Suggest always returns usable suggestions. When the model call fails the
// fallback is returned together with ErrUpstreamUnavailable; an unusable reply
// falls back silently.
func (s *Service) Suggest(ctx context.Context, request Request) (Suggestions, error) {
	prompt := BuildPrompt(request)
	if s.generator == nil {
		return Fallback(prompt), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.generator.Generate(callCtx, prompt)
	if err != nil {
		s.logger.Warn("suggestion request failed", zap.Error(err))
		return Fallback(prompt), fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	suggestions, err := ParseSuggestions(raw)
	if err != nil {
		s.logger.Info("suggestion reply unusable, using fallback", zap.Error(err))
		return Fallback(prompt), nil
	}
	return suggestions, nil
}
