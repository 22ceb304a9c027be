package suggest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GeminiDefaultModel is used when no model is configured.
const GeminiDefaultModel = "gemini-2.5-flash"

// Gemini generates suggestions through the Gemini API.
type Gemini struct {
	client     *genai.Client
	model      string
	httpClient *http.Client
	baseURL    string
}

// GeminiOption configures a Gemini generator.
type GeminiOption func(*Gemini)

// WithGeminiModel overrides the model name.
func WithGeminiModel(model string) GeminiOption {
	return func(g *Gemini) {
		if model != "" {
			g.model = model
		}
	}
}

// WithGeminiHTTPClient routes requests through client.
func WithGeminiHTTPClient(client *http.Client) GeminiOption {
	return func(g *Gemini) {
		g.httpClient = client
	}
}

// WithGeminiBaseURL points the client at an alternate endpoint.
func WithGeminiBaseURL(baseURL string) GeminiOption {
	return func(g *Gemini) {
		g.baseURL = baseURL
	}
}

func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}
	generator := &Gemini{model: GeminiDefaultModel}
	for _, opt := range opts {
		opt(generator)
	}

	config := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: generator.httpClient,
	}
	if generator.baseURL != "" {
		config.HTTPOptions = genai.HTTPOptions{BaseURL: generator.baseURL}
	}
	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	generator.client = client
	return generator, nil
}

// Generate requests a JSON reply for prompt.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if response == nil {
		return "", errors.New("gemini generate content: empty response")
	}
	return response.Text(), nil
}
