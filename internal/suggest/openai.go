package suggest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIDefaultModel is used when no model is configured.
const OpenAIDefaultModel = string(openai.ChatModelGPT4oMini)

// OpenAI generates suggestions through the OpenAI chat completions API.
type OpenAI struct {
	client openai.Client
	model  string
}

// OpenAIOption configures an OpenAI generator.
type OpenAIOption func(*OpenAI, *[]option.RequestOption)

// WithOpenAIModel overrides the chat model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(o *OpenAI, _ *[]option.RequestOption) {
		if model != "" {
			o.model = model
		}
	}
}

// WithOpenAIHTTPClient routes requests through client.
func WithOpenAIHTTPClient(client *http.Client) OpenAIOption {
	return func(_ *OpenAI, requestOptions *[]option.RequestOption) {
		if client != nil {
			*requestOptions = append(*requestOptions, option.WithHTTPClient(client))
		}
	}
}

// WithOpenAIBaseURL points the client at a compatible endpoint.
func WithOpenAIBaseURL(baseURL string) OpenAIOption {
	return func(_ *OpenAI, requestOptions *[]option.RequestOption) {
		if baseURL != "" {
			*requestOptions = append(*requestOptions, option.WithBaseURL(baseURL))
		}
	}
}

func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}
	generator := &OpenAI{model: OpenAIDefaultModel}
	requestOptions := []option.RequestOption{option.WithAPIKey(apiKey)}
	for _, opt := range opts {
		opt(generator, &requestOptions)
	}
	generator.client = openai.NewClient(requestOptions...)
	return generator, nil
}

// Generate sends the JSON-only system instruction followed by prompt as the user message.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemInstruction),
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(o.model),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if completion == nil || len(completion.Choices) == 0 {
		return "", errors.New("openai chat completion: no choices returned")
	}
	return completion.Choices[0].Message.Content, nil
}
