package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is the chat model used when none is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIOptions configures an OpenAIGenerator.
type OpenAIOptions struct {
	APIKey string
	Model  string

	// BaseURL points at an OpenAI compatible endpoint, e.g. a local server.
	// Empty uses the public API.
	BaseURL string
}

// OpenAIGenerator implements Generator with the chat completions API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a generator.
func NewOpenAIGenerator(opts OpenAIOptions) *OpenAIGenerator {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	model := opts.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

const nutritionistRole = "You are a skilled nutritionist with expertise in dietary planning and nutrition science."

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		MaxTokens:   params.MaxNewTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: nutritionistRole,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &StatusError{Model: g.model, StatusCode: apiErr.HTTPStatusCode, Body: truncate(apiErr.Message, maxErrorBody)}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", &StatusError{Model: g.model, StatusCode: reqErr.HTTPStatusCode, Body: truncate(reqErr.Error(), maxErrorBody)}
		}
		return "", fmt.Errorf("failed to call %s: %w", g.model, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generate with %s: %w", g.model, ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}
