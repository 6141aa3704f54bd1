package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ironsheep/food-label-mcp/internal/logger"
)

const (
	// DefaultBaseURL is the Hugging Face serverless inference endpoint.
	DefaultBaseURL = "https://api-inference.huggingface.co"

	// DefaultClassifierModel is the zero-shot classification model.
	DefaultClassifierModel = "facebook/bart-large-mnli"

	// DefaultGeneratorModel is the instruction-tuned generation model.
	DefaultGeneratorModel = "mistralai/Mixtral-8x7B-Instruct-v0.1"

	// DefaultPromptTemplate wraps prompts in the Mixtral instruction format.
	DefaultPromptTemplate = "<s>[INST] %s [/INST]"

	// DefaultTimeout bounds a single inference request.
	DefaultTimeout = 60 * time.Second
)

// Classification is a zero-shot result. Labels are sorted by descending
// score, so index 0 is the winner.
type Classification struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Top returns the best label and its score.
func (c *Classification) Top() (string, float64, bool) {
	if c == nil || len(c.Labels) == 0 || len(c.Scores) == 0 {
		return "", 0, false
	}
	return c.Labels[0], c.Scores[0], true
}

// GenerationParams are the sampling parameters for a Generate call.
type GenerationParams struct {
	MaxNewTokens int
	Temperature  float32
	TopP         float32
}

// Classifier scores text against candidate labels.
type Classifier interface {
	Classify(ctx context.Context, text string, labels []string) (*Classification, error)
}

// Generator completes a plain-language instruction prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// HuggingFaceOptions configures a HuggingFaceClient. Zero fields take the
// package defaults.
type HuggingFaceOptions struct {
	BaseURL         string
	Token           string
	ClassifierModel string
	GeneratorModel  string

	// PromptTemplate is a fmt format with a single %s for the prompt.
	PromptTemplate string

	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// HuggingFaceClient calls the Hugging Face inference API. It implements
// both Classifier and Generator and is safe for concurrent use.
type HuggingFaceClient struct {
	baseURL         string
	token           string
	classifierModel string
	generatorModel  string
	promptTemplate  string
	client          *http.Client
	log             zerolog.Logger
}

// NewHuggingFaceClient creates a client, filling defaults.
func NewHuggingFaceClient(opts HuggingFaceOptions) *HuggingFaceClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.ClassifierModel == "" {
		opts.ClassifierModel = DefaultClassifierModel
	}
	if opts.GeneratorModel == "" {
		opts.GeneratorModel = DefaultGeneratorModel
	}
	if opts.PromptTemplate == "" {
		opts.PromptTemplate = DefaultPromptTemplate
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	log := logger.WithComponent("huggingface")
	if opts.Logger != nil {
		log = *opts.Logger
	}

	return &HuggingFaceClient{
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		token:           opts.Token,
		classifierModel: opts.ClassifierModel,
		generatorModel:  opts.GeneratorModel,
		promptTemplate:  opts.PromptTemplate,
		client:          client,
		log:             log,
	}
}

// Classify implements Classifier with zero-shot classification.
func (c *HuggingFaceClient) Classify(ctx context.Context, text string, labels []string) (*Classification, error) {
	body := map[string]interface{}{
		"inputs": text,
		"parameters": map[string]interface{}{
			"candidate_labels": labels,
		},
	}

	var result Classification
	if err := c.post(ctx, c.classifierModel, body, &result); err != nil {
		return nil, err
	}
	if len(result.Labels) == 0 || len(result.Labels) != len(result.Scores) {
		return nil, fmt.Errorf("classify with %s: %w", c.classifierModel, ErrEmptyResponse)
	}
	return &result, nil
}

// Generate implements Generator. The prompt is wrapped in PromptTemplate and
// only the generated continuation is returned, possibly empty. An empty
// result list is ErrEmptyResponse.
func (c *HuggingFaceClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	body := map[string]interface{}{
		"inputs": fmt.Sprintf(c.promptTemplate, prompt),
		"parameters": map[string]interface{}{
			"max_new_tokens":   params.MaxNewTokens,
			"temperature":      params.Temperature,
			"top_p":            params.TopP,
			"return_full_text": false,
		},
	}

	var result []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := c.post(ctx, c.generatorModel, body, &result); err != nil {
		return "", err
	}
	if len(result) == 0 {
		return "", fmt.Errorf("generate with %s: %w", c.generatorModel, ErrEmptyResponse)
	}
	// An empty completion is an answer; callers pad it with defaults.
	return result[0].GeneratedText, nil
}

func (c *HuggingFaceClient) post(ctx context.Context, model string, body interface{}, out interface{}) error {
	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	url := c.baseURL + "/models/" + model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.log.Debug().
		Str("req_id", reqID).
		Str("model", model).
		Int("content_length", len(bs)).
		Msg("Sending inference request")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Error().
			Err(err).
			Str("req_id", reqID).
			Int64("elapsed_ms", time.Since(start).Milliseconds()).
			Msg("Inference request failed")
		return fmt.Errorf("failed to call %s: %w", model, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug().
		Str("req_id", reqID).
		Str("model", model).
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("Inference response")

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return fmt.Errorf("%s: %w", model, ErrModelLoading)
	case resp.StatusCode/100 != 2:
		return newStatusError(model, resp.StatusCode, raw)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", model, err)
	}
	return nil
}
