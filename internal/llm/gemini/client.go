// Package gemini implements llm.Generator on the Google Gen AI SDK, against
// either the Gemini Developer API or Vertex AI.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"

	"candidate-insights/internal/llm"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-3-flash-preview"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options configures the client. APIKey selects the Gemini Developer API;
// Project and Location select Vertex AI.
type Options struct {
	APIKey   string
	Project  string
	Location string
	Vertex   bool
	Model    string
	Timeout  time.Duration
}

// Client sends structured-output requests through genai.
type Client struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

// NewClient builds a genai-backed generator.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	cfg := &genai.ClientConfig{}
	if opts.Vertex {
		if strings.TrimSpace(opts.Project) == "" {
			return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for vertex: %w", llm.ErrCredentialMissing)
		}
		cfg.Backend = genai.BackendVertexAI
		cfg.Project = opts.Project
		cfg.Location = opts.Location
	} else {
		if strings.TrimSpace(opts.APIKey) == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required: %w", llm.ErrCredentialMissing)
		}
		cfg.Backend = genai.BackendGeminiAPI
		cfg.APIKey = opts.APIKey
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newWithModels(client.Models, opts.Model, opts.Timeout), nil
}

func newWithModels(models contentGenerator, model string, timeout time.Duration) *Client {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{models: models, model: model, timeout: timeout}
}

// GenerateJSON asks the model for a JSON document matching req.Schema.
func (c *Client) GenerateJSON(ctx context.Context, req llm.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(req.Temperature),
		ResponseMIMEType: "application/json",
	}
	if req.Schema != nil {
		config.ResponseSchema = toGenaiSchema(req.Schema)
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", translateError(err)
	}
	if resp == nil {
		return "", fmt.Errorf("gemini response empty")
	}
	if resp.UsageMetadata != nil {
		log.Printf("llm response provider=gemini model=%s prompt_tokens=%d completion_tokens=%d latency_ms=%d",
			c.model, resp.UsageMetadata.PromptTokenCount, resp.UsageMetadata.CandidatesTokenCount, time.Since(start).Milliseconds())
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini response empty content")
	}
	return text, nil
}

func translateError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &llm.StatusError{Provider: "gemini", Code: apiErr.Code, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &llm.StatusError{Provider: "gemini", Code: apiErrPtr.Code, Message: apiErrPtr.Message}
	}
	return fmt.Errorf("gemini request: %w", err)
}

func toGenaiSchema(s *llm.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genaiType(s.Type),
		Description: s.Description,
		Items:       toGenaiSchema(s.Items),
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

func genaiType(t string) genai.Type {
	switch t {
	case llm.TypeObject:
		return genai.TypeObject
	case llm.TypeArray:
		return genai.TypeArray
	case llm.TypeNumber:
		return genai.TypeNumber
	case llm.TypeInteger:
		return genai.TypeInteger
	case llm.TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

var _ llm.Generator = (*Client)(nil)
