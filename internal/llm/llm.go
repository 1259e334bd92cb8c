package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Generator abstracts text-generation providers that answer with a single
// JSON document.
type Generator interface {
	GenerateJSON(ctx context.Context, req Request) (string, error)
}

// Request is one structured-output generation call.
type Request struct {
	Prompt      string
	Temperature float32
	Schema      *Schema
}

// Schema types understood by the providers.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
)

// Schema is the provider-neutral subset of an OpenAPI schema used to
// constrain model output.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// ErrCredentialMissing is returned when no API credential was configured.
var ErrCredentialMissing = errors.New("llm credential missing")

// ErrNotConfigured is returned when the provider is disabled.
var ErrNotConfigured = errors.New("llm provider not configured")

// StatusError is a non-success answer from the provider.
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s http status %d: %s", e.Provider, e.Code, e.Message)
}

// Unauthorized reports whether the provider rejected the credential.
func (e *StatusError) Unauthorized() bool {
	return e.Code == 401 || e.Code == 403
}

// PlaceholderClient answers every call with Err. It stands in when the
// provider is disabled or its credential is absent.
type PlaceholderClient struct {
	Err error
}

// GenerateJSON returns the configured error.
func (p PlaceholderClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	if p.Err != nil {
		return "", p.Err
	}
	return "", ErrNotConfigured
}

// CleanJSON strips surrounding whitespace and a markdown code fence, if any.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the info string, e.g. ```json
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
