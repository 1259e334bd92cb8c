package llm

import (
	"context"
	"errors"
	"testing"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", ` {"a":1} `, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```\n", `{"a":1}`},
		{"single line fence", "```json{\"a\":1}```", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanJSON(tt.raw); got != tt.want {
				t.Fatalf("CleanJSON(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPlaceholderClient(t *testing.T) {
	_, err := PlaceholderClient{}.GenerateJSON(context.Background(), Request{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	_, err = PlaceholderClient{Err: ErrCredentialMissing}.GenerateJSON(context.Background(), Request{})
	if !errors.Is(err, ErrCredentialMissing) {
		t.Fatalf("expected ErrCredentialMissing, got %v", err)
	}
}

func TestStatusErrorUnauthorized(t *testing.T) {
	if !(&StatusError{Code: 403}).Unauthorized() {
		t.Fatalf("expected 403 to be unauthorized")
	}
	if (&StatusError{Code: 500}).Unauthorized() {
		t.Fatalf("expected 500 not to be unauthorized")
	}
}
