package health

import (
	"testing"
	"time"
)

func TestStatus(t *testing.T) {
	svc := NewService(36, "embedded", "gemini")
	svc.now = func() time.Time { return svc.started.Add(90 * time.Second) }

	got := svc.Status()
	if got["ok"] != true || got["candidates"] != 36 {
		t.Fatalf("unexpected status: %v", got)
	}
	if got["source"] != "embedded" || got["llmProvider"] != "gemini" {
		t.Fatalf("unexpected labels: %v", got)
	}
	if got["uptimeSeconds"] != int64(90) {
		t.Fatalf("expected 90s uptime, got %v", got["uptimeSeconds"])
	}
}
