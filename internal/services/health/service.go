package health

import "time"

// Service encapsulates health-related checks.
type Service struct {
	candidates int
	source     string
	provider   string
	started    time.Time
	now        func() time.Time
}

// NewService constructs a health service for a loaded pool.
func NewService(candidates int, source, provider string) *Service {
	return &Service{
		candidates: candidates,
		source:     source,
		provider:   provider,
		started:    time.Now(),
		now:        time.Now,
	}
}

// Status returns the health payload. The pool is loaded before the server
// starts, so a running process is always ready.
func (s *Service) Status() map[string]any {
	return map[string]any{
		"ok":            true,
		"candidates":    s.candidates,
		"source":        s.source,
		"llmProvider":   s.provider,
		"uptimeSeconds": int64(s.now().Sub(s.started).Seconds()),
	}
}
