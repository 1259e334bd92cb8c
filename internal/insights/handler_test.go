package insights

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"candidate-insights/internal/candidates"
	"candidate-insights/internal/flight"
	"candidate-insights/internal/gateway"
)

type sliceSource []candidates.Candidate

func (s sliceSource) Name() string { return "test" }

func (s sliceSource) Fetch(ctx context.Context) ([]candidates.Candidate, error) {
	return s, nil
}

type fakeRunner struct {
	report     gateway.AnalysisReport
	prediction gateway.PredictionResult
	err        error
	block      chan struct{}
	profiles   chan gateway.Profile
}

func (f *fakeRunner) RunPoolAnalysis(ctx context.Context, cs []candidates.Candidate) (gateway.AnalysisReport, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return gateway.AnalysisReport{}, &gateway.GatewayError{Op: gateway.OpPoolAnalysis, Kind: gateway.KindCanceled, Message: "The request was canceled.", Err: ctx.Err()}
		}
	}
	return f.report, f.err
}

func (f *fakeRunner) RunPrediction(ctx context.Context, profile gateway.Profile) (gateway.PredictionResult, error) {
	if f.profiles != nil {
		f.profiles <- profile
	}
	return f.prediction, f.err
}

func newTestRouter(t *testing.T, runner Runner) (*gin.Engine, *flight.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := candidates.Load(context.Background(), sliceSource{
		{ID: 1, Name: "Ana", Skills: "Go", JobRole: "Software Engineer", RecruiterDecision: candidates.DecisionHire, AIScore: 80},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	flights := flight.NewRegistry(flight.Options{Describe: DescribeError})
	t.Cleanup(flights.Close)

	h := NewHandler(runner, store, flights, time.Nanosecond)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))
	return r, flights
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func pollUntil(t *testing.T, r *gin.Engine, path string, want flight.Status) map[string]any {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	var last map[string]any
	for time.Now().Before(deadline) {
		w := serve(r, http.MethodGet, path, "")
		if w.Code == http.StatusOK {
			last = map[string]any{}
			if err := json.Unmarshal(w.Body.Bytes(), &last); err != nil {
				t.Fatalf("decode snapshot: %v", err)
			}
			if last["status"] == string(want) {
				return last
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("status never reached %s, last %v", want, last)
	return nil
}

func TestStartAnalysisAndPoll(t *testing.T) {
	runner := &fakeRunner{report: gateway.AnalysisReport{Summary: "x", Recommendations: []string{"a", "b"}, TopSkills: []string{"Python"}}}
	r, _ := newTestRouter(t, runner)

	w := serve(r, http.MethodPost, "/api/v1/sessions/tab-1/analysis", "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var started map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &started)
	if started["status"] != "pending" || started["runId"] == "" {
		t.Fatalf("unexpected start response: %v", started)
	}

	snap := pollUntil(t, r, "/api/v1/sessions/tab-1/analysis", flight.StatusSucceeded)
	result := snap["result"].(map[string]any)
	recs := result["recommendations"].([]any)
	if result["summary"] != "x" || len(recs) != 2 || recs[0] != "a" || recs[1] != "b" {
		t.Fatalf("unexpected result: %v", result)
	}
	if snap["runId"] != started["runId"] {
		t.Fatalf("run id changed between start and poll")
	}
}

func TestIdleSlot(t *testing.T) {
	r, _ := newTestRouter(t, &fakeRunner{})
	w := serve(r, http.MethodGet, "/api/v1/sessions/tab-9/prediction", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"idle"`) {
		t.Fatalf("expected idle snapshot, got %d %s", w.Code, w.Body.String())
	}
}

func TestAnalysisFailureIsDisplaySafe(t *testing.T) {
	runner := &fakeRunner{err: &gateway.GatewayError{
		Op:      gateway.OpPoolAnalysis,
		Kind:    gateway.KindCredential,
		Message: "The AI service is not configured with an API key.",
		Err:     context.DeadlineExceeded,
	}}
	r, _ := newTestRouter(t, runner)

	if w := serve(r, http.MethodPost, "/api/v1/sessions/tab-1/analysis", ""); w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	snap := pollUntil(t, r, "/api/v1/sessions/tab-1/analysis", flight.StatusFailed)
	errView := snap["error"].(map[string]any)
	if errView["kind"] != "credential" || errView["message"] != "The AI service is not configured with an API key." {
		t.Fatalf("unexpected error view: %v", errView)
	}
	if _, ok := snap["result"]; ok {
		t.Fatalf("failed snapshot must not carry a result")
	}
}

func TestCancelAnalysis(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	defer close(runner.block)
	r, _ := newTestRouter(t, runner)

	if w := serve(r, http.MethodPost, "/api/v1/sessions/tab-1/analysis", ""); w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	w := serve(r, http.MethodDelete, "/api/v1/sessions/tab-1/analysis", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"canceled"`) {
		t.Fatalf("expected canceled snapshot, got %d %s", w.Code, w.Body.String())
	}
}

func TestStartPrediction(t *testing.T) {
	runner := &fakeRunner{
		prediction: gateway.PredictionResult{Decision: candidates.DecisionReject, Confidence: 0.4, Reasoning: "Thin portfolio."},
		profiles:   make(chan gateway.Profile, 1),
	}
	r, _ := newTestRouter(t, runner)

	body := `{"skills":"Go, SQL","experienceYears":3,"jobRole":"Software Engineer"}`
	if w := serve(r, http.MethodPost, "/api/v1/sessions/tab-1/prediction", body); w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	select {
	case p := <-runner.profiles:
		if p.Skills == nil || *p.Skills != "Go, SQL" || p.ExperienceYears == nil || *p.ExperienceYears != 3 || p.Name != nil {
			t.Fatalf("unexpected profile: %+v", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("prediction was never run")
	}
	snap := pollUntil(t, r, "/api/v1/sessions/tab-1/prediction", flight.StatusSucceeded)
	result := snap["result"].(map[string]any)
	if result["decision"] != "Reject" || result["confidence"] != 0.4 {
		t.Fatalf("unexpected result: %v", result)
	}
}

func TestStartPredictionValidation(t *testing.T) {
	r, _ := newTestRouter(t, &fakeRunner{})
	tests := []struct {
		name string
		path string
		body string
	}{
		{"empty body", "/api/v1/sessions/tab-1/prediction", ""},
		{"predicted field supplied", "/api/v1/sessions/tab-1/prediction", `{"skills":"Go","aiScore":90}`},
		{"empty profile", "/api/v1/sessions/tab-1/prediction", `{}`},
		{"trailing data", "/api/v1/sessions/tab-1/prediction", `{"skills":"Go"} garbage`},
		{"two objects", "/api/v1/sessions/tab-1/prediction", `{"skills":"Go"}{"skills":"Rust"}`},
		{"negative experience", "/api/v1/sessions/tab-1/prediction", `{"experienceYears":-2}`},
		{"ill-typed field", "/api/v1/sessions/tab-1/prediction", `{"experienceYears":"five"}`},
		{"bad session id", "/api/v1/sessions/bad%20id/prediction", `{"skills":"Go"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodPost, tt.path, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), `"code":"validation_error"`) {
				t.Fatalf("expected validation envelope, got %s", w.Body.String())
			}
		})
	}
}

func TestPollLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newPollLimiter(time.Second, func() time.Time { return now })
	if !l.Allow("s1", "analysis") {
		t.Fatalf("expected first poll to pass")
	}
	if l.Allow("s1", "analysis") {
		t.Fatalf("expected immediate second poll to be limited")
	}
	if !l.Allow("s1", "prediction") {
		t.Fatalf("expected other operation to pass")
	}
	now = now.Add(2 * time.Second)
	l.Forget()
	if len(l.lastHit) != 0 {
		t.Fatalf("expected stale entries to be dropped")
	}
	if !l.Allow("s1", "analysis") {
		t.Fatalf("expected poll after window to pass")
	}
	if got := l.RetryAfterSeconds(); got != 1 {
		t.Fatalf("expected Retry-After 1, got %d", got)
	}
}
