package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"candidate-insights/internal/candidates"
	"candidate-insights/internal/llm"
	"candidate-insights/internal/query"
)

type fakeGenerator struct {
	resp string
	err  error
	reqs []llm.Request
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, req llm.Request) (string, error) {
	f.reqs = append(f.reqs, req)
	return f.resp, f.err
}

func pool(n int) []candidates.Candidate {
	out := make([]candidates.Candidate, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, candidates.Candidate{
			ID:                i,
			Name:              "Secret Name",
			Skills:            "Python, SQL",
			ExperienceYears:   i % 10,
			JobRole:           "Data Scientist",
			RecruiterDecision: candidates.DecisionHire,
			SalaryExpectation: 99999,
			AIScore:           float64(i % 100),
		})
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func TestRunPoolAnalysisParsesReport(t *testing.T) {
	gen := &fakeGenerator{resp: `{"summary":"x","recommendations":["a","b"],"topSkills":["Python"]}`}
	report, err := New(gen).RunPoolAnalysis(context.Background(), pool(3))
	if err != nil {
		t.Fatalf("RunPoolAnalysis: %v", err)
	}
	want := AnalysisReport{Summary: "x", Recommendations: []string{"a", "b"}, TopSkills: []string{"Python"}}
	if !reflect.DeepEqual(report, want) {
		t.Fatalf("expected %+v, got %+v", want, report)
	}
	if len(gen.reqs) != 1 || gen.reqs[0].Temperature != 0.7 {
		t.Fatalf("expected one call at temperature 0.7, got %+v", gen.reqs)
	}
}

func TestRunPoolAnalysisSamplesPrefix(t *testing.T) {
	gen := &fakeGenerator{resp: `{"summary":"x","recommendations":[],"topSkills":[]}`}
	if _, err := New(gen).RunPoolAnalysis(context.Background(), pool(150)); err != nil {
		t.Fatalf("RunPoolAnalysis: %v", err)
	}
	prompt := gen.reqs[0].Prompt
	start := strings.Index(prompt, "[")
	end := strings.LastIndex(prompt, "]")
	if start < 0 || end < start {
		t.Fatalf("prompt has no JSON array: %q", prompt)
	}
	var sample []map[string]any
	if err := json.Unmarshal([]byte(prompt[start:end+1]), &sample); err != nil {
		t.Fatalf("decode sample: %v", err)
	}
	if len(sample) != MaxSample {
		t.Fatalf("expected %d sampled candidates, got %d", MaxSample, len(sample))
	}
	if sample[0]["score"] != float64(1) || sample[99]["score"] != float64(0) {
		t.Fatalf("expected deterministic prefix, got first=%v last=%v", sample[0], sample[99])
	}
	keys := make([]string, 0, len(sample[0]))
	for k := range sample[0] {
		keys = append(keys, k)
	}
	if len(keys) != 5 {
		t.Fatalf("expected five projected fields, got %v", keys)
	}
	if strings.Contains(prompt, "Secret Name") || strings.Contains(prompt, "99999") {
		t.Fatalf("prompt leaked fields outside the projection")
	}
	if !strings.HasPrefix(prompt, "Analyze this hiring data: [") {
		t.Fatalf("unexpected prompt prefix: %.60q", prompt)
	}
}

func TestRunPoolAnalysisEmptyPool(t *testing.T) {
	gen := &fakeGenerator{resp: `{"summary":"nothing","recommendations":[],"topSkills":[]}`}
	if _, err := New(gen).RunPoolAnalysis(context.Background(), nil); err != nil {
		t.Fatalf("RunPoolAnalysis: %v", err)
	}
	if !strings.Contains(gen.reqs[0].Prompt, "data: []") {
		t.Fatalf("expected empty array in prompt, got %q", gen.reqs[0].Prompt)
	}
}

func TestRunPoolAnalysisRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		resp string
		kind ErrorKind
	}{
		{"not json", "Sure! Here is the analysis", KindParse},
		{"array", `["x"]`, KindSchema},
		{"missing topSkills", `{"summary":"x","recommendations":[]}`, KindSchema},
		{"null recommendations", `{"summary":"x","recommendations":null,"topSkills":[]}`, KindSchema},
		{"wrong type", `{"summary":3,"recommendations":[],"topSkills":[]}`, KindSchema},
		{"blank summary", `{"summary":"  ","recommendations":[],"topSkills":[]}`, KindSchema},
		{"null recommendation", `{"summary":"x","recommendations":["a",null],"topSkills":[]}`, KindSchema},
		{"null top skill", `{"summary":"x","recommendations":[],"topSkills":[null]}`, KindSchema},
		{"numeric top skill", `{"summary":"x","recommendations":[],"topSkills":[7]}`, KindSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := New(&fakeGenerator{resp: tt.resp}).RunPoolAnalysis(context.Background(), pool(2))
			var gwErr *GatewayError
			if !errors.As(err, &gwErr) {
				t.Fatalf("expected GatewayError, got %v", err)
			}
			if gwErr.Kind != tt.kind {
				t.Fatalf("expected kind %s, got %s", tt.kind, gwErr.Kind)
			}
			if !reflect.DeepEqual(report, AnalysisReport{}) {
				t.Fatalf("expected zero report on failure, got %+v", report)
			}
		})
	}
}

func TestRunPoolAnalysisStripsFences(t *testing.T) {
	gen := &fakeGenerator{resp: "```json\n{\"summary\":\"x\",\"recommendations\":[\"a\"],\"topSkills\":[]}\n```"}
	report, err := New(gen).RunPoolAnalysis(context.Background(), pool(1))
	if err != nil {
		t.Fatalf("RunPoolAnalysis: %v", err)
	}
	if report.Summary != "x" {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestRunPredictionParsesResult(t *testing.T) {
	gen := &fakeGenerator{resp: `{"decision":"hire","confidence":0.82,"reasoning":"Strong portfolio."}`}
	profile := Profile{Skills: ptr("Go, Kubernetes"), ExperienceYears: ptr(6), JobRole: ptr("Software Engineer")}
	got, err := New(gen).RunPrediction(context.Background(), profile)
	if err != nil {
		t.Fatalf("RunPrediction: %v", err)
	}
	want := PredictionResult{Decision: candidates.DecisionHire, Confidence: 0.82, Reasoning: "Strong portfolio."}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	req := gen.reqs[0]
	if req.Temperature != 0.2 {
		t.Fatalf("expected temperature 0.2, got %v", req.Temperature)
	}
	if !strings.Contains(req.Prompt, `Profile: {"skills":"Go, Kubernetes","experienceYears":6,"jobRole":"Software Engineer"}`) {
		t.Fatalf("unexpected prompt: %q", req.Prompt)
	}
	if req.Schema.Properties["decision"].Description != "Hire or Reject" {
		t.Fatalf("expected decision schema description")
	}
}

func TestRunPredictionRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		resp string
	}{
		{"missing confidence", `{"decision":"Hire","reasoning":"ok"}`},
		{"confidence out of range", `{"decision":"Hire","confidence":82,"reasoning":"ok"}`},
		{"confidence as string", `{"decision":"Hire","confidence":"0.8","reasoning":"ok"}`},
		{"unknown decision", `{"decision":"Maybe","confidence":0.5,"reasoning":"ok"}`},
		{"missing reasoning", `{"decision":"Reject","confidence":0.5}`},
		{"blank reasoning", `{"decision":"Reject","confidence":0.5,"reasoning":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(&fakeGenerator{resp: tt.resp}).RunPrediction(context.Background(), Profile{Skills: ptr("Go")})
			var gwErr *GatewayError
			if !errors.As(err, &gwErr) {
				t.Fatalf("expected GatewayError, got %v", err)
			}
			if gwErr.Kind != KindSchema {
				t.Fatalf("expected schema kind, got %s", gwErr.Kind)
			}
			if got != (PredictionResult{}) {
				t.Fatalf("expected zero result on failure, got %+v", got)
			}
		})
	}
}

func TestGatewayErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{"missing credential", llm.ErrCredentialMissing, KindCredential},
		{"disabled", llm.ErrNotConfigured, KindCredential},
		{"unauthorized", &llm.StatusError{Provider: "gemini", Code: 401, Message: "bad key"}, KindCredential},
		{"server error", &llm.StatusError{Provider: "gemini", Code: 503, Message: "overloaded"}, KindStatus},
		{"timeout", context.DeadlineExceeded, KindTransport},
		{"network", errors.New("dial tcp: connection refused"), KindTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&fakeGenerator{err: tt.err}).RunPrediction(context.Background(), Profile{Skills: ptr("Go")})
			var gwErr *GatewayError
			if !errors.As(err, &gwErr) {
				t.Fatalf("expected GatewayError, got %v", err)
			}
			if gwErr.Kind != tt.kind {
				t.Fatalf("expected kind %s, got %s", tt.kind, gwErr.Kind)
			}
			if strings.Contains(gwErr.Message, "connection refused") || strings.Contains(gwErr.Message, "bad key") {
				t.Fatalf("display message leaked the cause: %q", gwErr.Message)
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected cause to stay wrapped")
			}
		})
	}
}

func TestRunPredictionCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := &fakeGenerator{resp: `{}`}
	_, err := New(gen).RunPrediction(ctx, Profile{Skills: ptr("Go")})
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) || gwErr.Kind != KindCanceled {
		t.Fatalf("expected canceled GatewayError, got %v", err)
	}
	if len(gen.reqs) != 0 {
		t.Fatalf("expected no provider call for a canceled context")
	}
}

func TestNilGeneratorIsDisabled(t *testing.T) {
	_, err := New(nil).RunPoolAnalysis(context.Background(), pool(1))
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) || gwErr.Kind != KindCredential {
		t.Fatalf("expected credential GatewayError, got %v", err)
	}
}

func TestValidateProfile(t *testing.T) {
	if err := ValidateProfile(Profile{JobRole: ptr("Data Scientist")}); err != nil {
		t.Fatalf("expected valid profile, got %v", err)
	}
	tests := []struct {
		name    string
		profile Profile
		field   string
	}{
		{"empty", Profile{}, "profile"},
		{"blank strings", Profile{Name: ptr("  ")}, "profile"},
		{"negative experience", Profile{ExperienceYears: ptr(-1)}, "experienceYears"},
		{"negative salary", Profile{SalaryExpectation: ptr(-5.0)}, "salaryExpectation"},
		{"negative projects", Profile{ProjectsCount: ptr(-2)}, "projectsCount"},
		{"long skills", Profile{Skills: ptr(strings.Repeat("x", 2001))}, "skills"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfile(tt.profile)
			var vErr *query.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, vErr.Field)
			}
		})
	}
}
