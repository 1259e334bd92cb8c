// Package gateway turns the candidate pool and partial profiles into
// structured requests for the text-generation provider and validates what
// comes back. Callers receive either a complete typed result or a
// *GatewayError.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"candidate-insights/internal/candidates"
	"candidate-insights/internal/llm"
	"candidate-insights/internal/shared/telemetry"
)

// Operation names, used for logging, metrics, and single-flight slots.
const (
	OpPoolAnalysis = "analysis"
	OpPrediction   = "prediction"
)

const (
	// MaxSample bounds how many candidates are sent for pool analysis.
	MaxSample = 100

	poolAnalysisTemperature = 0.7
	predictionTemperature   = 0.2
)

var poolAnalysisSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"summary":         {Type: llm.TypeString},
		"recommendations": {Type: llm.TypeArray, Items: &llm.Schema{Type: llm.TypeString}},
		"topSkills":       {Type: llm.TypeArray, Items: &llm.Schema{Type: llm.TypeString}},
	},
	Required: []string{"summary", "recommendations", "topSkills"},
}

var predictionSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"decision":   {Type: llm.TypeString, Description: "Hire or Reject"},
		"confidence": {Type: llm.TypeNumber},
		"reasoning":  {Type: llm.TypeString},
	},
	Required: []string{"decision", "confidence", "reasoning"},
}

// Gateway wraps a provider. It holds no per-call state; every call issues a
// fresh request.
type Gateway struct {
	gen llm.Generator
}

// New returns a Gateway over gen. A nil gen behaves as a disabled provider.
func New(gen llm.Generator) *Gateway {
	if gen == nil {
		gen = llm.PlaceholderClient{}
	}
	return &Gateway{gen: gen}
}

// RunPoolAnalysis sends the first MaxSample candidates, reduced to role,
// skills, experience, decision and score, and returns the parsed report.
func (g *Gateway) RunPoolAnalysis(ctx context.Context, cs []candidates.Candidate) (AnalysisReport, error) {
	sample := samplePool(cs)
	data, err := json.Marshal(sample)
	if err != nil {
		return AnalysisReport{}, &GatewayError{Op: OpPoolAnalysis, Kind: KindParse, Message: "The candidate sample could not be encoded.", Err: err}
	}

	raw, err := g.generate(ctx, OpPoolAnalysis, llm.Request{
		Prompt:      poolAnalysisPrompt(string(data)),
		Temperature: poolAnalysisTemperature,
		Schema:      poolAnalysisSchema,
	}, map[string]any{"sample_size": len(sample)})
	if err != nil {
		return AnalysisReport{}, err
	}
	return parseAnalysisReport(raw)
}

// RunPrediction asks for a hire/reject prediction for a partial profile.
func (g *Gateway) RunPrediction(ctx context.Context, profile Profile) (PredictionResult, error) {
	data, err := json.Marshal(profile)
	if err != nil {
		return PredictionResult{}, &GatewayError{Op: OpPrediction, Kind: KindParse, Message: "The profile could not be encoded.", Err: err}
	}

	raw, err := g.generate(ctx, OpPrediction, llm.Request{
		Prompt:      predictionPrompt(string(data)),
		Temperature: predictionTemperature,
		Schema:      predictionSchema,
	}, nil)
	if err != nil {
		return PredictionResult{}, err
	}
	return parsePrediction(raw)
}

func (g *Gateway) generate(ctx context.Context, op string, req llm.Request, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", callError(op, err)
	}

	start := time.Now()
	raw, err := g.gen.GenerateJSON(ctx, req)
	logFields := map[string]any{
		"op":         op,
		"latency_ms": time.Since(start).Milliseconds(),
	}
	for k, v := range fields {
		logFields[k] = v
	}
	if err != nil {
		// A canceled parent wins over whatever the transport reported.
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
			err = fmt.Errorf("%w: %v", context.Canceled, err)
		}
		gwErr := callError(op, err)
		logFields["kind"] = string(gwErr.Kind)
		logFields["error"] = gwErr.Cause()
		telemetry.Error("gateway.call_failed", logFields)
		return "", gwErr
	}
	telemetry.Info("gateway.call_completed", logFields)
	return raw, nil
}

func samplePool(cs []candidates.Candidate) []poolSample {
	n := len(cs)
	if n > MaxSample {
		n = MaxSample
	}
	out := make([]poolSample, 0, n)
	for _, c := range cs[:n] {
		out = append(out, poolSample{
			Role:     c.JobRole,
			Skills:   c.Skills,
			Exp:      c.ExperienceYears,
			Decision: c.RecruiterDecision,
			Score:    c.AIScore,
		})
	}
	return out
}
