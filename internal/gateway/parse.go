package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"candidate-insights/internal/candidates"
	"candidate-insights/internal/llm"
)

type rawAnalysisReport struct {
	Summary         *string   `json:"summary"`
	Recommendations *[]*string `json:"recommendations"`
	TopSkills       *[]*string `json:"topSkills"`
}

type rawPrediction struct {
	Decision   *string  `json:"decision"`
	Confidence *float64 `json:"confidence"`
	Reasoning  *string  `json:"reasoning"`
}

func parseAnalysisReport(raw string) (AnalysisReport, error) {
	var parsed rawAnalysisReport
	if err := decodeObject(OpPoolAnalysis, raw, &parsed); err != nil {
		return AnalysisReport{}, err
	}
	switch {
	case parsed.Summary == nil:
		return AnalysisReport{}, schemaError(OpPoolAnalysis, "summary missing")
	case strings.TrimSpace(*parsed.Summary) == "":
		return AnalysisReport{}, schemaError(OpPoolAnalysis, "summary blank")
	case parsed.Recommendations == nil:
		return AnalysisReport{}, schemaError(OpPoolAnalysis, "recommendations missing")
	case parsed.TopSkills == nil:
		return AnalysisReport{}, schemaError(OpPoolAnalysis, "topSkills missing")
	}
	recommendations, err := stringList("recommendations", *parsed.Recommendations)
	if err != nil {
		return AnalysisReport{}, err
	}
	topSkills, err := stringList("topSkills", *parsed.TopSkills)
	if err != nil {
		return AnalysisReport{}, err
	}
	return AnalysisReport{
		Summary:         *parsed.Summary,
		Recommendations: recommendations,
		TopSkills:       topSkills,
	}, nil
}

// stringList rejects null elements; non-string elements already fail decoding.
func stringList(field string, items []*string) ([]string, error) {
	out := make([]string, 0, len(items))
	for i, item := range items {
		if item == nil {
			return nil, schemaError(OpPoolAnalysis, fmt.Sprintf("%s[%d] is null", field, i))
		}
		out = append(out, *item)
	}
	return out, nil
}

func parsePrediction(raw string) (PredictionResult, error) {
	var parsed rawPrediction
	if err := decodeObject(OpPrediction, raw, &parsed); err != nil {
		return PredictionResult{}, err
	}
	switch {
	case parsed.Decision == nil:
		return PredictionResult{}, schemaError(OpPrediction, "decision missing")
	case parsed.Confidence == nil:
		return PredictionResult{}, schemaError(OpPrediction, "confidence missing")
	case parsed.Reasoning == nil:
		return PredictionResult{}, schemaError(OpPrediction, "reasoning missing")
	}

	decision, ok := normalizeDecision(*parsed.Decision)
	if !ok {
		return PredictionResult{}, schemaError(OpPrediction, fmt.Sprintf("decision %q is not Hire or Reject", *parsed.Decision))
	}
	confidence := *parsed.Confidence
	if confidence < 0 || confidence > 1 {
		return PredictionResult{}, schemaError(OpPrediction, fmt.Sprintf("confidence %v outside [0,1]", confidence))
	}
	if strings.TrimSpace(*parsed.Reasoning) == "" {
		return PredictionResult{}, schemaError(OpPrediction, "reasoning blank")
	}
	return PredictionResult{
		Decision:   decision,
		Confidence: confidence,
		Reasoning:  *parsed.Reasoning,
	}, nil
}

// decodeObject separates unparseable text (parse) from valid JSON of the
// wrong shape (schema).
func decodeObject(op, raw string, dst any) error {
	cleaned := llm.CleanJSON(raw)
	if !json.Valid([]byte(cleaned)) {
		return parseError(op, fmt.Errorf("invalid json: %.120q", cleaned))
	}
	if !bytes.HasPrefix([]byte(cleaned), []byte("{")) {
		return schemaError(op, "response is not a JSON object")
	}
	if err := json.Unmarshal([]byte(cleaned), dst); err != nil {
		return schemaError(op, err.Error())
	}
	return nil
}

func normalizeDecision(raw string) (candidates.Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "hire":
		return candidates.DecisionHire, true
	case "reject":
		return candidates.DecisionReject, true
	default:
		return "", false
	}
}
