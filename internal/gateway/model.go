package gateway

import "candidate-insights/internal/candidates"

// AnalysisReport is the pool-level narrative returned by the model.
// Recommendations are ordered; TopSkills keep the order returned.
type AnalysisReport struct {
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
	TopSkills       []string `json:"topSkills"`
}

// PredictionResult is a single hire/reject prediction.
type PredictionResult struct {
	Decision   candidates.Decision `json:"decision"`
	Confidence float64             `json:"confidence"`
	Reasoning  string              `json:"reasoning"`
}

// Profile is a partial candidate. The fields being predicted (id, aiScore,
// recruiterDecision) are absent by construction; nil fields are omitted from
// the request.
type Profile struct {
	Name              *string  `json:"name,omitempty"`
	Skills            *string  `json:"skills,omitempty"`
	ExperienceYears   *int     `json:"experienceYears,omitempty"`
	Education         *string  `json:"education,omitempty"`
	Certifications    *string  `json:"certifications,omitempty"`
	JobRole           *string  `json:"jobRole,omitempty"`
	SalaryExpectation *float64 `json:"salaryExpectation,omitempty"`
	ProjectsCount     *int     `json:"projectsCount,omitempty"`
}

// poolSample is the reduced projection sent for pool analysis.
type poolSample struct {
	Role     string              `json:"role"`
	Skills   string              `json:"skills"`
	Exp      int                 `json:"exp"`
	Decision candidates.Decision `json:"decision"`
	Score    float64             `json:"score"`
}
