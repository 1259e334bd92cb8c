package query

import (
	"math"

	"candidate-insights/internal/candidates"
)

// Summary holds the dashboard headline numbers. HireRate is a fraction in
// [0,1]; HireRatePercent is the same value rounded to a whole percent.
type Summary struct {
	Total           int     `json:"total"`
	Hires           int     `json:"hires"`
	HireRate        float64 `json:"hireRate"`
	HireRatePercent int     `json:"hireRatePercent"`
	AvgScore        float64 `json:"avgScore"`
	AvgSalary       int64   `json:"avgSalary"`
}

// SummaryStats aggregates the whole pool. An empty pool yields the zero
// Summary rather than dividing by zero.
func SummaryStats(cs []candidates.Candidate) Summary {
	if len(cs) == 0 {
		return Summary{}
	}

	var (
		hires       int
		scoreTotal  float64
		salaryTotal float64
	)
	for _, c := range cs {
		if c.RecruiterDecision == candidates.DecisionHire {
			hires++
		}
		scoreTotal += c.AIScore
		salaryTotal += c.SalaryExpectation
	}

	total := float64(len(cs))
	rate := float64(hires) / total
	return Summary{
		Total:           len(cs),
		Hires:           hires,
		HireRate:        rate,
		HireRatePercent: int(math.Round(rate * 100)),
		AvgScore:        math.Round(scoreTotal/total*10) / 10,
		AvgSalary:       int64(math.Round(salaryTotal / total)),
	}
}
