package query

import "candidate-insights/internal/candidates"

// KeyFunc extracts the grouping key from a candidate.
type KeyFunc func(candidates.Candidate) string

// GroupCount is one bucket of a grouped count.
type GroupCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ByJobRole groups by job role.
func ByJobRole(c candidates.Candidate) string { return c.JobRole }

// ByEducation groups by education level.
func ByEducation(c candidates.Candidate) string { return c.Education }

// ByDecision groups by recruiter decision.
func ByDecision(c candidates.Candidate) string { return string(c.RecruiterDecision) }

// GroupCountBy counts candidates per key, keeping keys in first-seen order.
// The values always sum to len(cs).
func GroupCountBy(cs []candidates.Candidate, key KeyFunc) []GroupCount {
	out := []GroupCount{}
	index := make(map[string]int)
	for _, c := range cs {
		k := key(c)
		if i, ok := index[k]; ok {
			out[i].Value++
			continue
		}
		index[k] = len(out)
		out = append(out, GroupCount{Name: k, Value: 1})
	}
	return out
}

// ScatterPoint tags an (experience, score) pair with the candidate name.
type ScatterPoint struct {
	Exp   int     `json:"exp"`
	Score float64 `json:"score"`
	Name  string  `json:"name"`
}

// ScatterPairs returns one point per candidate in pool order.
func ScatterPairs(cs []candidates.Candidate) []ScatterPoint {
	out := make([]ScatterPoint, 0, len(cs))
	for _, c := range cs {
		out = append(out, ScatterPoint{Exp: c.ExperienceYears, Score: c.AIScore, Name: c.Name})
	}
	return out
}
