// Package query holds the pure derived views over the candidate pool: filtered
// lists, grouped counts, scatter pairs, and summary statistics. Nothing here
// keeps state between calls.
package query

import (
	"strings"

	"candidate-insights/internal/candidates"
)

// AllRoles is the role filter value that matches every job role.
const AllRoles = "All"

// FilterCandidates returns the candidates whose name or skills contain
// searchTerm case-insensitively and whose job role equals roleFilter, unless
// roleFilter is AllRoles. Relative order is preserved.
func FilterCandidates(cs []candidates.Candidate, searchTerm, roleFilter string) []candidates.Candidate {
	needle := strings.ToLower(searchTerm)
	matchAllRoles := roleFilter == AllRoles || roleFilter == ""

	out := make([]candidates.Candidate, 0, len(cs))
	for _, c := range cs {
		if !matchAllRoles && c.JobRole != roleFilter {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.Name), needle) &&
			!strings.Contains(strings.ToLower(c.Skills), needle) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// DistinctRoles returns AllRoles followed by each job role once, in
// first-seen order.
func DistinctRoles(cs []candidates.Candidate) []string {
	out := []string{AllRoles}
	seen := make(map[string]struct{}, len(cs))
	for _, c := range cs {
		if _, ok := seen[c.JobRole]; ok {
			continue
		}
		seen[c.JobRole] = struct{}{}
		out = append(out, c.JobRole)
	}
	return out
}

// Page slices an already filtered list. A zero limit means no limit; an
// offset past the end yields an empty page.
func Page(cs []candidates.Candidate, limit, offset int) []candidates.Candidate {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(cs) {
		return []candidates.Candidate{}
	}
	end := len(cs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return cs[offset:end]
}
