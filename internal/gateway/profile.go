package gateway

import (
	"strings"
	"unicode/utf8"

	"candidate-insights/internal/query"
)

const maxProfileText = 2000

// ValidateProfile rejects negative numbers, oversized text and an entirely
// empty profile before anything is sent to the provider.
func ValidateProfile(p Profile) error {
	empty := true
	texts := []struct {
		field string
		val   *string
	}{
		{"name", p.Name},
		{"skills", p.Skills},
		{"education", p.Education},
		{"certifications", p.Certifications},
		{"jobRole", p.JobRole},
	}
	for _, t := range texts {
		field, val := t.field, t.val
		if val == nil {
			continue
		}
		if utf8.RuneCountInString(*val) > maxProfileText {
			return &query.ValidationError{Field: field, Message: "is too long"}
		}
		if strings.TrimSpace(*val) != "" {
			empty = false
		}
	}
	if p.ExperienceYears != nil {
		if *p.ExperienceYears < 0 {
			return &query.ValidationError{Field: "experienceYears", Message: "must not be negative"}
		}
		empty = false
	}
	if p.SalaryExpectation != nil {
		if *p.SalaryExpectation < 0 {
			return &query.ValidationError{Field: "salaryExpectation", Message: "must not be negative"}
		}
		empty = false
	}
	if p.ProjectsCount != nil {
		if *p.ProjectsCount < 0 {
			return &query.ValidationError{Field: "projectsCount", Message: "must not be negative"}
		}
		empty = false
	}
	if empty {
		return &query.ValidationError{Field: "profile", Message: "at least one field is required"}
	}
	return nil
}
