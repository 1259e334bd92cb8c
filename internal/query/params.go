package query

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxSearchRunes = 200
	maxRoleRunes   = 100
	// MaxPageLimit caps a single list page.
	MaxPageLimit = 500
)

// ValidationError reports malformed input at the query boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ListParams is the validated form of a list request.
type ListParams struct {
	Search string
	Role   string
	Limit  int
	Offset int
}

// RawListParams carries list inputs exactly as received.
type RawListParams struct {
	Search string
	Role   string
	Limit  string
	Offset string
}

// ParseListParams validates list inputs. A blank role means AllRoles and a
// blank limit means no limit.
func ParseListParams(raw RawListParams) (ListParams, error) {
	search := raw.Search
	if utf8.RuneCountInString(search) > maxSearchRunes {
		return ListParams{}, &ValidationError{Field: "search", Message: fmt.Sprintf("must be at most %d characters", maxSearchRunes)}
	}
	if hasControl(search) {
		return ListParams{}, &ValidationError{Field: "search", Message: "must not contain control characters"}
	}

	role := strings.TrimSpace(raw.Role)
	if role == "" {
		role = AllRoles
	}
	if utf8.RuneCountInString(role) > maxRoleRunes {
		return ListParams{}, &ValidationError{Field: "role", Message: fmt.Sprintf("must be at most %d characters", maxRoleRunes)}
	}
	if hasControl(role) {
		return ListParams{}, &ValidationError{Field: "role", Message: "must not contain control characters"}
	}

	limit, err := parseNonNegative("limit", raw.Limit)
	if err != nil {
		return ListParams{}, err
	}
	if limit > MaxPageLimit {
		return ListParams{}, &ValidationError{Field: "limit", Message: fmt.Sprintf("must be at most %d", MaxPageLimit)}
	}
	offset, err := parseNonNegative("offset", raw.Offset)
	if err != nil {
		return ListParams{}, err
	}

	return ListParams{Search: search, Role: role, Limit: limit, Offset: offset}, nil
}

// KeyByName maps a grouping name from the API to its KeyFunc.
func KeyByName(name string) (KeyFunc, error) {
	switch strings.TrimSpace(name) {
	case "jobRole":
		return ByJobRole, nil
	case "education":
		return ByEducation, nil
	case "recruiterDecision":
		return ByDecision, nil
	default:
		return nil, &ValidationError{Field: "by", Message: "must be one of jobRole, education, recruiterDecision"}
	}
}

// ParseCandidateID validates a candidate id path segment.
func ParseCandidateID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id < 0 {
		return 0, &ValidationError{Field: "id", Message: "must be a non-negative integer"}
	}
	return id, nil
}

func parseNonNegative(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: field, Message: "must be an integer"}
	}
	if val < 0 {
		return 0, &ValidationError{Field: field, Message: "must not be negative"}
	}
	return val, nil
}

func hasControl(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}
