package candidates

import (
	"context"
	"fmt"
	"math"
	"strings"
)

const (
	minAIScore = 0
	maxAIScore = 100
)

// Source yields the raw candidate pool. It is consulted once, at startup.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]Candidate, error)
}

// Store is the read-only candidate pool. Insertion order is preserved and no
// method mutates it after Load returns.
type Store struct {
	items []Candidate
	byID  map[int]int
}

// Load reads every record from src, validates the whole pool and returns the
// store. Any failure yields a *DataLoadError and no store.
func Load(ctx context.Context, src Source) (*Store, error) {
	if src == nil {
		return nil, &DataLoadError{Source: "none", Index: -1, Reason: "no candidate source configured"}
	}
	items, err := src.Fetch(ctx)
	if err != nil {
		return nil, &DataLoadError{Source: src.Name(), Index: -1, Err: err}
	}
	return newStore(src.Name(), items)
}

func newStore(source string, items []Candidate) (*Store, error) {
	s := &Store{
		items: make([]Candidate, 0, len(items)),
		byID:  make(map[int]int, len(items)),
	}
	for i, c := range items {
		if reason := validate(c); reason != "" {
			return nil, &DataLoadError{Source: source, Index: i, Reason: reason}
		}
		if prev, dup := s.byID[c.ID]; dup {
			return nil, &DataLoadError{
				Source: source,
				Index:  i,
				Reason: fmt.Sprintf("duplicate id %d (first seen at record %d)", c.ID, prev),
			}
		}
		s.byID[c.ID] = len(s.items)
		s.items = append(s.items, c)
	}
	return s, nil
}

func validate(c Candidate) string {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return "name is required"
	case strings.TrimSpace(c.JobRole) == "":
		return "jobRole is required"
	case !c.RecruiterDecision.Valid():
		return fmt.Sprintf("recruiterDecision %q is not Hire or Reject", c.RecruiterDecision)
	case c.ExperienceYears < 0:
		return "experienceYears must be non-negative"
	case c.ProjectsCount < 0:
		return "projectsCount must be non-negative"
	case math.IsNaN(c.SalaryExpectation) || c.SalaryExpectation < 0:
		return "salaryExpectation must be non-negative"
	case math.IsNaN(c.AIScore) || c.AIScore < minAIScore || c.AIScore > maxAIScore:
		return fmt.Sprintf("aiScore %v outside [%d,%d]", c.AIScore, minAIScore, maxAIScore)
	}
	return ""
}

// All returns a copy of the pool in insertion order.
func (s *Store) All() []Candidate {
	if s == nil {
		return nil
	}
	out := make([]Candidate, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the pool size.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// ByID returns the candidate with the given id.
func (s *Store) ByID(id int) (Candidate, error) {
	if s == nil {
		return Candidate{}, ErrNotFound
	}
	idx, ok := s.byID[id]
	if !ok {
		return Candidate{}, ErrNotFound
	}
	return s.items[idx], nil
}
