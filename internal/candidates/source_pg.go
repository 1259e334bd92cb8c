package candidates

import (
	"context"
	"database/sql"
	"fmt"
)

// PGSource reads the pool from the candidates table.
type PGSource struct {
	DB *sql.DB
}

func (s *PGSource) Name() string { return "postgres" }

// Fetch returns every row in insertion order.
func (s *PGSource) Fetch(ctx context.Context) ([]Candidate, error) {
	if s == nil || s.DB == nil {
		return nil, fmt.Errorf("postgres source has no database")
	}
	const query = `
SELECT
    resume_id,
    name,
    skills,
    experience_years,
    education,
    certifications,
    job_role,
    recruiter_decision,
    salary_expectation,
    projects_count,
    ai_score
FROM candidates
ORDER BY seq ASC`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var (
			c        Candidate
			decision string
		)
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Skills,
			&c.ExperienceYears,
			&c.Education,
			&c.Certifications,
			&c.JobRole,
			&decision,
			&c.SalaryExpectation,
			&c.ProjectsCount,
			&c.AIScore,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		c.RecruiterDecision = Decision(decision)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}

// Seed copies items into the candidates table, skipping ids that already exist.
// It is an operator tool; the running service never writes.
func Seed(ctx context.Context, db *sql.DB, items []Candidate) (int, error) {
	const query = `
INSERT INTO candidates (
    resume_id,
    name,
    skills,
    experience_years,
    education,
    certifications,
    job_role,
    recruiter_decision,
    salary_expectation,
    projects_count,
    ai_score
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (resume_id) DO NOTHING`

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for _, c := range items {
		res, err := tx.ExecContext(ctx, query,
			c.ID,
			c.Name,
			c.Skills,
			c.ExperienceYears,
			c.Education,
			c.Certifications,
			c.JobRole,
			string(c.RecruiterDecision),
			c.SalaryExpectation,
			c.ProjectsCount,
			c.AIScore,
		)
		if err != nil {
			return 0, fmt.Errorf("insert candidate %d: %w", c.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return inserted, nil
}
