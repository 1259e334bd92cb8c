package candidates

// Decision is the recruiter's recorded outcome for a candidate.
type Decision string

const (
	DecisionHire   Decision = "Hire"
	DecisionReject Decision = "Reject"
)

// Valid reports whether d is one of the two recorded outcomes.
func (d Decision) Valid() bool {
	return d == DecisionHire || d == DecisionReject
}

// Candidate is one immutable record of the candidate pool.
type Candidate struct {
	ID                int      `json:"id"`
	Name              string   `json:"name"`
	Skills            string   `json:"skills"`
	ExperienceYears   int      `json:"experienceYears"`
	Education         string   `json:"education"`
	Certifications    string   `json:"certifications"`
	JobRole           string   `json:"jobRole"`
	RecruiterDecision Decision `json:"recruiterDecision"`
	SalaryExpectation float64  `json:"salaryExpectation"`
	ProjectsCount     int      `json:"projectsCount"`
	AIScore           float64  `json:"aiScore"`
}

// record is the column layout of the reference dataset.
type record struct {
	ResumeID          int     `json:"Resume_ID"`
	Name              string  `json:"Name"`
	Skills            string  `json:"Skills"`
	ExperienceYears   int     `json:"ExperienceYears"`
	Education         string  `json:"Education"`
	Certifications    string  `json:"Certifications"`
	JobRole           string  `json:"JobRole"`
	RecruiterDecision string  `json:"RecruiterDecision"`
	SalaryExpectation float64 `json:"SalaryExpectation"`
	ProjectsCount     int     `json:"ProjectsCount"`
	AIScore           float64 `json:"AIScore"`
}

func (r record) toCandidate() Candidate {
	return Candidate{
		ID:                r.ResumeID,
		Name:              r.Name,
		Skills:            r.Skills,
		ExperienceYears:   r.ExperienceYears,
		Education:         r.Education,
		Certifications:    r.Certifications,
		JobRole:           r.JobRole,
		RecruiterDecision: Decision(r.RecruiterDecision),
		SalaryExpectation: r.SalaryExpectation,
		ProjectsCount:     r.ProjectsCount,
		AIScore:           r.AIScore,
	}
}

func fromCandidate(c Candidate) record {
	return record{
		ResumeID:          c.ID,
		Name:              c.Name,
		Skills:            c.Skills,
		ExperienceYears:   c.ExperienceYears,
		Education:         c.Education,
		Certifications:    c.Certifications,
		JobRole:           c.JobRole,
		RecruiterDecision: string(c.RecruiterDecision),
		SalaryExpectation: c.SalaryExpectation,
		ProjectsCount:     c.ProjectsCount,
		AIScore:           c.AIScore,
	}
}
