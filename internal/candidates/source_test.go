package candidates

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var candidateColumns = []string{
	"resume_id", "name", "skills", "experience_years", "education", "certifications",
	"job_role", "recruiter_decision", "salary_expectation", "projects_count", "ai_score",
}

func TestPGSourceFetch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM candidates").
		WillReturnRows(sqlmock.NewRows(candidateColumns).
			AddRow(3, "Ana", "React, Node", 4, "B.Tech", "None", "Software Engineer", "Hire", 90000.0, 6, 88.0).
			AddRow(1, "Bo", "Python", 1, "B.Sc", "AWS Certified", "Data Scientist", "Reject", 50000.0, 2, 41.5))

	src := &PGSource{DB: db}
	items, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(items))
	}
	if items[0].ID != 3 || items[0].RecruiterDecision != DecisionHire || items[0].Skills != "React, Node" {
		t.Fatalf("unexpected first row: %+v", items[0])
	}
	if items[1].AIScore != 41.5 {
		t.Fatalf("expected aiScore 41.5, got %v", items[1].AIScore)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGSourceQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM candidates").WillReturnError(errors.New("relation does not exist"))

	_, err = Load(context.Background(), &PGSource{DB: db})
	var loadErr *DataLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected DataLoadError, got %v", err)
	}
	if loadErr.Source != "postgres" {
		t.Fatalf("expected source postgres, got %q", loadErr.Source)
	}
}

func TestSeedInsertsRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	c := validCandidate(5)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO candidates").
		WithArgs(c.ID, c.Name, c.Skills, c.ExperienceYears, c.Education, c.Certifications,
			c.JobRole, "Hire", c.SalaryExpectation, c.ProjectsCount, c.AIScore).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := Seed(context.Background(), db, []Candidate{c})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 inserted row, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

type fakeObjectGetter struct {
	body []byte
	err  error
	in   *s3.GetObjectInput
}

func (f *fakeObjectGetter) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.in = params
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.body))}, nil
}

func TestS3SourceFetch(t *testing.T) {
	raw, err := EncodeDataset([]Candidate{validCandidate(1), validCandidate(2)})
	if err != nil {
		t.Fatalf("EncodeDataset: %v", err)
	}
	getter := &fakeObjectGetter{body: raw}
	src := &S3Source{Client: getter, Bucket: "pool", Key: "candidates.json"}

	store, err := Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 candidates, got %d", store.Len())
	}
	if getter.in == nil || *getter.in.Bucket != "pool" || *getter.in.Key != "candidates.json" {
		t.Fatalf("unexpected GetObject input: %+v", getter.in)
	}
}

func TestS3SourceMalformedObject(t *testing.T) {
	src := &S3Source{Client: &fakeObjectGetter{body: []byte("not json")}, Bucket: "b", Key: "k"}
	_, err := Load(context.Background(), src)
	var loadErr *DataLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected DataLoadError, got %v", err)
	}
}

func TestNewS3SourceRequiresLocation(t *testing.T) {
	if _, err := NewS3Source(context.Background(), "us-east-1", "", "key"); err == nil {
		t.Fatalf("expected missing bucket to fail")
	}
}
