package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"candidate-insights/internal/candidates"
	"candidate-insights/internal/query"
)

func TestWriteWorkbook(t *testing.T) {
	cs := []candidates.Candidate{
		{ID: 7, Name: "Ana Costa", Skills: "React, Node", ExperienceYears: 4, Education: "B.Tech", Certifications: "None", JobRole: "Software Engineer", RecruiterDecision: candidates.DecisionHire, SalaryExpectation: 90000, ProjectsCount: 3, AIScore: 88},
		{ID: 9, Name: "Ben Ito", Skills: "Python", ExperienceYears: 1, Education: "B.Sc", Certifications: "AWS Certified", JobRole: "Data Scientist", RecruiterDecision: candidates.DecisionReject, SalaryExpectation: 50000, ProjectsCount: 1, AIScore: 41},
	}
	wb := Workbook{
		Candidates:  cs,
		Summary:     query.SummaryStats(cs),
		Roles:       query.GroupCountBy(cs, query.ByJobRole),
		Education:   query.GroupCountBy(cs, query.ByEducation),
		Search:      "a",
		GeneratedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	if err := Write(&buf, wb); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{"Candidates", "Summary", "Role Distribution", "Education"}
	if len(sheets) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Fatalf("expected sheets %v, got %v", want, sheets)
		}
	}

	rows, err := f.GetRows("Candidates")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[1][1] != "Ana Costa" || rows[2][7] != "Reject" {
		t.Fatalf("unexpected candidate rows: %v", rows)
	}

	total, err := f.GetCellValue("Summary", "B2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if total != "2" {
		t.Fatalf("expected total 2, got %q", total)
	}
	role, _ := f.GetCellValue("Summary", "B9")
	if role != "All" {
		t.Fatalf("expected default role filter All, got %q", role)
	}

	groups, err := f.GetRows("Role Distribution")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(groups) != 3 || groups[1][0] != "Software Engineer" || groups[1][1] != "1" {
		t.Fatalf("unexpected role rows: %v", groups)
	}
}

func TestWriteEmptyWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Workbook{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected a workbook even with no rows")
	}
}
