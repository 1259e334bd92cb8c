// Package export renders candidate views as an xlsx workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"candidate-insights/internal/candidates"
	"candidate-insights/internal/query"
)

const (
	candidatesSheet = "Candidates"
	summarySheet    = "Summary"
	rolesSheet      = "Role Distribution"
	educationSheet  = "Education"
)

// Workbook is the data written to one export.
type Workbook struct {
	Candidates  []candidates.Candidate
	Summary     query.Summary
	Roles       []query.GroupCount
	Education   []query.GroupCount
	Search      string
	Role        string
	GeneratedAt time.Time
}

var candidateHeaders = []string{
	"ID", "Name", "Skills", "Experience (Years)", "Education", "Certifications",
	"Job Role", "Recruiter Decision", "Salary Expectation", "Projects", "AI Score",
}

// Write renders wb as xlsx into w.
func Write(w io.Writer, wb Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", candidatesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{summarySheet, rolesSheet, educationSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	if err := writeCandidates(f, headerStyle, wb.Candidates); err != nil {
		return fmt.Errorf("failed to create candidates sheet: %w", err)
	}
	if err := writeSummary(f, headerStyle, wb); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeGroups(f, headerStyle, rolesSheet, "Job Role", wb.Roles); err != nil {
		return fmt.Errorf("failed to create role sheet: %w", err)
	}
	if err := writeGroups(f, headerStyle, educationSheet, "Education", wb.Education); err != nil {
		return fmt.Errorf("failed to create education sheet: %w", err)
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeCandidates(f *excelize.File, headerStyle int, cs []candidates.Candidate) error {
	header := make([]any, 0, len(candidateHeaders))
	for _, h := range candidateHeaders {
		header = append(header, h)
	}
	if err := f.SetSheetRow(candidatesSheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(candidatesSheet, "A1", "K1", headerStyle); err != nil {
		return err
	}
	_ = f.SetColWidth(candidatesSheet, "A", "A", 8)
	_ = f.SetColWidth(candidatesSheet, "B", "B", 22)
	_ = f.SetColWidth(candidatesSheet, "C", "C", 40)
	_ = f.SetColWidth(candidatesSheet, "D", "K", 16)

	for i, c := range cs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			c.ID, c.Name, c.Skills, c.ExperienceYears, c.Education, c.Certifications,
			c.JobRole, string(c.RecruiterDecision), c.SalaryExpectation, c.ProjectsCount, c.AIScore,
		}
		if err := f.SetSheetRow(candidatesSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, headerStyle int, wb Workbook) error {
	role := wb.Role
	if role == "" {
		role = query.AllRoles
	}
	generated := wb.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}
	rows := [][]any{
		{"Metric", "Value"},
		{"Total Candidates", wb.Summary.Total},
		{"Hires", wb.Summary.Hires},
		{"Hire Rate (%)", wb.Summary.HireRatePercent},
		{"Avg AI Score", wb.Summary.AvgScore},
		{"Avg Salary Expectation", wb.Summary.AvgSalary},
		{"Exported Rows", len(wb.Candidates)},
		{"Search Filter", wb.Search},
		{"Role Filter", role},
		{"Generated At", generated.Format(time.RFC3339)},
	}
	for i, row := range rows {
		row := row
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 26)
	_ = f.SetColWidth(summarySheet, "B", "B", 26)
	return f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
}

func writeGroups(f *excelize.File, headerStyle int, sheet, label string, groups []query.GroupCount) error {
	header := []any{label, "Count"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, g := range groups {
		row := []any{g.Name, g.Value}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 26)
	return f.SetCellStyle(sheet, "A1", "B1", headerStyle)
}
