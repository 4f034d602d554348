// Package report renders alternative-class rankings as spreadsheets.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-classmatch/internal/content"
	"github.com/p-n-ai/pai-classmatch/internal/recommend"
)

// Sheet names.
const (
	SheetAlternatives = "Alternatives"
	SheetSkipped      = "Skipped"
)

// ContentType is the MIME type of reports produced by WriteAlternatives.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var alternativesHeader = []any{
	"Rank", "Class ID", "Overall", "Skill Overlap", "Objective Alignment",
	"Prerequisite Compatibility", "Difficulty Match", "Content Type Match",
	"Matching Skills", "Missing Skills",
}

var skippedHeader = []any{"Class ID", "Reason"}

// WriteAlternatives writes ranking as an xlsx workbook to w.
func WriteAlternatives(w io.Writer, ranking recommend.Ranking) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetAlternatives); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSkipped); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := writeHeader(f, SheetAlternatives, alternativesHeader, bold); err != nil {
		return err
	}
	for i, m := range ranking.Matches {
		r := m.Result
		row := []any{
			i + 1,
			m.ClassID,
			r.OverallSimilarity,
			r.SkillOverlap,
			r.ObjectiveAlignment,
			r.PrerequisiteCompatibility,
			r.DifficultyMatch,
			r.ContentTypeMatch,
			skillNames(r.Breakdown.MatchingSkills),
			skillNames(r.Breakdown.MissingSkills),
		}
		if err := writeRow(f, SheetAlternatives, i+2, row); err != nil {
			return err
		}
	}

	if err := writeHeader(f, SheetSkipped, skippedHeader, bold); err != nil {
		return err
	}
	for i, s := range ranking.Skipped {
		if err := writeRow(f, SheetSkipped, i+2, []any{s.ClassID, s.Reason}); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetAlternatives, "B", "B", 24); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}
	if err := f.SetColWidth(SheetAlternatives, "I", "J", 36); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []any, style int) error {
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func skillNames(skills []content.LearningSkill) string {
	names := make([]string, 0, len(skills))
	for _, sk := range skills {
		name := sk.Name
		if name == "" {
			name = sk.ID
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
