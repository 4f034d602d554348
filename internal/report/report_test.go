package report_test

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-classmatch/internal/content"
	"github.com/p-n-ai/pai-classmatch/internal/recommend"
	"github.com/p-n-ai/pai-classmatch/internal/report"
	"github.com/p-n-ai/pai-classmatch/internal/similarity"
)

func TestWriteAlternatives(t *testing.T) {
	ranking := recommend.Ranking{
		RunID: "run-1",
		Matches: []recommend.ClassMatch{
			{
				ClassID: "class-b",
				Result: similarity.Result{
					OverallSimilarity: 0.75,
					SkillOverlap:      0.5,
					Breakdown: similarity.Breakdown{
						MatchingSkills: []content.LearningSkill{{ID: "l", Name: "Listening Comprehension"}},
						MissingSkills:  []content.LearningSkill{{ID: "reading-comprehension"}},
					},
				},
			},
			{ClassID: "class-c", Result: similarity.Result{OverallSimilarity: 0.5}},
		},
		Skipped: []recommend.SkippedCandidate{{ClassID: "class-x", Reason: "class not found"}},
	}

	var buf bytes.Buffer
	if err := report.WriteAlternatives(&buf, ranking); err != nil {
		t.Fatalf("WriteAlternatives() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != report.SheetAlternatives || sheets[1] != report.SheetSkipped {
		t.Fatalf("sheets = %v, want [Alternatives Skipped]", sheets)
	}

	rows, err := f.GetRows(report.SheetAlternatives)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if rows[0][0] != "Rank" || rows[0][9] != "Missing Skills" {
		t.Errorf("header = %v", rows[0])
	}
	first := rows[1]
	if first[0] != "1" || first[1] != "class-b" || first[2] != "0.75" || first[3] != "0.5" {
		t.Errorf("first row = %v", first)
	}
	if first[8] != "Listening Comprehension" || first[9] != "reading-comprehension" {
		t.Errorf("skill columns = %q, %q", first[8], first[9])
	}
	if rows[2][0] != "2" || rows[2][1] != "class-c" {
		t.Errorf("second row = %v", rows[2])
	}

	skipped, err := f.GetRows(report.SheetSkipped)
	if err != nil {
		t.Fatalf("GetRows(Skipped) error = %v", err)
	}
	if len(skipped) != 2 || skipped[1][0] != "class-x" || skipped[1][1] != "class not found" {
		t.Errorf("skipped rows = %v", skipped)
	}
}

func TestWriteAlternatives_HeaderBold(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteAlternatives(&buf, recommend.Ranking{}); err != nil {
		t.Fatalf("WriteAlternatives() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	styleID, err := f.GetCellStyle(report.SheetAlternatives, "C1")
	if err != nil {
		t.Fatalf("GetCellStyle() error = %v", err)
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		t.Fatalf("GetStyle() error = %v", err)
	}
	if style.Font == nil || !style.Font.Bold {
		t.Error("header cells should be bold")
	}

	rows, err := f.GetRows(report.SheetAlternatives)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("len(rows) = %d, want header only", len(rows))
	}
}
