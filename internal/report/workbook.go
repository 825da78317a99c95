// Package report exports a completed assessment result as an XLSX workbook.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/p-n-ai/career-guide/internal/session"
)

// Sheet names in the exported workbook.
const (
	SheetRecommendations = "Recommendations"
	SheetTraits          = "Traits"
)

// ContentType is the MIME type of the exported workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	recommendationHeaders = []string{"Rank", "Course", "Match %", "Required Traits", "Careers", "Salary Range", "Duration"}
	traitHeaders          = []string{"Trait", "Score", "Share %"}
)

// WriteWorkbook writes res as an XLSX workbook to w.
func WriteWorkbook(w io.Writer, res *session.Result) error {
	if res == nil {
		return fmt.Errorf("result is nil")
	}

	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with a default sheet; reuse it.
	if err := f.SetSheetName(f.GetSheetName(0), SheetRecommendations); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetTraits); err != nil {
		return fmt.Errorf("create traits sheet: %w", err)
	}

	if err := writeRow(f, SheetRecommendations, 1, toRow(recommendationHeaders)); err != nil {
		return err
	}
	for i, rec := range res.Recommendations {
		row := []any{
			i + 1,
			rec.Name,
			rec.MatchScore,
			joinTraits(rec.RequiredTraits),
			strings.Join(rec.Careers, ", "),
			rec.SalaryRange,
			rec.Duration,
		}
		if err := writeRow(f, SheetRecommendations, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, SheetTraits, 1, toRow(traitHeaders)); err != nil {
		return err
	}
	for i, ts := range res.TopTraits {
		if err := writeRow(f, SheetTraits, i+2, []any{DisplayTrait(ts.Trait), ts.Score, ts.Share}); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// DisplayTrait turns a normalized trait tag such as "detail-oriented" into
// a heading such as "Detail Oriented".
func DisplayTrait(trait string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(trait, "-", " "))
}

func joinTraits(traits []string) string {
	out := make([]string, len(traits))
	for i, t := range traits {
		out[i] = DisplayTrait(t)
	}
	return strings.Join(out, ", ")
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toRow(headers []string) []any {
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return row
}
