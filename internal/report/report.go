// Package report renders the batch logs as an XLSX workbook with one sheet
// per outcome class, for reviewers who live in spreadsheets.
package report

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/jackzampolin/paperdex/internal/records"
)

const (
	successSheet = "Success"
	failureSheet = "Failure"
)

// BuildXLSX reads both logs and returns workbook bytes. Missing logs are
// treated as empty, so a report can be produced at any point in a run.
func BuildXLSX(successLog, failureLog string, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}

	successes, err := records.ReadSuccesses(successLog)
	if err != nil {
		return nil, err
	}
	failures, err := records.ReadFailures(failureLog)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	f := excelize.NewFile()

	if err := writeSuccessSheet(f, successes); err != nil {
		return nil, err
	}
	if err := writeFailureSheet(f, failures); err != nil {
		return nil, err
	}

	// Drop the default sheet so the workbook opens on results.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	if idx, err := f.GetSheetIndex(successSheet); err == nil {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("report built",
		"extracted", len(successes),
		"failed", len(failures),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeSuccessSheet(f *excelize.File, recs []records.Success) error {
	if _, err := f.NewSheet(successSheet); err != nil {
		return err
	}

	headers := []string{
		"Journal", "Year", "Months", "Document",
		"Title", "Authors", "Abstract",
		"Start Date", "End Date", "Pages", "Path",
	}
	if err := writeRow(f, successSheet, 1, toAny(headers)); err != nil {
		return err
	}

	for i, rec := range recs {
		pages := any("")
		if rec.Document.PageCount > 0 {
			pages = rec.Document.PageCount
		}
		row := []any{
			rec.Document.Journal,
			rec.Document.Year,
			rec.Document.MonthRange,
			rec.Document.Name,
			rec.Title,
			strings.Join(rec.Authors, "; "),
			truncate(rec.Abstract, 500),
			rec.StartDate,
			rec.EndDate,
			pages,
			rec.Document.Path,
		}
		if err := writeRow(f, successSheet, i+2, row); err != nil {
			return err
		}
	}

	widths := map[string]float64{"A": 12, "B": 8, "C": 10, "D": 28, "E": 40, "F": 32, "G": 60, "H": 12, "I": 12, "J": 8, "K": 50}
	for col, w := range widths {
		if err := f.SetColWidth(successSheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func writeFailureSheet(f *excelize.File, recs []records.Failure) error {
	if _, err := f.NewSheet(failureSheet); err != nil {
		return err
	}

	headers := []string{"Journal", "Year", "Months", "Document", "Failed At", "Path"}
	if err := writeRow(f, failureSheet, 1, toAny(headers)); err != nil {
		return err
	}

	for i, rec := range recs {
		row := []any{
			rec.Document.Journal,
			rec.Document.Year,
			rec.Document.MonthRange,
			rec.Document.Name,
			rec.FailedAt.Format(time.RFC3339),
			rec.Document.Path,
		}
		if err := writeRow(f, failureSheet, i+2, row); err != nil {
			return err
		}
	}

	widths := map[string]float64{"A": 12, "B": 8, "C": 10, "D": 28, "E": 22, "F": 50}
	for col, w := range widths {
		if err := f.SetColWidth(failureSheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// truncate caps s at n runes, never splitting a multi-byte character.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
