// Package export renders assembled grading results as an XLSX gradebook.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mathsight/grader/internal/entity"
)

// Service is a tiny façade over excelize that produces XLSX bytes for exports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// GradebookXLSX returns an XLSX workbook (as bytes) with one row per graded
// image, in the order the results are given.
func (s *Service) GradebookXLSX(results []entity.GradingResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Results"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// drop excelize's default sheet so the workbook opens on Results
	if idx, _ := f.GetSheetIndex("Sheet1"); idx != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Source File",
		"Topic",
		"Difficulty",
		"Score",
		"Understanding",
		"Execution",
		"Accuracy",
		"First Hint",
		"Flags",
		"Generated At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range results {
		gr := r.GraderResult

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.SourceFile)
		write(2, gr.Topic)
		write(3, gr.DifficultyAssessment)
		write(4, gr.Score)
		write(5, gr.ComponentScores.Understanding)
		write(6, gr.ComponentScores.Execution)
		write(7, gr.ComponentScores.Accuracy)
		write(8, truncate(gr.FirstHint, 140))
		write(9, strings.Join(gr.Flags, "; "))
		write(10, r.GeneratedAt.UTC().Format(time.RFC3339))

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 42) // source path
	_ = f.SetColWidth(sheet, "B", "C", 18) // topic, difficulty
	_ = f.SetColWidth(sheet, "D", "G", 14) // scores
	_ = f.SetColWidth(sheet, "H", "H", 48) // hint
	_ = f.SetColWidth(sheet, "I", "I", 24) // flags
	_ = f.SetColWidth(sheet, "J", "J", 22) // timestamp

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
