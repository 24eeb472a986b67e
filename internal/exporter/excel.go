package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"tabkit/internal/dataset"
)

// DefaultSheet is the worksheet name used when the caller does not pick one
const DefaultSheet = "Sheet1"

// ExcelExporter writes tables to xlsx workbooks
type ExcelExporter struct {
	log *slog.Logger
}

// NewExcelExporter creates a new Excel exporter instance. A nil logger falls
// back to slog.Default
func NewExcelExporter(logger *slog.Logger) *ExcelExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelExporter{log: logger}
}

// Export writes the table to filePath with one header row on the named
// sheet. An empty sheet name falls back to DefaultSheet; an existing file is
// replaced
func (e *ExcelExporter) Export(t *dataset.Table, filePath, sheet string) error {
	if t == nil || t.Empty() {
		return fmt.Errorf("refusing to export empty table to %s", filePath)
	}
	if !strings.EqualFold(filepath.Ext(filePath), ".xlsx") {
		return fmt.Errorf("excel export needs a .xlsx file name, got %q", filePath)
	}
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
	}

	for j, name := range t.ColumnNames() {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("failed to write header %q: %w", name, err)
		}
	}

	for i := 0; i < t.NumRows(); i++ {
		row := t.Row(i)
		for j, value := range row {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write row %d: %w", i, err)
			}
		}
	}

	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	e.log.Info("excel export complete",
		slog.String("path", filePath),
		slog.String("sheet", sheet),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()))
	return nil
}

// ExportPivot reshapes a long table to wide form and writes the result. The
// row column keeps its name and every distinct column-key value becomes one
// worksheet column
func (e *ExcelExporter) ExportPivot(t *dataset.Table, rowCol, colCol, valueCol, filePath, sheet string) error {
	wide, err := t.Pivot(rowCol, colCol, valueCol)
	if err != nil {
		return fmt.Errorf("failed to pivot table: %w", err)
	}
	return e.Export(wide, filePath, sheet)
}
