package excel

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

const (
	// DefaultTableName is used when TableOptions does not name the table
	DefaultTableName = "Table1"
	// DefaultTableStyle is the built-in style applied when none is given
	DefaultTableStyle = "TableStyleMedium9"
)

// TableOptions configures AsTable. Zero values fall back to the defaults.
type TableOptions struct {
	// Name is the display name of the table, default Table1
	Name string
	// Style is the built-in table style, default TableStyleMedium9
	Style string
	// FreezeHeader keeps the header row visible while scrolling. Nil means
	// true
	FreezeHeader *bool
}

// AsTable converts the used range of the active sheet into a named Excel
// table with banded rows and saves the workbook in place. An empty sheet and
// a table name that already exists on the sheet are rejected.
func AsTable(filename string, opts TableOptions) error {
	if opts.Name == "" {
		opts.Name = DefaultTableName
	}
	if opts.Style == "" {
		opts.Style = DefaultTableStyle
	}
	freeze := true
	if opts.FreezeHeader != nil {
		freeze = *opts.FreezeHeader
	}

	f, err := excelize.OpenFile(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	maxRow, maxCol := dimensions(rows)
	if maxCol == 0 {
		return fmt.Errorf("sheet %s is empty and cannot be formatted as a table", sheet)
	}

	tables, err := f.GetTables(sheet)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	for _, table := range tables {
		if table.Name == opts.Name {
			return fmt.Errorf("table %q already exists on sheet %s", opts.Name, sheet)
		}
	}

	lastCell, err := excelize.CoordinatesToCellName(maxCol, maxRow)
	if err != nil {
		return fmt.Errorf("failed to address last cell: %w", err)
	}

	showRowStripes := true
	if err := f.AddTable(sheet, &excelize.Table{
		Range:          "A1:" + lastCell,
		Name:           opts.Name,
		StyleName:      opts.Style,
		ShowRowStripes: &showRowStripes,
	}); err != nil {
		return fmt.Errorf("failed to add table: %w", err)
	}

	if freeze {
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze header row: %w", err)
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}

	slog.Info("workbook formatted as table",
		slog.String("path", filename),
		slog.String("sheet", sheet),
		slog.String("table", opts.Name),
		slog.String("range", "A1:"+lastCell))
	return nil
}

// Columns applies number formats to the data rows and widths to the columns
// of the active sheet, then saves the workbook in place. Both lists repeat
// their last entry when the sheet has more columns; both may be empty, and a
// call with neither is a no-op.
func Columns(filename string, formats []string, widths []float64) error {
	if len(formats) == 0 && len(widths) == 0 {
		return nil
	}

	f, err := excelize.OpenFile(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	maxRow, maxCol := dimensions(rows)
	if maxCol == 0 {
		return fmt.Errorf("sheet %s is empty and has nothing to format", sheet)
	}

	// One style per distinct format string
	styles := make(map[string]int)

	for col := 1; col <= maxCol; col++ {
		if len(formats) > 0 && maxRow > 1 {
			numFmt := pickFormat(formats, col-1)
			styleID, ok := styles[numFmt]
			if !ok {
				styleID, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
				if err != nil {
					return fmt.Errorf("failed to create style %q: %w", numFmt, err)
				}
				styles[numFmt] = styleID
			}

			first, err := excelize.CoordinatesToCellName(col, 2)
			if err != nil {
				return fmt.Errorf("failed to address column %d: %w", col, err)
			}
			last, err := excelize.CoordinatesToCellName(col, maxRow)
			if err != nil {
				return fmt.Errorf("failed to address column %d: %w", col, err)
			}
			if err := f.SetCellStyle(sheet, first, last, styleID); err != nil {
				return fmt.Errorf("failed to style column %d: %w", col, err)
			}
		}

		if len(widths) > 0 {
			letter, err := excelize.ColumnNumberToName(col)
			if err != nil {
				return fmt.Errorf("failed to name column %d: %w", col, err)
			}
			if err := f.SetColWidth(sheet, letter, letter, pickWidth(widths, col-1)); err != nil {
				return fmt.Errorf("failed to set width of column %s: %w", letter, err)
			}
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}

	slog.Info("workbook columns formatted",
		slog.String("path", filename),
		slog.String("sheet", sheet),
		slog.Int("columns", maxCol))
	return nil
}

// dimensions returns the used extent of a sheet as reported by GetRows
func dimensions(rows [][]string) (maxRow, maxCol int) {
	maxRow = len(rows)
	for _, row := range rows {
		if len(row) > maxCol {
			maxCol = len(row)
		}
	}
	return maxRow, maxCol
}

// pickFormat returns formats[i], repeating the last entry for short lists
func pickFormat(formats []string, i int) string {
	if i >= len(formats) {
		i = len(formats) - 1
	}
	return formats[i]
}

// pickWidth returns widths[i], repeating the last entry for short lists
func pickWidth(widths []float64, i int) float64 {
	if i >= len(widths) {
		i = len(widths) - 1
	}
	return widths[i]
}
