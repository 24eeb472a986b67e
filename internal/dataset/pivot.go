package dataset

import (
	"fmt"
	"strconv"
	"time"
)

// Pivot reshapes the table from long to wide form. Each distinct value of
// rowCol becomes one result row and each distinct value of colCol becomes
// one result column, both in first-appearance order. The cell at their
// intersection is the corresponding valueCol entry; intersections never
// written stay nil. A (row, column) pair occurring twice is an error, as is
// a missing value in either key column.
func (t *Table) Pivot(rowCol, colCol, valueCol string) (*Table, error) {
	ri, ok := t.ColumnIndex(rowCol)
	if !ok {
		return nil, fmt.Errorf("pivot row column %q not found", rowCol)
	}
	ci, ok := t.ColumnIndex(colCol)
	if !ok {
		return nil, fmt.Errorf("pivot column column %q not found", colCol)
	}
	vi, ok := t.ColumnIndex(valueCol)
	if !ok {
		return nil, fmt.Errorf("pivot value column %q not found", valueCol)
	}

	var (
		rowKeys  []any
		rowPos   = make(map[any]int)
		colNames []string
		colPos   = make(map[string]int)
	)
	for n, row := range t.rows {
		rk := row[ri]
		if rk == nil {
			return nil, fmt.Errorf("row %d: missing value in pivot row column %q", n+1, rowCol)
		}
		ck := row[ci]
		if ck == nil {
			return nil, fmt.Errorf("row %d: missing value in pivot column column %q", n+1, colCol)
		}
		if _, ok := rowPos[rk]; !ok {
			rowPos[rk] = len(rowKeys)
			rowKeys = append(rowKeys, rk)
		}
		name := keyString(ck)
		if _, ok := colPos[name]; !ok {
			colPos[name] = len(colNames)
			colNames = append(colNames, name)
		}
	}

	columns := make([]Column, 0, 1+len(colNames))
	columns = append(columns, Column{Name: rowCol, Type: t.columns[ri].Type})
	for _, name := range colNames {
		columns = append(columns, Column{Name: name, Type: t.columns[vi].Type})
	}
	wide, err := New(columns...)
	if err != nil {
		return nil, fmt.Errorf("pivot columns: %w", err)
	}

	grid := make([][]any, len(rowKeys))
	seen := make([][]bool, len(rowKeys))
	for i := range grid {
		grid[i] = make([]any, len(colNames))
		seen[i] = make([]bool, len(colNames))
	}
	for _, row := range t.rows {
		r := rowPos[row[ri]]
		c := colPos[keyString(row[ci])]
		if seen[r][c] {
			return nil, fmt.Errorf("duplicate entry for %v / %v", row[ri], row[ci])
		}
		seen[r][c] = true
		grid[r][c] = row[vi]
	}

	for i, rk := range rowKeys {
		cells := make([]any, 0, 1+len(colNames))
		cells = append(cells, rk)
		cells = append(cells, grid[i]...)
		if err := wide.AppendRow(cells...); err != nil {
			return nil, err
		}
	}
	return wide, nil
}

// keyString renders a column-key cell as a column name. Midnight timestamps
// render as a plain date; any other timestamp keeps its time of day so two
// same-day keys stay distinct columns.
func keyString(v any) string {
	switch k := v.(type) {
	case string:
		return k
	case int64:
		return strconv.FormatInt(k, 10)
	case float64:
		return strconv.FormatFloat(k, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(k)
	case time.Time:
		if k.Hour() == 0 && k.Minute() == 0 && k.Second() == 0 && k.Nanosecond() == 0 {
			return k.Format("2006-01-02")
		}
		return k.Format(time.RFC3339)
	default:
		return fmt.Sprint(k)
	}
}
