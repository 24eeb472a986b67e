package dataset

import (
	"fmt"
	"strings"
	"time"
)

// ColumnType enumerates the cell types a column can carry.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeTime
)

// String returns the settings-file name of the type.
func (t ColumnType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeTime:
		return "time"
	default:
		return "string"
	}
}

// ParseColumnType maps a type name from a settings file to a ColumnType.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "str", "text":
		return TypeString, nil
	case "int", "integer":
		return TypeInt, nil
	case "float", "number", "double":
		return TypeFloat, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "time", "date", "datetime":
		return TypeTime, nil
	}
	return TypeString, fmt.Errorf("unknown column type %q", s)
}

// ParseColumnTypes maps a list of type names, as read from a settings file.
func ParseColumnTypes(names []string) ([]ColumnType, error) {
	types := make([]ColumnType, len(names))
	for i, name := range names {
		t, err := ParseColumnType(name)
		if err != nil {
			return nil, err
		}
		types[i] = t
	}
	return types, nil
}

// Column describes one table column.
type Column struct {
	Name string
	Type ColumnType
}

// Table is an ordered set of typed columns with row-major cells. A nil cell
// is a missing value. Tables come from New or ReadCSV; the zero value is not
// usable.
type Table struct {
	columns []Column
	rows    [][]any
}

// New creates an empty table with the given columns. Column names must be
// unique and non-empty.
func New(columns ...Column) (*Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("table needs at least one column")
	}
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if c.Name == "" {
			return nil, fmt.Errorf("column name must not be empty")
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return &Table{columns: cols}, nil
}

// AppendRow adds one row. The value count must match the column count and
// every value must fit its column type; nil marks a missing cell. Untyped
// int values are accepted for int and float columns.
func (t *Table) AppendRow(values ...any) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}
	row := make([]any, len(values))
	for i, v := range values {
		cell, err := coerceCell(v, t.columns[i].Type)
		if err != nil {
			return fmt.Errorf("column %q: %w", t.columns[i].Name, err)
		}
		row[i] = cell
	}
	t.rows = append(t.rows, row)
	return nil
}

func coerceCell(v any, ct ColumnType) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch ct {
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeInt:
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		}
	case TypeFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		case int:
			return float64(n), nil
		}
	case TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case TypeTime:
		if ts, ok := v.(time.Time); ok {
			return ts, nil
		}
	}
	return nil, fmt.Errorf("value %v (%T) does not fit column type %s", v, v, ct)
}

// Columns returns a copy of the column descriptors.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Name
	}
	return out
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.columns {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.columns) }

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool { return len(t.rows) == 0 }

// Row returns a copy of row i.
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Cell returns the value at row i, column j. Missing cells are nil.
func (t *Table) Cell(i, j int) any { return t.rows[i][j] }
