package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// ReadOptions configures CSV reading behavior.
type ReadOptions struct {
	// Types assigns column types positionally. A short list repeats its
	// last entry for the remaining columns; an empty list means all string.
	Types []ColumnType
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// ReadCSV loads a delimited file into a table. The first record is the
// header row; blank cells become missing values. Every data record must have
// as many fields as the header.
func ReadCSV(path string, opts ReadOptions) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv file %s has no header row", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	// Files exported for Excel start with a UTF-8 BOM.
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	columns := make([]Column, len(header))
	for i, name := range header {
		columns[i] = Column{Name: strings.TrimSpace(name), Type: typeAt(opts.Types, i)}
	}
	table, err := New(columns...)
	if err != nil {
		return nil, fmt.Errorf("invalid csv header in %s: %w", path, err)
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		line++

		row := make([]any, len(record))
		for i, cell := range record {
			v, err := parseCell(cell, columns[i].Type)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %q: %w", line, columns[i].Name, err)
			}
			row[i] = v
		}
		if err := table.AppendRow(row...); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return table, nil
}

// typeAt resolves the column type for position i under the repeat-last rule.
func typeAt(types []ColumnType, i int) ColumnType {
	if len(types) == 0 {
		return TypeString
	}
	if i < len(types) {
		return types[i]
	}
	return types[len(types)-1]
}

// timeLayouts lists the accepted cell layouts for time columns, most
// specific first.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseCell(s string, ct ColumnType) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	switch ct {
	case TypeInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", s)
		}
		return n, nil
	case TypeFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", s)
		}
		return f, nil
	case TypeBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", s)
		}
		return b, nil
	case TypeTime:
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, nil
			}
		}
		return nil, fmt.Errorf("%q is not a timestamp", s)
	default:
		return s, nil
	}
}
