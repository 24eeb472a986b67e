package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	goparquet "github.com/fraugster/parquet-go"
	"github.com/fraugster/parquet-go/parquet"
	"github.com/fraugster/parquet-go/parquetschema"
	"github.com/google/renameio/v2"

	"tabkit/internal/dataset"
)

// ParquetOptions configures Parquet export behavior
type ParquetOptions struct {
	// Compression selects the page codec: snappy (the default), gzip or none
	Compression string
}

// ParquetExporter writes tables to Parquet files and reads them back
type ParquetExporter struct {
	log *slog.Logger
}

// NewParquetExporter creates a new Parquet exporter instance. A nil logger
// falls back to slog.Default
func NewParquetExporter(logger *slog.Logger) *ParquetExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParquetExporter{log: logger}
}

// Export writes the table to filePath. The data is staged in a temporary
// file and moved into place on success, so readers never observe a partial
// file
func (e *ParquetExporter) Export(t *dataset.Table, filePath string, options ParquetOptions) error {
	if t == nil || t.Empty() {
		return fmt.Errorf("refusing to export empty table to %s", filePath)
	}
	if !strings.EqualFold(filepath.Ext(filePath), ".parquet") {
		return fmt.Errorf("parquet export needs a .parquet file name, got %q", filePath)
	}

	codec, err := compressionCodec(options.Compression)
	if err != nil {
		return err
	}
	schemaDef, err := schemaDefinition(t)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	pending, err := renameio.NewPendingFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to stage parquet file: %w", err)
	}
	defer pending.Cleanup()

	fw := goparquet.NewFileWriter(pending,
		goparquet.WithSchemaDefinition(schemaDef),
		goparquet.WithCompressionCodec(codec),
		goparquet.WithCreator("tabkit"),
	)

	columns := t.Columns()
	for i := 0; i < t.NumRows(); i++ {
		row := t.Row(i)
		data := make(map[string]interface{}, len(columns))
		for j, col := range columns {
			if row[j] == nil {
				continue
			}
			data[col.Name] = parquetValue(row[j], col.Type)
		}
		if err := fw.AddData(data); err != nil {
			return fmt.Errorf("failed to buffer row %d: %w", i, err)
		}
	}

	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filePath, err)
	}

	e.log.Info("parquet export complete",
		slog.String("path", filePath),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()),
		slog.String("compression", codec.String()))
	return nil
}

// Import reads a Parquet file written by Export back into a table. Only the
// flat column shapes Export produces are supported
func (e *ParquetExporter) Import(filePath string) (*dataset.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	fr, err := goparquet.NewFileReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}

	root := fr.GetSchemaDefinition().RootColumn
	columns := make([]dataset.Column, 0, len(root.Children))
	for _, child := range root.Children {
		ct, err := columnTypeOf(child)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filePath, err)
		}
		columns = append(columns, dataset.Column{Name: child.SchemaElement.Name, Type: ct})
	}

	table, err := dataset.New(columns...)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild table: %w", err)
	}

	for {
		rowData, err := fr.NextRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet row: %w", err)
		}

		row := make([]any, len(columns))
		for j, col := range columns {
			raw, ok := rowData[col.Name]
			if !ok {
				continue
			}
			cell, err := tableValue(raw, col)
			if err != nil {
				return nil, err
			}
			row[j] = cell
		}
		if err := table.AppendRow(row...); err != nil {
			return nil, fmt.Errorf("failed to rebuild table: %w", err)
		}
	}

	e.log.Info("parquet import complete",
		slog.String("path", filePath),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumCols()))
	return table, nil
}

// schemaDefinition builds the parquet message schema for the table columns.
// Every field is optional because any cell can be missing
func schemaDefinition(t *dataset.Table) (*parquetschema.SchemaDefinition, error) {
	var b strings.Builder
	b.WriteString("message table {\n")
	for _, col := range t.Columns() {
		if !validFieldName(col.Name) {
			return nil, fmt.Errorf("column name %q is not usable as a parquet field name", col.Name)
		}
		switch col.Type {
		case dataset.TypeString:
			fmt.Fprintf(&b, "  optional binary %s (STRING);\n", col.Name)
		case dataset.TypeInt:
			fmt.Fprintf(&b, "  optional int64 %s (INT_64);\n", col.Name)
		case dataset.TypeFloat:
			fmt.Fprintf(&b, "  optional double %s;\n", col.Name)
		case dataset.TypeBool:
			fmt.Fprintf(&b, "  optional boolean %s;\n", col.Name)
		case dataset.TypeTime:
			fmt.Fprintf(&b, "  optional int64 %s (TIMESTAMP_MILLIS);\n", col.Name)
		default:
			return nil, fmt.Errorf("column %q has unsupported type %s", col.Name, col.Type)
		}
	}
	b.WriteString("}\n")

	schemaDef, err := parquetschema.ParseSchemaDefinition(b.String())
	if err != nil {
		return nil, fmt.Errorf("failed to build parquet schema: %w", err)
	}
	return schemaDef, nil
}

// validFieldName reports whether a column name survives the textual schema
// definition unquoted
func validFieldName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// parquetValue converts a table cell to the value goparquet expects for the
// column's physical type
func parquetValue(v any, ct dataset.ColumnType) interface{} {
	switch ct {
	case dataset.TypeString:
		return []byte(v.(string))
	case dataset.TypeTime:
		return v.(time.Time).UnixMilli()
	default:
		return v
	}
}

// tableValue converts a goparquet row value back to the table cell type
func tableValue(raw interface{}, col dataset.Column) (any, error) {
	switch col.Type {
	case dataset.TypeString:
		b, ok := raw.([]byte)
		if !ok {
			return nil, fmt.Errorf("column %q: expected byte slice, got %T", col.Name, raw)
		}
		return string(b), nil
	case dataset.TypeTime:
		ms, ok := raw.(int64)
		if !ok {
			return nil, fmt.Errorf("column %q: expected int64 timestamp, got %T", col.Name, raw)
		}
		return time.UnixMilli(ms).UTC(), nil
	default:
		return raw, nil
	}
}

// columnTypeOf maps a parquet column definition back to a table column type
func columnTypeOf(col *parquetschema.ColumnDefinition) (dataset.ColumnType, error) {
	elem := col.SchemaElement
	if elem.Type == nil {
		return 0, fmt.Errorf("column %q: nested groups are not supported", elem.Name)
	}
	switch *elem.Type {
	case parquet.Type_BYTE_ARRAY:
		return dataset.TypeString, nil
	case parquet.Type_INT64:
		if elem.ConvertedType != nil && *elem.ConvertedType == parquet.ConvertedType_TIMESTAMP_MILLIS {
			return dataset.TypeTime, nil
		}
		return dataset.TypeInt, nil
	case parquet.Type_DOUBLE:
		return dataset.TypeFloat, nil
	case parquet.Type_BOOLEAN:
		return dataset.TypeBool, nil
	}
	return 0, fmt.Errorf("column %q has unsupported parquet type %s", elem.Name, elem.Type)
}

// compressionCodec maps a settings-file codec name to the parquet constant
func compressionCodec(name string) (parquet.CompressionCodec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "snappy":
		return parquet.CompressionCodec_SNAPPY, nil
	case "gzip":
		return parquet.CompressionCodec_GZIP, nil
	case "none", "uncompressed":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	}
	return parquet.CompressionCodec_UNCOMPRESSED, fmt.Errorf("unsupported parquet compression %q", name)
}
