package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"tabkit/internal/config"
	"tabkit/internal/dataset"
	"tabkit/internal/excel"
	"tabkit/internal/exporter"
	"tabkit/internal/files"
	"tabkit/internal/infrastructure"
	"tabkit/internal/settings"
)

// jobSpec is everything one conversion run needs, assembled from the
// settings file and validated before any input is touched.
type jobSpec struct {
	Inputs    []string `validate:"required,min=1,dive,required"`
	Delimiter string   `validate:"required,len=1"`
	Types     []dataset.ColumnType

	ParquetEnabled     bool
	ParquetDir         string `validate:"required_if=ParquetEnabled true"`
	ParquetCompression string `validate:"omitempty,oneof=snappy gzip none uncompressed"`

	ExcelEnabled bool
	ExcelDir     string `validate:"required_if=ExcelEnabled true"`
	Sheet        string
	TableName    string
	TableStyle   string
	FreezeHeader bool
	Formats      []string
	Widths       []float64 `validate:"dive,gt=0"`

	ArchiveEnabled bool
	ArchiveDir     string `validate:"required_if=ArchiveEnabled true"`
}

var jobValidator = validator.New()

func main() {
	settingsPath := flag.String("settings", "settings.ini", "settings file describing the conversion run")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.EnsureRunID(context.Background())
	logger = logger.With("run_id", infrastructure.GetRunID(ctx))

	logger.Info("Starting statement conversion",
		slog.String("settings_file", *settingsPath))

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Error("Failed to create required directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	checker := files.NewChecker(logger)
	if ok, _ := checker.CheckAll([]string{*settingsPath}); !ok {
		logger.Error("Settings file is not available", slog.String("path", *settingsPath))
		os.Exit(1)
	}

	doc, err := settings.LoadStrict(*settingsPath, logger)
	if err != nil {
		logger.Error("Failed to load settings", slog.String("error", err.Error()))
		os.Exit(1)
	}

	job, err := buildJob(doc, cfg)
	if err != nil {
		logger.Error("Settings do not describe a runnable job", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Conversion job assembled",
		slog.Int("input_count", len(job.Inputs)),
		slog.Bool("parquet", job.ParquetEnabled),
		slog.Bool("excel", job.ExcelEnabled),
		slog.Bool("archive", job.ArchiveEnabled))
	fmt.Printf("Found %d input files\n", len(job.Inputs))

	if ok, _ := checker.CheckAll(job.Inputs); !ok {
		logger.Error("Input files are not available, aborting run")
		os.Exit(1)
	}

	metrics := infrastructure.NewProcessingMetrics()
	manager := files.NewManager(logger)
	parquetExporter := exporter.NewParquetExporter(logger)
	excelExporter := exporter.NewExcelExporter(logger)

	for i, input := range job.Inputs {
		metrics.LogProgress(logger, i+1, len(job.Inputs), "files")

		rows, err := convertFile(input, job, parquetExporter, excelExporter)
		if err != nil {
			metrics.RecordError(logger, "convert", input, err)
			continue
		}

		metrics.AddRows(rows)
		metrics.FileProcessed()

		if job.ArchiveEnabled {
			dst := filepath.Join(job.ArchiveDir, filepath.Base(input))
			if err := manager.Move(input, dst); err != nil {
				metrics.RecordError(logger, "archive", input, err)
			}
		}
	}

	metrics.Stop()
	metrics.LogSummary(logger)
	fmt.Printf("Processed %d of %d files\n", metrics.FilesProcessed(), len(job.Inputs))

	if metrics.ErrorCount() > 0 {
		os.Exit(1)
	}
}

// buildJob reads the conversion settings from the four driver sections.
// Absent keys fall back to the application defaults, so a minimal settings
// file only needs [input] files and one enabled export.
func buildJob(doc *settings.Document, cfg *config.Config) (jobSpec, error) {
	job := jobSpec{
		Inputs:    doc.Strings("input", "files", nil),
		Delimiter: doc.String("input", "delimiter", ","),

		ParquetEnabled:     doc.Bool("parquet", "enabled", false),
		ParquetDir:         doc.String("parquet", "directory", cfg.Paths.DataDir),
		ParquetCompression: doc.String("parquet", "compression", ""),

		ExcelEnabled: doc.Bool("excel", "enabled", false),
		ExcelDir:     doc.String("excel", "directory", cfg.Paths.DataDir),
		Sheet:        doc.String("excel", "sheet", ""),
		TableName:    doc.String("excel", "table_name", ""),
		TableStyle:   doc.String("excel", "table_style", ""),
		FreezeHeader: doc.Bool("excel", "freeze_header", true),
		Formats:      doc.Strings("excel", "formats", nil),

		ArchiveEnabled: doc.Bool("archive", "enabled", false),
		ArchiveDir:     doc.String("archive", "dir", cfg.Paths.ArchiveDir),
	}

	// A pattern key extends the explicit file list with a glob over the
	// input directory, so date-stamped exports need no settings edit.
	if pattern := doc.String("input", "pattern", ""); pattern != "" {
		dir := doc.String("input", "dir", cfg.Paths.DataDir)
		found, err := files.NewDiscovery("").FindByPattern(dir, pattern)
		if err != nil {
			return job, err
		}
		for _, f := range found {
			job.Inputs = append(job.Inputs, f.Path)
		}
	}

	types, err := dataset.ParseColumnTypes(doc.Strings("input", "types", nil))
	if err != nil {
		return job, err
	}
	job.Types = types

	widths, err := widthList(doc.Get("excel", "widths", nil))
	if err != nil {
		return job, err
	}
	job.Widths = widths

	if err := jobValidator.Struct(job); err != nil {
		return job, fmt.Errorf("invalid job settings: %w", err)
	}
	if !job.ParquetEnabled && !job.ExcelEnabled {
		return job, errors.New("neither parquet nor excel export is enabled")
	}
	return job, nil
}

// convertFile loads one delimited file and writes the enabled exports next
// to each other, named after the input. Returns the number of data rows.
func convertFile(path string, job jobSpec, parquetExporter *exporter.ParquetExporter, excelExporter *exporter.ExcelExporter) (int, error) {
	table, err := dataset.ReadCSV(path, dataset.ReadOptions{
		Types: job.Types,
		Comma: []rune(job.Delimiter)[0],
	})
	if err != nil {
		return 0, err
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if job.ParquetEnabled {
		target := filepath.Join(job.ParquetDir, stem+".parquet")
		opts := exporter.ParquetOptions{Compression: job.ParquetCompression}
		if err := parquetExporter.Export(table, target, opts); err != nil {
			return 0, err
		}
	}

	if job.ExcelEnabled {
		target := filepath.Join(job.ExcelDir, stem+".xlsx")
		if err := excelExporter.Export(table, target, job.Sheet); err != nil {
			return 0, err
		}

		opts := excel.TableOptions{Name: job.TableName, Style: job.TableStyle}
		if !job.FreezeHeader {
			noFreeze := false
			opts.FreezeHeader = &noFreeze
		}
		if err := excel.AsTable(target, opts); err != nil {
			return 0, err
		}
		if err := excel.Columns(target, job.Formats, job.Widths); err != nil {
			return 0, err
		}
	}

	return table.NumRows(), nil
}

// widthList converts the column width setting into numbers. Widths can be
// written as a comma list ("12, 40"), a structured list ([12, 40]) or a
// single number; comma list elements arrive as strings and are converted
// here.
func widthList(v any) ([]float64, error) {
	switch w := v.(type) {
	case nil:
		return nil, nil
	case []string:
		out := make([]float64, len(w))
		for i, s := range w {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("column width %q is not a number", s)
			}
			out[i] = f
		}
		return out, nil
	case []any:
		out := make([]float64, len(w))
		for i, e := range w {
			switch n := e.(type) {
			case int64:
				out[i] = float64(n)
			case float64:
				out[i] = n
			case string:
				f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
				if err != nil {
					return nil, fmt.Errorf("column width %q is not a number", n)
				}
				out[i] = f
			default:
				return nil, fmt.Errorf("column width %v is not a number", e)
			}
		}
		return out, nil
	case int64:
		return []float64{float64(w)}, nil
	case float64:
		return []float64{w}, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
		if err != nil {
			return nil, fmt.Errorf("column width %q is not a number", w)
		}
		return []float64{f}, nil
	}
	return nil, fmt.Errorf("column widths setting has unsupported shape %T", v)
}
