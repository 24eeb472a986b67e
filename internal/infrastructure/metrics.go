package infrastructure

import (
	"log/slog"
	"time"
)

// ProcessingMetrics accumulates counters over one pipeline run and renders
// them as a structured summary when the run ends. Not safe for concurrent
// use; one instance belongs to one run.
type ProcessingMetrics struct {
	started time.Time
	stopped time.Time

	filesProcessed    int
	filesSkipped      int
	rowsAdded         int
	duplicatesSkipped int

	sheetOrder   []string
	rowsPerSheet map[string]int

	errorOrder   []string
	errorsByType map[string]int

	errorFileOrder []string
	errorsByFile   map[string][]string
}

// NewProcessingMetrics starts the clock for a new run.
func NewProcessingMetrics() *ProcessingMetrics {
	return &ProcessingMetrics{
		started:      time.Now(),
		rowsPerSheet: make(map[string]int),
		errorsByType: make(map[string]int),
		errorsByFile: make(map[string][]string),
	}
}

// FileProcessed counts one successfully processed file.
func (m *ProcessingMetrics) FileProcessed() {
	m.filesProcessed++
}

// FileSkipped counts one skipped file and logs the reason.
func (m *ProcessingMetrics) FileSkipped(logger *slog.Logger, path, reason string) {
	m.filesSkipped++
	logger.Warn("file skipped",
		slog.String("path", path),
		slog.String("reason", reason))
}

// AddRows counts rows added to the output.
func (m *ProcessingMetrics) AddRows(n int) {
	m.rowsAdded += n
}

// AddSheetRows counts rows attributed to a named sheet.
func (m *ProcessingMetrics) AddSheetRows(sheet string, n int) {
	if _, ok := m.rowsPerSheet[sheet]; !ok {
		m.sheetOrder = append(m.sheetOrder, sheet)
	}
	m.rowsPerSheet[sheet] += n
}

// SkipDuplicates counts rows dropped as duplicates.
func (m *ProcessingMetrics) SkipDuplicates(n int) {
	m.duplicatesSkipped += n
}

// RecordError counts an error under its kind, records it under the file it
// belongs to and logs it.
func (m *ProcessingMetrics) RecordError(logger *slog.Logger, kind, path string, err error) {
	if _, ok := m.errorsByType[kind]; !ok {
		m.errorOrder = append(m.errorOrder, kind)
	}
	m.errorsByType[kind]++
	if _, ok := m.errorsByFile[path]; !ok {
		m.errorFileOrder = append(m.errorFileOrder, path)
	}
	m.errorsByFile[path] = append(m.errorsByFile[path], kind+": "+err.Error())
	logger.Error("processing error",
		slog.String("kind", kind),
		slog.String("path", path),
		slog.String("error", err.Error()))
}

// ErrorCount returns the total number of recorded errors.
func (m *ProcessingMetrics) ErrorCount() int {
	total := 0
	for _, n := range m.errorsByType {
		total += n
	}
	return total
}

// FileErrors returns the recorded errors for one file, each rendered as
// "kind: message" in recording order.
func (m *ProcessingMetrics) FileErrors(path string) []string {
	errs := m.errorsByFile[path]
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	copy(out, errs)
	return out
}

// FilesProcessed returns the number of successfully processed files.
func (m *ProcessingMetrics) FilesProcessed() int { return m.filesProcessed }

// RowsAdded returns the number of rows added to the output.
func (m *ProcessingMetrics) RowsAdded() int { return m.rowsAdded }

// Stop freezes the elapsed time. Further counting is still possible but the
// summary reports the duration up to this call.
func (m *ProcessingMetrics) Stop() {
	m.stopped = time.Now()
}

// Elapsed returns the run duration so far, or the frozen duration after Stop.
func (m *ProcessingMetrics) Elapsed() time.Duration {
	if m.stopped.IsZero() {
		return time.Since(m.started)
	}
	return m.stopped.Sub(m.started)
}

// LogProgress emits one progress record with a completion percentage.
func (m *ProcessingMetrics) LogProgress(logger *slog.Logger, current, total int, unit string) {
	percent := 0.0
	if total > 0 {
		percent = float64(current) / float64(total) * 100
	}
	logger.Info("progress",
		slog.Int("current", current),
		slog.Int("total", total),
		slog.String("unit", unit),
		slog.Float64("percent", percent))
}

// LogSummary emits the end-of-run summary: overall counters first, then one
// record per sheet, per error kind and per failed file, in first-appearance
// order.
func (m *ProcessingMetrics) LogSummary(logger *slog.Logger) {
	elapsed := m.Elapsed()
	filesPerSecond := 0.0
	rowsPerSecond := 0.0
	if elapsed > 0 {
		filesPerSecond = float64(m.filesProcessed) / elapsed.Seconds()
		rowsPerSecond = float64(m.rowsAdded) / elapsed.Seconds()
	}

	logger.Info("processing summary",
		slog.Int("files_processed", m.filesProcessed),
		slog.Int("files_skipped", m.filesSkipped),
		slog.Int("rows_added", m.rowsAdded),
		slog.Int("duplicates_skipped", m.duplicatesSkipped),
		slog.Int("errors", m.ErrorCount()),
		slog.Duration("elapsed", elapsed),
		slog.Float64("files_per_second", filesPerSecond),
		slog.Float64("rows_per_second", rowsPerSecond))

	for _, sheet := range m.sheetOrder {
		logger.Info("sheet summary",
			slog.String("sheet", sheet),
			slog.Int("rows", m.rowsPerSheet[sheet]))
	}
	for _, kind := range m.errorOrder {
		logger.Info("error summary",
			slog.String("kind", kind),
			slog.Int("count", m.errorsByType[kind]))
	}
	for _, path := range m.errorFileOrder {
		logger.Info("file error summary",
			slog.String("path", path),
			slog.Int("count", len(m.errorsByFile[path])))
	}
}
