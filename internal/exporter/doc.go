// Package exporter writes tables to the output formats tabkit supports.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, and UTF-8 BOM for Excel compatibility. ExportTable renders a
// typed table with the shared cell formatting rules.
//
// ParquetExporter: Writes tables as Parquet files with a schema derived
// from the column types, staged through a temporary file so the target is
// replaced atomically. Import reads such files back into tables.
//
// ExcelExporter: Writes tables as xlsx workbooks, either as-is or pivoted
// from long to wide form first.
//
// Example usage:
//
//	// Export a table as Parquet
//	parquetExporter := exporter.NewParquetExporter(logger)
//	err := parquetExporter.Export(table, "out/statements.parquet", exporter.ParquetOptions{})
//
//	// Export the same table as an Excel workbook
//	excelExporter := exporter.NewExcelExporter(logger)
//	err = excelExporter.Export(table, "out/statements.xlsx", "Statements")
//
//	// Stream records into a CSV file
//	writer := exporter.NewCSVWriter(logger)
//	stream, err := writer.CreateStreamWriter("out/statements.csv", headers)
package exporter
