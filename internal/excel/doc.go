// Package excel applies presentation formatting to workbooks that have
// already been exported.
//
// This package contains two main components:
//
// AsTable: Converts the used range of the active sheet into a named Excel
// table with banded rows and an optionally frozen header row.
//
// Columns: Applies number formats and column widths to the active sheet.
// Number formats cover the data rows only, so the header keeps its look.
// Short format or width lists repeat their last entry across the remaining
// columns.
//
// Example usage:
//
//	err := excel.AsTable("out/statements.xlsx", excel.TableOptions{})
//
//	err = excel.Columns("out/statements.xlsx",
//		[]string{"DD.MM.YY", "#,##0.00"},
//		[]float64{12, 14})
package excel
