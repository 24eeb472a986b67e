// Package dataset holds the in-memory table model the tabkit exporters
// operate on.
//
// This package contains three main components:
//
// Table: An ordered set of typed columns with row-major cells. Cells are nil
// for missing values; AppendRow enforces the column types so exporters can
// rely on them.
//
// ReadCSV: Loads a delimited file into a table, assigning column types
// positionally from a settings-provided list. A short type list repeats its
// last entry for the remaining columns.
//
// Pivot: Reshapes a long-form table (row key, column key, value) into wide
// form, preserving first-appearance order of keys. Duplicate key pairs are
// rejected.
//
// Example usage:
//
//	table, err := dataset.ReadCSV("statements.csv", dataset.ReadOptions{
//	    Types: []dataset.ColumnType{dataset.TypeString, dataset.TypeFloat},
//	})
//
//	wide, err := table.Pivot("booking_date", "account", "balance")
package dataset
