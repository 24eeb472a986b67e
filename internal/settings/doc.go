// Package settings reads INI settings files whose values carry an implicit
// type discipline, as used by the tabkit account statement tooling.
//
// A raw value is classified in a fixed order: structured literal (JSON-style
// object, array, or tuple), boolean, number, comma-separated list, plain
// string. Classification never fails; a value that fits no earlier category
// is kept as the string that was written. Structured literals that carry
// delimiters but do not parse are reported once at load time and likewise
// kept as strings.
//
// This package contains two main components:
//
// ParseValue: The value classifier. It is side-effect free and usable on its
// own for single values.
//
// Document: A parsed settings file. Sections and keys preserve file order,
// values are classified once at load. Load returns nil on any failure and
// logs the cause; LoadStrict instead returns errors matchable against
// ErrNotExist and ErrLoad and never logs.
//
// Example usage:
//
//	doc, err := settings.LoadStrict("settings.ini", logger)
//	if err != nil {
//	    // errors.Is(err, settings.ErrNotExist) for a missing file
//	}
//
//	enabled := doc.Bool("parquet", "enabled", false)
//	formats := doc.Strings("excel", "column_formats", nil)
package settings
