package exporter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// formatFloat formats a float64 value for CSV output with up to six decimal
// places, trailing zeros trimmed
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatTime formats a timestamp for CSV output. Midnight timestamps render
// as a plain date so booking dates stay readable in spreadsheets
func formatTime(ts time.Time) string {
	if ts.Hour() == 0 && ts.Minute() == 0 && ts.Second() == 0 && ts.Nanosecond() == 0 {
		return ts.Format("2006-01-02")
	}
	return ts.Format(time.RFC3339)
}

// formatCell formats any table cell for CSV output. Missing cells render as
// the empty string
func formatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case int64:
		return formatInt(c)
	case float64:
		return formatFloat(c)
	case bool:
		return formatBool(c)
	case time.Time:
		return formatTime(c)
	default:
		return fmt.Sprint(c)
	}
}
