package settings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the dynamic type a raw settings value was classified into.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
	KindList
	KindStructured
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindList:
		return "list"
	case KindStructured:
		return "structured"
	default:
		return "string"
	}
}

// KindOf classifies a value produced by ParseValue.
func KindOf(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case int64:
		return KindInt
	case float64:
		return KindFloat
	case []string:
		return KindList
	case map[string]any, []any:
		return KindStructured
	default:
		return KindString
	}
}

// ParseValue classifies a raw settings value. The result is one of bool,
// int64, float64, []string, string, or for structured literals a tree of
// map[string]any and []any with bool, int64, float64 and string leaves.
//
// Classification order: structured literal, boolean, number, list, string.
// A structured literal that fails to parse falls through silently here; the
// document loader reports such failures. Values that match no earlier rule
// are returned unchanged, so ParseValue never fails.
func ParseValue(raw string) any {
	return parseValue(raw, nil)
}

// parseValue is the shared classifier core. report, when non-nil, receives
// the decode error of a delimited value that did not parse as a structured
// literal. Both entry points go through here so the classification rules
// cannot drift apart.
func parseValue(raw string, report func(error)) any {
	if hasStructuredDelimiters(raw) {
		v, err := decodeStructured(raw)
		if err == nil {
			return v
		}
		if report != nil {
			report(err)
		}
		// Fall through: the delimiters also block the list rule below, so
		// the value ends up a plain string.
	}

	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}

	if isNumeric(raw) {
		return parseNumber(raw)
	}

	if strings.Contains(raw, ",") && !strings.ContainsAny(raw, "{[(") {
		parts := strings.Split(raw, ",")
		items := make([]string, len(parts))
		for i, p := range parts {
			items[i] = strings.TrimSpace(p)
		}
		return items
	}

	return raw
}

// hasStructuredDelimiters reports whether raw is wrapped in matching object,
// array or tuple delimiters.
func hasStructuredDelimiters(raw string) bool {
	switch {
	case strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}"):
		return true
	case strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]"):
		return true
	case strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")"):
		return true
	}
	return false
}

// pythonBoolReplacer rewrites capitalized boolean tokens into the JSON form
// when they follow a structural separator. Settings files written for the
// predecessor tooling carry True/False inside literals; rewriting them keeps
// those files loadable. The rewrite is textual, so a matching token inside a
// quoted string is rewritten too. Known limitation.
var pythonBoolReplacer = strings.NewReplacer(
	" True", " true",
	":True", ":true",
	",True", ",true",
	"[True", "[true",
	"{True", "{true",
	"(True", "(true",
	" False", " false",
	":False", ":false",
	",False", ",false",
	"[False", "[false",
	"{False", "{false",
	"(False", "(false",
)

// decodeStructured parses a delimited value as a JSON document. Tuple
// delimiters are first rewritten to array form wherever they appear outside
// quoted spans, nested tuples included. Numbers are decoded distinguishing
// integral from fractional.
func decodeStructured(raw string) (any, error) {
	text := tupleToArray(pythonBoolReplacer.Replace(raw))

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after structured literal")
	}
	return normalizeNumbers(v), nil
}

// tupleToArray rewrites tuple delimiters into array form. Parentheses inside
// quoted spans are left alone. A comma directly before a closing parenthesis
// is dropped, so single element tuples like ("a",) stay decodable.
func tupleToArray(text string) string {
	out := make([]byte, 0, len(text))
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
			out = append(out, c)
		case '(':
			out = append(out, '[')
		case ')':
			out = append(trimTrailingComma(out), ']')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

// trimTrailingComma drops a comma at the end of out, looking through any
// trailing whitespace.
func trimTrailingComma(out []byte) []byte {
	i := len(out)
	for i > 0 {
		switch out[i-1] {
		case ' ', '\t', '\n', '\r':
			i--
		case ',':
			return append(out[:i-1], out[i:]...)
		default:
			return out
		}
	}
	return out
}

// normalizeNumbers walks a decoded JSON tree and converts json.Number leaves
// to int64 when they are written without fraction or exponent, else float64.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	case json.Number:
		s := t.String()
		if !strings.ContainsAny(s, ".eE") {
			if n, err := t.Int64(); err == nil {
				return n
			}
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return s
	default:
		return v
	}
}

// isNumeric reports whether removing at most one decimal point from raw
// leaves only ASCII digits. Signs, exponents and thousands separators
// therefore stay strings.
func isNumeric(raw string) bool {
	stripped := strings.Replace(raw, ".", "", 1)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseNumber converts a value accepted by isNumeric. Values with a decimal
// point become float64, the rest int64. An all-digit value too large for
// int64 degrades to float64; beyond float64 range the raw string is kept.
func parseNumber(raw string) any {
	if !strings.Contains(raw, ".") {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	return f
}
