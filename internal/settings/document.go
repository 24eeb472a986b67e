package settings

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// Section holds the key/value pairs of one INI section. Keys keep the order
// they have in the file; values are classified once when the document loads.
type Section struct {
	name   string
	keys   []string
	raw    map[string]string
	values map[string]any
}

// Name returns the section name as written in the file.
func (s *Section) Name() string { return s.name }

// Keys returns the key names in file order.
func (s *Section) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Has reports whether the section contains key.
func (s *Section) Has(key string) bool {
	_, ok := s.raw[key]
	return ok
}

// Raw returns the trimmed string as written in the file, before
// classification.
func (s *Section) Raw(key string) (string, bool) {
	v, ok := s.raw[key]
	return v, ok
}

// Value returns the classified value for key.
func (s *Section) Value(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Map returns the classified values keyed by name. Go map iteration order is
// undefined; use Keys for file order.
func (s *Section) Map() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Document is a parsed settings file. Sections keep file order. The zero
// value is not usable; documents come from Load or LoadStrict.
type Document struct {
	path     string
	sections []*Section
	index    map[string]*Section
}

// Load reads and parses the settings file at path. It returns nil when the
// file is missing or cannot be parsed; the cause is logged on logger. A nil
// logger falls back to slog.Default. Callers that need to distinguish
// failure modes use LoadStrict instead.
func Load(path string, logger *slog.Logger) *Document {
	if logger == nil {
		logger = slog.Default()
	}
	doc, err := load(path, logger)
	if err != nil {
		logger.Error("settings file not loaded",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil
	}
	return doc
}

// LoadStrict reads and parses the settings file at path. Load failures are
// not logged: a missing or irregular file surfaces as ErrNotExist, anything
// else wraps ErrLoad, both matchable with errors.Is. The logger only
// receives the per-value warnings for structured literals that do not parse,
// same as with Load. A nil logger falls back to slog.Default.
func LoadStrict(path string, logger *slog.Logger) (*Document, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return load(path, logger)
}

func load(path string, logger *slog.Logger) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrNotExist, path)
	}

	// Inline comment stripping is off so that # and ; inside values stay
	// literal, and there is no interpolation: %-style text passes through.
	file, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}

	doc := &Document{
		path:  path,
		index: make(map[string]*Section),
	}
	for _, sec := range file.Sections() {
		// The implicit default section exists even for files that never
		// declare one; only named sections belong to the document.
		if sec.Name() == ini.DefaultSection {
			continue
		}
		section := &Section{
			name:   sec.Name(),
			raw:    make(map[string]string, len(sec.Keys())),
			values: make(map[string]any, len(sec.Keys())),
		}
		for _, key := range sec.Keys() {
			name := key.Name()
			raw := strings.TrimSpace(key.Value())
			section.keys = append(section.keys, name)
			section.raw[name] = raw
			section.values[name] = parseValue(raw, func(err error) {
				logger.Warn("structured value not parseable, kept as string",
					slog.String("path", path),
					slog.String("section", section.name),
					slog.String("key", name),
					slog.String("error", err.Error()))
			})
		}
		doc.sections = append(doc.sections, section)
		doc.index[section.name] = section
	}
	return doc, nil
}

// Path returns the file the document was loaded from.
func (d *Document) Path() string { return d.path }

// Sections returns the sections in file order.
func (d *Document) Sections() []*Section {
	out := make([]*Section, len(d.sections))
	copy(out, d.sections)
	return out
}

// SectionNames returns the section names in file order.
func (d *Document) SectionNames() []string {
	out := make([]string, len(d.sections))
	for i, s := range d.sections {
		out[i] = s.name
	}
	return out
}

// Section returns the named section.
func (d *Document) Section(name string) (*Section, bool) {
	s, ok := d.index[name]
	return s, ok
}

// Has reports whether section contains key.
func (d *Document) Has(section, key string) bool {
	s, ok := d.index[section]
	return ok && s.Has(key)
}

// Get returns the classified value at section/key. A missing section or key
// is not an error: the fallback is returned instead.
func (d *Document) Get(section, key string, fallback any) any {
	s, ok := d.index[section]
	if !ok {
		return fallback
	}
	v, ok := s.values[key]
	if !ok {
		return fallback
	}
	return v
}

// Bool returns the value at section/key when it classified as a boolean,
// else fallback.
func (d *Document) Bool(section, key string, fallback bool) bool {
	if v, ok := d.Get(section, key, nil).(bool); ok {
		return v
	}
	return fallback
}

// Int returns the value at section/key when it classified as an integer,
// else fallback. Floats are not truncated.
func (d *Document) Int(section, key string, fallback int64) int64 {
	if v, ok := d.Get(section, key, nil).(int64); ok {
		return v
	}
	return fallback
}

// Float returns the value at section/key when it classified as a number,
// else fallback. Integers promote to float64.
func (d *Document) Float(section, key string, fallback float64) float64 {
	switch v := d.Get(section, key, nil).(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return fallback
}

// String returns the value at section/key when it classified as a string,
// else fallback.
func (d *Document) String(section, key, fallback string) string {
	if v, ok := d.Get(section, key, nil).(string); ok {
		return v
	}
	return fallback
}

// Strings returns the value at section/key as a string list. Comma lists are
// returned as is; a structured list qualifies when every element is a string,
// which is how list entries with embedded commas (number formats, file names)
// are written. A single non-empty string counts as a one-element list.
func (d *Document) Strings(section, key string, fallback []string) []string {
	switch v := d.Get(section, key, nil).(type) {
	case []string:
		return v
	case []any:
		out := make([]string, len(v))
		for i, e := range v {
			s, ok := e.(string)
			if !ok {
				return fallback
			}
			out[i] = s
		}
		return out
	case string:
		if v != "" {
			return []string{v}
		}
	}
	return fallback
}

// Map returns the whole document as nested maps, section name to key to
// classified value. Go map iteration order is undefined; use Sections and
// Keys for file order.
func (d *Document) Map() map[string]map[string]any {
	out := make(map[string]map[string]any, len(d.sections))
	for _, s := range d.sections {
		out[s.name] = s.Map()
	}
	return out
}
