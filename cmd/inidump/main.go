package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"tabkit/internal/settings"
)

// inidump prints a settings file as JSON with every value classified, as a
// quick way to see how the parser reads a given file.
func main() {
	strict := flag.Bool("strict", false, "fail with a distinct exit code instead of relying on the log")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: inidump [-strict] FILE")
		os.Exit(2)
	}
	path := flag.Arg(0)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var doc *settings.Document
	if *strict {
		var err error
		doc, err = settings.LoadStrict(path, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			if errors.Is(err, settings.ErrNotExist) {
				os.Exit(3)
			}
			os.Exit(1)
		}
	} else {
		doc = settings.Load(path, logger)
		if doc == nil {
			os.Exit(1)
		}
	}

	out, err := renderJSON(doc)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Stdout.Write(out)
}

// renderJSON writes the document as JSON with sections and keys in file
// order. encoding/json sorts map keys, so the outer objects are assembled by
// hand and only the values delegate to the encoder.
func renderJSON(doc *settings.Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n")

	sections := doc.Sections()
	for i, section := range sections {
		name, err := json.Marshal(section.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to encode section name %q: %w", section.Name(), err)
		}
		buf.WriteString("  ")
		buf.Write(name)
		buf.WriteString(": {\n")

		keys := section.Keys()
		for j, key := range keys {
			value, _ := section.Value(key)
			encodedKey, err := json.Marshal(key)
			if err != nil {
				return nil, fmt.Errorf("failed to encode key %q: %w", key, err)
			}
			encodedValue, err := json.Marshal(value)
			if err != nil {
				return nil, fmt.Errorf("failed to encode %s.%s: %w", section.Name(), key, err)
			}
			buf.WriteString("    ")
			buf.Write(encodedKey)
			buf.WriteString(": ")
			buf.Write(encodedValue)
			if j < len(keys)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}

		buf.WriteString("  }")
		if i < len(sections)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
