package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"tabkit/internal/config"
	"tabkit/internal/files"
	"tabkit/internal/infrastructure"
)

func main() {
	quiet := flag.Bool("quiet", false, "suppress per-file output, report by exit code only")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: filecheck [-quiet] FILE ...")
		os.Exit(2)
	}

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

	checker := files.NewChecker(logger)
	ok, results := checker.CheckAll(paths)

	if !*quiet {
		for _, result := range results {
			fmt.Printf("%s: %s\n", result.Path, describe(result))
		}
	}

	if !ok {
		fmt.Println("Some files are not available")
		os.Exit(1)
	}
	fmt.Printf("All %d files available\n", len(paths))
}

// describe renders one probe result for the per-file report.
func describe(result files.CheckResult) string {
	switch {
	case result.Err != nil:
		return "error: " + result.Err.Error()
	case !result.Exists:
		return "missing"
	case result.Locked:
		return "locked"
	default:
		return "available"
	}
}
