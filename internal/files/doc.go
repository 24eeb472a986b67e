// Package files provides file system support for the conversion flow:
// availability probing, discovery of input files, and plain file management.
//
// This package contains three main components:
//
// Checker: Probes files for existence and advisory locks before a run
// touches them. CheckAll walks a list in order, logs per-file diagnostics
// and reports an overall verdict.
//
// Discovery: Finds input files below a base directory, either every CSV
// file or files matching a glob pattern.
//
// Manager: Basic file management such as copying, moving and deleting
// files, used by the archive step after a successful conversion.
//
// Example usage:
//
//	// Probe the inputs before starting
//	checker := files.NewChecker(logger)
//	ok, results := checker.CheckAll([]string{"data/in/2024_03.csv"})
//
//	// Archive a processed file
//	manager := files.NewManager(logger)
//	err := manager.Move("data/in/2024_03.csv", "archive/2024_03.csv")
package files
