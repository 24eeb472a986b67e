package files

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gofrs/flock"
)

// CheckResult describes the availability of one file
type CheckResult struct {
	Path   string
	Exists bool
	Locked bool
	Err    error
}

// Available reports whether the file exists and is neither locked nor
// erroring
func (r CheckResult) Available() bool {
	return r.Exists && !r.Locked && r.Err == nil
}

// Checker probes files for existence and advisory locks before a run
// touches them
type Checker struct {
	log *slog.Logger
}

// NewChecker creates a new availability checker. A nil logger falls back to
// slog.Default
func NewChecker(logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{log: logger}
}

// Check probes a single path. A file counts as locked when another process
// holds an exclusive advisory lock on it; the probe lock is released right
// away
func (c *Checker) Check(path string) CheckResult {
	result := CheckResult{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return result
		}
		result.Err = fmt.Errorf("failed to stat %s: %w", path, err)
		return result
	}
	if !info.Mode().IsRegular() {
		result.Err = fmt.Errorf("%s is not a regular file", path)
		return result
	}
	result.Exists = true

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		result.Err = fmt.Errorf("failed to probe lock on %s: %w", path, err)
		return result
	}
	if !locked {
		result.Locked = true
		return result
	}
	if err := lock.Unlock(); err != nil {
		result.Err = fmt.Errorf("failed to release probe lock on %s: %w", path, err)
	}
	return result
}

// CheckAll probes every path in input order and reports whether all of them
// are available. An empty list counts as available.
func (c *Checker) CheckAll(paths []string) (bool, []CheckResult) {
	if len(paths) == 0 {
		c.log.Info("no files to check, treating as available")
		return true, nil
	}

	results := make([]CheckResult, 0, len(paths))
	available := 0
	for _, path := range paths {
		result := c.Check(path)
		results = append(results, result)

		switch {
		case result.Err != nil:
			c.log.Error("file not available",
				slog.String("path", path),
				slog.Any("error", result.Err))
		case !result.Exists:
			c.log.Error("file not found", slog.String("path", path))
		case result.Locked:
			c.log.Error("file locked by another process", slog.String("path", path))
		default:
			available++
			c.log.Debug("file available", slog.String("path", path))
		}
	}

	c.log.Info("availability check complete",
		slog.Int("available", available),
		slog.Int("total", len(paths)))

	return available == len(paths), results
}
