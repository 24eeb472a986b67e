package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Manager provides file management operations
type Manager struct {
	log *slog.Logger
}

// NewManager creates a new file manager instance. A nil logger falls back to
// slog.Default
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{log: logger}
}

// Exists checks if a regular file exists at the given path
func (m *Manager) Exists(path string) bool {
	info, err := os.Stat(path)
	exists := err == nil && info.Mode().IsRegular()

	m.log.Debug("file existence check",
		slog.String("path", path),
		slog.Bool("exists", exists))

	return exists
}

// EnsureDir creates a directory with all parent directories if it does not
// exist yet
func (m *Manager) EnsureDir(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	m.log.Debug("creating directory", slog.String("path", path))
	return os.MkdirAll(path, 0755)
}

// Copy copies a file from source to destination, creating the destination
// directory when missing
func (m *Manager) Copy(src, dst string) error {
	m.log.Info("copying file",
		slog.String("src", src),
		slog.String("dst", dst))

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}

	// Sync to ensure the write is complete
	return dstFile.Sync()
}

// Move moves a file from source to destination. Rename is tried first and
// is atomic on the same filesystem; across filesystems the file is copied
// and the source removed
func (m *Manager) Move(src, dst string) error {
	m.log.Info("moving file",
		slog.String("src", src),
		slog.String("dst", dst))

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := m.Copy(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// Remove deletes a file
func (m *Manager) Remove(path string) error {
	m.log.Info("deleting file", slog.String("path", path))
	return os.Remove(path)
}
