package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"lgpsreport/internal/config"
)

// Manager provides file management operations. Relative paths are resolved
// against the configured application directories.
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{paths: paths, logger: logger.With(slog.String("component", "files"))}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	fullPath := m.resolvePath(path)
	_, err := os.Stat(fullPath)
	exists := err == nil

	m.logger.Debug("FileExists check",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Bool("exists", exists))

	return exists
}

// WriteFile writes data to a file, creating parent directories.
func (m *Manager) WriteFile(path string, data []byte) error {
	fullPath := m.resolvePath(path)

	m.logger.Info("Writing file",
		slog.String("full_path", fullPath),
		slog.Int("size_bytes", len(data)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(fullPath, data, 0644)
}

// DeleteFile deletes a file
func (m *Manager) DeleteFile(path string) error {
	fullPath := m.resolvePath(path)

	m.logger.Info("Deleting file", slog.String("full_path", fullPath))

	return os.Remove(fullPath)
}

// ListFiles returns all files in a directory (non-recursive)
func (m *Manager) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(m.resolvePath(dir))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// DeleteUnwanted removes the files in dir that have one of the given
// extensions but whose name contains none of the keywords. Both comparisons
// ignore case. With dryRun set nothing is removed. The names of the files
// that were (or would be) deleted are returned in directory order.
func (m *Manager) DeleteUnwanted(dir string, keywords, exts []string, dryRun bool) ([]string, error) {
	fullPath := m.resolvePath(dir)
	names, err := m.ListFiles(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", fullPath, err)
	}

	want := extensionSet(exts)
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}

	var deleted []string
	for _, name := range names {
		if !want[strings.ToLower(filepath.Ext(name))] || containsAny(strings.ToLower(name), lowered) {
			continue
		}
		if !dryRun {
			if err := m.DeleteFile(filepath.Join(fullPath, name)); err != nil {
				return deleted, fmt.Errorf("failed to delete %s: %w", name, err)
			}
		}
		deleted = append(deleted, name)
	}

	m.logger.Info("Filtered input directory",
		slog.String("dir", fullPath),
		slog.Int("deleted", len(deleted)),
		slog.Int("kept", len(names)-len(deleted)),
		slog.Bool("dry_run", dryRun))

	return deleted, nil
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// resolvePath resolves a path relative to the appropriate base directory
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) || m.paths == nil {
		return path
	}

	slashed := filepath.ToSlash(path)
	switch {
	case strings.HasPrefix(slashed, "raw/"):
		return filepath.Join(m.paths.RawDir, strings.TrimPrefix(slashed, "raw/"))
	case strings.HasPrefix(slashed, "compiled/"):
		return filepath.Join(m.paths.CompiledDir, strings.TrimPrefix(slashed, "compiled/"))
	case strings.HasPrefix(slashed, "reports/"):
		return filepath.Join(m.paths.ReportsDir, strings.TrimPrefix(slashed, "reports/"))
	case strings.HasPrefix(slashed, "logs/"):
		return filepath.Join(m.paths.LogsDir, strings.TrimPrefix(slashed, "logs/"))
	default:
		return filepath.Join(m.paths.BaseDir, path)
	}
}
