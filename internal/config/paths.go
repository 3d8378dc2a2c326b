package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved application directories.
type Paths struct {
	BaseDir     string
	RawDir      string
	CompiledDir string
	ReportsDir  string
	LogsDir     string
}

// ResolvePaths resolves cfg against its base directory. An empty BaseDir
// selects the directory containing the running executable, so the tools
// behave the same whichever directory they are started from.
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		exeDir, err := executableDir()
		if err != nil {
			return nil, err
		}
		base = exeDir
	}

	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", base, err)
	}

	return &Paths{
		BaseDir:     abs,
		RawDir:      resolve(abs, cfg.RawDir, DefaultRawDir),
		CompiledDir: resolve(abs, cfg.CompiledDir, DefaultCompiledDir),
		ReportsDir:  resolve(abs, cfg.ReportsDir, DefaultReportsDir),
		LogsDir:     resolve(abs, cfg.LogsDir, DefaultLogsDir),
	}, nil
}

func resolve(base, dir, fallback string) string {
	if dir == "" {
		dir = fallback
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.RawDir, p.CompiledDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// CompiledReport returns the path of the compiled per-fund document.
func (p *Paths) CompiledReport() string {
	return filepath.Join(p.CompiledDir, CompiledReportFile)
}

// ReportFile returns the path of a reconstructed report with extension ext.
func (p *Paths) ReportFile(ext string) string {
	return filepath.Join(p.ReportsDir, ReconstructedReportBase+"."+ext)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
