package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"lgpsreport/internal/config"
)

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// VersionInfo describes the running build.
type VersionInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     *config.Paths
	startTime time.Time
	logger    *slog.Logger
}

// NewHealthService creates a new health service
func NewHealthService(version string, paths *config.Paths, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		paths:     paths,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck reports liveness.
func (s *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   s.version,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
	}
}

// ReadinessCheck verifies that the working directories are usable.
func (s *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now().UTC(),
		Version:   s.version,
		Checks:    make(map[string]string),
	}
	if s.paths == nil {
		return status
	}

	for name, dir := range map[string]string{
		"raw_dir":     s.paths.RawDir,
		"reports_dir": s.paths.ReportsDir,
	} {
		info, err := os.Stat(dir)
		switch {
		case err != nil:
			status.Checks[name] = err.Error()
			status.Status = "not_ready"
		case !info.IsDir():
			status.Checks[name] = "not a directory"
			status.Status = "not_ready"
		default:
			status.Checks[name] = "ok"
		}
	}
	if status.Status != "ready" {
		s.logger.WarnContext(ctx, "Readiness check failed", slog.Any("checks", status.Checks))
	}
	return status
}

// Version returns build information.
func (s *HealthService) Version() VersionInfo {
	return VersionInfo{
		Name:      config.AppName,
		Version:   s.version,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
