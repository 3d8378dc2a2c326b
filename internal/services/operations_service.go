package services

import (
	"context"
	"log/slog"
	"sync"

	"lgpsreport/internal/operations"
)

// OperationsService runs the reconstruction pipeline, one run at a time.
type OperationsService struct {
	manager *operations.Manager
	logger  *slog.Logger
	running sync.Mutex
}

// NewOperationsService creates a new operations service
func NewOperationsService(manager *operations.Manager, logger *slog.Logger) *OperationsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OperationsService{
		manager: manager,
		logger:  logger.With(slog.String("service", "operations")),
	}
}

// Run executes the pipeline over the configured input directory. Only the
// output formats may be chosen by the caller.
func (s *OperationsService) Run(ctx context.Context, formats []string) (*operations.OperationResponse, error) {
	if !s.running.TryLock() {
		return nil, ErrOperationRunning
	}
	defer s.running.Unlock()

	resp, err := s.manager.Execute(ctx, operations.OperationRequest{Formats: formats})
	if err != nil {
		s.logger.WarnContext(ctx, "Pipeline run failed", slog.String("error", err.Error()))
	}
	return resp, err
}

// RunStatus lists the pipeline steps and the runs currently executing.
type RunStatus struct {
	Steps   []string `json:"steps"`
	Running []string `json:"running"`
}

// Status reports the configured steps and any active run.
func (s *OperationsService) Status() RunStatus {
	return RunStatus{
		Steps:   s.manager.StepIDs(),
		Running: s.manager.ListOperations(),
	}
}

// Progress reports the step states of the active run id.
func (s *OperationsService) Progress(id string) (*operations.Progress, error) {
	return s.manager.Progress(id)
}
