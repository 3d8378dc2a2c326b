package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	apperrors "lgpsreport/internal/errors"
	"lgpsreport/internal/infrastructure"
	"lgpsreport/pkg/contracts/domain"
)

// Recorder receives pipeline measurements.
type Recorder interface {
	RecordRun(ctx context.Context, duration time.Duration, err error)
	RecordStep(ctx context.Context, stepID string, duration time.Duration, err error)
	RecordDocument(ctx context.Context, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordRun(context.Context, time.Duration, error)          {}
func (noopRecorder) RecordStep(context.Context, string, time.Duration, error) {}
func (noopRecorder) RecordDocument(context.Context, string)                   {}

// Manager orchestrates operation execution
type Manager struct {
	registry *Registry
	config   *Config
	logger   *slog.Logger
	metrics  Recorder

	// Active operations
	mu         sync.RWMutex
	operations map[string]*OperationState
}

// NewManager creates a new operation manager
func NewManager(registry *Registry, config *Config, logger *slog.Logger, metrics Recorder) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &Manager{
		registry:   registry,
		config:     config,
		logger:     logger.With(slog.String("component", "operations")),
		metrics:    metrics,
		operations: make(map[string]*OperationState),
	}
}

// StepIDs returns the registered step IDs in execution order.
func (m *Manager) StepIDs() []string {
	return m.registry.ListIDs()
}

// Execute runs every registered step in order for req.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = "run-" + uuid.NewString()[:8]
	}
	ctx = infrastructure.EnsureTraceID(ctx)

	state := NewOperationState(req.ID)
	if req.InputDir != "" {
		state.SetConfig(ConfigKeyInputDir, req.InputDir)
	}
	if len(req.Paths) > 0 {
		state.SetConfig(ConfigKeyPaths, req.Paths)
	}
	if req.OutputBase != "" {
		state.SetConfig(ConfigKeyOutputBase, req.OutputBase)
	}
	if len(req.Formats) > 0 {
		state.SetConfig(ConfigKeyFormats, req.Formats)
	}

	m.storeOperation(state)
	defer m.removeOperation(req.ID)

	steps := m.registry.List()
	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	logger := m.logger.With(slog.String("operation_id", req.ID))
	logger.InfoContext(ctx, "Operation started", slog.Int("step_count", len(steps)))

	state.Start()
	err := m.executeSequential(ctx, state, steps)

	switch {
	case err == nil:
		state.Complete()
	case errors.Is(err, context.Canceled) || GetErrorType(err) == ErrorTypeCancellation:
		state.Fail(err)
		state.Cancel()
	default:
		state.Fail(err)
	}
	m.metrics.RecordRun(ctx, state.Duration(), err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		logger.ErrorContext(ctx, "Operation failed",
			slog.Duration("duration", state.Duration()),
			slog.String("error", err.Error()))
	} else {
		logger.InfoContext(ctx, "Operation completed", slog.Duration("duration", state.Duration()))
	}

	return m.createResponse(state, steps), err
}

// executeSequential executes steps one by one. A failed step skips the rest
// unless ContinueOnError is set.
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	var firstErr error
	for i, step := range steps {
		if ctx.Err() != nil {
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID())
		}

		if firstErr != nil && !m.config.ContinueOnError {
			state.GetStage(step.ID()).Skip(fmt.Sprintf("previous step failed: %v", firstErr))
			continue
		}

		m.logger.InfoContext(ctx, "Executing step",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := m.executeStep(ctx, state, step); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// executeStep executes a single Step with retry logic
func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return NewFatalError("step state not found", nil)
	}

	if err := step.Validate(state); err != nil {
		verr := NewValidationError(step.ID(), err.Error())
		stepState.Fail(verr)
		m.metrics.RecordStep(ctx, step.ID(), 0, verr)
		return verr
	}

	timeout := m.config.GetStepTimeout(step.ID())
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	policy := m.config.RetryConfig
	attempt := 0
	var duration time.Duration

	err := retry.Do(
		func() error {
			attempt++
			stepState.Start()
			start := time.Now()
			err := step.Execute(stepCtx, state)
			duration = time.Since(start)
			if err == nil {
				return nil
			}

			switch {
			case ctx.Err() != nil:
				err = NewCancellationError(step.ID())
			case errors.Is(stepCtx.Err(), context.DeadlineExceeded):
				err = NewTimeoutError(step.ID(), timeout.String())
			}
			m.logger.ErrorContext(ctx, "Step execution failed",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()),
				slog.Int("attempt", attempt),
				slog.Duration("duration", duration),
				slog.String("error", err.Error()))

			if !IsRetryable(err) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(stepCtx),
		retry.Attempts(uint(max(policy.MaxAttempts, 1))),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return calculateRetryDelay(int(n), policy)
		}),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, _ error) {
			m.logger.WarnContext(ctx, "Retrying step",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()),
				slog.Int("attempt", int(n)+1))
		}),
	)

	if err == nil {
		stepState.Complete()
		m.metrics.RecordStep(ctx, step.ID(), duration, nil)
		m.logger.InfoContext(ctx, "Step completed",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Duration("duration", duration))
		return nil
	}

	// a backoff wait cut short returns the bare context error
	switch {
	case ctx.Err() != nil:
		err = NewCancellationError(step.ID())
	case errors.Is(err, context.DeadlineExceeded):
		err = NewTimeoutError(step.ID(), timeout.String())
	}
	wrapped := WrapError(err, step.ID(), "step execution failed")
	stepState.Fail(wrapped)
	m.metrics.RecordStep(ctx, step.ID(), duration, wrapped)
	return wrapped
}

func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

// calculateRetryDelay grows the delay geometrically from InitialDelay.
func calculateRetryDelay(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialDelay)
	for i := 1; i < attempt; i++ {
		delay *= config.Multiplier
	}
	if d := time.Duration(delay); config.MaxDelay > 0 && d > config.MaxDelay {
		return config.MaxDelay
	}
	return time.Duration(delay)
}

// createResponse creates a operation response from state
func (m *Manager) createResponse(state *OperationState, steps []Step) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.Status,
		Duration: state.Duration(),
	}
	for _, step := range steps {
		resp.Steps = append(resp.Steps, state.GetStage(step.ID()))
	}
	if docs, ok := contextValue[[]domain.DocumentReport](state, ContextKeyDocuments); ok {
		resp.Documents = docs
	}
	if outputs, ok := contextValue[[]string](state, ContextKeyOutputs); ok {
		resp.Outputs = outputs
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}

// StepProgress is a point-in-time view of one step.
type StepProgress struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Status  StepStatus `json:"status"`
	Elapsed string     `json:"elapsed,omitempty"`
}

// Progress is a point-in-time view of a running operation.
type Progress struct {
	ID      string               `json:"id"`
	Status  OperationStatusValue `json:"status"`
	Elapsed string               `json:"elapsed"`
	Steps   []StepProgress       `json:"steps"`
}

// Progress reports a running operation. Finished operations are forgotten,
// so their IDs are not found.
func (m *Manager) Progress(id string) (*Progress, error) {
	m.mu.RLock()
	state, exists := m.operations[id]
	m.mu.RUnlock()
	if !exists {
		return nil, apperrors.NewNotFoundError("operation " + id)
	}

	p := &Progress{
		ID:      state.ID,
		Status:  state.GetStatus(),
		Elapsed: state.Duration().Round(time.Millisecond).String(),
	}
	for _, id := range m.registry.ListIDs() {
		step := state.GetStage(id)
		if step == nil {
			continue
		}
		sp := StepProgress{ID: step.ID, Name: step.Name, Status: step.GetStatus()}
		if d := step.Duration(); d > 0 {
			sp.Elapsed = d.Round(time.Millisecond).String()
		}
		p.Steps = append(p.Steps, sp)
	}
	return p, nil
}

// ListOperations returns the IDs of running operations, sorted.
func (m *Manager) ListOperations() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.operations))
	for id := range m.operations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Manager) storeOperation(state *OperationState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[state.ID] = state
}

func (m *Manager) removeOperation(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.operations, id)
}
