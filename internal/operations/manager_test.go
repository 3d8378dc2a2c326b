package operations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lgpsreport/internal/errors"
)

type fakeStep struct {
	BaseStep
	run      func(ctx context.Context, state *OperationState, attempt int) error
	validate error
	attempts int
}

func newFakeStep(id string, run func(ctx context.Context, state *OperationState, attempt int) error) *fakeStep {
	return &fakeStep{BaseStep: NewBaseStep(id, id), run: run}
}

func (s *fakeStep) Validate(*OperationState) error { return s.validate }

func (s *fakeStep) Execute(ctx context.Context, state *OperationState) error {
	s.attempts++
	if s.run == nil {
		return nil
	}
	return s.run(ctx, state, s.attempts)
}

func newTestManager(t *testing.T, cfg *Config, steps ...Step) *Manager {
	t.Helper()
	registry := NewRegistry()
	for _, s := range steps {
		require.NoError(t, registry.Register(s))
	}
	return NewManager(registry, cfg, discardLogger(), nil)
}

func TestManagerRetriesRetryableErrors(t *testing.T) {
	step := newFakeStep("flaky", func(_ context.Context, _ *OperationState, attempt int) error {
		if attempt < 3 {
			return NewExecutionError("flaky", errors.New("temporary"), true)
		}
		return nil
	})

	resp, err := newTestManager(t, fastConfig(), step).Execute(context.Background(), OperationRequest{ID: "retry"})
	require.NoError(t, err)
	assert.Equal(t, 3, step.attempts)
	assert.Equal(t, 3, resp.Steps[0].Attempts)
	assert.Equal(t, OperationStatusCompleted, resp.Status)
}

func TestManagerDoesNotRetryPermanentErrors(t *testing.T) {
	step := newFakeStep("broken", func(context.Context, *OperationState, int) error {
		return errors.New("permanent")
	})
	next := newFakeStep("next", nil)

	resp, err := newTestManager(t, fastConfig(), step, next).Execute(context.Background(), OperationRequest{})
	require.Error(t, err)

	assert.Equal(t, 1, step.attempts)
	assert.Zero(t, next.attempts)
	assert.Equal(t, StepStatusSkipped, resp.Steps[1].Status)
	assert.Contains(t, resp.Error, "permanent")
	assert.Contains(t, resp.Steps[0].ErrorMessage, "permanent")
}

func TestManagerContinueOnError(t *testing.T) {
	cfg := fastConfig()
	cfg.ContinueOnError = true
	step := newFakeStep("broken", func(context.Context, *OperationState, int) error {
		return errors.New("permanent")
	})
	next := newFakeStep("next", nil)

	resp, err := newTestManager(t, cfg, step, next).Execute(context.Background(), OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, next.attempts)
	assert.Equal(t, StepStatusCompleted, resp.Steps[1].Status)
	assert.Equal(t, OperationStatusFailed, resp.Status)
}

func TestManagerValidationFailure(t *testing.T) {
	step := newFakeStep("needs-input", nil)
	step.validate = errors.New("missing input")

	_, err := newTestManager(t, fastConfig(), step).Execute(context.Background(), OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
	assert.Zero(t, step.attempts)
}

func TestManagerStepTimeout(t *testing.T) {
	cfg := fastConfig()
	cfg.SetStepTimeout("slow", 10*time.Millisecond)
	step := newFakeStep("slow", func(ctx context.Context, _ *OperationState, _ int) error {
		<-ctx.Done()
		return ctx.Err()
	})

	_, err := newTestManager(t, cfg, step).Execute(context.Background(), OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeTimeout, GetErrorType(err))
}

func TestManagerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first := newFakeStep("first", func(context.Context, *OperationState, int) error {
		cancel()
		return nil
	})
	second := newFakeStep("second", nil)

	resp, err := newTestManager(t, fastConfig(), first, second).Execute(ctx, OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeCancellation, GetErrorType(err))
	assert.Equal(t, OperationStatusCancelled, resp.Status)
	assert.Equal(t, StepStatusSkipped, resp.Steps[1].Status)
}

func TestManagerPassesContextBetweenSteps(t *testing.T) {
	producer := newFakeStep("producer", func(_ context.Context, state *OperationState, _ int) error {
		state.SetContext("answer", 42)
		return nil
	})
	var got int
	consumer := newFakeStep("consumer", func(_ context.Context, state *OperationState, _ int) error {
		got, _ = contextValue[int](state, "answer")
		return nil
	})

	_, err := newTestManager(t, fastConfig(), producer, consumer).Execute(context.Background(), OperationRequest{})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newFakeStep("b", nil)))
	require.NoError(t, r.Register(newFakeStep("a", nil)))

	assert.Error(t, r.Register(newFakeStep("a", nil)))
	assert.Error(t, r.Register(newFakeStep("", nil)))
	assert.Error(t, r.Register(nil))

	assert.Equal(t, []string{"b", "a"}, r.ListIDs())
	require.Len(t, r.List(), 2)
	assert.Equal(t, "b", r.List()[0].ID())
}

func TestCalculateRetryDelay(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: 5 * time.Second, Multiplier: 2}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 5 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, calculateRetryDelay(tt.attempt, cfg))
	}
}

func TestOperationErrors(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError(cause, "export", "write failed")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[execution] export: write failed: disk full", err.Error())
	assert.False(t, IsRetryable(err))
	assert.True(t, IsRetryable(NewExecutionError("export", cause, true)))
	assert.Nil(t, WrapError(nil, "export", "noop"))
	assert.Equal(t, ErrorTypeFatal, GetErrorType(NewFatalError("boom", nil)))
}

func TestManagerProgress(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	first := newFakeStep("first", nil)
	slow := newFakeStep("slow", func(ctx context.Context, _ *OperationState, _ int) error {
		close(started)
		<-release
		return nil
	})
	last := newFakeStep("last", nil)
	m := newTestManager(t, fastConfig(), first, slow, last)
	assert.Equal(t, []string{"first", "slow", "last"}, m.StepIDs())

	done := make(chan error, 1)
	go func() {
		_, err := m.Execute(context.Background(), OperationRequest{ID: "live"})
		done <- err
	}()
	<-started

	assert.Equal(t, []string{"live"}, m.ListOperations())
	p, err := m.Progress("live")
	require.NoError(t, err)
	assert.Equal(t, OperationStatusRunning, p.Status)
	require.Len(t, p.Steps, 3)
	assert.Equal(t, StepStatusCompleted, p.Steps[0].Status)
	assert.Equal(t, StepStatusActive, p.Steps[1].Status)
	assert.Equal(t, StepStatusPending, p.Steps[2].Status)

	close(release)
	require.NoError(t, <-done)

	assert.Empty(t, m.ListOperations())
	_, err = m.Progress("live")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}
