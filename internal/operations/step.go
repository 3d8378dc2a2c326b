package operations

import "context"

// Step is one stage of the reconstruction pipeline.
type Step interface {
	ID() string
	Name() string
	// Validate checks that earlier steps left what this step needs.
	Validate(state *OperationState) error
	Execute(ctx context.Context, state *OperationState) error
}

// BaseStep provides the identity half of Step.
type BaseStep struct {
	id   string
	name string
}

// NewBaseStep creates a new base step
func NewBaseStep(id, name string) BaseStep {
	return BaseStep{id: id, name: name}
}

// ID returns the step identifier
func (s BaseStep) ID() string { return s.id }

// Name returns the human-readable step name
func (s BaseStep) Name() string { return s.name }

// Validate accepts any state
func (s BaseStep) Validate(*OperationState) error { return nil }
