package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

// NewTraceID returns a random trace id.
func NewTraceID() string {
	return uuid.NewString()
}

// EnsureTraceID returns ctx when it already carries a trace id and a child
// context with a fresh one otherwise.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, NewTraceID())
}
