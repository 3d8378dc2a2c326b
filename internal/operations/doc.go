// Package operations runs the report pipeline as an ordered series of steps.
//
// Manager executes the steps held in a Registry one after another, tracking
// each step's status, timing and message in a StepState and passing data
// between steps through the OperationState context. Steps failing with a
// retryable OperationError are retried with exponential backoff.
//
// The standard pipeline built by NewPipeline is:
//
//	discover     find input documents
//	extract      pull the text lines out of each document
//	reconstruct  rebuild the fund table of every document
//	summarize    compute totals, breakdowns and the optional write-up
//	export       write the enabled report formats
//
// A document whose reconstruction yields no records is skipped and reported
// with its diagnostics; the run fails only when no document produced data.
package operations
