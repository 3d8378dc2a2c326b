// Package insights produces an optional narrative write-up of a compiled
// report with a hosted language model.
package insights
