// Package analytics computes summary statistics and keyword breakdowns over
// reconstructed fund tables. Sums are accumulated with shopspring/decimal so
// totals of large holdings do not drift.
package analytics
