// Package reconstruct rebuilds a wide table of fund holdings from the flat
// text stream left behind when a document's tables and paragraphs are
// reduced to their cell text.
//
// # Pipeline
//
//	raw lines → Normalize → Assemble → ParseNumeric → Pivot → PivotTable
//
// Normalize drops structural labels (document title, column headers).
// Assemble walks the lines two at a time, binding a fund header and its
// category tag and pairing every following metric line with its value.
// Pivot reshapes the flat records into one row per fund and one column per
// metric, keeping the first value seen for every (fund, metric) pair.
//
// # Failure model
//
// Nothing in this package returns an error for malformed input. Lines that
// cannot be placed are dropped and counted in the Diagnostics of the
// Result. The only error the Engine reports is ErrEmptyResult, returned when
// no record could be recovered at all.
//
// # Ordering
//
// The output depends on line order (first-wins duplicates, sequential
// header binding); lines must be passed in document order.
package reconstruct
