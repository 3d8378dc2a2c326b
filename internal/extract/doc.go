// Package extract turns source documents into the flat, ordered line
// sequence consumed by the reconstruction engine.
//
// Each Extractor yields trimmed, non-empty strings in reading order. For
// Word documents that is every paragraph first and then every table cell,
// row by row, which is how the compiled LGPS reports were flattened. The
// Registry picks an extractor by file extension and falls back to content
// sniffing for files with missing or misleading extensions.
package extract
