package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apperrors "lgpsreport/internal/errors"
)

// ErrUnsupported is returned when no extractor handles a document.
var ErrUnsupported = errors.New("extract: unsupported document type")

// Extractor reads a document and returns its text lines in reading order.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, path string) ([]string, error)

// Extract calls f.
func (f ExtractorFunc) Extract(ctx context.Context, path string) ([]string, error) {
	return f(ctx, path)
}

type mimeEntry struct {
	mime      string
	extractor Extractor
}

// Registry dispatches documents to extractors.
type Registry struct {
	byExt  map[string]Extractor
	byMIME []mimeEntry
	logger *slog.Logger
}

// NewRegistry returns a registry with the DOCX, XLSX, HTML and plain text
// extractors installed.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		byExt:  make(map[string]Extractor),
		logger: logger.With(slog.String("component", "extract")),
	}
	r.Register(DOCXExtractor{}, []string{".docx"}, mimeDOCX)
	r.Register(XLSXExtractor{}, []string{".xlsx", ".xlsm"}, mimeXLSX)
	r.Register(HTMLExtractor{}, []string{".html", ".htm"}, "text/html")
	r.Register(TextExtractor{}, []string{".txt", ".text"}, "text/plain")
	return r
}

// Register installs e for the given extensions and MIME type. Later
// registrations replace earlier ones for the same extension.
func (r *Registry) Register(e Extractor, exts []string, mime string) {
	for _, ext := range exts {
		r.byExt[strings.ToLower(ext)] = e
	}
	if mime != "" {
		r.byMIME = append([]mimeEntry{{mime: mime, extractor: e}}, r.byMIME...)
	}
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions lists the registered extensions.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}

// For returns the extractor for path: by extension first, then by the
// sniffed content type.
func (r *Registry) For(path string) (Extractor, error) {
	if e, ok := r.byExt[strings.ToLower(filepath.Ext(path))]; ok {
		return e, nil
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detect content type of %s: %w", path, err)
	}
	for m := mtype; m != nil; m = m.Parent() {
		for _, entry := range r.byMIME {
			if m.Is(entry.mime) {
				r.logger.Debug("Extractor selected by content type",
					slog.String("path", path),
					slog.String("mime", mtype.String()))
				return entry.extractor, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupported, filepath.Base(path), mtype.String())
}

// Extract reads path with the matching extractor. Failures are returned as
// EXTRACTION application errors.
func (r *Registry) Extract(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := r.For(path)
	if err != nil {
		return nil, apperrors.NewExtractionError(path, err)
	}
	lines, err := e.Extract(ctx, path)
	if err != nil {
		return nil, apperrors.NewExtractionError(path, err)
	}
	r.logger.DebugContext(ctx, "Document extracted",
		slog.String("path", path),
		slog.Int("lines", len(lines)))
	return lines, nil
}

// CleanLines trims every entry and drops the empty ones.
func CleanLines(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
