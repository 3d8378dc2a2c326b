package extract

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// DocumentText is the extraction result for one document. Err is set when
// that document failed; other documents are unaffected.
type DocumentText struct {
	Path  string
	Lines []string
	Err   error
}

// ExtractAll extracts paths with at most limit documents in flight. Results
// are in input order. Per-document failures are recorded in the result; the
// returned error is non-nil only when ctx is cancelled.
func (r *Registry) ExtractAll(ctx context.Context, paths []string, limit int) ([]DocumentText, error) {
	if limit <= 0 {
		limit = 1
	}
	results := make([]DocumentText, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lines, err := r.Extract(gctx, path)
			results[i] = DocumentText{Path: path, Lines: lines, Err: err}
			if err != nil {
				r.logger.WarnContext(gctx, "Document extraction failed",
					slog.String("path", path),
					slog.String("error", err.Error()))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
