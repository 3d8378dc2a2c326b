package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"lgpsreport/internal/config"
	apperrors "lgpsreport/internal/errors"
)

// MaxInputChars bounds the document text sent to the model.
const MaxInputChars = 200_000

const promptTemplate = `I have completed a data analysis of LGPS pool portfolios.
Here is the extracted text of the compiled report:

%s

Write a short write-up explaining what the tables show and which key conclusions can be drawn from them.
Only discuss the data you are given. Do not use placeholders.`

// BuildPrompt embeds text in the write-up prompt, truncating it to
// MaxInputChars.
func BuildPrompt(text string) string {
	if len(text) > MaxInputChars {
		text = strings.ToValidUTF8(text[:MaxInputChars], "")
	}
	return fmt.Sprintf(promptTemplate, text)
}

// Options configures a Writer.
type Options struct {
	Attempts uint
	Delay    time.Duration
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Writer generates write-ups, retrying transient failures.
type Writer struct {
	gen      Generator
	attempts uint
	delay    time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// NewWriter wraps gen. Zero options select three attempts, a one second
// initial backoff and the default timeout.
func NewWriter(gen Generator, opts Options) *Writer {
	if opts.Attempts == 0 {
		opts.Attempts = 3
	}
	if opts.Delay <= 0 {
		opts.Delay = time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultInsightsTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Writer{
		gen:      gen,
		attempts: opts.Attempts,
		delay:    opts.Delay,
		timeout:  opts.Timeout,
		logger:   opts.Logger.With(slog.String("component", "insights")),
	}
}

// New builds a Gemini-backed writer from cfg. It returns nil when insights
// are disabled.
func New(ctx context.Context, cfg config.InsightsConfig, logger *slog.Logger) (*Writer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	gen, err := NewGeminiGenerator(ctx, cfg)
	if err != nil {
		return nil, apperrors.NewConfigError("insights", err)
	}
	return NewWriter(gen, Options{Timeout: cfg.Timeout, Logger: logger}), nil
}

// WriteUp asks the model to describe text. Failures are returned as
// UPSTREAM application errors after the retries are exhausted.
func (w *Writer) WriteUp(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewAppValidationError("no report text to describe")
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	prompt := BuildPrompt(text)
	start := time.Now()

	out, err := retry.DoWithData(
		func() (string, error) {
			return w.gen.Generate(ctx, prompt)
		},
		retry.Context(ctx),
		retry.Attempts(w.attempts),
		retry.Delay(w.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
		retry.OnRetry(func(n uint, err error) {
			w.logger.WarnContext(ctx, "write-up attempt failed",
				slog.Uint64("attempt", uint64(n+1)),
				slog.String("error", err.Error()))
		}),
	)
	if err != nil {
		return "", apperrors.NewUpstreamError("insights", err)
	}

	out = CleanMarkdown(out)
	w.logger.InfoContext(ctx, "write-up generated",
		slog.Int("prompt_chars", len(prompt)),
		slog.Int("response_chars", len(out)),
		slog.Duration("duration", time.Since(start)))
	return out, nil
}

// CleanMarkdown strips an outer code fence that models sometimes wrap their
// answer in.
func CleanMarkdown(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	s = strings.TrimPrefix(s, "markdown")
	return strings.TrimSpace(s)
}
