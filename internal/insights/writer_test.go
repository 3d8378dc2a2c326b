package insights

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lgpsreport/internal/config"
	apperrors "lgpsreport/internal/errors"
)

type fakeGenerator struct {
	responses []string
	errs      []error
	prompts   []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	i := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", ErrEmptyResponse
}

func testWriter(gen Generator) *Writer {
	return NewWriter(gen, Options{
		Attempts: 3,
		Delay:    time.Millisecond,
		Logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
}

func TestWriteUp(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"```markdown\nUK equity dominates.\n```"}}

	out, err := testWriter(gen).WriteUp(context.Background(), "Fund A-Report 2023 Base Value 100")
	require.NoError(t, err)
	assert.Equal(t, "UK equity dominates.", out)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Fund A-Report 2023 Base Value 100")
}

func TestWriteUpRetries(t *testing.T) {
	gen := &fakeGenerator{
		errs:      []error{errors.New("503"), errors.New("503")},
		responses: []string{"", "", "third time"},
	}

	out, err := testWriter(gen).WriteUp(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "third time", out)
	assert.Len(t, gen.prompts, 3)
}

func TestWriteUpFailure(t *testing.T) {
	gen := &fakeGenerator{errs: []error{errors.New("a"), errors.New("b"), errors.New("quota exceeded")}}

	_, err := testWriter(gen).WriteUp(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUpstream))
	assert.ErrorContains(t, err, "quota exceeded")
	assert.Len(t, gen.prompts, 3)
}

func TestWriteUpCancelledIsNotRetried(t *testing.T) {
	gen := GeneratorFunc(func(ctx context.Context, _ string) (string, error) {
		return "", context.Canceled
	})
	calls := 0
	counting := GeneratorFunc(func(ctx context.Context, p string) (string, error) {
		calls++
		return gen(ctx, p)
	})

	_, err := testWriter(counting).WriteUp(context.Background(), "text")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWriteUpEmptyText(t *testing.T) {
	_, err := testWriter(&fakeGenerator{}).WriteUp(context.Background(), "  \n")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestBuildPromptTruncates(t *testing.T) {
	long := strings.Repeat("z", MaxInputChars+50)
	prompt := BuildPrompt(long)
	assert.Equal(t, MaxInputChars, strings.Count(prompt, "z"))
}

func TestCleanMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"```\ncode\n```", "code"},
		{"```markdown\n# Title\n```", "# Title"},
		{"  ``` ", "```"},
		{"text with ``` inside", "text with ``` inside"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanMarkdown(tt.in))
		})
	}
}

func TestNewDisabled(t *testing.T) {
	w, err := New(context.Background(), config.InsightsConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, w)

	_, err = New(context.Background(), config.InsightsConfig{Enabled: true}, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}
