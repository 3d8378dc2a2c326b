package reconstruct

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEntityHeader(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Fund A-Report", true},
		{"UK Listed Equity-Fund-2023", true},
		{"Global-Equity Report", true},
		{"Fund A Report", false}, // no separator
		{"Base-Value", false},    // no keyword
		{"Private-Markets-December", false},
		{"fund a-report", false}, // keywords are case-sensitive
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEntityHeader(tt.line))
		})
	}
}

func TestIsCategoryTag(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"2023", true},
		{"0", true},
		{"Fund", true},
		{"FUND", true},
		{"fund", true},
		{"2023/24", false},
		{"-2023", false},
		{"20 23", false},
		{"Funds", false},
		{"UK", false},
		{"٢٠٢٤", false},
		{"２０２４", false},
		{"²", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCategoryTag(tt.line))
		})
	}
}

func TestClassifierDefaults(t *testing.T) {
	c := Classifier{}.withDefaults()
	assert.True(t, c.IsHeader("Fund A-Report"))
	assert.True(t, c.IsCategory("2024"))

	custom := Classifier{IsHeader: func(string) bool { return false }}.withDefaults()
	assert.False(t, custom.IsHeader("Fund A-Report"))
	assert.True(t, custom.IsCategory("2024"))
}

func TestNormalize(t *testing.T) {
	lines := []string{
		"LGPS Compiled Financial Report",
		"Fund Name", "Market", "Metric", "Value",
		"Fund A-Report", "2023", "Value", "Base Value", "100",
		"Market value",
	}

	out, removed := NewNormalizer(nil).Normalize(lines)
	assert.Equal(t, []string{"Fund A-Report", "2023", "Base Value", "100", "Market value"}, out)
	assert.Equal(t, 6, removed)
	assert.Len(t, lines, 11, "input must not be modified")

	t.Run("custom labels", func(t *testing.T) {
		out, removed := NewNormalizer([]string{"Holdings"}).Normalize([]string{"Holdings", "Fund", "Value"})
		assert.Equal(t, []string{"Fund", "Value"}, out)
		assert.Equal(t, 1, removed)
	})

	t.Run("empty label set keeps everything", func(t *testing.T) {
		out, removed := NewNormalizer([]string{}).Normalize([]string{"Metric", "Value"})
		assert.Equal(t, []string{"Metric", "Value"}, out)
		assert.Zero(t, removed)
	})

	t.Run("package helper", func(t *testing.T) {
		assert.Equal(t, []string{"x"}, Normalize([]string{"Metric", "x", "Value"}))
		assert.Empty(t, Normalize(nil))
	})
}
