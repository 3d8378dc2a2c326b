package exporter

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lgpsreport/internal/extract"
)

func TestDocxBuilderReadBack(t *testing.T) {
	var buf bytes.Buffer
	n, err := NewDocxBuilder().
		Heading("LGPS Compiled Financial Report", 1).
		Paragraph("first line\nsecond <line> & more").
		Table([][]string{
			{"Fund Name", "Market", "Metric", "Value"},
			{"UK Listed Equity", "Fund", "Base Value", "1,500,000"},
			{"Bonds", "", "Shares", "multi\nline"},
		}, true).
		WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	doc, err := extract.ReadDocument(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	assert.Equal(t, []string{"LGPS Compiled Financial Report", "first line", "second <line> & more"}, doc.Paragraphs)
	require.Len(t, doc.Tables, 1)
	assert.Equal(t, 4, doc.Tables[0].Width())
	assert.Equal(t, []string{"Bonds", "", "Shares", "multi\nline"}, doc.Tables[0][2])

	assert.Equal(t, []string{
		"LGPS Compiled Financial Report", "first line", "second <line> & more",
		"Fund Name", "Market", "Metric", "Value",
		"UK Listed Equity", "Fund", "Base Value", "1,500,000",
		"Bonds", "Shares", "multi\nline",
	}, doc.Lines())
}

func TestDocxBuilderSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.docx")
	require.NoError(t, NewDocxBuilder().Heading("Title", 12).Table(nil, true).Save(path))

	doc, err := extract.OpenDocument(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Title"}, doc.Paragraphs)
	assert.Empty(t, doc.Tables)
}
