package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lgpsreport/internal/errors"
)

func testRegistry() *Registry {
	return NewRegistry(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func TestDOCXParagraphsThenTables(t *testing.T) {
	dir := t.TempDir()
	body := wordParagraph("LGPS Compiled Financial Report") +
		wordTable([][]string{
			{"Fund Name", "Market", "Metric", "Value"},
			{"UK Equity-Fund", "2023", "Base Value", "1,000"},
		}) +
		wordParagraph("  ") +
		wordParagraph("Trailing note")
	path := writeDOCX(t, dir, "compiled.docx", body)

	lines, err := DOCXExtractor{}.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"LGPS Compiled Financial Report",
		"Trailing note",
		"Fund Name", "Market", "Metric", "Value",
		"UK Equity-Fund", "2023", "Base Value", "1,000",
	}, lines)
}

func TestOpenDocumentTables(t *testing.T) {
	dir := t.TempDir()
	path := writeDOCX(t, dir, "a.docx",
		wordTable([][]string{{"only", "three", "cols"}})+
			wordTable([][]string{{"Base Value", "100"}, {"Shares", "5"}}))

	doc, err := OpenDocument(path)
	require.NoError(t, err)
	require.Len(t, doc.Tables, 2)
	assert.Equal(t, 3, doc.Tables[0].Width())
	assert.Equal(t, Table{{"Base Value", "100"}, {"Shares", "5"}}, doc.Tables[1])
}

func TestDOCXParagraphTextOrder(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want string
	}{
		{
			name: "tab between text in one run",
			xml:  `<w:p><w:r><w:t>Base</w:t><w:tab/><w:t>Value</w:t></w:r></w:p>`,
			want: "Base\tValue",
		},
		{
			name: "hyperlink inside a fund name",
			xml:  `<w:p><w:r><w:t xml:space="preserve">UK </w:t></w:r><w:hyperlink><w:r><w:t>Equity</w:t></w:r></w:hyperlink><w:r><w:t>-Fund</w:t></w:r></w:p>`,
			want: "UK Equity-Fund",
		},
		{
			name: "line and page breaks",
			xml:  `<w:p><w:r><w:t>Fund</w:t><w:br/><w:t>A</w:t><w:br w:type="page"/><w:t>-Report</w:t></w:r></w:p>`,
			want: "Fund\nA-Report",
		},
		{
			name: "paragraph and run properties ignored",
			xml:  `<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t>Shares</w:t></w:r></w:p>`,
			want: "Shares",
		},
		{
			name: "non-breaking hyphen",
			xml:  `<w:p><w:r><w:t>Bonds</w:t><w:noBreakHyphen/><w:t>Report</w:t></w:r></w:p>`,
			want: "Bonds-Report",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := OpenDocument(writeDOCX(t, t.TempDir(), "p.docx", tt.xml))
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, doc.Paragraphs)
		})
	}
}

func TestDOCXMergedCells(t *testing.T) {
	body := `<w:tbl>` +
		`<w:tr><w:tc><w:tcPr><w:gridSpan w:val="2"/></w:tcPr>` + wordParagraph("Fund A-Report") + `</w:tc>` +
		`<w:tc><w:tcPr><w:vMerge w:val="restart"/></w:tcPr>` + wordParagraph("2023") + `</w:tc></w:tr>` +
		`<w:tr><w:tc>` + wordParagraph("Base Value") + `</w:tc><w:tc>` + wordParagraph("100") + `</w:tc>` +
		`<w:tc><w:tcPr><w:vMerge/></w:tcPr><w:p/></w:tc></w:tr>` +
		`</w:tbl>`

	doc, err := OpenDocument(writeDOCX(t, t.TempDir(), "merged.docx", body))
	require.NoError(t, err)
	require.Len(t, doc.Tables, 1)
	assert.Equal(t, Table{
		{"Fund A-Report", "Fund A-Report", "2023"},
		{"Base Value", "100", "2023"},
	}, doc.Tables[0])
}

func TestOpenDocumentErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := OpenDocument(writeText(t, dir, "fake.docx", "not a zip"))
	assert.ErrorContains(t, err, "open docx")

	// a zip without the main part
	path := writeXLSX(t, dir, "book.xlsx", map[string][][]any{"S": {{"a"}}}, []string{"S"})
	_, err = OpenDocument(path)
	assert.ErrorIs(t, err, ErrNoDocumentPart)
}

func TestXLSXExtractor(t *testing.T) {
	dir := t.TempDir()
	path := writeXLSX(t, dir, "report.xlsx", map[string][][]any{
		"Summary": {
			{"LGPS Compiled Financial Report"},
			{"Fund Name", "Market", "Metric", "Value"},
			{"UK Equity-Fund", 2023, "Base Value", "1,000"},
		},
		"Notes": {{"", "note"}},
	}, []string{"Summary", "Notes"})

	lines, err := XLSXExtractor{}.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"LGPS Compiled Financial Report",
		"Fund Name", "Market", "Metric", "Value",
		"UK Equity-Fund", "2023", "Base Value", "1,000",
		"note",
	}, lines)
}

func TestHTMLLines(t *testing.T) {
	html := `<html><head><style>p{}</style><script>var x = 1;</script></head><body>
<h1>LGPS Compiled Financial Report</h1>
<table>
  <tr><th>Fund Name</th><th>Value</th></tr>
  <tr><td><p>Global-Fund</p></td><td> 2,000 </td></tr>
</table>
<ul><li>Footnote</li></ul>
</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"LGPS Compiled Financial Report",
		"Fund Name", "Value",
		"Global-Fund", "2,000",
		"Footnote",
	}, HTMLLines(doc))
}

func TestTextExtractor(t *testing.T) {
	path := writeText(t, t.TempDir(), "lines.txt", "Fund A-Report\r\n2023\n\n  Base Value  \n100\n")

	lines, err := TextExtractor{}.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fund A-Report", "2023", "Base Value", "100"}, lines)
}

func TestRegistryDispatch(t *testing.T) {
	dir := t.TempDir()
	r := testRegistry()

	tests := []struct {
		name    string
		path    string
		want    []string
		wantErr error
	}{
		{
			name: "extension",
			path: writeText(t, dir, "a.TXT", "x\ny"),
			want: []string{"x", "y"},
		},
		{
			name: "sniffed html",
			path: writeText(t, dir, "download", "<!DOCTYPE html><html><body><p>Fund B-Report</p><p>2024</p></body></html>"),
			want: []string{"Fund B-Report", "2024"},
		},
		{
			name: "sniffed text",
			path: writeText(t, dir, "notes.dat", "Fund C-Report\n2022\n"),
			want: []string{"Fund C-Report", "2022"},
		},
		{
			name:    "unsupported binary",
			path:    writeText(t, dir, "image.bin", "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"),
			wantErr: ErrUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := r.Extract(context.Background(), tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeExtraction))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, lines)
		})
	}
}

func TestRegistryRegisterOverrides(t *testing.T) {
	r := testRegistry()
	r.Register(ExtractorFunc(func(context.Context, string) ([]string, error) {
		return []string{"custom"}, nil
	}), []string{".txt"}, "")

	path := writeText(t, t.TempDir(), "a.txt", "ignored")
	lines, err := r.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"custom"}, lines)
	assert.True(t, r.Supports("B.DOCX"))
	assert.False(t, r.Supports("b.pdf"))
	assert.Contains(t, r.Extensions(), ".html")
}

func TestRegistryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testRegistry().Extract(ctx, "whatever.txt")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractAll(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeText(t, dir, "1.txt", "one"),
		writeText(t, dir, "2.txt", "two"),
		dir + string(os.PathSeparator) + "missing.txt",
		writeText(t, dir, "4.txt", "four"),
	}

	results, err := testRegistry().ExtractAll(context.Background(), paths, 2)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, []string{"one"}, results[0].Lines)
	assert.Equal(t, []string{"two"}, results[1].Lines)
	assert.Error(t, results[2].Err)
	assert.True(t, errors.Is(results[2].Err, os.ErrNotExist))
	assert.Equal(t, []string{"four"}, results[3].Lines)
	for i, res := range results {
		assert.Equal(t, paths[i], res.Path)
	}
}
