package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	mimeDOCX         = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxMainDocument = "word/document.xml"
)

// ErrNoDocumentPart is returned for zip files without a Word main part.
var ErrNoDocumentPart = errors.New("docx: word/document.xml not found")

// Document is the text content of a Word file: body paragraphs and tables,
// each in document order.
type Document struct {
	Paragraphs []string
	Tables     []Table
}

// Table is a grid of cell texts, row-major.
type Table [][]string

// Width returns the number of cells in the widest row.
func (t Table) Width() int {
	w := 0
	for _, row := range t {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

type docxDocument struct {
	Body docxBody `xml:"body"`
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"p"`
	Tables     []docxTable     `xml:"tbl"`
}

// docxParagraph holds the text of a w:p with its runs, tabs and breaks in
// document order, hyperlinked runs included.
type docxParagraph struct {
	text string
}

func (p *docxParagraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				var text string
				if err := d.DecodeElement(&text, &t); err != nil {
					return err
				}
				b.WriteString(text)
			case "tab", "ptab":
				b.WriteByte('\t')
				err = d.Skip()
			case "br", "cr":
				if breakType(t) == "" || breakType(t) == "textWrapping" {
					b.WriteByte('\n')
				}
				err = d.Skip()
			case "noBreakHyphen":
				b.WriteByte('-')
				err = d.Skip()
			case "pPr", "rPr", "delText", "instrText", "drawing", "pict", "object", "AlternateContent":
				err = d.Skip()
			}
			if err != nil {
				return err
			}
		case xml.EndElement:
			if t.Name == start.Name {
				p.text = b.String()
				return nil
			}
		}
	}
}

func breakType(el xml.StartElement) string {
	for _, attr := range el.Attr {
		if attr.Name.Local == "type" {
			return attr.Value
		}
	}
	return ""
}

type docxTable struct {
	Rows []docxTableRow `xml:"tr"`
}

type docxTableRow struct {
	Cells []docxTableCell `xml:"tc"`
}

type docxTableCell struct {
	Props      docxCellProps   `xml:"tcPr"`
	Paragraphs []docxParagraph `xml:"p"`
}

type docxCellProps struct {
	GridSpan *docxVal `xml:"gridSpan"`
	VMerge   *docxVal `xml:"vMerge"`
}

type docxVal struct {
	Val string `xml:"val,attr"`
}

// span is the number of grid columns the cell covers.
func (c docxTableCell) span() int {
	if c.Props.GridSpan == nil {
		return 1
	}
	n, err := strconv.Atoi(c.Props.GridSpan.Val)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// continued reports a cell merged into the one above it.
func (c docxTableCell) continued() bool {
	return c.Props.VMerge != nil && c.Props.VMerge.Val != "restart"
}

// text joins the cell's paragraphs with newlines.
func (c docxTableCell) text() string {
	parts := make([]string, len(c.Paragraphs))
	for i, p := range c.Paragraphs {
		parts[i] = p.text
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// gridRows lays the table out on its column grid: a horizontally merged
// cell is repeated for every column it spans and a vertically merged one
// repeats the text of the cell above.
func (t docxTable) gridRows() Table {
	table := make(Table, 0, len(t.Rows))
	var prev []string
	for _, row := range t.Rows {
		var cells []string
		for _, c := range row.Cells {
			text := c.text()
			if c.continued() && len(cells) < len(prev) {
				text = prev[len(cells)]
			}
			for range c.span() {
				cells = append(cells, text)
			}
		}
		table = append(table, cells)
		prev = cells
	}
	return table
}

// OpenDocument reads the paragraphs and tables of the Word file at path.
func OpenDocument(path string) (*Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()
	return readDocument(&zr.Reader)
}

// ReadDocument parses a Word file held in r.
func ReadDocument(r io.ReaderAt, size int64) (*Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	return readDocument(zr)
}

func readDocument(zr *zip.Reader) (*Document, error) {
	for _, f := range zr.File {
		if f.Name != docxMainDocument {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", docxMainDocument, err)
		}
		defer rc.Close()

		var raw docxDocument
		if err := xml.NewDecoder(rc).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode %s: %w", docxMainDocument, err)
		}
		return convertDocument(raw), nil
	}
	return nil, ErrNoDocumentPart
}

func convertDocument(raw docxDocument) *Document {
	doc := &Document{}
	for _, p := range raw.Body.Paragraphs {
		doc.Paragraphs = append(doc.Paragraphs, strings.TrimSpace(p.text))
	}
	for _, t := range raw.Body.Tables {
		doc.Tables = append(doc.Tables, t.gridRows())
	}
	return doc
}

// Lines flattens the document: paragraphs, then every table cell row by
// row. Empty entries are dropped.
func (d *Document) Lines() []string {
	raw := make([]string, 0, len(d.Paragraphs))
	raw = append(raw, d.Paragraphs...)
	for _, t := range d.Tables {
		for _, row := range t {
			raw = append(raw, row...)
		}
	}
	return CleanLines(raw)
}

// DOCXExtractor reads Word .docx files.
type DOCXExtractor struct{}

// Extract implements Extractor.
func (DOCXExtractor) Extract(ctx context.Context, path string) ([]string, error) {
	doc, err := OpenDocument(path)
	if err != nil {
		return nil, err
	}
	return doc.Lines(), nil
}
