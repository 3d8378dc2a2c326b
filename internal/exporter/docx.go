package exporter

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

	docxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	docxDocumentOpen = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

	docxDocumentClose = `<w:sectPr/></w:body></w:document>`
)

// DocxBuilder assembles a minimal WordprocessingML document made of
// headings, paragraphs and plain grid tables.
type DocxBuilder struct {
	body bytes.Buffer
}

// NewDocxBuilder returns an empty document.
func NewDocxBuilder() *DocxBuilder {
	return &DocxBuilder{}
}

// Heading appends a heading paragraph. Level is clamped to 1..9.
func (b *DocxBuilder) Heading(text string, level int) *DocxBuilder {
	level = min(max(level, 1), 9)
	fmt.Fprintf(&b.body, `<w:p><w:pPr><w:pStyle w:val="Heading%d"/></w:pPr>`, level)
	b.writeRun(text, true)
	b.body.WriteString(`</w:p>`)
	return b
}

// Paragraph appends body text. Each line of text becomes its own paragraph.
func (b *DocxBuilder) Paragraph(text string) *DocxBuilder {
	b.writeParagraphs(text, false)
	return b
}

// Table appends a grid table. The first row is rendered bold when header is
// set.
func (b *DocxBuilder) Table(rows [][]string, header bool) *DocxBuilder {
	if len(rows) == 0 {
		return b
	}
	b.body.WriteString(`<w:tbl><w:tblPr><w:tblStyle w:val="TableGrid"/><w:tblW w:w="0" w:type="auto"/></w:tblPr>`)
	for i, row := range rows {
		b.body.WriteString(`<w:tr>`)
		for _, cell := range row {
			b.body.WriteString(`<w:tc>`)
			b.writeParagraphs(cell, header && i == 0)
			b.body.WriteString(`</w:tc>`)
		}
		b.body.WriteString(`</w:tr>`)
	}
	b.body.WriteString(`</w:tbl>`)
	return b
}

// writeParagraphs writes one paragraph per line; a cell always needs at
// least one paragraph, so empty text still produces an empty one.
func (b *DocxBuilder) writeParagraphs(text string, bold bool) {
	for _, line := range strings.Split(text, "\n") {
		b.body.WriteString(`<w:p>`)
		b.writeRun(line, bold)
		b.body.WriteString(`</w:p>`)
	}
}

func (b *DocxBuilder) writeRun(text string, bold bool) {
	if text == "" {
		return
	}
	b.body.WriteString(`<w:r>`)
	if bold {
		b.body.WriteString(`<w:rPr><w:b/></w:rPr>`)
	}
	b.body.WriteString(`<w:t xml:space="preserve">`)
	xml.EscapeText(&b.body, []byte(text))
	b.body.WriteString(`</w:t></w:r>`)
}

// WriteTo writes the document as a .docx archive.
func (b *DocxBuilder) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	parts := []struct {
		name string
		data []string
	}{
		{"[Content_Types].xml", []string{docxContentTypes}},
		{"_rels/.rels", []string{docxRootRels}},
		{"word/document.xml", []string{docxDocumentOpen, b.body.String(), docxDocumentClose}},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return cw.n, fmt.Errorf("failed to create %s: %w", p.name, err)
		}
		for _, s := range p.data {
			if _, err := io.WriteString(f, s); err != nil {
				return cw.n, fmt.Errorf("failed to write %s: %w", p.name, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("failed to finish docx archive: %w", err)
	}
	return cw.n, nil
}

// Save writes the document to path, creating parent directories.
func (b *DocxBuilder) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := b.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
