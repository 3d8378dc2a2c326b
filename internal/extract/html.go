package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/PuerkitoBio/goquery"
)

// htmlTextSelector picks the block elements whose text becomes a line.
// Table cells are listed so fund tables flatten cell by cell.
const htmlTextSelector = "h1, h2, h3, h4, h5, h6, p, li, caption, th, td"

// HTMLExtractor reads saved HTML reports.
type HTMLExtractor struct{}

// Extract implements Extractor.
func (HTMLExtractor) Extract(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return HTMLLines(doc), nil
}

// HTMLLines returns the text of the document's block elements in document
// order. Elements nested in an already selected element (a paragraph inside
// a table cell, say) are not repeated.
func HTMLLines(doc *goquery.Document) []string {
	doc.Find("script, style, noscript").Remove()

	var raw []string
	doc.Find(htmlTextSelector).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(htmlTextSelector).Length() > 0 {
			return
		}
		raw = append(raw, s.Text())
	})
	return CleanLines(raw)
}
