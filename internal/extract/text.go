package extract

import (
	"bufio"
	"context"
	"os"
)

// TextExtractor reads plain text, one line per entry.
type TextExtractor struct{}

// Extract implements Extractor.
func (TextExtractor) Extract(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var raw []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw = append(raw, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return CleanLines(raw), nil
}
