package extract

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// pdfText joins the trimmed text layer of every page with a single space.
// Pages without text are skipped so page breaks never merge words.
func pdfText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", n+1, err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, " "), nil
}
