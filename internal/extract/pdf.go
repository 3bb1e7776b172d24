package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxPDFPages bounds how many pages are read from one document.
const maxPDFPages = 500

// pdfEngine reads page text from PDF documents.
type pdfEngine struct {
	maxPages int
}

func newPDFEngine() *pdfEngine {
	return &pdfEngine{maxPages: maxPDFPages}
}

// extract returns one line per page, words separated by single spaces.
func (e *pdfEngine) extract(ctx context.Context, data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	pages := min(r.NumPage(), e.maxPages)
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			b.WriteString("\n")
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(strings.Join(strings.Fields(content), " "))
		b.WriteString("\n")
	}
	return b.String(), nil
}
