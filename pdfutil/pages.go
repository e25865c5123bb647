// Package pdfutil wraps the PDF parsing needed at upload time.
package pdfutil

import (
	"bytes"

	pdf "github.com/ledongthuc/pdf"
)

// PageCount parses data as a PDF and returns its page count. A nil result is
// the explicit "unknown" sentinel: the bytes could not be parsed, so no count
// is recorded rather than assuming one page.
func PageCount(data []byte) *int {
	reader := bytes.NewReader(data)
	doc, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return nil
	}
	pages := doc.NumPage()
	if pages <= 0 {
		return nil
	}
	return &pages
}
