package pdfutil

import (
	"bytes"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

func pdfWithPages(t *testing.T, pages int) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Arial", "", 12)
	for i := 0; i < pages; i++ {
		doc.AddPage()
		doc.Cell(40, 10, "page")
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("generating fixture pdf: %v", err)
	}
	return buf.Bytes()
}

func TestPageCount(t *testing.T) {
	for _, pages := range []int{1, 2, 5} {
		got := PageCount(pdfWithPages(t, pages))
		if got == nil {
			t.Fatalf("PageCount returned nil for %d-page pdf", pages)
		}
		if *got != pages {
			t.Fatalf("PageCount = %d, want %d", *got, pages)
		}
	}
}

func TestPageCountUnknownForGarbage(t *testing.T) {
	if got := PageCount([]byte("not a pdf at all")); got != nil {
		t.Fatalf("PageCount = %d, want nil sentinel", *got)
	}
	if got := PageCount(nil); got != nil {
		t.Fatalf("PageCount(nil) = %d, want nil sentinel", *got)
	}
}
