package pdfmerge

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/AyanAhmedKhan/scholar/pdfutil"
)

func writePDF(t *testing.T, dir, name string, pages int) string {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Arial", "", 12)
	for i := 0; i < pages; i++ {
		doc.AddPage()
		doc.Cell(40, 10, "fixture")
	}
	full := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(full), os.ModePerm); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := doc.OutputFileAndClose(full); err != nil {
		t.Fatalf("writing fixture pdf: %v", err)
	}
	return full
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 60, 40))
	for x := 0; x < 60; x++ {
		for y := 0; y < 40; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	full := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(full), os.ModePerm); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	out, err := os.Create(full)
	if err != nil {
		t.Fatalf("creating fixture png: %v", err)
	}
	defer out.Close()
	if err := png.Encode(out, img); err != nil {
		t.Fatalf("encoding fixture png: %v", err)
	}
	return full
}

func TestMergeCombinesPDFsAndImages(t *testing.T) {
	media := t.TempDir()
	writePDF(t, media, "students/1/app/income.pdf", 2)
	writePDF(t, media, "students/1/app/marks.pdf", 1)
	writePNG(t, media, "students/1/app/photo.png")

	m := NewMerger(media)
	data, report, err := m.Merge([]string{
		"/students/1/app/income.pdf",
		"/students/1/app/marks.pdf",
		"/students/1/app/photo.png",
	})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if len(report.Merged) != 3 || len(report.Skipped) != 0 {
		t.Fatalf("report = %+v", report)
	}
	if len(data) == 0 || string(data[:5]) != "%PDF-" {
		t.Fatalf("output does not look like a PDF (%d bytes)", len(data))
	}

	// 2 + 1 pages from the PDFs plus one page for the converted image.
	pages := pdfutil.PageCount(data)
	if pages == nil || *pages != 4 {
		t.Fatalf("merged page count = %v, want 4", pages)
	}
}

func TestMergeSkipsMissingFiles(t *testing.T) {
	media := t.TempDir()
	writePDF(t, media, "students/1/app/income.pdf", 1)
	writePDF(t, media, "students/1/app/marks.pdf", 1)

	m := NewMerger(media)
	data, report, err := m.Merge([]string{
		"/students/1/app/income.pdf",
		"/students/1/app/ghost.pdf",
		"/students/1/app/marks.pdf",
	})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if len(report.Merged) != 2 {
		t.Fatalf("merged = %v", report.Merged)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Path != "/students/1/app/ghost.pdf" {
		t.Fatalf("skipped = %+v", report.Skipped)
	}
	if len(data) == 0 {
		t.Fatal("expected merged output")
	}
}

func TestMergeAllMissing(t *testing.T) {
	m := NewMerger(t.TempDir())

	_, report, err := m.Merge([]string{"/a.pdf", "/b.pdf", "/c.pdf"})
	if !errors.Is(err, ErrNoDocumentsMerged) {
		t.Fatalf("got %v, want ErrNoDocumentsMerged", err)
	}
	if len(report.Skipped) != 3 {
		t.Fatalf("skipped = %+v", report.Skipped)
	}
}

func TestMergeSkipsUnsupportedTypes(t *testing.T) {
	media := t.TempDir()
	writePDF(t, media, "doc.pdf", 1)
	if err := os.WriteFile(filepath.Join(media, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("writing txt fixture: %v", err)
	}

	m := NewMerger(media)
	_, report, err := m.Merge([]string{"/doc.pdf", "/notes.txt"})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Reason != "unsupported file type" {
		t.Fatalf("skipped = %+v", report.Skipped)
	}
}

func TestMergeToleratesMediaPrefixedPaths(t *testing.T) {
	media := t.TempDir()
	writePDF(t, media, "students/2/app/doc.pdf", 1)

	m := NewMerger(media)
	// Stored with the media root already in the path; must not be joined twice.
	data, _, err := m.Merge([]string{filepath.ToSlash(filepath.Join(media, "students/2/app/doc.pdf"))})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected merged output")
	}
}
