// Package pdfmerge renders an application's document snapshot into a single
// PDF: PDF inputs are appended as-is, JPEG/PNG inputs are converted to
// one-page PDFs first. Missing or unreadable inputs are skipped and reported
// rather than failing the whole merge.
package pdfmerge

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrNoDocumentsMerged reports a merge in which no input could be used; an
// empty PDF is never produced.
var ErrNoDocumentsMerged = errors.New("no valid documents found to merge")

// SkippedFile explains why one input was left out of the merge.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Report lists what went into the merged output and what was skipped.
type Report struct {
	Merged  []string      `json:"merged"`
	Skipped []SkippedFile `json:"skipped,omitempty"`
}

type Merger struct {
	mediaDir string
}

func NewMerger(mediaDir string) *Merger {
	if mediaDir == "" {
		mediaDir = "media"
	}
	return &Merger{mediaDir: mediaDir}
}

// Merge combines the files behind the stored paths, in order, into one PDF.
// Temporary conversion files are always removed, also on error paths.
func (m *Merger) Merge(paths []string) ([]byte, Report, error) {
	var report Report
	var inputs []string
	var tempFiles []string

	defer func() {
		for _, tmp := range tempFiles {
			os.Remove(tmp)
		}
	}()

	for _, stored := range paths {
		fsPath, ok := m.resolve(stored)
		if !ok {
			report.Skipped = append(report.Skipped, SkippedFile{Path: stored, Reason: "file not found"})
			continue
		}

		switch strings.ToLower(filepath.Ext(fsPath)) {
		case ".pdf":
			if err := api.ValidateFile(fsPath, nil); err != nil {
				report.Skipped = append(report.Skipped, SkippedFile{Path: stored, Reason: "invalid pdf"})
				continue
			}
			inputs = append(inputs, fsPath)
			report.Merged = append(report.Merged, stored)
		case ".jpg", ".jpeg", ".png":
			tmp, err := imageToPDF(fsPath)
			if err != nil {
				report.Skipped = append(report.Skipped, SkippedFile{Path: stored, Reason: fmt.Sprintf("image conversion failed: %v", err)})
				continue
			}
			tempFiles = append(tempFiles, tmp)
			inputs = append(inputs, tmp)
			report.Merged = append(report.Merged, stored)
		default:
			report.Skipped = append(report.Skipped, SkippedFile{Path: stored, Reason: "unsupported file type"})
		}
	}

	if len(inputs) == 0 {
		return nil, report, ErrNoDocumentsMerged
	}

	out, err := os.CreateTemp("", "scholar-merge-*.pdf")
	if err != nil {
		return nil, report, fmt.Errorf("create merge output: %w", err)
	}
	outPath := out.Name()
	out.Close()
	tempFiles = append(tempFiles, outPath)

	if err := api.MergeCreateFile(inputs, outPath, nil); err != nil {
		return nil, report, fmt.Errorf("merge documents: %w", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, report, fmt.Errorf("read merged output: %w", err)
	}
	return data, report, nil
}

// resolve maps a stored path onto the filesystem, tolerating paths that
// already carry the media dir prefix so it is never joined twice.
func (m *Merger) resolve(stored string) (string, bool) {
	if stored == "" {
		return "", false
	}
	clean := strings.TrimLeft(strings.ReplaceAll(stored, "\\", "/"), "/")

	var fsPath string
	root := filepath.ToSlash(filepath.Clean(m.mediaDir))
	if clean == root || strings.HasPrefix(clean, root+"/") {
		fsPath = filepath.FromSlash(clean)
	} else {
		fsPath = filepath.Join(m.mediaDir, filepath.FromSlash(clean))
	}
	if filepath.IsAbs(stored) {
		if info, err := os.Stat(stored); err == nil && !info.IsDir() {
			return filepath.Clean(stored), true
		}
	}

	if info, err := os.Stat(fsPath); err == nil && !info.IsDir() {
		return fsPath, true
	}
	return "", false
}

// imageToPDF converts one JPEG/PNG into a single-page A4 PDF through a
// temporary file. The image is re-encoded as JPEG, which normalizes the
// color space to RGB.
func imageToPDF(imagePath string) (string, error) {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	var jpegBuf bytes.Buffer
	if err := imaging.Encode(&jpegBuf, img, imaging.JPEG); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	doc.RegisterImageOptionsReader("page-image", opts, bytes.NewReader(jpegBuf.Bytes()))
	// Width 190mm leaves the default margins; height 0 keeps the aspect ratio.
	doc.ImageOptions("page-image", 10, 10, 190, 0, false, opts, 0, "")

	tmp, err := os.CreateTemp("", "scholar-img-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp pdf: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := doc.OutputFileAndClose(tmpPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("write temp pdf: %w", err)
	}
	return tmpPath, nil
}
