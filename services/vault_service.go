package services

import (
	"bytes"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/AyanAhmedKhan/scholar/models"
	"github.com/AyanAhmedKhan/scholar/pdfutil"
	"github.com/AyanAhmedKhan/scholar/storage"
)

// allowedMimeTypes is the vault's upload allow-list.
var allowedMimeTypes = map[string]string{
	"application/pdf": "pdf",
	"image/jpeg":      "jpg",
	"image/jpg":       "jpg",
	"image/png":       "png",
}

// VaultService owns the student document vault: versioned uploads with one
// active document per (student, slot), validated before any byte is written.
type VaultService struct {
	vault   VaultStore
	formats FormatStore
	paths   storage.PathResolver
	files   *storage.Materializer
	audit   AuditSink

	defaultMaxSizeMB int
	slots            keyedMutex
}

func NewVaultService(vault VaultStore, formats FormatStore, files *storage.Materializer, audit AuditSink, defaultMaxSizeMB int) *VaultService {
	if defaultMaxSizeMB <= 0 {
		defaultMaxSizeMB = 5
	}
	return &VaultService{
		vault:            vault,
		formats:          formats,
		files:            files,
		audit:            audit,
		defaultMaxSizeMB: defaultMaxSizeMB,
	}
}

// UploadInput is one vault upload. Exactly one of DocumentFormatID or
// DocumentType identifies the slot; DocumentType alone is the legacy free-text
// form. MaxPages is an optional caller-imposed ceiling checked before writing.
type UploadInput struct {
	StudentID    int
	EnrollmentNo string

	DocumentFormatID *int
	DocumentType     string

	Filename string
	MimeType string
	Data     []byte
	MaxPages *int
}

// Upload validates and stores a document, then supersedes any previously
// active document in the same slot. Rejections (type, size, pages) happen
// before any filesystem write. Old files are removed only after the new row
// is committed, so a crash mid-upload never leaves the slot empty.
func (s *VaultService) Upload(in UploadInput) (*models.VaultDocument, error) {
	shortType, ok := allowedMimeTypes[in.MimeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFileType, in.MimeType)
	}

	docType := in.DocumentType
	maxSizeMB := s.defaultMaxSizeMB
	if in.DocumentFormatID != nil {
		format, err := s.formats.GetFormat(*in.DocumentFormatID)
		if err != nil {
			return nil, fmt.Errorf("resolve document format: %w", err)
		}
		docType = format.Name
		if format.MaxSizeMB > 0 {
			maxSizeMB = format.MaxSizeMB
		}
	}

	// The slot name is sanitized once; the same form is used for locking, the
	// superseded-versions lookup and the stored row.
	slot := storage.SanitizeName(docType)

	if int64(len(in.Data)) > int64(maxSizeMB)<<20 {
		return nil, fmt.Errorf("%w: limit is %d MB", ErrFileTooLarge, maxSizeMB)
	}

	var pageCount *int
	if shortType == "pdf" {
		pageCount = pdfutil.PageCount(in.Data)
	} else {
		one := 1
		pageCount = &one
	}
	if in.MaxPages != nil && pageCount != nil && *pageCount > *in.MaxPages {
		return nil, fmt.Errorf("%w: Too many pages: %d, Max: %d", ErrPageLimitExceeded, *pageCount, *in.MaxPages)
	}

	// Concurrent uploads to the same slot serialize here; uploads to other
	// slots and by other students proceed in parallel.
	unlock := s.slots.lock(slotKey(in.StudentID, in.DocumentFormatID, slot))
	defer unlock()

	previous, err := s.vault.ActiveInSlot(in.StudentID, in.DocumentFormatID, slot)
	if err != nil {
		return nil, fmt.Errorf("load active documents: %w", err)
	}

	name := storage.SanitizeName(stem(in.Filename))
	if name == "" {
		name = "document"
	}
	destDir := s.paths.Vault(in.StudentID, in.EnrollmentNo, docType)
	storedPath, err := s.files.Save(bytes.NewReader(in.Data), destDir, name+"."+shortType)
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	now := time.Now()
	doc := &models.VaultDocument{
		StudentID:        in.StudentID,
		DocumentType:     slot,
		DocumentFormatID: in.DocumentFormatID,
		FilePath:         storedPath,
		MimeType:         in.MimeType,
		FileSize:         int64(len(in.Data)),
		PageCount:        pageCount,
		IsActive:         true,
		UploadedAt:       &now,
	}
	if err := s.vault.CreateDocument(doc); err != nil {
		s.files.Delete(storedPath)
		return nil, fmt.Errorf("record document: %w", err)
	}

	if len(previous) > 0 {
		ids := make([]int, 0, len(previous))
		for _, p := range previous {
			ids = append(ids, p.VaultDocumentID)
		}
		if err := s.vault.DeactivateDocuments(ids); err != nil {
			// The new row is already active; log and leave the old rows for a
			// later sweep rather than failing the upload.
			log.Printf("deactivate superseded vault rows %v: %v", ids, err)
		} else {
			for _, p := range previous {
				s.files.Delete(p.FilePath)
			}
		}
	}

	if s.audit != nil {
		s.audit.Record(&in.StudentID, "UPLOAD_DOCUMENT", "vault_document", fmt.Sprintf("%d", doc.VaultDocumentID),
			map[string]any{"document_type": doc.DocumentType, "file_size": doc.FileSize})
	}
	return doc, nil
}

// MyDocuments lists the student's active vault documents.
func (s *VaultService) MyDocuments(studentID int) ([]models.VaultDocument, error) {
	return s.vault.ActiveDocuments(studentID)
}

func slotKey(studentID int, formatID *int, slot string) string {
	if formatID != nil {
		return fmt.Sprintf("%d:f%d", studentID, *formatID)
	}
	return fmt.Sprintf("%d:t%s", studentID, slot)
}

func stem(filename string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[:i]
		}
		if filename[i] == '/' || filename[i] == '\\' {
			break
		}
	}
	return filename
}

// keyedMutex hands out one mutex per key. Entries are never reclaimed; the
// key space is bounded by (students x formats).
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
