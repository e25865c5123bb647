package services

import (
	"fmt"
	"path"
	"strings"

	"github.com/AyanAhmedKhan/scholar/models"
)

// ValidationResult is the outcome of checking a student's vault against a
// scholarship's document requirements.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Failures []string `json:"failures,omitempty"`
}

// ValidateRequirements checks the student's active vault documents against
// every requirement and reports all failures, not just the first. Requirements
// must carry their DocumentFormat; docs are matched on format id. Optional
// requirements with no matching document pass silently.
func ValidateRequirements(docs []models.VaultDocument, reqs []models.ScholarshipRequirement) ValidationResult {
	byFormat := make(map[int]*models.VaultDocument, len(docs))
	for i := range docs {
		if docs[i].DocumentFormatID != nil {
			byFormat[*docs[i].DocumentFormatID] = &docs[i]
		}
	}

	var failures []string
	for _, req := range reqs {
		name := req.DocumentFormat.Name
		if name == "" {
			name = fmt.Sprintf("document format %d", req.DocumentFormatID)
		}

		doc, ok := byFormat[req.DocumentFormatID]
		if !ok {
			if req.IsMandatory {
				failures = append(failures, fmt.Sprintf("Missing required document: %s", name))
			}
			continue
		}

		allowed := req.AllowedTypeList()
		actual := documentType(doc)
		if !typeAllowed(actual, allowed) {
			failures = append(failures, fmt.Sprintf("%s: Invalid file type: %s, Allowed: %s",
				name, actual, strings.Join(allowed, ", ")))
		}

		// A nil page count means the PDF could not be parsed at upload time;
		// the ceiling is not enforced on an unknown count.
		if req.MaxPages != nil && doc.PageCount != nil && *doc.PageCount > *req.MaxPages {
			failures = append(failures, fmt.Sprintf("%s: Too many pages: %d, Max: %d",
				name, *doc.PageCount, *req.MaxPages))
		}
	}

	return ValidationResult{IsValid: len(failures) == 0, Failures: failures}
}

// documentType derives the short type token ("pdf", "jpg", "png") for a vault
// document, preferring the recorded MIME type over the file extension.
func documentType(doc *models.VaultDocument) string {
	switch strings.ToLower(doc.MimeType) {
	case "application/pdf":
		return "pdf"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(doc.FilePath)), ".")
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}

// typeAllowed matches case-insensitively and treats jpg and jpeg as the same
// type on both sides of the comparison.
func typeAllowed(actual string, allowed []string) bool {
	norm := func(t string) string {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "jpeg" {
			return "jpg"
		}
		return t
	}
	actual = norm(actual)
	for _, t := range allowed {
		if norm(t) == actual {
			return true
		}
	}
	return false
}
