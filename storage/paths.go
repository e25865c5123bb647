// Package storage owns where files live on disk: deterministic directory
// layout for vault and application-snapshot documents, and the copy/link
// plumbing that moves bytes between them.
package storage

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"
)

// ErrPathConfig reports a resolver call with missing identifying attributes.
var ErrPathConfig = errors.New("scholarship_id and application_id are required for application storage")

// PathResolver computes media-root-relative directories for stored documents.
// It is a pure value: the same inputs always yield the same path and no I/O
// happens here.
type PathResolver struct{}

// Vault returns the directory for a student's vault uploads of one document
// type, e.g. "students/12_0205cs211001/vault/income_certificate".
func (PathResolver) Vault(studentID int, enrollmentNo, documentType string) string {
	docType := SanitizeName(documentType)
	if docType == "" {
		docType = "uncategorized"
	}
	return path.Join("students", studentSegment(studentID, enrollmentNo), "vault", docType)
}

// Application returns the snapshot directory for one application. Year zero
// means the current calendar year; the caller owns any academic-year policy.
func (PathResolver) Application(studentID int, enrollmentNo string, year, scholarshipID, applicationID int) (string, error) {
	if scholarshipID <= 0 || applicationID <= 0 {
		return "", ErrPathConfig
	}
	if year <= 0 {
		year = time.Now().Year()
	}
	return path.Join(
		"students", studentSegment(studentID, enrollmentNo),
		"applications",
		fmt.Sprintf("%d", year),
		fmt.Sprintf("%d", scholarshipID),
		fmt.Sprintf("%d", applicationID),
	), nil
}

func studentSegment(studentID int, enrollmentNo string) string {
	seg := fmt.Sprintf("%d", studentID)
	if enrollment := SanitizeName(enrollmentNo); enrollment != "" {
		seg = seg + "_" + enrollment
	}
	return seg
}

// SanitizeName makes a value folder friendly: strips everything but
// alphanumerics, space, underscore and hyphen, trims, lower-cases and
// replaces spaces with underscores.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(b.String())
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	return strings.ToLower(cleaned)
}
