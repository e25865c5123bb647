package services

import (
	"github.com/AyanAhmedKhan/scholar/models"
)

// Narrow persistence interfaces. Services declare exactly the queries they
// run; the repository package implements them on GORM and tests swap in
// in-memory fakes. Get* methods return an error wrapping ErrNotFound for a
// missing row; Find* methods return (nil, nil) so absence is not an error.

type UserStore interface {
	GetUser(userID int) (*models.User, error)
}

type ProfileStore interface {
	// FindProfileByUser returns the student profile for a user, or nil when
	// the student has not completed onboarding yet.
	FindProfileByUser(userID int) (*models.StudentProfile, error)
	UpdateProfile(profile *models.StudentProfile) error
}

type ScholarshipStore interface {
	GetScholarship(scholarshipID int) (*models.Scholarship, error)
	// Requirements returns the scholarship's requirements ordered by display
	// order, with DocumentFormat populated.
	Requirements(scholarshipID int) ([]models.ScholarshipRequirement, error)
}

type FormatStore interface {
	GetFormat(formatID int) (*models.DocumentFormat, error)
	ActiveFormats() ([]models.DocumentFormat, error)
	CreateFormat(format *models.DocumentFormat) error
	UpdateFormat(format *models.DocumentFormat) error
}

type VaultStore interface {
	// ActiveDocuments returns every active vault row for a student, with
	// DocumentFormat populated where a format is assigned.
	ActiveDocuments(studentID int) ([]models.VaultDocument, error)
	// ActiveInSlot returns the active rows for one (student, slot), where the
	// slot is either a document format or a legacy free-text type.
	ActiveInSlot(studentID int, formatID *int, documentType string) ([]models.VaultDocument, error)
	CreateDocument(doc *models.VaultDocument) error
	DeactivateDocuments(ids []int) error
}

type ApplicationStore interface {
	GetApplication(applicationID int) (*models.Application, error)
	// ApplicationsByStudent returns all of a student's applications, newest
	// first, with Scholarship populated.
	ApplicationsByStudent(studentID int) ([]models.Application, error)
	// FindPending returns the student's non-rejected application for a
	// scholarship, if any.
	FindPending(studentID, scholarshipID int) (*models.Application, error)
	// FindLatestApproved returns the most recent approved application for a
	// (student, scholarship), if any.
	FindLatestApproved(studentID, scholarshipID int) (*models.Application, error)
	CreateApplication(app *models.Application) error
	UpdateApplication(app *models.Application) error
	// DeleteApplication removes the application and its document links in one
	// transaction. Files on disk are the caller's problem.
	DeleteApplication(applicationID int) error

	// Documents returns the snapshot rows for an application ordered by the
	// linked format's order index, with DocumentFormat populated.
	Documents(applicationID int) ([]models.ApplicationDocument, error)
	// FindDocumentInSlot returns the snapshot row for (application, format),
	// if any.
	FindDocumentInSlot(applicationID, formatID int) (*models.ApplicationDocument, error)
	CreateDocumentLink(doc *models.ApplicationDocument) error
	UpdateDocumentLink(doc *models.ApplicationDocument) error
}

type RenderStore interface {
	CreateJob(job *models.RenderJob) error
	GetJob(jobID string) (*models.RenderJob, error)
	MarkProcessing(jobID string) error
	MarkCompleted(jobID, outputPath string) error
	MarkFailed(jobID, message string) error
}

// AuditSink records state-changing actions. Implementations must swallow
// their own failures: auditing never rolls back the action it describes.
type AuditSink interface {
	Record(userID *int, action, targetType, targetID string, details map[string]any)
}

// Notifier delivers fire-and-forget user notifications (email today).
type Notifier interface {
	Notify(recipient, subject, body string)
}
