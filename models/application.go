package models

import (
	"time"
)

// ApplicationStatus enumerates the application workflow. Staff move
// applications between submitted, under_verification, docs_required,
// approved and rejected; students only drive draft/submitted transitions.
type ApplicationStatus string

const (
	StatusDraft             ApplicationStatus = "draft"
	StatusSubmitted         ApplicationStatus = "submitted"
	StatusUnderVerification ApplicationStatus = "under_verification"
	StatusDocsRequired      ApplicationStatus = "docs_required"
	StatusApproved          ApplicationStatus = "approved"
	StatusRejected          ApplicationStatus = "rejected"
)

// Pending reports whether the application still occupies the student's slot
// for its scholarship (anything not rejected counts).
func (s ApplicationStatus) Pending() bool {
	return s != StatusRejected
}

type Application struct {
	ApplicationID int               `gorm:"primaryKey;column:application_id" json:"application_id"`
	StudentID     int               `gorm:"column:student_id" json:"student_id"`
	ScholarshipID int               `gorm:"column:scholarship_id" json:"scholarship_id"`
	Status        ApplicationStatus `gorm:"column:status" json:"status"`
	Remarks       *string           `gorm:"column:remarks" json:"remarks,omitempty"`
	CreateAt      *time.Time        `gorm:"column:create_at" json:"create_at"`
	UpdateAt      *time.Time        `gorm:"column:update_at" json:"update_at"`

	// Relations
	Scholarship Scholarship `gorm:"foreignKey:ScholarshipID" json:"scholarship,omitempty"`
}

// ApplicationDocument is the per-application snapshot of one vault document.
// Exactly one row exists per (application, document format); resubmission
// updates the row in place and deletes the superseded snapshot file.
type ApplicationDocument struct {
	ApplicationDocumentID int        `gorm:"primaryKey;column:application_document_id" json:"application_document_id"`
	ApplicationID         int        `gorm:"column:application_id" json:"application_id"`
	DocumentFormatID      int        `gorm:"column:document_format_id" json:"document_format_id"`
	FilePath              string     `gorm:"column:file_path" json:"file_path"`
	IsVerified            bool       `gorm:"column:is_verified" json:"is_verified"`
	Remarks               *string    `gorm:"column:remarks" json:"remarks,omitempty"`
	CreateAt              *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt              *time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	DocumentFormat DocumentFormat `gorm:"foreignKey:DocumentFormatID" json:"document_format,omitempty"`
}

// TableName overrides
func (Application) TableName() string {
	return "applications"
}

func (ApplicationDocument) TableName() string {
	return "application_documents"
}
