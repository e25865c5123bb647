package models

import (
	"time"
)

// StudentProfile holds the academic and financial profile a student fills in
// during onboarding. Scholarship eligibility rules read from it; the
// scholarship-switch counter lives here because the allowance is per student,
// not per application.
type StudentProfile struct {
	ProfileID              int        `gorm:"primaryKey;column:profile_id" json:"profile_id"`
	UserID                 int        `gorm:"column:user_id;unique" json:"user_id"`
	EnrollmentNo           string     `gorm:"column:enrollment_no;unique" json:"enrollment_no"`
	Department             string     `gorm:"column:department" json:"department"`
	Category               string     `gorm:"column:category" json:"category"`
	CurrentYearOrSemester  string     `gorm:"column:current_year_or_semester" json:"current_year_or_semester"`
	AnnualFamilyIncome     *float64   `gorm:"column:annual_family_income" json:"annual_family_income,omitempty"`
	PreviousExamPercentage *float64   `gorm:"column:previous_exam_percentage" json:"previous_exam_percentage,omitempty"`
	ParentsGovtJob         bool       `gorm:"column:parents_govt_job" json:"parents_govt_job"`
	ScholarshipSwitchCount int        `gorm:"column:scholarship_switch_count" json:"scholarship_switch_count"`
	CreateAt               *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt               *time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// VaultDocument is one physical upload in a student's vault. For a given
// (student, document format) slot at most one row is active; uploading a new
// version deactivates the previous ones and their files are removed once the
// superseding row is committed.
type VaultDocument struct {
	VaultDocumentID  int        `gorm:"primaryKey;column:vault_document_id" json:"vault_document_id"`
	StudentID        int        `gorm:"column:student_id" json:"student_id"`
	DocumentType     string     `gorm:"column:document_type" json:"document_type"`
	DocumentFormatID *int       `gorm:"column:document_format_id" json:"document_format_id,omitempty"`
	FilePath         string     `gorm:"column:file_path" json:"file_path"`
	MimeType         string     `gorm:"column:mime_type" json:"mime_type"`
	FileSize         int64      `gorm:"column:file_size" json:"file_size"`
	PageCount        *int       `gorm:"column:page_count" json:"page_count,omitempty"`
	IsActive         bool       `gorm:"column:is_active" json:"is_active"`
	UploadedAt       *time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`

	// Relations
	DocumentFormat *DocumentFormat `gorm:"foreignKey:DocumentFormatID" json:"document_format,omitempty"`
}

// TableName overrides
func (StudentProfile) TableName() string {
	return "student_profiles"
}

func (VaultDocument) TableName() string {
	return "vault_documents"
}
