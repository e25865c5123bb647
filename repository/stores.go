// Package repository implements the service store interfaces on GORM/MySQL.
package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/AyanAhmedKhan/scholar/models"
	"github.com/AyanAhmedKhan/scholar/services"
)

// Store implements every persistence interface the services declare.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// notFound translates GORM's sentinel so no service ever imports gorm.
func notFound(err error, what string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %v: %w", what, id, services.ErrNotFound)
	}
	return err
}

func (s *Store) GetUser(userID int) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Role").First(&user, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err, "user", userID)
	}
	return &user, nil
}

func (s *Store) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Role").
		Where("email = ? AND delete_at IS NULL", email).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) UpdateUserPassword(userID int, hash string) error {
	return s.db.Model(&models.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"password": hash, "update_at": time.Now()}).Error
}

func (s *Store) FindProfileByUser(userID int) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	err := s.db.First(&profile, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Store) UpdateProfile(profile *models.StudentProfile) error {
	now := time.Now()
	profile.UpdateAt = &now
	return s.db.Save(profile).Error
}

func (s *Store) GetScholarship(scholarshipID int) (*models.Scholarship, error) {
	var sch models.Scholarship
	err := s.db.First(&sch, "scholarship_id = ? AND delete_at IS NULL", scholarshipID).Error
	if err != nil {
		return nil, notFound(err, "scholarship", scholarshipID)
	}
	return &sch, nil
}

func (s *Store) Requirements(scholarshipID int) ([]models.ScholarshipRequirement, error) {
	var reqs []models.ScholarshipRequirement
	err := s.db.Preload("DocumentFormat").
		Where("scholarship_id = ?", scholarshipID).
		Order("display_order ASC, requirement_id ASC").
		Find(&reqs).Error
	return reqs, err
}

func (s *Store) GetFormat(formatID int) (*models.DocumentFormat, error) {
	var format models.DocumentFormat
	if err := s.db.First(&format, "document_format_id = ?", formatID).Error; err != nil {
		return nil, notFound(err, "document format", formatID)
	}
	return &format, nil
}

func (s *Store) ActiveFormats() ([]models.DocumentFormat, error) {
	var formats []models.DocumentFormat
	err := s.db.Where("is_active = ?", true).Order("order_index ASC, document_format_id ASC").Find(&formats).Error
	return formats, err
}

func (s *Store) CreateFormat(format *models.DocumentFormat) error {
	now := time.Now()
	format.CreateAt = &now
	format.UpdateAt = &now
	return s.db.Create(format).Error
}

func (s *Store) UpdateFormat(format *models.DocumentFormat) error {
	now := time.Now()
	format.UpdateAt = &now
	return s.db.Save(format).Error
}

func (s *Store) ActiveDocuments(studentID int) ([]models.VaultDocument, error) {
	var docs []models.VaultDocument
	err := s.db.Preload("DocumentFormat").
		Where("student_id = ? AND is_active = ?", studentID, true).
		Order("uploaded_at DESC").
		Find(&docs).Error
	return docs, err
}

func (s *Store) ActiveInSlot(studentID int, formatID *int, documentType string) ([]models.VaultDocument, error) {
	var docs []models.VaultDocument
	query := s.db.Where("student_id = ? AND is_active = ?", studentID, true)
	if formatID != nil {
		query = query.Where("document_format_id = ?", *formatID)
	} else {
		query = query.Where("document_format_id IS NULL AND document_type = ?", documentType)
	}
	err := query.Find(&docs).Error
	return docs, err
}

func (s *Store) CreateDocument(doc *models.VaultDocument) error {
	return s.db.Create(doc).Error
}

func (s *Store) DeactivateDocuments(ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.Model(&models.VaultDocument{}).
		Where("vault_document_id IN ?", ids).
		Update("is_active", false).Error
}

func (s *Store) GetApplication(applicationID int) (*models.Application, error) {
	var app models.Application
	err := s.db.Preload("Scholarship").First(&app, "application_id = ?", applicationID).Error
	if err != nil {
		return nil, notFound(err, "application", applicationID)
	}
	return &app, nil
}

func (s *Store) ApplicationsByStudent(studentID int) ([]models.Application, error) {
	var apps []models.Application
	err := s.db.Preload("Scholarship").
		Where("student_id = ?", studentID).
		Order("application_id DESC").
		Find(&apps).Error
	return apps, err
}

func (s *Store) FindPending(studentID, scholarshipID int) (*models.Application, error) {
	var app models.Application
	err := s.db.
		Where("student_id = ? AND scholarship_id = ? AND status <> ?", studentID, scholarshipID, models.StatusRejected).
		Order("application_id DESC").
		First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *Store) FindLatestApproved(studentID, scholarshipID int) (*models.Application, error) {
	var app models.Application
	err := s.db.
		Where("student_id = ? AND scholarship_id = ? AND status = ?", studentID, scholarshipID, models.StatusApproved).
		Order("application_id DESC").
		First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *Store) CreateApplication(app *models.Application) error {
	return s.db.Create(app).Error
}

func (s *Store) UpdateApplication(app *models.Application) error {
	return s.db.Save(app).Error
}

func (s *Store) DeleteApplication(applicationID int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("application_id = ?", applicationID).
			Delete(&models.ApplicationDocument{}).Error; err != nil {
			return err
		}
		return tx.Where("application_id = ?", applicationID).
			Delete(&models.Application{}).Error
	})
}

func (s *Store) Documents(applicationID int) ([]models.ApplicationDocument, error) {
	var docs []models.ApplicationDocument
	err := s.db.Preload("DocumentFormat").
		Joins("JOIN document_formats ON document_formats.document_format_id = application_documents.document_format_id").
		Where("application_documents.application_id = ?", applicationID).
		Order("document_formats.order_index ASC, application_documents.application_document_id ASC").
		Find(&docs).Error
	return docs, err
}

func (s *Store) FindDocumentInSlot(applicationID, formatID int) (*models.ApplicationDocument, error) {
	var doc models.ApplicationDocument
	err := s.db.
		Where("application_id = ? AND document_format_id = ?", applicationID, formatID).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Store) CreateDocumentLink(doc *models.ApplicationDocument) error {
	return s.db.Create(doc).Error
}

func (s *Store) UpdateDocumentLink(doc *models.ApplicationDocument) error {
	return s.db.Save(doc).Error
}

func (s *Store) CreateJob(job *models.RenderJob) error {
	return s.db.Create(job).Error
}

func (s *Store) GetJob(jobID string) (*models.RenderJob, error) {
	var job models.RenderJob
	if err := s.db.First(&job, "job_id = ?", jobID).Error; err != nil {
		return nil, notFound(err, "render job", jobID)
	}
	return &job, nil
}

func (s *Store) MarkProcessing(jobID string) error {
	return s.setJobStatus(jobID, models.RenderProcessing, map[string]any{})
}

func (s *Store) MarkCompleted(jobID, outputPath string) error {
	return s.setJobStatus(jobID, models.RenderCompleted, map[string]any{"output_path": outputPath, "error_message": nil})
}

func (s *Store) MarkFailed(jobID, message string) error {
	return s.setJobStatus(jobID, models.RenderFailed, map[string]any{"error_message": message})
}

func (s *Store) setJobStatus(jobID string, status models.RenderStatus, extra map[string]any) error {
	updates := map[string]any{"status": status, "update_at": time.Now()}
	for k, v := range extra {
		updates[k] = v
	}
	return s.db.Model(&models.RenderJob{}).Where("job_id = ?", jobID).Updates(updates).Error
}

// Record writes an audit row. Failures are logged and swallowed so auditing
// never breaks the action it describes.
func (s *Store) Record(userID *int, action, targetType, targetID string, details map[string]any) {
	var raw json.RawMessage
	if len(details) > 0 {
		if data, err := json.Marshal(details); err == nil {
			raw = data
		}
	}
	now := time.Now()
	entry := models.AuditLog{
		UserID:   userID,
		Action:   action,
		Details:  raw,
		CreateAt: &now,
	}
	if targetType != "" {
		entry.TargetType = &targetType
	}
	if targetID != "" {
		entry.TargetID = &targetID
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("audit %s: %v", action, err)
	}
}
