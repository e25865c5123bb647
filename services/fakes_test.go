package services

import (
	"fmt"
	"time"

	"github.com/AyanAhmedKhan/scholar/models"
)

// memStore is an in-memory implementation of every store interface, so the
// service tests exercise real orchestration against a predictable backend.
type memStore struct {
	users        map[int]*models.User
	profiles     map[int]*models.StudentProfile
	scholarships map[int]*models.Scholarship
	requirements map[int][]models.ScholarshipRequirement
	formats      map[int]*models.DocumentFormat

	vaultDocs []*models.VaultDocument
	apps      []*models.Application
	appDocs   []*models.ApplicationDocument
	jobs      map[string]*models.RenderJob

	nextID int
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[int]*models.User),
		profiles:     make(map[int]*models.StudentProfile),
		scholarships: make(map[int]*models.Scholarship),
		requirements: make(map[int][]models.ScholarshipRequirement),
		formats:      make(map[int]*models.DocumentFormat),
		jobs:         make(map[string]*models.RenderJob),
		nextID:       1000,
	}
}

func (m *memStore) id() int {
	m.nextID++
	return m.nextID
}

func (m *memStore) GetUser(userID int) (*models.User, error) {
	if u, ok := m.users[userID]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
}

func (m *memStore) FindProfileByUser(userID int) (*models.StudentProfile, error) {
	return m.profiles[userID], nil
}

func (m *memStore) UpdateProfile(profile *models.StudentProfile) error {
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *memStore) GetScholarship(scholarshipID int) (*models.Scholarship, error) {
	if s, ok := m.scholarships[scholarshipID]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("scholarship %d: %w", scholarshipID, ErrNotFound)
}

func (m *memStore) Requirements(scholarshipID int) ([]models.ScholarshipRequirement, error) {
	reqs := m.requirements[scholarshipID]
	for i := range reqs {
		if f, ok := m.formats[reqs[i].DocumentFormatID]; ok {
			reqs[i].DocumentFormat = *f
		}
	}
	return reqs, nil
}

func (m *memStore) GetFormat(formatID int) (*models.DocumentFormat, error) {
	if f, ok := m.formats[formatID]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("document format %d: %w", formatID, ErrNotFound)
}

func (m *memStore) ActiveFormats() ([]models.DocumentFormat, error) {
	var out []models.DocumentFormat
	for _, f := range m.formats {
		if f.IsActive {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *memStore) CreateFormat(format *models.DocumentFormat) error {
	if format.DocumentFormatID == 0 {
		format.DocumentFormatID = m.id()
	}
	m.formats[format.DocumentFormatID] = format
	return nil
}

func (m *memStore) UpdateFormat(format *models.DocumentFormat) error {
	m.formats[format.DocumentFormatID] = format
	return nil
}

func (m *memStore) ActiveDocuments(studentID int) ([]models.VaultDocument, error) {
	var out []models.VaultDocument
	for _, d := range m.vaultDocs {
		if d.StudentID == studentID && d.IsActive {
			doc := *d
			if doc.DocumentFormatID != nil {
				if f, ok := m.formats[*doc.DocumentFormatID]; ok {
					doc.DocumentFormat = f
				}
			}
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *memStore) ActiveInSlot(studentID int, formatID *int, documentType string) ([]models.VaultDocument, error) {
	var out []models.VaultDocument
	for _, d := range m.vaultDocs {
		if d.StudentID != studentID || !d.IsActive {
			continue
		}
		if formatID != nil {
			if d.DocumentFormatID != nil && *d.DocumentFormatID == *formatID {
				out = append(out, *d)
			}
		} else if d.DocumentFormatID == nil && d.DocumentType == documentType {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memStore) CreateDocument(doc *models.VaultDocument) error {
	doc.VaultDocumentID = m.id()
	m.vaultDocs = append(m.vaultDocs, doc)
	return nil
}

func (m *memStore) DeactivateDocuments(ids []int) error {
	for _, d := range m.vaultDocs {
		for _, id := range ids {
			if d.VaultDocumentID == id {
				d.IsActive = false
			}
		}
	}
	return nil
}

func (m *memStore) GetApplication(applicationID int) (*models.Application, error) {
	for _, a := range m.apps {
		if a.ApplicationID == applicationID {
			return a, nil
		}
	}
	return nil, fmt.Errorf("application %d: %w", applicationID, ErrNotFound)
}

func (m *memStore) ApplicationsByStudent(studentID int) ([]models.Application, error) {
	var out []models.Application
	for i := len(m.apps) - 1; i >= 0; i-- {
		if m.apps[i].StudentID == studentID {
			app := *m.apps[i]
			if s, ok := m.scholarships[app.ScholarshipID]; ok {
				app.Scholarship = *s
			}
			out = append(out, app)
		}
	}
	return out, nil
}

func (m *memStore) FindPending(studentID, scholarshipID int) (*models.Application, error) {
	for i := len(m.apps) - 1; i >= 0; i-- {
		a := m.apps[i]
		if a.StudentID == studentID && a.ScholarshipID == scholarshipID && a.Status.Pending() {
			return a, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindLatestApproved(studentID, scholarshipID int) (*models.Application, error) {
	for i := len(m.apps) - 1; i >= 0; i-- {
		a := m.apps[i]
		if a.StudentID == studentID && a.ScholarshipID == scholarshipID && a.Status == models.StatusApproved {
			return a, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateApplication(app *models.Application) error {
	app.ApplicationID = m.id()
	m.apps = append(m.apps, app)
	return nil
}

func (m *memStore) UpdateApplication(app *models.Application) error {
	for i, a := range m.apps {
		if a.ApplicationID == app.ApplicationID {
			m.apps[i] = app
			return nil
		}
	}
	return fmt.Errorf("application %d: %w", app.ApplicationID, ErrNotFound)
}

func (m *memStore) DeleteApplication(applicationID int) error {
	apps := m.apps[:0]
	for _, a := range m.apps {
		if a.ApplicationID != applicationID {
			apps = append(apps, a)
		}
	}
	m.apps = apps

	docs := m.appDocs[:0]
	for _, d := range m.appDocs {
		if d.ApplicationID != applicationID {
			docs = append(docs, d)
		}
	}
	m.appDocs = docs
	return nil
}

func (m *memStore) Documents(applicationID int) ([]models.ApplicationDocument, error) {
	var out []models.ApplicationDocument
	for _, d := range m.appDocs {
		if d.ApplicationID == applicationID {
			doc := *d
			if f, ok := m.formats[doc.DocumentFormatID]; ok {
				doc.DocumentFormat = *f
			}
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *memStore) FindDocumentInSlot(applicationID, formatID int) (*models.ApplicationDocument, error) {
	for _, d := range m.appDocs {
		if d.ApplicationID == applicationID && d.DocumentFormatID == formatID {
			return d, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateDocumentLink(doc *models.ApplicationDocument) error {
	doc.ApplicationDocumentID = m.id()
	m.appDocs = append(m.appDocs, doc)
	return nil
}

func (m *memStore) UpdateDocumentLink(doc *models.ApplicationDocument) error {
	for i, d := range m.appDocs {
		if d.ApplicationDocumentID == doc.ApplicationDocumentID {
			m.appDocs[i] = doc
			return nil
		}
	}
	return fmt.Errorf("application document %d: %w", doc.ApplicationDocumentID, ErrNotFound)
}

func (m *memStore) CreateJob(job *models.RenderJob) error {
	m.jobs[job.JobID] = job
	return nil
}

func (m *memStore) GetJob(jobID string) (*models.RenderJob, error) {
	if j, ok := m.jobs[jobID]; ok {
		return j, nil
	}
	return nil, fmt.Errorf("render job %s: %w", jobID, ErrNotFound)
}

func (m *memStore) MarkProcessing(jobID string) error {
	return m.setJobStatus(jobID, models.RenderProcessing, nil, nil)
}

func (m *memStore) MarkCompleted(jobID, outputPath string) error {
	return m.setJobStatus(jobID, models.RenderCompleted, &outputPath, nil)
}

func (m *memStore) MarkFailed(jobID, message string) error {
	return m.setJobStatus(jobID, models.RenderFailed, nil, &message)
}

func (m *memStore) setJobStatus(jobID string, status models.RenderStatus, output, message *string) error {
	j, ok := m.jobs[jobID]
	if !ok {
		return fmt.Errorf("render job %s: %w", jobID, ErrNotFound)
	}
	now := time.Now()
	j.Status = status
	j.OutputPath = output
	j.ErrorMessage = message
	j.UpdateAt = &now
	return nil
}

type recordedAudit struct {
	actions []string
}

func (a *recordedAudit) Record(userID *int, action, targetType, targetID string, details map[string]any) {
	a.actions = append(a.actions, action)
}

type recordedMail struct {
	sent []string
}

func (n *recordedMail) Notify(recipient, subject, body string) {
	n.sent = append(n.sent, recipient+": "+subject)
}
