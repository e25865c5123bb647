package services

import (
	"fmt"
	"log"
	"time"

	"github.com/AyanAhmedKhan/scholar/models"
	"github.com/AyanAhmedKhan/scholar/storage"
)

// LinkOutcome reports what happened to one document slot while snapshotting
// the vault into an application.
type LinkOutcome struct {
	DocumentFormatID int    `json:"document_format_id"`
	FormatName       string `json:"format_name"`
	Status           string `json:"status"`
	Reason           string `json:"reason,omitempty"`
}

const (
	linkLinked  = "linked"
	linkSkipped = "skipped"
)

// ApplicationService drives the application lifecycle: fresh applications,
// resubmission after a docs_required verdict, renewals and scholarship
// switches. Every flow snapshots vault documents by copy, never by reference,
// so later vault uploads cannot mutate a submitted application.
type ApplicationService struct {
	apps         ApplicationStore
	scholarships ScholarshipStore
	vault        VaultStore
	profiles     ProfileStore
	users        UserStore

	paths storage.PathResolver
	files *storage.Materializer

	audit    AuditSink
	notifier Notifier

	switchLimit int
}

func NewApplicationService(
	apps ApplicationStore,
	scholarships ScholarshipStore,
	vault VaultStore,
	profiles ProfileStore,
	users UserStore,
	files *storage.Materializer,
	audit AuditSink,
	notifier Notifier,
	switchLimit int,
) *ApplicationService {
	if switchLimit <= 0 {
		switchLimit = 1
	}
	return &ApplicationService{
		apps:         apps,
		scholarships: scholarships,
		vault:        vault,
		profiles:     profiles,
		users:        users,
		files:        files,
		audit:        audit,
		notifier:     notifier,
		switchLimit:  switchLimit,
	}
}

// Apply creates a submitted application for a scholarship, after checking the
// one-pending-application rule, mutual exclusion and the document
// requirements. On success every requirement with a matching active vault
// document is snapshotted; optional requirements without a document are
// reported as skipped, not failed.
func (s *ApplicationService) Apply(studentID, scholarshipID int, remarks *string) (*models.Application, []LinkOutcome, error) {
	sch, err := s.scholarships.GetScholarship(scholarshipID)
	if err != nil {
		return nil, nil, err
	}

	existing, err := s.apps.FindPending(studentID, scholarshipID)
	if err != nil {
		return nil, nil, fmt.Errorf("check existing application: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrAlreadyApplied
	}

	if err := s.checkMutualExclusion(studentID, sch); err != nil {
		return nil, nil, err
	}

	reqs, err := s.scholarships.Requirements(scholarshipID)
	if err != nil {
		return nil, nil, fmt.Errorf("load requirements: %w", err)
	}
	docs, err := s.vault.ActiveDocuments(studentID)
	if err != nil {
		return nil, nil, fmt.Errorf("load vault documents: %w", err)
	}

	if result := ValidateRequirements(docs, reqs); !result.IsValid {
		return nil, nil, &ValidationError{Reasons: result.Failures}
	}

	now := time.Now()
	app := &models.Application{
		StudentID:     studentID,
		ScholarshipID: scholarshipID,
		Status:        models.StatusSubmitted,
		Remarks:       remarks,
		CreateAt:      &now,
		UpdateAt:      &now,
	}
	if err := s.apps.CreateApplication(app); err != nil {
		return nil, nil, fmt.Errorf("create application: %w", err)
	}

	outcomes := s.linkVaultDocuments(app, reqs, docs)

	s.recordAndNotify(studentID, "SUBMIT_APPLICATION", app,
		fmt.Sprintf("Application submitted for %s", sch.Name),
		fmt.Sprintf("Your application for %s has been submitted and is awaiting verification.", sch.Name))
	return app, outcomes, nil
}

// Resubmit moves a docs_required (or draft) application back to submitted,
// refreshing every snapshot slot from the current vault. Each refreshed slot
// is reset to unverified; the superseded snapshot file is removed only after
// the new link row is persisted.
func (s *ApplicationService) Resubmit(studentID, applicationID int, remarks *string) (*models.Application, []LinkOutcome, error) {
	app, err := s.apps.GetApplication(applicationID)
	if err != nil {
		return nil, nil, err
	}
	if app.StudentID != studentID {
		return nil, nil, ErrForbidden
	}
	if app.Status != models.StatusDocsRequired && app.Status != models.StatusDraft {
		return nil, nil, fmt.Errorf("%w: current status is %s", ErrInvalidStateTransition, app.Status)
	}

	reqs, err := s.scholarships.Requirements(app.ScholarshipID)
	if err != nil {
		return nil, nil, fmt.Errorf("load requirements: %w", err)
	}
	docs, err := s.vault.ActiveDocuments(studentID)
	if err != nil {
		return nil, nil, fmt.Errorf("load vault documents: %w", err)
	}

	outcomes := s.linkVaultDocuments(app, reqs, docs)

	now := time.Now()
	app.Status = models.StatusSubmitted
	app.Remarks = remarks
	app.UpdateAt = &now
	if err := s.apps.UpdateApplication(app); err != nil {
		return nil, nil, fmt.Errorf("update application: %w", err)
	}

	s.recordAndNotify(studentID, "UPDATE_APPLICATION", app,
		"Application resubmitted",
		"Your corrected documents have been received and the application is back under verification.")
	return app, outcomes, nil
}

// Renew creates a renewal application for a renewable scholarship the student
// has previously been approved for. Renewal-required slots are filled from the
// current vault; every other slot carries over from the latest approved
// application's snapshot. asDraft skips the mandatory-renewal-document check
// so students can park a partial renewal.
func (s *ApplicationService) Renew(studentID, scholarshipID int, remarks *string, asDraft bool) (*models.Application, []LinkOutcome, error) {
	sch, err := s.scholarships.GetScholarship(scholarshipID)
	if err != nil {
		return nil, nil, err
	}
	if !sch.IsRenewable {
		return nil, nil, ErrNotRenewable
	}

	prior, err := s.apps.FindLatestApproved(studentID, scholarshipID)
	if err != nil {
		return nil, nil, fmt.Errorf("check prior approval: %w", err)
	}
	if prior == nil {
		return nil, nil, ErrNoPriorApproval
	}

	pending, err := s.apps.FindPending(studentID, scholarshipID)
	if err != nil {
		return nil, nil, fmt.Errorf("check pending renewal: %w", err)
	}
	if pending != nil && pending.ApplicationID != prior.ApplicationID && pending.Status != models.StatusApproved {
		return nil, nil, ErrRenewalPending
	}

	reqs, err := s.scholarships.Requirements(scholarshipID)
	if err != nil {
		return nil, nil, fmt.Errorf("load requirements: %w", err)
	}
	docs, err := s.vault.ActiveDocuments(studentID)
	if err != nil {
		return nil, nil, fmt.Errorf("load vault documents: %w", err)
	}

	renewalReqs := make([]models.ScholarshipRequirement, 0, len(reqs))
	renewalFormats := make(map[int]bool)
	for _, req := range reqs {
		if req.IsRenewalRequired {
			renewalReqs = append(renewalReqs, req)
			renewalFormats[req.DocumentFormatID] = true
		}
	}

	if !asDraft {
		if result := ValidateRequirements(docs, mandatoryOnly(renewalReqs)); !result.IsValid {
			return nil, nil, &ValidationError{Reasons: result.Failures}
		}
	}

	status := models.StatusSubmitted
	if asDraft {
		status = models.StatusDraft
	}
	now := time.Now()
	app := &models.Application{
		StudentID:     studentID,
		ScholarshipID: scholarshipID,
		Status:        status,
		Remarks:       remarks,
		CreateAt:      &now,
		UpdateAt:      &now,
	}
	if err := s.apps.CreateApplication(app); err != nil {
		return nil, nil, fmt.Errorf("create renewal application: %w", err)
	}

	// Fresh documents for renewal-required slots.
	outcomes := s.linkVaultDocuments(app, renewalReqs, docs)

	// Everything else carries over from the approved snapshot.
	priorDocs, err := s.apps.Documents(prior.ApplicationID)
	if err != nil {
		return nil, nil, fmt.Errorf("load prior snapshot: %w", err)
	}
	destDir, err := s.snapshotDir(app)
	if err != nil {
		return nil, nil, err
	}
	for _, priorDoc := range priorDocs {
		if renewalFormats[priorDoc.DocumentFormatID] {
			continue
		}
		outcome := LinkOutcome{DocumentFormatID: priorDoc.DocumentFormatID, FormatName: priorDoc.DocumentFormat.Name}
		stored, err := s.files.Copy(priorDoc.FilePath, destDir)
		if err != nil {
			outcome.Status = linkSkipped
			outcome.Reason = "previous snapshot file missing"
			log.Printf("renewal carry-over %s: %v", priorDoc.FilePath, err)
			outcomes = append(outcomes, outcome)
			continue
		}
		link := &models.ApplicationDocument{
			ApplicationID:    app.ApplicationID,
			DocumentFormatID: priorDoc.DocumentFormatID,
			FilePath:         stored,
			IsVerified:       false,
			CreateAt:         &now,
			UpdateAt:         &now,
		}
		if err := s.apps.CreateDocumentLink(link); err != nil {
			s.files.Delete(stored)
			outcome.Status = linkSkipped
			outcome.Reason = "could not record link"
			outcomes = append(outcomes, outcome)
			continue
		}
		outcome.Status = linkLinked
		outcomes = append(outcomes, outcome)
	}

	if asDraft {
		s.recordAndNotify(studentID, "SAVE_RENEWAL_DRAFT", app,
			fmt.Sprintf("Renewal draft saved for %s", sch.Name),
			fmt.Sprintf("Your renewal draft for %s has been saved. Submit it once the required documents are in your vault.", sch.Name))
	} else {
		s.recordAndNotify(studentID, "SUBMIT_RENEWAL", app,
			fmt.Sprintf("Renewal submitted for %s", sch.Name),
			fmt.Sprintf("Your renewal application for %s has been received.", sch.Name))
	}
	return app, outcomes, nil
}

// SwitchScholarship frees the student to apply for targetScholarshipID by
// deleting the application that conflicts with it under mutual exclusion.
// The per-student switch counter is spent only when a conflict was actually
// removed.
func (s *ApplicationService) SwitchScholarship(studentID, targetScholarshipID int) (int, error) {
	profile, err := s.profiles.FindProfileByUser(studentID)
	if err != nil {
		return 0, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return 0, fmt.Errorf("student profile: %w", ErrNotFound)
	}
	if profile.ScholarshipSwitchCount >= s.switchLimit {
		return 0, fmt.Errorf("%w: used %d of %d", ErrSwitchLimitExceeded, profile.ScholarshipSwitchCount, s.switchLimit)
	}

	target, err := s.scholarships.GetScholarship(targetScholarshipID)
	if err != nil {
		return 0, err
	}

	conflict, err := s.findConflict(studentID, target)
	if err != nil {
		return 0, err
	}
	if conflict == nil {
		return 0, ErrNoConflictFound
	}

	links, err := s.apps.Documents(conflict.ApplicationID)
	if err != nil {
		return 0, fmt.Errorf("load snapshot links: %w", err)
	}
	if err := s.apps.DeleteApplication(conflict.ApplicationID); err != nil {
		return 0, fmt.Errorf("delete conflicting application: %w", err)
	}
	// Snapshot files are removed after the rows; leftover files from a crash
	// here are orphans, never dangling rows.
	for _, link := range links {
		s.files.Delete(link.FilePath)
	}

	profile.ScholarshipSwitchCount++
	if err := s.profiles.UpdateProfile(profile); err != nil {
		return 0, fmt.Errorf("update switch counter: %w", err)
	}

	if s.audit != nil {
		s.audit.Record(&studentID, "SWITCH_SCHOLARSHIP", "application", fmt.Sprintf("%d", conflict.ApplicationID),
			map[string]any{"target_scholarship_id": targetScholarshipID, "deleted_scholarship_id": conflict.ScholarshipID})
	}
	return conflict.ApplicationID, nil
}

// Eligibility evaluates a scholarship's profile rules for a student.
func (s *ApplicationService) Eligibility(studentID, scholarshipID int) (EligibilityResult, error) {
	sch, err := s.scholarships.GetScholarship(scholarshipID)
	if err != nil {
		return EligibilityResult{}, err
	}
	profile, err := s.profiles.FindProfileByUser(studentID)
	if err != nil {
		return EligibilityResult{}, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return EligibilityResult{
			Eligible: false,
			Reasons:  []string{"Complete your student profile before checking eligibility"},
		}, nil
	}
	return CheckEligibility(profile, sch), nil
}

// linkVaultDocuments snapshots the vault into the application, one slot per
// requirement. Slots with an existing link are refreshed in place and reset
// to unverified; the replaced snapshot file is deleted only after the new row
// is persisted. A requirement without a matching vault document is skipped.
func (s *ApplicationService) linkVaultDocuments(app *models.Application, reqs []models.ScholarshipRequirement, docs []models.VaultDocument) []LinkOutcome {
	byFormat := make(map[int]*models.VaultDocument, len(docs))
	for i := range docs {
		if docs[i].DocumentFormatID != nil {
			byFormat[*docs[i].DocumentFormatID] = &docs[i]
		}
	}

	destDir, err := s.snapshotDir(app)
	if err != nil {
		log.Printf("resolve snapshot dir for application %d: %v", app.ApplicationID, err)
		return nil
	}

	outcomes := make([]LinkOutcome, 0, len(reqs))
	now := time.Now()
	for _, req := range reqs {
		outcome := LinkOutcome{DocumentFormatID: req.DocumentFormatID, FormatName: req.DocumentFormat.Name}

		doc, ok := byFormat[req.DocumentFormatID]
		if !ok {
			outcome.Status = linkSkipped
			outcome.Reason = "no document in vault"
			outcomes = append(outcomes, outcome)
			continue
		}

		stored, err := s.files.Copy(doc.FilePath, destDir)
		if err != nil {
			outcome.Status = linkSkipped
			outcome.Reason = "vault file missing on disk"
			log.Printf("snapshot %s for application %d: %v", doc.FilePath, app.ApplicationID, err)
			outcomes = append(outcomes, outcome)
			continue
		}

		existing, err := s.apps.FindDocumentInSlot(app.ApplicationID, req.DocumentFormatID)
		if err != nil {
			s.files.Delete(stored)
			outcome.Status = linkSkipped
			outcome.Reason = "could not read existing link"
			outcomes = append(outcomes, outcome)
			continue
		}

		if existing != nil {
			oldPath := existing.FilePath
			existing.FilePath = stored
			existing.IsVerified = false
			existing.Remarks = nil
			existing.UpdateAt = &now
			if err := s.apps.UpdateDocumentLink(existing); err != nil {
				s.files.Delete(stored)
				outcome.Status = linkSkipped
				outcome.Reason = "could not update link"
				outcomes = append(outcomes, outcome)
				continue
			}
			if oldPath != "" && oldPath != stored {
				s.files.Delete(oldPath)
			}
		} else {
			link := &models.ApplicationDocument{
				ApplicationID:    app.ApplicationID,
				DocumentFormatID: req.DocumentFormatID,
				FilePath:         stored,
				IsVerified:       false,
				CreateAt:         &now,
				UpdateAt:         &now,
			}
			if err := s.apps.CreateDocumentLink(link); err != nil {
				s.files.Delete(stored)
				outcome.Status = linkSkipped
				outcome.Reason = "could not record link"
				outcomes = append(outcomes, outcome)
				continue
			}
		}

		outcome.Status = linkLinked
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (s *ApplicationService) snapshotDir(app *models.Application) (string, error) {
	enrollment := ""
	if profile, err := s.profiles.FindProfileByUser(app.StudentID); err == nil && profile != nil {
		enrollment = profile.EnrollmentNo
	}
	year := 0
	if app.CreateAt != nil {
		year = app.CreateAt.Year()
	}
	return s.paths.Application(app.StudentID, enrollment, year, app.ScholarshipID, app.ApplicationID)
}

// checkMutualExclusion fails when the student holds a non-rejected
// application for any scholarship the target declares exclusive.
func (s *ApplicationService) checkMutualExclusion(studentID int, target *models.Scholarship) error {
	exclusive := target.ExclusiveIDs()
	if len(exclusive) == 0 {
		return nil
	}
	conflict, err := s.findConflict(studentID, target)
	if err != nil {
		return err
	}
	if conflict != nil {
		name := conflict.Scholarship.Name
		if name == "" {
			name = fmt.Sprintf("scholarship %d", conflict.ScholarshipID)
		}
		return fmt.Errorf("%w: conflicts with your application for %s", ErrMutualExclusion, name)
	}
	return nil
}

func (s *ApplicationService) findConflict(studentID int, target *models.Scholarship) (*models.Application, error) {
	exclusive := make(map[int]bool)
	for _, id := range target.ExclusiveIDs() {
		exclusive[id] = true
	}
	if len(exclusive) == 0 {
		return nil, nil
	}

	apps, err := s.apps.ApplicationsByStudent(studentID)
	if err != nil {
		return nil, fmt.Errorf("load applications: %w", err)
	}
	for i := range apps {
		if apps[i].Status.Pending() && exclusive[apps[i].ScholarshipID] {
			return &apps[i], nil
		}
	}
	return nil, nil
}

func mandatoryOnly(reqs []models.ScholarshipRequirement) []models.ScholarshipRequirement {
	out := make([]models.ScholarshipRequirement, 0, len(reqs))
	for _, req := range reqs {
		if req.IsMandatory {
			out = append(out, req)
		}
	}
	return out
}

// recordAndNotify audits the action and emails the student. Both are
// best-effort and never fail the flow that triggered them.
func (s *ApplicationService) recordAndNotify(studentID int, action string, app *models.Application, subject, body string) {
	if s.audit != nil {
		s.audit.Record(&studentID, action, "application", fmt.Sprintf("%d", app.ApplicationID),
			map[string]any{"scholarship_id": app.ScholarshipID, "status": string(app.Status)})
	}
	if s.notifier == nil || s.users == nil {
		return
	}
	user, err := s.users.GetUser(studentID)
	if err != nil || user.Email == "" {
		return
	}
	s.notifier.Notify(user.Email, subject, body)
}
