package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/AyanAhmedKhan/scholar/models"
	"github.com/AyanAhmedKhan/scholar/pdfmerge"
	"github.com/AyanAhmedKhan/scholar/pdfutil"
	"github.com/AyanAhmedKhan/scholar/storage"
)

type renderEnv struct {
	store *memStore
	files *storage.Materializer
	svc   *RenderService
	app   *models.Application
}

// newRenderEnv seeds an application whose snapshot holds a 2-page and a
// 1-page PDF.
func newRenderEnv(t *testing.T, queue RenderEnqueuer) *renderEnv {
	t.Helper()
	store := newMemStore()
	files := storage.NewMaterializer(t.TempDir())

	app := &models.Application{StudentID: studentID, ScholarshipID: 1, Status: models.StatusSubmitted}
	if err := store.CreateApplication(app); err != nil {
		t.Fatalf("seeding application: %v", err)
	}
	for i, pages := range []int{2, 1} {
		stored, err := files.Save(bytes.NewReader(pdfBytes(t, pages)),
			fmt.Sprintf("students/%d/applications/2025/1/%d", studentID, app.ApplicationID),
			fmt.Sprintf("doc_%d.pdf", i))
		if err != nil {
			t.Fatalf("seeding snapshot file: %v", err)
		}
		if err := store.CreateDocumentLink(&models.ApplicationDocument{
			ApplicationID: app.ApplicationID, DocumentFormatID: i + 1, FilePath: stored,
		}); err != nil {
			t.Fatalf("seeding snapshot link: %v", err)
		}
	}

	svc := NewRenderService(store, store, queue, pdfmerge.NewMerger(files.MediaDir()), files, 200*time.Millisecond)
	svc.poll = 5 * time.Millisecond
	return &renderEnv{store: store, files: files, svc: svc, app: app}
}

func TestApplicationPDFInlineWithoutQueue(t *testing.T) {
	env := newRenderEnv(t, nil)

	data, report, err := env.svc.ApplicationPDF(context.Background(), studentID, models.RoleStudent, env.app.ApplicationID)
	if err != nil {
		t.Fatalf("ApplicationPDF: %v", err)
	}
	if len(report.Merged) != 2 {
		t.Fatalf("report = %+v", report)
	}
	if pages := pdfutil.PageCount(data); pages == nil || *pages != 3 {
		t.Fatalf("merged page count = %v, want 3", pages)
	}
}

func TestApplicationPDFOwnership(t *testing.T) {
	env := newRenderEnv(t, nil)

	_, _, err := env.svc.ApplicationPDF(context.Background(), 99, models.RoleStudent, env.app.ApplicationID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}

	// Staff may render any application.
	if _, _, err := env.svc.ApplicationPDF(context.Background(), 99, models.RoleGeneralOffice, env.app.ApplicationID); err != nil {
		t.Fatalf("staff render: %v", err)
	}
}

func TestApplicationPDFNoDocuments(t *testing.T) {
	store := newMemStore()
	files := storage.NewMaterializer(t.TempDir())
	app := &models.Application{StudentID: studentID, ScholarshipID: 1, Status: models.StatusSubmitted}
	if err := store.CreateApplication(app); err != nil {
		t.Fatalf("seeding application: %v", err)
	}
	svc := NewRenderService(store, store, nil, pdfmerge.NewMerger(files.MediaDir()), files, time.Second)

	_, _, err := svc.ApplicationPDF(context.Background(), studentID, models.RoleStudent, app.ApplicationID)
	if !errors.Is(err, pdfmerge.ErrNoDocumentsMerged) {
		t.Fatalf("got %v, want ErrNoDocumentsMerged", err)
	}
}

// workerQueue runs the merge the way the background worker would, directly
// inside EnqueueRender.
type workerQueue struct {
	store  *memStore
	files  *storage.Materializer
	merger *pdfmerge.Merger
}

func (q *workerQueue) EnqueueRender(ctx context.Context, jobID string, applicationID int, paths []string) error {
	data, _, err := q.merger.Merge(paths)
	if err != nil {
		return q.store.MarkFailed(jobID, err.Error())
	}
	stored, err := q.files.Save(bytes.NewReader(data), fmt.Sprintf("renders/%d", applicationID), jobID+".pdf")
	if err != nil {
		return q.store.MarkFailed(jobID, err.Error())
	}
	return q.store.MarkCompleted(jobID, stored)
}

func TestApplicationPDFViaQueue(t *testing.T) {
	env := newRenderEnv(t, nil)
	env.svc.queue = &workerQueue{store: env.store, files: env.files, merger: pdfmerge.NewMerger(env.files.MediaDir())}

	data, _, err := env.svc.ApplicationPDF(context.Background(), studentID, models.RoleStudent, env.app.ApplicationID)
	if err != nil {
		t.Fatalf("ApplicationPDF: %v", err)
	}
	if pages := pdfutil.PageCount(data); pages == nil || *pages != 3 {
		t.Fatalf("merged page count = %v, want 3", pages)
	}

	// The worker's output landed in the renders directory.
	found := false
	for _, job := range env.store.jobs {
		if job.Status == models.RenderCompleted && job.OutputPath != nil {
			found = true
		}
	}
	if !found {
		t.Fatal("no completed render job recorded")
	}
}

// failingQueue accepts the job but the "worker" marks it failed.
type failingQueue struct {
	store *memStore
}

func (q *failingQueue) EnqueueRender(ctx context.Context, jobID string, applicationID int, paths []string) error {
	return q.store.MarkFailed(jobID, "worker exploded")
}

func TestApplicationPDFFallsBackWhenJobFails(t *testing.T) {
	env := newRenderEnv(t, nil)
	env.svc.queue = &failingQueue{store: env.store}

	data, _, err := env.svc.ApplicationPDF(context.Background(), studentID, models.RoleStudent, env.app.ApplicationID)
	if err != nil {
		t.Fatalf("ApplicationPDF: %v", err)
	}
	if pages := pdfutil.PageCount(data); pages == nil || *pages != 3 {
		t.Fatalf("merged page count = %v, want 3 from the inline fallback", pages)
	}
}

// stuckQueue accepts the job and never completes it.
type stuckQueue struct{}

func (stuckQueue) EnqueueRender(ctx context.Context, jobID string, applicationID int, paths []string) error {
	return nil
}

func TestApplicationPDFFallsBackOnTimeout(t *testing.T) {
	env := newRenderEnv(t, stuckQueue{})

	start := time.Now()
	data, _, err := env.svc.ApplicationPDF(context.Background(), studentID, models.RoleStudent, env.app.ApplicationID)
	if err != nil {
		t.Fatalf("ApplicationPDF: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Fatalf("returned after %s, before the queue wait expired", elapsed)
	}
	if pages := pdfutil.PageCount(data); pages == nil || *pages != 3 {
		t.Fatalf("merged page count = %v, want 3 from the inline fallback", pages)
	}
}
