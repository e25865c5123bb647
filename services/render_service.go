package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/AyanAhmedKhan/scholar/models"
	"github.com/AyanAhmedKhan/scholar/pdfmerge"
	"github.com/AyanAhmedKhan/scholar/storage"
)

// RenderEnqueuer hands a render job to the background worker. Implemented by
// the queue package; nil disables the queue entirely.
type RenderEnqueuer interface {
	EnqueueRender(ctx context.Context, jobID string, applicationID int, paths []string) error
}

// RenderService produces the single merged PDF for an application. The merge
// is preferably done by the background worker: the service enqueues a job and
// polls its row with a bounded wait. If the queue is down, enqueueing fails,
// the job errors out or the wait expires, it falls back to merging inline so
// the download endpoint still answers.
type RenderService struct {
	apps    ApplicationStore
	renders RenderStore
	queue   RenderEnqueuer
	merger  *pdfmerge.Merger
	files   *storage.Materializer

	timeout time.Duration
	poll    time.Duration
}

func NewRenderService(apps ApplicationStore, renders RenderStore, queue RenderEnqueuer, merger *pdfmerge.Merger, files *storage.Materializer, timeout time.Duration) *RenderService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RenderService{
		apps:    apps,
		renders: renders,
		queue:   queue,
		merger:  merger,
		files:   files,
		timeout: timeout,
		poll:    500 * time.Millisecond,
	}
}

// ApplicationPDF returns the merged PDF of an application's document
// snapshot. Students may only render their own applications; staff roles may
// render any.
func (s *RenderService) ApplicationPDF(ctx context.Context, userID, roleID, applicationID int) ([]byte, pdfmerge.Report, error) {
	var report pdfmerge.Report

	app, err := s.apps.GetApplication(applicationID)
	if err != nil {
		return nil, report, err
	}
	if roleID == models.RoleStudent && app.StudentID != userID {
		return nil, report, ErrForbidden
	}

	links, err := s.apps.Documents(applicationID)
	if err != nil {
		return nil, report, fmt.Errorf("load snapshot links: %w", err)
	}
	if len(links) == 0 {
		return nil, report, pdfmerge.ErrNoDocumentsMerged
	}
	paths := make([]string, 0, len(links))
	for _, link := range links {
		paths = append(paths, link.FilePath)
	}

	if s.queue != nil && s.renders != nil {
		if data, ok := s.renderViaQueue(ctx, applicationID, paths); ok {
			return data, pdfmerge.Report{Merged: paths}, nil
		}
	}

	data, report, err := s.merger.Merge(paths)
	if err != nil {
		return nil, report, err
	}
	for _, skipped := range report.Skipped {
		log.Printf("render application %d: skipped %s (%s)", applicationID, skipped.Path, skipped.Reason)
	}
	return data, report, nil
}

// renderViaQueue enqueues a job and waits for the worker, returning ok=false
// on any failure so the caller falls back to an inline merge.
func (s *RenderService) renderViaQueue(ctx context.Context, applicationID int, paths []string) ([]byte, bool) {
	now := time.Now()
	job := &models.RenderJob{
		JobID:         uuid.New().String(),
		ApplicationID: applicationID,
		Status:        models.RenderQueued,
		CreateAt:      &now,
		UpdateAt:      &now,
	}
	if err := s.renders.CreateJob(job); err != nil {
		log.Printf("create render job for application %d: %v", applicationID, err)
		return nil, false
	}
	if err := s.queue.EnqueueRender(ctx, job.JobID, applicationID, paths); err != nil {
		log.Printf("enqueue render job %s: %v", job.JobID, err)
		return nil, false
	}

	deadline := time.NewTimer(s.timeout)
	defer deadline.Stop()
	tick := time.NewTicker(s.poll)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, false
		case <-deadline.C:
			log.Printf("render job %s timed out after %s, merging inline", job.JobID, s.timeout)
			return nil, false
		case <-tick.C:
		}

		current, err := s.renders.GetJob(job.JobID)
		if err != nil {
			log.Printf("poll render job %s: %v", job.JobID, err)
			return nil, false
		}
		switch current.Status {
		case models.RenderCompleted:
			if current.OutputPath == nil {
				return nil, false
			}
			data, err := s.files.Read(*current.OutputPath)
			if err != nil {
				log.Printf("read render output %s: %v", *current.OutputPath, err)
				return nil, false
			}
			return data, true
		case models.RenderFailed:
			return nil, false
		}
	}
}
