// Package worker consumes render tasks and drives the render job rows the API
// polls.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/AyanAhmedKhan/scholar/pdfmerge"
	"github.com/AyanAhmedKhan/scholar/queue"
	"github.com/AyanAhmedKhan/scholar/services"
	"github.com/AyanAhmedKhan/scholar/storage"
)

type Processor struct {
	renders services.RenderStore
	merger  *pdfmerge.Merger
	files   *storage.Materializer
}

func NewProcessor(renders services.RenderStore, merger *pdfmerge.Merger, files *storage.Materializer) *Processor {
	return &Processor{renders: renders, merger: merger, files: files}
}

// Handler registers the render job handler.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.RenderApplicationTask, p.handleRender)
	return mux
}

func (p *Processor) handleRender(ctx context.Context, task *asynq.Task) error {
	var payload queue.RenderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	failure := func(err error) error {
		log.Printf("render failed for job %s: %v", payload.JobID, err)
		if markErr := p.renders.MarkFailed(payload.JobID, err.Error()); markErr != nil {
			log.Printf("mark job %s failed: %v", payload.JobID, markErr)
		}
		return err
	}

	if err := p.renders.MarkProcessing(payload.JobID); err != nil {
		return failure(err)
	}

	data, report, err := p.merger.Merge(payload.Paths)
	if err != nil {
		return failure(err)
	}
	for _, skipped := range report.Skipped {
		log.Printf("render job %s: skipped %s (%s)", payload.JobID, skipped.Path, skipped.Reason)
	}

	stored, err := p.files.Save(bytes.NewReader(data),
		fmt.Sprintf("renders/%d", payload.ApplicationID), payload.JobID+".pdf")
	if err != nil {
		return failure(err)
	}
	if err := p.renders.MarkCompleted(payload.JobID, stored); err != nil {
		return failure(err)
	}

	log.Printf("render job %s completed (%d inputs, %d bytes)", payload.JobID, len(report.Merged), len(data))
	return nil
}
