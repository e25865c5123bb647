package models

import (
	"time"
)

// RenderStatus enumerates the lifecycle of a merged-PDF render job.
type RenderStatus string

const (
	RenderQueued     RenderStatus = "queued"
	RenderProcessing RenderStatus = "processing"
	RenderCompleted  RenderStatus = "completed"
	RenderFailed     RenderStatus = "failed"
)

// RenderJob tracks one background PDF merge. The API creates the row, the
// worker moves it through processing to completed/failed, and the API polls
// it with a bounded wait before falling back to a synchronous merge.
type RenderJob struct {
	JobID         string       `gorm:"primaryKey;column:job_id" json:"job_id"`
	ApplicationID int          `gorm:"column:application_id" json:"application_id"`
	Status        RenderStatus `gorm:"column:status" json:"status"`
	OutputPath    *string      `gorm:"column:output_path" json:"output_path,omitempty"`
	ErrorMessage  *string      `gorm:"column:error_message" json:"error_message,omitempty"`
	CreateAt      *time.Time   `gorm:"column:create_at" json:"create_at"`
	UpdateAt      *time.Time   `gorm:"column:update_at" json:"update_at"`
}

func (RenderJob) TableName() string {
	return "render_jobs"
}
