// Package queue defines the background render tasks shared by the API (which
// enqueues) and the worker (which consumes).
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// RenderApplicationTask merges one application's document snapshot into
	// a single PDF.
	RenderApplicationTask = "application:render_pdf"
)

// RenderPayload is serialized into the task so the worker knows which job row
// to drive and which stored files to merge.
type RenderPayload struct {
	JobID         string   `json:"job_id"`
	ApplicationID int      `json:"application_id"`
	Paths         []string `json:"paths"`
}

// Client wraps the asynq producer behind the enqueuer interface the render
// service depends on.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr string) *Client {
	return &Client{client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})}
}

func (c *Client) EnqueueRender(ctx context.Context, jobID string, applicationID int, paths []string) error {
	data, err := json.Marshal(RenderPayload{JobID: jobID, ApplicationID: applicationID, Paths: paths})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(RenderApplicationTask, data)
	if _, err := c.client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("enqueue render task: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
