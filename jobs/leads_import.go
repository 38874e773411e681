package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/meridian-oms/meridian-oms/internal/leadimport"
)

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
	runs   *leadimport.RunStore
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt, runs *leadimport.RunStore) *Client {
	return &Client{client: asynq.NewClient(redisOpts), runs: runs}
}

// EnqueueLeadImport records a queued run and schedules the staged file for
// processing. The returned run id is what the console polls.
func (c *Client) EnqueueLeadImport(ctx context.Context, filePath string, importerID int64, handlerIDs []int64) (string, error) {
	runID := uuid.NewString()

	if err := c.runs.Save(ctx, leadimport.Run{
		ID:         runID,
		Status:     leadimport.RunStatusQueued,
		ImporterID: importerID,
		StartedAt:  time.Now(),
	}); err != nil {
		return "", fmt.Errorf("save queued run: %w", err)
	}

	task, err := NewLeadImportTask(LeadImportPayload{
		RunID:      runID,
		FilePath:   filePath,
		ImporterID: importerID,
		HandlerIDs: handlerIDs,
	})
	if err != nil {
		return "", err
	}
	if _, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault)); err != nil {
		return "", fmt.Errorf("enqueue lead import: %w", err)
	}
	return runID, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

// LeadImporter processes TaskTypeLeadImport tasks on the worker.
type LeadImporter struct {
	service *leadimport.Service
	runs    *leadimport.RunStore
	logger  *slog.Logger
}

func NewLeadImporter(service *leadimport.Service, runs *leadimport.RunStore, logger *slog.Logger) *LeadImporter {
	return &LeadImporter{service: service, runs: runs, logger: logger}
}

// Handle consumes one staged lead file and stores the outcome on the run.
// Malformed payloads and missing files are not retried; everything they could
// produce on retry is the same failure.
func (li *LeadImporter) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LeadImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	run := leadimport.Run{
		ID:         payload.RunID,
		Status:     leadimport.RunStatusRunning,
		ImporterID: payload.ImporterID,
		StartedAt:  time.Now(),
	}
	if err := li.runs.Save(ctx, run); err != nil {
		li.logger.Warn("save running state", slog.Any("error", err))
	}

	file, err := os.Open(payload.FilePath)
	if err != nil {
		li.finish(ctx, run, nil, fmt.Errorf("open staged file: %w", err))
		return asynq.SkipRetry
	}
	defer func() {
		_ = file.Close()
		_ = os.Remove(payload.FilePath)
	}()

	outcome, err := li.service.Import(ctx, leadimport.ImportRequest{
		Reader:     file,
		ImporterID: payload.ImporterID,
		HandlerIDs: payload.HandlerIDs,
	})
	li.finish(ctx, run, outcome, err)
	if err != nil {
		return asynq.SkipRetry
	}
	return nil
}

func (li *LeadImporter) finish(ctx context.Context, run leadimport.Run, outcome *leadimport.ImportOutcome, err error) {
	now := time.Now()
	run.FinishedAt = &now
	if err != nil {
		run.Status = leadimport.RunStatusFailed
		run.Error = err.Error()
	} else {
		run.Status = leadimport.RunStatusCompleted
		run.Outcome = outcome
	}
	if saveErr := li.runs.Save(ctx, run); saveErr != nil {
		li.logger.Error("save finished run", slog.String("run_id", run.ID), slog.Any("error", saveErr))
	}
}
