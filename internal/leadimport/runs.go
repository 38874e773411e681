package leadimport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RunStatus tracks the lifecycle of a background import run.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ErrRunNotFound is returned for unknown or expired run ids.
var ErrRunNotFound = errors.New("import run not found")

// Run is the stored record of a background import: its state while the worker
// processes the file, and the outcome (or batch error) afterwards.
type Run struct {
	ID         string         `json:"id"`
	Status     RunStatus      `json:"status"`
	ImporterID int64          `json:"importer_id"`
	Outcome    *ImportOutcome `json:"outcome,omitempty"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
}

// RunStore keeps run records in Redis with a TTL so completed outcomes stay
// pollable for a while without growing forever.
type RunStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRunStore(client *redis.Client, ttl time.Duration) *RunStore {
	return &RunStore{client: client, ttl: ttl}
}

func runKey(id string) string {
	return "leadimport:run:" + id
}

func (s *RunStore) Save(ctx context.Context, run Run) error {
	raw, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("runstore: marshal: %w", err)
	}
	if err := s.client.Set(ctx, runKey(run.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("runstore: set: %w", err)
	}
	return nil
}

func (s *RunStore) Get(ctx context.Context, id string) (*Run, error) {
	raw, err := s.client.Get(ctx, runKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("runstore: get: %w", err)
	}
	var run Run
	if err := json.Unmarshal(raw, &run); err != nil {
		return nil, fmt.Errorf("runstore: unmarshal: %w", err)
	}
	return &run, nil
}
