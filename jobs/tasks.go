package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeLeadImport is the task type for background lead CSV imports.
	TaskTypeLeadImport = "leads:import"
)

// LeadImportPayload describes a staged lead file ready for import.
type LeadImportPayload struct {
	RunID      string  `json:"run_id"`
	FilePath   string  `json:"file_path"`
	ImporterID int64   `json:"importer_id"`
	HandlerIDs []int64 `json:"handler_ids"`
}

// NewLeadImportTask constructs an Asynq task for a staged lead file.
func NewLeadImportTask(payload LeadImportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeLeadImport, data), nil
}
