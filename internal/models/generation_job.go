package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noah-isme/hallticket-api/internal/ticket"
)

// JobStatus captures background job lifecycle states.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "QUEUED"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusFinished   JobStatus = "FINISHED"
	JobStatusFailed     JobStatus = "FAILED"
)

// GenerationJob persisted background ticket generation metadata.
type GenerationJob struct {
	ID           string     `db:"id" json:"id"`
	RosterID     string     `db:"roster_id" json:"roster_id"`
	Params       JobParams  `db:"params" json:"params"`
	Status       JobStatus  `db:"status" json:"status"`
	Progress     int        `db:"progress" json:"progress"`
	PageCount    int        `db:"page_count" json:"page_count"`
	ResultURL    *string    `db:"result_url" json:"result_url,omitempty"`
	CreatedBy    string     `db:"created_by" json:"created_by"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string    `db:"error_message" json:"error_message,omitempty"`
}

// JobParams stores request-scoped generation options persisted as JSONB.
type JobParams struct {
	Mode     ticket.Mode          `json:"mode"`
	Kind     ticket.RosterKind    `json:"kind"`
	Metadata ticket.ExamMetadata  `json:"metadata"`
	Custom   ticket.Customization `json:"customization"`
}

// Value marshals params to JSON for persistence.
func (p JobParams) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal generation job params: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the params struct.
func (p *JobParams) Scan(value interface{}) error {
	if value == nil {
		*p = JobParams{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for JobParams", value)
	}
	if len(data) == 0 {
		*p = JobParams{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal generation job params: %w", err)
	}
	return nil
}
