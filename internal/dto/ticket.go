package dto

import (
	"github.com/noah-isme/hallticket-api/internal/models"
	"github.com/noah-isme/hallticket-api/internal/ticket"
)

// GenerateRequest asks for a synchronous document render. Either RosterID or
// an inline Students list must be supplied.
type GenerateRequest struct {
	RosterID string               `json:"roster_id,omitempty"`
	Students []ticket.Student     `json:"students,omitempty"`
	Kind     ticket.RosterKind    `json:"kind,omitempty"`
	Mode     ticket.Mode          `json:"mode,omitempty"`
	Metadata ticket.ExamMetadata  `json:"metadata"`
	Custom   ticket.Customization `json:"customization"`
}

// PreviewRequest renders a single sample ticket with the given settings.
type PreviewRequest struct {
	Kind     ticket.RosterKind    `json:"kind,omitempty"`
	Mode     ticket.Mode          `json:"mode,omitempty"`
	Metadata ticket.ExamMetadata  `json:"metadata"`
	Custom   ticket.Customization `json:"customization"`
}

// JobRequest queues an asynchronous generation run over a saved roster.
type JobRequest struct {
	RosterID string               `json:"roster_id" validate:"required"`
	Mode     ticket.Mode          `json:"mode,omitempty"`
	Metadata ticket.ExamMetadata  `json:"metadata"`
	Custom   ticket.Customization `json:"customization"`
}

// JobResponse acknowledges a queued job.
type JobResponse struct {
	ID       string           `json:"id"`
	Status   models.JobStatus `json:"status"`
	Progress int              `json:"progress"`
}

// JobStatusResponse exposes job progress and, once finished, the result link.
type JobStatusResponse struct {
	ID        string           `json:"id"`
	Status    models.JobStatus `json:"status"`
	Progress  int              `json:"progress"`
	PageCount int              `json:"page_count,omitempty"`
	ResultURL *string          `json:"result_url,omitempty"`
	Error     *string          `json:"error,omitempty"`
}

// RosterImportRequest carries raw tabular rows for fuzzy-header import.
type RosterImportRequest struct {
	Name    string            `json:"name" validate:"required"`
	Kind    ticket.RosterKind `json:"kind,omitempty"`
	Headers []string          `json:"headers" validate:"required,min=1"`
	Rows    [][]string        `json:"rows" validate:"required,min=1"`
}

// RosterImportResponse reports the saved roster plus import accounting.
type RosterImportResponse struct {
	Roster  *models.Roster       `json:"roster"`
	Summary ticket.ImportSummary `json:"summary"`
}

// ScheduleApplyRequest overlays a subject schedule onto a saved roster.
type ScheduleApplyRequest struct {
	Entries []ticket.ScheduleEntry `json:"entries" validate:"required,min=1"`
}

// RosterListResponse wraps a roster page.
type RosterListResponse struct {
	Rosters    []models.Roster   `json:"rosters"`
	Pagination models.Pagination `json:"pagination"`
}
