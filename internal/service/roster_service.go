package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/hallticket-api/internal/dto"
	"github.com/noah-isme/hallticket-api/internal/models"
	"github.com/noah-isme/hallticket-api/internal/ticket"
	appErrors "github.com/noah-isme/hallticket-api/pkg/errors"
	"github.com/noah-isme/hallticket-api/pkg/export"
)

type rosterStore interface {
	Create(ctx context.Context, roster *models.Roster) error
	GetByID(ctx context.Context, id string) (*models.Roster, error)
	UpdateStudents(ctx context.Context, id string, students models.RosterStudents) error
	List(ctx context.Context, filter models.RosterFilter) ([]models.Roster, int, error)
	Delete(ctx context.Context, id string) error
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// RosterService handles roster import, persistence and schedule merging.
type RosterService struct {
	repo      rosterStore
	csv       csvRenderer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRosterService constructs the service.
func NewRosterService(repo rosterStore, validate *validator.Validate, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RosterService{
		repo:      repo,
		csv:       export.NewCSVExporter(),
		validator: validate,
		logger:    logger,
	}
}

// Import resolves headers fuzzily, collects valid rows and saves the roster.
func (s *RosterService) Import(ctx context.Context, req dto.RosterImportRequest, actorID string) (*dto.RosterImportResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roster import payload")
	}
	kind := req.Kind
	if !kind.Valid() {
		kind = ticket.KindCollege
	}

	specs := ticket.ResolveColumns(req.Headers, kind)
	if !ticket.HasRequiredColumns(specs) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "could not locate identifier and name columns in headers")
	}

	rows := make([]ticket.RawRow, 0, len(req.Rows))
	for _, cells := range req.Rows {
		rows = append(rows, ticket.RawRow{Cells: cells})
	}
	students, summary := ticket.CollectRoster(rows, specs, kind)
	if len(students) == 0 {
		return nil, appErrors.ErrEmptyRoster
	}

	roster := &models.Roster{
		Name:      strings.TrimSpace(req.Name),
		Kind:      kind,
		Students:  students,
		CreatedBy: actorID,
	}
	if err := s.repo.Create(ctx, roster); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save roster")
	}

	s.logger.Sugar().Infow("roster imported", "roster_id", roster.ID, "accepted", summary.Accepted, "skipped", summary.Skipped)
	return &dto.RosterImportResponse{Roster: roster, Summary: summary}, nil
}

// Get loads a saved roster.
func (s *RosterService) Get(ctx context.Context, id string) (*models.Roster, error) {
	roster, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrRosterNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return roster, nil
}

// List returns a roster page plus pagination metadata.
func (s *RosterService) List(ctx context.Context, filter models.RosterFilter) (*dto.RosterListResponse, error) {
	rosters, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rosters")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return &dto.RosterListResponse{
		Rosters:    rosters,
		Pagination: models.Pagination{Page: page, PageSize: pageSize, TotalCount: total},
	}, nil
}

// Delete removes a saved roster.
func (s *RosterService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete roster")
	}
	return nil
}

// ApplySchedule overlays subject schedule entries onto the stored roster by
// position and persists the merged list. The merge never grows a student's
// subject list; re-applying the same entries is a no-op.
func (s *RosterService) ApplySchedule(ctx context.Context, id string, req dto.ScheduleApplyRequest) (*models.Roster, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	roster, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := ticket.MergeSchedule(roster.Students, req.Entries)
	if err := s.repo.UpdateStudents(ctx, id, merged); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save merged schedule")
	}
	roster.Students = merged
	return roster, nil
}

// ExportCSV renders the roster as CSV with one row per student subject.
func (s *RosterService) ExportCSV(ctx context.Context, id string) ([]byte, string, error) {
	roster, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	headers := []string{"Identifier", "Name", "Admission No", "Subject", "Code", "Date", "Time"}
	rows := make([]map[string]string, 0, len(roster.Students))
	for _, st := range roster.Students {
		subjects := st.ValidSubjects()
		if len(subjects) == 0 {
			rows = append(rows, map[string]string{"Identifier": st.Identifier, "Name": st.Name, "Admission No": st.AdmissionNumber})
			continue
		}
		for _, sub := range subjects {
			rows = append(rows, map[string]string{
				"Identifier":   st.Identifier,
				"Name":         st.Name,
				"Admission No": st.AdmissionNumber,
				"Subject":      sub.Name,
				"Code":         sub.Code,
				"Date":         sub.Date,
				"Time":         sub.Time,
			})
		}
	}
	payload, err := s.csv.Render(export.Dataset{Headers: headers, Rows: rows})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster csv")
	}
	filename := fmt.Sprintf("roster_%s.csv", sanitizeFilename(roster.Name))
	return payload, filename, nil
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
