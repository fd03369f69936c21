package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hallticket-api/internal/dto"
	"github.com/noah-isme/hallticket-api/internal/models"
	"github.com/noah-isme/hallticket-api/internal/ticket"
	appErrors "github.com/noah-isme/hallticket-api/pkg/errors"
)

type rosterStoreStub struct {
	rosters   map[string]*models.Roster
	createErr error
}

func newRosterStoreStub() *rosterStoreStub {
	return &rosterStoreStub{rosters: map[string]*models.Roster{}}
}

func (s *rosterStoreStub) Create(_ context.Context, roster *models.Roster) error {
	if s.createErr != nil {
		return s.createErr
	}
	if roster.ID == "" {
		roster.ID = uuid.NewString()
	}
	stored := *roster
	s.rosters[roster.ID] = &stored
	return nil
}

func (s *rosterStoreStub) GetByID(_ context.Context, id string) (*models.Roster, error) {
	roster, ok := s.rosters[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *roster
	return &copied, nil
}

func (s *rosterStoreStub) UpdateStudents(_ context.Context, id string, students models.RosterStudents) error {
	roster, ok := s.rosters[id]
	if !ok {
		return sql.ErrNoRows
	}
	roster.Students = students
	return nil
}

func (s *rosterStoreStub) List(_ context.Context, _ models.RosterFilter) ([]models.Roster, int, error) {
	out := make([]models.Roster, 0, len(s.rosters))
	for _, r := range s.rosters {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (s *rosterStoreStub) Delete(_ context.Context, id string) error {
	delete(s.rosters, id)
	return nil
}

func seedRoster(store *rosterStoreStub, students ...ticket.Student) *models.Roster {
	roster := &models.Roster{
		ID:       uuid.NewString(),
		Name:     "CSE Sem 3",
		Kind:     ticket.KindCollege,
		Students: students,
	}
	store.rosters[roster.ID] = roster
	return roster
}

func TestRosterServiceImportSuccess(t *testing.T) {
	store := newRosterStoreStub()
	svc := NewRosterService(store, nil, nil)

	resp, err := svc.Import(context.Background(), dto.RosterImportRequest{
		Name:    "CSE Sem 3",
		Kind:    ticket.KindCollege,
		Headers: []string{"USN", "Name", "Subject 1", "Code 1"},
		Rows: [][]string{
			{"1CR21CS001", "Asha Rao", "Mathematics", "MAT101"},
			{"", "Missing Identifier", "Physics", "PHY101"},
		},
	}, "admin-1")
	require.NoError(t, err)
	require.NotNil(t, resp.Roster)

	assert.Equal(t, 1, resp.Summary.Accepted)
	assert.Equal(t, 1, resp.Summary.Skipped)
	assert.NotEmpty(t, resp.Roster.ID)
	assert.Equal(t, "admin-1", resp.Roster.CreatedBy)
	require.Len(t, store.rosters, 1)
}

func TestRosterServiceImportRejectsUnresolvableHeaders(t *testing.T) {
	svc := NewRosterService(newRosterStoreStub(), nil, nil)

	_, err := svc.Import(context.Background(), dto.RosterImportRequest{
		Name:    "CSE Sem 3",
		Headers: []string{"Column A", "Column B"},
		Rows:    [][]string{{"x", "y"}},
	}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRosterServiceImportRejectsWhenEveryRowSkipped(t *testing.T) {
	svc := NewRosterService(newRosterStoreStub(), nil, nil)

	_, err := svc.Import(context.Background(), dto.RosterImportRequest{
		Name:    "CSE Sem 3",
		Headers: []string{"USN", "Name"},
		Rows:    [][]string{{"", "No Identifier"}, {"1CR21CS002", " "}},
	}, "admin-1")
	require.ErrorIs(t, err, appErrors.ErrEmptyRoster)
}

func TestRosterServiceImportValidatesPayload(t *testing.T) {
	svc := NewRosterService(newRosterStoreStub(), nil, nil)

	_, err := svc.Import(context.Background(), dto.RosterImportRequest{Name: ""}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRosterServiceGetNotFound(t *testing.T) {
	svc := NewRosterService(newRosterStoreStub(), nil, nil)

	_, err := svc.Get(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, appErrors.ErrRosterNotFound)
}

func TestRosterServiceApplySchedule(t *testing.T) {
	store := newRosterStoreStub()
	roster := seedRoster(store, ticket.Student{
		Identifier: "1CR21CS001",
		Name:       "Asha Rao",
		Subjects:   []ticket.Subject{{Name: "Mathematics", Code: "MAT101"}},
	})
	svc := NewRosterService(store, nil, nil)

	req := dto.ScheduleApplyRequest{Entries: []ticket.ScheduleEntry{
		{Date: "2026-06-01", StartTime: "09:00", EndTime: "12:00"},
	}}
	updated, err := svc.ApplySchedule(context.Background(), roster.ID, req)
	require.NoError(t, err)
	require.Len(t, updated.Students, 1)
	assert.Equal(t, "2026-06-01", updated.Students[0].Subjects[0].Date)
	assert.Equal(t, "3h", updated.Students[0].Subjects[0].Duration)

	// Persisted, and re-applying does not change anything.
	again, err := svc.ApplySchedule(context.Background(), roster.ID, req)
	require.NoError(t, err)
	assert.Equal(t, updated.Students, again.Students)
}

func TestRosterServiceApplyScheduleRequiresEntries(t *testing.T) {
	svc := NewRosterService(newRosterStoreStub(), nil, nil)

	_, err := svc.ApplySchedule(context.Background(), uuid.NewString(), dto.ScheduleApplyRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRosterServiceDelete(t *testing.T) {
	store := newRosterStoreStub()
	roster := seedRoster(store, ticket.Student{Identifier: "1CR21CS001", Name: "Asha Rao"})
	svc := NewRosterService(store, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), roster.ID))
	assert.Empty(t, store.rosters)

	err := svc.Delete(context.Background(), roster.ID)
	require.ErrorIs(t, err, appErrors.ErrRosterNotFound)
}

func TestRosterServiceExportCSV(t *testing.T) {
	store := newRosterStoreStub()
	roster := seedRoster(store, ticket.Student{
		Identifier:      "1CR21CS001",
		Name:            "Asha Rao",
		AdmissionNumber: "ADM-42",
		Subjects: []ticket.Subject{
			{Name: "Mathematics", Code: "MAT101", Date: "2026-06-01"},
			{Name: "Physics", Code: "PHY101"},
		},
	})
	svc := NewRosterService(store, nil, nil)

	payload, filename, err := svc.ExportCSV(context.Background(), roster.ID)
	require.NoError(t, err)
	assert.Equal(t, "roster_CSE_Sem_3.csv", filename)

	content := string(payload)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3, "header plus one line per subject")
	assert.Contains(t, lines[0], "Identifier")
	assert.Contains(t, lines[1], "Mathematics")
	assert.Contains(t, lines[2], "PHY101")
}

func TestRosterServiceListDefaultsPagination(t *testing.T) {
	store := newRosterStoreStub()
	seedRoster(store, ticket.Student{Identifier: "1CR21CS001", Name: "Asha Rao"})
	svc := NewRosterService(store, nil, nil)

	resp, err := svc.List(context.Background(), models.RosterFilter{Page: 0, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Pagination.Page)
	assert.Equal(t, 20, resp.Pagination.PageSize)
	assert.Equal(t, 1, resp.Pagination.TotalCount)
}
