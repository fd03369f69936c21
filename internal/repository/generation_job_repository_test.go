package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hallticket-api/internal/models"
	"github.com/noah-isme/hallticket-api/internal/ticket"
)

func newJobRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var jobColumns = []string{"id", "roster_id", "params", "status", "progress", "page_count", "result_url", "created_by", "created_at", "finished_at", "error_message"}

const jobParamsJSON = `{"mode":"paired_students","kind":"college","metadata":{"institutionName":"CMRIT","examTitle":"SEE"},"customization":{}}`

func TestGenerationJobRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newJobRepoMock(t)
	defer cleanup()

	repo := NewGenerationJobRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO generation_jobs")).
		WithArgs(sqlmock.AnyArg(), "roster-1", sqlmock.AnyArg(), "QUEUED", 0, 0, nil, "admin-1", sqlmock.AnyArg(), nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.GenerationJob{
		RosterID: "roster-1",
		Params: models.JobParams{
			Mode: ticket.ModePairedStudents,
			Kind: ticket.KindCollege,
		},
		CreatedBy: "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), job))
	require.NotEmpty(t, job.ID)
	require.Equal(t, models.JobStatusQueued, job.Status)

	rows := sqlmock.NewRows(jobColumns).
		AddRow(job.ID, "roster-1", jobParamsJSON, "QUEUED", 0, 0, nil, "admin-1", time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, roster_id, params, status, progress, page_count, result_url, created_by, created_at, finished_at, error_message")).
		WithArgs(job.ID).
		WillReturnRows(rows)

	fetched, err := repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, job.ID, fetched.ID)
	require.Equal(t, ticket.ModePairedStudents, fetched.Params.Mode)
	require.Equal(t, "CMRIT", fetched.Params.Metadata.InstitutionName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationJobRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newJobRepoMock(t)
	defer cleanup()
	repo := NewGenerationJobRepository(db)

	now := time.Now()
	status := models.JobStatusFinished
	progress := 100
	pages := 12
	result := "/api/v1/tickets/download/token"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE generation_jobs SET status = $1, progress = $2, page_count = $3, result_url = $4, finished_at = $5 WHERE id = $6")).
		WithArgs(status, progress, pages, result, now, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateGenerationJobParams{
		Status:     &status,
		Progress:   &progress,
		PageCount:  &pages,
		ResultURL:  &result,
		FinishedAt: &now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationJobRepositoryUpdateNoFields(t *testing.T) {
	db, mock, cleanup := newJobRepoMock(t)
	defer cleanup()
	repo := NewGenerationJobRepository(db)

	// No pending expectations: a no-op update must not touch the database.
	require.NoError(t, repo.Update(context.Background(), "job-1", UpdateGenerationJobParams{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationJobRepositoryListQueued(t *testing.T) {
	db, mock, cleanup := newJobRepoMock(t)
	defer cleanup()
	repo := NewGenerationJobRepository(db)

	rows := sqlmock.NewRows(jobColumns).
		AddRow("job-1", "roster-1", jobParamsJSON, "QUEUED", 0, 0, nil, "admin-1", time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT $1")).
		WithArgs(20).
		WillReturnRows(rows)

	jobs, err := repo.ListQueued(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationJobRepositoryListFinishedBefore(t *testing.T) {
	db, mock, cleanup := newJobRepoMock(t)
	defer cleanup()
	repo := NewGenerationJobRepository(db)

	finished := time.Now().Add(-25 * time.Hour)
	rows := sqlmock.NewRows(jobColumns).
		AddRow("job-1", "roster-1", jobParamsJSON, "FINISHED", 100, 8, "/api/v1/tickets/download/token", "admin-1", time.Now().Add(-48*time.Hour), finished, nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = 'FINISHED' AND finished_at IS NOT NULL AND finished_at < $1 ORDER BY finished_at ASC LIMIT $2")).
		WithArgs(sqlmock.AnyArg(), 50).
		WillReturnRows(rows)

	jobs, err := repo.ListFinishedBefore(context.Background(), time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, 8, jobs[0].PageCount)
	require.NoError(t, mock.ExpectationsWereMet())
}
