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

func newRosterRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

const rosterStudentsJSON = `[{"identifier":"1CR21CS001","name":"Asha Rao","subjects":[{"name":"Mathematics","code":"MAT101"}]}]`

func TestRosterRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newRosterRepoMock(t)
	defer cleanup()

	repo := NewRosterRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rosters")).
		WithArgs(sqlmock.AnyArg(), "CSE Sem 3", "college", sqlmock.AnyArg(), "admin-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	roster := &models.Roster{
		Name: "CSE Sem 3",
		Kind: ticket.KindCollege,
		Students: models.RosterStudents{{
			Identifier: "1CR21CS001",
			Name:       "Asha Rao",
			Subjects:   []ticket.Subject{{Name: "Mathematics", Code: "MAT101"}},
		}},
		CreatedBy: "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), roster))
	require.NotEmpty(t, roster.ID)

	rows := sqlmock.NewRows([]string{"id", "name", "kind", "students", "created_by", "created_at", "updated_at"}).
		AddRow(roster.ID, "CSE Sem 3", "college", rosterStudentsJSON, "admin-1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, kind, students, created_by, created_at, updated_at FROM rosters WHERE id = $1")).
		WithArgs(roster.ID).
		WillReturnRows(rows)

	fetched, err := repo.GetByID(context.Background(), roster.ID)
	require.NoError(t, err)
	require.Equal(t, roster.ID, fetched.ID)
	require.Len(t, fetched.Students, 1)
	require.Equal(t, "Asha Rao", fetched.Students[0].Name)
	require.Len(t, fetched.Students[0].Subjects, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepositoryUpdateStudents(t *testing.T) {
	db, mock, cleanup := newRosterRepoMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE rosters SET students = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("roster-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	students := models.RosterStudents{{Identifier: "1CR21CS001", Name: "Asha Rao"}}
	require.NoError(t, repo.UpdateStudents(context.Background(), "roster-1", students))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepositoryList(t *testing.T) {
	db, mock, cleanup := newRosterRepoMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "kind", "students", "created_by", "created_at", "updated_at"}).
		AddRow("roster-1", "CSE Sem 3", "college", rosterStudentsJSON, "admin-1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, kind, students, created_by, created_at, updated_at FROM rosters WHERE 1=1 ORDER BY updated_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM rosters WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rosters, total, err := repo.List(context.Background(), models.RosterFilter{})
	require.NoError(t, err)
	require.Len(t, rosters, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepositoryListFiltersKindAndSearch(t *testing.T) {
	db, mock, cleanup := newRosterRepoMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	kind := ticket.KindSchool
	rows := sqlmock.NewRows([]string{"id", "name", "kind", "students", "created_by", "created_at", "updated_at"})
	mock.ExpectQuery(regexp.QuoteMeta("FROM rosters WHERE 1=1 AND kind = $1 AND LOWER(name) LIKE $2 ORDER BY updated_at DESC LIMIT 10 OFFSET 10")).
		WithArgs(kind, "%class 10%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM rosters WHERE 1=1 AND kind = $1 AND LOWER(name) LIKE $2")).
		WithArgs(kind, "%class 10%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.RosterFilter{
		Kind:     &kind,
		Search:   "Class 10",
		Page:     2,
		PageSize: 10,
	})
	require.NoError(t, err)
	require.Zero(t, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRosterRepoMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rosters WHERE id = $1")).
		WithArgs("roster-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "roster-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
