package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hallticket-api/internal/models"
)

// RosterRepository persists saved student rosters.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs the repository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// Create inserts a roster row with generated defaults.
func (r *RosterRepository) Create(ctx context.Context, roster *models.Roster) error {
	if roster.ID == "" {
		roster.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if roster.CreatedAt.IsZero() {
		roster.CreatedAt = now
	}
	roster.UpdatedAt = now
	const query = `INSERT INTO rosters (id, name, kind, students, created_by, created_at, updated_at)
VALUES (:id, :name, :kind, :students, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, roster); err != nil {
		return fmt.Errorf("create roster: %w", err)
	}
	return nil
}

// GetByID returns a roster row by its identifier.
func (r *RosterRepository) GetByID(ctx context.Context, id string) (*models.Roster, error) {
	const query = `SELECT id, name, kind, students, created_by, created_at, updated_at FROM rosters WHERE id = $1`
	var roster models.Roster
	if err := r.db.GetContext(ctx, &roster, query, id); err != nil {
		return nil, fmt.Errorf("get roster: %w", err)
	}
	return &roster, nil
}

// UpdateStudents replaces the stored student list, used after schedule merges.
func (r *RosterRepository) UpdateStudents(ctx context.Context, id string, students models.RosterStudents) error {
	const query = `UPDATE rosters SET students = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, students, time.Now().UTC()); err != nil {
		return fmt.Errorf("update roster students: %w", err)
	}
	return nil
}

// List returns rosters matching the filter with a total count.
func (r *RosterRepository) List(ctx context.Context, filter models.RosterFilter) ([]models.Roster, int, error) {
	baseQuery := `FROM rosters WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Kind != nil {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)+1))
		args = append(args, *filter.Kind)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT id, name, kind, students, created_by, created_at, updated_at %s ORDER BY updated_at DESC LIMIT %d OFFSET %d", baseQuery, pageSize, offset)

	var rosters []models.Roster
	if err := r.db.SelectContext(ctx, &rosters, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list rosters: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count rosters: %w", err)
	}

	return rosters, total, nil
}

// Delete removes a roster row.
func (r *RosterRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM rosters WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete roster: %w", err)
	}
	return nil
}
