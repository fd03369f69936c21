package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noah-isme/hallticket-api/internal/ticket"
)

// RosterStudents stores the imported student list persisted as JSONB.
type RosterStudents []ticket.Student

// Value marshals students to JSON for persistence.
func (s RosterStudents) Value() (driver.Value, error) {
	if s == nil {
		s = RosterStudents{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal roster students: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the student list.
func (s *RosterStudents) Scan(value interface{}) error {
	if value == nil {
		*s = RosterStudents{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for RosterStudents", value)
	}
	if len(data) == 0 {
		*s = RosterStudents{}
		return nil
	}
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("unmarshal roster students: %w", err)
	}
	return nil
}

// Roster is a named, persisted student list ready for ticket generation.
type Roster struct {
	ID        string            `db:"id" json:"id"`
	Name      string            `db:"name" json:"name"`
	Kind      ticket.RosterKind `db:"kind" json:"kind"`
	Students  RosterStudents    `db:"students" json:"students"`
	CreatedBy string            `db:"created_by" json:"created_by"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}

// RosterFilter captures listing criteria for saved rosters.
type RosterFilter struct {
	Kind     *ticket.RosterKind
	Search   string
	Page     int
	PageSize int
}
