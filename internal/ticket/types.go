package ticket

import (
	"fmt"
	"strings"
	"time"
)

// RosterKind distinguishes the three ticket variants. The kind drives label
// text and which roster columns are expected; it never branches layout
// geometry.
type RosterKind string

const (
	KindCollege RosterKind = "college"
	KindSchool  RosterKind = "school"
	KindGeneral RosterKind = "general"
)

// Valid reports whether the kind is one of the known variants.
func (k RosterKind) Valid() bool {
	switch k {
	case KindCollege, KindSchool, KindGeneral:
		return true
	}
	return false
}

// Subject is one exam entry on a student's ticket. Name and Code must both be
// non-blank for the subject to appear in rendered output.
type Subject struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	Date      string `json:"date,omitempty"`      // ISO date (2006-01-02)
	StartTime string `json:"startTime,omitempty"` // HH:MM or HH:MM:SS
	EndTime   string `json:"endTime,omitempty"`
	Time      string `json:"time,omitempty"` // freeform fallback when start/end unknown
	Duration  string `json:"duration,omitempty"`
}

// IsValid reports whether the subject qualifies for rendering.
func (s Subject) IsValid() bool {
	return strings.TrimSpace(s.Name) != "" && strings.TrimSpace(s.Code) != ""
}

// Student is one roster entry. Identifier is the seat number (college/general)
// or roll number (school) and doubles as the photo lookup key.
type Student struct {
	Identifier      string    `json:"identifier"`
	Name            string    `json:"name"`
	AdmissionNumber string    `json:"admissionNumber,omitempty"`
	FatherName      string    `json:"fatherName,omitempty"` // school rosters only
	Subjects        []Subject `json:"subjects"`
}

// ValidSubjects filters to entries carrying both name and code, preserving
// order.
func (st Student) ValidSubjects() []Subject {
	out := make([]Subject, 0, len(st.Subjects))
	for _, sub := range st.Subjects {
		if sub.IsValid() {
			out = append(out, sub)
		}
	}
	return out
}

// ExamMetadata is the class/exam context shared by every ticket in one run.
// It is read-only during generation.
type ExamMetadata struct {
	InstitutionName string    `json:"institutionName"`
	ExamTitle       string    `json:"examTitle"`
	Department      string    `json:"department,omitempty"` // college/general department line
	ClassLabel      string    `json:"classLabel,omitempty"` // school class line
	Board           string    `json:"board,omitempty"`      // school board, appended to class line
	ExamType        string    `json:"examType,omitempty"`
	Semester        string    `json:"semester,omitempty"`
	Session         string    `json:"session,omitempty"` // exam month/year
	ExamTime        string    `json:"examTime,omitempty"`
	CenterCode      string    `json:"centerCode,omitempty"`
	CenterName      string    `json:"centerName,omitempty"`
	Duration        string    `json:"duration,omitempty"`
	Instructions    string    `json:"instructions,omitempty"`
	GeneratedAt     time.Time `json:"generatedAt,omitempty"` // zero value means "now"
}

const (
	defaultInstitutionName = "Institution Name"
	defaultExamTitle       = "Examination"
)

// institution returns the header name, falling back to the documented default
// when the field is blank.
func (m ExamMetadata) institution() string {
	if v := strings.TrimSpace(m.InstitutionName); v != "" {
		return v
	}
	return defaultInstitutionName
}

func (m ExamMetadata) title() string {
	if v := strings.TrimSpace(m.ExamTitle); v != "" {
		return v
	}
	return defaultExamTitle
}

// generatedAt resolves the ticket date line.
func (m ExamMetadata) generatedAt() time.Time {
	if m.GeneratedAt.IsZero() {
		return time.Now()
	}
	return m.GeneratedAt
}

// summaryLine concatenates the non-blank exam facts into one compact line.
// Blank fields are omitted entirely; there are no placeholder tokens here.
func (m ExamMetadata) summaryLine() string {
	var parts []string
	add := func(label, value string) {
		if v := strings.TrimSpace(value); v != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", label, v))
		}
	}
	add("Type", strings.ReplaceAll(m.ExamType, "-", " "))
	add("Sem", m.Semester)
	add("Session", m.Session)
	add("Time", m.ExamTime)
	center := m.CenterCode
	if center == "" {
		center = m.CenterName
	}
	add("Center", center)
	add("Duration", m.Duration)
	return strings.Join(parts, "  ")
}

// ScheduleEntry is one slot of the bulk subject schedule. Entries map onto
// student subjects by position.
type ScheduleEntry struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	Date      string `json:"date,omitempty"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	Duration  string `json:"duration,omitempty"`
}

// WarningCode classifies non-fatal degradations collected during a run.
type WarningCode string

const (
	WarnCapacityOverflow WarningCode = "CAPACITY_OVERFLOW"
	WarnPhotoEmbed       WarningCode = "PHOTO_EMBED_FAILED"
	WarnLogoEmbed        WarningCode = "LOGO_EMBED_FAILED"
	WarnNoSubjects       WarningCode = "NO_VALID_SUBJECTS"
)

// Warning records one degraded-but-rendered condition for a single student.
type Warning struct {
	Identifier string      `json:"identifier"`
	Code       WarningCode `json:"code"`
	Detail     string      `json:"detail,omitempty"`
}

// Document is a finished, paginated render.
type Document struct {
	Bytes    []byte    `json:"-"`
	Pages    int       `json:"pages"`
	Tickets  int       `json:"tickets"`
	Warnings []Warning `json:"warnings,omitempty"`
}
