package ticket

import (
	"fmt"
	"strings"
	"time"
)

// MergeSchedule overlays one shared exam schedule onto every student's subject
// list by positional index: schedule entry i enriches each student's subject
// i. Students' own subject name/code survive when they were independently
// entered; the schedule never grows a student's subject list. The returned
// roster is a copy and the operation is idempotent.
func MergeSchedule(roster []Student, entries []ScheduleEntry) []Student {
	out := make([]Student, len(roster))
	for si, st := range roster {
		merged := st
		merged.Subjects = make([]Subject, len(st.Subjects))
		copy(merged.Subjects, st.Subjects)
		for i := range merged.Subjects {
			if i >= len(entries) {
				break
			}
			applyEntry(&merged.Subjects[i], entries[i])
		}
		out[si] = merged
	}
	return out
}

func applyEntry(sub *Subject, e ScheduleEntry) {
	if strings.TrimSpace(sub.Name) == "" {
		sub.Name = e.Name
	}
	if strings.TrimSpace(sub.Code) == "" {
		sub.Code = e.Code
	}
	if e.Date != "" {
		sub.Date = e.Date
	}
	if e.StartTime != "" {
		sub.StartTime = e.StartTime
	}
	if e.EndTime != "" {
		sub.EndTime = e.EndTime
	}
	// Duration is re-derivable state: recompute from start/end whenever both
	// are present so a stored value can never drift.
	if d, ok := DeriveDuration(sub.StartTime, sub.EndTime); ok {
		sub.Duration = d
	} else if e.Duration != "" {
		sub.Duration = e.Duration
	}
}

// DeriveDuration computes a human duration ("3h", "2h 30m") from HH:MM or
// HH:MM:SS clock values. The second return is false when either bound is
// missing or unparseable.
func DeriveDuration(start, end string) (string, bool) {
	s, okS := parseClock(start)
	e, okE := parseClock(end)
	if !okS || !okE {
		return "", false
	}
	d := e.Sub(s)
	if d < 0 {
		d += 24 * time.Hour
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m), true
	case h > 0:
		return fmt.Sprintf("%dh", h), true
	default:
		return fmt.Sprintf("%dm", m), true
	}
}

func parseClock(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
