package ticket

import (
	"regexp"
	"strings"
)

// ColumnRole tags a raw cell with its meaning after header resolution.
type ColumnRole string

const (
	ColIdentifier  ColumnRole = "identifier"
	ColName        ColumnRole = "name"
	ColFatherName  ColumnRole = "fatherName"
	ColAdmissionNo ColumnRole = "admissionNo"
	ColSubjectName ColumnRole = "subjectName"
	ColSubjectCode ColumnRole = "subjectCode"
	ColSubjectDate ColumnRole = "subjectDate"
	ColSubjectTime ColumnRole = "subjectTime"
	ColIgnored     ColumnRole = "ignored"
)

// ColumnSpec describes one resolved input column. Subject columns of the same
// role are matched up by their position among columns of that role.
type ColumnSpec struct {
	Role  ColumnRole
	Index int
}

// RawRow is one already-tagged input row. Cells align with the ColumnSpec
// slice produced by ResolveColumns (or assembled directly by the caller).
type RawRow struct {
	Cells []string
}

// ImportSummary reports the outcome of one roster collection for user
// feedback. Accepted + Skipped always equals the number of input rows.
type ImportSummary struct {
	Accepted int `json:"accepted"`
	Skipped  int `json:"skipped"`
}

var headerStripRe = regexp.MustCompile(`[\s._-]+`)

// normalizeHeader lowercases and strips whitespace/punctuation so header
// synonyms compare loosely.
func normalizeHeader(h string) string {
	return headerStripRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), "")
}

// ResolveColumns maps a header row onto column roles using the synonym table
// from the original importer. School rosters key on roll number, the others on
// USN / university number. Unrecognized headers are kept as ignored columns so
// cell indices stay aligned.
func ResolveColumns(headers []string, kind RosterKind) []ColumnSpec {
	specs := make([]ColumnSpec, 0, len(headers))
	for i, raw := range headers {
		n := normalizeHeader(raw)
		role := ColIgnored
		switch {
		case kind == KindSchool && strings.Contains(n, "roll"):
			role = ColIdentifier
		case kind != KindSchool && (strings.Contains(n, "usn") || strings.Contains(n, "universityno") || strings.Contains(n, "registerno")):
			role = ColIdentifier
		case strings.Contains(n, "father") && strings.Contains(n, "name"):
			if kind == KindSchool {
				role = ColFatherName
			}
		case strings.Contains(n, "admission"):
			role = ColAdmissionNo
		case strings.Contains(n, "code"):
			role = ColSubjectCode
		case strings.Contains(n, "date") && (strings.Contains(n, "subject") || strings.Contains(n, "exam") || strings.Contains(n, "sub")):
			role = ColSubjectDate
		case strings.Contains(n, "time") && (strings.Contains(n, "subject") || strings.Contains(n, "exam") || strings.Contains(n, "sub")):
			role = ColSubjectTime
		case strings.Contains(n, "subject") || strings.HasPrefix(n, "sub"):
			role = ColSubjectName
		case strings.Contains(n, "name"):
			role = ColName
		}
		specs = append(specs, ColumnSpec{Role: role, Index: i})
	}
	return specs
}

// HasRequiredColumns reports whether the resolved specs carry both an
// identifier and a name column.
func HasRequiredColumns(specs []ColumnSpec) bool {
	var id, name bool
	for _, s := range specs {
		switch s.Role {
		case ColIdentifier:
			id = true
		case ColName:
			name = true
		}
	}
	return id && name
}

// CollectRoster turns tagged rows into an ordered Student list. Rows missing a
// trimmed identifier or name are skipped silently and counted; everything else
// is accepted as-is. The transform is pure: the input rows are not modified.
func CollectRoster(rows []RawRow, specs []ColumnSpec, kind RosterKind) ([]Student, ImportSummary) {
	var (
		summary  ImportSummary
		students = make([]Student, 0, len(rows))
	)

	nameCols := colsByRole(specs, ColSubjectName)
	codeCols := colsByRole(specs, ColSubjectCode)
	dateCols := colsByRole(specs, ColSubjectDate)
	timeCols := colsByRole(specs, ColSubjectTime)

	for _, row := range rows {
		st := Student{}
		for _, spec := range specs {
			val := cellAt(row, spec.Index)
			switch spec.Role {
			case ColIdentifier:
				st.Identifier = val
			case ColName:
				st.Name = val
			case ColFatherName:
				st.FatherName = val
			case ColAdmissionNo:
				st.AdmissionNumber = val
			}
		}
		if st.Identifier == "" || st.Name == "" {
			summary.Skipped++
			continue
		}

		slots := maxLen(nameCols, codeCols, dateCols, timeCols)
		for i := 0; i < slots; i++ {
			sub := Subject{
				Name: cellAtCol(row, nameCols, i),
				Code: cellAtCol(row, codeCols, i),
				Date: cellAtCol(row, dateCols, i),
				Time: cellAtCol(row, timeCols, i),
			}
			if sub.Name != "" || sub.Code != "" || sub.Date != "" || sub.Time != "" {
				st.Subjects = append(st.Subjects, sub)
			}
		}

		students = append(students, st)
		summary.Accepted++
	}
	return students, summary
}

func colsByRole(specs []ColumnSpec, role ColumnRole) []int {
	var out []int
	for _, s := range specs {
		if s.Role == role {
			out = append(out, s.Index)
		}
	}
	return out
}

func cellAt(row RawRow, idx int) string {
	if idx < 0 || idx >= len(row.Cells) {
		return ""
	}
	return strings.TrimSpace(row.Cells[idx])
}

func cellAtCol(row RawRow, cols []int, i int) string {
	if i >= len(cols) {
		return ""
	}
	return cellAt(row, cols[i])
}

func maxLen(groups ...[]int) int {
	max := 0
	for _, g := range groups {
		if len(g) > max {
			max = len(g)
		}
	}
	return max
}
