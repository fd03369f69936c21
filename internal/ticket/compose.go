package ticket

import (
	"bytes"
	"context"
	"fmt"

	appErrors "github.com/noah-isme/hallticket-api/pkg/errors"
)

// Mode selects how ticket copies are sequenced onto pages.
type Mode string

const (
	// ModeBulkSameStudent emits one page per student carrying the student
	// copy on the top half and the office copy on the bottom half.
	ModeBulkSameStudent Mode = "bulk_same_student"
	// ModePairedStudents packs two sequential students per page; an odd
	// roster leaves the final bottom region blank.
	ModePairedStudents Mode = "paired_students"
	// ModeSinglePerPage gives each student a full page, with the subjects
	// table allowed to continue onto extra pages.
	ModeSinglePerPage Mode = "single_per_page"
)

// Valid reports whether the mode is one of the named layouts.
func (m Mode) Valid() bool {
	switch m {
	case ModeBulkSameStudent, ModePairedStudents, ModeSinglePerPage:
		return true
	}
	return false
}

// GenerationContext is the full, explicit input set for one document run.
// Metadata and Customization are shared read-only across every copy; the
// lookups must be fully populated before Generate is called (the composer
// performs no I/O).
type GenerationContext struct {
	Roster   []Student
	Kind     RosterKind
	Metadata ExamMetadata
	Custom   Customization
	Photos   PhotoLookup
	Logos    LogoLookup
	Mode     Mode
}

func (gc *GenerationContext) normalize() {
	if !gc.Kind.Valid() {
		gc.Kind = KindCollege
	}
	if !gc.Mode.Valid() {
		gc.Mode = ModeBulkSameStudent
	}
	if gc.Photos == nil {
		gc.Photos = func(string) (ImageBytes, bool) { return ImageBytes{}, false }
	}
	if gc.Logos == nil {
		gc.Logos = func(LogoKind) (ImageBytes, bool) { return ImageBytes{}, false }
	}
}

// Generate renders the whole roster into one finished document. An empty
// roster is rejected before any page is written. Cancellation is checked once
// per page; a cancelled run yields no partial output.
func Generate(ctx context.Context, gc GenerationContext) (*Document, error) {
	gc.normalize()
	if len(gc.Roster) == 0 {
		return nil, appErrors.ErrEmptyRoster
	}

	e := newEngine(gc.Kind, gc.Metadata, gc.Custom.resolve(), gc.Photos, gc.Logos)

	switch gc.Mode {
	case ModePairedStudents:
		for i := 0; i < len(gc.Roster); i += 2 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			e.pdf.AddPage()
			e.drawHalfTicket(gc.Roster[i], 0)
			if i+1 < len(gc.Roster) {
				e.drawHalfTicket(gc.Roster[i+1], 1)
			}
		}
	case ModeSinglePerPage:
		for _, st := range gc.Roster {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			e.drawFullTicket(st)
		}
	default: // ModeBulkSameStudent
		for _, st := range gc.Roster {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			e.pdf.AddPage()
			e.drawHalfTicket(st, 0) // student copy
			e.drawHalfTicket(st, 1) // office copy
		}
	}

	return e.finish(len(gc.Roster))
}

// SampleStudent is the synthetic roster entry used for customization
// previews.
func SampleStudent() Student {
	return Student{
		Identifier: "SAMPLE123",
		Name:       "Sample Student",
		Subjects: []Subject{
			{Name: "Mathematics", Code: "MATH101"},
			{Name: "Physics", Code: "PHY101"},
			{Name: "Chemistry", Code: "CHEM101"},
		},
	}
}

// Preview renders exactly one synthetic student through the production code
// path so the preview is pixel-faithful to real output.
func Preview(ctx context.Context, gc GenerationContext) (*Document, error) {
	gc.Roster = []Student{SampleStudent()}
	return Generate(ctx, gc)
}

func (e *engine) finish(tickets int) (*Document, error) {
	if err := e.pdf.Error(); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	buf := &bytes.Buffer{}
	if err := e.pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	return &Document{
		Bytes:    buf.Bytes(),
		Pages:    e.pdf.PageCount(),
		Tickets:  tickets,
		Warnings: e.warnings,
	}, nil
}
