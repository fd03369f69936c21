package ticket

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// Geometry constants in millimeters, matching the two-copies-per-page layout
// the original tickets were printed with.
const (
	copyMargin       = 5  // outer margin and gap between the two copies
	headerBandHeight = 25 // logos + institution + title band
	logoBoxSize      = 18
	photoBoxSize     = 30
	reservedBottom   = 25 // signatures + notes block at the foot of each copy
	baseRowHeight    = 8
)

// subject-count tiers for the half-page table: row height, body font and
// header font shrink together so larger tables still fit the fixed region.
type tableTier struct {
	rowHeight    float64
	fontSize     float64
	headerSize   float64
	maxNameChars int
}

func tierForSubjectCount(n int) tableTier {
	switch {
	case n > 6:
		return tableTier{rowHeight: 6, fontSize: 6, headerSize: 7, maxNameChars: 25}
	case n == 6:
		return tableTier{rowHeight: 7, fontSize: 7, headerSize: 7, maxNameChars: 30}
	default:
		return tableTier{rowHeight: baseRowHeight, fontSize: 8, headerSize: 8, maxNameChars: 40}
	}
}

// labelSet carries the variant-specific wording. All kind dispatch happens
// here, once, instead of being scattered through the draw code.
type labelSet struct {
	identifier  string
	leftLogo    [2]string
	rightLogo   [2]string
	middleSig   string
	rightSig    string
	fatherLabel string
}

func labelsFor(kind RosterKind) labelSet {
	switch kind {
	case KindSchool:
		return labelSet{
			identifier:  "1. ROLL NUMBER:",
			leftLogo:    [2]string{"SCHOOL", "LOGO"},
			rightLogo:   [2]string{"GOVT", "EMBLEM"},
			middleSig:   "Signature of Invigilator",
			rightSig:    "Signature of Superintendent",
			fatherLabel: "FATHER'S NAME:",
		}
	case KindGeneral:
		return labelSet{
			identifier: "1. REGISTER NUMBER:",
			leftLogo:   [2]string{"COLLEGE", "LOGO"},
			rightLogo:  [2]string{"GOVT", "EMBLEM"},
			middleSig:  "Signature of HOD",
			rightSig:   "Signature of Principal",
		}
	default:
		return labelSet{
			identifier: "1. UNIVERSITY SEAT NO:",
			leftLogo:   [2]string{"COLLEGE", "LOGO"},
			rightLogo:  [2]string{"GOVT", "EMBLEM"},
			middleSig:  "Signature of HOD",
			rightSig:   "Signature of Principal",
		}
	}
}

// engine draws ticket copies into a shared gofpdf document. It performs no
// I/O: photos and logos must already be resident behind the lookup funcs.
type engine struct {
	pdf      *gofpdf.Fpdf
	kind     RosterKind
	meta     ExamMetadata
	style    resolvedStyle
	labels   labelSet
	photos   PhotoLookup
	logos    LogoLookup
	warnings []Warning
	imageSeq int
}

func newEngine(kind RosterKind, meta ExamMetadata, style resolvedStyle, photos PhotoLookup, logos LogoLookup) *engine {
	pdf := gofpdf.New("P", "mm", style.paper.gofpdfSize(), "")
	pdf.SetAutoPageBreak(false, 0)
	return &engine{
		pdf:    pdf,
		kind:   kind,
		meta:   meta,
		style:  style,
		labels: labelsFor(kind),
		photos: photos,
		logos:  logos,
	}
}

func (e *engine) warn(identifier string, code WarningCode, detail string) {
	e.warnings = append(e.warnings, Warning{Identifier: identifier, Code: code, Detail: detail})
}

// textCentered places s with its horizontal center at x, baseline at y.
func (e *engine) textCentered(x, y float64, s string) {
	e.pdf.Text(x-e.pdf.GetStringWidth(s)/2, y, s)
}

// embedImage validates, normalizes and places an image. Registration names
// must be unique per payload, so a sequence number is mixed in.
func (e *engine) embedImage(img ImageBytes, x, y, w, h float64) error {
	data, imgType, err := normalizeForEmbed(img)
	if err != nil {
		return err
	}
	e.imageSeq++
	name := fmt.Sprintf("img-%d", e.imageSeq)
	opts := gofpdf.ImageOptions{ImageType: imgType}
	e.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if !e.pdf.Ok() {
		return fmt.Errorf("register image: %w", e.pdf.Error())
	}
	e.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return nil
}

// logoBox draws one logo slot: the image when available and embeddable, or a
// two-line placeholder caption otherwise.
func (e *engine) logoBox(kind LogoKind, caption [2]string, x, y float64, identifier string) {
	e.pdf.Rect(x, y, logoBoxSize, logoBoxSize, "D")
	if img, ok := e.logos(kind); ok {
		if err := e.embedImage(img, x, y, logoBoxSize, logoBoxSize); err == nil {
			return
		} else {
			e.warn(identifier, WarnLogoEmbed, fmt.Sprintf("%s logo: %v", kind, err))
		}
	}
	e.pdf.SetFont(e.style.fontFamily, "", 6)
	e.pdf.SetTextColor(100, 100, 100)
	e.textCentered(x+logoBoxSize/2, y+7, caption[0])
	e.textCentered(x+logoBoxSize/2, y+11, caption[1])
	e.pdf.SetTextColor(0, 0, 0)
}

// photoBox draws the candidate photo slot with the three-way outcome: the
// photo itself, an embed-failure caption, or the affix-photo caption.
func (e *engine) photoBox(identifier string, x, y float64) {
	e.pdf.SetDrawColor(0, 0, 0)
	e.pdf.SetLineWidth(0.5)
	e.pdf.Rect(x, y, photoBoxSize, photoBoxSize, "D")

	caption := [2]string{"Affix Recent", "Passport Photo"}
	if img, ok := e.photos(identifier); ok {
		if err := e.embedImage(img, x, y, photoBoxSize, photoBoxSize); err == nil {
			return
		} else {
			e.warn(identifier, WarnPhotoEmbed, err.Error())
			caption = [2]string{"Photo Error", "Check Format"}
		}
	}
	e.pdf.SetFont(e.style.fontFamily, "", 6)
	e.pdf.SetTextColor(100, 100, 100)
	e.textCentered(x+photoBoxSize/2, y+13, caption[0])
	e.textCentered(x+photoBoxSize/2, y+17, caption[1])
	e.pdf.SetTextColor(0, 0, 0)
}

// drawHalfTicket renders one complete copy into the top (copyIndex 0) or
// bottom (copyIndex 1) half of the current page. The copy never draws outside
// its region: subject rows that would cross into the reserved bottom block are
// dropped and flagged.
func (e *engine) drawHalfTicket(st Student, copyIndex int) {
	pageW, pageH := e.pdf.GetPageSize()
	copyH := (pageH - 3*copyMargin) / 2
	copyW := pageW - 2*copyMargin
	x := float64(copyMargin)
	y := copyMargin + float64(copyIndex)*(copyH+copyMargin)

	e.drawBorders(x, y, copyW, copyH)
	e.drawHeaderBand(st.Identifier, x, y, copyW)

	curY := y + headerBandHeight + 5

	// Identification lines.
	e.pdf.SetTextColor(e.style.secondary.R, e.style.secondary.G, e.style.secondary.B)
	e.pdf.SetFont(e.style.fontFamily, "B", 9)
	e.pdf.Text(x+5, curY, e.labels.identifier)
	e.pdf.SetFont(e.style.fontFamily, "", 9)
	e.pdf.Text(x+60, curY, st.Identifier)

	e.pdf.SetFont(e.style.fontFamily, "B", 9)
	e.pdf.Text(x+100, curY, "ADMISSION NO:")
	e.pdf.SetFont(e.style.fontFamily, "", 9)
	admission := st.AdmissionNumber
	if admission == "" {
		admission = "Not provided"
	}
	e.pdf.Text(x+140, curY, admission)

	e.pdf.SetFont(e.style.fontFamily, "B", 9)
	e.pdf.Text(x+165, curY, "Date:")
	e.pdf.SetFont(e.style.fontFamily, "", 9)
	e.pdf.Text(x+180, curY, e.meta.generatedAt().Format("02/01/2006"))

	curY += 8

	e.pdf.SetFont(e.style.fontFamily, "B", 9)
	e.pdf.Text(x+5, curY, "2. NAME OF THE CANDIDATE:")
	e.pdf.SetFont(e.style.fontFamily, "", 9)
	e.pdf.Text(x+70, curY, strings.ToUpper(st.Name))

	if e.style.showPhoto {
		e.photoBox(st.Identifier, x+copyW-photoBoxSize-5, curY-5)
	}
	curY += 12

	if e.kind == KindSchool && st.FatherName != "" {
		e.pdf.SetFont(e.style.fontFamily, "B", 9)
		e.pdf.Text(x+5, curY, e.labels.fatherLabel)
		e.pdf.SetFont(e.style.fontFamily, "", 9)
		e.pdf.Text(x+50, curY, strings.ToUpper(st.FatherName))
		curY += 6
	}

	// Compact exam-metadata summary line; omitted entirely when every field
	// is blank.
	if line := e.meta.summaryLine(); line != "" {
		e.pdf.SetFont(e.style.fontFamily, "", 7)
		e.pdf.SetTextColor(0, 0, 0)
		e.pdf.Text(x+5, curY, line)
		curY += 6
	}

	e.pdf.SetTextColor(e.style.secondary.R, e.style.secondary.G, e.style.secondary.B)
	e.pdf.SetFont(e.style.fontFamily, "B", 9)
	e.pdf.Text(x+5, curY, "3. SUBJECTS APPLIED:")
	curY += 8

	maxContentY := y + copyH - reservedBottom
	e.drawSubjectTable(st, x, curY, copyW, maxContentY)

	e.drawBottomBlock(x, y, copyW, copyH)
}

func (e *engine) drawBorders(x, y, w, h float64) {
	e.pdf.SetDrawColor(e.style.primary.R, e.style.primary.G, e.style.primary.B)
	if e.style.borderStyle == "dashed" {
		e.pdf.SetDashPattern([]float64{3, 2}, 0)
		defer e.pdf.SetDashPattern([]float64{}, 0)
	}
	e.pdf.SetLineWidth(e.style.borderWidth)
	e.pdf.Rect(x, y, w, h, "D")
	e.pdf.SetLineWidth(0.5)
	e.pdf.Rect(x+2, y+2, w-4, h-4, "D")
	if e.style.borderStyle == "double" {
		e.pdf.Rect(x+1, y+1, w-2, h-2, "D")
	}
	e.pdf.SetDrawColor(0, 0, 0)
}

func (e *engine) drawHeaderBand(identifier string, x, y, w float64) {
	e.pdf.SetDrawColor(0, 0, 0)
	e.pdf.SetLineWidth(0.5)
	e.pdf.Rect(x+2, y+2, w-4, headerBandHeight, "D")

	e.logoBox(LogoPrimary, e.labels.leftLogo, x+5, y+5, identifier)
	e.logoBox(LogoSecondary, e.labels.rightLogo, x+w-logoBoxSize-5, y+5, identifier)

	e.pdf.SetTextColor(e.style.secondary.R, e.style.secondary.G, e.style.secondary.B)
	e.pdf.SetFont(e.style.fontFamily, "B", 11)
	e.textCentered(x+w/2, y+8, strings.ToUpper(e.meta.institution()))

	if dept := e.departmentLine(); dept != "" {
		e.pdf.SetFont(e.style.fontFamily, "B", 8)
		e.textCentered(x+w/2, y+14, dept)
	}

	e.pdf.SetFont(e.style.fontFamily, "", 7)
	e.textCentered(x+w/2, y+23, e.meta.title())
	e.pdf.SetTextColor(0, 0, 0)
}

// departmentLine builds the middle header line for the active variant.
func (e *engine) departmentLine() string {
	if e.kind == KindSchool {
		line := strings.ToUpper(strings.TrimSpace(e.meta.ClassLabel))
		if board := strings.TrimSpace(e.meta.Board); board != "" {
			if line != "" {
				line += " - "
			}
			line += strings.ToUpper(board)
		}
		return line
	}
	if dept := strings.TrimSpace(e.meta.Department); dept != "" {
		return "DEPARTMENT OF " + strings.ToUpper(dept)
	}
	return ""
}

// drawSubjectTable renders the gridded DATE | TIME | SUBJECT NAME | SUBJECT
// CODE | SIGN table. Rows that would cross maxContentY are not drawn; the
// truncation is recorded as a capacity overflow for the caller to surface.
func (e *engine) drawSubjectTable(st Student, x, curY, copyW, maxContentY float64) {
	subjects := st.ValidSubjects()
	if len(subjects) == 0 {
		e.pdf.SetFont(e.style.fontFamily, "", 8)
		e.pdf.SetTextColor(0, 0, 0)
		e.pdf.Text(x+5, curY+5, "No subjects registered")
		e.warn(st.Identifier, WarnNoSubjects, "student has no valid subjects")
		return
	}

	tier := tierForSubjectCount(len(subjects))
	tableX := x + 5
	tableW := copyW - 50
	headerH := tier.rowHeight

	// Column widths follow the original formula: a fixed floor or a fraction
	// of the table width, whichever is larger.
	colDate := maxf(18, float64(int(tableW*0.10)))
	colTime := maxf(30, float64(int(tableW*0.22)))
	colName := maxf(50, float64(int(tableW*0.35)))
	colCode := maxf(25, float64(int(tableW*0.20)))

	baseX := x + 6
	dateX := baseX
	timeX := dateX + colDate
	nameX := timeX + colTime
	codeX := nameX + colName
	signX := codeX + colCode

	// How many rows actually fit above the reserved block.
	fit := len(subjects)
	if avail := maxContentY - (curY + headerH); avail > 0 {
		if n := int(avail / tier.rowHeight); n < fit {
			fit = n
		}
	} else {
		fit = 0
	}
	if fit < len(subjects) {
		e.warn(st.Identifier, WarnCapacityOverflow,
			fmt.Sprintf("%d of %d subjects omitted from half-page table", len(subjects)-fit, len(subjects)))
	}

	tableH := float64(fit)*tier.rowHeight + headerH

	e.pdf.SetDrawColor(0, 0, 0)
	e.pdf.SetLineWidth(0.5)
	e.pdf.Rect(tableX, curY, tableW, tableH, "D")

	// Header band.
	e.pdf.SetFillColor(240, 240, 240)
	e.pdf.Rect(tableX, curY, tableW, headerH, "F")
	e.pdf.SetTextColor(0, 0, 0)
	e.pdf.SetFont(e.style.fontFamily, "B", tier.headerSize)
	headY := curY + headerH/2 + 2
	e.pdf.Text(dateX+2, headY, "DATE")
	e.pdf.Text(timeX+2, headY, "TIME")
	e.pdf.Text(nameX+2, headY, "SUBJECT NAME")
	e.pdf.Text(codeX+2, headY, "SUBJECT CODE")
	e.pdf.Text(signX+2, headY, "SIGN")

	// Column rules.
	for _, vx := range []float64{dateX - 4 + colDate, timeX - 4 + colTime, nameX - 4 + colName, codeX - 4 + colCode} {
		e.pdf.Line(vx, curY, vx, curY+tableH)
	}

	e.pdf.SetFont(e.style.fontFamily, "", tier.fontSize)
	for i := 0; i < fit; i++ {
		sub := subjects[i]
		rowY := curY + headerH + float64(i)*tier.rowHeight
		e.pdf.Line(tableX, rowY, tableX+tableW, rowY)

		if i%2 == 1 {
			e.pdf.SetFillColor(248, 248, 248)
			e.pdf.Rect(tableX, rowY, tableW, tier.rowHeight, "F")
		}

		baseline := rowY + tier.rowHeight/2 + 1
		e.pdf.Text(dateX+2, baseline, displayDate(sub.Date))
		e.pdf.Text(timeX+2, baseline, displayTime(sub))
		e.pdf.Text(nameX+2, baseline, truncate(sub.Name, tier.maxNameChars))
		e.pdf.Text(codeX+2, baseline, sub.Code)
	}
}

// drawBottomBlock renders the fixed-position signatures, verification notes
// and footer anchored to the foot of the copy region.
func (e *engine) drawBottomBlock(x, y, copyW, copyH float64) {
	bottomY := y + copyH
	sigY := bottomY - 22

	if e.style.showSignature {
		// Line length derives from the per-signature width so the rules stay
		// inside the region on every paper size.
		areaW := copyW - 40
		sigW := areaW / 3
		lineLen := sigW - 20

		e.pdf.SetFont(e.style.fontFamily, "", 7)
		e.pdf.SetDrawColor(0, 0, 0)
		e.pdf.SetLineWidth(0.2)
		e.pdf.SetTextColor(0, 0, 0)

		captions := []string{"Signature of the Candidate", e.labels.middleSig, e.labels.rightSig}
		for i, caption := range captions {
			slotX := x + 20 + float64(i)*sigW
			lineStart := slotX + (sigW-lineLen)/2
			e.pdf.Line(lineStart, sigY+2, lineStart+lineLen, sigY+2)
			e.textCentered(slotX+sigW/2, sigY+6, caption)
		}
	}

	e.pdf.SetFont(e.style.fontFamily, "", 6)
	e.pdf.SetTextColor(0, 0, 0)
	note := strings.TrimSpace(e.meta.Instructions)
	if note == "" {
		note = "Note: Please verify the eligibility of candidate before issuing the admission ticket."
	}
	e.pdf.Text(x+5, sigY+11, note)
	e.pdf.Text(x+5, sigY+16, "This is Electronically Generated Admission Ticket")

	e.pdf.SetFont(e.style.fontFamily, "", 5)
	e.textCentered(x+copyW/2, bottomY-3, "Note: This hall ticket must be preserved until the end of the examination")
}

// drawFullTicket renders the single-ticket-per-page layout, which owns the
// whole page and is allowed to spill the subjects table onto continuation
// pages (the table header is redrawn after each break).
func (e *engine) drawFullTicket(st Student) {
	e.pdf.AddPage()
	pageW, pageH := e.pdf.GetPageSize()

	// Filled header banner.
	e.pdf.SetFillColor(e.style.primary.R, e.style.primary.G, e.style.primary.B)
	e.pdf.Rect(10, 10, pageW-20, 30, "F")
	e.pdf.SetTextColor(255, 255, 255)
	e.pdf.SetFont(e.style.fontFamily, "B", 18)
	e.textCentered(pageW/2, 25, e.meta.institution())
	e.pdf.SetFont(e.style.fontFamily, "", 12)
	e.textCentered(pageW/2, 35, e.meta.title())

	e.pdf.SetTextColor(0, 0, 0)
	e.pdf.SetFont(e.style.fontFamily, "B", 16)
	e.textCentered(pageW/2, 55, "HALL TICKET")

	curY := 75.0
	e.pdf.SetFont(e.style.fontFamily, "B", 12)
	e.pdf.Text(20, curY, strings.TrimSuffix(strings.TrimPrefix(e.labels.identifier, "1. "), ":")+":")
	e.pdf.SetFont(e.style.fontFamily, "", 12)
	e.pdf.Text(70, curY, st.Identifier)
	e.pdf.SetFont(e.style.fontFamily, "B", 12)
	e.pdf.Text(120, curY, "Name:")
	e.pdf.SetFont(e.style.fontFamily, "", 12)
	e.pdf.Text(140, curY, st.Name)
	curY += 15

	if dept := e.departmentLine(); dept != "" {
		e.pdf.SetFont(e.style.fontFamily, "B", 12)
		e.pdf.Text(20, curY, "Class:")
		e.pdf.SetFont(e.style.fontFamily, "", 12)
		e.pdf.Text(70, curY, dept)
		curY += 15
	}
	if line := e.meta.summaryLine(); line != "" {
		e.pdf.SetFont(e.style.fontFamily, "", 9)
		e.pdf.Text(20, curY, line)
		curY += 10
	}

	curY = e.drawWrappedSubjectTable(st, curY, pageW, pageH)

	// Footer block on the final page of the ticket.
	e.pdf.SetFont(e.style.fontFamily, "", 10)
	e.pdf.SetTextColor(100, 100, 100)
	e.textCentered(pageW/2, pageH-27, e.style.footerText)
	e.pdf.Text(20, pageH-17, "Generated on: "+e.meta.generatedAt().Format("02/01/2006"))
	e.drawQRSlot(st.Identifier, pageW-40, pageH-47)
}

// drawWrappedSubjectTable lays out the full-page table with metric-based name
// wrapping and variable row heights, breaking to a new page when a row would
// cross the bottom margin.
func (e *engine) drawWrappedSubjectTable(st Student, curY, pageW, pageH float64) float64 {
	subjects := st.ValidSubjects()

	e.pdf.SetFont(e.style.fontFamily, "B", e.style.baseFontSize+2)
	e.pdf.SetTextColor(0, 0, 0)
	e.pdf.Text(20, curY, "Subjects:")
	curY += 10

	if len(subjects) == 0 {
		e.pdf.SetFont(e.style.fontFamily, "", e.style.baseFontSize)
		e.pdf.Text(20, curY, "No subjects registered")
		e.warn(st.Identifier, WarnNoSubjects, "student has no valid subjects")
		return curY + 10
	}

	tableX := 20.0
	tableW := pageW - 40
	colCode := 30.0
	colDate := 30.0
	colTime := 25.0
	colName := tableW - colCode - colDate - colTime
	headerH := 10.0
	lineH := 6.0
	bottomLimit := pageH - 47 // keep clear of the footer block

	drawHeader := func(yy float64) float64 {
		e.pdf.SetFillColor(240, 244, 250)
		e.pdf.Rect(tableX, yy, tableW, headerH, "F")
		e.pdf.SetFont(e.style.fontFamily, "B", e.style.baseFontSize)
		e.pdf.Text(tableX+3, yy+7, "Code")
		e.pdf.Text(tableX+colCode+3, yy+7, "Subject Name")
		e.pdf.Text(tableX+colCode+colName+3, yy+7, "Date")
		e.pdf.Text(tableX+colCode+colName+colDate+3, yy+7, "Time")
		return yy + headerH
	}

	curY = drawHeader(curY)
	e.pdf.SetFont(e.style.fontFamily, "", e.style.baseFontSize)

	for i, sub := range subjects {
		nameLines := e.pdf.SplitText(orDash(sub.Name), colName-6)
		needed := maxf(headerH, float64(len(nameLines))*lineH+4)

		if curY+needed > bottomLimit {
			e.pdf.AddPage()
			curY = drawHeader(30)
			e.pdf.SetFont(e.style.fontFamily, "", e.style.baseFontSize)
		}

		if i%2 == 0 {
			e.pdf.SetFillColor(245, 245, 245)
			e.pdf.Rect(tableX, curY, tableW, needed, "F")
		}

		e.pdf.SetTextColor(0, 0, 0)
		e.pdf.Text(tableX+3, curY+7, sub.Code)
		for li, ln := range nameLines {
			e.pdf.Text(tableX+colCode+3, curY+7+float64(li)*lineH, ln)
		}
		e.pdf.Text(tableX+colCode+colName+3, curY+7, displayDate(sub.Date))
		e.pdf.Text(tableX+colCode+colName+colDate+3, curY+7, displayTime(sub))

		e.pdf.SetDrawColor(e.style.primary.R, e.style.primary.G, e.style.primary.B)
		e.pdf.SetLineWidth(0.3)
		e.pdf.Line(tableX, curY, tableX+tableW, curY)
		e.pdf.Line(tableX, curY+needed, tableX+tableW, curY+needed)
		for _, off := range []float64{colCode, colCode + colName, colCode + colName + colDate} {
			e.pdf.Line(tableX+off, curY, tableX+off, curY+needed)
		}

		curY += needed
	}

	e.pdf.SetDrawColor(0, 0, 0)
	return curY + 5
}

// drawQRSlot renders the QR area: a live code when enabled, the labelled
// placeholder box otherwise.
func (e *engine) drawQRSlot(identifier string, x, y float64) {
	if e.style.showQRCode && identifier != "" {
		png, err := qrcode.Encode(identifier, qrcode.Medium, 256)
		if err == nil {
			if embedErr := e.embedImage(ImageBytes{Data: png, Format: FormatPNG}, x, y, 20, 20); embedErr == nil {
				return
			}
		}
	}
	e.pdf.SetDrawColor(200, 200, 200)
	e.pdf.Rect(x, y, 20, 20, "D")
	e.pdf.SetFont(e.style.fontFamily, "", 8)
	e.textCentered(x+10, y+12, "QR")
	e.pdf.SetDrawColor(0, 0, 0)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// displayDate renders an ISO date as dd/mm/yy; unparseable or blank values
// fall back to the raw string or a dash.
func displayDate(iso string) string {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return "-"
	}
	if t, err := time.Parse("2006-01-02", iso); err == nil {
		return t.Format("02/01/06")
	}
	return iso
}

// displayTime prefers the start/end pair, then the freeform fallback.
func displayTime(sub Subject) string {
	if sub.StartTime != "" && sub.EndTime != "" {
		return clipClock(sub.StartTime) + " - " + clipClock(sub.EndTime)
	}
	if sub.Time != "" {
		return sub.Time
	}
	return "-"
}

func clipClock(v string) string {
	if len(v) > 5 {
		return v[:5]
	}
	return v
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "."
}
