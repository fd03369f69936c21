package ticket

import (
	"regexp"
	"strconv"
	"strings"
)

// FontSizeTier selects one of three fixed point-size tables.
type FontSizeTier string

const (
	FontSizeSmall  FontSizeTier = "small"
	FontSizeMedium FontSizeTier = "medium"
	FontSizeLarge  FontSizeTier = "large"
)

// LayoutStyle names the ticket layout presets.
type LayoutStyle string

const (
	LayoutStandard LayoutStyle = "standard"
	LayoutCompact  LayoutStyle = "compact"
	LayoutDetailed LayoutStyle = "detailed"
)

// PaperSize selects the physical page.
type PaperSize string

const (
	PaperA4     PaperSize = "a4"
	PaperLetter PaperSize = "letter"
	PaperLegal  PaperSize = "legal"
)

// Customization carries every user-tunable visual parameter. Blank fields fall
// back to documented defaults during resolution; the layout engine never sees
// an unresolved value.
type Customization struct {
	PrimaryColor      string       `json:"primaryColor,omitempty"`   // hex, e.g. #3B82F6
	SecondaryColor    string       `json:"secondaryColor,omitempty"` // hex, e.g. #1F2937
	FontFamily        string       `json:"fontFamily,omitempty"`     // helvetica | times | courier
	FontSize          FontSizeTier `json:"fontSize,omitempty"`
	BorderStyle       string       `json:"borderStyle,omitempty"` // solid | dashed | double
	BorderWidth       float64      `json:"borderWidth,omitempty"` // mm
	LayoutStyle       LayoutStyle  `json:"layoutStyle,omitempty"`
	PaperSize         PaperSize    `json:"paperSize,omitempty"`
	FooterText        string       `json:"footerText,omitempty"`
	ShowPhoto         *bool        `json:"showPhoto,omitempty"`
	ShowSignatureArea *bool        `json:"showSignatureArea,omitempty"`
	ShowQRCode        bool         `json:"showQRCode,omitempty"`
}

// RGB is a resolved color triple. Colors reach the layout engine as triples,
// never as raw hex strings.
type RGB struct {
	R, G, B int
}

// Default color pair used when a color field is blank or unparseable.
var (
	defaultPrimary   = RGB{59, 130, 246}
	defaultSecondary = RGB{31, 41, 55}
)

var hexColorRe = regexp.MustCompile(`^#?([a-fA-F0-9]{2})([a-fA-F0-9]{2})([a-fA-F0-9]{2})$`)

// ParseHexColor converts a #RRGGBB string to an RGB triple. The second return
// is false when the input is not parseable; callers substitute a default
// instead of failing the render.
func ParseHexColor(hex string) (RGB, bool) {
	m := hexColorRe.FindStringSubmatch(strings.TrimSpace(hex))
	if m == nil {
		return RGB{}, false
	}
	r, _ := strconv.ParseInt(m[1], 16, 0)
	g, _ := strconv.ParseInt(m[2], 16, 0)
	b, _ := strconv.ParseInt(m[3], 16, 0)
	return RGB{int(r), int(g), int(b)}, true
}

// resolvedStyle is the fully defaulted view of a Customization handed to the
// layout engine.
type resolvedStyle struct {
	primary       RGB
	secondary     RGB
	fontFamily    string // gofpdf family name
	baseFontSize  float64
	borderStyle   string
	borderWidth   float64
	layout        LayoutStyle
	paper         PaperSize
	footerText    string
	showPhoto     bool
	showSignature bool
	showQRCode    bool
}

// fontSizePoints maps the three tiers to body point sizes for the full-page
// layout. The half-page subjects table uses its own subject-count tiers.
var fontSizePoints = map[FontSizeTier]float64{
	FontSizeSmall:  9,
	FontSizeMedium: 10,
	FontSizeLarge:  12,
}

func (c Customization) resolve() resolvedStyle {
	st := resolvedStyle{
		primary:       defaultPrimary,
		secondary:     defaultSecondary,
		fontFamily:    "Helvetica",
		baseFontSize:  fontSizePoints[FontSizeMedium],
		borderStyle:   "solid",
		borderWidth:   1.0,
		layout:        LayoutStandard,
		paper:         PaperA4,
		footerText:    "This is a computer-generated hall ticket and does not require signature",
		showPhoto:     true,
		showSignature: true,
		showQRCode:    c.ShowQRCode,
	}
	if rgb, ok := ParseHexColor(c.PrimaryColor); ok {
		st.primary = rgb
	}
	if rgb, ok := ParseHexColor(c.SecondaryColor); ok {
		st.secondary = rgb
	}
	switch strings.ToLower(strings.TrimSpace(c.FontFamily)) {
	case "times":
		st.fontFamily = "Times"
	case "courier":
		st.fontFamily = "Courier"
	case "", "helvetica":
		// keep default
	}
	if pts, ok := fontSizePoints[c.FontSize]; ok {
		st.baseFontSize = pts
	}
	switch c.BorderStyle {
	case "dashed", "double", "solid":
		st.borderStyle = c.BorderStyle
	}
	if c.BorderWidth > 0 {
		st.borderWidth = c.BorderWidth
	}
	switch c.LayoutStyle {
	case LayoutCompact, LayoutDetailed, LayoutStandard:
		st.layout = c.LayoutStyle
	}
	switch c.PaperSize {
	case PaperLetter, PaperLegal, PaperA4:
		st.paper = c.PaperSize
	}
	if v := strings.TrimSpace(c.FooterText); v != "" {
		st.footerText = v
	}
	if c.ShowPhoto != nil {
		st.showPhoto = *c.ShowPhoto
	}
	if c.ShowSignatureArea != nil {
		st.showSignature = *c.ShowSignatureArea
	}
	return st
}

// gofpdfSize maps the paper enum to a gofpdf size string.
func (p PaperSize) gofpdfSize() string {
	switch p {
	case PaperLetter:
		return "Letter"
	case PaperLegal:
		return "Legal"
	default:
		return "A4"
	}
}

// Preset names a stored customization bundle matching the original template
// picker (standard / compact / detailed).
type Preset struct {
	Name          string        `json:"name"`
	Customization Customization `json:"customization"`
}

// BuiltinPresets returns the three bundled presets.
func BuiltinPresets() []Preset {
	yes := true
	return []Preset{
		{
			Name: "standard",
			Customization: Customization{
				PrimaryColor: "#3B82F6", SecondaryColor: "#1F2937",
				FontFamily: "helvetica", FontSize: FontSizeMedium,
				LayoutStyle: LayoutStandard, BorderStyle: "solid", BorderWidth: 1,
				ShowPhoto: &yes, ShowSignatureArea: &yes,
				FooterText: "This is a computer-generated hall ticket and does not require signature",
			},
		},
		{
			Name: "compact",
			Customization: Customization{
				PrimaryColor: "#059669", SecondaryColor: "#374151",
				FontFamily: "helvetica", FontSize: FontSizeMedium,
				LayoutStyle: LayoutCompact, BorderStyle: "solid", BorderWidth: 1,
				ShowPhoto: &yes, ShowSignatureArea: &yes,
				FooterText: "Generated digitally - No signature required",
			},
		},
		{
			Name: "detailed",
			Customization: Customization{
				PrimaryColor: "#7C3AED", SecondaryColor: "#1F2937",
				FontFamily: "times", FontSize: FontSizeLarge,
				LayoutStyle: LayoutDetailed, BorderStyle: "double", BorderWidth: 2,
				ShowPhoto: &yes, ShowSignatureArea: &yes,
				FooterText: "This hall ticket is valid for the specified examination only",
			},
		},
	}
}
