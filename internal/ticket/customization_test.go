package ticket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHexColor(t *testing.T) {
	rgb, ok := ParseHexColor("#3B82F6")
	require.True(t, ok)
	assert.Equal(t, RGB{59, 130, 246}, rgb)

	rgb, ok = ParseHexColor("1f2937")
	require.True(t, ok)
	assert.Equal(t, RGB{31, 41, 55}, rgb)

	for _, bad := range []string{"", "#fff", "#GGGGGG", "blue", "#12345"} {
		_, ok := ParseHexColor(bad)
		assert.False(t, ok, bad)
	}
}

func TestCustomizationResolveDefaults(t *testing.T) {
	st := Customization{}.resolve()

	assert.Equal(t, RGB{59, 130, 246}, st.primary)
	assert.Equal(t, RGB{31, 41, 55}, st.secondary)
	assert.Equal(t, "Helvetica", st.fontFamily)
	assert.Equal(t, 10.0, st.baseFontSize)
	assert.Equal(t, "solid", st.borderStyle)
	assert.Equal(t, 1.0, st.borderWidth)
	assert.Equal(t, LayoutStandard, st.layout)
	assert.Equal(t, PaperA4, st.paper)
	assert.True(t, st.showPhoto)
	assert.True(t, st.showSignature)
	assert.False(t, st.showQRCode)
	assert.NotEmpty(t, st.footerText)
}

func TestCustomizationResolveMalformedColorFallsBack(t *testing.T) {
	st := Customization{PrimaryColor: "not-a-color", SecondaryColor: "#ZZZZZZ"}.resolve()
	assert.Equal(t, RGB{59, 130, 246}, st.primary)
	assert.Equal(t, RGB{31, 41, 55}, st.secondary)
}

func TestCustomizationResolveOverrides(t *testing.T) {
	hide := false
	st := Customization{
		PrimaryColor:      "#059669",
		FontFamily:        "times",
		FontSize:          FontSizeLarge,
		BorderStyle:       "double",
		BorderWidth:       2,
		LayoutStyle:       LayoutDetailed,
		PaperSize:         PaperLetter,
		FooterText:        "Valid for the specified examination only",
		ShowPhoto:         &hide,
		ShowSignatureArea: &hide,
		ShowQRCode:        true,
	}.resolve()

	assert.Equal(t, RGB{5, 150, 105}, st.primary)
	assert.Equal(t, "Times", st.fontFamily)
	assert.Equal(t, 12.0, st.baseFontSize)
	assert.Equal(t, "double", st.borderStyle)
	assert.Equal(t, 2.0, st.borderWidth)
	assert.Equal(t, LayoutDetailed, st.layout)
	assert.Equal(t, PaperLetter, st.paper)
	assert.False(t, st.showPhoto)
	assert.False(t, st.showSignature)
	assert.True(t, st.showQRCode)
}

func TestCustomizationResolveUnknownEnumsFallBack(t *testing.T) {
	st := Customization{
		FontFamily:  "comic-sans",
		FontSize:    FontSizeTier("enormous"),
		BorderStyle: "wavy",
		LayoutStyle: LayoutStyle("fancy"),
		PaperSize:   PaperSize("a3"),
	}.resolve()

	assert.Equal(t, "Helvetica", st.fontFamily)
	assert.Equal(t, 10.0, st.baseFontSize)
	assert.Equal(t, "solid", st.borderStyle)
	assert.Equal(t, LayoutStandard, st.layout)
	assert.Equal(t, PaperA4, st.paper)
}

func TestBuiltinPresets(t *testing.T) {
	presets := BuiltinPresets()
	require.Len(t, presets, 3)

	names := make([]string, 0, len(presets))
	for _, p := range presets {
		names = append(names, p.Name)
		// Every bundled preset must resolve without falling back on a color.
		_, ok := ParseHexColor(p.Customization.PrimaryColor)
		assert.True(t, ok, p.Name)
		_, ok = ParseHexColor(p.Customization.SecondaryColor)
		assert.True(t, ok, p.Name)
	}
	assert.Equal(t, []string{"standard", "compact", "detailed"}, names)
}

func TestPaperSizeGofpdfSize(t *testing.T) {
	assert.Equal(t, "A4", PaperA4.gofpdfSize())
	assert.Equal(t, "Letter", PaperLetter.gofpdfSize())
	assert.Equal(t, "Legal", PaperLegal.gofpdfSize())
	assert.Equal(t, "A4", PaperSize("").gofpdfSize())
}
