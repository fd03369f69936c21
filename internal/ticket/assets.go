package ticket

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ImageFormat tags photo/logo payloads. Detection happens at upload time from
// the byte stream itself, never from a filename or an assumed default.
type ImageFormat string

const (
	FormatJPEG ImageFormat = "JPEG"
	FormatPNG  ImageFormat = "PNG"
	FormatGIF  ImageFormat = "GIF"
	FormatWEBP ImageFormat = "WEBP"
)

// ImageBytes is a raster payload plus its declared format tag.
type ImageBytes struct {
	Data   []byte
	Format ImageFormat
}

// PhotoLookup resolves a student identifier to a photo, mirroring the external
// photo store contract. Absence is an expected state.
type PhotoLookup func(identifier string) (ImageBytes, bool)

// LogoKind selects one of the two optional logo slots.
type LogoKind string

const (
	LogoPrimary   LogoKind = "primary"   // college / school logo, left box
	LogoSecondary LogoKind = "secondary" // university / government emblem, right box
)

// LogoLookup resolves a logo slot to image bytes.
type LogoLookup func(kind LogoKind) (ImageBytes, bool)

// DetectImageFormat sniffs the payload's magic bytes. The second return is
// false for unrecognized payloads.
func DetectImageFormat(data []byte) (ImageFormat, bool) {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return FormatJPEG, true
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}):
		return FormatPNG, true
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return FormatGIF, true
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return FormatWEBP, true
	}
	return "", false
}

// normalizeForEmbed validates an image payload against its declared format and
// converts it into something the PDF Writer can embed directly. WEBP and
// 16-bit PNG payloads are re-encoded as 8-bit PNG. A mismatch between the tag
// and the actual bytes, or a corrupt/truncated body, returns an error so the
// caller can degrade to a placeholder for that one ticket.
func normalizeForEmbed(img ImageBytes) ([]byte, string, error) {
	sniffed, ok := DetectImageFormat(img.Data)
	if !ok {
		return nil, "", fmt.Errorf("unrecognized image payload")
	}
	if sniffed != img.Format {
		return nil, "", fmt.Errorf("image tagged %s but payload is %s", img.Format, sniffed)
	}

	// Full decode catches truncated bodies that a header sniff would pass.
	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s image: %w", img.Format, err)
	}

	switch img.Format {
	case FormatJPEG:
		return img.Data, "JPEG", nil
	case FormatGIF:
		return img.Data, "GIF", nil
	case FormatPNG:
		if !is16BitImage(decoded) {
			return img.Data, "PNG", nil
		}
		// The embedder only handles 8-bit PNGs.
		return reencodePNG(decoded)
	case FormatWEBP:
		return reencodePNG(decoded)
	default:
		return nil, "", fmt.Errorf("unsupported image format %s", img.Format)
	}
}

func is16BitImage(img image.Image) bool {
	switch img.(type) {
	case *image.RGBA64, *image.NRGBA64, *image.Gray16:
		return true
	}
	return false
}

// reencodePNG flattens any decoded image into an 8-bit PNG.
func reencodePNG(img image.Image) ([]byte, string, error) {
	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, imaging.Clone(img), imaging.PNG); err != nil {
		return nil, "", fmt.Errorf("reencode image: %w", err)
	}
	return buf.Bytes(), "PNG", nil
}
