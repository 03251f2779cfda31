package imageprep

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp" // Register BMP decoder
)

// ErrNotImage is returned when the input cannot be decoded as an image
var ErrNotImage = errors.New("input is not a supported image")

// Extensions lists the file types offered when picking an image
var Extensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif"}

// Prepared is an image ready to be sent to a vision service
type Prepared struct {
	Data     []byte
	Format   string
	MimeType string
	Width    int
	Height   int
	Resized  bool
}

// HasImageExtension reports whether path carries one of Extensions
func HasImageExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Prepare decodes data and, when either side exceeds maxDim, fits it into a
// maxDim square with Lanczos resampling and re-encodes it as JPEG.
// Images already within bounds are passed through unchanged. maxDim <= 0
// disables resizing.
func Prepare(data []byte, maxDim int) (*Prepared, error) {
	// Decode source image
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if maxDim <= 0 || (width <= maxDim && height <= maxDim) {
		return &Prepared{
			Data:     data,
			Format:   format,
			MimeType: mimeType(format),
			Width:    width,
			Height:   height,
		}, nil
	}

	// Downscale using Lanczos resampling
	fitted := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)

	// Encode as JPEG with quality 85
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fitted, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("JPEG encode failed: %w", err)
	}

	fb := fitted.Bounds()
	return &Prepared{
		Data:     buf.Bytes(),
		Format:   "jpeg",
		MimeType: "image/jpeg",
		Width:    fb.Dx(),
		Height:   fb.Dy(),
		Resized:  true,
	}, nil
}

func mimeType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	default:
		return "application/octet-stream"
	}
}
