package blob

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Image validation errors
var (
	ErrUnsupportedImage = errors.New("image must be a png, jpeg, gif or webp file")
	ErrImageTooLarge    = errors.New("image exceeds the upload size limit")
)

// MaxImagePixels guards against decompression bombs hidden in small files.
const MaxImagePixels = 40_000_000

// ImageInfo describes a validated upload.
type ImageInfo struct {
	Format string // png, jpeg, gif, webp
	Width  int
	Height int
}

// Ext returns the canonical file extension for the format.
func (i ImageInfo) Ext() string {
	if i.Format == "jpeg" {
		return ".jpg"
	}
	return "." + i.Format
}

// InspectImage checks that data is a supported image within maxBytes.
// Only the header is decoded.
// PRE: maxBytes > 0
// POST: Returns format and dimensions, or ErrUnsupportedImage / ErrImageTooLarge
func InspectImage(data []byte, maxBytes int64) (ImageInfo, error) {
	if len(data) == 0 {
		return ImageInfo{}, ErrEmpty
	}
	if int64(len(data)) > maxBytes {
		return ImageInfo{}, ErrImageTooLarge
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > MaxImagePixels {
		return ImageInfo{}, ErrImageTooLarge
	}
	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
