// Package media turns uploaded images into web-sized JPEGs and stores them.
package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	MaxWidth    = 1920
	MaxHeight   = 1080
	JPEGQuality = 80

	// MaxPixels bounds the decoded size of an upload.
	MaxPixels = 40_000_000
)

// ErrTooManyPixels is an ErrTooLarge: the compressed file fits the byte
// limit but its dimensions do not.
var ErrTooManyPixels = fmt.Errorf("%w: image exceeds %d pixels", ErrTooLarge, MaxPixels)

// Processed is an encoded image ready to store.
type Processed struct {
	Data   []byte
	Width  int
	Height int
	Ext    string
}

// Process decodes any registered format (jpeg, png, gif, webp), fits it
// inside MaxWidth x MaxHeight without enlarging, and re-encodes as JPEG.
func Process(r io.Reader) (*Processed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}
	if err := checkDimensions(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}

	img = fit(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	bounds := img.Bounds()
	return &Processed{
		Data:   buf.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Ext:    ".jpg",
	}, nil
}

func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: empty image", ErrUnsupportedType)
	}
	if int64(width)*int64(height) > MaxPixels {
		return ErrTooManyPixels
	}
	return nil
}

func fit(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= MaxWidth && b.Dy() <= MaxHeight {
		return img
	}
	return imaging.Fit(img, MaxWidth, MaxHeight, imaging.Lanczos)
}
