// Package imaging derives resized WebP variants of uploaded images.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
	"github.com/rwcarlsen/goexif/exif"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // WebP decoder
)

// Variant describes one derived image. Zero bounds keep the original size.
type Variant struct {
	Suffix  string
	Width   int
	Height  int
	Quality int
}

// Variants are written next to the original as <base><suffix>.webp
var Variants = []Variant{
	{Suffix: "-thumbnail", Width: 150, Height: 150, Quality: 80},
	{Suffix: "-medium", Width: 500, Height: 500, Quality: 80},
	{Suffix: "-large", Width: 1200, Height: 1200, Quality: 85},
	{Suffix: "-optimized", Quality: 90},
}

// Encoder writes an image in the variant output format
type Encoder interface {
	Encode(w io.Writer, img image.Image, quality int) error
}

// webpEncoder encodes lossy WebP
type webpEncoder struct{}

func (webpEncoder) Encode(w io.Writer, img image.Image, quality int) error {
	return webp.Encode(w, img, webp.Options{Quality: quality})
}

// Processor creates and removes image variants
type Processor struct {
	encoder Encoder
	logger  *zap.Logger
}

// NewProcessor creates a processor producing WebP variants
func NewProcessor(logger *zap.Logger) *Processor {
	return &Processor{encoder: webpEncoder{}, logger: logger}
}

// NewProcessorWithEncoder creates a processor with a custom encoder
func NewProcessorWithEncoder(encoder Encoder, logger *zap.Logger) *Processor {
	return &Processor{encoder: encoder, logger: logger}
}

// VariantPath returns the path of a derived file for the original at sourcePath
func VariantPath(sourcePath string, v Variant) string {
	ext := filepath.Ext(sourcePath)
	return strings.TrimSuffix(sourcePath, ext) + v.Suffix + ".webp"
}

// VariantName returns the file name of a derived file for an original file name
func VariantName(name string, v Variant) string {
	return filepath.Base(VariantPath(name, v))
}

// CreateVariants writes every variant of the image at sourcePath and returns their paths.
// Images are fitted inside the variant bounds and never enlarged.
func (p *Processor) CreateVariants(sourcePath string) ([]string, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	paths := make([]string, 0, len(Variants))
	for _, v := range Variants {
		path := VariantPath(sourcePath, v)
		if err := p.writeVariant(img, v, path); err != nil {
			// Remove what was written so far
			for _, written := range paths {
				os.Remove(written)
			}
			return nil, fmt.Errorf("failed to create %s variant: %w", strings.TrimPrefix(v.Suffix, "-"), err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func (p *Processor) writeVariant(img image.Image, v Variant, path string) error {
	out := img
	bounds := img.Bounds()
	if v.Width > 0 && v.Height > 0 && (bounds.Dx() > v.Width || bounds.Dy() > v.Height) {
		out = imaging.Fit(img, v.Width, v.Height, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := p.encoder.Encode(&buf, out, v.Quality); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// DeleteWithVariants removes the original and all derived files.
// Failures are logged and skipped so one missing file never blocks the rest.
func (p *Processor) DeleteWithVariants(sourcePath string) {
	targets := []string{sourcePath}
	for _, v := range Variants {
		targets = append(targets, VariantPath(sourcePath, v))
	}

	for _, path := range targets {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.logger.Warn("failed to delete image file", zap.String("path", path), zap.Error(err))
		}
	}
}

// readExifOrientation returns the EXIF orientation tag, 1 when absent
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation rotates or flips img so it displays upright
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
