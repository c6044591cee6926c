package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// pngEncoder stands in for WebP so tests can decode the output with the standard library
type pngEncoder struct {
	calls []int
}

func (e *pngEncoder) Encode(w io.Writer, img image.Image, quality int) error {
	e.calls = append(e.calls, quality)
	return png.Encode(w, img)
}

type failingEncoder struct{ failOn int }

func (e *failingEncoder) Encode(w io.Writer, img image.Image, quality int) error {
	e.failOn--
	if e.failOn < 0 {
		return errors.New("encoder failure")
	}
	return png.Encode(w, img)
}

func writeTestPNG(t *testing.T, dir string, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	path := filepath.Join(dir, "image-1700000000000-abc.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestVariantPath(t *testing.T) {
	assert.Equal(t, "/u/images/a-thumbnail.webp", VariantPath("/u/images/a.jpg", Variants[0]))
	assert.Equal(t, "/u/images/a-optimized.webp", VariantPath("/u/images/a.webp", Variants[3]))
	assert.Equal(t, "a-medium.webp", VariantName("a.png", Variants[1]))
}

func TestProcessor_CreateVariants(t *testing.T) {
	dir := t.TempDir()
	source := writeTestPNG(t, dir, 2000, 1000)
	enc := &pngEncoder{}
	p := NewProcessorWithEncoder(enc, zap.NewNop())

	paths, err := p.CreateVariants(source)
	require.NoError(t, err)
	require.Len(t, paths, 4)
	assert.Equal(t, []int{80, 80, 85, 90}, enc.calls)

	expected := map[string][2]int{
		"-thumbnail": {150, 75},
		"-medium":    {500, 250},
		"-large":     {1200, 600},
		"-optimized": {2000, 1000},
	}
	for _, v := range Variants {
		w, h, err := dimensions(VariantPath(source, v))
		require.NoError(t, err, v.Suffix)
		assert.Equal(t, expected[v.Suffix], [2]int{w, h}, v.Suffix)
	}
}

func TestProcessor_CreateVariants_NeverEnlarges(t *testing.T) {
	dir := t.TempDir()
	source := writeTestPNG(t, dir, 100, 80)
	p := NewProcessorWithEncoder(&pngEncoder{}, zap.NewNop())

	_, err := p.CreateVariants(source)
	require.NoError(t, err)

	for _, v := range Variants {
		w, h, err := dimensions(VariantPath(source, v))
		require.NoError(t, err)
		assert.Equal(t, 100, w, v.Suffix)
		assert.Equal(t, 80, h, v.Suffix)
	}
}

func TestProcessor_CreateVariants_Failures(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		p := NewProcessorWithEncoder(&pngEncoder{}, zap.NewNop())
		_, err := p.CreateVariants(filepath.Join(t.TempDir(), "missing.png"))
		assert.Error(t, err)
	})

	t.Run("not an image", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fake.png")
		require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))
		p := NewProcessorWithEncoder(&pngEncoder{}, zap.NewNop())
		_, err := p.CreateVariants(path)
		assert.Error(t, err)
	})

	t.Run("encoder failure cleans up written variants", func(t *testing.T) {
		source := writeTestPNG(t, t.TempDir(), 300, 300)
		p := NewProcessorWithEncoder(&failingEncoder{failOn: 2}, zap.NewNop())

		_, err := p.CreateVariants(source)
		require.Error(t, err)
		for _, v := range Variants {
			_, statErr := os.Stat(VariantPath(source, v))
			assert.True(t, os.IsNotExist(statErr), v.Suffix)
		}
	})
}

func TestProcessor_DeleteWithVariants(t *testing.T) {
	dir := t.TempDir()
	source := writeTestPNG(t, dir, 400, 400)
	p := NewProcessorWithEncoder(&pngEncoder{}, zap.NewNop())
	_, err := p.CreateVariants(source)
	require.NoError(t, err)

	// a missing variant must not stop the rest from being removed
	require.NoError(t, os.Remove(VariantPath(source, Variants[1])))

	p.DeleteWithVariants(source)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWebPEncoder(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	path := filepath.Join(t.TempDir(), "out.webp")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, webpEncoder{}.Encode(f, img, 80))
	require.NoError(t, f.Close())

	w, h, err := dimensions(path)
	require.NoError(t, err)
	assert.Equal(t, 16, w)
	assert.Equal(t, 16, h)
}

func TestApplyOrientation(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))

	for _, o := range []int{1, 2, 3, 4} {
		b := applyOrientation(img, o).Bounds()
		assert.Equal(t, [2]int{40, 20}, [2]int{b.Dx(), b.Dy()}, "orientation %d", o)
	}
	for _, o := range []int{5, 6, 7, 8} {
		b := applyOrientation(img, o).Bounds()
		assert.Equal(t, [2]int{20, 40}, [2]int{b.Dx(), b.Dy()}, "orientation %d", o)
	}
}

// dimensions returns the size of the image at path without decoding pixels
func dimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
