package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	s := NewLocalStorage(t.TempDir())

	path, size, err := s.Save(CategoryDocuments, "cv.pdf", strings.NewReader("%PDF-1.4 content"))
	require.NoError(t, err)
	assert.Equal(t, int64(16), size)
	assert.Equal(t, filepath.Join(s.BasePath(), "documents", "cv.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 content", string(data))

	t.Run("existing file is not overwritten", func(t *testing.T) {
		_, _, err := s.Save(CategoryDocuments, "cv.pdf", strings.NewReader("other"))
		assert.Error(t, err)
	})

	require.NoError(t, s.Delete(CategoryDocuments, "cv.pdf"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.True(t, os.IsNotExist(s.Delete(CategoryDocuments, "cv.pdf")))
}

func TestLocalStorage_Path(t *testing.T) {
	s := NewLocalStorage("/srv/uploads")

	tests := []struct {
		name     string
		category string
		file     string
		wantErr  bool
	}{
		{name: "image", category: CategoryImages, file: "image-1-abc.png"},
		{name: "unknown category", category: "tmp", file: "a.png", wantErr: true},
		{name: "traversal", category: CategoryImages, file: "../config.env", wantErr: true},
		{name: "nested", category: CategoryImages, file: "a/b.png", wantErr: true},
		{name: "backslash", category: CategoryImages, file: `..\b.png`, wantErr: true},
		{name: "empty", category: CategoryImages, file: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := s.Path(tt.category, tt.file)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Join("/srv/uploads", tt.category, tt.file), path)
		})
	}
}

func TestGenerateFileName(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	name := GenerateFileName("image", "Photo.JPG", now)
	assert.Regexp(t, regexp.MustCompile(`^image-1700000000123-[0-9a-f-]{36}\.jpg$`), name)

	other := GenerateFileName("image", "Photo.JPG", now)
	assert.NotEqual(t, name, other)

	assert.Regexp(t, `^document-1700000000123-[0-9a-f-]{36}$`, GenerateFileName("document", "README", now))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "/uploads/images/a.png", PublicURL(CategoryImages, "a.png"))
}
