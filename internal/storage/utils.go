package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateFileName builds <field>-<unix millis>-<uuid><ext> for a new upload.
// The extension is taken from the client file name and lower-cased.
func GenerateFileName(field, originalName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s-%d-%s%s", field, now.UnixMilli(), uuid.New().String(), ext)
}

// PublicURL returns the static URL of a stored file
func PublicURL(category, name string) string {
	return "/uploads/" + category + "/" + name
}
