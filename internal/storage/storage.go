// Package storage keeps uploaded files on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Upload categories map to sub directories of the upload root
const (
	CategoryImages    = "images"
	CategoryDocuments = "documents"
)

// ErrInvalidFileName is returned for names that could escape the category directory
var ErrInvalidFileName = errors.New("invalid file name")

// localStorage stores files under basePath/<category>/<name>
type localStorage struct {
	basePath string
}

// NewLocalStorage creates a new localStorage instance
func NewLocalStorage(basePath string) *localStorage {
	return &localStorage{
		basePath: basePath,
	}
}

// BasePath returns the upload root
func (s *localStorage) BasePath() string {
	return s.basePath
}

// Path resolves the absolute location of a stored file
func (s *localStorage) Path(category, name string) (string, error) {
	if !validCategory(category) {
		return "", fmt.Errorf("unknown upload category %q", category)
	}
	if !SafeFileName(name) {
		return "", ErrInvalidFileName
	}
	return filepath.Join(s.basePath, category, name), nil
}

// Save writes r to a new file and returns its path and size
func (s *localStorage) Save(category, name string, r io.Reader) (string, int64, error) {
	path, err := s.Path(category, name)
	if err != nil {
		return "", 0, err
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}

	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}

	return path, size, nil
}

// Delete removes a stored file
func (s *localStorage) Delete(category, name string) error {
	path, err := s.Path(category, name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// SafeFileName reports whether name is a plain file name without path components
func SafeFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return filepath.Base(name) == name
}

func validCategory(category string) bool {
	return category == CategoryImages || category == CategoryDocuments
}
