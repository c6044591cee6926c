package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/imaging"
	"github.com/portfoliocms/backend/internal/models"
	"github.com/portfoliocms/backend/internal/storage"
	"go.uber.org/zap"
)

// FileStorage persists uploaded files by category
type FileStorage interface {
	// Path resolves the location of a stored file, rejecting unsafe names.
	Path(category, name string) (string, error)
	// Save writes a new file and returns its path and size.
	Save(category, name string, r io.Reader) (string, int64, error)
	Delete(category, name string) error
}

// ImageProcessor derives resized variants of stored images
type ImageProcessor interface {
	CreateVariants(sourcePath string) ([]string, error)
	DeleteWithVariants(sourcePath string)
}

// Upload error codes
const (
	CodeFileTooLarge    = "FILE_TOO_LARGE"
	CodeTooManyFiles    = "TOO_MANY_FILES"
	CodeUnexpectedField = "UNEXPECTED_FIELD"
	CodeInvalidFileType = "INVALID_FILE_TYPE"
)

// Upload form fields
const (
	FieldImage    = "image"
	FieldImages   = "images"
	FieldDocument = "document"
)

// imageTypes and documentTypes map accepted MIME types to a fallback extension
var (
	imageTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/jpg":  ".jpg",
		"image/png":  ".png",
		"image/gif":  ".gif",
		"image/webp": ".webp",
	}
	documentTypes = map[string]string{
		"application/pdf":    ".pdf",
		"application/msword": ".doc",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
		"text/plain": ".txt",
	}
)

type uploadService struct {
	storage     FileStorage
	processor   ImageProcessor
	maxFileSize int64
	maxFiles    int
	logger      *zap.Logger
	now         func() time.Time
}

// NewUploadService creates a new upload service
func NewUploadService(fileStorage FileStorage, processor ImageProcessor, maxFileSize int64, maxFiles int, logger *zap.Logger) *uploadService {
	return &uploadService{
		storage:     fileStorage,
		processor:   processor,
		maxFileSize: maxFileSize,
		maxFiles:    maxFiles,
		logger:      logger,
		now:         time.Now,
	}
}

// MaxFileSize returns the per file size limit in bytes
func (s *uploadService) MaxFileSize() int64 {
	return s.maxFileSize
}

// MaxFiles returns the number of files accepted per request
func (s *uploadService) MaxFiles() int {
	return s.maxFiles
}

// UploadImages stores the images sent in field and creates their variants.
// "single" restricts the request to exactly one file.
func (s *uploadService) UploadImages(ctx context.Context, form *multipart.Form, field string, single bool) ([]models.UploadedFile, error) {
	limit := s.maxFiles
	if single {
		limit = 1
	}
	headers, err := s.collectFiles(form, field, limit)
	if err != nil {
		return nil, err
	}

	uploaded := make([]models.UploadedFile, 0, len(headers))
	var paths []string
	for _, fh := range headers {
		file, path, err := s.storeImage(field, fh)
		if err != nil {
			// Roll back the images stored before the failure
			for _, p := range paths {
				s.processor.DeleteWithVariants(p)
			}
			return nil, err
		}
		paths = append(paths, path)
		uploaded = append(uploaded, *file)
	}

	s.logger.Info("images uploaded", zap.Int("count", len(uploaded)), zap.String("field", field))
	return uploaded, nil
}

// UploadDocument stores a single document
func (s *uploadService) UploadDocument(ctx context.Context, form *multipart.Form, field string) (*models.UploadedFile, error) {
	headers, err := s.collectFiles(form, field, 1)
	if err != nil {
		return nil, err
	}
	fh := headers[0]

	mimeType, err := detectType(fh)
	if err != nil {
		return nil, err
	}
	ext, ok := documentTypes[mimeType]
	if !ok {
		return nil, invalidType(mimeType, "Only PDF, Word and text documents are allowed")
	}

	file, _, err := s.save(storage.CategoryDocuments, field, fh, mimeType, ext)
	if err != nil {
		return nil, err
	}
	s.logger.Info("document uploaded", zap.String("filename", file.Filename))
	return file, nil
}

// DeleteImage removes an image and its variants
func (s *uploadService) DeleteImage(ctx context.Context, filename string) error {
	path, err := s.existingPath(storage.CategoryImages, filename)
	if err != nil {
		return err
	}
	s.processor.DeleteWithVariants(path)
	s.logger.Info("image deleted", zap.String("filename", filename))
	return nil
}

// DeleteDocument removes a document
func (s *uploadService) DeleteDocument(ctx context.Context, filename string) error {
	if _, err := s.existingPath(storage.CategoryDocuments, filename); err != nil {
		return err
	}
	if err := s.storage.Delete(storage.CategoryDocuments, filename); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperrors.NotFound("File not found")
		}
		return apperrors.Upstream("failed to delete file", err)
	}
	s.logger.Info("document deleted", zap.String("filename", filename))
	return nil
}

// collectFiles returns the files of the expected field and enforces the field, count and size limits
func (s *uploadService) collectFiles(form *multipart.Form, field string, limit int) ([]*multipart.FileHeader, error) {
	if form == nil {
		return nil, apperrors.Validation("No file uploaded")
	}
	for name := range form.File {
		if name != field {
			return nil, apperrors.WithCode(CodeUnexpectedField, fmt.Sprintf("Unexpected field: %s", name))
		}
	}

	headers := form.File[field]
	if len(headers) == 0 {
		return nil, apperrors.Validation("No file uploaded")
	}
	if len(headers) > limit {
		return nil, apperrors.WithCode(CodeTooManyFiles, fmt.Sprintf("Too many files. Maximum is %d", limit))
	}
	for _, fh := range headers {
		if fh.Size > s.maxFileSize {
			return nil, FileTooLarge(s.maxFileSize)
		}
	}
	return headers, nil
}

func (s *uploadService) storeImage(field string, fh *multipart.FileHeader) (*models.UploadedFile, string, error) {
	mimeType, err := detectType(fh)
	if err != nil {
		return nil, "", err
	}
	ext, ok := imageTypes[mimeType]
	if !ok {
		return nil, "", invalidType(mimeType, "Only images are allowed")
	}

	file, path, err := s.save(storage.CategoryImages, field, fh, mimeType, ext)
	if err != nil {
		return nil, "", err
	}

	variantPaths, err := s.processor.CreateVariants(path)
	if err != nil {
		s.logger.Warn("failed to process image", zap.String("filename", file.Filename), zap.Error(err))
		s.processor.DeleteWithVariants(path)
		return nil, "", apperrors.WithCode(CodeInvalidFileType, "Invalid image file")
	}

	file.Variants = make(map[string]string, len(variantPaths))
	for i, v := range imaging.Variants {
		if i < len(variantPaths) {
			file.Variants[strings.TrimPrefix(v.Suffix, "-")] = storage.PublicURL(storage.CategoryImages, imaging.VariantName(file.Filename, v))
		}
	}
	return file, path, nil
}

func (s *uploadService) save(category, field string, fh *multipart.FileHeader, mimeType, fallbackExt string) (*models.UploadedFile, string, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, "", apperrors.Upstream("failed to open uploaded file", err)
	}
	defer src.Close()

	original := fh.Filename
	if filepath.Ext(original) == "" {
		original += fallbackExt
	}
	name := storage.GenerateFileName(field, original, s.now())

	// Guard against a client that lies about the part size
	path, size, err := s.storage.Save(category, name, io.LimitReader(src, s.maxFileSize+1))
	if err != nil {
		return nil, "", apperrors.Upstream("failed to save file", err)
	}
	if size > s.maxFileSize {
		s.storage.Delete(category, name)
		return nil, "", FileTooLarge(s.maxFileSize)
	}

	return &models.UploadedFile{
		Filename:     name,
		OriginalName: fh.Filename,
		MimeType:     mimeType,
		Size:         size,
		URL:          storage.PublicURL(category, name),
	}, path, nil
}

func (s *uploadService) existingPath(category, filename string) (string, error) {
	path, err := s.storage.Path(category, filename)
	if err != nil {
		return "", apperrors.Validation("Invalid filename")
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperrors.NotFound("File not found")
		}
		return "", apperrors.Upstream("failed to stat file", err)
	}
	return path, nil
}

// FileTooLarge is the error for a file over the size limit
func FileTooLarge(maxSize int64) *apperrors.Error {
	return apperrors.WithCode(CodeFileTooLarge, fmt.Sprintf("File too large. Maximum size is %s", humanSize(maxSize)))
}

func invalidType(mimeType, hint string) *apperrors.Error {
	if mimeType == "" {
		mimeType = "unknown"
	}
	return apperrors.WithCode(CodeInvalidFileType, fmt.Sprintf("Invalid file type: %s. %s", mimeType, hint))
}

// detectType uses the declared content type and sniffs the content when none was sent
func detectType(fh *multipart.FileHeader) (string, error) {
	declared := strings.ToLower(strings.TrimSpace(fh.Header.Get("Content-Type")))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared, nil
	}

	f, err := fh.Open()
	if err != nil {
		return "", apperrors.Upstream("failed to open uploaded file", err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", apperrors.Upstream("failed to read uploaded file", err)
	}
	sniffed := http.DetectContentType(buf[:n])
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	return sniffed, nil
}

func humanSize(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	if n >= mb {
		return fmt.Sprintf("%.1fMB", float64(n)/mb)
	}
	return fmt.Sprintf("%dKB", n/1024)
}
