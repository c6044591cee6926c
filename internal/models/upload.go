package models

// UploadedFile describes a stored upload
type UploadedFile struct {
	Filename     string            `json:"filename"`
	OriginalName string            `json:"originalName"`
	MimeType     string            `json:"mimetype"`
	Size         int64             `json:"size"`
	URL          string            `json:"url"`
	Variants     map[string]string `json:"variants,omitempty"`
}
