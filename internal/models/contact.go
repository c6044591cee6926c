package models

import "time"

// ContactStatus is the lifecycle of a contact message
type ContactStatus string

const (
	ContactUnread   ContactStatus = "unread"
	ContactRead     ContactStatus = "read"
	ContactReplied  ContactStatus = "replied"
	ContactArchived ContactStatus = "archived"
)

// ContactStatuses lists every contact status in display order
var ContactStatuses = []ContactStatus{ContactUnread, ContactRead, ContactReplied, ContactArchived}

// ContactMessage represents a contact form submission
type ContactMessage struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	Company      string        `json:"company"`
	Subject      string        `json:"subject"`
	Message      string        `json:"message"`
	Status       ContactStatus `json:"status"`
	Replied      bool          `json:"replied"`
	ReplyMessage string        `json:"replyMessage,omitempty"`
	RepliedAt    *time.Time    `json:"repliedAt"`
	ReadAt       *time.Time    `json:"readAt"`
	IPAddress    string        `json:"ipAddress"`
	UserAgent    string        `json:"userAgent"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// ClientInfo identifies the submitter of a request for audit purposes
type ClientInfo struct {
	IPAddress string `json:"ipAddress"`
	UserAgent string `json:"userAgent"`
	Browser   string `json:"browser,omitempty"`
	OS        string `json:"os,omitempty"`
	Device    string `json:"device,omitempty"`
}

// CreateContactRequest is the public contact form schema
type CreateContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" validate:"omitempty,max=30"`
	Company string `json:"company" validate:"omitempty,max=100"`
	Subject string `json:"subject" validate:"required,min=3,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

// UpdateContactStatusRequest changes the status of a message
type UpdateContactStatusRequest struct {
	Status ContactStatus `json:"status" validate:"required,oneof=unread read replied archived"`
}

// ReplyContactRequest is an admin reply to a message
type ReplyContactRequest struct {
	Message string `json:"message" validate:"required,min=1,max=10000"`
	Subject string `json:"subject" validate:"omitempty,max=200"`
}

// ContactFilter holds contact list filters
type ContactFilter struct {
	Status   ContactStatus
	Replied  *bool
	DateFrom *time.Time
	DateTo   *time.Time
	Search   string
	OrderBy  string
}

// ContactStats counts messages per status
type ContactStats struct {
	Total    int                   `json:"total"`
	ByStatus map[ContactStatus]int `json:"byStatus"`
}
