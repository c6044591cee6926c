package models

import "time"

// TestimonialStatus is the moderation state of a testimonial
type TestimonialStatus string

const (
	TestimonialPending  TestimonialStatus = "pending"
	TestimonialApproved TestimonialStatus = "approved"
	TestimonialRejected TestimonialStatus = "rejected"
)

// Testimonial represents a client recommendation
type Testimonial struct {
	ID         int               `json:"id"`
	Name       string            `json:"name"`
	Position   string            `json:"position"`
	Company    string            `json:"company"`
	Email      string            `json:"email,omitempty"`
	Content    string            `json:"content"`
	Avatar     string            `json:"avatar"`
	Rating     int               `json:"rating"`
	Status     TestimonialStatus `json:"status"`
	Featured   bool              `json:"featured"`
	SortOrder  int               `json:"sortOrder"`
	ApprovedAt *time.Time        `json:"approvedAt"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// CreateTestimonialRequest is the schema for creating a testimonial
type CreateTestimonialRequest struct {
	Name      string            `json:"name" validate:"required,min=2,max=100"`
	Position  string            `json:"position" validate:"omitempty,max=100"`
	Company   string            `json:"company" validate:"omitempty,max=100"`
	Email     string            `json:"email" validate:"omitempty,email"`
	Content   string            `json:"content" validate:"required,min=10,max=2000"`
	Avatar    string            `json:"avatar" validate:"omitempty,max=500"`
	Rating    int               `json:"rating" validate:"omitempty,min=1,max=5"`
	Status    TestimonialStatus `json:"status" validate:"omitempty,oneof=pending approved rejected"`
	Featured  bool              `json:"featured"`
	SortOrder int               `json:"sortOrder" validate:"gte=0"`
}

// ToTestimonial converts the request into a new entity
func (r *CreateTestimonialRequest) ToTestimonial() *Testimonial {
	status := r.Status
	if status == "" {
		status = TestimonialPending
	}
	rating := r.Rating
	if rating == 0 {
		rating = 5
	}
	return &Testimonial{
		Name:      r.Name,
		Position:  r.Position,
		Company:   r.Company,
		Email:     r.Email,
		Content:   r.Content,
		Avatar:    r.Avatar,
		Rating:    rating,
		Status:    status,
		Featured:  r.Featured,
		SortOrder: r.SortOrder,
	}
}

// UpdateTestimonialRequest is a partial update; nil fields are left untouched
type UpdateTestimonialRequest struct {
	Name      *string            `json:"name" validate:"omitempty,min=2,max=100"`
	Position  *string            `json:"position" validate:"omitempty,max=100"`
	Company   *string            `json:"company" validate:"omitempty,max=100"`
	Email     *string            `json:"email" validate:"omitempty,email"`
	Content   *string            `json:"content" validate:"omitempty,min=10,max=2000"`
	Avatar    *string            `json:"avatar" validate:"omitempty,max=500"`
	Rating    *int               `json:"rating" validate:"omitempty,min=1,max=5"`
	Status    *TestimonialStatus `json:"status" validate:"omitempty,oneof=pending approved rejected"`
	Featured  *bool              `json:"featured"`
	SortOrder *int               `json:"sortOrder" validate:"omitempty,gte=0"`
}

// Apply overwrites the testimonial fields present in the request
func (r *UpdateTestimonialRequest) Apply(t *Testimonial) {
	setIf(&t.Name, r.Name)
	setIf(&t.Position, r.Position)
	setIf(&t.Company, r.Company)
	setIf(&t.Email, r.Email)
	setIf(&t.Content, r.Content)
	setIf(&t.Avatar, r.Avatar)
	setIf(&t.Rating, r.Rating)
	setIf(&t.Status, r.Status)
	setIf(&t.Featured, r.Featured)
	setIf(&t.SortOrder, r.SortOrder)
}

// TestimonialFilter holds testimonial list filters
type TestimonialFilter struct {
	Status   TestimonialStatus
	Featured *bool
	Rating   int
	Search   string
	OrderBy  string
}
