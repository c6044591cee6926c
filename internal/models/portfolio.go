package models

import "time"

// PublishStatus is the draft/published lifecycle shared by portfolio items and blog posts
type PublishStatus string

const (
	StatusDraft     PublishStatus = "draft"
	StatusPublished PublishStatus = "published"
)

// Valid reports whether s is a known lifecycle value
func (s PublishStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// PortfolioItem represents a portfolio project
type PortfolioItem struct {
	ID           int           `json:"id"`
	Title        string        `json:"title"`
	Slug         string        `json:"slug"`
	Description  string        `json:"description"`
	Content      string        `json:"content"`
	Category     string        `json:"category"`
	Technologies []string      `json:"technologies"`
	Images       []string      `json:"images"`
	Thumbnail    string        `json:"thumbnail"`
	LiveURL      string        `json:"liveUrl"`
	GithubURL    string        `json:"githubUrl"`
	Status       PublishStatus `json:"status"`
	Featured     bool          `json:"featured"`
	SortOrder    int           `json:"sortOrder"`
	Views        int           `json:"views"`
	AuthorID     *int          `json:"authorId,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// CreatePortfolioRequest is the schema for creating a portfolio item
type CreatePortfolioRequest struct {
	Title        string        `json:"title" validate:"required,max=255"`
	Slug         string        `json:"slug" validate:"omitempty,slug,max=255"`
	Description  string        `json:"description" validate:"required,max=1000"`
	Content      string        `json:"content"`
	Category     string        `json:"category" validate:"required,max=100"`
	Technologies []string      `json:"technologies" validate:"omitempty,dive,required,max=50"`
	Images       []string      `json:"images" validate:"omitempty,dive,required,max=500"`
	Thumbnail    string        `json:"thumbnail" validate:"omitempty,max=500"`
	LiveURL      string        `json:"liveUrl" validate:"omitempty,url"`
	GithubURL    string        `json:"githubUrl" validate:"omitempty,url"`
	Status       PublishStatus `json:"status" validate:"omitempty,oneof=draft published"`
	Featured     bool          `json:"featured"`
	SortOrder    int           `json:"sortOrder" validate:"gte=0"`
}

// ToItem converts the request into a new entity
func (r *CreatePortfolioRequest) ToItem() *PortfolioItem {
	status := r.Status
	if status == "" {
		status = StatusDraft
	}
	return &PortfolioItem{
		Title:        r.Title,
		Slug:         r.Slug,
		Description:  r.Description,
		Content:      r.Content,
		Category:     r.Category,
		Technologies: r.Technologies,
		Images:       r.Images,
		Thumbnail:    r.Thumbnail,
		LiveURL:      r.LiveURL,
		GithubURL:    r.GithubURL,
		Status:       status,
		Featured:     r.Featured,
		SortOrder:    r.SortOrder,
	}
}

// UpdatePortfolioRequest is a partial update; nil fields are left untouched
type UpdatePortfolioRequest struct {
	Title        *string        `json:"title" validate:"omitempty,min=1,max=255"`
	Slug         *string        `json:"slug" validate:"omitempty,slug,max=255"`
	Description  *string        `json:"description" validate:"omitempty,min=1,max=1000"`
	Content      *string        `json:"content"`
	Category     *string        `json:"category" validate:"omitempty,min=1,max=100"`
	Technologies *[]string      `json:"technologies" validate:"omitempty,dive,required,max=50"`
	Images       *[]string      `json:"images" validate:"omitempty,dive,required,max=500"`
	Thumbnail    *string        `json:"thumbnail" validate:"omitempty,max=500"`
	LiveURL      *string        `json:"liveUrl" validate:"omitempty,url"`
	GithubURL    *string        `json:"githubUrl" validate:"omitempty,url"`
	Status       *PublishStatus `json:"status" validate:"omitempty,oneof=draft published"`
	Featured     *bool          `json:"featured"`
	SortOrder    *int           `json:"sortOrder" validate:"omitempty,gte=0"`
}

// Apply overwrites the item fields present in the request
func (r *UpdatePortfolioRequest) Apply(item *PortfolioItem) {
	setIf(&item.Title, r.Title)
	setIf(&item.Slug, r.Slug)
	setIf(&item.Description, r.Description)
	setIf(&item.Content, r.Content)
	setIf(&item.Category, r.Category)
	setIf(&item.Technologies, r.Technologies)
	setIf(&item.Images, r.Images)
	setIf(&item.Thumbnail, r.Thumbnail)
	setIf(&item.LiveURL, r.LiveURL)
	setIf(&item.GithubURL, r.GithubURL)
	setIf(&item.Status, r.Status)
	setIf(&item.Featured, r.Featured)
	setIf(&item.SortOrder, r.SortOrder)
}

// PortfolioFilter holds portfolio list filters
type PortfolioFilter struct {
	Status   PublishStatus
	Category string
	Featured *bool
	Search   string
	OrderBy  string
}

// setIf copies *src into *dst when src is present
func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
