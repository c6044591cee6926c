package models

import "time"

// BlogPost represents a blog article
type BlogPost struct {
	ID            int           `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Excerpt       string        `json:"excerpt"`
	Content       string        `json:"content"`
	ContentHTML   string        `json:"contentHtml,omitempty"`
	FeaturedImage string        `json:"featuredImage"`
	Category      string        `json:"category"`
	Tags          []string      `json:"tags"`
	Status        PublishStatus `json:"status"`
	Featured      bool          `json:"featured"`
	PublishDate   *time.Time    `json:"publishDate"`
	ReadTime      int           `json:"readTime"`
	Views         int           `json:"views"`
	SortOrder     int           `json:"sortOrder"`
	AuthorID      *int          `json:"authorId,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// CreateBlogPostRequest is the schema for creating a blog post
type CreateBlogPostRequest struct {
	Title         string        `json:"title" validate:"required,max=255"`
	Slug          string        `json:"slug" validate:"omitempty,slug,max=255"`
	Excerpt       string        `json:"excerpt" validate:"omitempty,max=500"`
	Content       string        `json:"content" validate:"required"`
	FeaturedImage string        `json:"featuredImage" validate:"omitempty,max=500"`
	Category      string        `json:"category" validate:"omitempty,max=100"`
	Tags          []string      `json:"tags" validate:"omitempty,dive,required,max=50"`
	Status        PublishStatus `json:"status" validate:"omitempty,oneof=draft published"`
	Featured      bool          `json:"featured"`
	PublishDate   *time.Time    `json:"publishDate"`
	SortOrder     int           `json:"sortOrder" validate:"gte=0"`
}

// ToPost converts the request into a new entity
func (r *CreateBlogPostRequest) ToPost() *BlogPost {
	status := r.Status
	if status == "" {
		status = StatusDraft
	}
	return &BlogPost{
		Title:         r.Title,
		Slug:          r.Slug,
		Excerpt:       r.Excerpt,
		Content:       r.Content,
		FeaturedImage: r.FeaturedImage,
		Category:      r.Category,
		Tags:          r.Tags,
		Status:        status,
		Featured:      r.Featured,
		PublishDate:   r.PublishDate,
		SortOrder:     r.SortOrder,
	}
}

// UpdateBlogPostRequest is a partial update; nil fields are left untouched
type UpdateBlogPostRequest struct {
	Title         *string        `json:"title" validate:"omitempty,min=1,max=255"`
	Slug          *string        `json:"slug" validate:"omitempty,slug,max=255"`
	Excerpt       *string        `json:"excerpt" validate:"omitempty,max=500"`
	Content       *string        `json:"content" validate:"omitempty,min=1"`
	FeaturedImage *string        `json:"featuredImage" validate:"omitempty,max=500"`
	Category      *string        `json:"category" validate:"omitempty,max=100"`
	Tags          *[]string      `json:"tags" validate:"omitempty,dive,required,max=50"`
	Status        *PublishStatus `json:"status" validate:"omitempty,oneof=draft published"`
	Featured      *bool          `json:"featured"`
	PublishDate   *time.Time     `json:"publishDate"`
	SortOrder     *int           `json:"sortOrder" validate:"omitempty,gte=0"`
}

// Apply overwrites the post fields present in the request
func (r *UpdateBlogPostRequest) Apply(p *BlogPost) {
	setIf(&p.Title, r.Title)
	setIf(&p.Slug, r.Slug)
	setIf(&p.Excerpt, r.Excerpt)
	setIf(&p.Content, r.Content)
	setIf(&p.FeaturedImage, r.FeaturedImage)
	setIf(&p.Category, r.Category)
	setIf(&p.Tags, r.Tags)
	setIf(&p.Status, r.Status)
	setIf(&p.Featured, r.Featured)
	if r.PublishDate != nil {
		d := *r.PublishDate
		p.PublishDate = &d
	}
	setIf(&p.SortOrder, r.SortOrder)
}

// BlogFilter holds blog list filters
type BlogFilter struct {
	Status   PublishStatus
	Category string
	Tag      string
	Featured *bool
	Search   string
	OrderBy  string
}
