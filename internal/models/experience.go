package models

import "time"

// ExperienceType is the employment type of an experience entry
type ExperienceType string

const (
	ExperienceFullTime   ExperienceType = "full-time"
	ExperiencePartTime   ExperienceType = "part-time"
	ExperienceContract   ExperienceType = "contract"
	ExperienceFreelance  ExperienceType = "freelance"
	ExperienceInternship ExperienceType = "internship"
)

// Experience represents a work history entry
type Experience struct {
	ID           int            `json:"id"`
	Company      string         `json:"company"`
	Position     string         `json:"position"`
	Location     string         `json:"location"`
	Type         ExperienceType `json:"type"`
	StartDate    Date           `json:"startDate"`
	EndDate      *Date          `json:"endDate"`
	Current      bool           `json:"current"`
	Description  string         `json:"description"`
	Achievements []string       `json:"achievements"`
	Technologies []string       `json:"technologies"`
	CompanyLogo  string         `json:"companyLogo"`
	CompanyURL   string         `json:"companyUrl"`
	SortOrder    int            `json:"sortOrder"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// CreateExperienceRequest is the schema for creating an experience entry
type CreateExperienceRequest struct {
	Company      string         `json:"company" validate:"required,max=255"`
	Position     string         `json:"position" validate:"required,max=255"`
	Location     string         `json:"location" validate:"omitempty,max=255"`
	Type         ExperienceType `json:"type" validate:"omitempty,oneof=full-time part-time contract freelance internship"`
	StartDate    *Date          `json:"startDate" validate:"required"`
	EndDate      *Date          `json:"endDate"`
	Current      bool           `json:"current"`
	Description  string         `json:"description" validate:"omitempty,max=5000"`
	Achievements []string       `json:"achievements" validate:"omitempty,dive,required,max=500"`
	Technologies []string       `json:"technologies" validate:"omitempty,dive,required,max=50"`
	CompanyLogo  string         `json:"companyLogo" validate:"omitempty,max=500"`
	CompanyURL   string         `json:"companyUrl" validate:"omitempty,url"`
	SortOrder    int            `json:"sortOrder" validate:"gte=0"`
}

// ToExperience converts the request into a new entity
func (r *CreateExperienceRequest) ToExperience() *Experience {
	expType := r.Type
	if expType == "" {
		expType = ExperienceFullTime
	}
	e := &Experience{
		Company:      r.Company,
		Position:     r.Position,
		Location:     r.Location,
		Type:         expType,
		EndDate:      r.EndDate,
		Current:      r.Current,
		Description:  r.Description,
		Achievements: r.Achievements,
		Technologies: r.Technologies,
		CompanyLogo:  r.CompanyLogo,
		CompanyURL:   r.CompanyURL,
		SortOrder:    r.SortOrder,
	}
	if r.StartDate != nil {
		e.StartDate = *r.StartDate
	}
	return e
}

// UpdateExperienceRequest is a partial update; nil fields are left untouched
type UpdateExperienceRequest struct {
	Company      *string         `json:"company" validate:"omitempty,min=1,max=255"`
	Position     *string         `json:"position" validate:"omitempty,min=1,max=255"`
	Location     *string         `json:"location" validate:"omitempty,max=255"`
	Type         *ExperienceType `json:"type" validate:"omitempty,oneof=full-time part-time contract freelance internship"`
	StartDate    *Date           `json:"startDate"`
	EndDate      *Date           `json:"endDate"`
	Current      *bool           `json:"current"`
	Description  *string         `json:"description" validate:"omitempty,max=5000"`
	Achievements *[]string       `json:"achievements" validate:"omitempty,dive,required,max=500"`
	Technologies *[]string       `json:"technologies" validate:"omitempty,dive,required,max=50"`
	CompanyLogo  *string         `json:"companyLogo" validate:"omitempty,max=500"`
	CompanyURL   *string         `json:"companyUrl" validate:"omitempty,url"`
	SortOrder    *int            `json:"sortOrder" validate:"omitempty,gte=0"`
}

// Apply overwrites the entry fields present in the request
func (r *UpdateExperienceRequest) Apply(e *Experience) {
	setIf(&e.Company, r.Company)
	setIf(&e.Position, r.Position)
	setIf(&e.Location, r.Location)
	setIf(&e.Type, r.Type)
	setIf(&e.StartDate, r.StartDate)
	if r.EndDate != nil {
		end := *r.EndDate
		e.EndDate = &end
	}
	setIf(&e.Current, r.Current)
	setIf(&e.Description, r.Description)
	setIf(&e.Achievements, r.Achievements)
	setIf(&e.Technologies, r.Technologies)
	setIf(&e.CompanyLogo, r.CompanyLogo)
	setIf(&e.CompanyURL, r.CompanyURL)
	setIf(&e.SortOrder, r.SortOrder)
}

// ExperienceFilter holds experience list filters
type ExperienceFilter struct {
	Type    ExperienceType
	Company string
	Current *bool
	Search  string
	OrderBy string
}
