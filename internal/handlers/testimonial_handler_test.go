package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
)

// mockTestimonialService is an in-memory implementation of TestimonialService
type mockTestimonialService struct {
	testimonials map[int]*models.Testimonial
	lastFilter   models.TestimonialFilter
}

func newMockTestimonialService() *mockTestimonialService {
	return &mockTestimonialService{testimonials: map[int]*models.Testimonial{
		1: {ID: 1, Name: "Jane", Content: "Great work on the project", Rating: 5, Status: models.TestimonialApproved},
		2: {ID: 2, Name: "John", Content: "Waiting for moderation", Rating: 4, Status: models.TestimonialPending},
	}}
}

func (m *mockTestimonialService) List(ctx context.Context, filter models.TestimonialFilter, params models.ListParams) (*models.ListResult[models.Testimonial], error) {
	m.lastFilter = filter
	var items []models.Testimonial
	for id := 1; id <= 2; id++ {
		if t, ok := m.testimonials[id]; ok && (filter.Status == "" || t.Status == filter.Status) {
			items = append(items, *t)
		}
	}
	return models.NewListResult(params, items), nil
}

func (m *mockTestimonialService) GetByID(ctx context.Context, id int, approvedOnly bool) (*models.Testimonial, error) {
	t, ok := m.testimonials[id]
	if !ok || (approvedOnly && t.Status != models.TestimonialApproved) {
		return nil, apperrors.NotFound("Testimonial not found")
	}
	return t, nil
}

func (m *mockTestimonialService) Create(ctx context.Context, req *models.CreateTestimonialRequest) (*models.Testimonial, error) {
	t := req.ToTestimonial()
	t.ID = 3
	m.testimonials[t.ID] = t
	return t, nil
}

func (m *mockTestimonialService) Update(ctx context.Context, id int, req *models.UpdateTestimonialRequest) (*models.Testimonial, error) {
	t, ok := m.testimonials[id]
	if !ok {
		return nil, apperrors.NotFound("Testimonial not found")
	}
	req.Apply(t)
	return t, nil
}

func (m *mockTestimonialService) Delete(ctx context.Context, id int) error {
	if _, ok := m.testimonials[id]; !ok {
		return apperrors.NotFound("Testimonial not found")
	}
	delete(m.testimonials, id)
	return nil
}

func (m *mockTestimonialService) Approve(ctx context.Context, id int) (*models.Testimonial, error) {
	t, ok := m.testimonials[id]
	if !ok {
		return nil, apperrors.NotFound("Testimonial not found")
	}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	t.Status = models.TestimonialApproved
	t.ApprovedAt = &now
	return t, nil
}

func (m *mockTestimonialService) Reject(ctx context.Context, id int) (*models.Testimonial, error) {
	t, ok := m.testimonials[id]
	if !ok {
		return nil, apperrors.NotFound("Testimonial not found")
	}
	t.Status = models.TestimonialRejected
	t.ApprovedAt = nil
	return t, nil
}

func (m *mockTestimonialService) ToggleFeatured(ctx context.Context, id int) (*models.Testimonial, error) {
	t, ok := m.testimonials[id]
	if !ok {
		return nil, apperrors.NotFound("Testimonial not found")
	}
	t.Featured = !t.Featured
	return t, nil
}

func TestTestimonialHandler_List_AnonymousOnlyApproved(t *testing.T) {
	svc := newMockTestimonialService()
	router := newTestRouter(NewTestimonialHandler(svc, newTestBase()))

	rec := doRequest(t, router, http.MethodGet, "/testimonials?status=pending&rating=4", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.TestimonialApproved, svc.lastFilter.Status)
	assert.Equal(t, 4, svc.lastFilter.Rating)

	var data struct {
		Testimonials []models.Testimonial `json:"testimonials"`
	}
	decodeData(t, decodeEnvelope(t, rec), &data)
	require.Len(t, data.Testimonials, 1)
	assert.Equal(t, "Jane", data.Testimonials[0].Name)

	rec = doRequest(t, router, http.MethodGet, "/testimonials?status=pending&rating=high", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.TestimonialPending, svc.lastFilter.Status)
	assert.Zero(t, svc.lastFilter.Rating)
}

func TestTestimonialHandler_GetByID(t *testing.T) {
	router := newTestRouter(NewTestimonialHandler(newMockTestimonialService(), newTestBase()))

	assert.Equal(t, http.StatusOK, doRequest(t, router, http.MethodGet, "/testimonials/1", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, router, http.MethodGet, "/testimonials/2", nil, "").Code)
	assert.Equal(t, http.StatusOK, doRequest(t, router, http.MethodGet, "/testimonials/2", nil, adminToken).Code)
}

func TestTestimonialHandler_Moderation(t *testing.T) {
	svc := newMockTestimonialService()
	router := newTestRouter(NewTestimonialHandler(svc, newTestBase()))

	rec := doRequest(t, router, http.MethodPatch, "/testimonials/2/approve", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodPatch, "/testimonials/2/approve", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Testimonial models.Testimonial `json:"testimonial"`
	}
	decodeData(t, decodeEnvelope(t, rec), &data)
	assert.Equal(t, models.TestimonialApproved, data.Testimonial.Status)
	assert.NotNil(t, data.Testimonial.ApprovedAt)

	rec = doRequest(t, router, http.MethodPatch, "/testimonials/2/reject", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, decodeEnvelope(t, rec), &data)
	assert.Equal(t, models.TestimonialRejected, data.Testimonial.Status)
	assert.Nil(t, data.Testimonial.ApprovedAt)

	rec = doRequest(t, router, http.MethodPatch, "/testimonials/1/featured", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.testimonials[1].Featured)

	rec = doRequest(t, router, http.MethodPatch, "/testimonials/9/approve", nil, adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTestimonialHandler_CRUD(t *testing.T) {
	svc := newMockTestimonialService()
	router := newTestRouter(NewTestimonialHandler(svc, newTestBase()))

	rec := doRequest(t, router, http.MethodPost, "/testimonials", map[string]any{
		"name":    "Ann",
		"content": "Delivered ahead of schedule",
	}, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.TestimonialPending, svc.testimonials[3].Status)
	assert.Equal(t, 5, svc.testimonials[3].Rating)

	rec = doRequest(t, router, http.MethodPut, "/testimonials/3", map[string]any{"rating": 3}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, svc.testimonials[3].Rating)

	assert.Equal(t, http.StatusOK, doRequest(t, router, http.MethodDelete, "/testimonials/3", nil, adminToken).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, router, http.MethodDelete, "/testimonials/3", nil, adminToken).Code)
}
