package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/middleware"
	"github.com/portfoliocms/backend/internal/models"
)

// mockContactService is an in-memory implementation of ContactService
type mockContactService struct {
	messages   map[int]*models.ContactMessage
	client     models.ClientInfo
	lastFilter models.ContactFilter
	replies    []string
}

func newMockContactService() *mockContactService {
	return &mockContactService{messages: map[int]*models.ContactMessage{
		1: {ID: 1, Name: "Jane", Email: "jane@example.com", Subject: "Hi", Message: "Let's work together", Status: models.ContactUnread},
	}}
}

func (m *mockContactService) Submit(ctx context.Context, req *models.CreateContactRequest, client models.ClientInfo) (*models.ContactMessage, error) {
	m.client = client
	msg := &models.ContactMessage{
		ID:        len(m.messages) + 1,
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		Status:    models.ContactUnread,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	}
	m.messages[msg.ID] = msg
	return msg, nil
}

func (m *mockContactService) List(ctx context.Context, filter models.ContactFilter, params models.ListParams) (*models.ListResult[models.ContactMessage], error) {
	m.lastFilter = filter
	var items []models.ContactMessage
	for _, msg := range m.messages {
		items = append(items, *msg)
	}
	return models.NewListResult(params, items), nil
}

func (m *mockContactService) GetByID(ctx context.Context, id int) (*models.ContactMessage, error) {
	msg, ok := m.messages[id]
	if !ok {
		return nil, apperrors.NotFound("Contact message not found")
	}
	if msg.Status == models.ContactUnread {
		msg.Status = models.ContactRead
	}
	return msg, nil
}

func (m *mockContactService) UpdateStatus(ctx context.Context, id int, req *models.UpdateContactStatusRequest) (*models.ContactMessage, error) {
	msg, ok := m.messages[id]
	if !ok {
		return nil, apperrors.NotFound("Contact message not found")
	}
	msg.Status = req.Status
	return msg, nil
}

func (m *mockContactService) Archive(ctx context.Context, id int) (*models.ContactMessage, error) {
	return m.UpdateStatus(ctx, id, &models.UpdateContactStatusRequest{Status: models.ContactArchived})
}

func (m *mockContactService) Reply(ctx context.Context, id int, req *models.ReplyContactRequest) (*models.ContactMessage, error) {
	msg, ok := m.messages[id]
	if !ok {
		return nil, apperrors.NotFound("Contact message not found")
	}
	m.replies = append(m.replies, req.Message)
	msg.Status = models.ContactReplied
	msg.Replied = true
	msg.ReplyMessage = req.Message
	return msg, nil
}

func (m *mockContactService) Delete(ctx context.Context, id int) error {
	if _, ok := m.messages[id]; !ok {
		return apperrors.NotFound("Contact message not found")
	}
	delete(m.messages, id)
	return nil
}

func (m *mockContactService) Stats(ctx context.Context) (*models.ContactStats, error) {
	return &models.ContactStats{Total: len(m.messages), ByStatus: map[models.ContactStatus]int{models.ContactUnread: len(m.messages)}}, nil
}

var validContactBody = map[string]string{
	"name":    "Bob",
	"email":   "bob@example.com",
	"subject": "Project",
	"message": "I would like to hire you for a project",
}

func TestContactHandler_Submit_CapturesClientInfo(t *testing.T) {
	svc := newMockContactService()
	router := newTestRouter(NewContactHandler(svc, newTestBase()))

	req := newJSONRequest(t, http.MethodPost, "/contact", validContactBody)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	rec := serve(router, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, decodeEnvelope(t, rec).Success)
	assert.Equal(t, "203.0.113.7", svc.client.IPAddress)
	assert.Contains(t, svc.client.UserAgent, "Chrome")
}

func TestContactHandler_Submit_ClientInfoFromMiddleware(t *testing.T) {
	svc := newMockContactService()
	router := newTestRouter(NewContactHandler(svc, newTestBase()))
	wrapped := middleware.ClientInfo(router)

	req := newJSONRequest(t, http.MethodPost, "/contact", validContactBody)
	req.Header.Set("X-Real-IP", "198.51.100.4")
	rec := serve(wrapped, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "198.51.100.4", svc.client.IPAddress)
}

func TestContactHandler_Submit_RateLimited(t *testing.T) {
	router := newTestRouter(NewContactHandler(newMockContactService(), newTestBase()))

	for i := 0; i < ContactSubmits; i++ {
		rec := doRequest(t, router, http.MethodPost, "/contact", validContactBody, "")
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doRequest(t, router, http.MethodPost, "/contact", validContactBody, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, middleware.MsgTooManyContacts, env.Message)
}

func TestContactHandler_AdminOnly(t *testing.T) {
	router := newTestRouter(NewContactHandler(newMockContactService(), newTestBase()))

	for _, path := range []string{"/contact", "/contact/1", "/contact/stats"} {
		assert.Equal(t, http.StatusUnauthorized, doRequest(t, router, http.MethodGet, path, nil, "").Code, path)
		assert.Equal(t, http.StatusForbidden, doRequest(t, router, http.MethodGet, path, nil, viewerToken).Code, path)
	}
}

func TestContactHandler_List_Filters(t *testing.T) {
	svc := newMockContactService()
	router := newTestRouter(NewContactHandler(svc, newTestBase()))

	rec := doRequest(t, router, http.MethodGet, "/contact?status=unread&replied=false&dateFrom=2024-01-01&dateTo=2024-01-31&search=jane", nil, adminToken)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ContactUnread, svc.lastFilter.Status)
	require.NotNil(t, svc.lastFilter.Replied)
	assert.False(t, *svc.lastFilter.Replied)
	require.NotNil(t, svc.lastFilter.DateFrom)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *svc.lastFilter.DateFrom)
	require.NotNil(t, svc.lastFilter.DateTo)
	assert.Equal(t, 31, svc.lastFilter.DateTo.Day())

	var data struct {
		Contacts []models.ContactMessage `json:"contacts"`
	}
	decodeData(t, decodeEnvelope(t, rec), &data)
	assert.Len(t, data.Contacts, 1)

	rec = doRequest(t, router, http.MethodGet, "/contact?dateFrom=yesterday", nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "dateFrom", env.Errors[0].Field)
}

func TestContactHandler_ReadAndTransitions(t *testing.T) {
	svc := newMockContactService()
	router := newTestRouter(NewContactHandler(svc, newTestBase()))

	rec := doRequest(t, router, http.MethodGet, "/contact/1", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ContactRead, svc.messages[1].Status)

	rec = doRequest(t, router, http.MethodPatch, "/contact/1/status", map[string]string{"status": "unread"}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ContactUnread, svc.messages[1].Status)

	rec = doRequest(t, router, http.MethodPost, "/contact/1/reply", map[string]string{"message": "Thanks, let's talk"}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.messages[1].Replied)
	assert.Equal(t, []string{"Thanks, let's talk"}, svc.replies)

	rec = doRequest(t, router, http.MethodPatch, "/contact/1/archive", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ContactArchived, svc.messages[1].Status)

	rec = doRequest(t, router, http.MethodGet, "/contact/stats", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		Stats models.ContactStats `json:"stats"`
	}
	decodeData(t, decodeEnvelope(t, rec), &stats)
	assert.Equal(t, 1, stats.Stats.Total)

	assert.Equal(t, http.StatusOK, doRequest(t, router, http.MethodDelete, "/contact/1", nil, adminToken).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, router, http.MethodDelete, "/contact/1", nil, adminToken).Code)
}
