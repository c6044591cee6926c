package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// mockContactRepository is an in-memory implementation of ContactRepository
type mockContactRepository struct {
	messages map[int]*models.ContactMessage
	nextID   int
	err      error
}

func newMockContactRepository(messages ...*models.ContactMessage) *mockContactRepository {
	m := &mockContactRepository{messages: map[int]*models.ContactMessage{}, nextID: 1}
	for _, msg := range messages {
		m.messages[msg.ID] = msg
		m.nextID = msg.ID + 1
	}
	return m
}

func (m *mockContactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	if m.err != nil {
		return m.err
	}
	msg.ID = m.nextID
	m.nextID++
	copied := *msg
	m.messages[msg.ID] = &copied
	return nil
}

func (m *mockContactRepository) GetByID(ctx context.Context, id int) (*models.ContactMessage, error) {
	msg, ok := m.messages[id]
	if !ok {
		return nil, apperrors.NotFound("Contact message not found")
	}
	copied := *msg
	return &copied, nil
}

func (m *mockContactRepository) List(ctx context.Context, filter models.ContactFilter, params models.ListParams) ([]models.ContactMessage, error) {
	return nil, m.err
}

func (m *mockContactRepository) MarkRead(ctx context.Context, id int, at time.Time) error {
	if m.err != nil {
		return m.err
	}
	msg := m.messages[id]
	if msg.Status == models.ContactUnread {
		msg.Status = models.ContactRead
		msg.ReadAt = &at
	}
	return nil
}

func (m *mockContactRepository) UpdateStatus(ctx context.Context, id int, status models.ContactStatus) error {
	msg, ok := m.messages[id]
	if !ok {
		return apperrors.NotFound("Contact message not found")
	}
	msg.Status = status
	return nil
}

func (m *mockContactRepository) SaveReply(ctx context.Context, id int, reply string, at time.Time) error {
	msg, ok := m.messages[id]
	if !ok {
		return apperrors.NotFound("Contact message not found")
	}
	msg.Status = models.ContactReplied
	msg.Replied = true
	msg.ReplyMessage = reply
	msg.RepliedAt = &at
	return nil
}

func (m *mockContactRepository) Delete(ctx context.Context, id int) error {
	if _, ok := m.messages[id]; !ok {
		return apperrors.NotFound("Contact message not found")
	}
	delete(m.messages, id)
	return nil
}

func (m *mockContactRepository) Stats(ctx context.Context) (*models.ContactStats, error) {
	return &models.ContactStats{Total: len(m.messages), ByStatus: map[models.ContactStatus]int{}}, nil
}

type sentEmail struct {
	to, subject, body string
}

// mockMailer records sent emails
type mockMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (m *mockMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{to, subject, htmlBody})
	return nil
}

func validContactRequest() *models.CreateContactRequest {
	return &models.CreateContactRequest{
		Name:    "John Smith",
		Email:   "John@Example.com",
		Subject: "Project inquiry",
		Message: "I would like to talk about a <b>new</b> project.",
	}
}

func TestContactService_Submit(t *testing.T) {
	repo := newMockContactRepository()
	mailer := &mockMailer{}
	svc := NewContactService(repo, mailer, "owner@portfolio.com", zap.NewNop())
	client := models.ClientInfo{IPAddress: "203.0.113.9", UserAgent: "Mozilla/5.0"}

	msg, err := svc.Submit(context.Background(), validContactRequest(), client)
	require.NoError(t, err)
	svc.Wait()

	assert.Equal(t, models.ContactUnread, msg.Status)
	assert.Equal(t, "john@example.com", msg.Email)
	assert.Equal(t, "I would like to talk about a new project.", msg.Message)
	assert.Equal(t, "203.0.113.9", msg.IPAddress)
	assert.Equal(t, "Mozilla/5.0", msg.UserAgent)

	require.Len(t, mailer.sent, 2)
	recipients := []string{mailer.sent[0].to, mailer.sent[1].to}
	assert.ElementsMatch(t, []string{"owner@portfolio.com", "john@example.com"}, recipients)
	for _, e := range mailer.sent {
		if e.to == "owner@portfolio.com" {
			assert.Contains(t, e.subject, "Project inquiry")
			assert.Contains(t, e.body, "203.0.113.9")
		}
	}
}

func TestContactService_Submit_MailFailureDoesNotFail(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	repo := newMockContactRepository()
	mailer := &mockMailer{err: errors.New("smtp down")}
	svc := NewContactService(repo, mailer, "owner@portfolio.com", zap.New(core))

	msg, err := svc.Submit(context.Background(), validContactRequest(), models.ClientInfo{})
	require.NoError(t, err)
	svc.Wait()

	assert.Equal(t, 1, msg.ID)
	assert.Equal(t, 2, logs.FilterMessage("failed to send email").Len())
}

func TestContactService_Submit_NoAdminEmail(t *testing.T) {
	mailer := &mockMailer{}
	svc := NewContactService(newMockContactRepository(), mailer, "", zap.NewNop())

	_, err := svc.Submit(context.Background(), validContactRequest(), models.ClientInfo{})
	require.NoError(t, err)
	svc.Wait()

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "john@example.com", mailer.sent[0].to)
}

func TestContactService_Submit_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *models.CreateContactRequest)
	}{
		{name: "message only markup", modify: func(r *models.CreateContactRequest) { r.Message = "<p></p><script>x</script>" }},
		{name: "short message", modify: func(r *models.CreateContactRequest) { r.Message = "Hi" }},
		{name: "bad email", modify: func(r *models.CreateContactRequest) { r.Email = "nope" }},
		{name: "short subject", modify: func(r *models.CreateContactRequest) { r.Subject = "Hi" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockContactRepository()
			mailer := &mockMailer{}
			svc := NewContactService(repo, mailer, "owner@portfolio.com", zap.NewNop())
			req := validContactRequest()
			tt.modify(req)

			_, err := svc.Submit(context.Background(), req, models.ClientInfo{})
			svc.Wait()

			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			assert.Empty(t, repo.messages)
			assert.Empty(t, mailer.sent)
		})
	}
}

func TestContactService_GetByID_MarksRead(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	repo := newMockContactRepository(
		&models.ContactMessage{ID: 1, Status: models.ContactUnread},
		&models.ContactMessage{ID: 2, Status: models.ContactArchived},
	)
	svc := NewContactService(repo, &mockMailer{}, "", zap.NewNop())
	svc.now = func() time.Time { return fixed }

	msg, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.ContactRead, msg.Status)
	assert.Equal(t, &fixed, msg.ReadAt)

	msg, err = svc.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, models.ContactArchived, msg.Status)
	assert.Nil(t, msg.ReadAt)
}

func TestContactService_Reply(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

	t.Run("stores reply and emails sender", func(t *testing.T) {
		repo := newMockContactRepository(&models.ContactMessage{ID: 1, Name: "John", Email: "john@example.com", Subject: "Hello", Status: models.ContactRead})
		mailer := &mockMailer{}
		svc := NewContactService(repo, mailer, "", zap.NewNop())
		svc.now = func() time.Time { return fixed }

		msg, err := svc.Reply(context.Background(), 1, &models.ReplyContactRequest{Message: "Thanks, let's talk."})
		require.NoError(t, err)
		svc.Wait()

		assert.Equal(t, models.ContactReplied, msg.Status)
		assert.True(t, msg.Replied)
		assert.Equal(t, "Thanks, let's talk.", msg.ReplyMessage)
		assert.Equal(t, &fixed, msg.RepliedAt)
		require.Len(t, mailer.sent, 1)
		assert.Equal(t, "Re: Hello", mailer.sent[0].subject)
		assert.Contains(t, mailer.sent[0].body, "Thanks, let&#39;s talk.")
	})

	t.Run("send failure still succeeds", func(t *testing.T) {
		repo := newMockContactRepository(&models.ContactMessage{ID: 1, Email: "john@example.com", Subject: "Hello"})
		svc := NewContactService(repo, &mockMailer{err: errors.New("smtp down")}, "", zap.NewNop())

		msg, err := svc.Reply(context.Background(), 1, &models.ReplyContactRequest{Message: "Reply", Subject: "Custom"})
		svc.Wait()

		require.NoError(t, err)
		assert.True(t, msg.Replied)
	})

	t.Run("unknown message", func(t *testing.T) {
		svc := NewContactService(newMockContactRepository(), &mockMailer{}, "", zap.NewNop())
		_, err := svc.Reply(context.Background(), 5, &models.ReplyContactRequest{Message: "Reply"})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("empty reply", func(t *testing.T) {
		svc := NewContactService(newMockContactRepository(&models.ContactMessage{ID: 1}), &mockMailer{}, "", zap.NewNop())
		_, err := svc.Reply(context.Background(), 1, &models.ReplyContactRequest{Message: "   "})
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})
}

func TestContactService_Archive(t *testing.T) {
	repo := newMockContactRepository(&models.ContactMessage{ID: 1, Status: models.ContactRead})
	svc := NewContactService(repo, &mockMailer{}, "", zap.NewNop())

	msg, err := svc.Archive(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, models.ContactArchived, msg.Status)
}

func TestContactService_UpdateStatus_Invalid(t *testing.T) {
	svc := NewContactService(newMockContactRepository(&models.ContactMessage{ID: 1}), &mockMailer{}, "", zap.NewNop())

	_, err := svc.UpdateStatus(context.Background(), 1, &models.UpdateContactStatusRequest{Status: "spam"})

	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
