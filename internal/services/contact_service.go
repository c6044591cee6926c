package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/portfoliocms/backend/internal/models"
	"github.com/portfoliocms/backend/internal/utils"
	"go.uber.org/zap"
)

// ContactRepository is the interface that wraps methods for contact_messages table data access
type ContactRepository interface {
	Create(ctx context.Context, m *models.ContactMessage) error
	GetByID(ctx context.Context, id int) (*models.ContactMessage, error)
	List(ctx context.Context, filter models.ContactFilter, params models.ListParams) ([]models.ContactMessage, error)
	// Method MarkRead moves an unread message to read. Other statuses are left untouched.
	MarkRead(ctx context.Context, id int, at time.Time) error
	UpdateStatus(ctx context.Context, id int, status models.ContactStatus) error
	// Method SaveReply stores the reply text and marks the message replied.
	SaveReply(ctx context.Context, id int, reply string, at time.Time) error
	Delete(ctx context.Context, id int) error
	// Method Stats counts messages per status; every status is present in the result.
	Stats(ctx context.Context) (*models.ContactStats, error)
}

// emailTimeout bounds each background email delivery
const emailTimeout = 30 * time.Second

type contactService struct {
	repo       ContactRepository
	mailer     Mailer
	adminEmail string
	logger     *zap.Logger
	now        func() time.Time
	// pending tracks background emails so shutdown can wait for them
	pending sync.WaitGroup
}

// NewContactService creates a new contact service.
// Notifications go to adminEmail; an empty address disables them.
func NewContactService(repo ContactRepository, mailer Mailer, adminEmail string, logger *zap.Logger) *contactService {
	return &contactService{
		repo:       repo,
		mailer:     mailer,
		adminEmail: adminEmail,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit stores a contact form message and sends the notification and auto-reply in the background
func (s *contactService) Submit(ctx context.Context, req *models.CreateContactRequest, client models.ClientInfo) (*models.ContactMessage, error) {
	req.Name = utils.StripHTML(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Phone = utils.StripHTML(req.Phone)
	req.Company = utils.StripHTML(req.Company)
	req.Subject = utils.StripHTML(req.Subject)
	req.Message = utils.StripHTML(req.Message)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	msg := &models.ContactMessage{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Subject:   req.Subject,
		Message:   req.Message,
		Status:    models.ContactUnread,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.Info("contact message received",
		zap.Int("id", msg.ID),
		zap.String("ip", client.IPAddress),
		zap.String("browser", client.Browser),
		zap.String("os", client.OS),
		zap.String("device", client.Device),
	)

	if s.adminEmail != "" {
		s.sendAsync(s.adminEmail, "New Contact Form Submission: "+msg.Subject, "contact_notification", msg)
	}
	s.sendAsync(msg.Email, "Thank you for contacting me", "contact_auto_reply", msg)

	return msg, nil
}

// List returns a page of messages
func (s *contactService) List(ctx context.Context, filter models.ContactFilter, params models.ListParams) (*models.ListResult[models.ContactMessage], error) {
	messages, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	return models.NewListResult(params, messages), nil
}

// GetByID returns a message and marks it read when it was unread
func (s *contactService) GetByID(ctx context.Context, id int) (*models.ContactMessage, error) {
	msg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.Status != models.ContactUnread {
		return msg, nil
	}

	now := s.now()
	if err := s.repo.MarkRead(ctx, id, now); err != nil {
		s.logger.Warn("failed to mark contact message read", zap.Int("id", id), zap.Error(err))
		return msg, nil
	}
	msg.Status = models.ContactRead
	msg.ReadAt = &now
	return msg, nil
}

// UpdateStatus sets the status of a message
func (s *contactService) UpdateStatus(ctx context.Context, id int, req *models.UpdateContactStatusRequest) (*models.ContactMessage, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Archive moves a message to the archive
func (s *contactService) Archive(ctx context.Context, id int) (*models.ContactMessage, error) {
	return s.UpdateStatus(ctx, id, &models.UpdateContactStatusRequest{Status: models.ContactArchived})
}

// Reply stores an admin reply and emails it to the sender in the background.
// A delivery failure is logged and never fails the reply.
func (s *contactService) Reply(ctx context.Context, id int, req *models.ReplyContactRequest) (*models.ContactMessage, error) {
	req.Message = strings.TrimSpace(req.Message)
	req.Subject = strings.TrimSpace(req.Subject)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	msg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveReply(ctx, id, req.Message, s.now()); err != nil {
		return nil, err
	}

	subject := req.Subject
	if subject == "" {
		subject = "Re: " + msg.Subject
	}
	s.sendAsync(msg.Email, subject, "contact_reply", struct {
		Name    string
		Message string
		Reply   string
	}{msg.Name, msg.Message, req.Message})

	return s.repo.GetByID(ctx, id)
}

// Delete removes a message
func (s *contactService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// Stats counts messages per status
func (s *contactService) Stats(ctx context.Context) (*models.ContactStats, error) {
	return s.repo.Stats(ctx)
}

// Wait blocks until every background email has finished
func (s *contactService) Wait() {
	s.pending.Wait()
}

// sendAsync renders and sends an email detached from the request context
func (s *contactService) sendAsync(to, subject, template string, data any) {
	body, err := renderEmail(template, data)
	if err != nil {
		s.logger.Error("failed to render email", zap.String("template", template), zap.Error(err))
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), emailTimeout)
		defer cancel()

		if err := s.mailer.Send(ctx, to, subject, body); err != nil {
			s.logger.Warn("failed to send email",
				zap.String("template", template),
				zap.String("to", to),
				zap.Error(err),
			)
		}
	}()
}
