package repositories

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
)

const contactColumns = `id, name, email, phone, company, subject, message, status, replied, reply_message,
	replied_at, read_at, ip_address, user_agent, created_at, updated_at`

const msgContactNotFound = "Contact message not found"

var contactOrder = map[string]string{
	"name":   "name ASC",
	"email":  "email ASC",
	"status": "status ASC",
}

const contactDefaultOrder = "created_at DESC"

// contactRepository implements ContactRepository
type contactRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewContactRepository creates a new contact message repository
func NewContactRepository(db *sql.DB, logger *zap.Logger) *contactRepository {
	return &contactRepository{
		db:     db,
		logger: logger,
	}
}

func scanContactMessage(row rowScanner) (*models.ContactMessage, error) {
	m := &models.ContactMessage{}
	var phone, company, reply, ip, ua sql.NullString
	var repliedAt, readAt sql.NullTime
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Email,
		&phone,
		&company,
		&m.Subject,
		&m.Message,
		&m.Status,
		&m.Replied,
		&reply,
		&repliedAt,
		&readAt,
		&ip,
		&ua,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Phone = phone.String
	m.Company = company.String
	m.ReplyMessage = reply.String
	m.RepliedAt = timePtr(repliedAt)
	m.ReadAt = timePtr(readAt)
	m.IPAddress = ip.String
	m.UserAgent = ua.String
	return m, nil
}

// Create stores a new contact form submission
func (r *contactRepository) Create(ctx context.Context, m *models.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (name, email, phone, company, subject, message, status, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		m.Name, m.Email, nullString(m.Phone), nullString(m.Company), m.Subject, m.Message, m.Status,
		nullString(m.IPAddress), nullString(m.UserAgent),
	)
	if err != nil {
		r.logger.Error("failed to create contact message", zap.Error(err))
		return apperrors.Upstream("failed to create contact message", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return apperrors.Upstream("failed to get last insert id", err)
	}

	m.ID = int(id)
	return nil
}

// GetByID retrieves a contact message by id
func (r *contactRepository) GetByID(ctx context.Context, id int) (*models.ContactMessage, error) {
	query := `SELECT ` + contactColumns + ` FROM contact_messages WHERE id = ?`
	return getOne(ctx, r.db, r.logger, "contact message", query, msgContactNotFound, scanContactMessage, id)
}

// List retrieves a filtered page of contact messages
func (r *contactRepository) List(ctx context.Context, filter models.ContactFilter, params models.ListParams) ([]models.ContactMessage, error) {
	query, args := newListQuery().
		Equal("status", string(filter.Status)).
		Bool("replied", filter.Replied).
		DateFrom("created_at", filter.DateFrom).
		DateTo("created_at", filter.DateTo).
		Search(filter.Search, "name", "email", "subject", "message").
		OrderBy(filter.OrderBy, contactOrder, contactDefaultOrder).
		Build(`SELECT `+contactColumns+` FROM contact_messages`, params)

	return queryList(ctx, r.db, r.logger, "contact messages", query, args, scanContactMessage)
}

// MarkRead moves an unread message to read; other statuses are left as they are
func (r *contactRepository) MarkRead(ctx context.Context, id int, at time.Time) error {
	query := `UPDATE contact_messages SET status = ?, read_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`

	if _, err := r.db.ExecContext(ctx, query, models.ContactRead, at, id, models.ContactUnread); err != nil {
		r.logger.Error("failed to mark contact message read", zap.Error(err), zap.Int("id", id))
		return apperrors.Upstream("failed to mark contact message read", err)
	}
	return nil
}

// UpdateStatus sets the status of a message
func (r *contactRepository) UpdateStatus(ctx context.Context, id int, status models.ContactStatus) error {
	return execByID(ctx, r.db, r.logger, "update contact status",
		`UPDATE contact_messages SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		msgContactNotFound, status, id)
}

// SaveReply records an admin reply and marks the message replied
func (r *contactRepository) SaveReply(ctx context.Context, id int, reply string, at time.Time) error {
	return execByID(ctx, r.db, r.logger, "save contact reply",
		`UPDATE contact_messages SET status = ?, replied = 1, reply_message = ?, replied_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		msgContactNotFound, models.ContactReplied, reply, at, id)
}

// Delete removes a contact message
func (r *contactRepository) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.db, r.logger, "contact_messages", id, msgContactNotFound)
}

// Stats counts messages per status
func (r *contactRepository) Stats(ctx context.Context) (*models.ContactStats, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM contact_messages GROUP BY status`)
	if err != nil {
		r.logger.Error("failed to count contact messages", zap.Error(err))
		return nil, apperrors.Upstream("failed to count contact messages", err)
	}
	defer rows.Close()

	stats := &models.ContactStats{ByStatus: make(map[models.ContactStatus]int, len(models.ContactStatuses))}
	for _, s := range models.ContactStatuses {
		stats.ByStatus[s] = 0
	}
	for rows.Next() {
		var status models.ContactStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			r.logger.Error("failed to scan contact stats", zap.Error(err))
			return nil, apperrors.Upstream("failed to scan contact stats", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating contact stats", zap.Error(err))
		return nil, apperrors.Upstream("error iterating contact stats", err)
	}
	return stats, nil
}
