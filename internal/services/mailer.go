package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// Mailer sends HTML emails
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPConfig holds the SMTP transport settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpMailer struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

// NewSMTPMailer creates a mailer delivering through an SMTP server
func NewSMTPMailer(cfg SMTPConfig, logger *zap.Logger) *smtpMailer {
	return &smtpMailer{cfg: cfg, logger: logger}
}

// Send sends an email using gopkg.in/mail.v2
func (m *smtpMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := mail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if deadline, ok := ctx.Deadline(); ok {
		d.Timeout = time.Until(deadline)
	}
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// NoopMailer logs emails instead of sending them. Used when SMTP is not configured.
type NoopMailer struct {
	Logger *zap.Logger
}

func (m NoopMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.Logger.Info("email skipped, SMTP not configured", zap.String("to", to), zap.String("subject", subject))
	return nil
}

var emailTemplates = template.Must(template.New("emails").Parse(`
{{define "contact_notification"}}<h2>New Contact Form Submission</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
{{if .Phone}}<p><strong>Phone:</strong> {{.Phone}}</p>{{end}}
{{if .Company}}<p><strong>Company:</strong> {{.Company}}</p>{{end}}
<p><strong>Subject:</strong> {{.Subject}}</p>
<p><strong>Message:</strong></p>
<p style="white-space: pre-line">{{.Message}}</p>
<hr>
<p><small>IP: {{.IPAddress}} | User-Agent: {{.UserAgent}}</small></p>{{end}}

{{define "contact_auto_reply"}}<h2>Thank you for contacting me!</h2>
<p>Hi {{.Name}},</p>
<p>I have received your message about "{{.Subject}}" and will get back to you as soon as possible.</p>
<p>Best regards</p>{{end}}

{{define "contact_reply"}}<p>Hi {{.Name}},</p>
<p style="white-space: pre-line">{{.Reply}}</p>
<hr>
<p><small>In reply to your message:</small></p>
<blockquote style="white-space: pre-line">{{.Message}}</blockquote>{{end}}
`))

// renderEmail executes a named email template
func renderEmail(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", name, err)
	}
	return buf.String(), nil
}
