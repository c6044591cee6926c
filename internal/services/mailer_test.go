package services

import (
	"context"
	"testing"

	"github.com/portfoliocms/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRenderEmail(t *testing.T) {
	msg := &models.ContactMessage{
		Name:      "Eve <script>",
		Email:     "eve@example.com",
		Company:   "Acme",
		Subject:   "Hello",
		Message:   "Line one\nLine two",
		IPAddress: "10.0.0.1",
	}

	t.Run("notification escapes user input", func(t *testing.T) {
		body, err := renderEmail("contact_notification", msg)
		require.NoError(t, err)
		assert.Contains(t, body, "Eve &lt;script&gt;")
		assert.Contains(t, body, "Acme")
		assert.Contains(t, body, "10.0.0.1")
		assert.NotContains(t, body, "Phone:")
	})

	t.Run("auto reply", func(t *testing.T) {
		body, err := renderEmail("contact_auto_reply", msg)
		require.NoError(t, err)
		assert.Contains(t, body, "Hello")
	})

	t.Run("unknown template", func(t *testing.T) {
		_, err := renderEmail("missing", msg)
		assert.Error(t, err)
	})
}

func TestNoopMailer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mailer := NoopMailer{Logger: zap.New(core)}

	err := mailer.Send(context.Background(), "a@example.com", "Subject", "<p>body</p>")

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "a@example.com", logs.All()[0].ContextMap()["to"])
}

func TestSMTPMailer_CancelledContext(t *testing.T) {
	mailer := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: 1}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := mailer.Send(ctx, "a@example.com", "Subject", "body")

	assert.ErrorIs(t, err, context.Canceled)
}
