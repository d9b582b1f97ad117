package mailer

import (
	"context"

	"wedding-site/internal/domain"
	"wedding-site/internal/logger"
)

// LogMailer stands in for SMTP when no relay is configured. It only logs
// a masked edit link so the real token never reaches the logs.
type LogMailer struct {
	siteURL string
	logger  domain.Logger
}

func NewLogMailer(siteURL string, log domain.Logger) *LogMailer {
	return &LogMailer{siteURL: siteURL, logger: log}
}

func (m *LogMailer) SendRSVPConfirmation(ctx context.Context, to string, data domain.ConfirmationEmail) error {
	m.logger.WithContext(ctx).Info("SMTP not configured, confirmation email not sent", map[string]interface{}{
		"to":         to,
		"attending":  data.Attending,
		"edit_url":   EditURL(m.siteURL, logger.MaskToken(data.EditToken)),
		"expires_at": data.ExpiresAt,
	})
	return nil
}
