package mailer

import (
	"context"
	"fmt"

	"wedding-site/internal/domain"
	"wedding-site/internal/logger"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the outbound server settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// TLS is one of mandatory, opportunistic or none
	TLS     string
	From    string
	SiteURL string
}

type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPMailer sends confirmation emails through an SMTP relay
type SMTPMailer struct {
	config SMTPConfig
	client sender
	logger domain.Logger
}

// NewSMTPMailer creates a mailer bound to the configured relay
func NewSMTPMailer(config SMTPConfig, log domain.Logger) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(config.Port),
		mail.WithTLSPolicy(tlsPolicy(config.TLS)),
	}
	if config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(config.Username),
			mail.WithPassword(config.Password),
		)
	}

	client, err := mail.NewClient(config.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return newSMTPMailer(config, client, log), nil
}

func newSMTPMailer(config SMTPConfig, client sender, log domain.Logger) *SMTPMailer {
	return &SMTPMailer{config: config, client: client, logger: log}
}

// SendRSVPConfirmation mails the edit link to the guest
func (m *SMTPMailer) SendRSVPConfirmation(ctx context.Context, to string, data domain.ConfirmationEmail) error {
	body, err := RenderConfirmation(m.config.SiteURL, data)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.config.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(ConfirmationSubject)
	msg.SetCharset(mail.CharsetUTF8)
	msg.SetBodyString(mail.TypeTextHTML, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	m.logger.WithContext(ctx).Info("Confirmation email sent", map[string]interface{}{
		"to":    to,
		"token": logger.MaskToken(data.EditToken),
	})
	return nil
}

func tlsPolicy(name string) mail.TLSPolicy {
	switch name {
	case "none":
		return mail.NoTLS
	case "opportunistic":
		return mail.TLSOpportunistic
	default:
		return mail.TLSMandatory
	}
}
