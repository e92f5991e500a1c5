package services

import (
	"context"
	"fmt"

	"github.com/alimgiray/crewledger/pkg/config"
	"github.com/alimgiray/crewledger/pkg/logger"
	"github.com/wneessen/go-mail"
)

// Mailer delivers plain text messages
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewMailer returns an SMTP mailer, or a LogMailer when no SMTP host is set
func NewMailer(cfg config.SMTPConfig) (Mailer, error) {
	if cfg.Host == "" {
		logger.Info("SMTP_HOST not set, outgoing mail will only be logged")
		return &LogMailer{}, nil
	}
	return NewSMTPMailer(cfg)
}

type SMTPMailer struct {
	client *mail.Client
	from   string
}

func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create SMTP client: %w", err)
	}

	return &SMTPMailer{
		client: client,
		from:   cfg.From,
	}, nil
}

// Send delivers one message over a fresh SMTP connection
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender %q: %w", m.from, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogMailer records deliveries without sending them. The body is not
// logged since it carries one-time codes.
type LogMailer struct{}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	logger.WithField("to", to).WithField("subject", subject).Info("Mail delivery skipped")
	return nil
}
