package mailer

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

// Mailer delivers a single message. Delivery itself is the transport's concern.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, html, text string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpMailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

// New returns an SMTP mailer, or a mailer that only logs when no SMTP host is
// configured.
func New(cfg SMTPConfig) Mailer {
	if cfg.Host == "" {
		log.Warn().Msg("SMTP is not configured, emails will be logged instead of sent")
		return logMailer{}
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return &smtpMailer{cfg: cfg, dialer: d}
}

func (m *smtpMailer) SendEmail(ctx context.Context, to, subject, html, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

type logMailer struct{}

func (logMailer) SendEmail(_ context.Context, to, subject, _, text string) error {
	log.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", text).
		Msg("email not sent: SMTP disabled")
	return nil
}
