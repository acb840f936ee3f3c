package services

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

// ErrMailerNotConfigured is returned when no SMTP host is set.
var ErrMailerNotConfigured = errors.New("mailer is not configured")

// Notifier delivers out-of-band messages to users. Verification codes go
// through this interface so delivery failures stay distinct from
// credential errors.
type Notifier interface {
	Send(to, subject, body string) error
}

// Mailer sends plain-text email over SMTP.
type Mailer struct {
	addr string
	from string
	auth smtp.Auth
}

// MailerConfig configures the SMTP mailer.
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewMailer constructs an SMTP-backed Notifier.
func NewMailer(cfg MailerConfig) *Mailer {
	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	m := &Mailer{
		from: cfg.From,
		auth: auth,
	}
	if cfg.Host != "" {
		m.addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	}

	return m
}

// Send delivers a plain-text message to a single recipient.
func (m *Mailer) Send(to, subject, body string) error {
	if m.addr == "" {
		return ErrMailerNotConfigured
	}

	msg := buildMessage(m.from, to, subject, body)
	return smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg))
}

func buildMessage(from, to, subject, body string) string {
	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
	}

	return strings.Join(headers, "\r\n") + "\r\n\r\n" + body
}
