// Package mail sends feedback notifications to the team and bilingual
// auto-replies to feedback senders over SMTP.
package mail

import (
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/haawall/haawall-go/internal/logger"
)

// Mailer sends a single email.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through an authenticated SMTP relay.
type SMTPMailer struct {
	host     string
	port     string
	sender   string
	password string
	log      *logger.Logger
}

// NewSMTPMailer creates a mailer. Returns nil when sender credentials are
// missing (mail disabled).
func NewSMTPMailer(host, port, sender, password string, log *logger.Logger) *SMTPMailer {
	if sender == "" || password == "" {
		return nil
	}
	return &SMTPMailer{
		host:     host,
		port:     port,
		sender:   sender,
		password: password,
		log:      log.WithModule("mail"),
	}
}

// Send delivers one plain-text UTF-8 message.
func (m *SMTPMailer) Send(to, subject, body string) error {
	if m == nil {
		return fmt.Errorf("mailer not configured")
	}

	msg := buildMessage(m.sender, to, subject, body)
	auth := smtp.PlainAuth("", m.sender, m.password, m.host)
	addr := m.host + ":" + m.port

	if err := smtp.SendMail(addr, auth, m.sender, []string{to}, msg); err != nil {
		m.log.WithError(err).Error("failed to send email", "to", to)
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.log.Info("email sent", "to", to, "subject", subject)
	return nil
}

// buildMessage renders RFC 5322 headers plus body. The subject is
// Q-encoded so Kurdish text survives transport.
func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
