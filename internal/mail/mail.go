// Package mail is the email collaborator: a narrow synchronous send contract
// plus body renderers for the password-recovery message. Delivery mechanics
// beyond SMTP handoff are out of scope.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Sender delivers a single message and reports failure synchronously. A
// failed send during the forgot-password flow triggers a rollback of the
// stored reset credential.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender hands messages to a relay over plain SMTP.
type SMTPSender struct {
	Addr string // host:port
	From string
	Auth smtp.Auth // optional
}

func (s *SMTPSender) Send(to, subject, body string) error {
	contentType := "text/plain; charset=utf-8"
	if strings.Contains(body, "<html") {
		contentType = "text/html; charset=utf-8"
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: %s\r\n\r\n%s\r\n",
		s.From, to, subject, contentType, body)
	if err := smtp.SendMail(s.Addr, s.Auth, s.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
