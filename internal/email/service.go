package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, username, password, from string) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *smtpSender) Send(_ context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
