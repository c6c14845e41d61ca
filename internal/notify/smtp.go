package notify

import (
	"context"
	"io"
	"log"

	gomail "gopkg.in/gomail.v2"
)

// SMTPSender sends mail through a plain SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	logger *log.Logger
}

// NewSMTP builds an SMTPSender for the given relay.
func NewSMTP(host string, port int, user, pass string, logger *log.Logger) *SMTPSender {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &SMTPSender{dialer: gomail.NewDialer(host, port, user, pass), logger: logger}
}

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", m.To)
	if m.BCC != "" {
		msg.SetHeader("Bcc", m.BCC)
	}
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)

	if err := s.dialer.DialAndSend(msg); err != nil {
		s.logger.Printf("smtp: send to=%s failed: %v", m.To, err)
		return err
	}
	s.logger.Printf("smtp: sent to=%s subject=%q", m.To, m.Subject)
	return nil
}
