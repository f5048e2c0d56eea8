package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/tripoffice/config"
	"gopkg.in/gomail.v2"
)

type Message struct {
	To      []string
	Bcc     []string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPSender struct {
	from   string
	dialer dialer
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.SSL
	return &SMTPSender{from: cfg.From, dialer: d}
}

// Send gives up when ctx ends. The SMTP exchange itself keeps running in the background.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("email has no recipients")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To...)
	if len(msg.Bcc) > 0 {
		m.SetHeader("Bcc", msg.Bcc...)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email to %v: %w", msg.To, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send email to %v: %w", msg.To, ctx.Err())
	}
}

var _ Sender = (*SMTPSender)(nil)
