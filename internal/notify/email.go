package notify

import (
	"context"
	"errors"

	"gopkg.in/gomail.v2"
)

// EmailConfig holds SMTP settings. An empty Host disables the channel.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Email sends the reminder to the signed-in user's address over SMTP.
type Email struct {
	from   string
	sender mailSender
}

func NewEmail(cfg EmailConfig) *Email {
	if cfg.Host == "" {
		return &Email{}
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &Email{
		from:   from,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (*Email) Name() string { return "email" }

func (e *Email) Deliver(ctx context.Context, msg Message) (Outcome, error) {
	if e == nil || e.sender == nil || msg.To == "" {
		return Skipped, nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)

	// gomail has no context support; abandon the wait when ctx ends.
	done := make(chan error, 1)
	go func() { done <- e.sender.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return Failed, err
		}
		return Delivered, nil
	case <-ctx.Done():
		return Failed, errors.Join(errors.New("email: send abandoned"), ctx.Err())
	}
}
