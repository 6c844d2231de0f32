package notifier

import (
	"context"

	"gopkg.in/gomail.v2"
)

// EmailNotifier sends plain-text reports over SMTP with STARTTLS.
type EmailNotifier struct {
	From   string
	To     []string
	dialer *gomail.Dialer
	send   func(*gomail.Message) error
}

// NewEmailNotifier creates an SMTP notifier, e.g. smtp.gmail.com:587 with an app password.
func NewEmailNotifier(host string, port int, username, password, from string, to []string) *EmailNotifier {
	if from == "" {
		from = username
	}
	e := &EmailNotifier{
		From:   from,
		To:     to,
		dialer: gomail.NewDialer(host, port, username, password),
	}
	e.send = func(m *gomail.Message) error { return e.dialer.DialAndSend(m) }
	return e
}

func (e *EmailNotifier) Name() string { return "email" }

func (e *EmailNotifier) message(subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", e.From)
	m.SetHeader("To", e.To...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

// Send delivers one message. The SMTP exchange runs in its own goroutine so a
// cancelled context returns promptly.
func (e *EmailNotifier) Send(ctx context.Context, subject, body string) error {
	if len(e.To) == 0 {
		return deliveryFailed("email: no recipients configured")
	}
	m := e.message(subject, body)
	done := make(chan error, 1)
	go func() { done <- e.send(m) }()

	select {
	case <-ctx.Done():
		return deliveryFailed("email: %v", ctx.Err())
	case err := <-done:
		if err != nil {
			return deliveryFailed("email: %v", err)
		}
		return nil
	}
}
