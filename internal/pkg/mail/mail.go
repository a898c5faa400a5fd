package mail

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNoRecipients is returned when To, Cc and Bcc are all empty.
	ErrNoRecipients = errors.New("mail: no recipients provided")
	// ErrNoSender is returned when both Message.From and the configured default are empty.
	ErrNoSender = errors.New("mail: no sender provided")
	// ErrNoBody is returned when the message has neither a text nor an HTML body.
	ErrNoBody = errors.New("mail: message has no body")
	// ErrUnknownDriver is returned by New for an unsupported mail.driver.
	ErrUnknownDriver = errors.New("mail: unknown driver")
)

// Message represents an email payload.
type Message struct {
	// From overrides the configured default sender.
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	// Send dispatches msg and returns the provider message id.
	Send(ctx context.Context, msg Message) (string, error)
}

// normalize fills the sender and checks the message is deliverable.
func (m Message) normalize(defaultFrom string) (Message, error) {
	if m.From == "" {
		m.From = defaultFrom
	}
	if m.From == "" {
		return m, ErrNoSender
	}
	if len(m.To)+len(m.Cc)+len(m.Bcc) == 0 {
		return m, ErrNoRecipients
	}
	if m.TextBody == "" && m.HTMLBody == "" {
		return m, ErrNoBody
	}
	return m, nil
}
