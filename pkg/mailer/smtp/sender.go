// Package smtp delivers mailer emails over SMTP with gomail.
package smtp

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/go-gomail/gomail"

	"github.com/lemamita/mamita/pkg/mailer"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Sender implements mailer.Sender. Each Send opens one connection and submits
// one message for all recipients.
type Sender struct {
	dialer dialer
}

// New builds a sender from cfg. Port 465 selects implicit TLS, any other port
// negotiates STARTTLS when the server offers it.
func New(cfg Config) *Sender {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.ImplicitTLS()
	return &Sender{dialer: d}
}

// Send implements mailer.Sender. gomail has no context support, so ctx is only
// checked before dialing.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(message(email)); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

func message(email *mailer.Email) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", email.From.Email, email.From.Name)
	if len(email.To) > 0 {
		m.SetHeader("To", email.To...)
	}
	if len(email.CC) > 0 {
		m.SetHeader("Cc", email.CC...)
	}
	if len(email.BCC) > 0 {
		m.SetHeader("Bcc", email.BCC...)
	}
	if email.ReplyTo != "" {
		m.SetHeader("Reply-To", email.ReplyTo)
	}
	for _, k := range slices.Sorted(maps.Keys(email.Headers)) {
		m.SetHeader(k, email.Headers[k])
	}
	m.SetHeader("Subject", email.Subject)

	if email.Text != "" {
		m.SetBody("text/plain", email.Text)
		m.AddAlternative("text/html", email.HTML)
	} else {
		m.SetBody("text/html", email.HTML)
	}
	return m
}
