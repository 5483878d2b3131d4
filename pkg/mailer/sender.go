package mailer

import (
	"context"
	"fmt"
)

// Sender delivers a prepared Email.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Deliver validates the email and sends it, wrapping provider failures in
// ErrSendFailed.
func Deliver(ctx context.Context, s Sender, email *Email) error {
	if err := email.Validate(); err != nil {
		return err
	}
	if err := s.Send(ctx, email); err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	return nil
}
