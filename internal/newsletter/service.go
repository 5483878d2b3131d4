package newsletter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lemamita/mamita/internal/menu"
	"github.com/lemamita/mamita/internal/store"
	"github.com/lemamita/mamita/pkg/mailer"
	"github.com/lemamita/mamita/pkg/mailer/smtp"
)

// Service runs the newsletter pipeline. It holds no per-run state and does
// not guard against concurrent runs for the same outlet.
type Service struct {
	cfg       smtp.Config
	loader    *Loader
	formatter Formatter
	renderer  *Renderer
	sender    mailer.Sender
	log       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRenderer replaces the embedded template renderer.
func WithRenderer(r *Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// NewService wires the pipeline. cfg is validated on every run, not here, so
// a service can be built before SMTP is configured.
func NewService(cfg smtp.Config, docs store.Documents, f Formatter, sender mailer.Sender, opts ...Option) *Service {
	s := &Service{
		cfg:       cfg,
		loader:    NewLoader(docs),
		formatter: f,
		sender:    sender,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = NewRenderer()
	}
	return s
}

type draft struct {
	email      *Email
	recipients []string
}

// Send formats the outlet menu and submits one message with every subscriber
// in Bcc.
func (s *Service) Send(ctx context.Context, outlet menu.Outlet) (*Result, error) {
	start := time.Now()
	log := s.log.With(slog.String("outlet", outlet.String()))

	d, err := s.prepare(ctx, outlet)
	if err != nil {
		log.ErrorContext(ctx, "newsletter not sent", slog.Any("error", err))
		return nil, err
	}
	if d == nil {
		log.InfoContext(ctx, "newsletter skipped, no subscribers")
		return noSubscribersResult(false), nil
	}

	msg := &mailer.Email{
		From:    mailer.Address{Name: outlet.DisplayName(), Email: s.cfg.FromAddress},
		To:      []string{s.cfg.FromAddress},
		BCC:     d.recipients,
		Subject: d.email.Subject,
		HTML:    d.email.HTML,
		Text:    d.email.Text,
	}
	if err := mailer.Deliver(ctx, s.sender, msg); err != nil {
		err = fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
		log.ErrorContext(ctx, "newsletter delivery failed", slog.Any("error", err))
		return nil, err
	}

	n := len(d.recipients)
	log.InfoContext(ctx, "newsletter sent",
		slog.Int("recipients", n),
		slog.String("subject", d.email.Subject),
		slog.Duration("duration", time.Since(start)),
	)
	return &Result{
		Success: true,
		Count:   n,
		Message: sentMessage(n),
		Subject: d.email.Subject,
		Body:    d.email.HTML,
		Text:    d.email.Text,
	}, nil
}

// Preview runs every step of Send except the delivery.
func (s *Service) Preview(ctx context.Context, outlet menu.Outlet) (*Result, error) {
	start := time.Now()
	log := s.log.With(slog.String("outlet", outlet.String()))

	d, err := s.prepare(ctx, outlet)
	if err != nil {
		log.ErrorContext(ctx, "newsletter preview failed", slog.Any("error", err))
		return nil, err
	}
	if d == nil {
		return noSubscribersResult(true), nil
	}

	n := len(d.recipients)
	log.InfoContext(ctx, "newsletter preview rendered",
		slog.Int("recipients", n),
		slog.Duration("duration", time.Since(start)),
	)
	return &Result{
		Success: true,
		Count:   n,
		Message: previewMessage(n),
		Subject: d.email.Subject,
		Body:    d.email.HTML,
		Text:    d.email.Text,
		Preview: true,
	}, nil
}

// prepare returns a nil draft when the outlet has no subscribers.
func (s *Service) prepare(ctx context.Context, outlet menu.Outlet) (*draft, error) {
	if err := CheckConfig(s.cfg); err != nil {
		return nil, err
	}

	rec, err := s.loader.Menu(ctx, outlet)
	if err != nil {
		return nil, err
	}
	recipients, err := s.loader.Recipients(ctx, outlet)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, nil
	}

	input := rec.Clone()
	input.FooterLines = menu.WithoutClosingWish(input.FooterLines)

	content, err := s.formatter.Format(ctx, FormatRequest{Outlet: outlet, Menu: input})
	if err != nil {
		if !errors.Is(err, ErrGenerationFailed) {
			err = fmt.Errorf("%w: %w", ErrGenerationFailed, err)
		}
		return nil, err
	}
	if content == nil {
		return nil, fmt.Errorf("%w: empty output", ErrGenerationFailed)
	}
	content = RestrictToVisible(content, rec)
	content.Normalize()
	if len(content.Sections) == 0 && hasVisibleContent(rec) {
		return nil, fmt.Errorf("%w: no section matches the menu", ErrGenerationFailed)
	}

	email, err := s.renderer.Render(outlet, rec, content)
	if err != nil {
		return nil, fmt.Errorf("newsletter: render: %w", err)
	}
	return &draft{email: email, recipients: recipients}, nil
}
