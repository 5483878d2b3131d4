package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor pulls one attribute out of a context at log time.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

type attrsKey struct{}

// WithAttrs returns a context carrying attrs for every log call made with it.
// Attributes already on ctx are kept.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	prev, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	merged := make([]slog.Attr, 0, len(prev)+len(attrs))
	merged = append(merged, prev...)
	merged = append(merged, attrs...)
	return context.WithValue(ctx, attrsKey{}, merged)
}

// ContextAttrs returns the attributes stored by WithAttrs.
func ContextAttrs(ctx context.Context) []slog.Attr {
	attrs, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	return attrs
}

type decorator struct {
	next       slog.Handler
	extractors []ContextExtractor
}

// Decorate wraps next so each record also gets the WithAttrs attributes and
// the output of extractors. Nil extractors are ignored.
func Decorate(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	d := &decorator{next: next}
	for _, ex := range extractors {
		if ex != nil {
			d.extractors = append(d.extractors, ex)
		}
	}
	return d
}

func (d *decorator) Enabled(ctx context.Context, l slog.Level) bool {
	return d.next.Enabled(ctx, l)
}

func (d *decorator) Handle(ctx context.Context, rec slog.Record) error {
	rec.AddAttrs(ContextAttrs(ctx)...)
	for _, ex := range d.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return d.next.Handle(ctx, rec)
}

func (d *decorator) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &decorator{next: d.next.WithAttrs(attrs), extractors: d.extractors}
}

func (d *decorator) WithGroup(name string) slog.Handler {
	return &decorator{next: d.next.WithGroup(name), extractors: d.extractors}
}
