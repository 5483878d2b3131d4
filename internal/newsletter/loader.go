package newsletter

import (
	"context"
	"errors"
	"fmt"

	"github.com/lemamita/mamita/internal/menu"
	"github.com/lemamita/mamita/internal/store"
)

// Loader reads the menu and the subscriber lists of an outlet.
type Loader struct {
	docs store.Documents
}

// NewLoader returns a loader over docs.
func NewLoader(docs store.Documents) *Loader {
	return &Loader{docs: docs}
}

// Menu returns the stored menu of the outlet.
func (l *Loader) Menu(ctx context.Context, outlet menu.Outlet) (*menu.MenuRecord, error) {
	var home menu.HomepageText
	if err := l.docs.Get(ctx, menu.SettingsCollection, menu.HomepageTextDocID, &home); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("newsletter: load homepage text: %w", err)
	}
	rec, ok := home.Find(outlet)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMenuNotFound, outlet)
	}
	return rec, nil
}

// Registered returns the emails of users subscribed to the outlet.
func (l *Loader) Registered(ctx context.Context, outlet menu.Outlet) ([]string, error) {
	emails, err := l.docs.QueryEmails(ctx, menu.UsersCollection, outlet.SubscriptionField())
	if err != nil {
		return nil, fmt.Errorf("newsletter: query subscribers: %w", err)
	}
	return emails, nil
}

// External returns the manually curated list of the outlet. A missing
// document is an empty list.
func (l *Loader) External(ctx context.Context, outlet menu.Outlet) ([]string, error) {
	var ext menu.ExternalSubscribers
	err := l.docs.Get(ctx, menu.SettingsCollection, menu.ExternalSubscribersDocID, &ext)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("newsletter: load external subscribers: %w", err)
	}
	return ext.List(outlet), nil
}

// Recipients returns registered and external subscribers of the outlet,
// deduplicated.
func (l *Loader) Recipients(ctx context.Context, outlet menu.Outlet) ([]string, error) {
	registered, err := l.Registered(ctx, outlet)
	if err != nil {
		return nil, err
	}
	external, err := l.External(ctx, outlet)
	if err != nil {
		return nil, err
	}
	return MergeRecipients(registered, external), nil
}

// MergeRecipients unions the lists by exact string equality, keeping the
// first-seen order and dropping blank entries.
func MergeRecipients(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, list := range lists {
		for _, addr := range list {
			if menu.IsBlank(addr) {
				continue
			}
			if _, dup := seen[addr]; dup {
				continue
			}
			seen[addr] = struct{}{}
			out = append(out, addr)
		}
	}
	return out
}
