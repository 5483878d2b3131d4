package catering

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lemamita/mamita/internal/store"
)

// Quotes manages the quotes collection.
type Quotes struct {
	docs    store.Documents
	catalog *Catalog
	opts    options
}

// NewQuotes returns the quote service. Product prices and availability are
// read from catalog when a quote is created.
func NewQuotes(docs store.Documents, catalog *Catalog, opts ...Option) *Quotes {
	return &Quotes{docs: docs, catalog: catalog, opts: newOptions(opts)}
}

// List returns every quote, newest first.
func (s *Quotes) List(ctx context.Context) ([]Quote, error) {
	docs, err := s.docs.List(ctx, QuotesCollection)
	if err != nil {
		return nil, err
	}
	quotes := make([]Quote, 0, len(docs))
	for _, d := range docs {
		var q Quote
		if err := d.Decode(&q); err != nil {
			return nil, err
		}
		q.ID = d.ID
		quotes = append(quotes, q)
	}
	slices.SortStableFunc(quotes, func(a, b Quote) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return quotes, nil
}

// Filter keeps the quotes in status. An empty status keeps everything except
// archived quotes.
func Filter(quotes []Quote, status Status) []Quote {
	out := make([]Quote, 0, len(quotes))
	for _, q := range quotes {
		if (status == "" && q.Status != StatusArchived) || q.Status == status {
			out = append(out, q)
		}
	}
	return out
}

// CountByStatus tallies quotes per status.
func CountByStatus(quotes []Quote) map[Status]int {
	counts := make(map[Status]int, len(statusLabels))
	for s := range statusLabels {
		counts[s] = 0
	}
	for _, q := range quotes {
		counts[q.Status]++
	}
	return counts
}

// Get returns one quote or store.ErrNotFound.
func (s *Quotes) Get(ctx context.Context, id string) (*Quote, error) {
	var q Quote
	if err := s.docs.Get(ctx, QuotesCollection, id, &q); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: quote %s", store.ErrNotFound, id)
		}
		return nil, err
	}
	q.ID = id
	return &q, nil
}

// Settings reads the global settings document, falling back to defaults.
func (s *Quotes) Settings(ctx context.Context) (Settings, error) {
	var st Settings
	err := s.docs.Get(ctx, SettingsCollection, GlobalSettingsDocID, &st)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Settings{}, err
	}
	return st.withDefaults(), nil
}

// ItemQuantity selects a product for a quote.
type ItemQuantity struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// Request is a new quote as submitted by or on behalf of a customer.
type Request struct {
	UserID    string         `json:"userId"`
	UserName  string         `json:"userName"`
	EventDate string         `json:"eventDate"`
	EventTime string         `json:"eventTime"`
	Guests    int            `json:"guests"`
	Items     []ItemQuantity `json:"items"`
}

// Create validates req against the catalog and the global settings and
// stores a new quote. The event must be after today, at an offered time
// slot, with at least one guest and one product available at that time.
// The total must reach the minimum quote amount.
func (s *Quotes) Create(ctx context.Context, req Request) (*Quote, error) {
	now := s.opts.now()

	if strings.TrimSpace(req.UserName) == "" {
		return nil, fmt.Errorf("%w: missing customer name", ErrInvalidQuote)
	}
	day, err := time.ParseInLocation(time.DateOnly, req.EventDate, now.Location())
	if err != nil {
		return nil, fmt.Errorf("%w: event date %q", ErrInvalidQuote, req.EventDate)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !day.After(today) {
		return nil, fmt.Errorf("%w: event date must be after today", ErrInvalidQuote)
	}
	if req.Guests < 1 {
		return nil, fmt.Errorf("%w: at least one guest", ErrInvalidQuote)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: no products", ErrInvalidQuote)
	}

	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	slots, err := settings.TimeSlots()
	if err != nil {
		return nil, err
	}
	if !slices.Contains(slots, req.EventTime) {
		return nil, fmt.Errorf("%w: event time %q is not an offered slot", ErrInvalidQuote, req.EventTime)
	}

	lines, err := s.lines(ctx, req)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		ID:          s.opts.newID(),
		UserID:      req.UserID,
		UserName:    strings.TrimSpace(req.UserName),
		RequestDate: now.Format("02/01/2006"),
		EventDate:   req.EventDate,
		EventTime:   req.EventTime,
		Guests:      req.Guests,
		Details:     lines,
		Status:      StatusNew,
		CreatedAt:   now.UTC(),
	}
	if total := q.Total(); total < settings.MinQuoteAmount {
		return nil, fmt.Errorf("%w: %.2f € < %.2f €", ErrBelowMinimum, total, settings.MinQuoteAmount)
	}
	if err := s.docs.Put(ctx, QuotesCollection, q.ID, q); err != nil {
		return nil, err
	}
	return q, nil
}

// lines resolves the selected products, merging repeated ids.
func (s *Quotes) lines(ctx context.Context, req Request) ([]QuoteLine, error) {
	lines := make([]QuoteLine, 0, len(req.Items))
	index := make(map[string]int, len(req.Items))
	for _, sel := range req.Items {
		if sel.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity of %s must be positive", ErrInvalidQuote, sel.ID)
		}
		if i, ok := index[sel.ID]; ok {
			lines[i].Quantity += sel.Quantity
			continue
		}
		it, err := s.catalog.Get(ctx, sel.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown product %s", ErrInvalidQuote, sel.ID)
			}
			return nil, err
		}
		if !it.AvailableAt(req.EventTime) {
			return nil, fmt.Errorf("%w: %s is only available from %s", ErrInvalidQuote, it.Name, it.AvailabilityTime)
		}
		index[sel.ID] = len(lines)
		lines = append(lines, QuoteLine{ID: it.ID, Name: it.Name, Quantity: sel.Quantity, Price: it.Price})
	}
	return lines, nil
}

// Transition changes the status of a stored quote.
func (s *Quotes) Transition(ctx context.Context, id string, next Status, reason string) (*Quote, error) {
	var q Quote
	err := s.docs.Update(ctx, QuotesCollection, id, &q, func(exists bool) error {
		if !exists {
			return fmt.Errorf("%w: quote %s", store.ErrNotFound, id)
		}
		return q.Transition(next, reason)
	})
	if err != nil {
		return nil, err
	}
	q.ID = id
	return &q, nil
}

// Delete removes an archived quote.
func (s *Quotes) Delete(ctx context.Context, id string) error {
	q, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if q.Status != StatusArchived {
		return fmt.Errorf("%w: %s is %s", ErrNotArchived, id, q.Status)
	}
	if err := s.docs.Delete(ctx, QuotesCollection, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: quote %s", store.ErrNotFound, id)
		}
		return err
	}
	return nil
}
