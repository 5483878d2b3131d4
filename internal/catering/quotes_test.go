package catering_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lemamita/mamita/internal/catering"
	"github.com/lemamita/mamita/internal/store"
)

type quotesEnv struct {
	docs    *store.Memory
	catalog *catering.Catalog
	quotes  *catering.Quotes
	quiche  *catering.MenuItem
	lunch   *catering.MenuItem
}

func newQuotesEnv(t *testing.T) *quotesEnv {
	t.Helper()

	ctx := context.Background()
	docs := store.NewMemory()
	catalog := newCatalog(docs)

	quiche, err := catalog.Create(ctx, catering.MenuItem{Reference: "SAL-1", Name: "Quiche", Category: "salé", Price: 4})
	require.NoError(t, err)
	lunch, err := catalog.Create(ctx, catering.MenuItem{Reference: "PLT-1", Name: "Plateau repas", Category: "plateau", Price: 15, AvailabilityTime: "11:30"})
	require.NoError(t, err)

	return &quotesEnv{
		docs:    docs,
		catalog: catalog,
		quiche:  quiche,
		lunch:   lunch,
		quotes: catering.NewQuotes(docs, catalog,
			catering.WithClock(func() time.Time { return fixedNow }),
			catering.WithIDs(sequentialIDs("quote-")),
		),
	}
}

func (e *quotesEnv) request() catering.Request {
	return catering.Request{
		UserID:    "u1",
		UserName:  "Claire",
		EventDate: "2025-03-11",
		EventTime: "12:00",
		Guests:    10,
		Items: []catering.ItemQuantity{
			{ID: e.quiche.ID, Quantity: 2},
			{ID: e.lunch.ID, Quantity: 1},
			{ID: e.quiche.ID, Quantity: 1},
		},
	}
}

func TestQuotes_Create(t *testing.T) {
	t.Parallel()

	t.Run("prices lines from the catalog", func(t *testing.T) {
		t.Parallel()

		e := newQuotesEnv(t)
		q, err := e.quotes.Create(context.Background(), e.request())
		require.NoError(t, err)

		require.Equal(t, "quote-1", q.ID)
		require.Equal(t, catering.StatusNew, q.Status)
		require.Equal(t, "10/03/2025", q.RequestDate)
		require.Equal(t, []catering.QuoteLine{
			{ID: e.quiche.ID, Name: "Quiche", Quantity: 3, Price: 4},
			{ID: e.lunch.ID, Name: "Plateau repas", Quantity: 1, Price: 15},
		}, q.Details)
		require.InDelta(t, 27, q.Total(), 1e-9)

		stored, err := e.quotes.Get(context.Background(), q.ID)
		require.NoError(t, err)
		require.Equal(t, q.Details, stored.Details)
	})

	t.Run("rejects invalid requests", func(t *testing.T) {
		t.Parallel()

		e := newQuotesEnv(t)
		cases := map[string]func(r *catering.Request){
			"no name":         func(r *catering.Request) { r.UserName = " " },
			"today":           func(r *catering.Request) { r.EventDate = "2025-03-10" },
			"past":            func(r *catering.Request) { r.EventDate = "2025-01-01" },
			"bad date":        func(r *catering.Request) { r.EventDate = "11/03/2025" },
			"no guests":       func(r *catering.Request) { r.Guests = 0 },
			"no items":        func(r *catering.Request) { r.Items = nil },
			"off slot":        func(r *catering.Request) { r.EventTime = "12:10" },
			"zero quantity":   func(r *catering.Request) { r.Items[0].Quantity = 0 },
			"unknown product": func(r *catering.Request) { r.Items[0].ID = "nope" },
			"too early":       func(r *catering.Request) { r.EventTime = "10:00" },
		}
		for name, mutate := range cases {
			req := e.request()
			mutate(&req)
			_, err := e.quotes.Create(context.Background(), req)
			require.ErrorIs(t, err, catering.ErrInvalidQuote, name)
		}

		all, err := e.quotes.List(context.Background())
		require.NoError(t, err)
		require.Empty(t, all)
	})

	t.Run("enforces the minimum amount", func(t *testing.T) {
		t.Parallel()

		e := newQuotesEnv(t)
		ctx := context.Background()
		require.NoError(t, e.docs.Put(ctx, catering.SettingsCollection, catering.GlobalSettingsDocID, catering.Settings{MinQuoteAmount: 50}))

		_, err := e.quotes.Create(ctx, e.request())
		require.ErrorIs(t, err, catering.ErrBelowMinimum)
	})
}

func TestQuotes_Lifecycle(t *testing.T) {
	t.Parallel()

	e := newQuotesEnv(t)
	ctx := context.Background()

	first, err := e.quotes.Create(ctx, e.request())
	require.NoError(t, err)

	older := catering.Quote{ID: "old", UserName: "Paul", Status: catering.StatusArchived, CreatedAt: fixedNow.Add(-time.Hour)}
	require.NoError(t, e.docs.Put(ctx, catering.QuotesCollection, older.ID, older))

	all, err := e.quotes.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, first.ID, all[0].ID)

	require.Len(t, catering.Filter(all, ""), 1)
	require.Len(t, catering.Filter(all, catering.StatusArchived), 1)
	counts := catering.CountByStatus(all)
	require.Equal(t, 1, counts[catering.StatusNew])
	require.Equal(t, 1, counts[catering.StatusArchived])
	require.Zero(t, counts[catering.StatusConfirmed])

	require.ErrorIs(t, e.quotes.Delete(ctx, first.ID), catering.ErrNotArchived)

	_, err = e.quotes.Transition(ctx, first.ID, catering.StatusCancelled, "")
	require.ErrorIs(t, err, catering.ErrReasonRequired)

	q, err := e.quotes.Transition(ctx, first.ID, catering.StatusCancelled, "Fermeture exceptionnelle")
	require.NoError(t, err)
	require.Equal(t, catering.StatusCancelled, q.Status)
	require.Equal(t, "Fermeture exceptionnelle", q.CancellationReason)

	_, err = e.quotes.Transition(ctx, first.ID, catering.StatusConfirmed, "")
	require.ErrorIs(t, err, catering.ErrInvalidTransition)

	_, err = e.quotes.Transition(ctx, first.ID, catering.StatusArchived, "")
	require.NoError(t, err)
	require.NoError(t, e.quotes.Delete(ctx, first.ID))

	_, err = e.quotes.Get(ctx, first.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = e.quotes.Transition(ctx, "missing", catering.StatusArchived, "")
	require.ErrorIs(t, err, store.ErrNotFound)
}
