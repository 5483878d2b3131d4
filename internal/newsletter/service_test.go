package newsletter_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lemamita/mamita/internal/menu"
	"github.com/lemamita/mamita/internal/newsletter"
	"github.com/lemamita/mamita/internal/store"
	"github.com/lemamita/mamita/pkg/mailer"
)

var quiet = newsletter.WithLogger(slog.New(slog.DiscardHandler))

func endToEndMenu() menu.MenuRecord {
	return menu.MenuRecord{
		ID:          menu.Mamita,
		Date:        "Mardi 4 mars",
		Sections:    []menu.MenuSection{{Title: "Entrée", Lines: []string{"Soupe 5.00€"}, IsVisible: true}},
		FooterLines: []string{"Bon appétit !", "À demain"},
	}
}

func TestService_Send_EndToEnd(t *testing.T) {
	t.Parallel()

	docs := store.NewMemory()
	rec := endToEndMenu()
	seedMenu(t, docs, rec)
	seedExternal(t, docs, menu.ExternalSubscribers{Mamita: []string{"x@y.com"}})

	gen := &echoGenerator{subject: "Le Mamita - Mardi 4 mars", menu: &rec}
	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

	svc := newsletter.NewService(validConfig(), docs, newsletter.NewLLMFormatter(gen), sender, quiet)
	res, err := svc.Send(context.Background(), menu.Mamita)
	require.NoError(t, err)

	require.True(t, res.Success)
	require.Equal(t, 1, res.Count)
	require.False(t, res.Preview)
	require.Equal(t, "Tous les emails ont bien été envoyés à 1 abonné(s).", res.Message)
	require.Equal(t, "Le Mamita - Mardi 4 mars", res.Subject)
	require.Contains(t, res.Body, "Soupe 5€00")
	require.NotContains(t, res.Body, "5.00")
	require.Equal(t, 1, strings.Count(strings.ToLower(res.Body), "bon appétit"))
	require.Contains(t, res.Body, "Le Mamita vous souhaite un bon appétit !")

	sender.AssertNumberOfCalls(t, "Send", 1)
	email := sender.Calls[0].Arguments.Get(1).(*mailer.Email)
	require.Equal(t, []string{"x@y.com"}, email.BCC)
	require.Equal(t, []string{"news@lemamita.fr"}, email.To)
	require.Equal(t, mailer.Address{Name: "Le Mamita", Email: "news@lemamita.fr"}, email.From)
	require.Equal(t, res.Body, email.HTML)
	require.NotEmpty(t, email.Text)

	require.Len(t, gen.requests, 1)
	require.NotContains(t, strings.ToLower(gen.requests[0].Prompt), "bon appétit !")
	require.Contains(t, gen.requests[0].Prompt, "À demain")
}

func TestService_ConfigMissing(t *testing.T) {
	t.Parallel()

	docs := newCountingStore()
	seedMenu(t, docs.Documents, endToEndMenu())

	formatter := &MockFormatter{}
	sender := &MockSender{}
	cfg := validConfig()
	cfg.Password = ""

	svc := newsletter.NewService(cfg, docs, formatter, sender, quiet)

	for _, run := range []func(context.Context, menu.Outlet) (*newsletter.Result, error){svc.Send, svc.Preview} {
		res, err := run(context.Background(), menu.Mamita)
		require.ErrorIs(t, err, newsletter.ErrConfigMissing)
		require.Nil(t, res)
	}

	require.Zero(t, docs.Total())
	formatter.AssertNotCalled(t, "Format", mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestService_MenuNotFound(t *testing.T) {
	t.Parallel()

	docs := newCountingStore()
	seedMenu(t, docs.Documents, endToEndMenu())
	sender := &MockSender{}

	svc := newsletter.NewService(validConfig(), docs, &MockFormatter{}, sender, quiet)
	_, err := svc.Send(context.Background(), menu.BoutiqueCafe)
	require.ErrorIs(t, err, newsletter.ErrMenuNotFound)

	require.Zero(t, docs.Calls("QueryEmails"))
	require.Equal(t, 1, docs.Calls("Get"))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestService_SettingsNotFound(t *testing.T) {
	t.Parallel()

	svc := newsletter.NewService(validConfig(), store.NewMemory(), &MockFormatter{}, &MockSender{}, quiet)
	_, err := svc.Send(context.Background(), menu.Mamita)
	require.ErrorIs(t, err, newsletter.ErrSettingsNotFound)
}

func TestService_NoSubscribers(t *testing.T) {
	t.Parallel()

	docs := store.NewMemory()
	seedMenu(t, docs, endToEndMenu())
	seedUser(t, docs, "u1", map[string]any{"email": "cafe@x.com", "newsletterBoutiqueCafe": true})

	formatter := &MockFormatter{}
	sender := &MockSender{}
	svc := newsletter.NewService(validConfig(), docs, formatter, sender, quiet)

	res, err := svc.Send(context.Background(), menu.Mamita)
	require.NoError(t, err)
	require.Equal(t, &newsletter.Result{
		Success: true,
		Count:   0,
		Message: "Aucun abonné pour cette liste. Rien n'a été envoyé.",
		Subject: "Aucun abonné",
	}, res)

	formatter.AssertNotCalled(t, "Format", mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestService_DeduplicatesRecipients(t *testing.T) {
	t.Parallel()

	docs := store.NewMemory()
	rec := endToEndMenu()
	seedMenu(t, docs, rec)
	seedUser(t, docs, "u1", map[string]any{"email": "a@x.com", "newsletterMamita": true})
	seedUser(t, docs, "u2", map[string]any{"email": "b@x.com", "newsletterMamita": true})
	seedExternal(t, docs, menu.ExternalSubscribers{Mamita: []string{"b@x.com", "c@x.com"}})

	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.MatchedBy(func(e *mailer.Email) bool {
		return len(e.BCC) == 3 && len(e.To) == 1
	})).Return(nil).Once()

	gen := &echoGenerator{subject: "Le Mamita - Mardi", menu: &rec}
	res, err := newsletter.NewService(validConfig(), docs, newsletter.NewLLMFormatter(gen), sender, quiet).
		Send(context.Background(), menu.Mamita)
	require.NoError(t, err)
	require.Equal(t, 3, res.Count)
	sender.AssertExpectations(t)
}

func TestService_OnlyVisibleSections(t *testing.T) {
	t.Parallel()

	docs := store.NewMemory()
	rec := menu.MenuRecord{
		ID:   menu.Mamita,
		Date: "Mercredi",
		Sections: []menu.MenuSection{
			{Title: "Entrée", Lines: []string{"Salade"}, IsVisible: true},
			{Title: "Dessert", Lines: []string{"Mousse au chocolat"}, IsVisible: false},
		},
	}
	seedMenu(t, docs, rec)
	seedExternal(t, docs, menu.ExternalSubscribers{Mamita: []string{"x@y.com"}})

	gen := &echoGenerator{subject: "Le Mamita - Mercredi", menu: &rec}
	res, err := newsletter.NewService(validConfig(), docs, newsletter.NewLLMFormatter(gen), &MockSender{}, quiet).
		Preview(context.Background(), menu.Mamita)
	require.NoError(t, err)
	require.Contains(t, res.Body, "Entrée")
	require.Contains(t, res.Body, "Salade")
	require.NotContains(t, res.Body, "Dessert")
	require.NotContains(t, res.Body, "Mousse au chocolat")
}

func TestService_Preview(t *testing.T) {
	t.Parallel()

	docs := store.NewMemory()
	rec := endToEndMenu()
	seedMenu(t, docs, rec)
	seedExternal(t, docs, menu.ExternalSubscribers{Mamita: []string{"a@x.com", "b@x.com"}})

	sender := &MockSender{}
	gen := &echoGenerator{subject: "Le Mamita - Mardi 4 mars", menu: &rec}

	res, err := newsletter.NewService(validConfig(), docs, newsletter.NewLLMFormatter(gen), sender, quiet).
		Preview(context.Background(), menu.Mamita)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.True(t, res.Preview)
	require.Equal(t, 2, res.Count)
	require.Equal(t, "Le Mamita - Mardi 4 mars", res.Subject)
	require.Contains(t, res.Body, "<!DOCTYPE html>")
	require.Contains(t, res.Message, "Aucun email n'a été envoyé")

	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestService_GenerationFailed(t *testing.T) {
	t.Parallel()

	docs := store.NewMemory()
	seedMenu(t, docs, endToEndMenu())
	seedExternal(t, docs, menu.ExternalSubscribers{Mamita: []string{"x@y.com"}})

	t.Run("formatter error", func(t *testing.T) {
		t.Parallel()

		formatter := &MockFormatter{}
		formatter.On("Format", mock.Anything, mock.Anything).Return(nil, errors.New("deadline exceeded")).Once()
		sender := &MockSender{}

		_, err := newsletter.NewService(validConfig(), docs, formatter, sender, quiet).Send(context.Background(), menu.Mamita)
		require.ErrorIs(t, err, newsletter.ErrGenerationFailed)
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("nil content", func(t *testing.T) {
		t.Parallel()

		formatter := &MockFormatter{}
		formatter.On("Format", mock.Anything, mock.Anything).Return(nil, nil).Once()

		_, err := newsletter.NewService(validConfig(), docs, formatter, &MockSender{}, quiet).Send(context.Background(), menu.Mamita)
		require.ErrorIs(t, err, newsletter.ErrGenerationFailed)
	})
}

func TestService_DeliveryFailed(t *testing.T) {
	t.Parallel()

	docs := store.NewMemory()
	rec := endToEndMenu()
	seedMenu(t, docs, rec)
	seedExternal(t, docs, menu.ExternalSubscribers{Mamita: []string{"x@y.com"}})

	transportErr := errors.New("535 5.7.8 authentication failed")
	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(transportErr).Once()

	gen := &echoGenerator{subject: "Le Mamita - Mardi 4 mars", menu: &rec}
	res, err := newsletter.NewService(validConfig(), docs, newsletter.NewLLMFormatter(gen), sender, quiet).
		Send(context.Background(), menu.Mamita)
	require.Nil(t, res)
	require.ErrorIs(t, err, newsletter.ErrDeliveryFailed)
	require.ErrorIs(t, err, transportErr)
	require.Contains(t, err.Error(), "535 5.7.8 authentication failed")
	sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestService_FooterWithoutClosingWishReachesFormatter(t *testing.T) {
	t.Parallel()

	docs := store.NewMemory()
	rec := endToEndMenu()
	rec.FooterLines = []string{"Bon Appétit", "Fermé le week-end"}
	seedMenu(t, docs, rec)
	seedExternal(t, docs, menu.ExternalSubscribers{Mamita: []string{"x@y.com"}})

	formatter := &MockFormatter{}
	formatter.On("Format", mock.Anything, mock.MatchedBy(func(req newsletter.FormatRequest) bool {
		return req.Outlet == menu.Mamita &&
			len(req.Menu.FooterLines) == 1 &&
			req.Menu.FooterLines[0] == "Fermé le week-end"
	})).Return(&newsletter.Content{
		Subject:  "Le Mamita - Mardi",
		Sections: []newsletter.Section{{Title: "Entrée", Lines: []string{"Soupe 5€00"}}},
	}, nil).Once()

	_, err := newsletter.NewService(validConfig(), docs, formatter, &MockSender{}, quiet).Preview(context.Background(), menu.Mamita)
	require.NoError(t, err)
	formatter.AssertExpectations(t)
}

func TestService_RetitledSections(t *testing.T) {
	t.Parallel()

	t.Run("one section per visible section keeps them by position", func(t *testing.T) {
		t.Parallel()

		docs := store.NewMemory()
		seedMenu(t, docs, endToEndMenu())
		seedExternal(t, docs, menu.ExternalSubscribers{Mamita: []string{"x@y.com"}})

		formatter := &MockFormatter{}
		formatter.On("Format", mock.Anything, mock.Anything).Return(&newsletter.Content{
			Subject:  "Le Mamita - Mardi",
			Sections: []newsletter.Section{{Title: "Entrées", Lines: []string{"Soupe 5.00€"}}},
		}, nil).Once()
		sender := &MockSender{}
		sender.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

		res, err := newsletter.NewService(validConfig(), docs, formatter, sender, quiet).Send(context.Background(), menu.Mamita)
		require.NoError(t, err)
		require.Equal(t, 1, res.Count)
		require.Contains(t, res.Body, "Entrée")
		require.NotContains(t, res.Body, "Entrées")
		require.Contains(t, res.Body, "Soupe 5€00")
	})

	t.Run("no matching section is a generation failure", func(t *testing.T) {
		t.Parallel()

		docs := store.NewMemory()
		seedMenu(t, docs, endToEndMenu())
		seedExternal(t, docs, menu.ExternalSubscribers{Mamita: []string{"x@y.com"}})

		formatter := &MockFormatter{}
		formatter.On("Format", mock.Anything, mock.Anything).Return(&newsletter.Content{
			Subject: "Le Mamita - Mardi",
			Sections: []newsletter.Section{
				{Title: "Entree", Lines: []string{"Soupe"}},
				{Title: "Extras", Lines: []string{"Pain"}},
			},
		}, nil).Once()
		sender := &MockSender{}

		res, err := newsletter.NewService(validConfig(), docs, formatter, sender, quiet).Send(context.Background(), menu.Mamita)
		require.ErrorIs(t, err, newsletter.ErrGenerationFailed)
		require.Nil(t, res)
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

func TestService_ClosingWishInSectionAppearsOnce(t *testing.T) {
	t.Parallel()

	docs := store.NewMemory()
	seedMenu(t, docs, endToEndMenu())
	seedExternal(t, docs, menu.ExternalSubscribers{Mamita: []string{"x@y.com"}})

	formatter := &MockFormatter{}
	formatter.On("Format", mock.Anything, mock.Anything).Return(&newsletter.Content{
		Subject:  "Le Mamita - Mardi",
		Sections: []newsletter.Section{{Title: "Entrée", Lines: []string{"Soupe 5.00€", "Bon appétit à tous !"}}},
	}, nil).Once()

	res, err := newsletter.NewService(validConfig(), docs, formatter, &MockSender{}, quiet).Preview(context.Background(), menu.Mamita)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(strings.ToLower(res.Body), "bon appétit"))
	require.Equal(t, 1, strings.Count(strings.ToLower(res.Text), "bon appétit"))
}
