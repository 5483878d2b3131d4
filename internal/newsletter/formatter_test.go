package newsletter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lemamita/mamita/internal/llm"
	"github.com/lemamita/mamita/internal/menu"
	"github.com/lemamita/mamita/internal/newsletter"
)

type staticGenerator struct {
	out string
	err error
	req llm.Request
}

func (g *staticGenerator) Name() string { return "static" }

func (g *staticGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.req = req
	return g.out, g.err
}

func TestNormalizePrices(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"Plat du jour 8.00", "Plat du jour 8€00"},
		{"Plat du jour 8,00", "Plat du jour 8€00"},
		{"Soupe 5.00€", "Soupe 5€00"},
		{"Quiche 12,50 €", "Quiche 12€50"},
		{"Formule 8€00", "Formule 8€00"},
		{"Entrée 4.5", "Entrée 4.5"},
		{"Menu 1.250 kg", "Menu 1.250 kg"},
		{"Café 1.20 et thé 2,10", "Café 1€20 et thé 2€10"},
		{"Café 1.20 - thé 2.10", "Café 1€20 - thé 2€10"},
		{"Fermé le 24.12.2025", "Fermé le 24.12.2025"},
		{"Service 12.30-14.00", "Service 12.30-14.00"},
		{"Service 12.30 – 14.00", "Service 12.30 – 14.00"},
		{"Ouvert 07:30", "Ouvert 07:30"},
		{"Formule 8.50€ - 10.00€", "Formule 8€50 - 10€00"},
	}
	for _, tt := range tests {
		got := newsletter.NormalizePrices(tt.in)
		require.Equal(t, tt.want, got, tt.in)
		require.Equal(t, got, newsletter.NormalizePrices(got), "idempotent: %s", tt.in)
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	rec := sampleMenu()
	prompt, err := newsletter.BuildPrompt(newsletter.FormatRequest{Outlet: menu.Mamita, Menu: &rec})
	require.NoError(t, err)

	require.Contains(t, prompt, `"Le Mamita"`)
	require.Contains(t, prompt, "The menu is for: Lundi 3 mars.")
	require.Contains(t, prompt, `"8€00"`)
	require.Contains(t, prompt, `"title": "Entrée"`)
	require.Contains(t, prompt, `"isVisible": false`)
}

func TestLLMFormatter_Format(t *testing.T) {
	t.Parallel()

	rec := sampleMenu()
	req := newsletter.FormatRequest{Outlet: menu.Mamita, Menu: &rec}
	ctx := context.Background()

	t.Run("decodes output and passes schema", func(t *testing.T) {
		t.Parallel()

		gen := &staticGenerator{out: `{"subject":"Le Mamita - Lundi 3 mars","sections":[{"title":"Entrée","lines":["Soupe 5€00"]}]}`}
		c, err := newsletter.NewLLMFormatter(gen).Format(ctx, req)
		require.NoError(t, err)
		require.Equal(t, "Le Mamita - Lundi 3 mars", c.Subject)
		require.Equal(t, []newsletter.Section{{Title: "Entrée", Lines: []string{"Soupe 5€00"}}}, c.Sections)

		require.NotNil(t, gen.req.Schema)
		require.Equal(t, []string{"subject", "sections"}, gen.req.Schema.Required)
		require.Contains(t, gen.req.Prompt, "Lundi 3 mars")
	})

	t.Run("failures", func(t *testing.T) {
		t.Parallel()

		for name, gen := range map[string]*staticGenerator{
			"provider error": {err: errors.New("quota exceeded")},
			"empty":          {out: "  "},
			"not json":       {out: "Voici votre menu"},
			"no subject":     {out: `{"subject":"","sections":[]}`},
		} {
			_, err := newsletter.NewLLMFormatter(gen).Format(ctx, req)
			require.ErrorIs(t, err, newsletter.ErrGenerationFailed, name)
		}
	})
}

func TestRestrictToVisible(t *testing.T) {
	t.Parallel()

	rec := sampleMenu()
	c := &newsletter.Content{
		Subject: "s",
		Sections: []newsletter.Section{
			{Title: "Dessert", Lines: []string{"Tarte"}},
			{Title: "entrée", Lines: []string{"Soupe"}},
			{Title: "Boisson", Lines: []string{"Eau"}},
		},
	}

	got := newsletter.RestrictToVisible(c, &rec)
	require.Equal(t, "s", got.Subject)
	require.Equal(t, []newsletter.Section{{Title: "entrée", Lines: []string{"Soupe"}}}, got.Sections)
	require.Len(t, c.Sections, 3)
}

func TestRestrictToVisible_ByPosition(t *testing.T) {
	t.Parallel()

	rec := sampleMenu()
	rec.Sections = append(rec.Sections, menu.MenuSection{Title: "Plat chaud", Lines: []string{"Lasagnes"}, IsVisible: true})

	t.Run("same count renames unmatched sections", func(t *testing.T) {
		t.Parallel()

		c := &newsletter.Content{Subject: "s", Sections: []newsletter.Section{
			{Title: "Entrées", Lines: []string{"Soupe"}},
			{Title: "Plat chaud", Lines: []string{"Lasagnes"}},
		}}
		got := newsletter.RestrictToVisible(c, &rec)
		require.Equal(t, []newsletter.Section{
			{Title: "Entrée", Lines: []string{"Soupe"}},
			{Title: "Plat chaud", Lines: []string{"Lasagnes"}},
		}, got.Sections)
	})

	t.Run("different count drops unmatched sections", func(t *testing.T) {
		t.Parallel()

		c := &newsletter.Content{Subject: "s", Sections: []newsletter.Section{
			{Title: "Entrées", Lines: []string{"Soupe"}},
			{Title: "Plat chaud", Lines: []string{"Lasagnes"}},
			{Title: "Dessert", Lines: []string{"Tarte"}},
		}}
		got := newsletter.RestrictToVisible(c, &rec)
		require.Equal(t, []newsletter.Section{{Title: "Plat chaud", Lines: []string{"Lasagnes"}}}, got.Sections)
	})
}

func TestContent_Normalize(t *testing.T) {
	t.Parallel()

	c := &newsletter.Content{Sections: []newsletter.Section{
		{Title: "Entrée", Lines: []string{"Soupe 5.00", "Bon appétit !", "Salade 6,50 €"}},
	}}
	c.Normalize()
	require.Equal(t, []string{"Soupe 5€00", "Salade 6€50"}, c.Sections[0].Lines)
}
