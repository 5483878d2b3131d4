package newsletter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lemamita/mamita/internal/menu"
	"github.com/lemamita/mamita/internal/newsletter"
)

func render(t *testing.T, rec menu.MenuRecord, c *newsletter.Content) *newsletter.Email {
	t.Helper()

	email, err := newsletter.NewRenderer().Render(rec.ID, &rec, c)
	require.NoError(t, err)
	return email
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	content := &newsletter.Content{
		Subject: "Le Mamita - Lundi 3 mars",
		Sections: []newsletter.Section{
			{Title: "Plat chaud", Lines: []string{"Lasagnes 9€50", "   ", "Curry"}},
			{Title: "Entrée", Lines: []string{"Soupe"}},
		},
	}

	t.Run("sections keep formatter order and skip blank lines", func(t *testing.T) {
		t.Parallel()

		body := render(t, sampleMenu(), content).HTML
		require.Less(t, strings.Index(body, "Plat chaud"), strings.Index(body, "Entrée"))
		require.Contains(t, body, "<li>Lasagnes 9€50</li>")
		require.Contains(t, body, "<li>Curry</li>")
		require.NotContains(t, body, "<li>   </li>")
		require.Equal(t, 4, strings.Count(body, "<li>"), "three section lines and one footer line")
	})

	t.Run("image block only with an image", func(t *testing.T) {
		t.Parallel()

		rec := sampleMenu()
		require.Contains(t, render(t, rec, content).HTML, `<img src="https://cdn.lemamita.fr/logo.png"`)

		rec.Image = ""
		require.NotContains(t, render(t, rec, content).HTML, "<img")
	})

	t.Run("closing wish appears once", func(t *testing.T) {
		t.Parallel()

		rec := sampleMenu()
		rec.FooterLines = append(rec.FooterLines, "BON APPÉTIT !", "Le Mamita vous souhaite un bon appétit !")
		email := render(t, rec, content)

		lower := strings.ToLower(email.HTML)
		require.Equal(t, 1, strings.Count(lower, "bon appétit"))
		require.Contains(t, email.HTML, `<p class="footer-wish">Le Mamita vous souhaite un bon appétit !</p>`)
		require.Contains(t, email.HTML, "Réservations au 01 23 45 67 89")
		require.Equal(t, 1, strings.Count(strings.ToLower(email.Text), "bon appétit"))
	})

	t.Run("escapes interpolated text", func(t *testing.T) {
		t.Parallel()

		rec := sampleMenu()
		rec.Date = `<b>Lundi</b>`
		rec.FooterLines = []string{`Merci <script>alert(1)</script>`}
		c := &newsletter.Content{
			Subject:  "x",
			Sections: []newsletter.Section{{Title: `<i>Entrée</i>`, Lines: []string{`<img src=x onerror=alert(1)>`}}},
		}

		body := render(t, rec, c).HTML
		require.NotContains(t, body, "<script")
		require.NotContains(t, body, "<b>Lundi")
		require.NotContains(t, body, "<i>Entrée")
		require.NotContains(t, body, "<img src=x")
		require.Contains(t, body, "&lt;b&gt;Lundi&lt;/b&gt;")
		require.Contains(t, body, "Merci")
	})

	t.Run("footer markdown", func(t *testing.T) {
		t.Parallel()

		rec := sampleMenu()
		rec.FooterLines = []string{"**Nouveau** : [!button|Commander](https://lemamita.fr/commande)"}

		email := render(t, rec, content)
		require.Contains(t, email.HTML, "<strong>Nouveau</strong>")
		require.Contains(t, email.HTML, `class="btn"`)
		require.Contains(t, email.Text, "Nouveau : Commander")
	})

	t.Run("plain text alternative", func(t *testing.T) {
		t.Parallel()

		text := render(t, sampleMenu(), content).Text
		require.Contains(t, text, "Lundi 3 mars")
		require.Contains(t, text, "Plat chaud\n  - Lasagnes 9€50\n  - Curry\n")
		require.Contains(t, text, "Le Mamita vous souhaite un bon appétit !")
	})
}
