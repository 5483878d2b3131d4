package mailer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
)

func convert(t *testing.T, src string) string {
	t.Helper()

	var buf bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(ButtonExtension()))
	require.NoError(t, md.Convert([]byte(src), &buf))
	return buf.String()
}

func TestButtonExtension(t *testing.T) {
	t.Parallel()

	t.Run("renders button", func(t *testing.T) {
		t.Parallel()

		out := convert(t, "[!button|Réserver](https://lemamita.fr/reserver)")
		require.Contains(t, out, `<a href="https://lemamita.fr/reserver" class="btn">Réserver</a>`)
	})

	t.Run("keeps surrounding text", func(t *testing.T) {
		t.Parallel()

		out := convert(t, "Commandez ici : [!button|Commander](https://lemamita.fr) merci")
		require.Contains(t, out, "Commandez ici : ")
		require.Contains(t, out, `class="btn">Commander</a>`)
		require.Contains(t, out, " merci")
	})

	t.Run("escapes label", func(t *testing.T) {
		t.Parallel()

		out := convert(t, `[!button|<b>x</b>](https://x.fr)`)
		require.NotContains(t, out, "<b>")
		require.Contains(t, out, "&lt;b&gt;")
	})

	t.Run("ordinary links are untouched", func(t *testing.T) {
		t.Parallel()

		out := convert(t, "[carte](https://lemamita.fr/carte)")
		require.Contains(t, out, `<a href="https://lemamita.fr/carte">carte</a>`)
		require.NotContains(t, out, "btn")
	})

	t.Run("incomplete syntax falls back to text", func(t *testing.T) {
		t.Parallel()

		out := convert(t, "[!button|Oops](no-closing")
		require.NotContains(t, out, "btn")
	})
}
