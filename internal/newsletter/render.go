package newsletter

import (
	"embed"
	"io/fs"

	"github.com/lemamita/mamita/internal/menu"
	"github.com/lemamita/mamita/pkg/mailer"
)

//go:embed templates
var templates embed.FS

const templateName = "newsletter.html"

// Renderer turns formatted content into the newsletter email body.
type Renderer struct {
	r *mailer.Renderer
}

// NewRenderer returns a renderer over the embedded templates.
func NewRenderer() *Renderer {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	return &Renderer{r: mailer.NewRenderer(sub)}
}

// Email is a rendered newsletter.
type Email struct {
	Subject string
	HTML    string
	Text    string
}

type view struct {
	Outlet   string
	Subject  string
	Date     string
	Image    string
	Sections []Section
	Footer   []string
}

// Render builds the HTML and plain-text bodies. Footer lines carrying the
// closing wish and blank lines are skipped.
func (r *Renderer) Render(outlet menu.Outlet, rec *menu.MenuRecord, c *Content) (*Email, error) {
	res, err := r.r.Render(templateName, view{
		Outlet:   outlet.DisplayName(),
		Subject:  c.Subject,
		Date:     rec.Date,
		Image:    rec.Image,
		Sections: c.Sections,
		Footer:   menu.FooterLines(rec.FooterLines),
	})
	if err != nil {
		return nil, err
	}
	return &Email{Subject: c.Subject, HTML: res.HTML, Text: res.Text}, nil
}
