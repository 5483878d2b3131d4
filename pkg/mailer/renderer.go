package mailer

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"

	"github.com/lemamita/mamita/pkg/sanitizer"
)

// Renderer renders templates from fs and caches the parsed result per name.
type Renderer struct {
	fs fs.FS
	md goldmark.Markdown

	mu    sync.RWMutex
	cache map[string]*parsedTemplate
}

type parsedTemplate struct {
	meta map[string]*texttemplate.Template
	html *template.Template
	text *texttemplate.Template
}

// Result is a rendered template.
type Result struct {
	// Meta holds every string frontmatter value rendered with the data.
	Meta map[string]string
	HTML string
	Text string
}

// NewRenderer returns a renderer reading templates from filesystem.
func NewRenderer(filesystem fs.FS) *Renderer {
	return &Renderer{
		fs:    filesystem,
		md:    goldmark.New(goldmark.WithExtensions(ButtonExtension())),
		cache: make(map[string]*parsedTemplate),
	}
}

// Render executes the named html template and its optional .txt sibling.
func (r *Renderer) Render(name string, data any) (*Result, error) {
	t, err := r.template(name)
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string, len(t.meta))
	for key, tmpl := range t.meta {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("%w: %s: metadata %s: %v", ErrRenderFailed, name, key, err)
		}
		meta[key] = buf.String()
	}

	view := map[string]any{"Data": data, "Meta": meta}

	var body bytes.Buffer
	if err := t.html.Execute(&body, view); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	res := &Result{Meta: meta, HTML: body.String()}
	if t.text != nil {
		var txt bytes.Buffer
		if err := t.text.Execute(&txt, view); err != nil {
			return nil, fmt.Errorf("%w: %s: text: %v", ErrRenderFailed, name, err)
		}
		res.Text = txt.String()
	}
	return res, nil
}

// Markdown converts one line of inline markdown to sanitized HTML.
func (r *Renderer) Markdown(s string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(s), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(s))
	}
	out := strings.TrimSpace(buf.String())
	out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	return template.HTML(sanitizer.SanitizeInline(out))
}

func (r *Renderer) funcs() map[string]any {
	return map[string]any{
		"markdown":  r.Markdown,
		"plaintext": plainText,
		"nonblank":  nonBlank,
	}
}

// plainText accepts strings and template.HTML alike.
func plainText(v any) string {
	return html.UnescapeString(sanitizer.StripHTML(fmt.Sprint(v)))
}

func nonBlank(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func (r *Renderer) template(name string) (*parsedTemplate, error) {
	r.mu.RLock()
	t, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.cache[name]; ok {
		return t, nil
	}

	t, err := r.parse(name)
	if err != nil {
		return nil, err
	}
	r.cache[name] = t
	return t, nil
}

func (r *Renderer) parse(name string) (*parsedTemplate, error) {
	content, err := fs.ReadFile(r.fs, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}
	parsed, err := ParseTemplate(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	t := &parsedTemplate{meta: make(map[string]*texttemplate.Template)}
	for key, v := range parsed.Metadata {
		s, ok := v.(string)
		if !ok {
			continue
		}
		mt, err := texttemplate.New(key).Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: metadata %s: %v", ErrRenderFailed, name, key, err)
		}
		t.meta[key] = mt
	}

	t.html, err = template.New(name).Funcs(r.funcs()).Parse(parsed.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	textName := strings.TrimSuffix(name, path.Ext(name)) + ".txt"
	if textName == name {
		return t, nil
	}
	body, err := fs.ReadFile(r.fs, textName)
	if err != nil {
		return t, nil
	}
	t.text, err = texttemplate.New(textName).Funcs(r.funcs()).Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, textName, err)
	}
	return t, nil
}
