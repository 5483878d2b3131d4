package newsletter

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/lemamita/mamita/internal/llm"
	"github.com/lemamita/mamita/internal/menu"
)

// Formatter turns a menu into the subject and sections of the email.
type Formatter interface {
	Format(ctx context.Context, req FormatRequest) (*Content, error)
}

// FormatRequest carries the menu to format. Footer lines holding the closing
// wish are already removed.
type FormatRequest struct {
	Outlet menu.Outlet
	Menu   *menu.MenuRecord
}

const systemPrompt = "You format daily restaurant menus for an email newsletter. You answer with JSON only."

//go:embed prompt.tmpl
var promptSource string

var promptTemplate = template.Must(template.New("prompt").Parse(promptSource))

var contentSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"subject": {Type: llm.TypeString, Description: "Email subject: outlet name, a hyphen, then the date."},
		"sections": {
			Type: llm.TypeArray,
			Items: &llm.Schema{
				Type: llm.TypeObject,
				Properties: map[string]*llm.Schema{
					"title": {Type: llm.TypeString},
					"lines": {Type: llm.TypeArray, Items: &llm.Schema{Type: llm.TypeString}},
				},
				Required: []string{"title", "lines"},
			},
		},
	},
	Required: []string{"subject", "sections"},
}

// LLMFormatter formats menus with a generative model.
type LLMFormatter struct {
	gen llm.Generator
}

// NewLLMFormatter returns a formatter backed by gen.
func NewLLMFormatter(gen llm.Generator) *LLMFormatter {
	return &LLMFormatter{gen: gen}
}

// Format issues one generation call. It does not retry.
func (f *LLMFormatter) Format(ctx context.Context, req FormatRequest) (*Content, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	raw, err := f.gen.Generate(ctx, llm.Request{
		System: systemPrompt,
		Prompt: prompt,
		Schema: contentSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	return ParseContent(raw)
}

// BuildPrompt renders the instruction prompt with the menu as JSON payload.
func BuildPrompt(req FormatRequest) (string, error) {
	payload, err := json.MarshalIndent(req.Menu, "", "  ")
	if err != nil {
		return "", fmt.Errorf("newsletter: encode menu: %w", err)
	}
	var buf bytes.Buffer
	err = promptTemplate.Execute(&buf, map[string]string{
		"Outlet":  req.Outlet.DisplayName(),
		"Date":    req.Menu.Date,
		"Payload": string(payload),
	})
	if err != nil {
		return "", fmt.Errorf("newsletter: render prompt: %w", err)
	}
	return buf.String(), nil
}

// ParseContent decodes model output. Empty or unparseable output and a
// missing subject are generation failures.
func ParseContent(raw string) (*Content, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty output", ErrGenerationFailed)
	}
	var c Content
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	c.Subject = strings.TrimSpace(c.Subject)
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrGenerationFailed)
	}
	return &c, nil
}

// RestrictToVisible keeps the generated sections that name a visible section
// of rec, preserving their order. When the model returned exactly one section
// per visible section, a section whose title matches none of them is taken to
// be the visible section at the same position and gets its source title.
func RestrictToVisible(c *Content, rec *menu.MenuRecord) *Content {
	visible := rec.VisibleSections()
	positional := len(c.Sections) == len(visible)
	used := make([]bool, len(visible))

	out := &Content{Subject: c.Subject, Sections: make([]Section, 0, len(c.Sections))}
	for i, s := range c.Sections {
		idx := visibleIndex(visible, s.Title)
		if idx == -1 && positional && !used[i] {
			idx = i
			s.Title = visible[i].Title
		}
		if idx == -1 {
			continue
		}
		used[idx] = true
		out.Sections = append(out.Sections, s)
	}
	return out
}

func visibleIndex(visible []menu.MenuSection, title string) int {
	for i, v := range visible {
		if menu.SameTitle(v.Title, title) {
			return i
		}
	}
	return -1
}

// hasVisibleContent reports whether rec has a visible section with at least
// one non-blank line.
func hasVisibleContent(rec *menu.MenuRecord) bool {
	for _, s := range rec.VisibleSections() {
		for _, l := range s.Lines {
			if !menu.IsBlank(l) {
				return true
			}
		}
	}
	return false
}

var priceRe = regexp.MustCompile(`\b(\d+)[.,](\d{2})\b(?:\s?€)?`)

// NormalizePrices rewrites prices such as "8.00", "8,00" or "8.00 €" to
// "8€00". Already normalized text is left unchanged. Numbers that belong to a
// date or a range, such as "24.12.2025" or "12.30-14.00", are kept unless
// followed by a euro sign.
func NormalizePrices(line string) string {
	matches := priceRe.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return line
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		if !strings.HasSuffix(line[m[0]:m[1]], "€") && (continuesAfter(line[m[1]:]) || continuesBefore(line[:m[0]])) {
			continue
		}
		b.WriteString(line[last:m[0]])
		b.WriteString(line[m[2]:m[3]])
		b.WriteString("€")
		b.WriteString(line[m[4]:m[5]])
		last = m[1]
	}
	b.WriteString(line[last:])
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSeparator(c byte) bool { return c == '.' || c == ',' || c == ':' }

// continuesAfter reports whether rest starts with another number part, like
// ".2025" or " - 14.00".
func continuesAfter(rest string) bool {
	if len(rest) >= 2 && isSeparator(rest[0]) && isDigit(rest[1]) {
		return true
	}
	rest = strings.TrimLeft(rest, " ")
	for _, dash := range []string{"-", "–"} {
		if after, ok := strings.CutPrefix(rest, dash); ok {
			after = strings.TrimLeft(after, " ")
			return after != "" && isDigit(after[0])
		}
	}
	return false
}

// continuesBefore is continuesAfter for the text preceding a match.
func continuesBefore(head string) bool {
	if n := len(head); n >= 2 && isSeparator(head[n-1]) && isDigit(head[n-2]) {
		return true
	}
	head = strings.TrimRight(head, " ")
	for _, dash := range []string{"-", "–"} {
		if before, ok := strings.CutSuffix(head, dash); ok {
			before = strings.TrimRight(before, " ")
			return before != "" && isDigit(before[len(before)-1])
		}
	}
	return false
}

// Normalize applies NormalizePrices to every line of c in place and drops
// lines carrying the closing wish, which the template adds once.
func (c *Content) Normalize() {
	for i := range c.Sections {
		lines := c.Sections[i].Lines[:0]
		for _, l := range c.Sections[i].Lines {
			if menu.HasClosingWish(l) {
				continue
			}
			lines = append(lines, NormalizePrices(l))
		}
		c.Sections[i].Lines = lines
	}
}
