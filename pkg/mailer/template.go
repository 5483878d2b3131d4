package mailer

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Template is a template file split into frontmatter and body.
type Template struct {
	Metadata map[string]any
	Body     string
}

var delimiter = []byte("---")

// ParseTemplate extracts the YAML frontmatter enclosed in "---" lines. Content
// without a leading delimiter is returned as body with empty metadata.
func ParseTemplate(content []byte) (*Template, error) {
	rest, ok := bytes.CutPrefix(content, delimiter)
	if !ok {
		return &Template{Metadata: map[string]any{}, Body: string(content)}, nil
	}
	rest = bytes.TrimLeft(rest, "\r\n")
	if len(rest) == 0 {
		return nil, fmt.Errorf("%w: no content after opening delimiter", ErrInvalidFrontmatter)
	}

	front, body, found := bytes.Cut(rest, delimiter)
	if !found {
		return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}
	body, ok = bytes.CutPrefix(body, []byte("\r\n"))
	if !ok {
		body, _ = bytes.CutPrefix(body, []byte("\n"))
	}

	meta := map[string]any{}
	if len(bytes.TrimSpace(front)) > 0 {
		if err := yaml.Unmarshal(front, &meta); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}
	return &Template{Metadata: meta, Body: string(body)}, nil
}
