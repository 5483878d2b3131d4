package mailer

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindButton identifies ButtonNode in the goldmark AST.
var KindButton = ast.NewNodeKind("Button")

// ButtonNode is a call-to-action link written as [!button|Label](URL).
type ButtonNode struct {
	ast.BaseInline
	Label []byte
	URL   []byte
}

func (n *ButtonNode) Kind() ast.NodeKind { return KindButton }

func (n *ButtonNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Label": string(n.Label),
		"URL":   string(n.URL),
	}, nil)
}

var buttonPrefix = []byte("[!button|")

type buttonParser struct{}

func (buttonParser) Trigger() []byte { return []byte{'['} }

func (buttonParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	rest, ok := bytes.CutPrefix(line, buttonPrefix)
	if !ok {
		return nil
	}
	label, rest, ok := bytes.Cut(rest, []byte("]("))
	if !ok || len(label) == 0 || bytes.IndexByte(label, ']') >= 0 {
		return nil
	}
	end := bytes.IndexByte(rest, ')')
	if end <= 0 {
		return nil
	}

	block.Advance(len(buttonPrefix) + len(label) + 2 + end + 1)
	return &ButtonNode{Label: label, URL: rest[:end]}
}

type buttonRenderer struct{}

func (buttonRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindButton, renderButton)
}

func renderButton(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ButtonNode)
	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.URL, true)))
	_, _ = w.WriteString(`" class="btn">`)
	_, _ = w.Write(util.EscapeHTML(n.Label))
	_, _ = w.WriteString(`</a>`)
	return ast.WalkContinue, nil
}

type buttonExtension struct{}

func (buttonExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(util.Prioritized(buttonParser{}, 50)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(buttonRenderer{}, 50)))
}

// ButtonExtension adds the [!button|Label](URL) syntax to goldmark.
func ButtonExtension() goldmark.Extender {
	return buttonExtension{}
}
