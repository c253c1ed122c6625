package markdown

import (
	"bytes"
	"html"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

var formatter = chromahtml.New(
	chromahtml.WithClasses(true),
	chromahtml.ClassPrefix(TokenClassPrefix),
	chromahtml.PreventSurroundingPre(true),
)

type codeBlockRenderer struct{}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	lang := string(n.Language(source))
	return ast.WalkSkipChildren, writeHighlighted(w, lang, blockText(n, source))
}

func (r *codeBlockRenderer) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	return ast.WalkSkipChildren, writeHighlighted(w, "", blockText(node, source))
}

func blockText(n ast.Node, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return b.String()
}

// Highlight renders code as highlighted spans. A recognized language tag picks
// the lexer; otherwise the language is detected from the content. The
// returned name is the lexer's canonical alias.
func Highlight(lang, code string) (string, string, error) {
	lexer := lookupLexer(lang)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	name := lexerName(lexer)
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", name, errors.Wrap(err, "markdown: tokenise")
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, styles.Fallback, it); err != nil {
		return "", name, errors.Wrap(err, "markdown: format")
	}
	return buf.String(), name, nil
}

func writeHighlighted(w util.BufWriter, lang, code string) error {
	body, name, err := Highlight(lang, code)
	if err != nil {
		body = html.EscapeString(code)
	}
	_, _ = w.WriteString(`<pre><code class="` + BlockClass)
	if name != "" {
		_, _ = w.WriteString(" " + LanguageClassPrefix + name)
	}
	_, _ = w.WriteString(`">`)
	_, _ = w.WriteString(body)
	_, _ = w.WriteString("</code></pre>\n")
	return nil
}

func lookupLexer(lang string) chroma.Lexer {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return nil
	}
	return lexers.Get(lang)
}

// lexerName returns a class-safe lower-case name, empty for the plaintext
// fallback.
func lexerName(l chroma.Lexer) string {
	cfg := l.Config()
	if cfg == nil || l == lexers.Fallback {
		return ""
	}
	name := cfg.Name
	if len(cfg.Aliases) > 0 {
		name = cfg.Aliases[0]
	}
	name = strings.ToLower(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '+', r == '#', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	return b.String()
}

// WriteStylesheet writes CSS for the hljs- token classes using a chroma style.
func WriteStylesheet(w io.Writer, styleName string) error {
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	return formatter.WriteCSS(w, style)
}
