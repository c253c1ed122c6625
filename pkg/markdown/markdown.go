// Package markdown renders untrusted chat text to an inert, syntax-highlighted
// HTML fragment.
//
// Fenced code blocks are highlighted with chroma and emitted as
//
//	<pre><code class="hljs language-<lang>"><span class="hljs-k">...</span></code></pre>
//
// so a highlight.js-style stylesheet, or the one produced by WriteStylesheet,
// can target them. Every fragment is passed through a bluemonday policy before
// it is returned.
package markdown

import (
	"bytes"
	"html"
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

const (
	// BlockClass is set on every highlighted <code> element.
	BlockClass = "hljs"
	// LanguageClassPrefix precedes the language name on <code>.
	LanguageClassPrefix = "language-"
	// TokenClassPrefix precedes chroma's short token class names on <span>.
	TokenClassPrefix = "hljs-"
)

var highlightClass = regexp.MustCompile(`^(hljs|language-[A-Za-z0-9_+#-]+|hljs-[A-Za-z0-9_-]+)( (hljs|language-[A-Za-z0-9_+#-]+|hljs-[A-Za-z0-9_-]+))*$`)

type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.Linkify,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(
				util.Prioritized(&codeBlockRenderer{}, 100),
			),
		),
	)
	return &Renderer{md: md, policy: newPolicy()}
}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(highlightClass).OnElements("code", "span", "pre")
	return p
}

// Render converts text to sanitized HTML. Empty input yields an empty string;
// a conversion failure yields the HTML-escaped source so that the function
// never fails.
func (r *Renderer) Render(text string) string {
	if text == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		log.Warn().Err(err).Int("length", len(text)).Msg("markdown conversion failed, escaping source")
		return r.policy.Sanitize("<p>" + html.EscapeString(text) + "</p>")
	}
	return r.policy.Sanitize(buf.String())
}

var (
	defaultOnce     sync.Once
	defaultRenderer *Renderer
)

// Render uses a shared Renderer.
func Render(text string) string {
	defaultOnce.Do(func() {
		defaultRenderer = NewRenderer()
	})
	return defaultRenderer.Render(text)
}

// RenderPtr treats a nil pointer as absent input.
func RenderPtr(text *string) string {
	if text == nil {
		return ""
	}
	return Render(*text)
}
