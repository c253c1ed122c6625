package markdown

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_EmptyAndAbsent(t *testing.T) {
	require.Equal(t, "", Render(""))
	require.Equal(t, "", RenderPtr(nil))
	empty := ""
	require.Equal(t, "", RenderPtr(&empty))
}

func TestRender_Emphasis(t *testing.T) {
	out := Render("**x**")
	require.Contains(t, out, "<strong>x</strong>")
}

func TestRender_StripsScripts(t *testing.T) {
	inputs := []string{
		"<script>alert(1)</script>",
		"hello <script>alert(1)</script> world",
		"**bold** <SCRIPT src=//evil.example/x.js></SCRIPT>",
		"<img src=x onerror=alert(1)>",
		"[click](javascript:alert(1))",
		"<a href=\"javascript:alert(1)\">x</a>",
		"<div onclick=\"alert(1)\">x</div>",
		"```html\n<script>alert(1)</script>\n```",
		"<iframe src=\"https://evil.example\"></iframe>",
	}
	for _, in := range inputs {
		out := strings.ToLower(Render(in))
		require.NotContains(t, out, "<script", in)
		require.NotContains(t, out, "javascript:", in)
		require.NotContains(t, out, "onerror", in)
		require.NotContains(t, out, "onclick", in)
		require.NotContains(t, out, "<iframe", in)
	}
}

func TestRender_ScriptInsideCodeBlockIsEscapedText(t *testing.T) {
	out := Render("```html\n<script>alert(1)</script>\n```")
	require.Contains(t, out, "&lt;")
	require.Contains(t, out, "script")
}

func TestRender_RecognizedLanguage(t *testing.T) {
	out := Render("```go\nfunc main() {\n\treturn\n}\n```")
	require.Contains(t, out, `<code class="hljs language-go">`)
	require.Contains(t, out, `<span class="hljs-`)
	require.Contains(t, out, "main")
}

func TestRender_UnknownLanguageFallsBack(t *testing.T) {
	out := Render("```definitely-not-a-language\nplain words here\n```")
	require.Contains(t, out, `<code class="hljs`)
	require.Contains(t, out, "plain")
	require.Contains(t, out, "words")
}

func TestRender_IndentedCodeBlock(t *testing.T) {
	out := Render("para\n\n    x := 1\n")
	require.Contains(t, out, `<pre><code class="hljs`)
}

func TestRender_Tables(t *testing.T) {
	out := Render("| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.Contains(t, out, "<table>")
	require.Contains(t, out, "<td>1</td>")
}

func TestRender_LinksGetNoFollow(t *testing.T) {
	out := Render("[site](https://example.com)")
	require.Contains(t, out, `href="https://example.com"`)
	require.Contains(t, out, "nofollow")
}

func TestHighlight_ExplicitAndDetected(t *testing.T) {
	body, name, err := Highlight("python", "def f():\n    return 1\n")
	require.NoError(t, err)
	require.Equal(t, "python", name)
	require.Contains(t, body, "hljs-")

	body, _, err = Highlight("", "#!/usr/bin/env python\nprint('hi')\n")
	require.NoError(t, err)
	require.Contains(t, body, "print")
}

func TestWriteStylesheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStylesheet(&buf, "github-dark"))
	require.Contains(t, buf.String(), ".hljs-")

	buf.Reset()
	require.NoError(t, WriteStylesheet(&buf, "no-such-style"))
	require.NotEmpty(t, buf.String())
}
