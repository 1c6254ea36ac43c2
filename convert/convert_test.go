package convert

import (
	"net/url"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const samplePage = `
<article>
	<h1>Build a CLI</h1>
	<p>This guide uses <b>Go</b> and the <a href="/docs/kong">kong</a> library.</p>
	<pre><code class="language-go">func main() {
	kong.Parse(&amp;cli)
}</code></pre>
	<h2>Steps</h2>
	<ul>
		<li>install</li>
		<li>write <code>main.go</code></li>
	</ul>
	<hr>
	<blockquote>Ship it.</blockquote>
</article>`

const sampleMarkdown = `# Build a CLI

This guide uses **Go** and the [kong](https://example.com/docs/kong) library.

` + "```go\nfunc main() {\n\tkong.Parse(&cli)\n}\n```" + `

## Steps

- install
- write ` + "`main.go`" + `

---

> Ship it.
`

func TestConvertPage(t *testing.T) {
	base, _ := url.Parse("https://example.com/guides/cli")
	c := NewConverter(base)

	got, err := c.Convert(parseFragment(t, samplePage, "article"))
	if err != nil {
		t.Fatal(err)
	}
	if got != sampleMarkdown {
		t.Errorf("unexpected markdown:\n--- got ---\n%s\n--- want ---\n%s", got, sampleMarkdown)
	}
}

func TestConvertIdempotent(t *testing.T) {
	base, _ := url.Parse("https://example.com/")
	c := NewConverter(base)
	root := parseFragment(t, samplePage, "article")

	first, err := c.Convert(root)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Convert(root)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("converting the same frozen root twice produced different output")
	}
}

func TestConvertPropagatesExtractionError(t *testing.T) {
	c := NewConverter(nil)

	_, err := c.Convert(nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*ExtractionError); !ok {
		t.Errorf("expected ExtractionError, got %T", err)
	}
}

// TestEscapingRoundTrip renders literal text containing markdown specials
// and checks that an independent parser recovers the original characters.
func TestEscapingRoundTrip(t *testing.T) {
	literal := "a *b* [c] _d_ `e` and \\f"

	c := NewConverter(nil)
	md, err := c.Convert(parseFragment(t, "<div><p>"+literal+"</p></div>", "div"))
	if err != nil {
		t.Fatal(err)
	}

	if got := parsedText(t, md); got != literal {
		t.Errorf("round trip lost characters: %q -> %q", literal, got)
	}
}

// parsedText parses markdown with goldmark and concatenates its text nodes.
func parsedText(t *testing.T, md string) string {
	t.Helper()

	content := []byte(md)
	root := goldmark.New().Parser().Parse(text.NewReader(content))

	var sb strings.Builder
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(content))
		case *ast.CodeSpan:
			// Handled through its text children.
		case *ast.String:
			sb.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}
