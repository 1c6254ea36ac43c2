package convert

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// parseFragment parses src and returns the first element with the given tag.
func parseFragment(t *testing.T, src, tag string) *html.Node {
	t.Helper()

	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	var found *html.Node
	walkNodes(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == tag {
			found = n
			return false
		}
		return true
	})

	if found == nil {
		t.Fatalf("no <%s> in fragment", tag)
	}
	return found
}

func testClassifier() *Classifier {
	return NewClassifier(zerolog.Nop())
}

func TestClassifyLanguageMarker(t *testing.T) {
	tests := []struct {
		name string
		src  string
		tag  string
		lang string
	}{
		{
			name: "language class on pre",
			src:  `<pre class="language-python">import os</pre>`,
			tag:  "pre",
			lang: "python",
		},
		{
			name: "lang class on pre",
			src:  `<pre class="lang-go">package main</pre>`,
			tag:  "pre",
			lang: "go",
		},
		{
			name: "marker on inner code",
			src:  `<pre><code class="language-rust">fn main() {}</code></pre>`,
			tag:  "pre",
			lang: "rust",
		},
		{
			name: "marker on ancestor",
			src:  `<div class="language-js"><pre>var x = 1;</pre></div>`,
			tag:  "pre",
			lang: "js",
		},
		{
			name: "data-lang attribute",
			src:  `<div data-lang="ruby" style="font-family: monospace">puts :ok</div>`,
			tag:  "div",
			lang: "ruby",
		},
	}

	c := testClassifier()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dec := c.Classify(parseFragment(t, test.src, test.tag))
			if !dec.IsCode {
				t.Fatal("expected code")
			}
			if dec.Language != test.lang {
				t.Errorf("unexpected language: %q", dec.Language)
			}
		})
	}
}

func TestClassifyCanonicalContainers(t *testing.T) {
	c := testClassifier()

	pre := parseFragment(t, `<pre>plain text, no language</pre>`, "pre")
	if dec := c.Classify(pre); !dec.IsCode || dec.Language != "" {
		t.Errorf("bare <pre> should be generic code, got %+v", dec)
	}

	codeInPre := parseFragment(t, `<pre><code>x</code></pre>`, "code")
	if dec := c.Classify(codeInPre); !dec.IsCode {
		t.Error("<code> inside <pre> should be code")
	}

	inlineCode := parseFragment(t, `<p>install <code>vim</code> first</p>`, "code")
	if dec := c.Classify(inlineCode); dec.IsCode {
		t.Error("<code> outside <pre> with no signals should not be code")
	}
}

func TestClassifyHeuristics(t *testing.T) {
	// Monospace styling, a gutter, indentation, and symbol density all point
	// the same way.
	src := `<div class="editor hljs">` +
		`<div class="line-numbers">1 2 3</div>` +
		`<div>func main() {
	x := compute();
	print(x);
}</div></div>`

	c := testClassifier()
	if dec := c.Classify(parseFragment(t, src, "div")); !dec.IsCode {
		t.Error("editor widget should classify as code")
	}

	prose := parseFragment(t, `<div><p>A perfectly ordinary sentence about nothing in particular.</p></div>`, "div")
	if dec := c.Classify(prose); dec.IsCode {
		t.Error("prose should not classify as code")
	}
}

func TestGuessLanguage(t *testing.T) {
	tests := []struct {
		code string
		lang string
	}{
		{"import { foo } from './foo.ts'", "typescript"},
		{"export const x = 1", "typescript"},
		{"def handler(event):\n    return event", "python"},
		{"npm install && cd app", "bash"},
		{"./setup.sh --force", "bash"},
		{"SELECT * FROM users;", ""},
	}

	for _, test := range tests {
		if got := GuessLanguage(test.code); got != test.lang {
			t.Errorf("GuessLanguage(%q) = %q, want %q", test.code, got, test.lang)
		}
	}
}
