package document

import (
	"net/url"
	"strings"
	"testing"
)

func TestFindTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "empty",
			content:  "",
			expected: "",
		},
		{
			name:     "simple",
			content:  "# Title\n",
			expected: "Title",
		},
		{
			name:     "no title",
			content:  "content",
			expected: "",
		},
		{
			name:     "multiple titles",
			content:  "# Title 1\n\n# Title 2\n",
			expected: "Title 1",
		},
		{
			name:     "h2 is not a title",
			content:  "## Section\n",
			expected: "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := &Document{Content: test.content}

			if title := doc.FindTitle(); title != test.expected {
				t.Errorf("unexpected title: %q", title)
			}
		})
	}
}

func TestFindTitleKeepsMetadata(t *testing.T) {
	doc := &Document{
		Content:  "# From Body\n",
		Metadata: Metadata{Title: "From Page"},
	}
	if title := doc.FindTitle(); title != "From Page" {
		t.Errorf("page metadata title must win, got %q", title)
	}
}

func TestToMarkdownFrontMatter(t *testing.T) {
	doc := &Document{
		Content: "# Hello\n\nWorld.\n",
		Metadata: Metadata{
			Source:        "https://example.com/hello",
			ProcessedTime: "2025-03-14",
		},
	}

	out, err := doc.ToMarkdown()
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(out, "---\n") {
		t.Error("missing front matter opening")
	}
	for _, want := range []string{"title: Hello", "source: https://example.com/hello", "processedTime: \"2025-03-14\""} {
		if !strings.Contains(out, want) {
			t.Errorf("front matter missing %q in:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "# Hello\n\nWorld.\n") {
		t.Error("body not appended after front matter")
	}
}

func TestDeriveName(t *testing.T) {
	tests := []struct {
		name     string
		doc      Document
		url      string
		expected string
	}{
		{
			name:     "title wins",
			doc:      Document{Metadata: Metadata{Title: "A Good Read"}},
			url:      "https://example.com/posts/123",
			expected: "A Good Read",
		},
		{
			name:     "path segment fallback skips numbers",
			doc:      Document{},
			url:      "https://example.com/posts/my-article/123",
			expected: "my-article",
		},
		{
			name:     "host fallback",
			doc:      Document{},
			url:      "https://www.example.com/",
			expected: "example-com",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			u, err := url.Parse(test.url)
			if err != nil {
				t.Fatal(err)
			}
			doc := test.doc
			if got := doc.DeriveName(u); got != test.expected {
				t.Errorf("got %q, want %q", got, test.expected)
			}
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName(`a/b\c: *what?* "quoted" <ok>|end.`); got != `a-b-c- -what-- -quoted- -ok--end` {
		t.Errorf("unexpected sanitized name: %q", got)
	}
}
