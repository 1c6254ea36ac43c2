// Package document assembles the final markdown file: converted body plus
// YAML front matter describing where and when it came from.
package document

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// Metadata is rendered as YAML front matter ahead of the body.
type Metadata struct {
	Title         string `yaml:"title"`
	Source        string `yaml:"source"`
	ProcessedTime string `yaml:"processedTime"`
}

// Document is one converted page.
type Document struct {
	// Content is the markdown produced by the conversion pipeline.
	Content  string
	Metadata Metadata
}

// FindTitle returns the document title, recovering it from the first H1 of
// the markdown body when page metadata carried none.
func (d *Document) FindTitle() string {
	if d.Metadata.Title != "" {
		return d.Metadata.Title
	}

	md := goldmark.New()
	content := []byte(d.Content)
	root := md.Parser().Parse(text.NewReader(content))

	var title string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if heading, ok := n.(*ast.Heading); ok && entering && heading.Level == 1 {
			var sb strings.Builder
			for child := heading.FirstChild(); child != nil; child = child.NextSibling() {
				if t, ok := child.(*ast.Text); ok {
					sb.Write(t.Segment.Value(content))
				}
			}
			title = sb.String()
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	d.Metadata.Title = title
	return title
}

// ToMarkdown renders the document with its metadata as YAML front matter.
func (d *Document) ToMarkdown() (string, error) {
	d.FindTitle()

	frontMatter, err := yaml.Marshal(d.Metadata)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal metadata to YAML")
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(frontMatter)
	sb.WriteString("---\n\n")
	sb.WriteString(d.Content)

	return sb.String(), nil
}

// DeriveName picks a base filename for the document: the title when there is
// one, then the last meaningful URL path segment, then the host.
func (d *Document) DeriveName(u *url.URL) string {
	if title := d.FindTitle(); title != "" {
		return SanitizeFileName(title)
	}

	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if seg == "" || isNumeric(seg) {
			continue
		}
		return SanitizeFileName(seg)
	}

	host := strings.TrimPrefix(u.Host, "www.")
	return strings.ReplaceAll(host, ".", "-")
}

// PageTitle extracts the <title> of a parsed page, sanitized for use in a
// filename. It returns "" when the page has none.
func PageTitle(doc *html.Node) string {
	var title string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return SanitizeFileName(title)
}

var unsafeFileChars = regexp.MustCompile(`[\/\\:\*\?"<>\|\p{C}]`)

// SanitizeFileName replaces characters that are unsafe in filenames.
func SanitizeFileName(name string) string {
	name = unsafeFileChars.ReplaceAllString(name, "-")
	return strings.Trim(name, " .")
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
