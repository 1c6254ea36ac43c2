package convert

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var whitespaceRe = regexp.MustCompile(`[ \t\r\n]+`)

// collapseWhitespace reduces every whitespace run to a single space. Code
// text never goes through here.
func collapseWhitespace(s string) string {
	return whitespaceRe.ReplaceAllString(s, " ")
}

// attrVal returns the value of the named attribute, or "".
func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// hasClassMatch reports whether any class of n matches the pattern.
func hasClassMatch(n *html.Node, re *regexp.Regexp) bool {
	return re.MatchString(attrVal(n, "class"))
}

// walkNodes visits n and its subtree in document order. The visitor returns
// false to stop the walk early.
func walkNodes(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walkNodes(c, visit) {
			return false
		}
	}
	return true
}

// leafText concatenates all text nodes under n in document order, verbatim.
// A <pre> holding many highlighted <code> or <span> tokens therefore yields
// one contiguous string.
func leafText(n *html.Node) string {
	var sb strings.Builder
	walkNodes(n, func(d *html.Node) bool {
		if d.Type == html.TextNode {
			sb.WriteString(d.Data)
		}
		return true
	})
	return sb.String()
}

var gutterClassRe = regexp.MustCompile(`(?i)(?:^|[\s-])(line-?numbers?|linenos?|gutter)(?:$|[\s-])`)

// codeText is leafText minus line-number gutters, which highlighters render
// as ordinary text nodes inside the code container.
func codeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(d *html.Node) {
		if d.Type == html.ElementNode && hasClassMatch(d, gutterClassRe) {
			return
		}
		if d.Type == html.TextNode {
			sb.WriteString(d.Data)
		}
		for c := d.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

var inlineTags = map[string]struct{}{
	"a": {}, "abbr": {}, "b": {}, "br": {}, "cite": {}, "code": {},
	"del": {}, "em": {}, "i": {}, "ins": {}, "kbd": {}, "mark": {},
	"q": {}, "s": {}, "samp": {}, "small": {}, "span": {}, "strong": {},
	"sub": {}, "sup": {}, "time": {}, "u": {}, "var": {}, "wbr": {},
}

func isInlineTag(tag string) bool {
	_, ok := inlineTags[tag]
	return ok
}

// hasOnlyInlineContent reports whether every element under n is an inline
// tag, i.e. the container is paragraph-like.
func hasOnlyInlineContent(n *html.Node) bool {
	onlyInline := true
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkNodes(c, func(d *html.Node) bool {
			if d.Type == html.ElementNode && !isInlineTag(d.Data) {
				onlyInline = false
				return false
			}
			return true
		})
		if !onlyInline {
			break
		}
	}
	return onlyInline
}

// longestBacktickRun returns the length of the longest run of consecutive
// backticks in s.
func longestBacktickRun(s string) int {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}
