// Package extract locates the primary readable subtree of a rendered page,
// excluding navigation, ads and sidebars.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/mempirate/pagemark/convert"
)

// minContentChars is the least visible text a selector hit must carry to be
// accepted as the content root. Shorter hits are usually teasers or chrome.
const minContentChars = 140

// contentSelectors are tried in order; within one selector the candidate
// with the most visible text wins.
var contentSelectors = []string{
	"article",
	"main",
	"[role=main]",
	"div[class*=postContent]",
	"div[class*=post-content]",
	"div[class*=article]",
	"div[class*=content]",
}

// noiseTags are excluded when measuring visible text.
var noiseTags = map[string]struct{}{
	"script": {}, "style": {}, "noscript": {}, "template": {},
	"nav": {}, "header": {}, "footer": {}, "aside": {},
}

// FindContentRoot returns the DOM subtree holding the page's main content.
// It tries known content selectors first and falls back to the densest
// direct child of <body>.
func FindContentRoot(doc *html.Node) (*html.Node, error) {
	if doc == nil {
		return nil, &convert.ExtractionError{Reason: "no document"}
	}

	gq := goquery.NewDocumentFromNode(doc)

	for _, sel := range contentSelectors {
		if n := densest(gq.Find(sel), minContentChars); n != nil {
			return n, nil
		}
	}

	body := gq.Find("body")
	if body.Length() == 0 {
		return nil, &convert.ExtractionError{Reason: "document has no body"}
	}

	if n := densest(body.Children(), minContentChars); n != nil {
		return n, nil
	}

	// Flat markup: settle for the body itself if it has any text at all.
	b := body.Get(0)
	if visibleTextLen(b) == 0 {
		return nil, &convert.ExtractionError{Reason: "no readable content found"}
	}
	return b, nil
}

// densest returns the node in sel with the most visible text, or nil when no
// candidate reaches the floor.
func densest(sel *goquery.Selection, floor int) *html.Node {
	var best *html.Node
	bestLen := floor - 1

	sel.Each(func(i int, s *goquery.Selection) {
		n := s.Get(0)
		if _, noise := noiseTags[n.Data]; noise {
			return
		}
		if l := visibleTextLen(n); l > bestLen {
			best, bestLen = n, l
		}
	})

	return best
}

// visibleTextLen measures the text a reader would see under n, skipping
// noise subtrees.
func visibleTextLen(n *html.Node) int {
	var total int
	var walk func(*html.Node)
	walk = func(d *html.Node) {
		if d.Type == html.ElementNode {
			if _, noise := noiseTags[d.Data]; noise {
				return
			}
		}
		if d.Type == html.TextNode {
			total += len(strings.TrimSpace(d.Data))
		}
		for c := d.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return total
}
