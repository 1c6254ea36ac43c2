package convert

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// skippedTags are never content: scripts, chrome, and page furniture.
var skippedTags = map[string]struct{}{
	"script": {}, "style": {}, "noscript": {}, "template": {}, "iframe": {},
	"nav": {}, "header": {}, "footer": {}, "aside": {}, "form": {},
	"button": {}, "svg": {}, "canvas": {}, "video": {}, "audio": {},
}

// Segmenter walks a rendered content root and partitions it into an ordered
// sequence of typed blocks. It borrows the DOM read-only and produces a new
// Document; nothing is shared across runs.
type Segmenter struct {
	classifier *Classifier
	base       *url.URL
	log        zerolog.Logger
}

// NewSegmenter returns a segmenter that resolves relative URLs against base.
// A nil base leaves references untouched.
func NewSegmenter(base *url.URL, log zerolog.Logger) *Segmenter {
	return &Segmenter{
		classifier: NewClassifier(log),
		base:       base,
		log:        log,
	}
}

// Segment produces the block sequence for one rendered page. It fails with
// an ExtractionError rather than silently emitting an empty document.
func (s *Segmenter) Segment(root *html.Node) (*Document, error) {
	if root == nil {
		return nil, &ExtractionError{Reason: "no content root"}
	}

	blocks := s.walkBlocks(root)
	if len(blocks) == 0 {
		return nil, &ExtractionError{Reason: "content root has no extractable content"}
	}

	return &Document{Blocks: blocks}, nil
}

// walkBlocks visits the children of n in document order. Consecutive loose
// inline content is merged into a single paragraph; block elements are
// dispatched to their builders; unrecognized containers pass through
// transparently with their children visited in place.
func (s *Segmenter) walkBlocks(n *html.Node) []Block {
	var blocks []Block
	var run []Span

	flush := func() {
		if p, ok := paragraph(run); ok {
			blocks = append(blocks, p)
		}
		run = nil
	}
	emit := func(b Block, ok bool) {
		flush()
		if ok {
			blocks = append(blocks, b)
		}
	}
	// hoist surfaces images absorbed during an inline walk: the pending
	// paragraph is split and the images follow it as blocks of their own.
	hoist := func(imgs []Block) {
		if len(imgs) > 0 {
			flush()
			blocks = append(blocks, imgs...)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			run = append(run, Span{Kind: SpanText, Text: c.Data})
			continue
		case html.ElementNode:
		default:
			continue
		}

		if _, skip := skippedTags[c.Data]; skip {
			continue
		}

		switch c.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			emit(s.heading(c))
		case "pre":
			emit(s.code(c))
		case "code":
			// A code element outside <pre> is usually inline, but editor
			// widgets emit bare marked-up <code> blocks too.
			if dec := s.classifier.Classify(c); dec.IsCode {
				emit(s.codeFrom(c, dec))
			} else {
				var imgs []Block
				run = append(run, s.inlineNode(c, &imgs)...)
				hoist(imgs)
			}
		case "ul", "ol":
			emit(s.list(c))
		case "blockquote":
			var imgs []Block
			b, ok := s.quote(c, &imgs)
			emit(b, ok)
			blocks = append(blocks, imgs...)
		case "img":
			emit(s.image(c))
		case "hr":
			emit(Block{Kind: KindDivider}, true)
		default:
			if isInlineTag(c.Data) {
				var imgs []Block
				run = append(run, s.inlineNode(c, &imgs)...)
				hoist(imgs)
				continue
			}
			// Block-level container: a styled div may be a code editor
			// widget; a container with only inline descendants is a
			// paragraph; anything else is a transparent layout wrapper.
			if c.Data == "div" {
				if dec := s.classifier.Classify(c); dec.IsCode {
					emit(s.codeFrom(c, dec))
					continue
				}
			}
			if hasOnlyInlineContent(c) {
				var imgs []Block
				emit(paragraph(s.inline(c, &imgs)))
				blocks = append(blocks, imgs...)
			} else {
				flush()
				blocks = append(blocks, s.walkBlocks(c)...)
			}
		}
	}
	flush()

	return blocks
}

func (s *Segmenter) heading(n *html.Node) (Block, bool) {
	level := int(n.Data[1] - '0')
	if level < 1 {
		level = 1
	} else if level > 6 {
		level = 6
	}

	text := strings.TrimSpace(collapseWhitespace(leafText(n)))
	if text == "" {
		return Block{}, false
	}
	return Block{Kind: KindHeading, Level: level, Text: text}, true
}

// code classifies a canonical candidate and absorbs its whole subtree into
// one block. A <pre> holding several highlighted <code> spans yields a
// single block whose text is the leaf concatenation in document order.
func (s *Segmenter) code(n *html.Node) (Block, bool) {
	dec := s.classifier.Classify(n)
	if !dec.IsCode {
		return Block{}, false
	}
	return s.codeFrom(n, dec)
}

func (s *Segmenter) codeFrom(n *html.Node, dec CodeDecision) (Block, bool) {
	raw := codeText(n)
	if strings.TrimSpace(raw) == "" {
		return Block{}, false
	}
	return Block{Kind: KindCode, Language: dec.Language, Raw: raw}, true
}

func (s *Segmenter) list(n *html.Node) (Block, bool) {
	b := Block{Kind: KindList, Ordered: n.Data == "ol"}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		if item := s.walkBlocks(c); len(item) > 0 {
			b.Items = append(b.Items, item)
		}
	}
	if len(b.Items) == 0 {
		return Block{}, false
	}
	return b, true
}

func (s *Segmenter) quote(n *html.Node, imgs *[]Block) (Block, bool) {
	spans := normalizeSpans(s.inline(n, imgs))
	if len(spans) == 0 {
		return Block{}, false
	}
	return Block{Kind: KindQuote, Spans: spans}, true
}

func (s *Segmenter) image(n *html.Node) (Block, bool) {
	src := s.resolveRef(attrVal(n, "src"))
	if src == "" {
		return Block{}, false
	}
	alt := strings.TrimSpace(collapseWhitespace(attrVal(n, "alt")))
	return Block{Kind: KindImage, Alt: alt, Src: src}, true
}

// inline flattens the children of n into a span sequence. Images found along
// the way are appended to imgs; the data model has no inline-image span, so
// the caller surfaces them as blocks after the enclosing inline content.
func (s *Segmenter) inline(n *html.Node, imgs *[]Block) []Span {
	var spans []Span
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		spans = append(spans, s.inlineNode(c, imgs)...)
	}
	return spans
}

// inlineNode maps one node to spans. Formatting tags nest recursively;
// unknown inline wrappers are transparent; images are absorbed into imgs.
func (s *Segmenter) inlineNode(n *html.Node, imgs *[]Block) []Span {
	switch n.Type {
	case html.TextNode:
		return []Span{{Kind: SpanText, Text: n.Data}}
	case html.ElementNode:
	default:
		return nil
	}

	if _, skip := skippedTags[n.Data]; skip {
		return nil
	}

	switch n.Data {
	case "b", "strong":
		if ch := s.inline(n, imgs); len(ch) > 0 {
			return []Span{{Kind: SpanBold, Children: ch}}
		}
	case "i", "em":
		if ch := s.inline(n, imgs); len(ch) > 0 {
			return []Span{{Kind: SpanItalic, Children: ch}}
		}
	case "code", "kbd", "samp":
		if text := leafText(n); text != "" {
			return []Span{{Kind: SpanInlineCode, Text: text}}
		}
	case "a":
		ch := s.inline(n, imgs)
		if len(ch) == 0 {
			return nil
		}
		return []Span{{Kind: SpanLink, Href: s.resolveRef(attrVal(n, "href")), Children: ch}}
	case "img":
		// Linked figures and span-wrapped images are common article
		// markup; absorb the image so the caller can emit it as a block.
		if b, ok := s.image(n); ok {
			*imgs = append(*imgs, b)
		}
	case "br":
		return []Span{{Kind: SpanText, Text: "\n"}}
	case "p", "div":
		// Paragraph-ish tags inside a quote or link separate their
		// content with a hard break.
		ch := s.inline(n, imgs)
		if len(ch) > 0 {
			return append(ch, Span{Kind: SpanText, Text: "\n"})
		}
	default:
		return s.inline(n, imgs)
	}
	return nil
}

// resolveRef resolves a relative reference against the page base URL.
func (s *Segmenter) resolveRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || s.base == nil {
		return ref
	}
	resolved, err := s.base.Parse(ref)
	if err != nil {
		return ref
	}
	return resolved.String()
}

// paragraph normalizes an inline run into a paragraph block, reporting false
// when nothing meaningful remains.
func paragraph(spans []Span) (Block, bool) {
	spans = normalizeSpans(spans)
	if len(spans) == 0 {
		return Block{}, false
	}
	return Block{Kind: KindParagraph, Spans: spans}, true
}

// normalizeSpans collapses whitespace in text spans, prunes empty spans, and
// trims the edges of the sequence. Hard breaks ("\n" text spans) survive the
// collapse; trailing ones are dropped.
func normalizeSpans(spans []Span) []Span {
	var out []Span
	for _, sp := range spans {
		switch sp.Kind {
		case SpanText:
			if sp.Text != "\n" {
				sp.Text = collapseWhitespace(sp.Text)
				if sp.Text == "" {
					continue
				}
			}
		case SpanInlineCode:
			if sp.Text == "" {
				continue
			}
		default:
			sp.Children = normalizeSpans(sp.Children)
			if len(sp.Children) == 0 {
				continue
			}
		}
		out = append(out, sp)
	}

	// Trim whitespace from the edges of the run.
	for len(out) > 0 && isBlankSpan(out[0]) {
		out = out[1:]
	}
	if len(out) > 0 && out[0].Kind == SpanText {
		out[0].Text = strings.TrimLeft(out[0].Text, " ")
		if out[0].Text == "" {
			out = out[1:]
		}
	}
	for len(out) > 0 && isBlankSpan(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	if n := len(out); n > 0 && out[n-1].Kind == SpanText {
		out[n-1].Text = strings.TrimRight(out[n-1].Text, " ")
		if out[n-1].Text == "" {
			out = out[:n-1]
		}
	}

	return out
}

func isBlankSpan(sp Span) bool {
	return sp.Kind == SpanText && strings.TrimSpace(sp.Text) == ""
}
