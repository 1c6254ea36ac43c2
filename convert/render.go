package convert

import (
	"strconv"
	"strings"
)

// listIndent is the indentation added per list nesting level.
const listIndent = "    "

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
)

// Render converts a segmented document into markdown text. Blocks are joined
// by exactly one blank line. Rendering is a pure function of the document:
// identical input yields byte-identical output.
func Render(doc *Document) (string, error) {
	parts := make([]string, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		text, err := renderBlock(b)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}

func renderBlock(b Block) (string, error) {
	switch b.Kind {
	case KindHeading:
		return strings.Repeat("#", b.Level) + " " + escapeText(b.Text), nil
	case KindParagraph:
		return renderSpans(b.Spans)
	case KindCode:
		return renderCode(b), nil
	case KindList:
		return renderList(b, 0)
	case KindQuote:
		inner, err := renderSpans(b.Spans)
		if err != nil {
			return "", err
		}
		return prefixLines(inner, "> "), nil
	case KindImage:
		return "![" + escapeText(b.Alt) + "](" + renderTarget(b.Src) + ")", nil
	case KindDivider:
		return "---", nil
	default:
		return "", &RenderInconsistencyError{Kind: b.Kind}
	}
}

// renderCode emits a fenced block. The fence is extended past the longest
// backtick run inside the code so the content can never close it early; the
// raw text goes between the fences unmodified.
func renderCode(b Block) string {
	fenceLen := 3
	if run := longestBacktickRun(b.Raw); run >= fenceLen {
		fenceLen = run + 1
	}
	fence := strings.Repeat("`", fenceLen)

	var sb strings.Builder
	sb.WriteString(fence)
	sb.WriteString(b.Language)
	sb.WriteString("\n")
	sb.WriteString(b.Raw)
	if !strings.HasSuffix(b.Raw, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString(fence)
	return sb.String()
}

func renderList(b Block, depth int) (string, error) {
	indent := strings.Repeat(listIndent, depth)
	var lines []string

	for i, item := range b.Items {
		marker := "- "
		if b.Ordered {
			marker = strconv.Itoa(i+1) + ". "
		}

		wroteMarker := false
		for _, ib := range item {
			if ib.Kind == KindList {
				nested, err := renderList(ib, depth+1)
				if err != nil {
					return "", err
				}
				lines = append(lines, nested)
				continue
			}

			text, err := renderBlock(ib)
			if err != nil {
				return "", err
			}
			for j, line := range strings.Split(text, "\n") {
				if !wroteMarker && j == 0 {
					lines = append(lines, indent+marker+line)
					wroteMarker = true
				} else {
					lines = append(lines, indent+listIndent+line)
				}
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}

func renderSpans(spans []Span) (string, error) {
	var sb strings.Builder
	for _, sp := range spans {
		text, err := renderSpan(sp)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// renderSpan composes inline markdown recursively, innermost first. A span
// kind with no template is a programming defect and aborts the run.
func renderSpan(sp Span) (string, error) {
	switch sp.Kind {
	case SpanText:
		return escapeText(sp.Text), nil
	case SpanBold:
		inner, err := renderSpans(sp.Children)
		if err != nil {
			return "", err
		}
		return "**" + inner + "**", nil
	case SpanItalic:
		inner, err := renderSpans(sp.Children)
		if err != nil {
			return "", err
		}
		return "_" + inner + "_", nil
	case SpanInlineCode:
		return renderInlineCode(sp.Text), nil
	case SpanLink:
		inner, err := renderSpans(sp.Children)
		if err != nil {
			return "", err
		}
		return "[" + inner + "](" + renderTarget(sp.Href) + ")", nil
	default:
		return "", &RenderInconsistencyError{Kind: sp.Kind}
	}
}

var targetEscaper = strings.NewReplacer("<", "%3C", ">", "%3E")

// renderTarget formats a link or image destination. Destinations holding
// spaces or parentheses go into the angle-bracket form so the inline syntax
// stays parseable by standard renderers.
func renderTarget(dest string) string {
	dest = targetEscaper.Replace(dest)
	if strings.ContainsAny(dest, " ()") {
		return "<" + dest + ">"
	}
	return dest
}

// renderInlineCode picks a delimiter longer than any backtick run in the
// content, padding with spaces when the content starts or ends with one.
func renderInlineCode(code string) string {
	delim := "`"
	if run := longestBacktickRun(code); run >= 1 {
		delim = strings.Repeat("`", run+1)
	}
	if strings.HasPrefix(code, "`") || strings.HasSuffix(code, "`") {
		return delim + " " + code + " " + delim
	}
	return delim + code + delim
}

// escapeText backslash-escapes markdown special characters in literal text.
// Code content never goes through here.
func escapeText(s string) string {
	return markdownEscaper.Replace(s)
}

func prefixLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
