package convert

// BlockKind discriminates the block-level content variants.
type BlockKind = string

const (
	KindHeading   BlockKind = "heading"
	KindParagraph BlockKind = "paragraph"
	KindCode      BlockKind = "code"
	KindList      BlockKind = "list"
	KindQuote     BlockKind = "quote"
	KindImage     BlockKind = "image"
	KindDivider   BlockKind = "divider"
)

// SpanKind discriminates the inline span variants.
type SpanKind = string

const (
	SpanText       SpanKind = "text"
	SpanBold       SpanKind = "bold"
	SpanItalic     SpanKind = "italic"
	SpanInlineCode SpanKind = "code"
	SpanLink       SpanKind = "link"
)

// Span is one unit of formatted text inside a paragraph, heading or quote.
// Text and InlineCode carry their content in Text; Bold, Italic and Link
// nest their content in Children.
type Span struct {
	Kind     SpanKind
	Text     string
	Href     string
	Children []Span
}

// Block is a tagged variant over the block-level content types. Only the
// fields belonging to Kind are populated.
type Block struct {
	Kind BlockKind

	// Heading
	Level int
	Text  string

	// Paragraph, Quote
	Spans []Span

	// Code. Raw keeps the original leaf text verbatim, including all
	// whitespace; it is never markdown-escaped.
	Language string
	Raw      string

	// List. Each item is a block sequence of its own, so nested lists keep
	// their recursive structure instead of a flat indent counter.
	Ordered bool
	Items   [][]Block

	// Image
	Alt string
	Src string
}

// Document is the ordered block sequence produced by one segmentation run.
// It is owned by the conversion pipeline for the duration of that run and
// consumed exactly once by the renderer.
type Document struct {
	Blocks []Block
}
