package convert

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// CodeSignalThreshold is the heuristic score at or above which an unmarked
// node is treated as a code block. Each signal in scoreCodeSignals is worth
// one point; the value is conservative so prose rarely turns into fences.
const CodeSignalThreshold = 3

// symbolDensityFloor is the minimum ratio of code punctuation to total
// characters that counts as a symbol-density signal.
const symbolDensityFloor = 0.05

// CodeDecision is the classifier verdict for one candidate node.
type CodeDecision struct {
	IsCode   bool
	Language string
}

var (
	languageClassRe  = regexp.MustCompile(`(?:^|\s)(?:language|lang)-([A-Za-z0-9#+_.-]+)`)
	monospaceStyleRe = regexp.MustCompile(`(?i)font-family\s*:[^;]*\b(mono|monospace|courier|consolas|menlo|monaco)`)
	monoClassRe      = regexp.MustCompile(`(?i)(?:^|[\s-])(highlight|hljs|chroma|codemirror|monaco|mono(?:space)?|sourcecode|code-?block)(?:$|[\s-])`)
	codeSymbolRe     = regexp.MustCompile(`[{}()\[\];=<>]`)
)

// Classifier decides whether a DOM node holds code, and in which language.
// It is a pure function of the node and its subtree; the logger only carries
// diagnostics for close calls.
type Classifier struct {
	log zerolog.Logger
}

func NewClassifier(log zerolog.Logger) *Classifier {
	return &Classifier{log: log}
}

// Classify applies the decision policy in order: an explicit language marker
// wins, then canonical <pre>/<code> containment, then heuristic scoring
// against CodeSignalThreshold. Anything below the threshold is prose.
func (c *Classifier) Classify(n *html.Node) CodeDecision {
	if lang, ok := findLanguageMarker(n); ok {
		return CodeDecision{IsCode: true, Language: lang}
	}

	if isCanonicalCodeContainer(n) {
		return CodeDecision{IsCode: true, Language: GuessLanguage(codeText(n))}
	}

	score := scoreCodeSignals(n)
	if score >= CodeSignalThreshold {
		return CodeDecision{IsCode: true, Language: GuessLanguage(codeText(n))}
	}

	if score == CodeSignalThreshold-1 {
		// Close call. Prose is the safe interpretation, but leave a trace
		// for tuning the threshold.
		c.log.Debug().Str("tag", n.Data).Int("score", score).Msg("Ambiguous code candidate, treating as prose")
	}

	return CodeDecision{}
}

// findLanguageMarker looks for a language class or data attribute on the
// node, its ancestors, and any inner <code>. Highlighters often tag the
// inner <code> rather than the <pre> the segmenter hands over.
func findLanguageMarker(n *html.Node) (string, bool) {
	for anc := n; anc != nil; anc = anc.Parent {
		if anc.Type != html.ElementNode {
			continue
		}
		if lang, ok := markerOn(anc); ok {
			return lang, true
		}
	}

	var lang string
	var found bool
	walkNodes(n, func(d *html.Node) bool {
		if d.Type == html.ElementNode && d.Data == "code" {
			if l, ok := markerOn(d); ok {
				lang, found = l, true
				return false
			}
		}
		return true
	})
	return lang, found
}

func markerOn(n *html.Node) (string, bool) {
	if m := languageClassRe.FindStringSubmatch(attrVal(n, "class")); m != nil {
		return strings.ToLower(m[1]), true
	}
	for _, key := range [...]string{"data-language", "data-lang"} {
		if v := attrVal(n, key); v != "" {
			return strings.ToLower(v), true
		}
	}
	return "", false
}

// isCanonicalCodeContainer reports whether n is a <pre>, or a <code> nested
// inside one.
func isCanonicalCodeContainer(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if n.Data == "pre" {
		return true
	}
	if n.Data != "code" {
		return false
	}
	for anc := n.Parent; anc != nil; anc = anc.Parent {
		if anc.Type == html.ElementNode && anc.Data == "pre" {
			return true
		}
	}
	return false
}

// scoreCodeSignals counts structural cues that a styled container is really
// a code editor widget: monospace styling, a line-number gutter, preserved
// indentation, and source-like symbol density.
func scoreCodeSignals(n *html.Node) int {
	score := 0

	if monospaceStyleRe.MatchString(attrVal(n, "style")) || hasClassMatch(n, monoClassRe) {
		score++
	}

	gutter := false
	walkNodes(n, func(d *html.Node) bool {
		if d != n && d.Type == html.ElementNode && hasClassMatch(d, gutterClassRe) {
			gutter = true
			return false
		}
		return true
	})
	if !gutter && n.Parent != nil {
		for sib := n.Parent.FirstChild; sib != nil; sib = sib.NextSibling {
			if sib != n && sib.Type == html.ElementNode && hasClassMatch(sib, gutterClassRe) {
				gutter = true
				break
			}
		}
	}
	if gutter {
		score++
	}

	text := codeText(n)
	if hasIndentedLines(text) {
		score++
	}
	if len(text) > 0 {
		symbols := len(codeSymbolRe.FindAllString(text, -1))
		if float64(symbols)/float64(len(text)) >= symbolDensityFloor {
			score++
		}
	}

	return score
}

// hasIndentedLines reports whether at least two lines of s start with
// leading indentation, the usual shape of pasted source.
func hasIndentedLines(s string) bool {
	indented := 0
	for _, line := range strings.Split(s, "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "  ") || strings.HasPrefix(line, "\t") {
			indented++
			if indented >= 2 {
				return true
			}
		}
	}
	return false
}

// languagePatterns is the ordered content checklist used when a code block
// carries no explicit marker. First match wins.
var languagePatterns = []struct {
	lang string
	re   *regexp.Regexp
}{
	{"typescript", regexp.MustCompile(`(?i)\.(tsx?|jsx?)(\s|$)`)},
	{"typescript", regexp.MustCompile(`\b(import|export|interface)\b|\bfunction\s+\w+\s*\(|\bconst\s|\blet\s`)},
	{"python", regexp.MustCompile(`(?i)\.py(\s|$)`)},
	{"python", regexp.MustCompile(`\b(def|class|import)\s`)},
	{"bash", regexp.MustCompile(`(?i)\.(sh|bash)(\s|$)`)},
	{"bash", regexp.MustCompile(`\b(npm|yarn|pnpm|cd|ls|mkdir)\s`)},
}

// GuessLanguage guesses the language of unmarked code from its content.
// It returns "" when nothing matches, which renders as a bare fence.
func GuessLanguage(code string) string {
	for _, p := range languagePatterns {
		if p.re.MatchString(code) {
			return p.lang
		}
	}
	return ""
}
