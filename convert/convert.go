// Package convert turns a rendered HTML content root into clean markdown.
// It segments the DOM into typed blocks, classifies embedded code, and
// renders the result deterministically.
package convert

import (
	"net/url"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/mempirate/pagemark/log"
)

// Converter runs segmentation followed by rendering for one frozen DOM
// snapshot. It holds no state across runs; converting the same root twice
// yields identical output.
type Converter struct {
	seg *Segmenter
	log zerolog.Logger
}

// NewConverter returns a converter that resolves relative references
// against base.
func NewConverter(base *url.URL) *Converter {
	logger := log.NewLogger("convert")
	return &Converter{
		seg: NewSegmenter(base, logger),
		log: logger,
	}
}

// Convert produces the markdown text for the given content root. Segmenter
// failures propagate unchanged; there are no retries, the page is already
// rendered and stable by this stage.
func (c *Converter) Convert(root *html.Node) (string, error) {
	doc, err := c.seg.Segment(root)
	if err != nil {
		return "", err
	}

	md, err := Render(doc)
	if err != nil {
		return "", err
	}

	c.log.Debug().Int("blocks", len(doc.Blocks)).Int("bytes", len(md)).Msg("Converted content root")

	return md, nil
}
