package convert

import "fmt"

// ExtractionError signals that no usable content root was available. It is
// fatal for the run; no partial output should be written after it.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("content extraction failed: %s", e.Reason)
}

// RenderInconsistencyError signals a block or span kind the renderer has no
// template for. It indicates a defect in the segmenter, not bad input, and
// aborts the run instead of emitting silently truncated markdown.
type RenderInconsistencyError struct {
	Kind string
}

func (e *RenderInconsistencyError) Error() string {
	return fmt.Sprintf("no render template for kind %q", e.Kind)
}
