package model

// SpanSource identifies where a text span came from.
type SpanSource int

const (
	// SourceNative marks spans read from the PDF's own text objects.
	SourceNative SpanSource = iota
	// SourceOCR marks spans recognized from a rasterized page image.
	SourceOCR
)

func (s SpanSource) String() string {
	switch s {
	case SourceNative:
		return "native"
	case SourceOCR:
		return "ocr"
	default:
		return "unknown"
	}
}

// Span is a single recognized run of text with its position on the page.
// Spans are immutable once produced.
type Span struct {
	Text       string
	BBox       BBox
	PageNumber int // 1-indexed
	FontSize   float64
	Source     SpanSource
}
