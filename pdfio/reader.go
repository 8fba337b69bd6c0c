package pdfio

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/shipdocs/manifex/model"
)

// charMergeGap is the maximum horizontal gap, as a fraction of font
// size, between adjacent native text runs merged into one span. PDFs
// frequently emit text character by character.
const charMergeGap = 0.3

// lineTolerance is the vertical distance within which native text runs
// are considered to sit on the same line.
const lineTolerance = 2.0

// Ruling is a native horizontal or vertical ruling line, typically drawn
// as a thin filled rectangle in the content stream.
type Ruling struct {
	Horizontal bool
	// Position is the ruling's coordinate on its alignment axis (Y for
	// horizontal rulings, X for vertical).
	Position float64
	// Start and End bound the ruling on the perpendicular axis.
	Start, End float64
}

// Length returns the ruling's extent.
func (r Ruling) Length() float64 {
	return r.End - r.Start
}

// Page holds the native content of a single PDF page.
type Page struct {
	Number    int // 1-indexed
	Width     float64
	Height    float64
	Spans     []model.Span
	Rulings   []Ruling
	PlainText string
}

// HasNativeText reports whether the page carries enough native text to
// be treated as machine-generated rather than a pure image.
func (p *Page) HasNativeText() bool {
	return len(p.Spans) >= 3
}

// Read parses the document and returns the native content of the
// requested pages. Page numbers are 1-indexed; nil means all pages.
// A document that cannot be parsed at all yields an error; a single
// malformed page yields an empty page instead of failing the document.
func Read(data []byte, pageNumbers []int) ([]*Page, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	total := r.NumPage()
	pages := pageNumbers
	if len(pages) == 0 {
		pages = make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
	}

	out := make([]*Page, 0, len(pages))
	for _, num := range pages {
		if num < 1 || num > total {
			continue
		}
		out = append(out, readPage(r, num))
	}
	return out, nil
}

// readPage extracts one page's content, recovering from parser panics on
// malformed content streams: such pages contribute no native content and
// the page falls through to OCR.
func readPage(r *pdf.Reader, num int) (page *Page) {
	page = &Page{Number: num}

	defer func() {
		if rec := recover(); rec != nil {
			page.Spans = nil
			page.Rulings = nil
			page.PlainText = ""
		}
	}()

	p := r.Page(num)
	if p.V.IsNull() {
		return page
	}

	page.Width, page.Height = mediaBoxSize(p)

	content := p.Content()
	page.Spans = mergeTexts(content.Text, page.Height, num)
	page.Rulings = extractRulings(content.Rect, page.Height)
	page.PlainText = assemblePlainText(page.Spans)
	return page
}

// mediaBoxSize resolves the page dimensions, walking up the page tree
// for inherited media boxes. Letter size is assumed when absent.
func mediaBoxSize(p pdf.Page) (w, h float64) {
	box := p.V.Key("MediaBox")
	for parent := p.V.Key("Parent"); box.Kind() != pdf.Array && !parent.IsNull(); parent = parent.Key("Parent") {
		box = parent.Key("MediaBox")
	}
	if box.Kind() != pdf.Array || box.Len() < 4 {
		return 612, 792
	}
	w = box.Index(2).Float64() - box.Index(0).Float64()
	h = box.Index(3).Float64() - box.Index(1).Float64()
	if w <= 0 || h <= 0 {
		return 612, 792
	}
	return w, h
}

// mergeTexts joins per-character native text runs into word-level spans
// and flips coordinates to top-left origin.
func mergeTexts(texts []pdf.Text, pageHeight float64, pageNum int) []model.Span {
	runs := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		runs = append(runs, t)
	}
	if len(runs) == 0 {
		return nil
	}

	// Reading order: top line first, left to right within a line. PDF Y
	// grows upward, so higher Y sorts first.
	sort.SliceStable(runs, func(i, j int) bool {
		if diff := runs[i].Y - runs[j].Y; diff > lineTolerance || diff < -lineTolerance {
			return runs[i].Y > runs[j].Y
		}
		return runs[i].X < runs[j].X
	})

	var spans []model.Span
	current := runs[0]
	text := current.S
	endX := current.X + current.W

	flush := func() {
		fontSize := current.FontSize
		if fontSize <= 0 {
			fontSize = 10
		}
		spans = append(spans, model.Span{
			Text:       text,
			BBox:       model.NewBBox(current.X, pageHeight-current.Y-fontSize, endX, pageHeight-current.Y),
			PageNumber: pageNum,
			FontSize:   current.FontSize,
			Source:     model.SourceNative,
		})
	}

	for _, t := range runs[1:] {
		sameLine := t.Y-current.Y <= lineTolerance && current.Y-t.Y <= lineTolerance
		gap := t.X - endX
		maxGap := charMergeGap * current.FontSize
		if maxGap <= 0 {
			maxGap = 1.0
		}

		if sameLine && gap >= -maxGap && gap <= maxGap {
			text += t.S
			if t.X+t.W > endX {
				endX = t.X + t.W
			}
			continue
		}

		flush()
		current = t
		text = t.S
		endX = t.X + t.W
	}
	flush()

	return spans
}

// Rulings thinner than this (points) are treated as lines rather than
// filled regions.
const maxRulingThickness = 2.0

// Rulings shorter than this (points) are ignored as decoration.
const minRulingLength = 8.0

// extractRulings classifies thin content-stream rectangles as horizontal
// or vertical ruling lines.
func extractRulings(rects []pdf.Rect, pageHeight float64) []Ruling {
	var rulings []Ruling
	for _, rect := range rects {
		w := rect.Max.X - rect.Min.X
		h := rect.Max.Y - rect.Min.Y

		switch {
		case h <= maxRulingThickness && w >= minRulingLength:
			y := pageHeight - (rect.Min.Y+rect.Max.Y)/2
			rulings = append(rulings, Ruling{
				Horizontal: true,
				Position:   y,
				Start:      rect.Min.X,
				End:        rect.Max.X,
			})
		case w <= maxRulingThickness && h >= minRulingLength:
			x := (rect.Min.X + rect.Max.X) / 2
			rulings = append(rulings, Ruling{
				Horizontal: false,
				Position:   x,
				Start:      pageHeight - rect.Max.Y,
				End:        pageHeight - rect.Min.Y,
			})
		}
	}
	return rulings
}

// JoinSpans renders arbitrary positioned spans as text lines, sorting
// them into reading order first. The line grouping tolerance scales with
// span height, so it works for OCR tokens in pixel coordinates as well
// as native spans in points.
func JoinSpans(spans []model.Span) string {
	if len(spans) == 0 {
		return ""
	}

	ordered := make([]model.Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].BBox.Y0 != ordered[j].BBox.Y0 {
			return ordered[i].BBox.Y0 < ordered[j].BBox.Y0
		}
		return ordered[i].BBox.X0 < ordered[j].BBox.X0
	})

	var sb strings.Builder
	var line []model.Span
	anchor := ordered[0]

	flush := func() {
		sort.SliceStable(line, func(a, b int) bool {
			return line[a].BBox.X0 < line[b].BBox.X0
		})
		for j, s := range line {
			if j > 0 {
				gap := s.BBox.X0 - line[j-1].BBox.X1
				if gap > s.BBox.Height() {
					sb.WriteString("  ")
				} else {
					sb.WriteString(" ")
				}
			}
			sb.WriteString(s.Text)
		}
		sb.WriteString("\n")
	}

	for _, s := range ordered {
		tolerance := anchor.BBox.Height() / 2
		if tolerance < lineTolerance {
			tolerance = lineTolerance
		}
		if len(line) > 0 && s.BBox.Y0-anchor.BBox.Y0 > tolerance {
			flush()
			line = line[:0]
			anchor = s
		}
		line = append(line, s)
	}
	flush()

	return sb.String()
}

// assemblePlainText renders spans as text lines: spans on the same line
// joined by single spaces, column gaps widened to double spaces so
// pattern-based table detection can split on them.
func assemblePlainText(spans []model.Span) string {
	if len(spans) == 0 {
		return ""
	}

	var sb strings.Builder
	lineStart := 0
	for i := 1; i <= len(spans); i++ {
		endOfLine := i == len(spans) ||
			spans[i].BBox.Y0-spans[lineStart].BBox.Y0 > lineTolerance
		if !endOfLine {
			continue
		}

		line := spans[lineStart:i]
		for j, s := range line {
			if j > 0 {
				gap := s.BBox.X0 - line[j-1].BBox.X1
				if gap > s.FontSize {
					sb.WriteString("  ")
				} else {
					sb.WriteString(" ")
				}
			}
			sb.WriteString(s.Text)
		}
		sb.WriteString("\n")
		lineStart = i
	}

	return sb.String()
}
