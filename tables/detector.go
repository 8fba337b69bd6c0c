package tables

import (
	"github.com/shipdocs/manifex/model"
	"github.com/shipdocs/manifex/pdfio"
)

// Input is the per-page material detectors work from. Depending on the
// source, spans come from native PDF text or from OCR tokens; rulings
// are only present for machine-generated pages.
type Input struct {
	PageNumber int // 1-indexed
	Spans      []model.Span
	Rulings    []pdfio.Ruling
	PlainText  string
}

// Detector is the interface all table detection strategies implement.
type Detector interface {
	// Detect finds candidate tables on a page. Candidates from
	// different detectors may describe the same physical region; the
	// caller resolves that with Deduplicate.
	Detect(input *Input) ([]*model.ExtractedTable, error)

	// Name returns the detector name.
	Name() string
}

// Config holds the thresholds shared by the detectors. The pixel values
// are empirically chosen against manifest layouts; change them only with
// a labeled corpus to calibrate against.
type Config struct {
	// RowTolerance is the maximum top-edge Y delta (px) between a span
	// and its row's anchor for the span to join the row.
	RowTolerance float64

	// ColumnMergeGap is the minimum spacing (px) between distinct
	// column positions; closer positions merge into one column.
	ColumnMergeGap float64

	// CellAssignMax is the maximum distance (px) between a span's left
	// edge and a column position for the span to fill that cell.
	CellAssignMax float64

	// HeaderSampleRows is how many leading rows contribute left edges
	// to column discovery.
	HeaderSampleRows int

	// MinDataRows is the minimum number of data rows (beyond the header
	// row) for a geometric candidate.
	MinDataRows int

	// MaxDataRows caps a single candidate's data rows.
	MaxDataRows int

	// MinColumns is the minimum column count for any candidate.
	MinColumns int

	// RulingTolerance is the alignment tolerance (px) when clustering
	// ruling lines into grid boundaries.
	RulingTolerance float64

	// HeaderVocabularies are the ordered term lists the pattern
	// detector matches against text lines.
	HeaderVocabularies [][]string
}

// DefaultConfig returns the production detection configuration.
func DefaultConfig() Config {
	return Config{
		RowTolerance:       5,
		ColumnMergeGap:     20,
		CellAssignMax:      50,
		HeaderSampleRows:   5,
		MinDataRows:        2,
		MaxDataRows:        20,
		MinColumns:         2,
		RulingTolerance:    3,
		HeaderVocabularies: DefaultHeaderVocabularies(),
	}
}

// DefaultHeaderVocabularies returns the known dangerous-goods manifest
// header sets. A line containing every term of one vocabulary
// (case-insensitive) is treated as a table header line.
func DefaultHeaderVocabularies() [][]string {
	return [][]string{
		{"un", "proper shipping name", "class", "packing group", "quantity"},
		{"un number", "description", "hazard class", "pg", "weight"},
		{"dangerous goods", "class", "quantity", "weight", "container"},
		{"item", "un no", "proper shipping name", "class", "group"},
		{"sn", "un", "substance", "class", "quantity", "remarks"},
	}
}
