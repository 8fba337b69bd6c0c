package tables

import (
	"fmt"
	"math"
	"sort"

	"github.com/shipdocs/manifex/model"
)

// GeometricDetector finds tables by clustering positioned text spans
// into rows and columns using coordinate thresholds. It needs no native
// table structure, so it is the primary strategy for scanned pages where
// spans come from OCR. Threshold-based clustering tolerates the skew of
// OCR output; candidates that do not resolve cleanly are discarded
// rather than guessed at.
type GeometricDetector struct {
	config Config
}

// NewGeometricDetector creates a geometric detector with the default
// configuration.
func NewGeometricDetector() *GeometricDetector {
	return &GeometricDetector{config: DefaultConfig()}
}

// Name returns the detector's identifier ("geometric").
func (d *GeometricDetector) Name() string {
	return "geometric"
}

// Configure sets the detector configuration.
func (d *GeometricDetector) Configure(config Config) error {
	d.config = config
	return nil
}

// spanRow is one horizontal band of spans. The anchor is the top-edge Y
// of the row's first span; spans join the row while their top edge stays
// within RowTolerance of the anchor.
type spanRow struct {
	anchorY float64
	spans   []model.Span
}

// Detect finds candidate tables on the page. Every contiguous run of
// rows long enough to hold a header plus MinDataRows data rows produces
// a candidate; overlapping candidates are resolved later by
// deduplication.
func (d *GeometricDetector) Detect(input *Input) ([]*model.ExtractedTable, error) {
	if len(input.Spans) == 0 {
		return nil, nil
	}

	rows := d.groupRows(input.Spans)
	if len(rows) <= d.config.MinDataRows {
		return nil, nil
	}

	var tables []*model.ExtractedTable
	for start := 0; start+d.config.MinDataRows < len(rows); start++ {
		if table := d.analyzeCandidate(rows[start:], input.PageNumber); table != nil {
			tables = append(tables, table)
		}
	}

	return tables, nil
}

// groupRows clusters spans into rows by top-edge Y, then orders each row
// left to right.
func (d *GeometricDetector) groupRows(spans []model.Span) []spanRow {
	sorted := make([]model.Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox.Y0 < sorted[j].BBox.Y0
	})

	var rows []spanRow
	current := spanRow{anchorY: sorted[0].BBox.Y0, spans: []model.Span{sorted[0]}}

	for _, span := range sorted[1:] {
		if math.Abs(span.BBox.Y0-current.anchorY) <= d.config.RowTolerance {
			current.spans = append(current.spans, span)
		} else {
			rows = append(rows, current)
			current = spanRow{anchorY: span.BBox.Y0, spans: []model.Span{span}}
		}
	}
	rows = append(rows, current)

	for i := range rows {
		row := rows[i].spans
		sort.SliceStable(row, func(a, b int) bool {
			return row[a].BBox.X0 < row[b].BBox.X0
		})
	}

	return rows
}

// columnPositions derives the column position vector from the left edges
// of spans in the sample rows: deduplicate, sort, then merge positions
// closer than ColumnMergeGap.
func (d *GeometricDetector) columnPositions(rows []spanRow) []float64 {
	seen := make(map[float64]struct{})
	var edges []float64
	for _, row := range rows {
		for _, span := range row.spans {
			if _, ok := seen[span.BBox.X0]; ok {
				continue
			}
			seen[span.BBox.X0] = struct{}{}
			edges = append(edges, span.BBox.X0)
		}
	}
	if len(edges) == 0 {
		return nil
	}
	sort.Float64s(edges)

	columns := []float64{edges[0]}
	for _, pos := range edges[1:] {
		if pos-columns[len(columns)-1] > d.config.ColumnMergeGap {
			columns = append(columns, pos)
		}
	}
	return columns
}

// nearestSpan returns the span in the row whose left edge is closest to
// the column position, or nil when nothing is within CellAssignMax.
func (d *GeometricDetector) nearestSpan(row spanRow, x float64) *model.Span {
	var best *model.Span
	bestDist := math.MaxFloat64
	for i := range row.spans {
		dist := math.Abs(row.spans[i].BBox.X0 - x)
		if dist < bestDist {
			bestDist = dist
			best = &row.spans[i]
		}
	}
	if best == nil || bestDist > d.config.CellAssignMax {
		return nil
	}
	return best
}

// analyzeCandidate builds a table from a run of rows: the first row
// becomes headers, following rows become data rows capped at
// MaxDataRows. Rejects runs that resolve to too few columns or no
// non-empty data rows.
func (d *GeometricDetector) analyzeCandidate(rows []spanRow, pageNum int) *model.ExtractedTable {
	sampleLen := d.config.HeaderSampleRows
	if len(rows) < sampleLen {
		sampleLen = len(rows)
	}
	columns := d.columnPositions(rows[:sampleLen])
	if len(columns) < d.config.MinColumns {
		return nil
	}

	headers := make([]string, len(columns))
	headerCells := make([]model.TableCell, len(columns))
	for col, pos := range columns {
		span := d.nearestSpan(rows[0], pos)
		if span != nil {
			headers[col] = span.Text
		} else {
			headers[col] = fmt.Sprintf("Column_%d", col)
		}
		headerCells[col] = model.TableCell{
			Content:    headers[col],
			Row:        0,
			Column:     col,
			Confidence: geometricCellConfidence,
			Kind:       model.CellHeader,
		}
		if span != nil {
			headerCells[col].BBox = span.BBox
		}
	}

	cells := [][]model.TableCell{headerCells}
	var dataRows []map[string]string
	consumed := 1 // header row

	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		if rowIdx > d.config.MaxDataRows {
			break
		}

		rowMap := make(map[string]string, len(headers))
		cellRow := make([]model.TableCell, len(columns))
		nonEmpty := false

		for col, pos := range columns {
			span := d.nearestSpan(rows[rowIdx], pos)
			content := ""
			var bbox model.BBox
			if span != nil {
				content = span.Text
				bbox = span.BBox
			}

			cellRow[col] = model.TableCell{
				Content:    content,
				BBox:       bbox,
				Row:        rowIdx,
				Column:     col,
				Confidence: geometricCellConfidence,
				Kind:       cellKind(content),
			}
			rowMap[headers[col]] = content
			if content != "" {
				nonEmpty = true
			}
		}

		cells = append(cells, cellRow)
		consumed++
		if nonEmpty {
			dataRows = append(dataRows, rowMap)
		}
	}

	if len(dataRows) == 0 {
		return nil
	}

	return &model.ExtractedTable{
		Cells:      cells,
		Headers:    headers,
		Rows:       dataRows,
		BBox:       candidateBBox(rows[:consumed]),
		PageNumber: pageNum,
		Kind:       Classify(headers, dataRows),
		Confidence: Score(headers, dataRows, model.MethodGeometric),
		Method:     model.MethodGeometric,
	}
}

// candidateBBox is the union of every span box in the consumed rows.
func candidateBBox(rows []spanRow) model.BBox {
	var bbox model.BBox
	first := true
	for _, row := range rows {
		for _, span := range row.spans {
			if first {
				bbox = span.BBox
				first = false
			} else {
				bbox = bbox.Union(span.BBox)
			}
		}
	}
	return bbox
}
