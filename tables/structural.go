package tables

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shipdocs/manifex/model"
)

// StructuralDetector recovers tables whose geometry the PDF itself
// exposes as ruled lines. Grid discovery works from the page's native
// rulings; this detector's own responsibility is normalization: first
// grid row becomes the headers (blank header cells fall back to
// Column_N), following rows become data rows, and all-blank rows are
// dropped. It applies only to machine-generated pages; scans carry no
// rulings and yield nothing here.
type StructuralDetector struct {
	config Config
}

// NewStructuralDetector creates a structural detector with the default
// configuration.
func NewStructuralDetector() *StructuralDetector {
	return &StructuralDetector{config: DefaultConfig()}
}

// Name returns the detector's identifier ("structural").
func (d *StructuralDetector) Name() string {
	return "structural"
}

// Configure sets the detector configuration.
func (d *StructuralDetector) Configure(config Config) error {
	d.config = config
	return nil
}

// Detect recovers the page's ruled grid, pours spans into its cells,
// and normalizes the result into the canonical table shape.
func (d *StructuralDetector) Detect(input *Input) ([]*model.ExtractedTable, error) {
	if len(input.Rulings) == 0 || len(input.Spans) == 0 {
		return nil, nil
	}

	var hPositions, vPositions []float64
	for _, ruling := range input.Rulings {
		if ruling.Horizontal {
			hPositions = append(hPositions, ruling.Position)
		} else {
			vPositions = append(vPositions, ruling.Position)
		}
	}

	rowBounds := clusterPositions(hPositions, d.config.RulingTolerance)
	colBounds := clusterPositions(vPositions, d.config.RulingTolerance)

	// A grid needs a header row plus at least one data row, and
	// MinColumns columns.
	if len(rowBounds) < 3 || len(colBounds) < d.config.MinColumns+1 {
		return nil, nil
	}

	grid := d.fillGrid(rowBounds, colBounds, input.Spans)
	table := d.normalize(grid, rowBounds, colBounds, input.PageNumber)
	if table == nil {
		return nil, nil
	}
	return []*model.ExtractedTable{table}, nil
}

// clusterPositions merges ruling positions within tolerance into single
// boundaries, averaging each cluster. Returns boundaries in ascending
// order.
func clusterPositions(positions []float64, tolerance float64) []float64 {
	if len(positions) == 0 {
		return nil
	}

	sorted := make([]float64, len(positions))
	copy(sorted, positions)
	sort.Float64s(sorted)

	var clustered []float64
	clusterStart := sorted[0]
	clusterSum := sorted[0]
	clusterLen := 1

	for _, pos := range sorted[1:] {
		if pos-clusterStart <= tolerance {
			clusterSum += pos
			clusterLen++
			continue
		}
		clustered = append(clustered, clusterSum/float64(clusterLen))
		clusterStart = pos
		clusterSum = pos
		clusterLen = 1
	}
	clustered = append(clustered, clusterSum/float64(clusterLen))

	return clustered
}

// fillGrid assigns each span to the grid cell containing its center,
// concatenating the texts of spans sharing a cell in reading order.
func (d *StructuralDetector) fillGrid(rowBounds, colBounds []float64, spans []model.Span) [][]string {
	rowCount := len(rowBounds) - 1
	colCount := len(colBounds) - 1

	grid := make([][]string, rowCount)
	for i := range grid {
		grid[i] = make([]string, colCount)
	}

	ordered := make([]model.Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].BBox.Y0 != ordered[j].BBox.Y0 {
			return ordered[i].BBox.Y0 < ordered[j].BBox.Y0
		}
		return ordered[i].BBox.X0 < ordered[j].BBox.X0
	})

	for _, span := range ordered {
		center := span.BBox.Center()
		row := locate(rowBounds, center.Y)
		col := locate(colBounds, center.X)
		if row < 0 || col < 0 {
			continue
		}
		if grid[row][col] != "" {
			grid[row][col] += " "
		}
		grid[row][col] += span.Text
	}

	return grid
}

// locate returns the index of the interval containing v, or -1 when v
// falls outside the boundaries.
func locate(bounds []float64, v float64) int {
	for i := 0; i < len(bounds)-1; i++ {
		if v >= bounds[i] && v <= bounds[i+1] {
			return i
		}
	}
	return -1
}

// normalize turns the raw grid into the canonical table shape.
func (d *StructuralDetector) normalize(grid [][]string, rowBounds, colBounds []float64, pageNum int) *model.ExtractedTable {
	headers := make([]string, len(grid[0]))
	headerCells := make([]model.TableCell, len(grid[0]))
	for col, content := range grid[0] {
		text := strings.TrimSpace(content)
		if text == "" {
			text = fmt.Sprintf("Column_%d", col)
		}
		headers[col] = text
		headerCells[col] = model.TableCell{
			Content:    text,
			BBox:       cellBBox(rowBounds, colBounds, 0, col),
			Row:        0,
			Column:     col,
			Confidence: structuralCellConfidence,
			Kind:       model.CellHeader,
		}
	}

	cells := [][]model.TableCell{headerCells}
	var dataRows []map[string]string

	for rowIdx := 1; rowIdx < len(grid); rowIdx++ {
		rowMap := make(map[string]string, len(headers))
		cellRow := make([]model.TableCell, len(headers))
		nonEmpty := false

		for col, content := range grid[rowIdx] {
			content = strings.TrimSpace(content)
			cellRow[col] = model.TableCell{
				Content:    content,
				BBox:       cellBBox(rowBounds, colBounds, rowIdx, col),
				Row:        rowIdx,
				Column:     col,
				Confidence: structuralCellConfidence,
				Kind:       cellKind(content),
			}
			rowMap[headers[col]] = content
			if content != "" {
				nonEmpty = true
			}
		}

		if !nonEmpty {
			// Empty ruled rows are spacing, not data.
			continue
		}
		cells = append(cells, cellRow)
		dataRows = append(dataRows, rowMap)
	}

	if len(dataRows) == 0 {
		return nil
	}

	return &model.ExtractedTable{
		Cells:      cells,
		Headers:    headers,
		Rows:       dataRows,
		BBox: model.NewBBox(
			colBounds[0], rowBounds[0],
			colBounds[len(colBounds)-1], rowBounds[len(rowBounds)-1],
		),
		PageNumber: pageNum,
		Kind:       Classify(headers, dataRows),
		Confidence: Score(headers, dataRows, model.MethodStructural),
		Method:     model.MethodStructural,
	}
}

// cellBBox returns the grid cell's rectangle.
func cellBBox(rowBounds, colBounds []float64, row, col int) model.BBox {
	return model.NewBBox(colBounds[col], rowBounds[row], colBounds[col+1], rowBounds[row+1])
}
