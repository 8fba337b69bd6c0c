package tables

import (
	"testing"

	"github.com/shipdocs/manifex/model"
)

// span builds a positioned test span. Width is proportional to the text
// length so adjacent columns do not collide.
func span(text string, x, y float64) model.Span {
	return model.Span{
		Text:     text,
		BBox:     model.NewBBox(x, y, x+float64(len(text))*6, y+10),
		FontSize: 10,
		Source:   model.SourceOCR,
	}
}

// manifestGrid lays out a 4-column manifest table: one header row and
// four data rows, columns at x = 50, 160, 270, 380.
func manifestGrid() []model.Span {
	cols := []float64{50, 160, 270, 380}
	rows := [][]string{
		{"UN", "Proper Shipping Name", "Class", "Quantity"},
		{"1203", "Gasoline", "3", "200L"},
		{"1830", "Sulphuric acid", "8", "50L"},
		{"1428", "Sodium", "4.3", "25kg"},
		{"2031", "Nitric acid", "8", "10L"},
	}

	var spans []model.Span
	for r, row := range rows {
		y := 100 + float64(r)*20
		for c, text := range row {
			spans = append(spans, span(text, cols[c], y))
		}
	}
	return spans
}

func TestGeometricDetectManifest(t *testing.T) {
	d := NewGeometricDetector()
	input := &Input{PageNumber: 1, Spans: manifestGrid()}

	tables, err := d.Detect(input)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(tables) == 0 {
		t.Fatal("Detect() found no tables")
	}

	// The candidate starting at the header row is first.
	table := tables[0]
	if got := table.ColCount(); got != 4 {
		t.Errorf("ColCount() = %d, want 4", got)
	}
	if got := table.RowCount(); got != 4 {
		t.Errorf("RowCount() = %d, want 4", got)
	}
	if table.Headers[0] != "UN" {
		t.Errorf("Headers[0] = %q, want %q", table.Headers[0], "UN")
	}
	if table.Kind != model.KindDangerousGoods {
		t.Errorf("Kind = %v, want %v", table.Kind, model.KindDangerousGoods)
	}
	if table.Method != model.MethodGeometric {
		t.Errorf("Method = %v, want %v", table.Method, model.MethodGeometric)
	}
	if table.Confidence <= 0 || table.Confidence > 1 {
		t.Errorf("Confidence = %v, want in (0, 1]", table.Confidence)
	}
	if got := table.Value(0, "Proper Shipping Name"); got != "Gasoline" {
		t.Errorf("Value(0, Proper Shipping Name) = %q, want %q", got, "Gasoline")
	}
}

func TestGeometricRowsMatchHeaders(t *testing.T) {
	d := NewGeometricDetector()
	input := &Input{PageNumber: 1, Spans: manifestGrid()}

	tables, err := d.Detect(input)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	for _, table := range tables {
		for i, row := range table.Rows {
			if len(row) != len(table.Headers) {
				t.Errorf("row %d has %d entries, want %d", i, len(row), len(table.Headers))
			}
			for _, h := range table.Headers {
				if _, ok := row[h]; !ok {
					t.Errorf("row %d missing header %q", i, h)
				}
			}
		}
	}
}

func TestGeometricDetectNoSpans(t *testing.T) {
	d := NewGeometricDetector()
	tables, err := d.Detect(&Input{PageNumber: 1})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("Detect() = %d tables, want 0", len(tables))
	}
}

func TestGeometricDetectTooFewRows(t *testing.T) {
	// Two rows: a header plus one data row is below MinDataRows.
	spans := []model.Span{
		span("UN", 50, 100), span("Class", 160, 100),
		span("1203", 50, 120), span("3", 160, 120),
	}

	d := NewGeometricDetector()
	tables, err := d.Detect(&Input{PageNumber: 1, Spans: spans})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("Detect() = %d tables, want 0", len(tables))
	}
}

func TestGeometricSingleColumnRejected(t *testing.T) {
	var spans []model.Span
	for i := 0; i < 6; i++ {
		spans = append(spans, span("line", 50, 100+float64(i)*20))
	}

	d := NewGeometricDetector()
	tables, err := d.Detect(&Input{PageNumber: 1, Spans: spans})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("Detect() = %d tables, want 0 for single column", len(tables))
	}
}

func TestGroupRowsTolerance(t *testing.T) {
	d := NewGeometricDetector()

	// Second span is 4px below the first, within the 5px tolerance;
	// third is 30px below, a new row.
	spans := []model.Span{
		span("a", 10, 100),
		span("b", 120, 104),
		span("c", 10, 130),
	}

	rows := d.groupRows(spans)
	if len(rows) != 2 {
		t.Fatalf("groupRows() = %d rows, want 2", len(rows))
	}
	if len(rows[0].spans) != 2 {
		t.Errorf("first row has %d spans, want 2", len(rows[0].spans))
	}
}

func TestColumnPositionsMerge(t *testing.T) {
	d := NewGeometricDetector()

	// Left edges 50 and 60 are closer than ColumnMergeGap and merge;
	// 160 stands alone.
	rows := []spanRow{
		{spans: []model.Span{span("a", 50, 100), span("b", 160, 100)}},
		{spans: []model.Span{span("c", 60, 120), span("d", 160, 120)}},
	}

	columns := d.columnPositions(rows)
	if len(columns) != 2 {
		t.Fatalf("columnPositions() = %v, want 2 positions", columns)
	}
	if columns[0] != 50 || columns[1] != 160 {
		t.Errorf("columnPositions() = %v, want [50 160]", columns)
	}
}

func TestDetectIdempotent(t *testing.T) {
	d := NewGeometricDetector()
	input := &Input{PageNumber: 1, Spans: manifestGrid()}

	first, err := d.Detect(input)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	second, err := d.Detect(input)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("Detect() not deterministic: %d vs %d tables", len(first), len(second))
	}
	for i := range first {
		if first[i].Confidence != second[i].Confidence {
			t.Errorf("table %d confidence differs: %v vs %v", i, first[i].Confidence, second[i].Confidence)
		}
	}
}
