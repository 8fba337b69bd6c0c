package tables

import (
	"math"
	"testing"

	"github.com/shipdocs/manifex/model"
)

func makeTable(page int, confidence float64, method model.ExtractionMethod, headers []string, rows []map[string]string) *model.ExtractedTable {
	return &model.ExtractedTable{
		Headers:    headers,
		Rows:       rows,
		PageNumber: page,
		Kind:       Classify(headers, rows),
		Confidence: confidence,
		Method:     method,
	}
}

func TestDeduplicateSameHeaders(t *testing.T) {
	rows := []map[string]string{{"UN": "1203", "Class": "3"}}

	a := makeTable(1, 0.9, model.MethodStructural, []string{"UN", "Class"}, rows)
	b := makeTable(1, 0.7, model.MethodGeometric, []string{"UN", "Class"}, rows)

	got := Deduplicate([]*model.ExtractedTable{b, a})
	if len(got) != 1 {
		t.Fatalf("Deduplicate() = %d tables, want 1", len(got))
	}
	if got[0].Method != model.MethodStructural {
		t.Errorf("kept method = %v, want the higher-confidence structural candidate", got[0].Method)
	}
}

func TestDeduplicateByContent(t *testing.T) {
	// Different detectors named the columns differently, but four of the
	// five cell values are shared, well past the 0.5 content threshold.
	a := makeTable(1, 0.8, model.MethodStructural,
		[]string{"UN Number", "Substance", "Class"},
		[]map[string]string{
			{"UN Number": "1203", "Substance": "Gasoline", "Class": "3"},
			{"UN Number": "1830", "Substance": "Sulphuric acid", "Class": "8"},
		})
	b := makeTable(1, 0.6, model.MethodPattern,
		[]string{"UN No.", "Name", "Hazard"},
		[]map[string]string{
			{"UN No.": "1203", "Name": "Gasoline", "Hazard": "3"},
			{"UN No.": "1830", "Name": "Sulphuric acid", "Hazard": "9"},
		})

	got := Deduplicate([]*model.ExtractedTable{a, b})
	if len(got) != 1 {
		t.Fatalf("Deduplicate() = %d tables, want 1", len(got))
	}
	if got[0].Confidence != 0.8 {
		t.Errorf("kept confidence = %v, want 0.8", got[0].Confidence)
	}
}

func TestDeduplicateDistinctTablesKept(t *testing.T) {
	a := makeTable(1, 0.8, model.MethodStructural,
		[]string{"UN", "Class", "Quantity"},
		[]map[string]string{{"UN": "1203", "Class": "3", "Quantity": "200 L"}})
	b := makeTable(1, 0.6, model.MethodPattern,
		[]string{"Container", "Seal", "Port"},
		[]map[string]string{{"Container": "MSKU123", "Seal": "S-99", "Port": "NLRTM"}})

	got := Deduplicate([]*model.ExtractedTable{a, b})
	if len(got) != 2 {
		t.Fatalf("Deduplicate() = %d tables, want 2", len(got))
	}
}

func TestDeduplicateSamePageDifferentPagesKept(t *testing.T) {
	rows := []map[string]string{{"UN": "1203", "Class": "3"}}

	a := makeTable(1, 0.9, model.MethodStructural, []string{"UN", "Class"}, rows)
	b := makeTable(2, 0.9, model.MethodStructural, []string{"UN", "Class"}, rows)

	got := Deduplicate([]*model.ExtractedTable{a, b})
	if len(got) != 2 {
		t.Fatalf("Deduplicate() = %d tables, want 2 across pages", len(got))
	}
}

func TestDeduplicateOrdering(t *testing.T) {
	p2 := makeTable(2, 0.9, model.MethodStructural,
		[]string{"UN", "Class"}, []map[string]string{{"UN": "1203", "Class": "3"}})
	p1low := makeTable(1, 0.5, model.MethodPattern,
		[]string{"Container", "Seal"}, []map[string]string{{"Container": "MSKU123", "Seal": "S-99"}})
	p1high := makeTable(1, 0.8, model.MethodGeometric,
		[]string{"UN", "Quantity"}, []map[string]string{{"UN": "1830", "Quantity": "50 L"}})

	got := Deduplicate([]*model.ExtractedTable{p2, p1low, p1high})
	if len(got) != 3 {
		t.Fatalf("Deduplicate() = %d tables, want 3", len(got))
	}

	if got[0].PageNumber != 1 || got[0].Confidence != 0.8 {
		t.Errorf("got[0] = page %d conf %v, want page 1 conf 0.8", got[0].PageNumber, got[0].Confidence)
	}
	if got[1].PageNumber != 1 || got[1].Confidence != 0.5 {
		t.Errorf("got[1] = page %d conf %v, want page 1 conf 0.5", got[1].PageNumber, got[1].Confidence)
	}
	if got[2].PageNumber != 2 {
		t.Errorf("got[2] = page %d, want page 2", got[2].PageNumber)
	}
}

func TestDeduplicateCollapsesGeometricCandidates(t *testing.T) {
	// The geometric detector emits one candidate per start row over the
	// 4x5 grid; the overlapping sub-candidates share content with the
	// full table and must collapse to the single best one.
	d := NewGeometricDetector()
	found, err := d.Detect(&Input{PageNumber: 1, Spans: manifestGrid()})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(found) < 2 {
		t.Fatalf("Detect() = %d candidates, want overlapping candidates to deduplicate", len(found))
	}

	final := Deduplicate(found)
	if len(final) != 1 {
		t.Fatalf("Deduplicate() = %d tables, want 1", len(final))
	}

	table := final[0]
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
}

func TestHeaderOverlap(t *testing.T) {
	got := headerOverlap(
		[]string{"UN", "Class", "Quantity"},
		[]string{"un", "class", "Weight"},
	)
	want := 2.0 / 3.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("headerOverlap() = %v, want %v", got, want)
	}

	if got := headerOverlap(nil, nil); got != 0 {
		t.Errorf("headerOverlap(nil, nil) = %v, want 0", got)
	}
}

func TestQualityScoreEmpty(t *testing.T) {
	if got := QualityScore(nil); got != 0.0 {
		t.Errorf("QualityScore(nil) = %v, want 0.0", got)
	}
}

func TestQualityScoreBonuses(t *testing.T) {
	// One generic table found by one method: mean 0.5 plus the single
	// method bonus.
	generic := makeTable(1, 0.5, model.MethodPattern,
		[]string{"Foo", "Bar"}, []map[string]string{{"Foo": "x", "Bar": "y"}})

	got := QualityScore([]*model.ExtractedTable{generic})
	if math.Abs(got-0.6) > 1e-9 {
		t.Errorf("QualityScore() = %v, want 0.6", got)
	}

	// Adding a dangerous-goods table found by a second method adds the
	// dangerous-goods bonus and a second method bonus.
	dg := makeTable(1, 0.5, model.MethodStructural,
		[]string{"UN", "Class"}, []map[string]string{{"UN": "1203", "Class": "3"}})

	got = QualityScore([]*model.ExtractedTable{generic, dg})
	want := 0.5 + 0.2 + 0.2
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("QualityScore() = %v, want %v", got, want)
	}
}

func TestQualityScoreClamped(t *testing.T) {
	var all []*model.ExtractedTable
	methods := []model.ExtractionMethod{model.MethodStructural, model.MethodGeometric, model.MethodPattern}
	for i, m := range methods {
		all = append(all, makeTable(i+1, 0.95, m,
			[]string{"UN", "Class"}, []map[string]string{{"UN": "1203", "Class": "3"}}))
	}

	if got := QualityScore(all); got != 1.0 {
		t.Errorf("QualityScore() = %v, want clamped 1.0", got)
	}
}
