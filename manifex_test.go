package manifex

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/shipdocs/manifex/cache"
	"github.com/shipdocs/manifex/model"
	"github.com/shipdocs/manifex/ocr"
	"github.com/shipdocs/manifex/raster"
	"github.com/shipdocs/manifex/tables"
)

func TestOpenMissingFile(t *testing.T) {
	e := Open("/nonexistent/manifest.pdf")

	if _, err := e.Tables(context.Background()); err == nil {
		t.Error("Tables() on missing file succeeded, want error")
	}
	if _, err := e.Text(context.Background()); err == nil {
		t.Error("Text() on missing file succeeded, want error")
	}
}

func TestTablesUnreadableDocument(t *testing.T) {
	e := FromBytes([]byte("not a document at all"))

	_, err := e.Tables(context.Background())
	if !errors.Is(err, raster.ErrDocumentUnreadable) {
		t.Errorf("Tables() error = %v, want ErrDocumentUnreadable", err)
	}
}

func TestTextUnreadableDocument(t *testing.T) {
	e := FromBytes([]byte("still not a document"))

	_, err := e.Text(context.Background())
	if !errors.Is(err, raster.ErrDocumentUnreadable) {
		t.Errorf("Text() error = %v, want ErrDocumentUnreadable", err)
	}
}

func TestTablesServedFromCache(t *testing.T) {
	data := []byte("any bytes, never parsed on a cache hit")

	cached := &model.DocumentTableResult{
		Tables: []*model.ExtractedTable{{
			Headers:    []string{"UN", "Class"},
			Rows:       []map[string]string{{"UN": "1203", "Class": "3"}},
			PageNumber: 1,
			Kind:       model.KindDangerousGoods,
			Confidence: 0.85,
		}},
		TotalTables:  1,
		QualityScore: 0.9,
	}
	raw, err := model.EncodeTableResult(cached)
	if err != nil {
		t.Fatal(err)
	}

	store := cache.NewMemory()
	store.Set(cache.ContentKey("tables", data, nil, model.SchemaVersion), raw, 0)

	result, err := FromBytes(data).WithCache(store).Tables(context.Background())
	if err != nil {
		t.Fatalf("Tables() error = %v", err)
	}
	if result.TotalTables != 1 {
		t.Errorf("TotalTables = %d, want 1 from cache", result.TotalTables)
	}
	if got := result.Tables[0].Value(0, "UN"); got != "1203" {
		t.Errorf("Value(0, UN) = %q, want %q", got, "1203")
	}
}

func TestTextServedFromCache(t *testing.T) {
	data := []byte("opaque bytes")

	cached := &model.DocumentOCRResult{
		Pages:               []model.OCRResult{{Text: "cached text", PageNumber: 1}},
		AggregateConfidence: 0.8,
	}
	raw, err := model.EncodeOCRResult(cached)
	if err != nil {
		t.Fatal(err)
	}

	store := cache.NewMemory()
	store.Set(cache.ContentKey("ocr", data, []int{2}, model.SchemaVersion), raw, 0)

	result, err := FromBytes(data).Pages(2).WithCache(store).Text(context.Background())
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if result.Pages[0].Text != "cached text" {
		t.Errorf("Text = %q, want cached value", result.Pages[0].Text)
	}
}

func TestStaleCacheEntryIgnored(t *testing.T) {
	data := []byte("garbage document")

	store := cache.NewMemory()
	store.Set(cache.ContentKey("tables", data, nil, model.SchemaVersion), []byte("corrupt entry"), 0)

	// The undecodable entry must fall through to recomputation, which
	// fails on the unreadable document instead of returning junk.
	_, err := FromBytes(data).WithCache(store).Tables(context.Background())
	if !errors.Is(err, raster.ErrDocumentUnreadable) {
		t.Errorf("Tables() error = %v, want ErrDocumentUnreadable", err)
	}
}

func TestWithCacheNil(t *testing.T) {
	e := FromBytes([]byte("x")).WithCache(nil)
	if e.store == nil {
		t.Error("WithCache(nil) left a nil cache")
	}
}

type panicDetector struct{}

func (panicDetector) Detect(*tables.Input) ([]*model.ExtractedTable, error) { panic("boom") }
func (panicDetector) Name() string                                          { return "panicky" }

type errorDetector struct{}

func (errorDetector) Detect(*tables.Input) ([]*model.ExtractedTable, error) {
	return nil, errors.New("detector error")
}
func (errorDetector) Name() string { return "failing" }

func TestRunDetectorIsolation(t *testing.T) {
	e := FromBytes([]byte("x"))
	input := &tables.Input{PageNumber: 1}

	if got := e.runDetector(panicDetector{}, input); got != nil {
		t.Errorf("runDetector(panicking) = %v, want nil", got)
	}
	if got := e.runDetector(errorDetector{}, input); got != nil {
		t.Errorf("runDetector(failing) = %v, want nil", got)
	}
}

type stubEngine struct {
	name string
	out  *ocr.RawOutput
	err  error
}

func (s stubEngine) Name() string { return s.name }

func (s stubEngine) Recognize(context.Context, image.Image) (*ocr.RawOutput, error) {
	return s.out, s.err
}

func scanImages(pages ...int) []raster.PageImage {
	var images []raster.PageImage
	for _, num := range pages {
		images = append(images, raster.PageImage{
			PageNumber: num,
			Image:      image.NewGray(image.Rect(0, 0, 200, 100)),
		})
	}
	return images
}

func TestRecognizePagesPropagatesExhaustion(t *testing.T) {
	// With no baseline and every engine failing, table extraction must
	// fail the document just like Text does, not return partial results.
	e := FromBytes([]byte("x")).
		WithEngines(stubEngine{name: "a", err: errors.New("boom")}).
		WithOCRConfig(ocr.Config{MinTokenConfidence: 30, PageTimeout: time.Second})

	_, err := e.recognizePages(context.Background(), scanImages(1, 2))
	if !errors.Is(err, ocr.ErrAllEnginesFailed) {
		t.Errorf("recognizePages() error = %v, want ErrAllEnginesFailed", err)
	}
}

func TestRecognizePagesBuildsInputs(t *testing.T) {
	out := &ocr.RawOutput{Tokens: []ocr.Token{
		{Text: "UN", Confidence: 90, BBox: model.NewBBox(10, 10, 30, 22)},
		{Text: "1203", Confidence: 85, BBox: model.NewBBox(120, 10, 160, 22)},
	}}
	e := FromBytes([]byte("x")).
		WithEngines(stubEngine{name: "a", out: out}).
		WithOCRConfig(ocr.Config{MinTokenConfidence: 30, PageTimeout: time.Second})

	inputs, err := e.recognizePages(context.Background(), scanImages(3))
	if err != nil {
		t.Fatalf("recognizePages() error = %v", err)
	}

	input, ok := inputs[3]
	if !ok {
		t.Fatalf("inputs missing page 3: %v", inputs)
	}
	if len(input.Spans) != 2 {
		t.Fatalf("page 3 has %d spans, want 2", len(input.Spans))
	}
	if input.Spans[0].Source != model.SourceOCR {
		t.Errorf("Spans[0].Source = %v, want %v", input.Spans[0].Source, model.SourceOCR)
	}
	if input.PlainText == "" {
		t.Error("PlainText is empty, want assembled token text")
	}
}

// gridInput lays out a small positioned-span manifest table on the given
// page for detector-level pipeline tests.
func gridInput(page int) *tables.Input {
	cols := []float64{50, 160, 270}
	rows := [][]string{
		{"UN", "Class", "Quantity"},
		{"1203", "3", "200L"},
		{"1830", "8", "50L"},
		{"1428", "4.3", "25kg"},
	}

	var spans []model.Span
	for r, row := range rows {
		y := 100 + float64(r)*20
		for c, text := range row {
			spans = append(spans, model.Span{
				Text:       text,
				BBox:       model.NewBBox(cols[c], y, cols[c]+float64(len(text))*6, y+10),
				PageNumber: page,
				FontSize:   10,
				Source:     model.SourceNative,
			})
		}
	}
	return &tables.Input{PageNumber: page, Spans: spans}
}

func TestDetectPagesAcrossPages(t *testing.T) {
	e := FromBytes([]byte("x"))
	inputs := map[int]*tables.Input{
		1: gridInput(1),
		2: gridInput(2),
	}

	candidates, err := e.detectPages(context.Background(), inputs)
	if err != nil {
		t.Fatalf("detectPages() error = %v", err)
	}

	seen := map[int]bool{}
	for _, c := range candidates {
		seen[c.PageNumber] = true
	}
	if !seen[1] || !seen[2] {
		t.Errorf("candidates cover pages %v, want both 1 and 2", seen)
	}

	// Candidate batches arrive in ascending page order.
	lastPage := 0
	for _, c := range candidates {
		if c.PageNumber < lastPage {
			t.Fatalf("candidates out of page order: page %d after %d", c.PageNumber, lastPage)
		}
		lastPage = c.PageNumber
	}
}

func TestDetectPagesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := FromBytes([]byte("x"))
	_, err := e.detectPages(ctx, map[int]*tables.Input{1: gridInput(1)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("detectPages() error = %v, want context.Canceled", err)
	}
}
