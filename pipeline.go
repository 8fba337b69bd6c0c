package manifex

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/shipdocs/manifex/model"
	"github.com/shipdocs/manifex/ocr"
	"github.com/shipdocs/manifex/pdfio"
	"github.com/shipdocs/manifex/raster"
	"github.com/shipdocs/manifex/tables"
)

// extractTables is the table pipeline: split pages into native and scan
// paths, OCR the scans, run every detector over every page, then
// deduplicate and score.
func (e *Extractor) extractTables(ctx context.Context) (*model.DocumentTableResult, error) {
	start := time.Now()

	inputs := make(map[int]*tables.Input)
	var scanPages []int

	nativePages, err := pdfio.Read(e.data, e.pages)
	if err != nil {
		// Not parseable as native PDF content. The rasterizer handles
		// more formats, so send every requested page down the OCR path.
		e.log.Warn("native content extraction failed, using ocr for all pages", "error", err)
		scanPages = e.pages
	} else {
		for _, page := range nativePages {
			if page.HasNativeText() {
				inputs[page.Number] = &tables.Input{
					PageNumber: page.Number,
					Spans:      page.Spans,
					Rulings:    page.Rulings,
					PlainText:  page.PlainText,
				}
			} else {
				scanPages = append(scanPages, page.Number)
			}
		}
	}

	if err != nil || len(scanPages) > 0 {
		ocrInputs, ocrErr := e.recognizeScans(ctx, scanPages)
		if ocrErr != nil {
			return nil, ocrErr
		}
		for num, input := range ocrInputs {
			inputs[num] = input
		}
	}

	candidates, err := e.detectPages(ctx, inputs)
	if err != nil {
		return nil, err
	}

	final := tables.Deduplicate(candidates)

	methodSet := make(map[string]struct{})
	for _, table := range final {
		methodSet[table.Method.String()] = struct{}{}
	}
	methods := make([]string, 0, len(methodSet))
	for m := range methodSet {
		methods = append(methods, m)
	}
	sort.Strings(methods)

	return &model.DocumentTableResult{
		Tables:         final,
		TotalTables:    len(final),
		ProcessingTime: time.Since(start),
		MethodsUsed:    methods,
		QualityScore:   tables.QualityScore(final),
	}, nil
}

// detectPages runs every detector over every page on a bounded worker
// pool. Detector runs are independent per page; candidates come back in
// ascending page order, one batch per page.
func (e *Extractor) detectPages(ctx context.Context, inputs map[int]*tables.Input) ([]*model.ExtractedTable, error) {
	detectors := []tables.Detector{
		e.newDetector(tables.NewStructuralDetector()),
		e.newDetector(tables.NewGeometricDetector()),
		e.newDetector(tables.NewPatternDetector()),
	}

	pageNumbers := make([]int, 0, len(inputs))
	for num := range inputs {
		pageNumbers = append(pageNumbers, num)
	}
	sort.Ints(pageNumbers)

	workers := e.ocrCfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	perPage := make([][]*model.ExtractedTable, len(pageNumbers))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, num := range pageNumbers {
		if err := ctx.Err(); err != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, input *tables.Input) {
			defer wg.Done()
			defer func() { <-sem }()

			var found []*model.ExtractedTable
			for _, detector := range detectors {
				found = append(found, e.runDetector(detector, input)...)
			}
			perPage[i] = found
		}(i, inputs[num])
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var candidates []*model.ExtractedTable
	for _, found := range perPage {
		candidates = append(candidates, found...)
	}
	return candidates, nil
}

// configurable is implemented by detectors that accept a Config.
type configurable interface {
	Configure(tables.Config) error
}

func (e *Extractor) newDetector(d tables.Detector) tables.Detector {
	if c, ok := d.(configurable); ok {
		// The built-in detectors accept any configuration.
		_ = c.Configure(e.tableCfg)
	}
	return d
}

// runDetector isolates one detector run: a panic or error in a single
// strategy must not take down the extraction, it just contributes no
// candidates.
func (e *Extractor) runDetector(d tables.Detector, input *tables.Input) (found []*model.ExtractedTable) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("table detector panicked",
				"detector", d.Name(), "page", input.PageNumber, "panic", r)
			found = nil
		}
	}()

	found, err := d.Detect(input)
	if err != nil {
		e.log.Warn("table detector failed",
			"detector", d.Name(), "page", input.PageNumber, "error", err)
		return nil
	}
	return found
}

// recognizeScans rasterizes the given pages (nil means all) and OCRs the
// rendered images.
func (e *Extractor) recognizeScans(ctx context.Context, pages []int) (map[int]*tables.Input, error) {
	images, err := raster.New(e.rasterCfg).Render(ctx, e.data, pages)
	if err != nil {
		return nil, err
	}
	return e.recognizePages(ctx, images)
}

// recognizePages OCRs page images on a bounded worker pool, producing
// detector inputs with the OCR tokens as positioned spans. A page on
// which every engine and the baseline fail is a document-level failure,
// the same as in Text.
func (e *Extractor) recognizePages(ctx context.Context, images []raster.PageImage) (map[int]*tables.Input, error) {
	coordinator := ocr.NewCoordinator(e.ocrCfg, e.log)

	workers := e.ocrCfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	recs := make([]*ocr.PageRecognition, len(images))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for i, page := range images {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, page raster.PageImage) {
			defer wg.Done()
			defer func() { <-sem }()

			rec, err := coordinator.RecognizePage(ctx, page, e.engines)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
				return
			}
			recs[i] = rec
		}(i, page)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	inputs := make(map[int]*tables.Input)
	for i, rec := range recs {
		pageNum := images[i].PageNumber

		spans := make([]model.Span, 0, len(rec.Tokens))
		for _, token := range rec.Tokens {
			spans = append(spans, model.Span{
				Text:       token.Text,
				BBox:       token.BBox,
				PageNumber: pageNum,
				FontSize:   token.BBox.Height(),
				Source:     model.SourceOCR,
			})
		}

		inputs[pageNum] = &tables.Input{
			PageNumber: pageNum,
			Spans:      spans,
			PlainText:  pdfio.JoinSpans(spans),
		}
	}
	return inputs, nil
}
