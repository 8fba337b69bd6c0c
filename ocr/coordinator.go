package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/shipdocs/manifex/model"
	"github.com/shipdocs/manifex/raster"
)

// Config controls the coordinator's fallback and filtering behavior.
type Config struct {
	// MinTokenConfidence is the engine-scale (0-100) threshold below
	// which recognized tokens are discarded before page text assembly.
	MinTokenConfidence float64

	// PageTimeout bounds a single engine call for one page. A timeout
	// counts as an engine failure and triggers fallback, not a
	// document-wide failure.
	PageTimeout time.Duration

	// Baseline is the guaranteed-available engine used when every
	// configured engine fails for a page.
	Baseline Engine

	// Workers bounds page-level parallelism in ExtractText. Zero means
	// runtime.NumCPU().
	Workers int
}

// DefaultConfig returns the production coordinator configuration with
// Tesseract as the baseline engine.
func DefaultConfig() Config {
	return Config{
		MinTokenConfidence: 30,
		PageTimeout:        30 * time.Second,
		Baseline:           NewTesseract(DefaultTesseractConfig()),
	}
}

// Coordinator runs OCR engines per page in caller-specified priority
// order and aggregates page results into a document result.
type Coordinator struct {
	cfg Config
	log *slog.Logger
}

// NewCoordinator creates a Coordinator. A nil logger falls back to
// slog.Default().
func NewCoordinator(cfg Config, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{cfg: cfg, log: log}
}

// PageRecognition is the outcome for one page: the assembled OCR result
// plus the retained tokens, which table detection uses as positioned
// spans.
type PageRecognition struct {
	Result model.OCRResult
	Tokens []Token
}

// RecognizePage runs the engines in priority order for a single page,
// accepting the first engine that succeeds and falling back to the
// baseline engine when all configured engines fail. The returned error
// is non-nil only when the baseline fails too.
func (c *Coordinator) RecognizePage(ctx context.Context, page raster.PageImage, engines []Engine) (*PageRecognition, error) {
	start := time.Now()

	for _, engine := range engines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := c.recognize(ctx, engine, page)
		if err != nil {
			if errors.Is(err, ErrEngineUnavailable) {
				c.log.Debug("ocr engine unavailable, skipping",
					"engine", engine.Name(), "page", page.PageNumber)
			} else {
				c.log.Warn("ocr engine failed, falling back",
					"engine", engine.Name(), "page", page.PageNumber, "error", err)
			}
			continue
		}
		return c.assemble(out, engine.Name(), page, start), nil
	}

	if c.cfg.Baseline != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := c.recognize(ctx, c.cfg.Baseline, page)
		if err == nil {
			return c.assemble(out, c.cfg.Baseline.Name(), page, start), nil
		}
		c.log.Warn("baseline ocr engine failed",
			"engine", c.cfg.Baseline.Name(), "page", page.PageNumber, "error", err)
	}

	return nil, fmt.Errorf("page %d: %w", page.PageNumber, ErrAllEnginesFailed)
}

// recognize invokes one engine under the configured page timeout.
func (c *Coordinator) recognize(ctx context.Context, engine Engine, page raster.PageImage) (*RawOutput, error) {
	if c.cfg.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.PageTimeout)
		defer cancel()
	}

	type outcome struct {
		out *RawOutput
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		out, err := engine.Recognize(ctx, page.Image)
		done <- outcome{out, err}
	}()

	select {
	case o := <-done:
		return o.out, o.err
	case <-ctx.Done():
		return nil, fmt.Errorf("engine %s: %w", engine.Name(), ctx.Err())
	}
}

// assemble filters low-confidence tokens and builds the page result.
// Page confidence is the mean of surviving token confidences normalized
// to [0,1]; 0.0 when nothing survives.
func (c *Coordinator) assemble(out *RawOutput, engineName string, page raster.PageImage, start time.Time) *PageRecognition {
	kept := make([]Token, 0, len(out.Tokens))
	parts := make([]string, 0, len(out.Tokens))
	confidenceSum := 0.0

	for _, token := range out.Tokens {
		if token.Confidence <= c.cfg.MinTokenConfidence {
			continue
		}
		text := strings.TrimSpace(norm.NFKC.String(token.Text))
		if text == "" {
			continue
		}
		token.Text = text
		kept = append(kept, token)
		parts = append(parts, text)
		confidenceSum += token.Confidence
	}

	confidence := 0.0
	if len(kept) > 0 {
		confidence = confidenceSum / float64(len(kept)) / 100.0
	}

	bounds := page.Image.Bounds()
	return &PageRecognition{
		Result: model.OCRResult{
			Text:           strings.Join(parts, " "),
			Confidence:     confidence,
			BBox:           model.NewBBox(0, 0, float64(bounds.Dx()), float64(bounds.Dy())),
			PageNumber:     page.PageNumber,
			Engine:         engineName,
			ProcessingTime: time.Since(start),
		},
		Tokens: kept,
	}
}

// ExtractText OCRs every page on a bounded worker pool and aggregates
// the results in page order. Document confidence is the mean of page
// confidences.
func (c *Coordinator) ExtractText(ctx context.Context, images []raster.PageImage, engines []Engine) (*model.DocumentOCRResult, error) {
	start := time.Now()

	workers := c.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]*PageRecognition, len(images))
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

			rec, err := c.RecognizePage(ctx, page, engines)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
				return
			}
			results[i] = rec
		}(i, page)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	pages := make([]model.OCRResult, 0, len(results))
	engineSet := make(map[string]struct{})
	confidenceSum := 0.0
	for _, rec := range results {
		pages = append(pages, rec.Result)
		engineSet[rec.Result.Engine] = struct{}{}
		confidenceSum += rec.Result.Confidence
	}

	aggregate := 0.0
	if len(pages) > 0 {
		aggregate = confidenceSum / float64(len(pages))
	}

	used := make([]string, 0, len(engineSet))
	for name := range engineSet {
		used = append(used, name)
	}
	sort.Strings(used)

	return &model.DocumentOCRResult{
		Pages:               pages,
		AggregateConfidence: aggregate,
		ProcessingTime:      time.Since(start),
		EnginesUsed:         used,
		Metadata: model.OCRMetadata{
			PageCount:         len(pages),
			AverageConfidence: aggregate,
			Timestamp:         time.Now().UTC(),
		},
	}, nil
}
