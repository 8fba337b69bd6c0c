// Package manifex extracts text and tables from dangerous-goods
// transport manifests: PDF shipping documents that mix machine-generated
// pages with scanned ones, where the payload of interest is tabular.
//
// The entry point is the fluent [Extractor]:
//
//	result, err := manifex.Open("manifest.pdf").Tables(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, t := range result.DangerousGoodsTables() {
//		fmt.Println(t.ToCSV())
//	}
//
// [Extractor.Text] runs the OCR pipeline alone; [Extractor.Tables] runs
// the full detection pipeline, choosing native text extraction or OCR
// per page. Both honor context cancellation and can be backed by a
// content-addressed cache.
package manifex

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shipdocs/manifex/cache"
	"github.com/shipdocs/manifex/model"
	"github.com/shipdocs/manifex/ocr"
	"github.com/shipdocs/manifex/raster"
	"github.com/shipdocs/manifex/tables"
)

// Cache TTLs. OCR output is stable for a given document; table results
// expire sooner because detection thresholds change more often.
const (
	ocrCacheTTL   = time.Hour
	tableCacheTTL = 30 * time.Minute
)

// Extractor is a fluent builder over one document. Construct with
// [Open] or [FromBytes], chain option calls, then run [Extractor.Text]
// or [Extractor.Tables]. An Extractor is not safe for concurrent use,
// but the results it returns are.
type Extractor struct {
	data    []byte
	err     error
	pages   []int
	engines []ocr.Engine
	store   cache.Cache
	log     *slog.Logger

	rasterCfg raster.Config
	ocrCfg    ocr.Config
	tableCfg  tables.Config
}

// Open reads the document at path. A read failure is deferred to the
// first Text or Tables call.
func Open(path string) *Extractor {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Extractor{err: fmt.Errorf("open %s: %w", path, err)}
	}
	return FromBytes(data)
}

// FromBytes wraps an in-memory document.
func FromBytes(data []byte) *Extractor {
	return &Extractor{
		data:      data,
		store:     cache.Nop{},
		log:       slog.Default(),
		rasterCfg: raster.DefaultConfig(),
		ocrCfg:    ocr.DefaultConfig(),
		tableCfg:  tables.DefaultConfig(),
	}
}

// Pages restricts extraction to the given 1-indexed pages. The default
// is all pages. Page numbers beyond the document are skipped.
func (e *Extractor) Pages(pages ...int) *Extractor {
	e.pages = pages
	return e
}

// WithEngines sets the OCR engines tried in priority order before the
// baseline fallback.
func (e *Extractor) WithEngines(engines ...ocr.Engine) *Extractor {
	e.engines = engines
	return e
}

// WithCache enables result caching. Keys are derived from the document
// content, so the same bytes never go through OCR twice while an entry
// is live.
func (e *Extractor) WithCache(c cache.Cache) *Extractor {
	if c == nil {
		c = cache.Nop{}
	}
	e.store = c
	return e
}

// WithLogger sets the structured logger. The default is slog.Default().
func (e *Extractor) WithLogger(log *slog.Logger) *Extractor {
	if log != nil {
		e.log = log
	}
	return e
}

// WithRasterConfig overrides the rendering configuration.
func (e *Extractor) WithRasterConfig(cfg raster.Config) *Extractor {
	e.rasterCfg = cfg
	return e
}

// WithOCRConfig overrides the OCR coordinator configuration.
func (e *Extractor) WithOCRConfig(cfg ocr.Config) *Extractor {
	e.ocrCfg = cfg
	return e
}

// WithTableConfig overrides the table detection configuration.
func (e *Extractor) WithTableConfig(cfg tables.Config) *Extractor {
	e.tableCfg = cfg
	return e
}

// Text OCRs the selected pages and returns the aggregated document
// result. Every page goes through rasterization and OCR regardless of
// native text; use Tables for the hybrid per-page strategy.
func (e *Extractor) Text(ctx context.Context) (*model.DocumentOCRResult, error) {
	if e.err != nil {
		return nil, e.err
	}

	key := cache.ContentKey("ocr", e.data, e.pages, model.SchemaVersion)
	if raw, ok := e.store.Get(key); ok {
		if result, err := model.DecodeOCRResult(raw); err == nil {
			e.log.Debug("ocr cache hit", "key", key)
			return result, nil
		}
		// Undecodable entries (stale schema) fall through to recompute.
	}

	images, err := raster.New(e.rasterCfg).Render(ctx, e.data, e.pages)
	if err != nil {
		return nil, err
	}

	coordinator := ocr.NewCoordinator(e.ocrCfg, e.log)
	result, err := coordinator.ExtractText(ctx, images, e.engines)
	if err != nil {
		return nil, err
	}

	if raw, err := model.EncodeOCRResult(result); err == nil {
		e.store.Set(key, raw, ocrCacheTTL)
	}
	return result, nil
}

// Tables runs the full table extraction pipeline over the selected
// pages and returns the deduplicated, quality-scored document result.
func (e *Extractor) Tables(ctx context.Context) (*model.DocumentTableResult, error) {
	if e.err != nil {
		return nil, e.err
	}

	key := cache.ContentKey("tables", e.data, e.pages, model.SchemaVersion)
	if raw, ok := e.store.Get(key); ok {
		if result, err := model.DecodeTableResult(raw); err == nil {
			e.log.Debug("table cache hit", "key", key)
			return result, nil
		}
	}

	result, err := e.extractTables(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := model.EncodeTableResult(result); err == nil {
		e.store.Set(key, raw, tableCacheTTL)
	}
	return result, nil
}
