//go:build !ocr

package ocr

import (
	"context"
	"image"
)

// PageSegMode mirrors the gosseract page segmentation modes so code
// configuring the engine compiles without the "ocr" build tag.
type PageSegMode int

const (
	PSM_OSD_ONLY               PageSegMode = 0
	PSM_AUTO_OSD               PageSegMode = 1
	PSM_AUTO_ONLY              PageSegMode = 2
	PSM_AUTO                   PageSegMode = 3
	PSM_SINGLE_COLUMN          PageSegMode = 4
	PSM_SINGLE_BLOCK_VERT_TEXT PageSegMode = 5
	PSM_SINGLE_BLOCK           PageSegMode = 6
	PSM_SINGLE_LINE            PageSegMode = 7
	PSM_SINGLE_WORD            PageSegMode = 8
	PSM_CIRCLE_WORD            PageSegMode = 9
	PSM_SINGLE_CHAR            PageSegMode = 10
	PSM_SPARSE_TEXT            PageSegMode = 11
	PSM_SPARSE_TEXT_OSD        PageSegMode = 12
	PSM_RAW_LINE               PageSegMode = 13
)

// TesseractConfig controls the Tesseract engine. In the stub build the
// values are accepted but never used.
type TesseractConfig struct {
	Language    string
	PageSegMode PageSegMode
	Whitelist   string
}

// DefaultTesseractConfig returns the manifest-tuned configuration.
func DefaultTesseractConfig() TesseractConfig {
	return TesseractConfig{
		Language:    "eng",
		PageSegMode: PSM_SINGLE_BLOCK,
		Whitelist:   "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz .,()-/:[]",
	}
}

// Tesseract is the stub engine used when OCR support is not compiled in.
// Rebuild with -tags ocr to enable real recognition.
type Tesseract struct {
	cfg TesseractConfig
}

// NewTesseract creates a stub Tesseract engine.
func NewTesseract(cfg TesseractConfig) *Tesseract {
	return &Tesseract{cfg: cfg}
}

// Name returns the engine's identifier ("tesseract").
func (t *Tesseract) Name() string {
	return "tesseract"
}

// Recognize reports ErrEngineUnavailable; the coordinator skips the
// engine in its fallback chain.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (*RawOutput, error) {
	return nil, ErrEngineUnavailable
}
