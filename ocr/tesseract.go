//go:build ocr

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"

	"github.com/shipdocs/manifex/model"
)

// TesseractConfig controls the Tesseract engine.
type TesseractConfig struct {
	// Language is the recognition language, "+" separated for multiple
	// (e.g. "eng+fra").
	Language string

	// PageSegMode controls Tesseract's layout analysis. The default,
	// single uniform block, works best on manifest pages.
	PageSegMode gosseract.PageSegMode

	// Whitelist restricts recognized characters. Empty means no
	// restriction.
	Whitelist string
}

// DefaultTesseractConfig returns the manifest-tuned configuration.
func DefaultTesseractConfig() TesseractConfig {
	return TesseractConfig{
		Language:    "eng",
		PageSegMode: gosseract.PSM_SINGLE_BLOCK,
		Whitelist:   "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz .,()-/:[]",
	}
}

// Tesseract is the local CPU-bound OCR engine wrapping gosseract.
type Tesseract struct {
	cfg TesseractConfig
}

// NewTesseract creates a Tesseract engine.
func NewTesseract(cfg TesseractConfig) *Tesseract {
	return &Tesseract{cfg: cfg}
}

// Name returns the engine's identifier ("tesseract").
func (t *Tesseract) Name() string {
	return "tesseract"
}

// Recognize runs Tesseract on the page image and returns word-level
// tokens with confidence and bounding boxes. A fresh gosseract client is
// created per call; clients are not safe for concurrent use and pages
// are recognized in parallel.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (*RawOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.cfg.Language != "" {
		if err := client.SetLanguage(t.cfg.Language); err != nil {
			return nil, fmt.Errorf("%w: set language: %v", ErrEngineUnavailable, err)
		}
	}
	if err := client.SetPageSegMode(t.cfg.PageSegMode); err != nil {
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if t.cfg.Whitelist != "" {
		if err := client.SetWhitelist(t.cfg.Whitelist); err != nil {
			return nil, fmt.Errorf("set whitelist: %w", err)
		}
	}

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}

	out := &RawOutput{Tokens: make([]Token, 0, len(boxes))}
	for _, box := range boxes {
		out.Tokens = append(out.Tokens, Token{
			Text:       box.Word,
			Confidence: box.Confidence,
			BBox: model.NewBBox(
				float64(box.Box.Min.X), float64(box.Box.Min.Y),
				float64(box.Box.Max.X), float64(box.Box.Max.Y),
			),
		})
	}

	return out, nil
}
