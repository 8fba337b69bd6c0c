package ocr

import (
	"context"
	"errors"
	"image"

	"github.com/shipdocs/manifex/model"
)

// ErrEngineUnavailable is reported by an engine that cannot run in the
// current environment (missing binary, missing credentials, stub build).
// The coordinator treats it like any other engine failure and moves on
// to the next engine in priority order.
var ErrEngineUnavailable = errors.New("ocr engine unavailable")

// ErrAllEnginesFailed is returned when every configured engine and the
// baseline fallback failed for a page. This is the only OCR error
// surfaced to callers.
var ErrAllEnginesFailed = errors.New("all ocr engines failed")

// Token is a single recognized word with its engine-native confidence
// (0-100 scale) and position on the page image.
type Token struct {
	Text       string
	Confidence float64 // 0-100
	BBox       model.BBox
}

// RawOutput is the uniform result shape every engine produces.
type RawOutput struct {
	Tokens []Token
}

// Engine recognizes text on a single page image.
type Engine interface {
	// Name identifies the engine in result metadata.
	Name() string

	// Recognize performs OCR on one page image. Implementations should
	// honor ctx cancellation where the underlying engine allows it.
	Recognize(ctx context.Context, img image.Image) (*RawOutput, error)
}
