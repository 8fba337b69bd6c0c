package raster

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// ErrDocumentUnreadable is returned when the input bytes cannot be
// parsed as a renderable PDF. It is fatal for the whole extraction call.
var ErrDocumentUnreadable = errors.New("document unreadable")

// Config controls rendering and preprocessing.
type Config struct {
	// DPI is the effective render resolution. 144 corresponds to a 2.0x
	// zoom over the 72 DPI PDF coordinate base.
	DPI float64

	// MaxDimension is the pixel ceiling above which pages are downscaled.
	MaxDimension int

	// Contrast is the multiplicative contrast boost applied around
	// mid-grey.
	Contrast float64

	// SharpenAmount scales the unsharp-mask correction.
	SharpenAmount float64

	// SharpenThreshold suppresses corrections smaller than this many
	// grey levels, leaving flat regions untouched.
	SharpenThreshold int
}

// DefaultConfig returns the production rendering configuration.
func DefaultConfig() Config {
	return Config{
		DPI:              144,
		MaxDimension:     3000,
		Contrast:         1.2,
		SharpenAmount:    1.5,
		SharpenThreshold: 3,
	}
}

// PageImage is a rendered, preprocessed page.
type PageImage struct {
	PageNumber int // 1-indexed
	Image      *image.Gray
}

// Rasterizer renders PDF pages to preprocessed greyscale images.
type Rasterizer struct {
	cfg Config
}

// New creates a Rasterizer with the given configuration.
func New(cfg Config) *Rasterizer {
	return &Rasterizer{cfg: cfg}
}

// Render rasterizes the requested pages of the document. Page numbers
// are 1-indexed; nil means all pages. Page numbers beyond the document
// are skipped. Cancellation is honored between pages; rendering a single
// page is not interruptible.
func (r *Rasterizer) Render(ctx context.Context, data []byte, pageNumbers []int) ([]PageImage, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentUnreadable, err)
	}
	defer doc.Close()

	total := doc.NumPage()
	if total == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrDocumentUnreadable)
	}

	pages := pageNumbers
	if len(pages) == 0 {
		pages = make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
	}

	images := make([]PageImage, 0, len(pages))
	for _, pageNum := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if pageNum < 1 || pageNum > total {
			continue
		}

		img, err := doc.ImageDPI(pageNum-1, r.cfg.DPI)
		if err != nil {
			return nil, fmt.Errorf("%w: render page %d: %v", ErrDocumentUnreadable, pageNum, err)
		}

		images = append(images, PageImage{
			PageNumber: pageNum,
			Image:      r.preprocess(img),
		})
	}

	return images, nil
}
