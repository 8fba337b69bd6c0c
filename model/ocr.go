package model

import "time"

// OCRResult holds the recognized text for a single page, produced by one
// engine attempt.
type OCRResult struct {
	Text           string
	Confidence     float64 // 0-1
	BBox           BBox
	PageNumber     int // 1-indexed
	Engine         string
	ProcessingTime time.Duration
}

// OCRMetadata carries document-level facts about an OCR run.
type OCRMetadata struct {
	PageCount         int
	AverageConfidence float64
	Timestamp         time.Time
}

// DocumentOCRResult is the whole-document OCR outcome: one OCRResult per
// processed page, in page order.
type DocumentOCRResult struct {
	Pages               []OCRResult
	AggregateConfidence float64 // mean of page confidences, 0-1
	ProcessingTime      time.Duration
	EnginesUsed         []string
	Metadata            OCRMetadata
}

// Text concatenates all page texts separated by blank lines.
func (r *DocumentOCRResult) Text() string {
	var out string
	for i, page := range r.Pages {
		if i > 0 {
			out += "\n\n"
		}
		out += page.Text
	}
	return out
}
