// Package model defines the value types shared by every stage of the
// manifest extraction pipeline: positioned text spans, OCR results,
// extracted tables, and the document-level result envelopes.
//
// # Coordinate system
//
// All bounding boxes are page-relative with the origin at the top-left
// corner of the page and Y growing downward, matching rasterized page
// images and OCR output. Native PDF coordinates (origin bottom-left) are
// flipped when spans are ingested, so every consumer of this package sees
// one orientation. No coordinate system spans pages.
//
// # Immutability
//
// Every type here is constructed once per extraction run and never
// mutated afterward (construct-then-publish). Confidence values are
// always recomputed from observable signals by the scoring code in the
// tables package; they are hand-assigned only in tests.
//
// # Serialization
//
// DocumentOCRResult and DocumentTableResult marshal to JSON inside a
// versioned envelope (see EncodeOCRResult and friends) so cache entries
// written by an older engine revision are discarded on schema mismatch
// instead of being misread.
package model
