// Package tables detects and extracts candidate tables from manifest
// pages, classifies them, scores their confidence, and deduplicates the
// candidates produced by competing strategies.
//
// # Detectors
//
// Three independent detectors implement the [Detector] interface:
//
//   - [StructuralDetector] - recovers ruled tables from the PDF's native
//     ruling lines; applies only to machine-generated pages
//   - [GeometricDetector] - clusters positioned text spans into rows and
//     columns by coordinate thresholds; works on OCR output from scans
//   - [PatternDetector] - matches known manifest header vocabularies
//     against plain text lines; the fallback when positional detection
//     fails
//
// Detectors run per page and know nothing about each other; the same
// physical table is often found by more than one of them. [Deduplicate]
// resolves those disagreements, keeping the highest-confidence candidate
// for each physical region.
//
// # Confidence
//
// Every candidate's kind and confidence are recomputed from its headers
// and rows by [Classify] and [Score]; confidence is never hand-assigned.
// The clustering thresholds in [Config] are empirically calibrated
// against real manifest layouts and deliberately preserved as
// configuration constants rather than re-derived.
package tables
