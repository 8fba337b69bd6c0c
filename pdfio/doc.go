// Package pdfio reads the native content of machine-generated PDFs:
// positioned text spans, ruling lines, and assembled plain text.
//
// Scanned documents carry no native text; for those this package returns
// pages with empty span lists and the pipeline falls back to OCR. All
// output coordinates are flipped to the top-left-origin system used by
// the rest of the engine (see the model package).
package pdfio
