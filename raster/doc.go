// Package raster converts PDF pages to normalized greyscale bitmaps
// ready for OCR.
//
// Rendering is delegated to MuPDF via go-fitz. Every page is rendered at
// a fixed effective resolution (144 DPI, i.e. 2.0x the 72 DPI PDF base)
// chosen empirically to balance OCR accuracy against processing time,
// then run through a uniform preprocessing chain:
//
//  1. Conversion to greyscale
//  2. Downscaling, only when either dimension exceeds the configured
//     ceiling, using Catmull-Rom resampling
//  3. A fixed contrast boost
//  4. A light unsharp mask
//
// Unreadable or corrupt input fails the whole call with
// [ErrDocumentUnreadable]; no partial page list is ever returned.
package raster
