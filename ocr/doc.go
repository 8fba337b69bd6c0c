// Package ocr recognizes text on rasterized page images through a set of
// pluggable engines tried in strict priority order.
//
// # Engine contract
//
// An engine is anything implementing [Engine]: it takes a page image and
// returns tokens with per-token confidence (on the engine-native 0-100
// scale) and bounding boxes. The coordinator never special-cases any
// engine beyond this contract, so additional engines (cloud OCR services,
// alternative local recognizers) plug in without changes here. An engine
// that is unavailable at runtime simply fails with
// [ErrEngineUnavailable] and is skipped.
//
// # Tesseract
//
// The built-in Tesseract engine wraps gosseract and requires Tesseract to
// be installed on the system. It is compiled in only with the "ocr" build
// tag:
//
//	go build -tags ocr
//
// Without the tag a stub is used whose Recognize always reports
// [ErrEngineUnavailable]. On macOS, install Tesseract via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr
