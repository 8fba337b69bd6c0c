package model

import "time"

// DocumentTableResult is the final, post-deduplication table extraction
// outcome for one document.
//
// Tables are ordered by ascending page number, then descending confidence
// within a page. An empty Tables slice with a QualityScore of 0.0 is a
// valid, well-formed result.
type DocumentTableResult struct {
	Tables         []*ExtractedTable
	TotalTables    int
	ProcessingTime time.Duration
	MethodsUsed    []string
	QualityScore   float64 // 0-1
}

// DangerousGoodsTables returns only the tables classified as dangerous
// goods manifests.
func (r *DocumentTableResult) DangerousGoodsTables() []*ExtractedTable {
	var out []*ExtractedTable
	for _, t := range r.Tables {
		if t.Kind == KindDangerousGoods {
			out = append(out, t)
		}
	}
	return out
}

// TablesOnPage returns the tables extracted from the given page.
func (r *DocumentTableResult) TablesOnPage(page int) []*ExtractedTable {
	var out []*ExtractedTable
	for _, t := range r.Tables {
		if t.PageNumber == page {
			out = append(out, t)
		}
	}
	return out
}
