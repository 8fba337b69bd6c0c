package tables

import (
	"sort"
	"strings"

	"github.com/shipdocs/manifex/model"
)

// Overlap thresholds for deciding two candidates describe the same
// physical table. Header sets are compared first; content comparison
// over the leading rows catches candidates whose detectors named the
// columns differently.
const (
	headerOverlapThreshold  = 0.7
	contentOverlapThreshold = 0.5
	contentSampleRows       = 5
)

// Deduplicate resolves candidates from competing detectors that describe
// the same physical table. Within each page, candidates are considered
// in descending confidence; a candidate is kept only if it does not
// overlap an already-kept one. The result is ordered by page, then by
// confidence descending within the page.
func Deduplicate(tables []*model.ExtractedTable) []*model.ExtractedTable {
	if len(tables) <= 1 {
		return tables
	}

	byPage := make(map[int][]*model.ExtractedTable)
	var pages []int
	for _, table := range tables {
		if _, ok := byPage[table.PageNumber]; !ok {
			pages = append(pages, table.PageNumber)
		}
		byPage[table.PageNumber] = append(byPage[table.PageNumber], table)
	}
	sort.Ints(pages)

	var result []*model.ExtractedTable
	for _, page := range pages {
		candidates := byPage[page]
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Confidence > candidates[j].Confidence
		})

		var kept []*model.ExtractedTable
		for _, candidate := range candidates {
			duplicate := false
			for _, accepted := range kept {
				if sameTable(candidate, accepted) {
					duplicate = true
					break
				}
			}
			if !duplicate {
				kept = append(kept, candidate)
			}
		}
		result = append(result, kept...)
	}

	return result
}

// sameTable reports whether two candidates describe the same physical
// table, by header-set overlap or by shared content in the leading rows.
func sameTable(a, b *model.ExtractedTable) bool {
	if headerOverlap(a.Headers, b.Headers) > headerOverlapThreshold {
		return true
	}
	return contentOverlap(a.Rows, b.Rows) > contentOverlapThreshold
}

// headerOverlap is the ratio of shared lowercase headers to the larger
// header set.
func headerOverlap(a, b []string) float64 {
	setA := headerSet(a)
	setB := headerSet(b)

	shared := 0
	for h := range setA {
		if _, ok := setB[h]; ok {
			shared++
		}
	}

	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	if larger == 0 {
		larger = 1
	}
	return float64(shared) / float64(larger)
}

func headerSet(headers []string) map[string]struct{} {
	set := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			set[h] = struct{}{}
		}
	}
	return set
}

// contentOverlap is the ratio of shared non-empty lowercase cell values
// in the leading rows to the larger value set.
func contentOverlap(a, b []map[string]string) float64 {
	setA := contentSet(a)
	setB := contentSet(b)

	shared := 0
	for v := range setA {
		if _, ok := setB[v]; ok {
			shared++
		}
	}

	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	if larger == 0 {
		larger = 1
	}
	return float64(shared) / float64(larger)
}

func contentSet(rows []map[string]string) map[string]struct{} {
	limit := len(rows)
	if limit > contentSampleRows {
		limit = contentSampleRows
	}
	set := make(map[string]struct{})
	for _, row := range rows[:limit] {
		for _, value := range row {
			value = strings.ToLower(strings.TrimSpace(value))
			if value != "" {
				set[value] = struct{}{}
			}
		}
	}
	return set
}

// QualityScore summarizes an extraction run in [0, 1]: the mean table
// confidence, plus a bonus when a dangerous-goods table was found, plus
// a bonus per distinct extraction method used.
func QualityScore(tables []*model.ExtractedTable) float64 {
	if len(tables) == 0 {
		return 0.0
	}

	sum := 0.0
	foundDG := false
	methods := make(map[model.ExtractionMethod]struct{})
	for _, table := range tables {
		sum += table.Confidence
		if table.Kind == model.KindDangerousGoods {
			foundDG = true
		}
		methods[table.Method] = struct{}{}
	}

	score := sum / float64(len(tables))
	if foundDG {
		score += 0.2
	}

	methodBonus := 0.1 * float64(len(methods))
	if methodBonus > 0.3 {
		methodBonus = 0.3
	}
	score += methodBonus

	if score > 1.0 {
		score = 1.0
	}
	return score
}
