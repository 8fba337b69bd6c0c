package tables

import (
	"strings"

	"github.com/shipdocs/manifex/model"
)

// Per-cell confidence by extraction method. Structural cells come from
// explicit ruled grids, geometric cells from threshold clustering, and
// pattern cells from text heuristics, in decreasing order of trust.
const (
	structuralCellConfidence = 0.8
	patternCellConfidence    = 0.75
	geometricCellConfidence  = 0.7
)

var (
	dangerousGoodsIndicators = []string{
		"un", "dangerous", "hazard", "class", "packing", "shipping name",
	}
	summaryIndicators = []string{"total", "summary", "count", "weight"}
	genericIndicators = []string{"item", "quantity", "weight", "container"}
)

// Classify determines the table kind from its headers. Dangerous-goods
// indicators win over summary indicators, which win over generic ones;
// the "un" check matches as a substring so "UN Number" and "UN No."
// both qualify.
func Classify(headers []string, rows []map[string]string) model.TableKind {
	joined := strings.ToLower(strings.Join(headers, " "))

	for _, indicator := range dangerousGoodsIndicators {
		if strings.Contains(joined, indicator) {
			return model.KindDangerousGoods
		}
	}
	for _, indicator := range summaryIndicators {
		if strings.Contains(joined, indicator) {
			return model.KindSummary
		}
	}
	for _, indicator := range genericIndicators {
		if strings.Contains(joined, indicator) {
			return model.KindGeneric
		}
	}
	return model.KindUnknown
}

// Score computes a table's confidence in [0, 1] from its shape and
// content, weighted by the extraction method. Tables with no headers or
// no rows score zero.
func Score(headers []string, rows []map[string]string, method model.ExtractionMethod) float64 {
	if len(headers) == 0 || len(rows) == 0 {
		return 0.0
	}

	score := 0.5

	if len(headers) >= 3 {
		score += 0.1
	}

	joined := strings.ToLower(strings.Join(headers, " "))
	if strings.Contains(joined, "un") {
		score += 0.2
	}
	if strings.Contains(joined, "class") ||
		strings.Contains(joined, "hazard") ||
		strings.Contains(joined, "dangerous") {
		score += 0.2
	}

	score += fillRate(headers, rows) * 0.3

	switch method {
	case model.MethodStructural:
		score *= 1.0
	case model.MethodGeometric:
		score *= 0.9
	case model.MethodPattern:
		score *= 0.8
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// fillRate is the fraction of non-empty cells over the full
// headers-by-rows grid.
func fillRate(headers []string, rows []map[string]string) float64 {
	total := len(headers) * len(rows)
	if total == 0 {
		return 0.0
	}
	filled := 0
	for _, row := range rows {
		for _, header := range headers {
			if strings.TrimSpace(row[header]) != "" {
				filled++
			}
		}
	}
	return float64(filled) / float64(total)
}

// cellKind classifies a single cell by its content.
func cellKind(content string) model.CellKind {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return model.CellEmpty
	}
	if strings.HasPrefix(strings.ToLower(trimmed), "total") {
		return model.CellTotal
	}
	return model.CellData
}
