package model

import "strings"

// CellKind classifies the role of a cell within a table.
type CellKind int

const (
	CellData CellKind = iota
	CellHeader
	CellTotal
	CellEmpty
)

func (k CellKind) String() string {
	switch k {
	case CellHeader:
		return "header"
	case CellData:
		return "data"
	case CellTotal:
		return "total"
	case CellEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// TableKind is the semantic classification of an extracted table.
type TableKind int

const (
	KindUnknown TableKind = iota
	KindDangerousGoods
	KindSummary
	KindGeneric
)

func (k TableKind) String() string {
	switch k {
	case KindDangerousGoods:
		return "dangerous_goods_manifest"
	case KindSummary:
		return "summary"
	case KindGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// ExtractionMethod identifies which detection strategy produced a table.
type ExtractionMethod int

const (
	MethodStructural ExtractionMethod = iota
	MethodGeometric
	MethodPattern
)

func (m ExtractionMethod) String() string {
	switch m {
	case MethodStructural:
		return "structural"
	case MethodGeometric:
		return "geometric"
	case MethodPattern:
		return "pattern"
	default:
		return "unknown"
	}
}

// TableCell is an individual table cell with content and position.
type TableCell struct {
	Content    string
	BBox       BBox
	Row        int
	Column     int
	Confidence float64
	Kind       CellKind
}

// ExtractedTable is a complete candidate table with metadata.
//
// Headers and Rows are the downstream contract: every row map has exactly
// one entry per header (missing cells are empty strings, never absent).
// Header names are not guaranteed unique; on collision the later column's
// value wins.
type ExtractedTable struct {
	Cells      [][]TableCell
	Headers    []string
	Rows       []map[string]string
	BBox       BBox
	PageNumber int // 1-indexed
	Kind       TableKind
	Confidence float64 // 0-1
	Method     ExtractionMethod
}

// RowCount returns the number of data rows.
func (t *ExtractedTable) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of columns.
func (t *ExtractedTable) ColCount() int {
	return len(t.Headers)
}

// Value returns the named column's value in row i, or "" when absent.
func (t *ExtractedTable) Value(i int, header string) string {
	if i < 0 || i >= len(t.Rows) {
		return ""
	}
	return t.Rows[i][header]
}

// ToCSV renders the table (headers plus rows) in CSV format.
func (t *ExtractedTable) ToCSV() string {
	var sb strings.Builder
	writeCSVRow := func(values []string) {
		for j, text := range values {
			if strings.Contains(text, ",") || strings.Contains(text, "\"") || strings.Contains(text, "\n") {
				text = "\"" + strings.ReplaceAll(text, "\"", "\"\"") + "\""
			}
			sb.WriteString(text)
			if j < len(values)-1 {
				sb.WriteString(",")
			}
		}
		sb.WriteString("\n")
	}

	writeCSVRow(t.Headers)
	for i := range t.Rows {
		values := make([]string, len(t.Headers))
		for j, h := range t.Headers {
			values[j] = t.Rows[i][h]
		}
		writeCSVRow(values)
	}
	return sb.String()
}

// ToMarkdown renders the table in markdown format for operator review.
func (t *ExtractedTable) ToMarkdown() string {
	if len(t.Headers) == 0 {
		return ""
	}

	var sb strings.Builder

	for j, h := range t.Headers {
		sb.WriteString("| ")
		sb.WriteString(strings.ReplaceAll(h, "\n", " "))
		sb.WriteString(" ")
		if j == len(t.Headers)-1 {
			sb.WriteString("|")
		}
	}
	sb.WriteString("\n")

	for j := range t.Headers {
		sb.WriteString("|---")
		if j == len(t.Headers)-1 {
			sb.WriteString("|")
		}
	}
	sb.WriteString("\n")

	for i := range t.Rows {
		for j, h := range t.Headers {
			sb.WriteString("| ")
			sb.WriteString(strings.ReplaceAll(t.Rows[i][h], "\n", " "))
			sb.WriteString(" ")
			if j == len(t.Headers)-1 {
				sb.WriteString("|")
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
