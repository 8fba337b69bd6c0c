package tables

import (
	"regexp"
	"strings"

	"github.com/shipdocs/manifex/model"
)

// PatternDetector recovers tables from plain text by matching known
// manifest header vocabularies against lines. It is the strategy of last
// resort for flattened text extraction, where positional information is
// gone but column alignment survives as runs of whitespace.
type PatternDetector struct {
	config Config
}

// NewPatternDetector creates a pattern detector with the default
// configuration.
func NewPatternDetector() *PatternDetector {
	return &PatternDetector{config: DefaultConfig()}
}

// Name returns the detector's identifier ("pattern").
func (d *PatternDetector) Name() string {
	return "pattern"
}

// Configure sets the detector configuration.
func (d *PatternDetector) Configure(config Config) error {
	d.config = config
	return nil
}

var (
	// columnSplit separates header and data lines into fields: runs of
	// two or more spaces, or a tab.
	columnSplit = regexp.MustCompile(`\s{2,}|\t`)

	hasDigit    = regexp.MustCompile(`\d`)
	unNumberish = regexp.MustCompile(`\bUN?\s*\d{4}|\b\d{4}\b`)
	classish    = regexp.MustCompile(`\b\d+\.\d+\b`)
)

// Detect matches each known header vocabulary against the page text and
// extracts one candidate per matching vocabulary.
func (d *PatternDetector) Detect(input *Input) ([]*model.ExtractedTable, error) {
	if strings.TrimSpace(input.PlainText) == "" {
		return nil, nil
	}

	lines := strings.Split(input.PlainText, "\n")

	var tables []*model.ExtractedTable
	for _, vocabulary := range d.config.HeaderVocabularies {
		if table := d.extractWithVocabulary(lines, vocabulary, input.PageNumber); table != nil {
			tables = append(tables, table)
		}
	}

	return tables, nil
}

// extractWithVocabulary finds the first line containing every vocabulary
// term and consumes the data rows that follow it.
func (d *PatternDetector) extractWithVocabulary(lines []string, vocabulary []string, pageNum int) *model.ExtractedTable {
	headerIdx := -1
	for idx, line := range lines {
		lower := strings.ToLower(line)
		matched := true
		for _, term := range vocabulary {
			if !strings.Contains(lower, term) {
				matched = false
				break
			}
		}
		if matched {
			headerIdx = idx
			break
		}
	}
	if headerIdx < 0 {
		return nil
	}

	headers := splitColumns(lines[headerIdx])
	if len(headers) == 0 {
		return nil
	}

	var dataRows []map[string]string
	for _, line := range lines[headerIdx+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if looksLikeDataRow(line) {
			fields := splitColumns(line)
			rowMap := make(map[string]string, len(headers))
			for i, header := range headers {
				if i < len(fields) {
					rowMap[header] = fields[i]
				} else {
					rowMap[header] = ""
				}
			}
			dataRows = append(dataRows, rowMap)
		} else if len(dataRows) > 0 {
			// The table body has ended.
			break
		}
	}

	if len(dataRows) == 0 {
		return nil
	}

	cells := make([][]model.TableCell, 0, len(dataRows)+1)
	headerCells := make([]model.TableCell, len(headers))
	for col, h := range headers {
		headerCells[col] = model.TableCell{
			Content:    h,
			Row:        0,
			Column:     col,
			Confidence: patternCellConfidence,
			Kind:       model.CellHeader,
		}
	}
	cells = append(cells, headerCells)

	for rowIdx, rowMap := range dataRows {
		cellRow := make([]model.TableCell, len(headers))
		for col, header := range headers {
			content := rowMap[header]
			cellRow[col] = model.TableCell{
				Content:    content,
				Row:        rowIdx + 1,
				Column:     col,
				Confidence: patternCellConfidence,
				Kind:       cellKind(content),
			}
		}
		cells = append(cells, cellRow)
	}

	return &model.ExtractedTable{
		Cells:      cells,
		Headers:    headers,
		Rows:       dataRows,
		PageNumber: pageNum,
		Kind:       Classify(headers, dataRows),
		Confidence: Score(headers, dataRows, model.MethodPattern),
		Method:     model.MethodPattern,
	}
}

// splitColumns splits a line on column separators and drops empty
// fields.
func splitColumns(line string) []string {
	parts := columnSplit.Split(line, -1)
	fields := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			fields = append(fields, part)
		}
	}
	return fields
}

// looksLikeDataRow reports whether a line plausibly carries manifest row
// data: it must contain a digit, and either a UN-number-like token, a
// decimal hazard-class token (4.3, 6.1), or at least three whitespace-
// delimited fields.
func looksLikeDataRow(line string) bool {
	if !hasDigit.MatchString(line) {
		return false
	}
	return unNumberish.MatchString(line) ||
		classish.MatchString(line) ||
		len(strings.Fields(line)) >= 3
}
