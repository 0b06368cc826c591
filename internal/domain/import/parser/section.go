// Package parser extracts normalized transactions from the two supported
// file shapes: a flat header-driven table (CSV, XLSX or legacy XLS) and the
// multi-section dashboard workbook with one sheet per calendar month.
package parser

import (
	"github.com/cloudflare/ahocorasick"

	"github.com/cofrinho-app/cofrinho-api/internal/domain/import/normalizer"
)

// sectionState tracks which dashboard block the scanner is inside.
type sectionState int

const (
	stateSeeking sectionState = iota
	stateIncome
	stateFixed
	stateVariable
)

// rowEvent is the classification of a single sheet row.
type rowEvent int

const (
	eventData rowEvent = iota
	eventIncomeMarker
	eventFixedMarker
	eventVariableMarker
	eventTotal
)

// Marker dictionary indices. "despesas vari" is a prefix so that accent
// variants of "variáveis" all match after folding.
const (
	patternIncome = iota
	patternFixed
	patternVariable
	patternTotal
)

var markerDictionary = []string{"receitas", "despesas fixas", "despesas vari", "total"}

// transition is the pure state-transition function of the scanner.
func transition(s sectionState, ev rowEvent) sectionState {
	switch ev {
	case eventIncomeMarker:
		return stateIncome
	case eventFixedMarker:
		return stateFixed
	case eventVariableMarker:
		return stateVariable
	case eventTotal:
		return stateSeeking
	default:
		return s
	}
}

// SectionRange is a half-open [Start,End) range of data rows for one block.
// A range with Start < 0 means the block's marker never appeared.
type SectionRange struct {
	Start int
	End   int
}

// Empty reports whether the range holds no data rows.
func (r SectionRange) Empty() bool {
	return r.Start < 0 || r.Start >= r.End
}

// Sections holds the three block ranges of a month sheet.
type Sections struct {
	Income   SectionRange
	Fixed    SectionRange
	Variable SectionRange
}

// SectionScanner partitions a month sheet into its Income, Fixed-Expenses
// and Variable-Expenses blocks. Blocks are located by marker text, not fixed
// coordinates; data rows start two rows below each marker (the marker row
// and the column-header row are skipped) and run until a row whose first
// three cells contain "total" or until the next marker.
type SectionScanner struct {
	matcher *ahocorasick.Matcher
}

// NewSectionScanner builds a scanner with the standard marker dictionary.
func NewSectionScanner() *SectionScanner {
	return &SectionScanner{matcher: ahocorasick.NewStringMatcher(markerDictionary)}
}

// Scan walks the sheet rows once and returns the three (possibly empty)
// block ranges. Only the first occurrence of each marker opens a block;
// later occurrences merely terminate whatever block is open.
func (sc *SectionScanner) Scan(rows [][]string) Sections {
	none := SectionRange{Start: -1, End: -1}
	secs := Sections{Income: none, Fixed: none, Variable: none}
	state := stateSeeking

	blockOf := func(s sectionState) *SectionRange {
		switch s {
		case stateIncome:
			return &secs.Income
		case stateFixed:
			return &secs.Fixed
		case stateVariable:
			return &secs.Variable
		default:
			return nil
		}
	}

	for i, row := range rows {
		ev := sc.classifyRow(row)
		switch {
		case ev == eventIncomeMarker && secs.Income.Start >= 0,
			ev == eventFixedMarker && secs.Fixed.Start >= 0,
			ev == eventVariableMarker && secs.Variable.Start >= 0:
			ev = eventTotal
		}

		next := transition(state, ev)
		if next == state {
			continue
		}
		if open := blockOf(state); open != nil && open.End < 0 {
			open.End = i
		}
		if opened := blockOf(next); opened != nil {
			opened.Start = i + 2
			opened.End = -1
		}
		state = next
	}

	// A block still open at the bottom of the sheet runs to the last row.
	if open := blockOf(state); open != nil && open.End < 0 {
		open.End = len(rows)
	}

	return secs
}

// classifyRow folds the leading cells and matches them against the marker
// dictionary. Markers are only recognized in the first cell; "total" is
// recognized in any of the first three.
func (sc *SectionScanner) classifyRow(row []string) rowEvent {
	if len(row) == 0 {
		return eventData
	}

	if first := normalizer.Fold(row[0]); first != "" {
		for _, hit := range sc.matcher.Match([]byte(first)) {
			switch hit {
			case patternIncome:
				return eventIncomeMarker
			case patternFixed:
				return eventFixedMarker
			case patternVariable:
				return eventVariableMarker
			}
		}
	}

	limit := len(row)
	if limit > 3 {
		limit = 3
	}
	for _, cell := range row[:limit] {
		folded := normalizer.Fold(cell)
		if folded == "" {
			continue
		}
		for _, hit := range sc.matcher.Match([]byte(folded)) {
			if hit == patternTotal {
				return eventTotal
			}
		}
	}

	return eventData
}
