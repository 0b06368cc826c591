package parser

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WorkbookParser routes an XLSX workbook to the right extractor: any sheet
// named after a calendar month makes the whole file a dashboard workbook,
// otherwise the first sheet is read as a flat table.
type WorkbookParser struct {
	dashboard *DashboardExtractor
	tabular   *TabularExtractor
}

// NewWorkbookParser builds a parser with default extractors.
func NewWorkbookParser() *WorkbookParser {
	return &WorkbookParser{
		dashboard: NewDashboardExtractor(),
		tabular:   NewTabularExtractor(),
	}
}

// ParseWorkbook reads an in-memory XLSX file.
func (p *WorkbookParser) ParseWorkbook(data []byte) (Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var res Result
	foundMonthSheet := false
	for _, name := range f.GetSheetList() {
		monthIndex, ok := MonthIndex(name)
		if !ok {
			continue
		}
		foundMonthSheet = true
		rows, err := f.GetRows(name)
		if err != nil {
			return Result{}, fmt.Errorf("read sheet %q: %w", name, err)
		}
		res.merge(p.dashboard.ExtractSheet(rows, monthIndex))
	}
	if foundMonthSheet {
		return res, nil
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Result{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Result{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return p.tabular.FromGrid(rows), nil
}
