package parser

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

// ParseLegacyWorkbook reads the pre-2007 binary XLS format. Only the first
// sheet is considered and it is always treated as a flat table; dashboard
// workbooks are distributed as XLSX.
func (p *WorkbookParser) ParseLegacyWorkbook(data []byte) (Result, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return Result{}, fmt.Errorf("open xls: %w", err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return Result{}, nil
	}

	grid := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		grid = append(grid, cells)
	}

	return p.tabular.FromGrid(grid), nil
}
