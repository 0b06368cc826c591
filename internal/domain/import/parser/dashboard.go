package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cofrinho-app/cofrinho-api/internal/domain/import/normalizer"
	"github.com/cofrinho-app/cofrinho-api/internal/domain/ledger"
)

// monthNames is the canonical month list matched against sheet names. Folded
// containment means "Março 2025" and "marco" both resolve to index 2.
var monthNames = []string{
	"janeiro", "fevereiro", "marco", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

var yearPattern = regexp.MustCompile(`\b20\d{2}\b`)

// MonthIndex resolves a sheet name to a 0-based calendar month index.
func MonthIndex(sheetName string) (int, bool) {
	folded := normalizer.Fold(sheetName)
	if folded == "" {
		return 0, false
	}
	for i, name := range monthNames {
		if strings.Contains(folded, name) {
			return i, true
		}
	}
	return 0, false
}

// Result is the output of one extraction pass. RowsSkipped counts data rows
// dropped by validation; structurally empty rows are not counted.
type Result struct {
	Transactions []ledger.Transaction
	RowsSeen     int
	RowsSkipped  int
}

func (r *Result) merge(other Result) {
	r.Transactions = append(r.Transactions, other.Transactions...)
	r.RowsSeen += other.RowsSeen
	r.RowsSkipped += other.RowsSkipped
}

// DashboardExtractor turns the three blocks of a month sheet into
// transactions. Each block has fixed column positions: 1 = date (or due day
// in the fixed block), 2 = description, 3 = amount, 4 = source or category
// label, 5 = jar label, 6 = payment method.
type DashboardExtractor struct {
	scanner  *SectionScanner
	jars     normalizer.JarTable
	payments normalizer.PaymentTable
	sources  normalizer.SourceTable
}

// NewDashboardExtractor builds an extractor with the default label tables.
func NewDashboardExtractor() *DashboardExtractor {
	return &DashboardExtractor{
		scanner:  NewSectionScanner(),
		jars:     normalizer.DefaultJarTable(),
		payments: normalizer.DefaultPaymentTable(),
		sources:  normalizer.DefaultSourceTable(),
	}
}

// ExtractSheet parses one month sheet. The year comes from a 20xx token in
// the first five rows, falling back to the current year.
func (e *DashboardExtractor) ExtractSheet(rows [][]string, monthIndex int) Result {
	year := detectYear(rows)
	secs := e.scanner.Scan(rows)

	var res Result
	res.merge(e.extractIncome(rows, secs.Income, year, monthIndex))
	res.merge(e.extractFixed(rows, secs.Fixed, year, monthIndex))
	res.merge(e.extractVariable(rows, secs.Variable, year, monthIndex))
	return res
}

func (e *DashboardExtractor) extractIncome(rows [][]string, r SectionRange, year, monthIndex int) Result {
	var res Result
	for _, row := range blockRows(rows, r) {
		res.RowsSeen++
		desc := cellAt(row, 1)
		amount := normalizer.ParseAmount(cellAt(row, 2))
		date, ok := normalizer.ResolveDate(cellAt(row, 0), year, monthIndex)
		if desc == "" || !amount.IsPositive() || !ok {
			res.RowsSkipped++
			continue
		}
		tx := ledger.Transaction{
			Type:        ledger.TypeIncome,
			Amount:      amount,
			Description: desc,
			Date:        date,
			Source:      cellAt(row, 3),
		}
		if srcType, found := normalizer.NormalizeSourceType(tx.Source, e.sources); found {
			tx.SourceType = srcType
		}
		res.Transactions = append(res.Transactions, tx)
	}
	return res
}

// extractFixed reads recurring expenses. The first column holds a due day
// rather than a date, so the date is built straight from the sheet's
// month/year context.
func (e *DashboardExtractor) extractFixed(rows [][]string, r SectionRange, year, monthIndex int) Result {
	var res Result
	for _, row := range blockRows(rows, r) {
		res.RowsSeen++
		desc := cellAt(row, 1)
		amount := normalizer.ParseAmount(cellAt(row, 2))
		if desc == "" || !amount.IsPositive() {
			res.RowsSkipped++
			continue
		}
		day := normalizer.ResolveDueDay(cellAt(row, 0))
		res.Transactions = append(res.Transactions, ledger.Transaction{
			Type:        ledger.TypeExpense,
			Amount:      amount,
			Description: desc,
			Date:        time.Date(year, time.Month(monthIndex+1), day, 0, 0, 0, 0, time.UTC),
			Category:    cellAt(row, 3),
			IsFixed:     true,
		})
	}
	return res
}

func (e *DashboardExtractor) extractVariable(rows [][]string, r SectionRange, year, monthIndex int) Result {
	var res Result
	for _, row := range blockRows(rows, r) {
		res.RowsSeen++
		desc := cellAt(row, 1)
		amount := normalizer.ParseAmount(cellAt(row, 2))
		date, ok := normalizer.ResolveDate(cellAt(row, 0), year, monthIndex)
		if desc == "" || !amount.IsPositive() || !ok {
			res.RowsSkipped++
			continue
		}
		tx := ledger.Transaction{
			Type:        ledger.TypeExpense,
			Amount:      amount,
			Description: desc,
			Date:        date,
			Category:    cellAt(row, 3),
		}
		if jar, found := normalizer.NormalizeJar(cellAt(row, 4), e.jars); found {
			tx.JarType = jar
		}
		if method, found := normalizer.NormalizePaymentMethod(cellAt(row, 5), e.payments); found {
			tx.PaymentMethod = method
		}
		res.Transactions = append(res.Transactions, tx)
	}
	return res
}

func detectYear(rows [][]string) int {
	limit := len(rows)
	if limit > 5 {
		limit = 5
	}
	for _, row := range rows[:limit] {
		for _, cell := range row {
			if match := yearPattern.FindString(cell); match != "" {
				year, err := strconv.Atoi(match)
				if err == nil {
					return year
				}
			}
		}
	}
	return time.Now().Year()
}

// blockRows returns the non-empty data rows inside a range, clamped to the
// sheet bounds.
func blockRows(rows [][]string, r SectionRange) [][]string {
	if r.Empty() {
		return nil
	}
	end := r.End
	if end > len(rows) {
		end = len(rows)
	}
	if r.Start >= end {
		return nil
	}
	out := make([][]string, 0, end-r.Start)
	for _, row := range rows[r.Start:end] {
		if rowEmpty(row) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}
