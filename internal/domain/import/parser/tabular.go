package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/cofrinho-app/cofrinho-api/internal/domain/import/normalizer"
	"github.com/cofrinho-app/cofrinho-api/internal/domain/ledger"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func init() {
	// Headers arrive as "Tipo", "Descrição", "VALOR"; fold them so one tag
	// per field is enough.
	gocsv.SetHeaderNormalizer(normalizer.Fold)
}

// tabularRow is the header-driven shape of one flat-table line. Tags are
// pre-folded, so "descricao" also captures "Descrição".
type tabularRow struct {
	Tipo      string `csv:"tipo"`
	Valor     string `csv:"valor"`
	Data      string `csv:"data"`
	Descricao string `csv:"descricao"`
	Categoria string `csv:"categoria"`
	Fonte     string `csv:"fonte"`
}

// TabularExtractor validates flat-table rows from CSV files and from
// spreadsheet sheets that do not match the dashboard shape.
type TabularExtractor struct {
	sources normalizer.SourceTable
}

// NewTabularExtractor builds an extractor with the default source table.
func NewTabularExtractor() *TabularExtractor {
	return &TabularExtractor{sources: normalizer.DefaultSourceTable()}
}

// ParseCSV decodes a UTF-8 CSV with a header row. The delimiter is sniffed
// from the header line since Brazilian exports often use semicolons.
func (e *TabularExtractor) ParseCSV(data []byte) (Result, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var records []*tabularRow
	if err := gocsv.UnmarshalCSV(reader, &records); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return Result{}, nil
		}
		return Result{}, fmt.Errorf("decode csv: %w", err)
	}

	var res Result
	for _, rec := range records {
		if rec == nil {
			continue
		}
		res.RowsSeen++
		tx, ok := e.convertRow(*rec)
		if !ok {
			res.RowsSkipped++
			continue
		}
		res.Transactions = append(res.Transactions, tx)
	}
	return res, nil
}

// FromGrid applies the same row validation to a sheet already expanded into
// a string grid. The first row is the header.
func (e *TabularExtractor) FromGrid(rows [][]string) Result {
	if len(rows) == 0 {
		return Result{}
	}

	index := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		key := normalizer.Fold(header)
		if _, dup := index[key]; key != "" && !dup {
			index[key] = i
		}
	}

	var res Result
	for _, row := range rows[1:] {
		if rowEmpty(row) {
			continue
		}
		res.RowsSeen++
		rec := tabularRow{
			Tipo:      pickCell(row, index, "tipo"),
			Valor:     pickCell(row, index, "valor"),
			Data:      pickCell(row, index, "data"),
			Descricao: pickCell(row, index, "descricao"),
			Categoria: pickCell(row, index, "categoria"),
			Fonte:     pickCell(row, index, "fonte"),
		}
		tx, ok := e.convertRow(rec)
		if !ok {
			res.RowsSkipped++
			continue
		}
		res.Transactions = append(res.Transactions, tx)
	}
	return res
}

// convertRow validates one line. Any failed check drops the row; nothing
// surfaces per-row.
func (e *TabularExtractor) convertRow(rec tabularRow) (ledger.Transaction, bool) {
	typ, ok := mapRowType(rec.Tipo)
	if !ok {
		return ledger.Transaction{}, false
	}
	amount, ok := parseTabularAmount(rec.Valor)
	if !ok {
		return ledger.Transaction{}, false
	}
	date, ok := normalizer.ResolveExplicitDate(rec.Data)
	if !ok {
		return ledger.Transaction{}, false
	}
	desc := strings.TrimSpace(rec.Descricao)
	if desc == "" {
		return ledger.Transaction{}, false
	}

	tx := ledger.Transaction{
		Type:        typ,
		Amount:      amount,
		Description: desc,
		Date:        date,
	}
	if typ == ledger.TypeExpense {
		tx.Category = strings.TrimSpace(rec.Categoria)
		return tx, true
	}

	source := strings.TrimSpace(rec.Fonte)
	if source == "" {
		source = strings.TrimSpace(rec.Categoria)
	}
	tx.Source = source
	if srcType, found := normalizer.NormalizeSourceType(source, e.sources); found {
		tx.SourceType = srcType
	}
	return tx, true
}

func mapRowType(raw string) (ledger.Type, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "receita", "income":
		return ledger.TypeIncome, true
	case "despesa", "expense":
		return ledger.TypeExpense, true
	}
	return "", false
}

// parseTabularAmount keeps only digits, separators and the sign, then reads
// the value with Brazilian separators whenever a comma is present. The result
// must be strictly positive.
func parseTabularAmount(raw string) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return decimal.Decimal{}, false
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, false
	}
	return d.Round(2), true
}

// detectDelimiter picks between comma and semicolon based on the header line.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func pickCell(row []string, index map[string]int, key string) string {
	i, ok := index[key]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
