package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cofrinho-app/cofrinho-api/internal/domain/ledger"
)

func TestTabularExtractor_ParseCSV(t *testing.T) {
	csvData := []byte("tipo,valor,descricao,data,categoria\n" +
		"Receita,3000,Salario,01/03/2025,\n" +
		"Despesa,150.5,Mercado,2025-03-02,Alimentação\n")

	res, err := NewTabularExtractor().ParseCSV(csvData)
	require.NoError(t, err)

	require.Len(t, res.Transactions, 2)
	assert.Equal(t, 2, res.RowsSeen)
	assert.Equal(t, 0, res.RowsSkipped)

	income := res.Transactions[0]
	assert.Equal(t, ledger.TypeIncome, income.Type)
	assert.Equal(t, "3000", income.Amount.String())
	assert.Equal(t, "Salario", income.Description)
	assert.Equal(t, "2025-03-01", income.DateISO())

	expense := res.Transactions[1]
	assert.Equal(t, ledger.TypeExpense, expense.Type)
	assert.Equal(t, "150.5", expense.Amount.String())
	assert.Equal(t, "2025-03-02", expense.DateISO())
	assert.Equal(t, "Alimentação", expense.Category)
}

func TestTabularExtractor_ParseCSV_SemicolonsAndBOM(t *testing.T) {
	csvData := []byte("\xef\xbb\xbfTipo;Valor;Descrição;Data;Fonte\n" +
		"receita;1.234,56;Freela;15/03/2025;Freelance\n")

	res, err := NewTabularExtractor().ParseCSV(csvData)
	require.NoError(t, err)

	require.Len(t, res.Transactions, 1)
	tx := res.Transactions[0]
	assert.Equal(t, ledger.TypeIncome, tx.Type)
	assert.Equal(t, "1234.56", tx.Amount.String())
	assert.Equal(t, "Freela", tx.Description)
	assert.Equal(t, "Freelance", tx.Source)
	assert.Equal(t, "freelance", tx.SourceType)
}

func TestTabularExtractor_ParseCSV_RowRejection(t *testing.T) {
	csvData := []byte("tipo,valor,descricao,data,categoria\n" +
		"Transferência,100,Movimentação,01/03/2025,\n" + // unknown tipo
		"Despesa,-50,Estorno,01/03/2025,Outros\n" + // non-positive amount
		"Despesa,80,Padaria,amanhã,Alimentação\n" + // bad date
		"Despesa,80,,01/03/2025,Alimentação\n" + // empty description
		"Despesa,80,Padaria,01/03/2025,Alimentação\n")

	res, err := NewTabularExtractor().ParseCSV(csvData)
	require.NoError(t, err)

	require.Len(t, res.Transactions, 1)
	assert.Equal(t, 5, res.RowsSeen)
	assert.Equal(t, 4, res.RowsSkipped)
	assert.Equal(t, "Padaria", res.Transactions[0].Description)
}

func TestTabularExtractor_ParseCSV_HeaderOnly(t *testing.T) {
	res, err := NewTabularExtractor().ParseCSV([]byte("tipo,valor,descricao,data\n"))
	require.NoError(t, err)

	assert.Empty(t, res.Transactions)
	assert.Equal(t, 0, res.RowsSeen)
}

func TestTabularExtractor_ParseCSV_EmptyInput(t *testing.T) {
	res, err := NewTabularExtractor().ParseCSV(nil)
	require.NoError(t, err)

	assert.Empty(t, res.Transactions)
}

func TestTabularExtractor_IncomeSourceFallsBackToCategory(t *testing.T) {
	csvData := []byte("tipo,valor,descricao,data,categoria\n" +
		"Receita,500,Décimo,01/12/2025,Salário\n")

	res, err := NewTabularExtractor().ParseCSV(csvData)
	require.NoError(t, err)

	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "Salário", res.Transactions[0].Source)
	assert.Equal(t, "salary", res.Transactions[0].SourceType)
}

func TestTabularExtractor_FromGrid(t *testing.T) {
	grid := [][]string{
		{"Tipo", "Valor", "Data", "Descrição", "Categoria"},
		{"Despesa", "R$ 42,90", "05/03/2025", "Farmácia", "Saúde"},
		{},
		{"Despesa", "", "05/03/2025", "sem valor", "Saúde"},
	}

	res := NewTabularExtractor().FromGrid(grid)

	require.Len(t, res.Transactions, 1)
	assert.Equal(t, 2, res.RowsSeen)
	assert.Equal(t, 1, res.RowsSkipped)
	assert.Equal(t, "42.9", res.Transactions[0].Amount.String())
	assert.Equal(t, "Saúde", res.Transactions[0].Category)
}

func TestParseTabularAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"plain float", "150.5", "150.5", true},
		{"brazilian", "1.234,56", "1234.56", true},
		{"currency prefix", "R$ 99,90", "99.9", true},
		{"integer", "3000", "3000", true},
		{"negative", "-10", "", false},
		{"zero", "0", "", false},
		{"empty", "", "", false},
		{"letters only", "abc", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseTabularAmount(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got.String())
			}
		})
	}
}
