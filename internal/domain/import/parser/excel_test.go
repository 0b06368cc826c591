package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cofrinho-app/cofrinho-api/internal/domain/ledger"
)

func writeSheet(t *testing.T, f *excelize.File, sheet string, rows [][]interface{}) {
	t.Helper()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
}

func workbookBytes(t *testing.T, f *excelize.File) []byte {
	t.Helper()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestWorkbookParser_DashboardWorkbook(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Março"))

	writeSheet(t, f, "Março", [][]interface{}{
		{"Orçamento 2025"},
		{"RECEITAS"},
		{"Data", "Descrição", "Valor", "Fonte"},
		{"01/03/2025", "Salário", "5.000,00", "Salário"},
		{"", "TOTAL", "5.000,00"},
		{"DESPESAS VARIÁVEIS"},
		{"Data", "Descrição", "Valor", "Categoria", "Pote", "Pagamento"},
		{"2025-03-02", "Mercado", "350,75", "Alimentação", "Necessidades", "Pix"},
		{"TOTAL"},
	})

	res, err := NewWorkbookParser().ParseWorkbook(workbookBytes(t, f))
	require.NoError(t, err)

	require.Len(t, res.Transactions, 2)
	assert.Equal(t, ledger.TypeIncome, res.Transactions[0].Type)
	assert.Equal(t, "2025-03-01", res.Transactions[0].DateISO())
	assert.Equal(t, ledger.TypeExpense, res.Transactions[1].Type)
	assert.Equal(t, ledger.JarNecessities, res.Transactions[1].JarType)
}

func TestWorkbookParser_FlatSheetFallback(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Lançamentos"))

	writeSheet(t, f, "Lançamentos", [][]interface{}{
		{"tipo", "valor", "data", "descricao", "categoria"},
		{"Despesa", "150,50", "02/03/2025", "Mercado", "Alimentação"},
		{"Receita", "3000", "2025-03-01", "Salario", "Salário"},
	})

	res, err := NewWorkbookParser().ParseWorkbook(workbookBytes(t, f))
	require.NoError(t, err)

	require.Len(t, res.Transactions, 2)
	assert.Equal(t, ledger.TypeExpense, res.Transactions[0].Type)
	assert.Equal(t, "150.5", res.Transactions[0].Amount.String())
	assert.Equal(t, ledger.TypeIncome, res.Transactions[1].Type)
	assert.Equal(t, "Salário", res.Transactions[1].Source)
}

func TestWorkbookParser_MultipleMonthSheets(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Janeiro"))
	_, err := f.NewSheet("Fevereiro")
	require.NoError(t, err)

	writeSheet(t, f, "Janeiro", [][]interface{}{
		{"2025"},
		{"RECEITAS"},
		{"Data", "Descrição", "Valor", "Fonte"},
		{"10", "Salário", "4.000,00", "Salário"},
		{"TOTAL"},
	})
	writeSheet(t, f, "Fevereiro", [][]interface{}{
		{"2025"},
		{"RECEITAS"},
		{"Data", "Descrição", "Valor", "Fonte"},
		{"10", "Salário", "4.000,00", "Salário"},
		{"TOTAL"},
	})

	res, err := NewWorkbookParser().ParseWorkbook(workbookBytes(t, f))
	require.NoError(t, err)

	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "2025-01-10", res.Transactions[0].DateISO())
	assert.Equal(t, "2025-02-10", res.Transactions[1].DateISO())
}

func TestWorkbookParser_InvalidData(t *testing.T) {
	_, err := NewWorkbookParser().ParseWorkbook([]byte("not a zip archive"))
	assert.Error(t, err)
}

func TestWorkbookParser_InvalidLegacyData(t *testing.T) {
	_, err := NewWorkbookParser().ParseLegacyWorkbook([]byte("not an ole2 file"))
	assert.Error(t, err)
}
