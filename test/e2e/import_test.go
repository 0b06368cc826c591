// Package e2etest exercises the full import flow in process, from raw file
// bytes through parsing, preview and fail-soft persistence.
package e2etest

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cofrinho-app/cofrinho-api/internal/domain/import/repository"
	"github.com/cofrinho-app/cofrinho-api/internal/domain/import/service"
	"github.com/cofrinho-app/cofrinho-api/internal/domain/ledger"
	"github.com/cofrinho-app/cofrinho-api/pkg/metrics"
)

type memoryRepo struct {
	categories []repository.RegistryEntry
	sources    []repository.RegistryEntry
	expenses   []repository.ExpenseRecord
	incomes    []repository.IncomeRecord
}

func (m *memoryRepo) ListActiveCategories(context.Context, uuid.UUID) ([]repository.RegistryEntry, error) {
	return m.categories, nil
}

func (m *memoryRepo) ListActiveSources(context.Context, uuid.UUID) ([]repository.RegistryEntry, error) {
	return m.sources, nil
}

func (m *memoryRepo) CreateExpense(_ context.Context, rec repository.ExpenseRecord) error {
	m.expenses = append(m.expenses, rec)
	return nil
}

func (m *memoryRepo) CreateIncome(_ context.Context, rec repository.IncomeRecord) error {
	m.incomes = append(m.incomes, rec)
	return nil
}

func newRepo() *memoryRepo {
	return &memoryRepo{
		categories: []repository.RegistryEntry{
			{ID: uuid.New(), Name: "Alimentação"},
			{ID: uuid.New(), Name: "Moradia"},
		},
		sources: []repository.RegistryEntry{
			{ID: uuid.New(), Name: "Salário"},
		},
	}
}

func newService(repo repository.ImportRepository) *service.ImportService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewImportMetrics(prometheus.NewRegistry())
	return service.NewImportService(repo, m, logger, time.Minute)
}

func dashboardWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Março 2025"))

	rows := [][]interface{}{
		{"Orçamento 2025"},
		{"RECEITAS"},
		{"Data", "Descrição", "Valor", "Fonte"},
		{"01/03/2025", "Salário", "5.000,00", "Salário"},
		{"", "TOTAL", "5.000,00"},
		{"DESPESAS FIXAS"},
		{"Dia", "Descrição", "Valor", "Categoria"},
		{"5", "Aluguel", "1.800,00", "Moradia"},
		{"TOTAL"},
		{"DESPESAS VARIÁVEIS"},
		{"Data", "Descrição", "Valor", "Categoria", "Pote", "Pagamento"},
		{"2025-03-02", "Mercado", "350,75", "Alimentação", "Necessidades", "Pix"},
		{"TOTAL"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Março 2025", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestCSVImportFlow(t *testing.T) {
	repo := newRepo()
	svc := newService(repo)
	csvData := []byte("tipo,valor,descricao,data,categoria\n" +
		"Receita,3000,Salario,01/03/2025,Salário\n" +
		"Despesa,150.5,Mercado,2025-03-02,Alimentação\n" +
		"Despesa,abc,Quebrada,2025-03-02,Alimentação\n")

	outcome, err := svc.ParseFile(context.Background(), "extrato.csv", csvData)
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.RowsSeen)
	assert.Equal(t, 2, outcome.RowsExtracted)
	assert.Equal(t, 1, outcome.RowsSkipped)

	summary, err := svc.ImportBatch(context.Background(), uuid.New(), outcome.Transactions)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 0, summary.Failed)

	require.Len(t, repo.incomes, 1)
	assert.Equal(t, int64(300000), repo.incomes[0].Amount.Shift(2).IntPart())
	require.Len(t, repo.expenses, 1)
	assert.Equal(t, "Mercado", repo.expenses[0].Description)
}

func TestDashboardWorkbookFlow(t *testing.T) {
	repo := newRepo()
	svc := newService(repo)
	userID := uuid.New()

	preview, err := svc.PreviewFile(context.Background(), userID, "orcamento.xlsx", dashboardWorkbook(t))
	require.NoError(t, err)

	require.Len(t, preview.Transactions, 3)
	assert.Contains(t, preview.IncomeTotal, "5.000,00")
	assert.Contains(t, preview.ExpenseTotal, "2.150,75")

	byType := map[ledger.Type]int{}
	for _, tx := range preview.Transactions {
		byType[tx.Type]++
	}
	assert.Equal(t, 1, byType[ledger.TypeIncome])
	assert.Equal(t, 2, byType[ledger.TypeExpense])

	summary, err := svc.CommitPreview(context.Background(), userID, preview.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Imported)

	require.Len(t, repo.expenses, 2)
	fixed := repo.expenses[0]
	assert.True(t, fixed.IsFixed)
	assert.Equal(t, "2025-03-05", fixed.Date.Format("2006-01-02"))
	variable := repo.expenses[1]
	assert.Equal(t, "necessities", variable.JarType)
	assert.Equal(t, "pix", variable.PaymentMethod)

	// One-shot sessions cannot be replayed.
	_, err = svc.CommitPreview(context.Background(), userID, preview.ID)
	assert.ErrorIs(t, err, service.ErrPreviewNotFound)
}

func TestUnsupportedAndEmptyFlows(t *testing.T) {
	svc := newService(newRepo())

	_, err := svc.ParseFile(context.Background(), "extrato.pdf", []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, service.ErrUnsupportedFileFormat)

	_, err = svc.ParseFile(context.Background(), "extrato.csv", []byte("tipo,valor,descricao,data\n"))
	assert.ErrorIs(t, err, service.ErrEmptyBatch)
}
