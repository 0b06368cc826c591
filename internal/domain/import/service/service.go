// Package service orchestrates the import pipeline: format dispatch,
// extraction, preview sessions and fail-soft batch persistence.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/cofrinho-app/cofrinho-api/internal/domain/import/parser"
	"github.com/cofrinho-app/cofrinho-api/internal/domain/import/repository"
	"github.com/cofrinho-app/cofrinho-api/internal/domain/import/sniffer"
	"github.com/cofrinho-app/cofrinho-api/internal/domain/ledger"
	"github.com/cofrinho-app/cofrinho-api/pkg/metrics"
)

// ParseOutcome is the result of reading one file, before persistence.
type ParseOutcome struct {
	Transactions  []ledger.Transaction `json:"transactions"`
	RowsSeen      int                  `json:"rows_seen"`
	RowsExtracted int                  `json:"rows_extracted"`
	RowsSkipped   int                  `json:"rows_skipped"`
}

// ImportSummary counts persistence results for one batch. Rows dropped
// earlier by the extractors are not part of these counts.
type ImportSummary struct {
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
}

// ImportService ties the extractors to the repository.
type ImportService struct {
	repo     repository.ImportRepository
	workbook *parser.WorkbookParser
	tabular  *parser.TabularExtractor
	previews *previewStore
	metrics  *metrics.ImportMetrics
	logger   *slog.Logger
}

// NewImportService builds the service. previewTTL bounds how long an
// uncommitted preview session survives.
func NewImportService(repo repository.ImportRepository, m *metrics.ImportMetrics, logger *slog.Logger, previewTTL time.Duration) *ImportService {
	return &ImportService{
		repo:     repo,
		workbook: parser.NewWorkbookParser(),
		tabular:  parser.NewTabularExtractor(),
		previews: newPreviewStore(previewTTL),
		metrics:  m,
		logger:   logger.With(slog.String("component", "import")),
	}
}

// ParseFile reads a whole file into a transaction batch. The file never
// streams; extraction completes before anything is returned.
func (s *ImportService) ParseFile(ctx context.Context, filename string, data []byte) (*ParseOutcome, error) {
	format := s.resolveFormat(ctx, filename, data)

	start := time.Now()
	var (
		res parser.Result
		err error
	)
	switch format {
	case sniffer.FormatCSV:
		res, err = s.tabular.ParseCSV(data)
	case sniffer.FormatXLSX:
		res, err = s.workbook.ParseWorkbook(data)
	case sniffer.FormatXLS:
		res, err = s.workbook.ParseLegacyWorkbook(data)
	default:
		return nil, fmt.Errorf("%s: %w", filename, ErrUnsupportedFileFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	s.metrics.FilesParsed.WithLabelValues(format.String()).Inc()
	s.metrics.ParseDuration.Observe(time.Since(start).Seconds())
	s.metrics.RowsExtracted.Add(float64(len(res.Transactions)))
	s.metrics.RowsSkipped.Add(float64(res.RowsSkipped))

	if len(res.Transactions) == 0 {
		return nil, ErrEmptyBatch
	}

	outcome := &ParseOutcome{
		Transactions:  res.Transactions,
		RowsSeen:      res.RowsSeen,
		RowsExtracted: len(res.Transactions),
		RowsSkipped:   res.RowsSkipped,
	}
	s.logger.InfoContext(ctx, "file parsed",
		slog.String("filename", filename),
		slog.String("format", format.String()),
		slog.Int("rows_seen", outcome.RowsSeen),
		slog.Int("rows_extracted", outcome.RowsExtracted),
		slog.Int("rows_skipped", outcome.RowsSkipped))
	return outcome, nil
}

// resolveFormat trusts the extension for the accept/reject decision, then
// lets the content sniffer correct mismatches between supported formats
// (an .xls that is really a renamed XLSX export is common).
func (s *ImportService) resolveFormat(ctx context.Context, filename string, data []byte) sniffer.Format {
	byExt := sniffer.FromExtension(filename)
	if byExt == sniffer.FormatUnknown {
		return sniffer.FormatUnknown
	}
	if detected := sniffer.Detect(data); detected != sniffer.FormatUnknown && detected != byExt {
		s.logger.WarnContext(ctx, "file content disagrees with extension",
			slog.String("filename", filename),
			slog.String("extension", byExt.String()),
			slog.String("detected", detected.String()))
		return detected
	}
	return byExt
}

// ImportBatch persists a batch sequentially, one awaited call per row, so
// two rows never race on the same registry. Row failures are logged and
// counted but never abort the loop.
func (s *ImportService) ImportBatch(ctx context.Context, userID uuid.UUID, txs []ledger.Transaction) (*ImportSummary, error) {
	if len(txs) == 0 {
		return nil, ErrEmptyBatch
	}

	hasExpenses, hasIncomes := false, false
	for _, tx := range txs {
		switch tx.Type {
		case ledger.TypeExpense:
			hasExpenses = true
		case ledger.TypeIncome:
			hasIncomes = true
		}
	}

	// The registries are fetched once and treated as a read-only snapshot
	// for the whole batch.
	var categories, sources []repository.RegistryEntry
	if hasExpenses {
		var err error
		categories, err = s.repo.ListActiveCategories(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("fetch categories: %w", err)
		}
		if len(categories) == 0 {
			return nil, &MissingRegistryError{Kind: RegistryCategories}
		}
	}
	if hasIncomes {
		var err error
		sources, err = s.repo.ListActiveSources(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("fetch sources: %w", err)
		}
		if len(sources) == 0 {
			return nil, &MissingRegistryError{Kind: RegistrySources}
		}
	}

	summary := &ImportSummary{}
	for i, tx := range txs {
		var err error
		switch tx.Type {
		case ledger.TypeExpense:
			entry := s.resolveEntry(ctx, tx.Category, categories, RegistryCategories)
			err = s.repo.CreateExpense(ctx, repository.ExpenseRecord{
				UserID:        userID,
				CategoryID:    entry.ID,
				Description:   tx.Description,
				Amount:        tx.Amount,
				Date:          tx.Date,
				JarType:       string(tx.JarType),
				PaymentMethod: string(tx.PaymentMethod),
				IsFixed:       tx.IsFixed,
			})
		case ledger.TypeIncome:
			entry := s.resolveEntry(ctx, tx.Source, sources, RegistrySources)
			err = s.repo.CreateIncome(ctx, repository.IncomeRecord{
				UserID:      userID,
				SourceID:    entry.ID,
				Description: tx.Description,
				Amount:      tx.Amount,
				Date:        tx.Date,
				SourceType:  tx.SourceType,
			})
		default:
			err = fmt.Errorf("unknown transaction type %q", tx.Type)
		}

		if err != nil {
			summary.Failed++
			s.metrics.RowsFailed.Inc()
			s.logger.ErrorContext(ctx, "row import failed",
				slog.Int("row", i),
				slog.String("description", tx.Description),
				slog.Any("error", err))
			continue
		}
		summary.Imported++
		s.metrics.RowsImported.Inc()
	}

	s.logger.InfoContext(ctx, "batch imported",
		slog.String("user_id", userID.String()),
		slog.Int("imported", summary.Imported),
		slog.Int("failed", summary.Failed))
	return summary, nil
}

// resolveEntry matches a label by case-insensitive exact name. A miss falls
// back to the registry's first entry instead of aborting the batch; the
// decision is logged together with the closest registered name.
func (s *ImportService) resolveEntry(ctx context.Context, label string, entries []repository.RegistryEntry, kind RegistryKind) repository.RegistryEntry {
	name := strings.TrimSpace(label)
	for _, entry := range entries {
		if strings.EqualFold(entry.Name, name) {
			return entry
		}
	}

	s.metrics.RegistryFallbacks.Inc()
	s.logger.WarnContext(ctx, "label missing from registry, using first entry",
		slog.String("registry", string(kind)),
		slog.String("label", name),
		slog.String("fallback", entries[0].Name),
		slog.String("closest", closestName(name, entries)))
	return entries[0]
}

func closestName(name string, entries []repository.RegistryEntry) string {
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(name, names)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
