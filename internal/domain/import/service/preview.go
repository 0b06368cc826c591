package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cofrinho-app/cofrinho-api/internal/domain/ledger"
	"github.com/cofrinho-app/cofrinho-api/pkg/money"
)

const defaultPreviewTTL = 30 * time.Minute

// Preview is a parsed batch held server-side until the user explicitly
// commits it.
type Preview struct {
	ID           uuid.UUID            `json:"id"`
	Transactions []ledger.Transaction `json:"transactions"`
	RowsSeen     int                  `json:"rows_seen"`
	RowsSkipped  int                  `json:"rows_skipped"`
	IncomeTotal  string               `json:"income_total"`
	ExpenseTotal string               `json:"expense_total"`
	ExpiresAt    time.Time            `json:"expires_at"`
}

type previewSession struct {
	userID       uuid.UUID
	transactions []ledger.Transaction
	expiresAt    time.Time
}

type previewStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[uuid.UUID]previewSession
}

func newPreviewStore(ttl time.Duration) *previewStore {
	if ttl <= 0 {
		ttl = defaultPreviewTTL
	}
	return &previewStore{ttl: ttl, sessions: make(map[uuid.UUID]previewSession)}
}

func (ps *previewStore) put(userID uuid.UUID, txs []ledger.Transaction) (uuid.UUID, time.Time) {
	id := uuid.New()
	expires := time.Now().Add(ps.ttl)
	ps.mu.Lock()
	ps.sessions[id] = previewSession{userID: userID, transactions: txs, expiresAt: expires}
	ps.mu.Unlock()
	return id, expires
}

// take consumes a session. Committing is one-shot: a second take of the
// same id misses.
func (ps *previewStore) take(userID, id uuid.UUID) ([]ledger.Transaction, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	sess, ok := ps.sessions[id]
	if !ok || sess.userID != userID {
		return nil, false
	}
	delete(ps.sessions, id)
	if time.Now().After(sess.expiresAt) {
		return nil, false
	}
	return sess.transactions, true
}

func (ps *previewStore) purgeExpired() int {
	now := time.Now()
	ps.mu.Lock()
	defer ps.mu.Unlock()

	purged := 0
	for id, sess := range ps.sessions {
		if now.After(sess.expiresAt) {
			delete(ps.sessions, id)
			purged++
		}
	}
	return purged
}

func (ps *previewStore) size() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.sessions)
}

// PreviewFile parses a file and holds the batch for an explicit commit,
// returning the rows plus per-type totals for the confirmation screen.
func (s *ImportService) PreviewFile(ctx context.Context, userID uuid.UUID, filename string, data []byte) (*Preview, error) {
	outcome, err := s.ParseFile(ctx, filename, data)
	if err != nil {
		return nil, err
	}

	id, expires := s.previews.put(userID, outcome.Transactions)
	s.metrics.PreviewsActive.Set(float64(s.previews.size()))

	incomeTotal, expenseTotal := decimal.Zero, decimal.Zero
	for _, tx := range outcome.Transactions {
		switch tx.Type {
		case ledger.TypeIncome:
			incomeTotal = incomeTotal.Add(tx.Amount)
		case ledger.TypeExpense:
			expenseTotal = expenseTotal.Add(tx.Amount)
		}
	}

	return &Preview{
		ID:           id,
		Transactions: outcome.Transactions,
		RowsSeen:     outcome.RowsSeen,
		RowsSkipped:  outcome.RowsSkipped,
		IncomeTotal:  money.DisplayBRL(incomeTotal),
		ExpenseTotal: money.DisplayBRL(expenseTotal),
		ExpiresAt:    expires,
	}, nil
}

// CommitPreview imports a previously previewed batch. The session is
// consumed even if the import then fails its preconditions; the user
// re-uploads in that case rather than retrying a half-spent session.
func (s *ImportService) CommitPreview(ctx context.Context, userID, previewID uuid.UUID) (*ImportSummary, error) {
	txs, ok := s.previews.take(userID, previewID)
	s.metrics.PreviewsActive.Set(float64(s.previews.size()))
	if !ok {
		return nil, ErrPreviewNotFound
	}
	return s.ImportBatch(ctx, userID, txs)
}

// PurgeExpiredPreviews drops sessions past their TTL. Wired to the cron
// scheduler.
func (s *ImportService) PurgeExpiredPreviews() {
	purged := s.previews.purgeExpired()
	s.metrics.PreviewsActive.Set(float64(s.previews.size()))
	if purged > 0 {
		s.logger.Info("purged expired preview sessions", slog.Int("count", purged))
	}
}
