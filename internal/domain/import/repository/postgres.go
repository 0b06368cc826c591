package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DB is the subset of pgxpool.Pool the repository uses. Declared as an
// interface so tests can substitute pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements ImportRepository on top of pgx.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository wraps a pgx pool or compatible handle.
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const listCategoriesQuery = `
	SELECT id, name
	FROM categories
	WHERE user_id = $1 AND is_active = true
	ORDER BY created_at, id`

const listSourcesQuery = `
	SELECT id, name
	FROM income_sources
	WHERE user_id = $1 AND is_active = true
	ORDER BY created_at, id`

func (r *PostgresRepository) ListActiveCategories(ctx context.Context, userID uuid.UUID) ([]RegistryEntry, error) {
	entries, err := r.listRegistry(ctx, listCategoriesQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("list active categories: %w", err)
	}
	return entries, nil
}

func (r *PostgresRepository) ListActiveSources(ctx context.Context, userID uuid.UUID) ([]RegistryEntry, error) {
	entries, err := r.listRegistry(ctx, listSourcesQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("list active sources: %w", err)
	}
	return entries, nil
}

func (r *PostgresRepository) listRegistry(ctx context.Context, query string, userID uuid.UUID) ([]RegistryEntry, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []RegistryEntry
	for rows.Next() {
		var entry RegistryEntry
		if err := rows.Scan(&entry.ID, &entry.Name); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

const insertExpenseQuery = `
	INSERT INTO expenses
		(id, user_id, category_id, description, amount_cents, expense_date,
		 jar_type, payment_method, is_fixed)
	VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9)`

const insertIncomeQuery = `
	INSERT INTO incomes
		(id, user_id, source_id, description, amount_cents, income_date,
		 source_type)
	VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))`

func (r *PostgresRepository) CreateExpense(ctx context.Context, rec ExpenseRecord) error {
	_, err := r.db.Exec(ctx, insertExpenseQuery,
		uuid.New(), rec.UserID, rec.CategoryID, rec.Description,
		toCents(rec.Amount), rec.Date, rec.JarType, rec.PaymentMethod, rec.IsFixed)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CreateIncome(ctx context.Context, rec IncomeRecord) error {
	_, err := r.db.Exec(ctx, insertIncomeQuery,
		uuid.New(), rec.UserID, rec.SourceID, rec.Description,
		toCents(rec.Amount), rec.Date, rec.SourceType)
	if err != nil {
		return fmt.Errorf("create income: %w", err)
	}
	return nil
}

// toCents converts a two-decimal amount to integer cents for storage.
func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}
