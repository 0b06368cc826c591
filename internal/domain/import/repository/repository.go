// Package repository persists imported transactions and exposes the
// per-user registries that free-text labels are resolved against.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegistryEntry is one active expense category or income source.
type RegistryEntry struct {
	ID   uuid.UUID
	Name string
}

// Registry lists a user's active categories and income sources. Listing
// order is the registry's insertion order and is relied on as the
// deterministic fallback target when a label has no match.
type Registry interface {
	ListActiveCategories(ctx context.Context, userID uuid.UUID) ([]RegistryEntry, error)
	ListActiveSources(ctx context.Context, userID uuid.UUID) ([]RegistryEntry, error)
}

// ExpenseRecord is a storage-ready expense row.
type ExpenseRecord struct {
	UserID        uuid.UUID
	CategoryID    uuid.UUID
	Description   string
	Amount        decimal.Decimal
	Date          time.Time
	JarType       string
	PaymentMethod string
	IsFixed       bool
}

// IncomeRecord is a storage-ready income row.
type IncomeRecord struct {
	UserID      uuid.UUID
	SourceID    uuid.UUID
	Description string
	Amount      decimal.Decimal
	Date        time.Time
	SourceType  string
}

// TransactionWriter persists one normalized row per call. A failed call
// never partially applies its record.
type TransactionWriter interface {
	CreateExpense(ctx context.Context, rec ExpenseRecord) error
	CreateIncome(ctx context.Context, rec IncomeRecord) error
}

// ImportRepository is the persistence surface consumed by the import
// service.
type ImportRepository interface {
	Registry
	TransactionWriter
}
