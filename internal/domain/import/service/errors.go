package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFileFormat rejects anything that is not csv, xlsx or
	// xls. Raised at the file-selection boundary before any parse attempt.
	ErrUnsupportedFileFormat = errors.New("unsupported file format")

	// ErrEmptyBatch means zero transactions survived extraction. Distinct
	// from a format error so the caller can point the user at their column
	// names and layout.
	ErrEmptyBatch = errors.New("no valid transactions found")

	// ErrPreviewNotFound covers unknown, expired and already-committed
	// preview sessions alike.
	ErrPreviewNotFound = errors.New("preview session not found or expired")
)

// RegistryKind names which registry a precondition failed on.
type RegistryKind string

const (
	RegistryCategories RegistryKind = "expense categories"
	RegistrySources    RegistryKind = "income sources"
)

// MissingRegistryError reports a batch that has nothing to attach its rows
// to. Raised before any persistence call; the batch is not attempted.
type MissingRegistryError struct {
	Kind RegistryKind
}

func (e *MissingRegistryError) Error() string {
	return fmt.Sprintf("user has no active %s to attach imported rows to", e.Kind)
}
