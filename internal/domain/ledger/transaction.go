// Package ledger defines the canonical transaction model shared by the
// import parsers and the persistence layer. Every extractor, regardless of
// input file shape, funnels into a Transaction.
package ledger

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Type distinguishes money coming in from money going out.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// JarType is one of the six canonical budget buckets used to classify
// expense allocation.
type JarType string

const (
	JarNecessities JarType = "necessities"
	JarEducation   JarType = "education"
	JarSavings     JarType = "savings"
	JarPlay        JarType = "play"
	JarInvestment  JarType = "investment"
	JarGiving      JarType = "giving"
)

// PaymentMethod is how an expense was paid.
type PaymentMethod string

const (
	PaymentPix      PaymentMethod = "pix"
	PaymentDebit    PaymentMethod = "debit"
	PaymentCredit   PaymentMethod = "credit"
	PaymentCash     PaymentMethod = "cash"
	PaymentBoleto   PaymentMethod = "boleto"
	PaymentTransfer PaymentMethod = "transfer"
)

// Transaction is a normalized, storage-ready financial record. Instances are
// transient: created by an extractor, optionally shown to the user as a
// preview, then consumed exactly once by the import service.
//
// Invariants: Amount is strictly positive and rounded to two decimal places;
// Description is non-empty; Date is a real calendar day. Category is only
// meaningful for expenses, Source only for incomes.
type Transaction struct {
	Type          Type            `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Date          time.Time       `json:"-"`
	Category      string          `json:"category,omitempty"`
	Source        string          `json:"source,omitempty"`
	SourceType    string          `json:"source_type,omitempty"`
	JarType       JarType         `json:"jar_type,omitempty"`
	PaymentMethod PaymentMethod   `json:"payment_method,omitempty"`
	IsFixed       bool            `json:"is_fixed,omitempty"`
}

// DateISO returns the transaction date as YYYY-MM-DD.
func (t Transaction) DateISO() string {
	return t.Date.Format("2006-01-02")
}

// MarshalJSON renders Date as a plain calendar day instead of an RFC 3339
// timestamp; imported rows carry no time-of-day information.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type alias Transaction
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias(t), t.DateISO()})
}
