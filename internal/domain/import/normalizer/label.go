package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/cofrinho-app/cofrinho-api/internal/domain/ledger"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases, trims and strips diacritics so that "Educação" and
// "educacao" compare equal.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// JarTable maps folded labels to jar buckets. Tables are passed in rather
// than consulted as package state so tests can substitute fixtures.
type JarTable map[string]ledger.JarType

// PaymentTable maps folded labels to payment methods.
type PaymentTable map[string]ledger.PaymentMethod

// SourceTable maps folded labels to canonical income-source types.
type SourceTable map[string]string

// DefaultJarTable covers the Portuguese and English spellings seen in the
// dashboard workbooks.
func DefaultJarTable() JarTable {
	return JarTable{
		"necessidades":  ledger.JarNecessities,
		"necessidade":   ledger.JarNecessities,
		"essenciais":    ledger.JarNecessities,
		"necessities":   ledger.JarNecessities,
		"educacao":      ledger.JarEducation,
		"education":     ledger.JarEducation,
		"poupanca":      ledger.JarSavings,
		"reserva":       ledger.JarSavings,
		"savings":       ledger.JarSavings,
		"diversao":      ledger.JarPlay,
		"lazer":         ledger.JarPlay,
		"play":          ledger.JarPlay,
		"investimento":  ledger.JarInvestment,
		"investimentos": ledger.JarInvestment,
		"investment":    ledger.JarInvestment,
		"doacao":        ledger.JarGiving,
		"doacoes":       ledger.JarGiving,
		"giving":        ledger.JarGiving,
	}
}

// DefaultPaymentTable maps common Brazilian payment labels.
func DefaultPaymentTable() PaymentTable {
	return PaymentTable{
		"pix":               ledger.PaymentPix,
		"debito":            ledger.PaymentDebit,
		"cartao de debito":  ledger.PaymentDebit,
		"debit":             ledger.PaymentDebit,
		"credito":           ledger.PaymentCredit,
		"cartao de credito": ledger.PaymentCredit,
		"cartao":            ledger.PaymentCredit,
		"credit":            ledger.PaymentCredit,
		"dinheiro":          ledger.PaymentCash,
		"cash":              ledger.PaymentCash,
		"boleto":            ledger.PaymentBoleto,
		"transferencia":     ledger.PaymentTransfer,
		"transfer":          ledger.PaymentTransfer,
		"ted":               ledger.PaymentTransfer,
		"doc":               ledger.PaymentTransfer,
	}
}

// DefaultSourceTable maps income-source labels to canonical source types.
func DefaultSourceTable() SourceTable {
	return SourceTable{
		"salario":       "salary",
		"salary":        "salary",
		"freela":        "freelance",
		"freelance":     "freelance",
		"rendimentos":   "investment",
		"investimentos": "investment",
		"dividendos":    "investment",
		"presente":      "gift",
		"bonus":         "bonus",
		"outros":        "other",
		"other":         "other",
	}
}

// NormalizeJar resolves a free-text jar label. A miss means "no
// classification", not an error; classification is best-effort enrichment.
func NormalizeJar(raw string, table JarTable) (ledger.JarType, bool) {
	jar, ok := table[Fold(raw)]
	return jar, ok
}

// NormalizePaymentMethod resolves a free-text payment-method label.
func NormalizePaymentMethod(raw string, table PaymentTable) (ledger.PaymentMethod, bool) {
	method, ok := table[Fold(raw)]
	return method, ok
}

// NormalizeSourceType resolves a free-text income-source label.
func NormalizeSourceType(raw string, table SourceTable) (string, bool) {
	src, ok := table[Fold(raw)]
	return src, ok
}
