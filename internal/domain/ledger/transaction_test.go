package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionMarshalJSON(t *testing.T) {
	tx := Transaction{
		Type:        TypeExpense,
		Amount:      decimal.NewFromFloat(150.5),
		Description: "Mercado",
		Date:        time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC),
		Category:    "Alimentação",
	}

	data, err := json.Marshal(tx)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "2025-03-02", got["date"])
	assert.Equal(t, "expense", got["type"])
	assert.Equal(t, "150.5", got["amount"])
	assert.NotContains(t, got, "source")
}

func TestDateISO(t *testing.T) {
	tx := Transaction{Date: time.Date(2025, time.December, 9, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "2025-12-09", tx.DateISO())
}
