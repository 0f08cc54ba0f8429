package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the stored form of an append-only ledger entry.
type Transaction struct {
	TransactionID string          `db:"transaction_id"`
	AccountID     string          `db:"account_id"`
	Kind          string          `db:"kind"`
	Status        string          `db:"status"`
	Points        int64           `db:"points"`
	CashAmount    decimal.Decimal `db:"cash_amount"`
	Description   string          `db:"description"`
	Reference     string          `db:"reference"`
	Metadata      map[string]any  `db:"metadata"` // jsonb
	CreatedAt     time.Time       `db:"created_at"`
}
