package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// ReferralEarning is the stored form of a commission row. (event_id, level) is unique.
type ReferralEarning struct {
	EarningID            string          `db:"earning_id"`
	EventID              string          `db:"event_id"`
	SourceAccountID      string          `db:"source_account_id"`
	BeneficiaryAccountID string          `db:"beneficiary_account_id"`
	Level                int             `db:"level"`
	Ledger               string          `db:"ledger"`
	BaseAmount           decimal.Decimal `db:"base_amount"`
	CommissionAmount     decimal.Decimal `db:"commission_amount"`
	TransactionID        string          `db:"transaction_id"`
	ReversesEventID      sql.NullString  `db:"reverses_event_id"`
	CreatedAt            time.Time       `db:"created_at"`
}
