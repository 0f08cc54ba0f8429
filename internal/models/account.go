package models

import (
	"github.com/shopspring/decimal"
)

// Account is the stored form of an account row.
type Account struct {
	AccountID     string          `db:"account_id"`
	PointsBalance int64           `db:"points_balance"`
	CashBalance   decimal.Decimal `db:"cash_balance"`
	TotalEarnings decimal.Decimal `db:"total_earnings"`
	ReferredBy    string          `db:"referred_by"` // Nullable
	AuditFields
}
