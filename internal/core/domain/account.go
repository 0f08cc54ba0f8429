package domain

import (
	"github.com/shopspring/decimal"
)

// Account is a user's balance-holding entity.
// ReferredBy is a weak back-reference to the inviting account; empty means no referrer.
type Account struct {
	AccountID     string          `json:"accountID"`
	PointsBalance int64           `json:"pointsBalance"` // never negative
	CashBalance   decimal.Decimal `json:"cashBalance"`   // never negative
	TotalEarnings decimal.Decimal `json:"totalEarnings"` // informational, never decreases
	ReferredBy    string          `json:"referredBy"`
	AuditFields
}

// HasReferrer reports whether the account was invited by another account.
func (a Account) HasReferrer() bool {
	return a.ReferredBy != ""
}

// Balance returns the balance held on the given ledger.
func (a Account) Balance(kind LedgerKind) decimal.Decimal {
	if kind == CashLedger {
		return a.CashBalance
	}
	return decimal.NewFromInt(a.PointsBalance)
}
