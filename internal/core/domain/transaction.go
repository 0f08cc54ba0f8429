package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies why a balance moved.
type TransactionKind string

const (
	KindEarning    TransactionKind = "EARNING"
	KindReferral   TransactionKind = "REFERRAL"
	KindBonus      TransactionKind = "BONUS"
	KindPenalty    TransactionKind = "PENALTY"
	KindWithdrawal TransactionKind = "WITHDRAWAL"
	KindRefund     TransactionKind = "REFUND"
	KindAdjustment TransactionKind = "ADJUSTMENT"
	KindReversal   TransactionKind = "REVERSAL"
)

// IsValid reports whether k is a known transaction kind.
func (k TransactionKind) IsValid() bool {
	switch k {
	case KindEarning, KindReferral, KindBonus, KindPenalty, KindWithdrawal, KindRefund, KindAdjustment, KindReversal:
		return true
	}
	return false
}

// CountsTowardEarnings reports whether a credit of this kind grows Account.TotalEarnings.
func (k TransactionKind) CountsTowardEarnings() bool {
	return k == KindEarning || k == KindReferral || k == KindBonus
}

// TransactionStatus is the lifecycle state of a Transaction.
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusPending   TransactionStatus = "PENDING"
	StatusFailed    TransactionStatus = "FAILED"
)

// Transaction is an immutable ledger entry. Points and CashAmount are signed:
// credits are positive and debits negative. Exactly one of them is non-zero.
type Transaction struct {
	TransactionID string            `json:"transactionID"`
	AccountID     string            `json:"accountID"`
	Kind          TransactionKind   `json:"kind"`
	Status        TransactionStatus `json:"status"`
	Points        int64             `json:"points"`
	CashAmount    decimal.Decimal   `json:"cashAmount"`
	Description   string            `json:"description"`
	Reference     string            `json:"reference"`
	Metadata      map[string]any    `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// Ledger reports which balance the transaction moved.
func (t Transaction) Ledger() LedgerKind {
	if t.Points != 0 {
		return PointsLedger
	}
	return CashLedger
}

// Amount returns the signed amount on the ledger the transaction moved.
func (t Transaction) Amount() decimal.Decimal {
	if t.Points != 0 {
		return decimal.NewFromInt(t.Points)
	}
	return t.CashAmount
}

// LedgerEntry is a request to move one balance of one account.
// Amount is always positive; the direction comes from the credit/debit call.
type LedgerEntry struct {
	AccountID   string
	Ledger      LedgerKind
	Amount      decimal.Decimal
	Kind        TransactionKind
	Reference   string
	Description string
	Metadata    map[string]any
}
