package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// LedgerKind selects which balance of an account an entry moves.
type LedgerKind string

const (
	PointsLedger LedgerKind = "POINTS"
	CashLedger   LedgerKind = "CASH"
)

// IsValid reports whether k names a known ledger.
func (k LedgerKind) IsValid() bool {
	return k == PointsLedger || k == CashLedger
}

// MaxReferralDepth is the deepest ancestor level that can receive a commission.
const MaxReferralDepth = 10
