package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EarningEvent is one originating reward (task approval, quiz grade, check-in, ...).
// EventID must be globally unique per action; it keys both the originating credit
// and the referral fan-out.
type EarningEvent struct {
	EventID     string
	AccountID   string
	Ledger      LedgerKind
	Amount      decimal.Decimal
	Kind        TransactionKind
	Description string
	Metadata    map[string]any
	// LedgerReference overrides the reference derived from EventID.
	LedgerReference string
	// Distribute controls whether ancestors are paid commissions on this event.
	Distribute bool
}

// Reference is the ledger reference of the originating credit.
func (e EarningEvent) Reference() string {
	if e.LedgerReference != "" {
		return e.LedgerReference
	}
	return EventReference(e.EventID)
}

// EventReference derives the originating ledger reference from an event id.
func EventReference(eventID string) string {
	return "event:" + eventID
}

// CheckInEventID derives the event id of a daily check-in. One check-in per account per UTC day.
func CheckInEventID(accountID string, day time.Time) string {
	return "checkin:" + accountID + ":" + day.UTC().Format("2006-01-02")
}

// EarningOutcome reports what recording an earning event did.
type EarningOutcome struct {
	EventID string `json:"eventID"`
	// Transaction is nil when the originating credit was already recorded.
	Transaction     *Transaction  `json:"transaction,omitempty"`
	AlreadyRecorded bool          `json:"alreadyRecorded"`
	Distribution    *Distribution `json:"distribution,omitempty"`
	// DistributionError is set when the fan-out failed after the credit committed.
	DistributionError string `json:"distributionError,omitempty"`
	// ChainCorrupted reports a referral cycle; levels before the repeat were still paid.
	ChainCorrupted bool `json:"chainCorrupted,omitempty"`
	// FanOutSkipped explains why no commissions were attempted for a recorded event.
	FanOutSkipped string `json:"fanOutSkipped,omitempty"`
}
