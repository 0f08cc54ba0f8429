package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Ancestor is one hop of a referral chain. Depth 1 is the direct referrer.
type Ancestor struct {
	Depth     int    `json:"depth"`
	AccountID string `json:"accountID"`
}

// ReferralEarning records one commission paid (or reversed) for one event at one level.
// (EventID, Level) is unique.
type ReferralEarning struct {
	EarningID            string          `json:"earningID"`
	EventID              string          `json:"eventID"`
	SourceAccountID      string          `json:"sourceAccountID"`
	BeneficiaryAccountID string          `json:"beneficiaryAccountID"`
	Level                int             `json:"level"`
	Ledger               LedgerKind      `json:"ledger"`
	BaseAmount           decimal.Decimal `json:"baseAmount"`
	CommissionAmount     decimal.Decimal `json:"commissionAmount"` // negative for reversals
	TransactionID        string          `json:"transactionID"`
	// ReversesEventID is set on reversal rows; (ReversesEventID, Level) is unique.
	ReversesEventID string    `json:"reversesEventID,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ReferralReference is the ledger reference for the commission of eventID at level.
func ReferralReference(eventID string, level int) string {
	return fmt.Sprintf("referral:%s:L%d", eventID, level)
}

// ReversalOfReference is the ledger reference of the debit that cancels the originating
// credit of eventID. It does not depend on the reversal event id, so an event can be
// reversed only once.
func ReversalOfReference(originalEventID string) string {
	return "reversal-of:" + originalEventID
}

// ReversalReference is the ledger reference for reversing the commission at level.
func ReversalReference(reversalEventID string, level int) string {
	return fmt.Sprintf("reversal:%s:L%d", reversalEventID, level)
}

// LevelOutcome describes what happened at one depth of a fan-out.
type LevelOutcome string

const (
	OutcomeCredited            LevelOutcome = "CREDITED"
	OutcomeDebited             LevelOutcome = "DEBITED"
	OutcomeAlreadyProcessed    LevelOutcome = "ALREADY_PROCESSED"
	OutcomeNoRule              LevelOutcome = "NO_RULE"
	OutcomeInactive            LevelOutcome = "INACTIVE"
	OutcomeInvalidRule         LevelOutcome = "INVALID_RULE"
	OutcomeZeroAmount          LevelOutcome = "ZERO_AMOUNT"
	OutcomeUnknownAccount      LevelOutcome = "UNKNOWN_ACCOUNT"
	OutcomeInsufficientBalance LevelOutcome = "INSUFFICIENT_BALANCE"
	OutcomeFailed              LevelOutcome = "FAILED"
)

// LevelResult is the audit record of one depth of a fan-out.
type LevelResult struct {
	Level                int             `json:"level"`
	BeneficiaryAccountID string          `json:"beneficiaryAccountID"`
	Outcome              LevelOutcome    `json:"outcome"`
	Amount               decimal.Decimal `json:"amount"`
	Reference            string          `json:"reference"`
	Error                string          `json:"error,omitempty"`
}

// Distribution is the result of one fan-out. Earnings holds only the rows created by
// this call; Failures aggregates the per-level errors that were absorbed.
type Distribution struct {
	EventID         string            `json:"eventID"`
	SourceAccountID string            `json:"sourceAccountID"`
	BaseAmount      decimal.Decimal   `json:"baseAmount"`
	ScheduleVersion int64             `json:"scheduleVersion"`
	ChainCorrupted  bool              `json:"chainCorrupted"`
	Earnings        []ReferralEarning `json:"earnings"`
	Levels          []LevelResult     `json:"levels"`
	Failures        error             `json:"-"`
}
