package dto

import (
	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TaskApprovalRequest reports an approved task submission.
type TaskApprovalRequest struct {
	SubmissionID string            `json:"submissionID" binding:"required,max=128"`
	TaskID       string            `json:"taskID" binding:"max=128"`
	AccountID    string            `json:"accountID" binding:"required,max=64"`
	Ledger       domain.LedgerKind `json:"ledger" binding:"omitempty,oneof=POINTS CASH"`
	Reward       decimal.Decimal   `json:"reward"`
}

// QuizGradeRequest reports a graded quiz attempt that earned a reward.
type QuizGradeRequest struct {
	AttemptID string          `json:"attemptID" binding:"required,max=128"`
	QuizID    string          `json:"quizID" binding:"max=128"`
	AccountID string          `json:"accountID" binding:"required,max=64"`
	Score     int             `json:"score" binding:"min=0"`
	Reward    decimal.Decimal `json:"reward"`
}

// CheckInRequest reports a daily check-in. Day uses YYYY-MM-DD and defaults to today (UTC).
type CheckInRequest struct {
	AccountID string `json:"accountID" binding:"required,max=64"`
	Day       string `json:"day" binding:"omitempty,datetime=2006-01-02"`
}

// DisputeRefundRequest reports a dispute resolved in the account's favour.
type DisputeRefundRequest struct {
	DisputeID string            `json:"disputeID" binding:"required,max=128"`
	AccountID string            `json:"accountID" binding:"required,max=64"`
	Ledger    domain.LedgerKind `json:"ledger" binding:"omitempty,oneof=POINTS CASH"`
	Amount    decimal.Decimal   `json:"amount"`
	Reason    string            `json:"reason" binding:"max=500"`
}

// AdjustmentRequest is a manual balance correction. Positive amounts credit,
// negative amounts debit.
type AdjustmentRequest struct {
	AdjustmentID         string            `json:"adjustmentID" binding:"required,max=128"`
	AccountID            string            `json:"accountID" binding:"required,max=64"`
	Ledger               domain.LedgerKind `json:"ledger" binding:"omitempty,oneof=POINTS CASH"`
	Amount               decimal.Decimal   `json:"amount"`
	Reason               string            `json:"reason" binding:"required,max=500"`
	DistributeCommission bool              `json:"distributeCommission"`
}

// EarningReversalRequest cancels a previously recorded earning event.
type EarningReversalRequest struct {
	OriginalEventID string `json:"originalEventID" binding:"required,max=200"`
	ReversalEventID string `json:"reversalEventID" binding:"required,max=200"`
	Reason          string `json:"reason" binding:"max=500"`
}
