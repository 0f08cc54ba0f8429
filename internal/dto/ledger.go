package dto

import (
	"time"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerEntryRequest is the body of a direct credit or debit.
type LedgerEntryRequest struct {
	AccountID   string                 `json:"accountID" binding:"required,max=64"`
	Ledger      domain.LedgerKind      `json:"ledger" binding:"required,oneof=POINTS CASH"`
	Amount      decimal.Decimal        `json:"amount"`
	Kind        domain.TransactionKind `json:"kind" binding:"required,oneof=EARNING REFERRAL BONUS PENALTY WITHDRAWAL REFUND ADJUSTMENT REVERSAL"`
	Reference   string                 `json:"reference" binding:"required,max=255"`
	Description string                 `json:"description" binding:"max=500"`
	Metadata    map[string]any         `json:"metadata"`
}

// ToLedgerEntry converts the request into a domain.LedgerEntry.
func (r LedgerEntryRequest) ToLedgerEntry() domain.LedgerEntry {
	return domain.LedgerEntry{
		AccountID:   r.AccountID,
		Ledger:      r.Ledger,
		Amount:      r.Amount,
		Kind:        r.Kind,
		Reference:   r.Reference,
		Description: r.Description,
		Metadata:    r.Metadata,
	}
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID string                   `json:"transactionID"`
	AccountID     string                   `json:"accountID"`
	Kind          domain.TransactionKind   `json:"kind"`
	Status        domain.TransactionStatus `json:"status"`
	Points        int64                    `json:"points"`
	CashAmount    decimal.Decimal          `json:"cashAmount"`
	Description   string                   `json:"description"`
	Reference     string                   `json:"reference"`
	Metadata      map[string]any           `json:"metadata,omitempty"`
	CreatedAt     time.Time                `json:"createdAt"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: txn.TransactionID,
		AccountID:     txn.AccountID,
		Kind:          txn.Kind,
		Status:        txn.Status,
		Points:        txn.Points,
		CashAmount:    txn.CashAmount,
		Description:   txn.Description,
		Reference:     txn.Reference,
		Metadata:      txn.Metadata,
		CreatedAt:     txn.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

// ListTransactionsParams defines query parameters for listing an account's transactions.
type ListTransactionsParams struct {
	Limit     int    `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken string `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ReferenceResponse reports whether a ledger reference has been used.
type ReferenceResponse struct {
	Reference string `json:"reference"`
	Exists    bool   `json:"exists"`
}

// LedgerConfigResponse describes how the ledger is configured.
type LedgerConfigResponse struct {
	CommissionLedger  domain.LedgerKind `json:"commissionLedger"`
	CashDecimalPlaces int32             `json:"cashDecimalPlaces"`
	PointsPerCashUnit decimal.Decimal   `json:"pointsPerCashUnit"`
	MaxReferralDepth  int               `json:"maxReferralDepth"`
}
