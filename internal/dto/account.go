package dto

import (
	"time"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to open a new account.
type CreateAccountRequest struct {
	AccountID  string `json:"accountID" binding:"omitempty,max=64"`  // Optional, generated when empty
	ReferredBy string `json:"referredBy" binding:"omitempty,max=64"` // Optional inviting account
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID     string          `json:"accountID"`
	PointsBalance int64           `json:"pointsBalance"`
	CashBalance   decimal.Decimal `json:"cashBalance"`
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
	ReferredBy    string          `json:"referredBy,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		PointsBalance: acc.PointsBalance,
		CashBalance:   acc.CashBalance,
		TotalEarnings: acc.TotalEarnings,
		ReferredBy:    acc.ReferredBy,
		CreatedAt:     acc.CreatedAt,
		LastUpdatedAt: acc.LastUpdatedAt,
	}
}

// AncestorsResponse lists the referral chain above an account.
type AncestorsResponse struct {
	AccountID      string            `json:"accountID"`
	Ancestors      []domain.Ancestor `json:"ancestors"`
	ChainCorrupted bool              `json:"chainCorrupted"`
}
