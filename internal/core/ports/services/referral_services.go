package services

import (
	"context"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReferralGraphSvc walks referral chains.
type ReferralGraphSvc interface {
	// AncestorsOf returns up to maxDepth ancestors, nearest first. On a cycle it returns
	// the ancestors seen before the repeat together with apperrors.ErrChainCorrupted.
	AncestorsOf(ctx context.Context, accountID string, maxDepth int) ([]domain.Ancestor, error)
}

// CommissionDistributorSvc pays and reverses referral commissions.
type CommissionDistributorSvc interface {
	// Distribute pays the ancestors of sourceAccountID for eventID. Safe to repeat:
	// levels already paid for eventID are skipped.
	Distribute(ctx context.Context, sourceAccountID string, baseAmount decimal.Decimal, eventID string) (*domain.Distribution, error)

	// Reverse takes back the commissions paid for originalEventID as a new event.
	Reverse(ctx context.Context, originalEventID string, reversalEventID string) (*domain.Distribution, error)

	// EarningsForEvent lists the referral earnings recorded under eventID.
	EarningsForEvent(ctx context.Context, eventID string) ([]domain.ReferralEarning, error)
}
