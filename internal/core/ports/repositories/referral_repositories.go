package repositories

import (
	"context"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
)

// ReferralLinkReader resolves the referredBy pointer of an account.
type ReferralLinkReader interface {
	// FindReferrer returns the referrer id, or "" when the account has none.
	// Returns apperrors.ErrNotFound if the account does not exist.
	FindReferrer(ctx context.Context, accountID string) (string, error)
}

// ReferralEarningReader defines read operations for referral earnings
type ReferralEarningReader interface {
	// FindByEventAndLevel returns apperrors.ErrNotFound when no row exists for the pair.
	FindByEventAndLevel(ctx context.Context, eventID string, level int) (*domain.ReferralEarning, error)

	// ListByEvent returns every row of an event ordered by level.
	ListByEvent(ctx context.Context, eventID string) ([]domain.ReferralEarning, error)

	// FindReversal returns the row that reversed originalEventID at level, or
	// apperrors.ErrNotFound when that level has not been reversed.
	FindReversal(ctx context.Context, originalEventID string, level int) (*domain.ReferralEarning, error)
}

// ReferralEarningWriter appends referral earnings.
type ReferralEarningWriter interface {
	// SaveReferralEarning returns apperrors.ErrDuplicate when (eventID, level) or, for a
	// reversal row, (reversesEventID, level) is taken.
	SaveReferralEarning(ctx context.Context, earning domain.ReferralEarning) error
}

// ReferralEarningRepositoryFacade combines all referral earning repository interfaces
type ReferralEarningRepositoryFacade interface {
	ReferralEarningReader
	ReferralEarningWriter
}

// ReferralLinkWriter projects a new account's referral link into a secondary store.
type ReferralLinkWriter interface {
	LinkAccount(ctx context.Context, accountID, referrerID string) error
}
