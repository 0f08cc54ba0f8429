package graph

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/rewards_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
)

// Projection is a graph copy of the referral links that can be written to.
type Projection interface {
	portsrepo.ReferralLinkReader
	portsrepo.ReferralLinkWriter
}

// ProjectedReferralLinks serves referral lookups from the graph projection and falls
// back to the store of record when the projection misses an account or is unavailable.
// Accounts found only in the store of record are projected again.
type ProjectedReferralLinks struct {
	projection Projection
	source     portsrepo.ReferralLinkReader
	logger     *slog.Logger
}

func NewProjectedReferralLinks(projection Projection, source portsrepo.ReferralLinkReader, logger *slog.Logger) *ProjectedReferralLinks {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectedReferralLinks{projection: projection, source: source, logger: logger}
}

var _ portsrepo.ReferralLinkReader = (*ProjectedReferralLinks)(nil)

func (p *ProjectedReferralLinks) FindReferrer(ctx context.Context, accountID string) (string, error) {
	referrer, err := p.projection.FindReferrer(ctx, accountID)
	if err == nil {
		return referrer, nil
	}
	missing := errors.Is(err, apperrors.ErrNotFound)
	if !missing {
		p.logger.WarnContext(ctx, "Referral graph lookup failed, reading the accounts store",
			slog.String("account_id", accountID),
			slog.String("error", err.Error()))
	}

	referrer, err = p.source.FindReferrer(ctx, accountID)
	if err != nil {
		return "", err
	}
	if missing {
		projectionRepairs.Inc()
		if lerr := p.projection.LinkAccount(ctx, accountID, referrer); lerr != nil {
			p.logger.WarnContext(ctx, "Failed to re-project referral link",
				slog.String("account_id", accountID),
				slog.String("referred_by", referrer),
				slog.String("error", lerr.Error()))
		}
	}
	return referrer, nil
}
