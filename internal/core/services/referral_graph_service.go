package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/rewards_ledger/internal/apperrors"
	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/rewards_ledger/internal/core/ports/services"
)

// referralGraphService walks referredBy pointers upward.
type referralGraphService struct {
	BaseService
	links portsrepo.ReferralLinkReader
}

// NewReferralGraphService creates a new referral graph service.
func NewReferralGraphService(links portsrepo.ReferralLinkReader) portssvc.ReferralGraphSvc {
	return &referralGraphService{links: links}
}

var _ portssvc.ReferralGraphSvc = (*referralGraphService)(nil)

// AncestorsOf returns the chain above accountID, nearest first. maxDepth is clamped to
// 1..domain.MaxReferralDepth. An ancestor that no longer resolves ends the chain.
func (s *referralGraphService) AncestorsOf(ctx context.Context, accountID string, maxDepth int) ([]domain.Ancestor, error) {
	maxDepth = max(1, min(maxDepth, domain.MaxReferralDepth))

	current, err := s.links.FindReferrer(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, accountID)
		}
		return nil, err
	}

	visited := map[string]struct{}{accountID: {}}
	ancestors := make([]domain.Ancestor, 0, maxDepth)
	for depth := 1; depth <= maxDepth && current != ""; depth++ {
		if _, seen := visited[current]; seen {
			s.LogWarn(ctx, "Referral chain revisits an account",
				slog.String("account_id", accountID),
				slog.String("repeated_account_id", current),
				slog.Int("depth", depth))
			return ancestors, fmt.Errorf("%w: %s reached again at depth %d above %s", apperrors.ErrChainCorrupted, current, depth, accountID)
		}
		visited[current] = struct{}{}
		ancestors = append(ancestors, domain.Ancestor{Depth: depth, AccountID: current})

		if depth == maxDepth {
			break
		}
		next, err := s.links.FindReferrer(ctx, current)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				s.LogWarn(ctx, "Referral chain points at a missing account",
					slog.String("account_id", accountID),
					slog.String("missing_account_id", current))
				return ancestors, nil
			}
			return ancestors, err
		}
		current = next
	}
	return ancestors, nil
}
