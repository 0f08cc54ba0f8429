package graph

import (
	"context"
	"fmt"

	"github.com/SscSPs/rewards_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
)

const (
	findReferrerCypher = `
MATCH (a:Account {id: $accountID})
OPTIONAL MATCH (a)-[:REFERRED_BY]->(r:Account)
RETURN a.id AS accountID, r.id AS referrerID`

	linkAccountCypher = `
MATCH (r:Account {id: $referrerID})
MERGE (a:Account {id: $accountID})
MERGE (a)-[:REFERRED_BY]->(r)
RETURN a.id AS accountID`

	upsertAccountCypher = `
MERGE (a:Account {id: $accountID})
RETURN a.id AS accountID`
)

// ReferralLinkRepository keeps referral links as (:Account)-[:REFERRED_BY]->(:Account).
type ReferralLinkRepository struct {
	client Client
}

func NewReferralLinkRepository(client Client) *ReferralLinkRepository {
	return &ReferralLinkRepository{client: client}
}

var _ portsrepo.ReferralLinkReader = (*ReferralLinkRepository)(nil)

// FindReferrer returns the referrer id, "" for a root account, or apperrors.ErrNotFound.
func (r *ReferralLinkRepository) FindReferrer(ctx context.Context, accountID string) (string, error) {
	res, err := r.client.ExecuteRead(ctx, findReferrerCypher, map[string]any{"accountID": accountID})
	if err != nil {
		return "", fmt.Errorf("find referrer of %s: %w", accountID, err)
	}
	if len(res.Records) == 0 {
		return "", fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	referrer, _ := res.Records[0]["referrerID"].(string)
	return referrer, nil
}

// LinkAccount projects an account and its referrer link into the graph. Nothing is
// written when the referrer is not projected yet; that returns apperrors.ErrNotFound.
func (r *ReferralLinkRepository) LinkAccount(ctx context.Context, accountID, referrerID string) error {
	if referrerID == "" {
		if _, err := r.client.ExecuteWrite(ctx, upsertAccountCypher, map[string]any{"accountID": accountID}); err != nil {
			return fmt.Errorf("link account %s: %w", accountID, err)
		}
		return nil
	}
	res, err := r.client.ExecuteWrite(ctx, linkAccountCypher, map[string]any{"accountID": accountID, "referrerID": referrerID})
	if err != nil {
		return fmt.Errorf("link account %s: %w", accountID, err)
	}
	if len(res.Records) == 0 {
		return fmt.Errorf("%w: referrer %s of %s is not in the graph", apperrors.ErrNotFound, referrerID, accountID)
	}
	return nil
}
