package pgsql

import (
	"context"
	"database/sql"

	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/rewards_ledger/pkg/uow"
)

// PgxReferralLinkRepository reads referredBy straight from the accounts table.
type PgxReferralLinkRepository struct {
	db uow.DBTX
}

func newPgxReferralLinkRepository(db uow.DBTX) *PgxReferralLinkRepository {
	return &PgxReferralLinkRepository{db: db}
}

var _ portsrepo.ReferralLinkReader = (*PgxReferralLinkRepository)(nil)

func (r *PgxReferralLinkRepository) FindReferrer(ctx context.Context, accountID string) (string, error) {
	var referredBy sql.NullString
	err := r.db.QueryRow(ctx, `SELECT referred_by FROM accounts WHERE account_id = $1;`, accountID).Scan(&referredBy)
	if err != nil {
		return "", convertErr(err, "find referrer of %s", accountID)
	}
	return referredBy.String, nil
}
