package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/rewards_ledger/internal/models"
	"github.com/SscSPs/rewards_ledger/internal/utils/mapping"
	"github.com/SscSPs/rewards_ledger/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const referralEarningColumns = `earning_id, event_id, source_account_id, beneficiary_account_id, level, ledger, base_amount, commission_amount, transaction_id, reverses_event_id, created_at`

type PgxReferralEarningRepository struct {
	db uow.DBTX
}

func newPgxReferralEarningRepository(db uow.DBTX) *PgxReferralEarningRepository {
	return &PgxReferralEarningRepository{db: db}
}

var _ portsrepo.ReferralEarningRepositoryFacade = (*PgxReferralEarningRepository)(nil)

func scanReferralEarning(row pgx.Row) (models.ReferralEarning, error) {
	var m models.ReferralEarning
	err := row.Scan(
		&m.EarningID,
		&m.EventID,
		&m.SourceAccountID,
		&m.BeneficiaryAccountID,
		&m.Level,
		&m.Ledger,
		&m.BaseAmount,
		&m.CommissionAmount,
		&m.TransactionID,
		&m.ReversesEventID,
		&m.CreatedAt,
	)
	return m, err
}

// SaveReferralEarning inserts one row; the (event_id, level) and (reverses_event_id, level)
// constraints reject replays.
func (r *PgxReferralEarningRepository) SaveReferralEarning(ctx context.Context, earning domain.ReferralEarning) error {
	m := mapping.ToModelReferralEarning(earning)
	query := `
		INSERT INTO referral_earnings (` + referralEarningColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.db.Exec(ctx, query,
		m.EarningID,
		m.EventID,
		m.SourceAccountID,
		m.BeneficiaryAccountID,
		m.Level,
		m.Ledger,
		m.BaseAmount,
		m.CommissionAmount,
		m.TransactionID,
		m.ReversesEventID,
		m.CreatedAt,
	)
	return convertErr(err, "save referral earning %s level %d", m.EventID, m.Level)
}

// FindByEventAndLevel returns the row for the pair or apperrors.ErrNotFound.
func (r *PgxReferralEarningRepository) FindByEventAndLevel(ctx context.Context, eventID string, level int) (*domain.ReferralEarning, error) {
	query := `SELECT ` + referralEarningColumns + ` FROM referral_earnings WHERE event_id = $1 AND level = $2;`
	m, err := scanReferralEarning(r.db.QueryRow(ctx, query, eventID, level))
	if err != nil {
		return nil, convertErr(err, "find referral earning %s level %d", eventID, level)
	}
	d := mapping.ToDomainReferralEarning(m)
	return &d, nil
}

// FindReversal returns the row that reversed originalEventID at level or apperrors.ErrNotFound.
func (r *PgxReferralEarningRepository) FindReversal(ctx context.Context, originalEventID string, level int) (*domain.ReferralEarning, error) {
	query := `SELECT ` + referralEarningColumns + ` FROM referral_earnings WHERE reverses_event_id = $1 AND level = $2;`
	m, err := scanReferralEarning(r.db.QueryRow(ctx, query, originalEventID, level))
	if err != nil {
		return nil, convertErr(err, "find reversal of %s level %d", originalEventID, level)
	}
	d := mapping.ToDomainReferralEarning(m)
	return &d, nil
}

// ListByEvent returns every row of an event ordered by level.
func (r *PgxReferralEarningRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.ReferralEarning, error) {
	query := `SELECT ` + referralEarningColumns + ` FROM referral_earnings WHERE event_id = $1 ORDER BY level;`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, convertErr(err, "list referral earnings %s", eventID)
	}
	defer rows.Close()

	earnings := []domain.ReferralEarning{}
	for rows.Next() {
		m, err := scanReferralEarning(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan referral earning row: %w", err)
		}
		earnings = append(earnings, mapping.ToDomainReferralEarning(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating referral earning rows: %w", err)
	}
	return earnings, nil
}
