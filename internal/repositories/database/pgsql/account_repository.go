package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SscSPs/rewards_ledger/internal/apperrors"
	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/rewards_ledger/internal/models"
	"github.com/SscSPs/rewards_ledger/internal/utils/mapping"
	"github.com/SscSPs/rewards_ledger/pkg/uow"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, points_balance, cash_balance, total_earnings, referred_by, created_at, last_updated_at`

type PgxAccountRepository struct {
	db uow.DBTX
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(db uow.DBTX) *PgxAccountRepository {
	return &PgxAccountRepository{db: db}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var m models.Account
	var referredBy sql.NullString
	if err := row.Scan(
		&m.AccountID,
		&m.PointsBalance,
		&m.CashBalance,
		&m.TotalEarnings,
		&referredBy,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	); err != nil {
		return nil, err
	}
	if referredBy.Valid {
		m.ReferredBy = referredBy.String
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// balanceColumn whitelists the column a ledger kind moves.
func balanceColumn(ledger domain.LedgerKind) (string, error) {
	switch ledger {
	case domain.PointsLedger:
		return "points_balance", nil
	case domain.CashLedger:
		return "cash_balance", nil
	}
	return "", fmt.Errorf("%w: unknown ledger %q", apperrors.ErrValidation, ledger)
}

// balanceArg encodes amount for the column type of the ledger.
func balanceArg(ledger domain.LedgerKind, amount decimal.Decimal) any {
	if ledger == domain.PointsLedger {
		return amount.IntPart()
	}
	return amount
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (account_id, points_balance, cash_balance, total_earnings, referred_by, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	var referredBy sql.NullString
	if m.ReferredBy != "" {
		referredBy = sql.NullString{String: m.ReferredBy, Valid: true}
	}
	_, err := r.db.Exec(ctx, query,
		m.AccountID,
		m.PointsBalance,
		m.CashBalance,
		m.TotalEarnings,
		referredBy,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	return convertErr(err, "save account %s", m.AccountID)
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		return nil, convertErr(err, "find account %s", accountID)
	}
	return acc, nil
}

// AccountExists reports whether the account row exists.
func (r *PgxAccountRepository) AccountExists(ctx context.Context, accountID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_id = $1);`, accountID).Scan(&exists)
	if err != nil {
		return false, convertErr(err, "check account %s", accountID)
	}
	return exists, nil
}

// IncrementBalance adds amount to one balance in a single UPDATE.
func (r *PgxAccountRepository) IncrementBalance(ctx context.Context, accountID string, ledger domain.LedgerKind, amount decimal.Decimal, countEarning bool) (*domain.Account, error) {
	column, err := balanceColumn(ledger)
	if err != nil {
		return nil, err
	}
	earning := decimal.Zero
	if countEarning {
		earning = amount
	}
	query := fmt.Sprintf(`
		UPDATE accounts
		SET %[1]s = %[1]s + $2, total_earnings = total_earnings + $3, last_updated_at = NOW()
		WHERE account_id = $1
		RETURNING %[2]s;
	`, column, accountColumns)

	acc, err := scanAccount(r.db.QueryRow(ctx, query, accountID, balanceArg(ledger, amount), earning))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, accountID)
		}
		return nil, convertErr(err, "credit account %s", accountID)
	}
	return acc, nil
}

// DecrementBalance subtracts amount in a single conditional UPDATE.
func (r *PgxAccountRepository) DecrementBalance(ctx context.Context, accountID string, ledger domain.LedgerKind, amount decimal.Decimal) (*domain.Account, error) {
	column, err := balanceColumn(ledger)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		UPDATE accounts
		SET %[1]s = %[1]s - $2, last_updated_at = NOW()
		WHERE account_id = $1 AND %[1]s >= $2
		RETURNING %[2]s;
	`, column, accountColumns)

	acc, err := scanAccount(r.db.QueryRow(ctx, query, accountID, balanceArg(ledger, amount)))
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, convertErr(err, "debit account %s", accountID)
	}

	// No row matched: either the account is missing or the balance is short.
	exists, existsErr := r.AccountExists(ctx, accountID)
	if existsErr != nil {
		return nil, existsErr
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, accountID)
	}
	return nil, fmt.Errorf("%w: account %s cannot cover %s %s", apperrors.ErrInsufficientBalance, accountID, amount, ledger)
}
