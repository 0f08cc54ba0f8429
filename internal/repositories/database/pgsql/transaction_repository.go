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

const transactionColumns = `transaction_id, account_id, kind, status, points, cash_amount, description, reference, metadata, created_at`

type PgxTransactionRepository struct {
	db uow.DBTX
}

func newPgxTransactionRepository(db uow.DBTX) *PgxTransactionRepository {
	return &PgxTransactionRepository{db: db}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()
	txns := []models.Transaction{}
	for rows.Next() {
		var m models.Transaction
		if err := rows.Scan(
			&m.TransactionID,
			&m.AccountID,
			&m.Kind,
			&m.Status,
			&m.Points,
			&m.CashAmount,
			&m.Description,
			&m.Reference,
			&m.Metadata,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return mapping.ToDomainTransactionSlice(txns), nil
}

// SaveTransaction appends one transaction row.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.db.Exec(ctx, query,
		m.TransactionID,
		m.AccountID,
		m.Kind,
		m.Status,
		m.Points,
		m.CashAmount,
		m.Description,
		m.Reference,
		m.Metadata,
		m.CreatedAt,
	)
	return convertErr(err, "save transaction %s", m.TransactionID)
}

// LockReference takes a transaction-scoped advisory lock keyed by the reference.
func (r *PgxTransactionRepository) LockReference(ctx context.Context, reference string) error {
	_, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0));`, reference)
	return convertErr(err, "lock reference %s", reference)
}

// ExistsByReference reports whether any transaction carries the reference.
func (r *PgxTransactionRepository) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE reference = $1);`, reference).Scan(&exists)
	if err != nil {
		return false, convertErr(err, "check reference %s", reference)
	}
	return exists, nil
}

// FindByReference returns the transactions carrying the reference, oldest first.
func (r *PgxTransactionRepository) FindByReference(ctx context.Context, reference string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference = $1 ORDER BY created_at, transaction_id;`
	rows, err := r.db.Query(ctx, query, reference)
	if err != nil {
		return nil, convertErr(err, "find transactions by reference %s", reference)
	}
	return scanTransactions(rows)
}

// ListByAccount returns a page of an account's transactions, newest first.
func (r *PgxTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit int, cursor *portsrepo.TransactionCursor) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error
	if cursor == nil {
		query := `
			SELECT ` + transactionColumns + `
			FROM transactions
			WHERE account_id = $1
			ORDER BY created_at DESC, transaction_id DESC
			LIMIT $2;
		`
		rows, err = r.db.Query(ctx, query, accountID, limit)
	} else {
		query := `
			SELECT ` + transactionColumns + `
			FROM transactions
			WHERE account_id = $1 AND (created_at, transaction_id) < ($2, $3)
			ORDER BY created_at DESC, transaction_id DESC
			LIMIT $4;
		`
		rows, err = r.db.Query(ctx, query, accountID, cursor.CreatedAt, cursor.TransactionID, limit)
	}
	if err != nil {
		return nil, convertErr(err, "list transactions for account %s", accountID)
	}
	return scanTransactions(rows)
}
