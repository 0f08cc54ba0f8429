package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
)

// TransactionCursor positions a page of an account's transactions, newest first.
type TransactionCursor struct {
	CreatedAt     time.Time
	TransactionID string
}

// TransactionReader defines read operations for the transaction log
type TransactionReader interface {
	// ExistsByReference reports whether any transaction carries the reference.
	ExistsByReference(ctx context.Context, reference string) (bool, error)

	// FindByReference returns the transactions carrying the reference, oldest first.
	FindByReference(ctx context.Context, reference string) ([]domain.Transaction, error)

	// ListByAccount returns up to limit transactions of an account, newest first,
	// strictly after cursor when one is given.
	ListByAccount(ctx context.Context, accountID string, limit int, cursor *TransactionCursor) ([]domain.Transaction, error)
}

// TransactionWriter appends to the transaction log. Transactions are never updated.
type TransactionWriter interface {
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// LockReference serializes units of work that use the same reference until the
	// enclosing unit of work ends. Only meaningful inside a unit of work.
	LockReference(ctx context.Context, reference string) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
