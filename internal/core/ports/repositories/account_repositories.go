package repositories

import (
	"context"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves an account. Returns apperrors.ErrNotFound if it does not exist.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// AccountExists reports whether an account with the id exists.
	AccountExists(ctx context.Context, accountID string) (bool, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. Returns apperrors.ErrDuplicate if the id is taken.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// AccountBalanceMutator moves balances with single conditional statements so concurrent
// callers never overwrite each other's change.
type AccountBalanceMutator interface {
	// IncrementBalance adds amount to the ledger balance and, when countEarning is set,
	// to total earnings. Returns apperrors.ErrUnknownAccount if the account does not exist.
	IncrementBalance(ctx context.Context, accountID string, ledger domain.LedgerKind, amount decimal.Decimal, countEarning bool) (*domain.Account, error)

	// DecrementBalance subtracts amount only if the balance covers it. Returns
	// apperrors.ErrUnknownAccount or apperrors.ErrInsufficientBalance.
	DecrementBalance(ctx context.Context, accountID string, ledger domain.LedgerKind, amount decimal.Decimal) (*domain.Account, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountBalanceMutator
}
