package services

import (
	"context"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	"github.com/SscSPs/rewards_ledger/internal/dto"
	"github.com/SscSPs/rewards_ledger/pkg/uow"
)

// LedgerReaderSvc defines read operations on the transaction log
type LedgerReaderSvc interface {
	// HasReference reports whether any transaction already carries reference.
	HasReference(ctx context.Context, reference string) (bool, error)

	// ListTransactions pages through an account's transactions, newest first.
	ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// LedgerWriterSvc moves balances. Each call is one atomic unit of work that changes
// one balance and appends exactly one transaction. References are not deduplicated.
type LedgerWriterSvc interface {
	Credit(ctx context.Context, entry domain.LedgerEntry) (*domain.Transaction, error)
	Debit(ctx context.Context, entry domain.LedgerEntry) (*domain.Transaction, error)
}

// LedgerTxSvc is the ledger for callers composing a larger unit of work.
type LedgerTxSvc interface {
	CreditInTx(ctx context.Context, tx uow.TX, entry domain.LedgerEntry) (*domain.Transaction, error)
	DebitInTx(ctx context.Context, tx uow.TX, entry domain.LedgerEntry) (*domain.Transaction, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
	LedgerTxSvc
}
