package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/SscSPs/rewards_ledger/internal/apperrors"
	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/rewards_ledger/internal/core/ports/services"
	"github.com/SscSPs/rewards_ledger/internal/dto"
	"github.com/SscSPs/rewards_ledger/internal/utils/pagination"
	"github.com/SscSPs/rewards_ledger/pkg/uow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var maxPoints = decimal.NewFromInt(math.MaxInt64)

// ledgerService moves balances and appends the matching transaction in one unit of work.
type ledgerService struct {
	BaseService
	work     uow.UOW
	settings LedgerSettings
	now      func() time.Time
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(work uow.UOW, settings LedgerSettings) portssvc.LedgerSvcFacade {
	return &ledgerService{
		work:     work,
		settings: settings,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) Credit(ctx context.Context, entry domain.LedgerEntry) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := s.work.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		var err error
		txn, err = s.CreditInTx(ctx, tx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *ledgerService) Debit(ctx context.Context, entry domain.LedgerEntry) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := s.work.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		var err error
		txn, err = s.DebitInTx(ctx, tx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *ledgerService) CreditInTx(ctx context.Context, tx uow.TX, entry domain.LedgerEntry) (*domain.Transaction, error) {
	return s.post(ctx, tx, entry, true)
}

func (s *ledgerService) DebitInTx(ctx context.Context, tx uow.TX, entry domain.LedgerEntry) (*domain.Transaction, error) {
	return s.post(ctx, tx, entry, false)
}

func (s *ledgerService) post(ctx context.Context, tx uow.TX, entry domain.LedgerEntry, credit bool) (*domain.Transaction, error) {
	direction := "debit"
	if credit {
		direction = "credit"
	}

	if err := s.validateEntry(entry); err != nil {
		ledgerPostings.WithLabelValues(direction, string(entry.Ledger), resultLabel(err)).Inc()
		return nil, err
	}

	accounts, err := uow.GetAs[portsrepo.AccountBalanceMutator](tx, portsrepo.AccountRepoName)
	if err != nil {
		return nil, fmt.Errorf("account repository: %w", err)
	}
	txns, err := uow.GetAs[portsrepo.TransactionWriter](tx, portsrepo.TransactionRepoName)
	if err != nil {
		return nil, fmt.Errorf("transaction repository: %w", err)
	}

	signed := entry.Amount
	if credit {
		_, err = accounts.IncrementBalance(ctx, entry.AccountID, entry.Ledger, entry.Amount, entry.Kind.CountsTowardEarnings())
	} else {
		signed = signed.Neg()
		_, err = accounts.DecrementBalance(ctx, entry.AccountID, entry.Ledger, entry.Amount)
	}
	if err != nil {
		ledgerPostings.WithLabelValues(direction, string(entry.Ledger), resultLabel(err)).Inc()
		if errors.Is(err, apperrors.ErrNotFound) {
			err = fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, entry.AccountID)
		}
		return nil, err
	}

	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		AccountID:     entry.AccountID,
		Kind:          entry.Kind,
		Status:        domain.StatusCompleted,
		Description:   entry.Description,
		Reference:     entry.Reference,
		Metadata:      entry.Metadata,
		CreatedAt:     s.now(),
	}
	if entry.Ledger == domain.PointsLedger {
		txn.Points = signed.IntPart()
		txn.CashAmount = decimal.Zero
	} else {
		txn.CashAmount = signed
	}

	if err := txns.SaveTransaction(ctx, txn); err != nil {
		ledgerPostings.WithLabelValues(direction, string(entry.Ledger), resultLabel(err)).Inc()
		return nil, err
	}

	ledgerPostings.WithLabelValues(direction, string(entry.Ledger), "ok").Inc()
	s.LogDebug(ctx, "Ledger entry posted",
		slog.String("direction", direction),
		slog.String("account_id", entry.AccountID),
		slog.String("ledger", string(entry.Ledger)),
		slog.String("amount", entry.Amount.String()),
		slog.String("reference", entry.Reference))
	return &txn, nil
}

// validateEntry enforces positive amounts in the ledger's unit.
func (s *ledgerService) validateEntry(entry domain.LedgerEntry) error {
	if entry.AccountID == "" {
		return fmt.Errorf("%w: account id is required", apperrors.ErrValidation)
	}
	if !entry.Ledger.IsValid() {
		return fmt.Errorf("%w: unknown ledger %q", apperrors.ErrValidation, entry.Ledger)
	}
	if !entry.Kind.IsValid() {
		return fmt.Errorf("%w: unknown transaction kind %q", apperrors.ErrValidation, entry.Kind)
	}
	if !entry.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrInvalidAmount, entry.Amount)
	}
	places := s.settings.Places(entry.Ledger)
	if !entry.Amount.Equal(entry.Amount.Truncate(places)) {
		return fmt.Errorf("%w: %s ledger takes at most %d decimal places, got %s", apperrors.ErrInvalidAmount, entry.Ledger, places, entry.Amount)
	}
	if entry.Ledger == domain.PointsLedger && entry.Amount.GreaterThan(maxPoints) {
		return fmt.Errorf("%w: points amount %s out of range", apperrors.ErrInvalidAmount, entry.Amount)
	}
	return nil
}

func (s *ledgerService) HasReference(ctx context.Context, reference string) (bool, error) {
	txns, err := uow.GetRepositoryAs[portsrepo.TransactionReader](s.work, portsrepo.TransactionRepoName)
	if err != nil {
		return false, fmt.Errorf("transaction repository: %w", err)
	}
	exists, err := txns.ExistsByReference(ctx, reference)
	if err != nil {
		s.LogError(ctx, err, "Failed to look up reference", slog.String("reference", reference))
		return false, err
	}
	return exists, nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	accounts, err := uow.GetRepositoryAs[portsrepo.AccountReader](s.work, portsrepo.AccountRepoName)
	if err != nil {
		return nil, fmt.Errorf("account repository: %w", err)
	}
	txns, err := uow.GetRepositoryAs[portsrepo.TransactionReader](s.work, portsrepo.TransactionRepoName)
	if err != nil {
		return nil, fmt.Errorf("transaction repository: %w", err)
	}

	exists, err := accounts.AccountExists(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, accountID)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	var cursor *portsrepo.TransactionCursor
	if params.NextToken != "" {
		createdAt, id, err := pagination.DecodeToken(params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		cursor = &portsrepo.TransactionCursor{CreatedAt: createdAt, TransactionID: id}
	}

	// One extra row tells whether another page exists.
	page, err := txns.ListByAccount(ctx, accountID, limit+1, cursor)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.String("account_id", accountID))
		return nil, err
	}

	resp := &dto.ListTransactionsResponse{}
	if len(page) > limit {
		page = page[:limit]
		last := page[len(page)-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		resp.NextToken = &token
	}
	resp.Transactions = dto.ToTransactionResponses(page)
	return resp, nil
}

// resultLabel maps an error onto a low-cardinality metric label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, apperrors.ErrUnknownAccount), errors.Is(err, apperrors.ErrNotFound):
		return "unknown_account"
	case errors.Is(err, apperrors.ErrInvalidAmount), errors.Is(err, apperrors.ErrValidation):
		return "invalid"
	case errors.Is(err, apperrors.ErrDuplicate):
		return "duplicate"
	}
	return "error"
}
