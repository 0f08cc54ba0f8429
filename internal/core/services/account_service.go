package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/rewards_ledger/internal/apperrors"
	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/rewards_ledger/internal/core/ports/services"
	"github.com/SscSPs/rewards_ledger/internal/dto"
	"github.com/SscSPs/rewards_ledger/pkg/uow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	work  uow.UOW
	links portsrepo.ReferralLinkWriter
	now   func() time.Time
}

// ServiceOption is a functional option for configuring the account service
type ServiceOption func(*accountService)

// WithReferralLinkWriter mirrors every new referral link into a secondary store.
func WithReferralLinkWriter(links portsrepo.ReferralLinkWriter) ServiceOption {
	return func(s *accountService) {
		s.links = links
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(work uow.UOW, options ...ServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		work: work,
		now:  func() time.Time { return time.Now().UTC() },
	}

	// Apply all options
	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	accountID := req.AccountID
	if accountID == "" {
		accountID = uuid.NewString()
	}
	if req.ReferredBy == accountID {
		return nil, fmt.Errorf("%w: an account cannot refer itself", apperrors.ErrValidation)
	}

	now := s.now()
	account := domain.Account{
		AccountID:     accountID,
		PointsBalance: 0,
		CashBalance:   decimal.Zero,
		TotalEarnings: decimal.Zero,
		ReferredBy:    req.ReferredBy,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	err := s.work.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		accounts, err := uow.GetAs[portsrepo.AccountRepositoryFacade](tx, portsrepo.AccountRepoName)
		if err != nil {
			return fmt.Errorf("account repository: %w", err)
		}
		// A new account can only point at an existing one, so no cycle can be created here.
		if account.HasReferrer() {
			exists, err := accounts.AccountExists(ctx, account.ReferredBy)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: referrer %s does not exist", apperrors.ErrValidation, account.ReferredBy)
			}
		}
		return accounts.SaveAccount(ctx, account)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to save account", slog.String("account_id", accountID))
		}
		return nil, err
	}

	if s.links != nil {
		if err := s.links.LinkAccount(ctx, account.AccountID, account.ReferredBy); err != nil {
			// Lookups that miss the projection read the accounts store and re-project the account.
			s.LogError(ctx, err, "Failed to project referral link",
				slog.String("account_id", account.AccountID),
				slog.String("referred_by", account.ReferredBy))
		}
	}

	s.LogInfo(ctx, "Account created",
		slog.String("account_id", account.AccountID),
		slog.String("referred_by", account.ReferredBy))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	accounts, err := uow.GetRepositoryAs[portsrepo.AccountReader](s.work, portsrepo.AccountRepoName)
	if err != nil {
		return nil, fmt.Errorf("account repository: %w", err)
	}
	account, err := accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		// Note: Don't log if error is ErrNotFound, as it's an expected outcome
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	s.LogDebug(ctx, "Account retrieved", slog.String("account_id", account.AccountID))
	return account, nil
}
