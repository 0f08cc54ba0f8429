package pgsql

import (
	"fmt"

	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/rewards_ledger/pkg/uow"
)

// NewUnitOfWork registers every pgx repository with a unit of work over pool.
func NewUnitOfWork(pool uow.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(pool)

	factories := map[uow.RepositoryName]uow.RepositoryFactory{
		portsrepo.AccountRepoName: func(db uow.DBTX) uow.Repository {
			return newPgxAccountRepository(db)
		},
		portsrepo.TransactionRepoName: func(db uow.DBTX) uow.Repository {
			return newPgxTransactionRepository(db)
		},
		portsrepo.ReferralEarningRepoName: func(db uow.DBTX) uow.Repository {
			return newPgxReferralEarningRepository(db)
		},
		portsrepo.CommissionScheduleRepoName: func(db uow.DBTX) uow.Repository {
			return newPgxCommissionScheduleRepository(db)
		},
		portsrepo.ReferralLinkRepoName: func(db uow.DBTX) uow.Repository {
			return newPgxReferralLinkRepository(db)
		},
	}
	for name, factory := range factories {
		if err := unitOfWork.Register(name, factory); err != nil {
			return nil, fmt.Errorf("register %s repository: %w", name, err)
		}
	}
	return unitOfWork, nil
}

// NewRepositoryProvider wires the pgx unit of work. Referral links are read from the
// accounts table.
func NewRepositoryProvider(pool uow.Pool) (portsrepo.RepositoryProvider, error) {
	unitOfWork, err := NewUnitOfWork(pool)
	if err != nil {
		return portsrepo.RepositoryProvider{}, err
	}
	return portsrepo.RepositoryProvider{
		Work:          unitOfWork,
		ReferralLinks: newPgxReferralLinkRepository(pool),
	}, nil
}
