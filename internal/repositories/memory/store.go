package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/rewards_ledger/pkg/uow"
)

type earningKey struct {
	eventID string
	level   int
}

type state struct {
	accounts        map[string]domain.Account
	transactions    []domain.Transaction
	earnings        map[earningKey]domain.ReferralEarning
	reversals       map[earningKey]earningKey // (reversed event, level) -> reversal row
	scheduleVersion int64
	schedule        []domain.CommissionRule
}

func newState() *state {
	return &state{
		accounts:  make(map[string]domain.Account),
		earnings:  make(map[earningKey]domain.ReferralEarning),
		reversals: make(map[earningKey]earningKey),
	}
}

// clone copies everything but the transaction log. The log is append-only, so the
// copy shares its backing array: entries appended by a unit of work sit past the
// published length and only become visible when the copy is published. Callers
// hold Store.mu, so no two units of work append concurrently.
func (s *state) clone() *state {
	return &state{
		accounts:        maps.Clone(s.accounts),
		transactions:    s.transactions,
		earnings:        maps.Clone(s.earnings),
		reversals:       maps.Clone(s.reversals),
		scheduleVersion: s.scheduleVersion,
		schedule:        slices.Clone(s.schedule),
	}
}

// Store is an in-process implementation of every storage port. A unit of work runs on
// a private copy of the state that replaces the shared one only when it succeeds, so
// units of work are serialized and all-or-nothing.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{st: newState()}
}

var _ uow.UOW = (*Store)(nil)

// Do runs fn against a copy of the state and publishes the copy if fn succeeds.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, tx uow.TX) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	tx := &transaction{run: func(f func(*state) error) error { return f(work) }}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.st = work
	return nil
}

// GetRepository returns a repository whose calls each apply directly to the shared state.
// It must not be used from inside Do.
func (s *Store) GetRepository(name uow.RepositoryName) (uow.Repository, error) {
	return repositoryFor(name, s.autocommit)
}

func (s *Store) autocommit(f func(*state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return f(s.st)
}

// Provider returns a RepositoryProvider backed by the store.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		Work:          s,
		ReferralLinks: &referralLinkRepository{run: s.autocommit},
	}
}

// SeedAccount stores acc as is, bypassing validation. Intended for fixtures.
func (s *Store) SeedAccount(acc domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.accounts[acc.AccountID] = acc
}

// SeedSchedule stores rules as is, bypassing validation. Intended for fixtures.
func (s *Store) SeedSchedule(version int64, rules []domain.CommissionRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.scheduleVersion = version
	s.st.schedule = slices.Clone(rules)
}

// Transactions returns a copy of the transaction log.
func (s *Store) Transactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.transactions)
}

// ReferralEarnings returns every stored referral earning ordered by event and level.
func (s *Store) ReferralEarnings() []domain.ReferralEarning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Collect(maps.Values(s.st.earnings))
	slices.SortFunc(out, func(a, b domain.ReferralEarning) int {
		if a.EventID != b.EventID {
			if a.EventID < b.EventID {
				return -1
			}
			return 1
		}
		return a.Level - b.Level
	})
	return out
}

type transaction struct {
	run func(func(*state) error) error
}

func (t *transaction) Get(name uow.RepositoryName) (uow.Repository, error) {
	return repositoryFor(name, t.run)
}

func repositoryFor(name uow.RepositoryName, run func(func(*state) error) error) (uow.Repository, error) {
	switch name {
	case portsrepo.AccountRepoName:
		return &accountRepository{run: run}, nil
	case portsrepo.TransactionRepoName:
		return &transactionRepository{run: run}, nil
	case portsrepo.ReferralEarningRepoName:
		return &referralEarningRepository{run: run}, nil
	case portsrepo.CommissionScheduleRepoName:
		return &commissionScheduleRepository{run: run}, nil
	case portsrepo.ReferralLinkRepoName:
		return &referralLinkRepository{run: run}, nil
	}
	return nil, uow.ErrRepositoryNotRegistered
}
