package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/SscSPs/rewards_ledger/internal/apperrors"
	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type accountRepository struct {
	run func(func(*state) error) error
}

var _ portsrepo.AccountRepositoryFacade = (*accountRepository)(nil)

func (r *accountRepository) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	var out *domain.Account
	err := r.run(func(s *state) error {
		acc, ok := s.accounts[accountID]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		out = &acc
		return nil
	})
	return out, err
}

func (r *accountRepository) AccountExists(_ context.Context, accountID string) (bool, error) {
	var exists bool
	err := r.run(func(s *state) error {
		_, exists = s.accounts[accountID]
		return nil
	})
	return exists, err
}

func (r *accountRepository) SaveAccount(_ context.Context, account domain.Account) error {
	return r.run(func(s *state) error {
		if _, ok := s.accounts[account.AccountID]; ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
		}
		if account.ReferredBy != "" {
			if _, ok := s.accounts[account.ReferredBy]; !ok {
				return fmt.Errorf("%w: referrer %s", apperrors.ErrNotFound, account.ReferredBy)
			}
		}
		s.accounts[account.AccountID] = account
		return nil
	})
}

func (r *accountRepository) IncrementBalance(_ context.Context, accountID string, ledger domain.LedgerKind, amount decimal.Decimal, countEarning bool) (*domain.Account, error) {
	var out *domain.Account
	err := r.run(func(s *state) error {
		acc, ok := s.accounts[accountID]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, accountID)
		}
		switch ledger {
		case domain.PointsLedger:
			acc.PointsBalance += amount.IntPart()
		case domain.CashLedger:
			acc.CashBalance = acc.CashBalance.Add(amount)
		default:
			return fmt.Errorf("%w: unknown ledger %q", apperrors.ErrValidation, ledger)
		}
		if countEarning {
			acc.TotalEarnings = acc.TotalEarnings.Add(amount)
		}
		acc.LastUpdatedAt = time.Now().UTC()
		s.accounts[accountID] = acc
		out = &acc
		return nil
	})
	return out, err
}

func (r *accountRepository) DecrementBalance(_ context.Context, accountID string, ledger domain.LedgerKind, amount decimal.Decimal) (*domain.Account, error) {
	var out *domain.Account
	err := r.run(func(s *state) error {
		acc, ok := s.accounts[accountID]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, accountID)
		}
		if acc.Balance(ledger).LessThan(amount) {
			return fmt.Errorf("%w: account %s cannot cover %s %s", apperrors.ErrInsufficientBalance, accountID, amount, ledger)
		}
		switch ledger {
		case domain.PointsLedger:
			acc.PointsBalance -= amount.IntPart()
		case domain.CashLedger:
			acc.CashBalance = acc.CashBalance.Sub(amount)
		default:
			return fmt.Errorf("%w: unknown ledger %q", apperrors.ErrValidation, ledger)
		}
		acc.LastUpdatedAt = time.Now().UTC()
		s.accounts[accountID] = acc
		out = &acc
		return nil
	})
	return out, err
}

type transactionRepository struct {
	run func(func(*state) error) error
}

var _ portsrepo.TransactionRepositoryFacade = (*transactionRepository)(nil)

func (r *transactionRepository) SaveTransaction(_ context.Context, txn domain.Transaction) error {
	return r.run(func(s *state) error {
		if _, ok := s.accounts[txn.AccountID]; !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, txn.AccountID)
		}
		s.transactions = append(s.transactions, txn)
		return nil
	})
}

// LockReference is a no-op: units of work on the store are already serialized.
func (r *transactionRepository) LockReference(context.Context, string) error {
	return nil
}

func (r *transactionRepository) ExistsByReference(_ context.Context, reference string) (bool, error) {
	var exists bool
	err := r.run(func(s *state) error {
		exists = slices.ContainsFunc(s.transactions, func(t domain.Transaction) bool {
			return t.Reference == reference
		})
		return nil
	})
	return exists, err
}

func (r *transactionRepository) FindByReference(_ context.Context, reference string) ([]domain.Transaction, error) {
	out := []domain.Transaction{}
	err := r.run(func(s *state) error {
		for _, t := range s.transactions {
			if t.Reference == reference {
				out = append(out, t)
			}
		}
		return nil
	})
	return out, err
}

func (r *transactionRepository) ListByAccount(_ context.Context, accountID string, limit int, cursor *portsrepo.TransactionCursor) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	var matched []domain.Transaction
	err := r.run(func(s *state) error {
		for _, t := range s.transactions {
			if t.AccountID == accountID {
				matched = append(matched, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// newest first, ties broken by id descending
	slices.SortFunc(matched, func(a, b domain.Transaction) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.TransactionID, a.TransactionID)
	})

	out := []domain.Transaction{}
	for _, t := range matched {
		if cursor != nil && !before(t, *cursor) {
			continue
		}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func before(t domain.Transaction, c portsrepo.TransactionCursor) bool {
	if t.CreatedAt.Equal(c.CreatedAt) {
		return t.TransactionID < c.TransactionID
	}
	return t.CreatedAt.Before(c.CreatedAt)
}

type referralEarningRepository struct {
	run func(func(*state) error) error
}

var _ portsrepo.ReferralEarningRepositoryFacade = (*referralEarningRepository)(nil)

func (r *referralEarningRepository) SaveReferralEarning(_ context.Context, earning domain.ReferralEarning) error {
	return r.run(func(s *state) error {
		key := earningKey{eventID: earning.EventID, level: earning.Level}
		if _, ok := s.earnings[key]; ok {
			return fmt.Errorf("%w: referral earning %s level %d", apperrors.ErrDuplicate, earning.EventID, earning.Level)
		}
		if earning.ReversesEventID != "" {
			reversed := earningKey{eventID: earning.ReversesEventID, level: earning.Level}
			if _, ok := s.reversals[reversed]; ok {
				return fmt.Errorf("%w: %s level %d already reversed", apperrors.ErrDuplicate, earning.ReversesEventID, earning.Level)
			}
			s.reversals[reversed] = key
		}
		s.earnings[key] = earning
		return nil
	})
}

func (r *referralEarningRepository) FindByEventAndLevel(_ context.Context, eventID string, level int) (*domain.ReferralEarning, error) {
	var out *domain.ReferralEarning
	err := r.run(func(s *state) error {
		e, ok := s.earnings[earningKey{eventID: eventID, level: level}]
		if !ok {
			return fmt.Errorf("%w: referral earning %s level %d", apperrors.ErrNotFound, eventID, level)
		}
		out = &e
		return nil
	})
	return out, err
}

func (r *referralEarningRepository) ListByEvent(_ context.Context, eventID string) ([]domain.ReferralEarning, error) {
	out := []domain.ReferralEarning{}
	err := r.run(func(s *state) error {
		for k, e := range s.earnings {
			if k.eventID == eventID {
				out = append(out, e)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.ReferralEarning) int { return a.Level - b.Level })
	return out, err
}

func (r *referralEarningRepository) FindReversal(_ context.Context, originalEventID string, level int) (*domain.ReferralEarning, error) {
	var out *domain.ReferralEarning
	err := r.run(func(s *state) error {
		key, ok := s.reversals[earningKey{eventID: originalEventID, level: level}]
		if !ok {
			return fmt.Errorf("%w: reversal of %s level %d", apperrors.ErrNotFound, originalEventID, level)
		}
		e := s.earnings[key]
		out = &e
		return nil
	})
	return out, err
}

type commissionScheduleRepository struct {
	run func(func(*state) error) error
}

var _ portsrepo.CommissionScheduleRepositoryFacade = (*commissionScheduleRepository)(nil)

func (r *commissionScheduleRepository) LoadSchedule(context.Context) (int64, []domain.CommissionRule, error) {
	var version int64
	var rules []domain.CommissionRule
	err := r.run(func(s *state) error {
		version = s.scheduleVersion
		rules = slices.Clone(s.schedule)
		return nil
	})
	return version, rules, err
}

func (r *commissionScheduleRepository) ReplaceSchedule(_ context.Context, entries []domain.CommissionRule, _ string) (int64, error) {
	var version int64
	err := r.run(func(s *state) error {
		s.scheduleVersion++
		s.schedule = slices.Clone(entries)
		version = s.scheduleVersion
		return nil
	})
	return version, err
}

type referralLinkRepository struct {
	run func(func(*state) error) error
}

var _ portsrepo.ReferralLinkReader = (*referralLinkRepository)(nil)

func (r *referralLinkRepository) FindReferrer(_ context.Context, accountID string) (string, error) {
	var referrer string
	err := r.run(func(s *state) error {
		acc, ok := s.accounts[accountID]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		referrer = acc.ReferredBy
		return nil
	})
	return referrer, err
}
