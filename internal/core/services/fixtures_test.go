package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/rewards_ledger/internal/core/ports/services"
	"github.com/SscSPs/rewards_ledger/internal/core/services"
	"github.com/SscSPs/rewards_ledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// ledgerFixture wires every service over one in-memory store.
type ledgerFixture struct {
	store    *memory.Store
	settings services.LedgerSettings
	svc      *portssvc.ServiceContainer
}

func newLedgerFixture() *ledgerFixture {
	store := memory.NewStore()
	settings := services.DefaultLedgerSettings()
	return &ledgerFixture{
		store:    store,
		settings: settings,
		svc:      services.NewServiceContainer(settings, store.Provider(), services.ContainerOptions{}),
	}
}

// seedChain stores ids so that ids[i] was referred by ids[i+1].
func (f *ledgerFixture) seedChain(ids ...string) {
	for i, id := range ids {
		acc := domain.Account{
			AccountID:     id,
			CashBalance:   decimal.Zero,
			TotalEarnings: decimal.Zero,
			AuditFields:   domain.AuditFields{CreatedAt: time.Now(), LastUpdatedAt: time.Now()},
		}
		if i+1 < len(ids) {
			acc.ReferredBy = ids[i+1]
		}
		f.store.SeedAccount(acc)
	}
}

func (f *ledgerFixture) seedAccount(id, referredBy string, points int64) {
	f.store.SeedAccount(domain.Account{
		AccountID:     id,
		PointsBalance: points,
		CashBalance:   decimal.Zero,
		TotalEarnings: decimal.Zero,
		ReferredBy:    referredBy,
	})
}

func (f *ledgerFixture) points(id string) int64 {
	acc, err := f.svc.Account.GetAccountByID(context.Background(), id)
	if err != nil {
		panic(err)
	}
	return acc.PointsBalance
}

func (f *ledgerFixture) cash(id string) decimal.Decimal {
	acc, err := f.svc.Account.GetAccountByID(context.Background(), id)
	if err != nil {
		panic(err)
	}
	return acc.CashBalance
}

func percentage(level int, value int64) domain.CommissionRule {
	return domain.CommissionRule{Level: level, Type: domain.CommissionPercentage, Value: decimal.NewFromInt(value), IsActive: true}
}

func flatRate(level int, value int64) domain.CommissionRule {
	return domain.CommissionRule{Level: level, Type: domain.CommissionFlatRate, Value: decimal.NewFromInt(value), IsActive: true}
}

func inactive(rule domain.CommissionRule) domain.CommissionRule {
	rule.IsActive = false
	return rule
}

func pointsEntry(accountID string, amount int64, kind domain.TransactionKind, reference string) domain.LedgerEntry {
	return domain.LedgerEntry{
		AccountID: accountID,
		Ledger:    domain.PointsLedger,
		Amount:    decimal.NewFromInt(amount),
		Kind:      kind,
		Reference: reference,
	}
}

func outcomes(dist *domain.Distribution) []domain.LevelOutcome {
	out := make([]domain.LevelOutcome, len(dist.Levels))
	for i, l := range dist.Levels {
		out[i] = l.Outcome
	}
	return out
}

// MockDistributor is a mock type for the CommissionDistributorSvc interface
type MockDistributor struct {
	mock.Mock
}

func (m *MockDistributor) Distribute(ctx context.Context, sourceAccountID string, baseAmount decimal.Decimal, eventID string) (*domain.Distribution, error) {
	args := m.Called(ctx, sourceAccountID, baseAmount, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Distribution), args.Error(1)
}

func (m *MockDistributor) Reverse(ctx context.Context, originalEventID string, reversalEventID string) (*domain.Distribution, error) {
	args := m.Called(ctx, originalEventID, reversalEventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Distribution), args.Error(1)
}

func (m *MockDistributor) EarningsForEvent(ctx context.Context, eventID string) ([]domain.ReferralEarning, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReferralEarning), args.Error(1)
}

// MockReferralLinks is a mock type for the ReferralLinkReader and ReferralLinkWriter interfaces
type MockReferralLinks struct {
	mock.Mock
}

func (m *MockReferralLinks) FindReferrer(ctx context.Context, accountID string) (string, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Error(1)
}

func (m *MockReferralLinks) LinkAccount(ctx context.Context, accountID, referrerID string) error {
	args := m.Called(ctx, accountID, referrerID)
	return args.Error(0)
}

// MockSchedulePublisher is a mock type for the ScheduleChangePublisher interface
type MockSchedulePublisher struct {
	mock.Mock
}

func (m *MockSchedulePublisher) PublishScheduleVersion(ctx context.Context, version int64) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

var (
	_ portssvc.CommissionDistributorSvc = (*MockDistributor)(nil)
	_ portsrepo.ReferralLinkReader      = (*MockReferralLinks)(nil)
	_ portsrepo.ReferralLinkWriter      = (*MockReferralLinks)(nil)
	_ portsrepo.ScheduleChangePublisher = (*MockSchedulePublisher)(nil)
)

// newContainer rebuilds the services after the fixture settings changed.
func newContainer(f *ledgerFixture) *portssvc.ServiceContainer {
	return services.NewServiceContainer(f.settings, f.store.Provider(), services.ContainerOptions{})
}
