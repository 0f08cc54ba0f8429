package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/SscSPs/rewards_ledger/internal/apperrors"
	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CommissionDistributorTestSuite struct {
	suite.Suite
	f   *ledgerFixture
	ctx context.Context
}

func (suite *CommissionDistributorTestSuite) SetupTest() {
	suite.f = newLedgerFixture()
	suite.ctx = context.Background()
}

func (suite *CommissionDistributorTestSuite) distribute(source string, base int64, eventID string) *domain.Distribution {
	dist, err := suite.f.svc.Distributor.Distribute(suite.ctx, source, decimal.NewFromInt(base), eventID)
	suite.Require().NoError(err)
	suite.Require().NotNil(dist)
	return dist
}

func (suite *CommissionDistributorTestSuite) TestScenarioA_TwoLevelChain() {
	suite.f.seedChain("U1", "U2", "U3")
	suite.f.store.SeedSchedule(1, []domain.CommissionRule{percentage(1, 10), flatRate(2, 5)})

	dist := suite.distribute("U1", 100, "E1")

	suite.Len(dist.Earnings, 2)
	suite.Equal("U2", dist.Earnings[0].BeneficiaryAccountID)
	suite.Equal(1, dist.Earnings[0].Level)
	suite.True(decimal.NewFromInt(10).Equal(dist.Earnings[0].CommissionAmount))
	suite.Equal("U3", dist.Earnings[1].BeneficiaryAccountID)
	suite.Equal(2, dist.Earnings[1].Level)
	suite.True(decimal.NewFromInt(5).Equal(dist.Earnings[1].CommissionAmount))
	suite.Equal(int64(1), dist.ScheduleVersion)
	suite.Nil(dist.Failures)

	suite.Equal(int64(10), suite.f.points("U2"))
	suite.Equal(int64(5), suite.f.points("U3"))
	suite.Equal(int64(0), suite.f.points("U1"))
	suite.Len(suite.f.store.ReferralEarnings(), 2)

	// Each commission is a REFERRAL transaction carrying the per-level reference.
	txns := suite.f.store.Transactions()
	suite.Len(txns, 2)
	suite.Equal(domain.KindReferral, txns[0].Kind)
	suite.Equal("referral:E1:L1", txns[0].Reference)
	suite.Equal("referral:E1:L2", txns[1].Reference)

	acc, err := suite.f.svc.Account.GetAccountByID(suite.ctx, "U2")
	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(10).Equal(acc.TotalEarnings))
}

func (suite *CommissionDistributorTestSuite) TestScenarioB_NoReferrer() {
	suite.f.seedChain("U1")
	suite.f.store.SeedSchedule(1, []domain.CommissionRule{percentage(1, 10), flatRate(2, 5)})

	dist := suite.distribute("U1", 100, "E1")

	suite.Empty(dist.Earnings)
	suite.Empty(dist.Levels)
	suite.Empty(suite.f.store.ReferralEarnings())
	suite.Empty(suite.f.store.Transactions())
}

func (suite *CommissionDistributorTestSuite) TestScenarioC_ReplayAddsNothing() {
	suite.f.seedChain("U1", "U2", "U3")
	suite.f.store.SeedSchedule(1, []domain.CommissionRule{percentage(1, 10), flatRate(2, 5)})

	first := suite.distribute("U1", 100, "E1")
	second := suite.distribute("U1", 100, "E1")

	suite.Len(first.Earnings, 2)
	suite.Empty(second.Earnings)
	suite.Equal([]domain.LevelOutcome{domain.OutcomeAlreadyProcessed, domain.OutcomeAlreadyProcessed}, outcomes(second))
	suite.Len(suite.f.store.ReferralEarnings(), 2)
	suite.Len(suite.f.store.Transactions(), 2)
	suite.Equal(int64(10), suite.f.points("U2"))
	suite.Equal(int64(5), suite.f.points("U3"))
}

func (suite *CommissionDistributorTestSuite) TestScenarioD_InactiveLevelSkipped() {
	suite.f.seedChain("U1", "U2", "U3")
	suite.f.store.SeedSchedule(1, []domain.CommissionRule{inactive(percentage(1, 10)), flatRate(2, 5)})

	dist := suite.distribute("U1", 50, "E1")

	suite.Equal([]domain.LevelOutcome{domain.OutcomeInactive, domain.OutcomeCredited}, outcomes(dist))
	suite.Equal(int64(0), suite.f.points("U2"))
	suite.Equal(int64(5), suite.f.points("U3"))
	suite.Len(suite.f.store.ReferralEarnings(), 1)
}

func (suite *CommissionDistributorTestSuite) TestOnlyNearestTenAncestorsCredited() {
	ids := make([]string, 13)
	for i := range ids {
		ids[i] = fmt.Sprintf("A%02d", i)
	}
	suite.f.seedChain(ids...)
	rules := make([]domain.CommissionRule, 0, domain.MaxReferralDepth)
	for level := 1; level <= domain.MaxReferralDepth; level++ {
		rules = append(rules, flatRate(level, 1))
	}
	suite.f.store.SeedSchedule(1, rules)

	dist := suite.distribute(ids[0], 100, "E-deep")

	suite.Len(dist.Earnings, domain.MaxReferralDepth)
	for depth := 1; depth <= domain.MaxReferralDepth; depth++ {
		suite.Equal(int64(1), suite.f.points(ids[depth]), "ancestor at depth %d", depth)
	}
	suite.Equal(int64(0), suite.f.points(ids[11]))
	suite.Equal(int64(0), suite.f.points(ids[12]))
}

func (suite *CommissionDistributorTestSuite) TestFlatRateInvariantAndPercentageLinear() {
	suite.f.seedChain("U1", "U2", "U3")
	suite.f.store.SeedSchedule(1, []domain.CommissionRule{percentage(1, 10), flatRate(2, 7)})

	faker := gofakeit.New(42)
	var wantU2, wantU3 int64
	for i := 0; i < 20; i++ {
		// Multiples of 10 keep the 10% commission exact.
		base := int64(faker.IntRange(1, 100_000)) * 10
		dist := suite.distribute("U1", base, fmt.Sprintf("E-%d", i))

		suite.Require().Len(dist.Earnings, 2)
		suite.True(decimal.NewFromInt(base/10).Equal(dist.Earnings[0].CommissionAmount))
		suite.True(decimal.NewFromInt(7).Equal(dist.Earnings[1].CommissionAmount))
		wantU2 += base / 10
		wantU3 += 7
	}
	suite.Equal(wantU2, suite.f.points("U2"))
	suite.Equal(wantU3, suite.f.points("U3"))
}

func (suite *CommissionDistributorTestSuite) TestRoundsHalfDownAndSkipsZero() {
	suite.f.seedChain("U1", "U2")
	suite.f.store.SeedSchedule(1, []domain.CommissionRule{percentage(1, 10)})

	suite.Equal(decimal.NewFromInt(1).String(), suite.distribute("U1", 15, "half").Earnings[0].CommissionAmount.String())
	suite.Equal(decimal.NewFromInt(2).String(), suite.distribute("U1", 16, "above-half").Earnings[0].CommissionAmount.String())

	dist := suite.distribute("U1", 4, "tiny")
	suite.Empty(dist.Earnings)
	suite.Equal([]domain.LevelOutcome{domain.OutcomeZeroAmount}, outcomes(dist))
	suite.Equal(int64(3), suite.f.points("U2"))
}

func (suite *CommissionDistributorTestSuite) TestCashCommissionLedger() {
	suite.f.settings.CommissionLedger = domain.CashLedger
	suite.f.svc = newContainer(suite.f)
	suite.f.seedChain("U1", "U2")
	suite.f.store.SeedSchedule(1, []domain.CommissionRule{percentage(1, 3)})

	dist, err := suite.f.svc.Distributor.Distribute(suite.ctx, "U1", decimal.RequireFromString("10.50"), "cash-1")
	suite.Require().NoError(err)

	// 3% of 10.50 is 0.315, rounded half-down to cents.
	suite.Require().Len(dist.Earnings, 1)
	suite.Equal("0.31", dist.Earnings[0].CommissionAmount.StringFixed(2))
	acc, err := suite.f.svc.Account.GetAccountByID(suite.ctx, "U2")
	suite.Require().NoError(err)
	suite.Equal("0.31", acc.CashBalance.StringFixed(2))
	suite.Equal(int64(0), acc.PointsBalance)
}

func (suite *CommissionDistributorTestSuite) TestMalformedRuleSkippedWalkContinues() {
	suite.f.seedChain("U1", "U2", "U3")
	bad := domain.CommissionRule{Level: 1, Type: domain.CommissionPercentage, Value: decimal.NewFromInt(150), IsActive: true}
	suite.f.store.SeedSchedule(1, []domain.CommissionRule{bad, flatRate(2, 5)})

	dist := suite.distribute("U1", 100, "E1")

	suite.Equal([]domain.LevelOutcome{domain.OutcomeInvalidRule, domain.OutcomeCredited}, outcomes(dist))
	suite.NotEmpty(dist.Levels[0].Error)
	suite.Equal(int64(0), suite.f.points("U2"))
	suite.Equal(int64(5), suite.f.points("U3"))
}

func (suite *CommissionDistributorTestSuite) TestMissingRuleSkipsLevel() {
	suite.f.seedChain("U1", "U2", "U3")
	suite.f.store.SeedSchedule(1, []domain.CommissionRule{flatRate(2, 5)})

	dist := suite.distribute("U1", 100, "E1")

	suite.Equal([]domain.LevelOutcome{domain.OutcomeNoRule, domain.OutcomeCredited}, outcomes(dist))
}

func (suite *CommissionDistributorTestSuite) TestUnknownAncestorAbsorbed() {
	suite.f.seedAccount("U1", "ghost", 0)
	suite.f.store.SeedSchedule(1, []domain.CommissionRule{percentage(1, 10)})

	dist := suite.distribute("U1", 100, "E1")

	suite.Empty(dist.Earnings)
	suite.Equal([]domain.LevelOutcome{domain.OutcomeUnknownAccount}, outcomes(dist))
	suite.ErrorIs(dist.Failures, apperrors.ErrUnknownAccount)
	suite.Empty(suite.f.store.Transactions())
}

func (suite *CommissionDistributorTestSuite) TestCycleCreditsValidPrefix() {
	suite.f.seedAccount("U1", "U2", 0)
	suite.f.seedAccount("U2", "U3", 0)
	suite.f.seedAccount("U3", "U2", 0)
	suite.f.store.SeedSchedule(1, []domain.CommissionRule{flatRate(1, 3), flatRate(2, 2), flatRate(3, 1)})

	dist := suite.distribute("U1", 100, "E1")

	suite.True(dist.ChainCorrupted)
	suite.ErrorIs(dist.Failures, apperrors.ErrChainCorrupted)
	suite.Len(dist.Earnings, 2)
	suite.Equal(int64(3), suite.f.points("U2"))
	suite.Equal(int64(2), suite.f.points("U3"))
}

func (suite *CommissionDistributorTestSuite) TestUnknownSourceAccount() {
	_, err := suite.f.svc.Distributor.Distribute(suite.ctx, "nobody", decimal.NewFromInt(100), "E1")
	suite.ErrorIs(err, apperrors.ErrUnknownAccount)
}

func (suite *CommissionDistributorTestSuite) TestRejectsMissingEventAndNegativeBase() {
	suite.f.seedChain("U1", "U2")

	_, err := suite.f.svc.Distributor.Distribute(suite.ctx, "U1", decimal.NewFromInt(100), "")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.f.svc.Distributor.Distribute(suite.ctx, "U1", decimal.NewFromInt(-1), "E1")
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
}

func (suite *CommissionDistributorTestSuite) TestConcurrentReplaysCreditOnce() {
	suite.f.seedChain("U1", "U2", "U3")
	suite.f.store.SeedSchedule(1, []domain.CommissionRule{percentage(1, 10), flatRate(2, 5)})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.f.svc.Distributor.Distribute(suite.ctx, "U1", decimal.NewFromInt(100), "E1")
			suite.NoError(err)
		}()
	}
	wg.Wait()

	suite.Len(suite.f.store.ReferralEarnings(), 2)
	suite.Equal(int64(10), suite.f.points("U2"))
	suite.Equal(int64(5), suite.f.points("U3"))
}

func (suite *CommissionDistributorTestSuite) TestReverseTakesCommissionsBack() {
	suite.f.seedChain("U1", "U2", "U3")
	suite.f.store.SeedSchedule(1, []domain.CommissionRule{percentage(1, 10), flatRate(2, 5)})
	suite.distribute("U1", 100, "E1")

	dist, err := suite.f.svc.Distributor.Reverse(suite.ctx, "E1", "R1")
	suite.Require().NoError(err)

	suite.Equal([]domain.LevelOutcome{domain.OutcomeDebited, domain.OutcomeDebited}, outcomes(dist))
	suite.Equal(int64(0), suite.f.points("U2"))
	suite.Equal(int64(0), suite.f.points("U3"))

	rows, err := suite.f.svc.Distributor.EarningsForEvent(suite.ctx, "R1")
	suite.Require().NoError(err)
	suite.Len(rows, 2)
	suite.True(rows[0].CommissionAmount.IsNegative())
	suite.Equal("reversal:R1:L1", dist.Levels[0].Reference)

	again, err := suite.f.svc.Distributor.Reverse(suite.ctx, "E1", "R1")
	suite.Require().NoError(err)
	suite.Equal([]domain.LevelOutcome{domain.OutcomeAlreadyProcessed, domain.OutcomeAlreadyProcessed}, outcomes(again))
	suite.Equal(int64(0), suite.f.points("U2"))
}

func (suite *CommissionDistributorTestSuite) TestReverseAbsorbsInsufficientBalance() {
	suite.f.seedChain("U1", "U2", "U3")
	suite.f.store.SeedSchedule(1, []domain.CommissionRule{percentage(1, 10), flatRate(2, 5)})
	suite.distribute("U1", 100, "E1")

	_, err := suite.f.svc.Ledger.Debit(suite.ctx, pointsEntry("U2", 8, domain.KindWithdrawal, "withdrawal-1"))
	suite.Require().NoError(err)

	dist, err := suite.f.svc.Distributor.Reverse(suite.ctx, "E1", "R1")
	suite.Require().NoError(err)

	suite.Equal([]domain.LevelOutcome{domain.OutcomeInsufficientBalance, domain.OutcomeDebited}, outcomes(dist))
	suite.ErrorIs(dist.Failures, apperrors.ErrInsufficientBalance)
	suite.Equal(int64(2), suite.f.points("U2"))
	suite.Equal(int64(0), suite.f.points("U3"))
}

func (suite *CommissionDistributorTestSuite) TestReverseRejectsSameEventID() {
	_, err := suite.f.svc.Distributor.Reverse(suite.ctx, "E1", "E1")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestCommissionDistributorTestSuite(t *testing.T) {
	suite.Run(t, new(CommissionDistributorTestSuite))
}
