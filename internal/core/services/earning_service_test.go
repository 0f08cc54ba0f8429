package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/rewards_ledger/internal/apperrors"
	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/rewards_ledger/internal/core/services"
	"github.com/SscSPs/rewards_ledger/internal/dto"
	"github.com/SscSPs/rewards_ledger/pkg/uow"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type EarningServiceTestSuite struct {
	suite.Suite
	f   *ledgerFixture
	ctx context.Context
}

func (suite *EarningServiceTestSuite) SetupTest() {
	suite.f = newLedgerFixture()
	suite.ctx = context.Background()
	suite.f.seedChain("U1", "U2", "U3")
	suite.f.store.SeedSchedule(1, []domain.CommissionRule{percentage(1, 10), flatRate(2, 5)})
}

func (suite *EarningServiceTestSuite) taskApproval(submissionID string, reward int64) dto.TaskApprovalRequest {
	return dto.TaskApprovalRequest{
		SubmissionID: submissionID,
		TaskID:       "task-42",
		AccountID:    "U1",
		Reward:       decimal.NewFromInt(reward),
	}
}

func (suite *EarningServiceTestSuite) TestApproveTaskSubmission_CreditsAndDistributes() {
	outcome, err := suite.f.svc.Earning.ApproveTaskSubmission(suite.ctx, suite.taskApproval("sub-1", 100))

	suite.Require().NoError(err)
	suite.False(outcome.AlreadyRecorded)
	suite.Require().NotNil(outcome.Transaction)
	suite.Equal("event:task:sub-1", outcome.Transaction.Reference)
	suite.Require().NotNil(outcome.Distribution)
	suite.Len(outcome.Distribution.Earnings, 2)
	suite.Empty(outcome.DistributionError)

	suite.Equal(int64(100), suite.f.points("U1"))
	suite.Equal(int64(10), suite.f.points("U2"))
	suite.Equal(int64(5), suite.f.points("U3"))
}

func (suite *EarningServiceTestSuite) TestApproveTaskSubmission_ReplayIsNoop() {
	_, err := suite.f.svc.Earning.ApproveTaskSubmission(suite.ctx, suite.taskApproval("sub-1", 100))
	suite.Require().NoError(err)

	outcome, err := suite.f.svc.Earning.ApproveTaskSubmission(suite.ctx, suite.taskApproval("sub-1", 100))

	suite.Require().NoError(err)
	suite.True(outcome.AlreadyRecorded)
	suite.Nil(outcome.Transaction)
	suite.Empty(outcome.Distribution.Earnings)
	suite.Equal(int64(100), suite.f.points("U1"))
	suite.Equal(int64(10), suite.f.points("U2"))
	suite.Len(suite.f.store.ReferralEarnings(), 2)
}

func (suite *EarningServiceTestSuite) TestRecord_StateChangeSharesUnitOfWork() {
	event := domain.EarningEvent{
		EventID:    "task:sub-9",
		AccountID:  "U1",
		Ledger:     domain.PointsLedger,
		Amount:     decimal.NewFromInt(20),
		Kind:       domain.KindEarning,
		Distribute: true,
	}
	failing := func(ctx context.Context, tx uow.TX) error {
		accounts, err := uow.GetAs[portsrepo.AccountWriter](tx, portsrepo.AccountRepoName)
		if err != nil {
			return err
		}
		if err := accounts.SaveAccount(ctx, domain.Account{AccountID: "side-effect"}); err != nil {
			return err
		}
		return errors.New("submission already rejected")
	}

	outcome, err := suite.f.svc.Earning.Record(suite.ctx, event, failing)

	suite.Nil(outcome)
	suite.EqualError(err, "submission already rejected")
	suite.Empty(suite.f.store.Transactions())
	suite.Empty(suite.f.store.ReferralEarnings())
	_, err = suite.f.svc.Account.GetAccountByID(suite.ctx, "side-effect")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	changed := false
	outcome, err = suite.f.svc.Earning.Record(suite.ctx, event, func(context.Context, uow.TX) error {
		changed = true
		return nil
	})
	suite.Require().NoError(err)
	suite.True(changed)
	suite.NotNil(outcome.Transaction)
	suite.Equal(int64(20), suite.f.points("U1"))
}

func (suite *EarningServiceTestSuite) TestDistributorFailureIsNotFatalAndReplayCompletes() {
	failing := new(MockDistributor)
	failing.On("Distribute", mock.Anything, "U1", mock.Anything, "task:sub-1").
		Return(nil, errors.New("graph store unavailable")).Once()
	svc := services.NewEarningService(suite.f.store, suite.f.svc.Ledger, failing, suite.f.settings)

	outcome, err := svc.ApproveTaskSubmission(suite.ctx, suite.taskApproval("sub-1", 100))

	suite.Require().NoError(err)
	suite.NotNil(outcome.Transaction)
	suite.Equal("graph store unavailable", outcome.DistributionError)
	suite.Equal(int64(100), suite.f.points("U1"))
	suite.Equal(int64(0), suite.f.points("U2"))
	failing.AssertExpectations(suite.T())

	// Reconciliation replays the same event through the real distributor.
	outcome, err = suite.f.svc.Earning.ApproveTaskSubmission(suite.ctx, suite.taskApproval("sub-1", 100))
	suite.Require().NoError(err)
	suite.True(outcome.AlreadyRecorded)
	suite.Len(outcome.Distribution.Earnings, 2)
	suite.Equal(int64(100), suite.f.points("U1"))
	suite.Equal(int64(10), suite.f.points("U2"))
	suite.Equal(int64(5), suite.f.points("U3"))
}

func (suite *EarningServiceTestSuite) TestOriginatingFailureSkipsFanOut() {
	distributor := new(MockDistributor)
	svc := services.NewEarningService(suite.f.store, suite.f.svc.Ledger, distributor, suite.f.settings)

	req := suite.taskApproval("sub-1", 100)
	req.AccountID = "ghost"
	_, err := svc.ApproveTaskSubmission(suite.ctx, req)

	suite.ErrorIs(err, apperrors.ErrUnknownAccount)
	distributor.AssertNotCalled(suite.T(), "Distribute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EarningServiceTestSuite) TestGradeQuiz() {
	outcome, err := suite.f.svc.Earning.GradeQuiz(suite.ctx, dto.QuizGradeRequest{
		AttemptID: "attempt-1",
		QuizID:    "quiz-1",
		AccountID: "U1",
		Score:     9,
		Reward:    decimal.NewFromInt(30),
	})

	suite.Require().NoError(err)
	suite.Equal("event:quiz:attempt-1", outcome.Transaction.Reference)
	suite.Equal(int64(3), suite.f.points("U2"))
}

func (suite *EarningServiceTestSuite) TestDailyCheckIn_OncePerDay() {
	req := dto.CheckInRequest{AccountID: "U1", Day: "2026-03-01"}

	first, err := suite.f.svc.Earning.DailyCheckIn(suite.ctx, req)
	suite.Require().NoError(err)
	suite.Equal("checkin:U1:2026-03-01", first.EventID)
	suite.Equal(domain.KindBonus, first.Transaction.Kind)

	second, err := suite.f.svc.Earning.DailyCheckIn(suite.ctx, req)
	suite.Require().NoError(err)
	suite.True(second.AlreadyRecorded)
	suite.Equal(suite.f.settings.CheckInRewardPoints, suite.f.points("U1"))

	_, err = suite.f.svc.Earning.DailyCheckIn(suite.ctx, dto.CheckInRequest{AccountID: "U1", Day: "2026-03-02"})
	suite.Require().NoError(err)
	suite.Equal(2*suite.f.settings.CheckInRewardPoints, suite.f.points("U1"))
}

func (suite *EarningServiceTestSuite) TestRefundDispute() {
	outcome, err := suite.f.svc.Earning.RefundDispute(suite.ctx, dto.DisputeRefundRequest{
		DisputeID: "d-1",
		AccountID: "U1",
		Amount:    decimal.NewFromInt(50),
		Reason:    "order never delivered",
	})

	suite.Require().NoError(err)
	suite.Equal(domain.KindRefund, outcome.Transaction.Kind)
	suite.Equal(int64(50), suite.f.points("U1"))
}

func (suite *EarningServiceTestSuite) TestAdminAdjust() {
	credit, err := suite.f.svc.Earning.AdminAdjust(suite.ctx, dto.AdjustmentRequest{
		AdjustmentID:         "adj-1",
		AccountID:            "U1",
		Amount:               decimal.NewFromInt(100),
		Reason:               "missed reward",
		DistributeCommission: true,
	}, "admin-1")
	suite.Require().NoError(err)
	suite.Equal(domain.KindAdjustment, credit.Transaction.Kind)
	suite.Len(credit.Distribution.Earnings, 2)

	debit, err := suite.f.svc.Earning.AdminAdjust(suite.ctx, dto.AdjustmentRequest{
		AdjustmentID: "adj-2",
		AccountID:    "U1",
		Amount:       decimal.NewFromInt(-40),
		Reason:       "duplicate payout",
	}, "admin-1")
	suite.Require().NoError(err)
	suite.Equal(domain.KindPenalty, debit.Transaction.Kind)
	suite.Equal(int64(-40), debit.Transaction.Points)
	suite.Nil(debit.Distribution)
	suite.Equal(int64(60), suite.f.points("U1"))

	_, err = suite.f.svc.Earning.AdminAdjust(suite.ctx, dto.AdjustmentRequest{
		AdjustmentID: "adj-3",
		AccountID:    "U1",
		Amount:       decimal.NewFromInt(-1000),
		Reason:       "too much",
	}, "admin-1")
	suite.ErrorIs(err, apperrors.ErrInsufficientBalance)

	_, err = suite.f.svc.Earning.AdminAdjust(suite.ctx, dto.AdjustmentRequest{
		AdjustmentID: "adj-4",
		AccountID:    "U1",
		Amount:       decimal.Zero,
		Reason:       "nothing",
	}, "admin-1")
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
}

func (suite *EarningServiceTestSuite) TestReverseEarning() {
	_, err := suite.f.svc.Earning.ApproveTaskSubmission(suite.ctx, suite.taskApproval("sub-1", 100))
	suite.Require().NoError(err)

	req := dto.EarningReversalRequest{OriginalEventID: "task:sub-1", ReversalEventID: "reversal:sub-1", Reason: "fraud"}
	outcome, err := suite.f.svc.Earning.ReverseEarning(suite.ctx, req, "admin-1")

	suite.Require().NoError(err)
	suite.Equal(int64(-100), outcome.Transaction.Points)
	suite.Len(outcome.Distribution.Earnings, 2)
	suite.Equal(int64(0), suite.f.points("U1"))
	suite.Equal(int64(0), suite.f.points("U2"))
	suite.Equal(int64(0), suite.f.points("U3"))

	again, err := suite.f.svc.Earning.ReverseEarning(suite.ctx, req, "admin-1")
	suite.Require().NoError(err)
	suite.True(again.AlreadyRecorded)
	suite.Empty(again.Distribution.Earnings)

	_, err = suite.f.svc.Earning.ReverseEarning(suite.ctx, dto.EarningReversalRequest{OriginalEventID: "task:none", ReversalEventID: "r-2"}, "admin-1")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *EarningServiceTestSuite) TestReplayMustMatchRecordedEarning() {
	suite.f.seedAccount("A", "", 0)
	suite.f.seedAccount("P1", "", 0)
	suite.f.seedAccount("B", "P1", 0)

	first := suite.taskApproval("s", 100)
	first.AccountID = "A"
	_, err := suite.f.svc.Earning.ApproveTaskSubmission(suite.ctx, first)
	suite.Require().NoError(err)

	otherAccount := first
	otherAccount.AccountID = "B"
	outcome, err := suite.f.svc.Earning.ApproveTaskSubmission(suite.ctx, otherAccount)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Nil(outcome)

	otherAmount := first
	otherAmount.Reward = decimal.NewFromInt(500)
	_, err = suite.f.svc.Earning.ApproveTaskSubmission(suite.ctx, otherAmount)
	suite.ErrorIs(err, apperrors.ErrDuplicate)

	suite.Equal(int64(100), suite.f.points("A"))
	suite.Equal(int64(0), suite.f.points("B"))
	suite.Equal(int64(0), suite.f.points("P1"))
	suite.Empty(suite.f.store.ReferralEarnings())
	suite.Len(suite.f.store.Transactions(), 1)
}

func (suite *EarningServiceTestSuite) TestReplayFansOutFromRecordedTransaction() {
	distributor := new(MockDistributor)
	distributor.On("Distribute", mock.Anything, "U1", mock.MatchedBy(func(base decimal.Decimal) bool {
		return base.Equal(decimal.NewFromInt(100))
	}), "task:sub-1").Return(&domain.Distribution{EventID: "task:sub-1"}, nil).Twice()
	svc := services.NewEarningService(suite.f.store, suite.f.svc.Ledger, distributor, suite.f.settings)

	_, err := svc.ApproveTaskSubmission(suite.ctx, suite.taskApproval("sub-1", 100))
	suite.Require().NoError(err)
	outcome, err := svc.ApproveTaskSubmission(suite.ctx, suite.taskApproval("sub-1", 100))
	suite.Require().NoError(err)
	suite.True(outcome.AlreadyRecorded)
	distributor.AssertExpectations(suite.T())
}

func (suite *EarningServiceTestSuite) TestReverseEarning_OncePerOriginalEvent() {
	_, err := suite.f.svc.Earning.ApproveTaskSubmission(suite.ctx, suite.taskApproval("sub-1", 100))
	suite.Require().NoError(err)
	for _, id := range []string{"U1", "U2", "U3"} {
		_, err := suite.f.svc.Ledger.Credit(suite.ctx, pointsEntry(id, 500, domain.KindBonus, "top-up:"+id))
		suite.Require().NoError(err)
	}

	first := dto.EarningReversalRequest{OriginalEventID: "task:sub-1", ReversalEventID: "r1", Reason: "fraud"}
	outcome, err := suite.f.svc.Earning.ReverseEarning(suite.ctx, first, "admin-1")
	suite.Require().NoError(err)
	suite.Equal(domain.ReversalOfReference("task:sub-1"), outcome.Transaction.Reference)
	suite.Len(outcome.Distribution.Earnings, 2)

	second := dto.EarningReversalRequest{OriginalEventID: "task:sub-1", ReversalEventID: "r2", Reason: "fraud again"}
	outcome, err = suite.f.svc.Earning.ReverseEarning(suite.ctx, second, "admin-1")
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Nil(outcome)

	// Commission reversal requested directly under yet another id.
	dist, err := suite.f.svc.Distributor.Reverse(suite.ctx, "task:sub-1", "r3")
	suite.Require().NoError(err)
	suite.Empty(dist.Earnings)
	suite.Equal([]domain.LevelOutcome{domain.OutcomeAlreadyProcessed, domain.OutcomeAlreadyProcessed}, outcomes(dist))

	suite.Equal(int64(500), suite.f.points("U1"))
	suite.Equal(int64(500), suite.f.points("U2"))
	suite.Equal(int64(500), suite.f.points("U3"))
}

func (suite *EarningServiceTestSuite) TestCashEarningIsNotFannedOutInPoints() {
	req := dto.TaskApprovalRequest{
		SubmissionID: "cash-1",
		AccountID:    "U1",
		Ledger:       domain.CashLedger,
		Reward:       decimal.RequireFromString("100.00"),
	}

	outcome, err := suite.f.svc.Earning.ApproveTaskSubmission(suite.ctx, req)

	suite.Require().NoError(err)
	suite.NotEmpty(outcome.FanOutSkipped)
	suite.Nil(outcome.Distribution)
	suite.True(suite.f.cash("U1").Equal(decimal.NewFromInt(100)))
	suite.Equal(int64(0), suite.f.points("U2"))
	suite.True(suite.f.cash("U2").IsZero())
	suite.Empty(suite.f.store.ReferralEarnings())
}

func (suite *EarningServiceTestSuite) TestCashCommissionLedgerFansOutCashOnly() {
	suite.f.settings.CommissionLedger = domain.CashLedger
	svc := newContainer(suite.f)

	outcome, err := svc.Earning.ApproveTaskSubmission(suite.ctx, dto.TaskApprovalRequest{
		SubmissionID: "cash-2",
		AccountID:    "U1",
		Ledger:       domain.CashLedger,
		Reward:       decimal.RequireFromString("100.00"),
	})
	suite.Require().NoError(err)
	suite.Empty(outcome.FanOutSkipped)
	suite.Require().NotNil(outcome.Distribution)
	suite.True(suite.f.cash("U2").Equal(decimal.NewFromInt(10)))
	suite.True(suite.f.cash("U3").Equal(decimal.NewFromInt(5)))

	outcome, err = svc.Earning.ApproveTaskSubmission(suite.ctx, suite.taskApproval("points-1", 100))
	suite.Require().NoError(err)
	suite.NotEmpty(outcome.FanOutSkipped)
	suite.Equal(int64(0), suite.f.points("U2"))
}

func (suite *EarningServiceTestSuite) TestChainCorruptionReportedSeparately() {
	suite.f.seedAccount("X", "Y", 0)
	suite.f.seedAccount("Y", "X", 0)
	suite.f.seedAccount("S", "X", 0)

	req := suite.taskApproval("loop-1", 100)
	req.AccountID = "S"
	outcome, err := suite.f.svc.Earning.ApproveTaskSubmission(suite.ctx, req)

	suite.Require().NoError(err)
	suite.True(outcome.ChainCorrupted)
	suite.Empty(outcome.DistributionError)
	suite.Equal(int64(10), suite.f.points("X"))
	suite.Equal(int64(5), suite.f.points("Y"))
}

func TestEarningServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EarningServiceTestSuite))
}
