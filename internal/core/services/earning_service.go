package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/SscSPs/rewards_ledger/internal/apperrors"
	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/rewards_ledger/internal/core/ports/services"
	"github.com/SscSPs/rewards_ledger/internal/dto"
	"github.com/SscSPs/rewards_ledger/pkg/uow"
	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"
)

type posting func(ctx context.Context, tx uow.TX, entry domain.LedgerEntry) (*domain.Transaction, error)

// fanOut runs after commit. source is the originating transaction, either the one just
// posted or the one an earlier attempt at the same event posted.
type fanOut func(ctx context.Context, source domain.Transaction) (*domain.Distribution, error)

// earningService commits an originating ledger entry, then fans commissions out.
// The entry and the caller's state change share one unit of work; the fan-out runs
// after commit and never undoes it.
type earningService struct {
	BaseService
	work        uow.UOW
	ledger      portssvc.LedgerTxSvc
	distributor portssvc.CommissionDistributorSvc
	settings    LedgerSettings
	now         func() time.Time
}

// NewEarningService creates a new earning service.
func NewEarningService(work uow.UOW, ledger portssvc.LedgerTxSvc, distributor portssvc.CommissionDistributorSvc, settings LedgerSettings) portssvc.EarningSvcFacade {
	return &earningService{
		work:        work,
		ledger:      ledger,
		distributor: distributor,
		settings:    settings,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.EarningSvcFacade = (*earningService)(nil)

func (s *earningService) Record(ctx context.Context, event domain.EarningEvent, change portssvc.StateChange) (*domain.EarningOutcome, error) {
	event.Ledger = ledgerOrDefault(event.Ledger)

	// Commission rules are expressed in the commission ledger; earnings on the other
	// ledger are credited without a fan-out rather than converted.
	var skipped string
	if event.Distribute && event.Ledger != s.settings.CommissionLedger {
		skipped = fmt.Sprintf("commissions are paid on %s earnings only", s.settings.CommissionLedger)
	}

	var distribute fanOut
	if event.Distribute && skipped == "" {
		distribute = func(ctx context.Context, source domain.Transaction) (*domain.Distribution, error) {
			return s.distributor.Distribute(ctx, source.AccountID, source.Amount().Abs(), event.EventID)
		}
	}
	outcome, err := s.record(ctx, event, change, s.ledger.CreditInTx, distribute)
	if err != nil {
		return nil, err
	}
	if skipped != "" {
		outcome.FanOutSkipped = skipped
		s.LogWarn(ctx, "Earning recorded without commission fan-out",
			slog.String("event_id", event.EventID),
			slog.String("ledger", string(event.Ledger)),
			slog.String("commission_ledger", string(s.settings.CommissionLedger)))
	}
	return outcome, nil
}

func (s *earningService) record(ctx context.Context, event domain.EarningEvent, change portssvc.StateChange, post posting, distribute fanOut) (*domain.EarningOutcome, error) {
	if event.EventID == "" {
		return nil, fmt.Errorf("%w: event id is required", apperrors.ErrValidation)
	}
	event.Ledger = ledgerOrDefault(event.Ledger)

	metadata := maps.Clone(event.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["eventId"] = event.EventID

	outcome := &domain.EarningOutcome{EventID: event.EventID}
	reference := event.Reference()
	var recorded *domain.Transaction
	err := s.work.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		txns, err := uow.GetAs[portsrepo.TransactionRepositoryFacade](tx, portsrepo.TransactionRepoName)
		if err != nil {
			return fmt.Errorf("transaction repository: %w", err)
		}
		if err := txns.LockReference(ctx, reference); err != nil {
			return err
		}
		prior, err := txns.FindByReference(ctx, reference)
		if err != nil {
			return err
		}
		if len(prior) > 0 {
			recorded, err = matchRecorded(event, prior[0])
			if err != nil {
				return err
			}
			outcome.AlreadyRecorded = true
			return nil
		}

		if change != nil {
			if err := change(ctx, tx); err != nil {
				return err
			}
		}
		outcome.Transaction, err = post(ctx, tx, domain.LedgerEntry{
			AccountID:   event.AccountID,
			Ledger:      event.Ledger,
			Amount:      event.Amount,
			Kind:        event.Kind,
			Reference:   reference,
			Description: event.Description,
			Metadata:    metadata,
		})
		return err
	})
	if err != nil {
		earningEvents.WithLabelValues(string(event.Kind), "failed").Inc()
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogWarn(ctx, "Earning event conflicts with the one already recorded",
				slog.String("event_id", event.EventID),
				slog.String("account_id", event.AccountID),
				slog.String("error", err.Error()))
		} else {
			s.LogError(ctx, err, "Failed to record earning event",
				slog.String("event_id", event.EventID),
				slog.String("account_id", event.AccountID))
		}
		return nil, err
	}

	source := outcome.Transaction
	if outcome.AlreadyRecorded {
		source = recorded
		earningEvents.WithLabelValues(string(event.Kind), "replayed").Inc()
		s.LogInfo(ctx, "Earning event already recorded, completing fan-out only", slog.String("event_id", event.EventID))
	} else {
		earningEvents.WithLabelValues(string(event.Kind), "recorded").Inc()
	}

	if distribute == nil {
		return outcome, nil
	}
	dist, err := distribute(ctx, *source)
	if err != nil {
		// The originating entry is committed; reconciliation can replay the event.
		s.LogError(ctx, err, "Commission fan-out failed after earning was committed", slog.String("event_id", event.EventID))
		outcome.DistributionError = err.Error()
		return outcome, nil
	}
	outcome.Distribution = dist
	outcome.ChainCorrupted = dist.ChainCorrupted
	if failures := levelFailures(dist.Failures); failures != nil {
		outcome.DistributionError = failures.Error()
	}
	return outcome, nil
}

// matchRecorded checks that a replayed event describes the transaction already posted
// under its reference. Commissions always follow the recorded transaction.
func matchRecorded(event domain.EarningEvent, txn domain.Transaction) (*domain.Transaction, error) {
	if id, ok := txn.Metadata["eventId"].(string); ok && id != event.EventID {
		return nil, fmt.Errorf("%w: %s already posted for event %s", apperrors.ErrDuplicate, event.Reference(), id)
	}
	if txn.AccountID != event.AccountID || txn.Ledger() != event.Ledger || !txn.Amount().Abs().Equal(event.Amount.Abs()) {
		return nil, fmt.Errorf("%w: event %s was recorded as %s %s for account %s",
			apperrors.ErrDuplicate, event.EventID, txn.Amount().Abs(), txn.Ledger(), txn.AccountID)
	}
	return &txn, nil
}

// levelFailures drops the chain-corruption report, which EarningOutcome.ChainCorrupted
// carries, and keeps the per-level errors.
func levelFailures(failures error) error {
	if failures == nil {
		return nil
	}
	var merr *multierror.Error
	if !errors.As(failures, &merr) {
		if errors.Is(failures, apperrors.ErrChainCorrupted) {
			return nil
		}
		return failures
	}
	var out *multierror.Error
	for _, err := range merr.WrappedErrors() {
		if !errors.Is(err, apperrors.ErrChainCorrupted) {
			out = multierror.Append(out, err)
		}
	}
	return out.ErrorOrNil()
}

func ledgerOrDefault(ledger domain.LedgerKind) domain.LedgerKind {
	if ledger == "" {
		return domain.PointsLedger
	}
	return ledger
}

func (s *earningService) ApproveTaskSubmission(ctx context.Context, req dto.TaskApprovalRequest) (*domain.EarningOutcome, error) {
	return s.Record(ctx, domain.EarningEvent{
		EventID:     "task:" + req.SubmissionID,
		AccountID:   req.AccountID,
		Ledger:      ledgerOrDefault(req.Ledger),
		Amount:      req.Reward,
		Kind:        domain.KindEarning,
		Description: "task submission approved",
		Metadata:    map[string]any{"taskId": req.TaskID, "submissionId": req.SubmissionID},
		Distribute:  true,
	}, nil)
}

func (s *earningService) GradeQuiz(ctx context.Context, req dto.QuizGradeRequest) (*domain.EarningOutcome, error) {
	return s.Record(ctx, domain.EarningEvent{
		EventID:     "quiz:" + req.AttemptID,
		AccountID:   req.AccountID,
		Ledger:      domain.PointsLedger,
		Amount:      req.Reward,
		Kind:        domain.KindEarning,
		Description: "quiz passed",
		Metadata:    map[string]any{"quizId": req.QuizID, "attemptId": req.AttemptID, "score": req.Score},
		Distribute:  true,
	}, nil)
}

func (s *earningService) DailyCheckIn(ctx context.Context, req dto.CheckInRequest) (*domain.EarningOutcome, error) {
	day := s.now()
	if req.Day != "" {
		parsed, err := time.Parse(time.DateOnly, req.Day)
		if err != nil {
			return nil, fmt.Errorf("%w: day must use YYYY-MM-DD", apperrors.ErrValidation)
		}
		day = parsed
	}
	return s.Record(ctx, domain.EarningEvent{
		EventID:     domain.CheckInEventID(req.AccountID, day),
		AccountID:   req.AccountID,
		Ledger:      domain.PointsLedger,
		Amount:      decimal.NewFromInt(s.settings.CheckInRewardPoints),
		Kind:        domain.KindBonus,
		Description: "daily check-in",
		Metadata:    map[string]any{"day": day.UTC().Format(time.DateOnly)},
		Distribute:  true,
	}, nil)
}

func (s *earningService) RefundDispute(ctx context.Context, req dto.DisputeRefundRequest) (*domain.EarningOutcome, error) {
	return s.Record(ctx, domain.EarningEvent{
		EventID:     "dispute:" + req.DisputeID,
		AccountID:   req.AccountID,
		Ledger:      ledgerOrDefault(req.Ledger),
		Amount:      req.Amount,
		Kind:        domain.KindRefund,
		Description: "dispute refund",
		Metadata:    map[string]any{"disputeId": req.DisputeID, "reason": req.Reason},
		Distribute:  true,
	}, nil)
}

// AdminAdjust credits positive amounts as ADJUSTMENT and debits negative ones as PENALTY.
// Only credits can fan out.
func (s *earningService) AdminAdjust(ctx context.Context, req dto.AdjustmentRequest, adminID string) (*domain.EarningOutcome, error) {
	if req.Amount.IsZero() {
		return nil, fmt.Errorf("%w: adjustment amount must not be zero", apperrors.ErrInvalidAmount)
	}
	event := domain.EarningEvent{
		EventID:     "adjustment:" + req.AdjustmentID,
		AccountID:   req.AccountID,
		Ledger:      ledgerOrDefault(req.Ledger),
		Amount:      req.Amount.Abs(),
		Kind:        domain.KindAdjustment,
		Description: req.Reason,
		Metadata:    map[string]any{"adjustmentId": req.AdjustmentID, "adminId": adminID},
		Distribute:  req.DistributeCommission && req.Amount.IsPositive(),
	}

	s.LogInfo(ctx, "Admin adjustment requested",
		slog.String("adjustment_id", req.AdjustmentID),
		slog.String("account_id", req.AccountID),
		slog.String("amount", req.Amount.String()),
		slog.String("admin_id", adminID))

	if req.Amount.IsPositive() {
		return s.Record(ctx, event, nil)
	}
	event.Kind = domain.KindPenalty
	return s.record(ctx, event, nil, s.ledger.DebitInTx, nil)
}

// ReverseEarning debits the original reward from its account and reverses the
// commissions it paid. The debit is keyed by the original event, so an event is
// reversed once; replaying the same reversal id completes missing levels and any
// other reversal id is rejected with apperrors.ErrDuplicate.
func (s *earningService) ReverseEarning(ctx context.Context, req dto.EarningReversalRequest, adminID string) (*domain.EarningOutcome, error) {
	if req.OriginalEventID == req.ReversalEventID {
		return nil, fmt.Errorf("%w: reversal event id must differ from the original", apperrors.ErrValidation)
	}

	txns, err := uow.GetRepositoryAs[portsrepo.TransactionReader](s.work, portsrepo.TransactionRepoName)
	if err != nil {
		return nil, fmt.Errorf("transaction repository: %w", err)
	}
	originals, err := txns.FindByReference(ctx, domain.EventReference(req.OriginalEventID))
	if err != nil {
		return nil, err
	}
	var original *domain.Transaction
	for i := range originals {
		if originals[i].Amount().IsPositive() {
			original = &originals[i]
			break
		}
	}
	if original == nil {
		return nil, fmt.Errorf("%w: no credit recorded for event %s", apperrors.ErrNotFound, req.OriginalEventID)
	}

	event := domain.EarningEvent{
		EventID:         req.ReversalEventID,
		LedgerReference: domain.ReversalOfReference(req.OriginalEventID),
		AccountID:       original.AccountID,
		Ledger:          original.Ledger(),
		Amount:          original.Amount(),
		Kind:            domain.KindPenalty,
		Description:     "earning reversed",
		Metadata: map[string]any{
			"originalEventId": req.OriginalEventID,
			"reason":          req.Reason,
			"adminId":         adminID,
		},
	}
	reverse := func(ctx context.Context, _ domain.Transaction) (*domain.Distribution, error) {
		return s.distributor.Reverse(ctx, req.OriginalEventID, req.ReversalEventID)
	}
	return s.record(ctx, event, nil, s.ledger.DebitInTx, reverse)
}
