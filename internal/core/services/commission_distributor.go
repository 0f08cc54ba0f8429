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
	"github.com/SscSPs/rewards_ledger/pkg/uow"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"
)

// commissionDistributor pays a commission to each ancestor of an earning account.
// Every level is its own unit of work keyed by (eventID, level), so a repeated or
// concurrent call only fills in the levels that are still missing.
type commissionDistributor struct {
	BaseService
	work     uow.UOW
	graph    portssvc.ReferralGraphSvc
	schedule portssvc.CommissionScheduleReaderSvc
	ledger   portssvc.LedgerTxSvc
	settings LedgerSettings
	now      func() time.Time
}

// NewCommissionDistributor creates a new commission distributor.
func NewCommissionDistributor(
	work uow.UOW,
	graph portssvc.ReferralGraphSvc,
	schedule portssvc.CommissionScheduleReaderSvc,
	ledger portssvc.LedgerTxSvc,
	settings LedgerSettings,
) portssvc.CommissionDistributorSvc {
	return &commissionDistributor{
		work:     work,
		graph:    graph,
		schedule: schedule,
		ledger:   ledger,
		settings: settings,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.CommissionDistributorSvc = (*commissionDistributor)(nil)

func (d *commissionDistributor) Distribute(ctx context.Context, sourceAccountID string, baseAmount decimal.Decimal, eventID string) (*domain.Distribution, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", apperrors.ErrValidation)
	}
	if baseAmount.IsNegative() {
		return nil, fmt.Errorf("%w: base amount must not be negative, got %s", apperrors.ErrInvalidAmount, baseAmount)
	}

	// One snapshot for the whole walk, even if the schedule is replaced meanwhile.
	snap, err := d.schedule.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	dist := &domain.Distribution{
		EventID:         eventID,
		SourceAccountID: sourceAccountID,
		BaseAmount:      baseAmount,
		ScheduleVersion: snap.Version,
		Earnings:        []domain.ReferralEarning{},
		Levels:          []domain.LevelResult{},
	}

	ancestors, err := d.graph.AncestorsOf(ctx, sourceAccountID, domain.MaxReferralDepth)
	if err != nil {
		if !errors.Is(err, apperrors.ErrChainCorrupted) {
			return nil, err
		}
		// Pay the well-formed prefix; the cycle is reported, not fatal.
		dist.ChainCorrupted = true
		dist.Failures = multierror.Append(dist.Failures, err)
		commissionChainCorrupted.Inc()
		d.LogError(ctx, err, "Referral chain corrupted, distributing to the valid prefix only",
			slog.String("event_id", eventID),
			slog.String("source_account_id", sourceAccountID),
			slog.Int("valid_levels", len(ancestors)))
	}

	for _, ancestor := range ancestors {
		if err := ctx.Err(); err != nil {
			dist.Failures = multierror.Append(dist.Failures, err)
			break
		}
		result, earning, levelErr := d.payLevel(ctx, snap, dist, ancestor)
		commissionLevels.WithLabelValues(string(result.Outcome)).Inc()
		if levelErr != nil {
			result.Error = levelErr.Error()
			dist.Failures = multierror.Append(dist.Failures, levelErr)
		}
		if earning != nil {
			dist.Earnings = append(dist.Earnings, *earning)
			commissionAmount.WithLabelValues(string(earning.Ledger)).Add(earning.CommissionAmount.InexactFloat64())
		}
		dist.Levels = append(dist.Levels, result)
	}

	d.LogInfo(ctx, "Commission distribution finished",
		slog.String("event_id", eventID),
		slog.String("source_account_id", sourceAccountID),
		slog.Int64("schedule_version", snap.Version),
		slog.Int("ancestors", len(ancestors)),
		slog.Int("credited", len(dist.Earnings)),
		slog.Bool("chain_corrupted", dist.ChainCorrupted))
	return dist, nil
}

// payLevel settles one ancestor. A returned error is absorbed into the distribution.
func (d *commissionDistributor) payLevel(ctx context.Context, snap *domain.CommissionSchedule, dist *domain.Distribution, ancestor domain.Ancestor) (domain.LevelResult, *domain.ReferralEarning, error) {
	level := ancestor.Depth
	result := domain.LevelResult{
		Level:                level,
		BeneficiaryAccountID: ancestor.AccountID,
		Amount:               decimal.Zero,
		Reference:            domain.ReferralReference(dist.EventID, level),
	}
	logger := d.GetLogger(ctx).With(
		slog.String("event_id", dist.EventID),
		slog.Int("level", level),
		slog.String("beneficiary_account_id", ancestor.AccountID))

	rule, found, err := snap.RuleAt(level)
	switch {
	case err != nil:
		logger.Warn("Skipping level with malformed commission rule", slog.String("error", err.Error()))
		result.Outcome = domain.OutcomeInvalidRule
		result.Error = err.Error()
		return result, nil, nil
	case !found:
		result.Outcome = domain.OutcomeNoRule
		return result, nil, nil
	case !rule.IsActive:
		result.Outcome = domain.OutcomeInactive
		return result, nil, nil
	}

	ledger := d.settings.CommissionLedger
	amount := rule.Commission(dist.BaseAmount, d.settings.Places(ledger))
	if !amount.IsPositive() {
		result.Outcome = domain.OutcomeZeroAmount
		return result, nil, nil
	}
	result.Amount = amount

	var earning *domain.ReferralEarning
	err = d.work.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		earnings, err := uow.GetAs[portsrepo.ReferralEarningRepositoryFacade](tx, portsrepo.ReferralEarningRepoName)
		if err != nil {
			return fmt.Errorf("referral earning repository: %w", err)
		}
		if _, err := earnings.FindByEventAndLevel(ctx, dist.EventID, level); err == nil {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateReference, result.Reference)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		txn, err := d.ledger.CreditInTx(ctx, tx, domain.LedgerEntry{
			AccountID:   ancestor.AccountID,
			Ledger:      ledger,
			Amount:      amount,
			Kind:        domain.KindReferral,
			Reference:   result.Reference,
			Description: fmt.Sprintf("referral commission level %d", level),
			Metadata: map[string]any{
				"eventId":         dist.EventID,
				"sourceAccountId": dist.SourceAccountID,
				"depth":           level,
				"scheduleVersion": dist.ScheduleVersion,
			},
		})
		if err != nil {
			return err
		}

		row := domain.ReferralEarning{
			EarningID:            uuid.NewString(),
			EventID:              dist.EventID,
			SourceAccountID:      dist.SourceAccountID,
			BeneficiaryAccountID: ancestor.AccountID,
			Level:                level,
			Ledger:               ledger,
			BaseAmount:           dist.BaseAmount,
			CommissionAmount:     amount,
			TransactionID:        txn.TransactionID,
			CreatedAt:            d.now(),
		}
		if err := earnings.SaveReferralEarning(ctx, row); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				return fmt.Errorf("%w: %s", apperrors.ErrDuplicateReference, result.Reference)
			}
			return err
		}
		earning = &row
		return nil
	})

	switch {
	case err == nil:
		result.Outcome = domain.OutcomeCredited
		logger.Debug("Commission credited", slog.String("amount", amount.String()))
		return result, earning, nil
	case errors.Is(err, apperrors.ErrDuplicateReference):
		result.Outcome = domain.OutcomeAlreadyProcessed
		return result, nil, nil
	case errors.Is(err, apperrors.ErrUnknownAccount):
		logger.Warn("Commission beneficiary does not exist")
		result.Outcome = domain.OutcomeUnknownAccount
		return result, nil, fmt.Errorf("level %d: %w", level, err)
	default:
		logger.Error("Commission credit failed", slog.String("error", err.Error()))
		result.Outcome = domain.OutcomeFailed
		return result, nil, fmt.Errorf("level %d: %w", level, err)
	}
}

func (d *commissionDistributor) Reverse(ctx context.Context, originalEventID string, reversalEventID string) (*domain.Distribution, error) {
	if originalEventID == "" || reversalEventID == "" {
		return nil, fmt.Errorf("%w: original and reversal event ids are required", apperrors.ErrValidation)
	}
	if originalEventID == reversalEventID {
		return nil, fmt.Errorf("%w: reversal event id must differ from the original", apperrors.ErrValidation)
	}

	originals, err := d.EarningsForEvent(ctx, originalEventID)
	if err != nil {
		return nil, err
	}

	dist := &domain.Distribution{
		EventID:  reversalEventID,
		Earnings: []domain.ReferralEarning{},
		Levels:   []domain.LevelResult{},
	}
	for _, original := range originals {
		// Rows of a reversal event are themselves negative; they are never reversed again.
		if original.CommissionAmount.IsNegative() {
			continue
		}
		dist.SourceAccountID = original.SourceAccountID
		dist.BaseAmount = original.BaseAmount

		result, earning, levelErr := d.reverseLevel(ctx, reversalEventID, original)
		commissionLevels.WithLabelValues(string(result.Outcome)).Inc()
		if levelErr != nil {
			result.Error = levelErr.Error()
			dist.Failures = multierror.Append(dist.Failures, levelErr)
		}
		if earning != nil {
			dist.Earnings = append(dist.Earnings, *earning)
		}
		dist.Levels = append(dist.Levels, result)
	}

	d.LogInfo(ctx, "Commission reversal finished",
		slog.String("original_event_id", originalEventID),
		slog.String("reversal_event_id", reversalEventID),
		slog.Int("reversed", len(dist.Earnings)))
	return dist, nil
}

func (d *commissionDistributor) reverseLevel(ctx context.Context, reversalEventID string, original domain.ReferralEarning) (domain.LevelResult, *domain.ReferralEarning, error) {
	result := domain.LevelResult{
		Level:                original.Level,
		BeneficiaryAccountID: original.BeneficiaryAccountID,
		Amount:               original.CommissionAmount,
		Reference:            domain.ReversalReference(reversalEventID, original.Level),
	}

	var earning *domain.ReferralEarning
	err := d.work.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		earnings, err := uow.GetAs[portsrepo.ReferralEarningRepositoryFacade](tx, portsrepo.ReferralEarningRepoName)
		if err != nil {
			return fmt.Errorf("referral earning repository: %w", err)
		}
		if _, err := earnings.FindByEventAndLevel(ctx, reversalEventID, original.Level); err == nil {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateReference, result.Reference)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		// A level is reversed at most once, whatever reversal event asks for it.
		if prior, err := earnings.FindReversal(ctx, original.EventID, original.Level); err == nil {
			return fmt.Errorf("%w: %s level %d already reversed by %s", apperrors.ErrDuplicateReference, original.EventID, original.Level, prior.EventID)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		txn, err := d.ledger.DebitInTx(ctx, tx, domain.LedgerEntry{
			AccountID:   original.BeneficiaryAccountID,
			Ledger:      original.Ledger,
			Amount:      original.CommissionAmount,
			Kind:        domain.KindReversal,
			Reference:   result.Reference,
			Description: fmt.Sprintf("referral commission level %d reversed", original.Level),
			Metadata: map[string]any{
				"eventId":         reversalEventID,
				"originalEventId": original.EventID,
				"sourceAccountId": original.SourceAccountID,
				"depth":           original.Level,
			},
		})
		if err != nil {
			return err
		}

		row := domain.ReferralEarning{
			EarningID:            uuid.NewString(),
			EventID:              reversalEventID,
			SourceAccountID:      original.SourceAccountID,
			BeneficiaryAccountID: original.BeneficiaryAccountID,
			Level:                original.Level,
			Ledger:               original.Ledger,
			BaseAmount:           original.BaseAmount,
			CommissionAmount:     original.CommissionAmount.Neg(),
			TransactionID:        txn.TransactionID,
			ReversesEventID:      original.EventID,
			CreatedAt:            d.now(),
		}
		if err := earnings.SaveReferralEarning(ctx, row); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				return fmt.Errorf("%w: %s", apperrors.ErrDuplicateReference, result.Reference)
			}
			return err
		}
		earning = &row
		return nil
	})

	switch {
	case err == nil:
		result.Outcome = domain.OutcomeDebited
		return result, earning, nil
	case errors.Is(err, apperrors.ErrDuplicateReference):
		result.Outcome = domain.OutcomeAlreadyProcessed
		return result, nil, nil
	case errors.Is(err, apperrors.ErrInsufficientBalance):
		d.LogWarn(ctx, "Beneficiary balance too low to reverse commission",
			slog.String("reversal_event_id", reversalEventID),
			slog.Int("level", original.Level),
			slog.String("beneficiary_account_id", original.BeneficiaryAccountID))
		result.Outcome = domain.OutcomeInsufficientBalance
		return result, nil, fmt.Errorf("level %d: %w", original.Level, err)
	case errors.Is(err, apperrors.ErrUnknownAccount):
		result.Outcome = domain.OutcomeUnknownAccount
		return result, nil, fmt.Errorf("level %d: %w", original.Level, err)
	default:
		d.LogError(ctx, err, "Commission reversal failed",
			slog.String("reversal_event_id", reversalEventID),
			slog.Int("level", original.Level))
		result.Outcome = domain.OutcomeFailed
		return result, nil, fmt.Errorf("level %d: %w", original.Level, err)
	}
}

func (d *commissionDistributor) EarningsForEvent(ctx context.Context, eventID string) ([]domain.ReferralEarning, error) {
	earnings, err := uow.GetRepositoryAs[portsrepo.ReferralEarningReader](d.work, portsrepo.ReferralEarningRepoName)
	if err != nil {
		return nil, fmt.Errorf("referral earning repository: %w", err)
	}
	rows, err := earnings.ListByEvent(ctx, eventID)
	if err != nil {
		d.LogError(ctx, err, "Failed to list referral earnings", slog.String("event_id", eventID))
		return nil, err
	}
	if rows == nil {
		rows = []domain.ReferralEarning{}
	}
	return rows, nil
}
