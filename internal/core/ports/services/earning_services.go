package services

import (
	"context"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	"github.com/SscSPs/rewards_ledger/internal/dto"
	"github.com/SscSPs/rewards_ledger/pkg/uow"
)

// StateChange is a trigger's own write, committed in the same unit of work as the
// originating credit.
type StateChange func(ctx context.Context, tx uow.TX) error

// EarningRecorderSvc records earning events.
type EarningRecorderSvc interface {
	// Record credits the originating account together with change, then distributes
	// commissions after commit. Distribution failures do not fail the call.
	Record(ctx context.Context, event domain.EarningEvent, change StateChange) (*domain.EarningOutcome, error)
}

// EarningTriggerSvc is the set of concrete triggers exposed to collaborators.
type EarningTriggerSvc interface {
	ApproveTaskSubmission(ctx context.Context, req dto.TaskApprovalRequest) (*domain.EarningOutcome, error)
	GradeQuiz(ctx context.Context, req dto.QuizGradeRequest) (*domain.EarningOutcome, error)
	DailyCheckIn(ctx context.Context, req dto.CheckInRequest) (*domain.EarningOutcome, error)
	RefundDispute(ctx context.Context, req dto.DisputeRefundRequest) (*domain.EarningOutcome, error)
	AdminAdjust(ctx context.Context, req dto.AdjustmentRequest, adminID string) (*domain.EarningOutcome, error)
	ReverseEarning(ctx context.Context, req dto.EarningReversalRequest, adminID string) (*domain.EarningOutcome, error)
}

// EarningSvcFacade combines all earning service interfaces
type EarningSvcFacade interface {
	EarningRecorderSvc
	EarningTriggerSvc
}
