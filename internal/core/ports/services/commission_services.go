package services

import (
	"context"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	"github.com/SscSPs/rewards_ledger/internal/dto"
)

// CommissionScheduleReaderSvc hands out consistent schedule snapshots.
type CommissionScheduleReaderSvc interface {
	// Snapshot returns the current snapshot, loading it on first use.
	Snapshot(ctx context.Context) (*domain.CommissionSchedule, error)

	// Reload reads the stored schedule and swaps the snapshot.
	Reload(ctx context.Context) (*domain.CommissionSchedule, error)
}

// CommissionScheduleWriterSvc replaces the schedule.
type CommissionScheduleWriterSvc interface {
	// Replace validates and stores a new schedule version. Non-blocking concerns,
	// such as percentages summing above 100, come back as warnings.
	Replace(ctx context.Context, req dto.ReplaceScheduleRequest, userID string) (*domain.CommissionSchedule, []string, error)
}

// CommissionScheduleSvcFacade combines all schedule service interfaces
type CommissionScheduleSvcFacade interface {
	CommissionScheduleReaderSvc
	CommissionScheduleWriterSvc
}
