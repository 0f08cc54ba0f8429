package repositories

import (
	"context"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
)

// CommissionScheduleReader loads the schedule table.
type CommissionScheduleReader interface {
	// LoadSchedule reads every entry and the schedule version in one statement.
	LoadSchedule(ctx context.Context) (version int64, entries []domain.CommissionRule, err error)
}

// CommissionScheduleWriter replaces the schedule wholesale.
type CommissionScheduleWriter interface {
	// ReplaceSchedule bumps the schedule version, deletes all entries and inserts entries
	// stamped with the new version, which it returns. Concurrent replacements serialize.
	ReplaceSchedule(ctx context.Context, entries []domain.CommissionRule, updatedBy string) (int64, error)
}

// CommissionScheduleRepositoryFacade combines all schedule repository interfaces
type CommissionScheduleRepositoryFacade interface {
	CommissionScheduleReader
	CommissionScheduleWriter
}
