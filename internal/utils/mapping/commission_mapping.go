package mapping

import (
	"time"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	"github.com/SscSPs/rewards_ledger/internal/models"
)

// ToModelScheduleEntry converts a domain CommissionRule to a stored schedule row
func ToModelScheduleEntry(d domain.CommissionRule, version int64, updatedBy string, now time.Time) models.CommissionScheduleEntry {
	return models.CommissionScheduleEntry{
		Level:           d.Level,
		CommissionType:  string(d.Type),
		CommissionValue: d.Value,
		IsActive:        d.IsActive,
		Version:         version,
		UpdatedBy:       updatedBy,
		UpdatedAt:       now,
	}
}

// ToDomainCommissionRule converts a stored schedule row to a domain CommissionRule
func ToDomainCommissionRule(m models.CommissionScheduleEntry) domain.CommissionRule {
	return domain.CommissionRule{
		Level:    m.Level,
		Type:     domain.CommissionType(m.CommissionType),
		Value:    m.CommissionValue,
		IsActive: m.IsActive,
	}
}
