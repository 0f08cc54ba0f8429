package dto

import (
	"time"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CommissionRuleRequest is one level of a schedule replacement.
type CommissionRuleRequest struct {
	Level    int                   `json:"level" validate:"min=1,max=10"`
	Type     domain.CommissionType `json:"commissionType" validate:"required,oneof=PERCENTAGE FLAT_RATE"`
	Value    decimal.Decimal       `json:"commissionValue"`
	IsActive *bool                 `json:"isActive"` // defaults to true
}

// ReplaceScheduleRequest replaces the whole commission schedule.
type ReplaceScheduleRequest struct {
	Entries []CommissionRuleRequest `json:"entries" validate:"max=10,dive"`
}

// ToCommissionRules converts the request into domain rules.
func (r ReplaceScheduleRequest) ToCommissionRules() []domain.CommissionRule {
	rules := make([]domain.CommissionRule, len(r.Entries))
	for i, e := range r.Entries {
		active := true
		if e.IsActive != nil {
			active = *e.IsActive
		}
		rules[i] = domain.CommissionRule{
			Level:    e.Level,
			Type:     e.Type,
			Value:    e.Value,
			IsActive: active,
		}
	}
	return rules
}

// ScheduleResponse is the current commission schedule snapshot.
type ScheduleResponse struct {
	Version  int64                   `json:"version"`
	LoadedAt time.Time               `json:"loadedAt"`
	Rules    []domain.CommissionRule `json:"rules"`
	Warnings []string                `json:"warnings,omitempty"`
}

// ToScheduleResponse converts a snapshot to ScheduleResponse DTO.
func ToScheduleResponse(s *domain.CommissionSchedule, warnings []string) ScheduleResponse {
	for _, issue := range s.Issues() {
		warnings = append(warnings, issue.Error())
	}
	return ScheduleResponse{
		Version:  s.Version,
		LoadedAt: s.LoadedAt,
		Rules:    s.Rules(),
		Warnings: warnings,
	}
}

// DistributeRequest asks for a commission fan-out for one event.
type DistributeRequest struct {
	SourceAccountID string          `json:"sourceAccountID" binding:"required,max=64"`
	BaseAmount      decimal.Decimal `json:"baseAmount"`
	EventID         string          `json:"eventID" binding:"required,max=200"`
}

// ReverseCommissionsRequest asks for the compensating fan-out of an event.
type ReverseCommissionsRequest struct {
	OriginalEventID string `json:"originalEventID" binding:"required,max=200"`
	ReversalEventID string `json:"reversalEventID" binding:"required,max=200"`
}

// EventEarningsResponse lists the referral earnings recorded for an event.
type EventEarningsResponse struct {
	EventID  string                   `json:"eventID"`
	Earnings []domain.ReferralEarning `json:"earnings"`
}

// DistributionResponse is a fan-out result with its absorbed per-level failures.
type DistributionResponse struct {
	*domain.Distribution
	Failures []string `json:"failures,omitempty"`
}

// ToDistributionResponse flattens the aggregated failures of d into messages.
func ToDistributionResponse(d *domain.Distribution) DistributionResponse {
	resp := DistributionResponse{Distribution: d}
	if d.Failures == nil {
		return resp
	}
	if multi, ok := d.Failures.(interface{ WrappedErrors() []error }); ok {
		for _, e := range multi.WrappedErrors() {
			resp.Failures = append(resp.Failures, e.Error())
		}
		return resp
	}
	resp.Failures = []string{d.Failures.Error()}
	return resp
}
