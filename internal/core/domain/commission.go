package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/rewards_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// CommissionType defines how a level's commission is derived from the base amount.
type CommissionType string

const (
	CommissionPercentage CommissionType = "PERCENTAGE"
	CommissionFlatRate   CommissionType = "FLAT_RATE"
)

var hundred = decimal.NewFromInt(100)

// CommissionRule is the commission configuration for one referral depth.
type CommissionRule struct {
	Level    int             `json:"level"`
	Type     CommissionType  `json:"commissionType"`
	Value    decimal.Decimal `json:"commissionValue"`
	IsActive bool            `json:"isActive"`
}

// Validate checks the rule against the write-time constraints.
func (r CommissionRule) Validate() error {
	if r.Level < 1 || r.Level > MaxReferralDepth {
		return fmt.Errorf("%w: level %d outside 1..%d", apperrors.ErrScheduleEntryInvalid, r.Level, MaxReferralDepth)
	}
	if r.Value.IsNegative() {
		return fmt.Errorf("%w: level %d has negative value %s", apperrors.ErrScheduleEntryInvalid, r.Level, r.Value)
	}
	switch r.Type {
	case CommissionPercentage:
		if r.Value.GreaterThan(hundred) {
			return fmt.Errorf("%w: level %d percentage %s above 100", apperrors.ErrScheduleEntryInvalid, r.Level, r.Value)
		}
	case CommissionFlatRate:
	default:
		return fmt.Errorf("%w: level %d has unknown type %q", apperrors.ErrScheduleEntryInvalid, r.Level, r.Type)
	}
	return nil
}

// Commission returns the amount owed for baseAmount, rounded half-down to the given
// number of decimal places.
func (r CommissionRule) Commission(baseAmount decimal.Decimal, places int32) decimal.Decimal {
	raw := r.Value
	if r.Type == CommissionPercentage {
		raw = baseAmount.Mul(r.Value).Div(hundred)
	}
	return RoundHalfDown(raw, places)
}

// RoundHalfDown rounds d to places decimal places, sending exact halves toward zero.
func RoundHalfDown(d decimal.Decimal, places int32) decimal.Decimal {
	truncated := d.Truncate(places)
	remainder := d.Sub(truncated).Abs()
	half := decimal.New(5, -(places + 1))
	if !remainder.GreaterThan(half) {
		return truncated
	}
	step := decimal.New(1, -places)
	if d.IsNegative() {
		return truncated.Sub(step)
	}
	return truncated.Add(step)
}

// CommissionSchedule is an immutable, versioned snapshot of the per-level rules.
// A fan-out holds one snapshot for its whole walk.
type CommissionSchedule struct {
	Version  int64
	LoadedAt time.Time
	rules    map[int]CommissionRule
	invalid  map[int]error
}

// NewCommissionSchedule builds a snapshot. Entries that fail validation are kept
// aside and reported by RuleAt and Issues instead of being applied.
func NewCommissionSchedule(version int64, entries []CommissionRule, loadedAt time.Time) *CommissionSchedule {
	s := &CommissionSchedule{
		Version:  version,
		LoadedAt: loadedAt,
		rules:    make(map[int]CommissionRule, len(entries)),
		invalid:  make(map[int]error),
	}
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			s.invalid[e.Level] = err
			continue
		}
		if _, dup := s.rules[e.Level]; dup {
			delete(s.rules, e.Level)
			s.invalid[e.Level] = fmt.Errorf("%w: level %d defined more than once", apperrors.ErrScheduleEntryInvalid, e.Level)
			continue
		}
		if _, bad := s.invalid[e.Level]; bad {
			continue
		}
		s.rules[e.Level] = e
	}
	return s
}

// RuleAt returns the rule configured for level. found is false when no usable rule exists;
// err is set when the level has a malformed entry.
func (s *CommissionSchedule) RuleAt(level int) (rule CommissionRule, found bool, err error) {
	if s == nil {
		return CommissionRule{}, false, nil
	}
	if invalidErr, ok := s.invalid[level]; ok {
		return CommissionRule{}, false, invalidErr
	}
	rule, found = s.rules[level]
	return rule, found, nil
}

// Rules returns the usable rules ordered by level.
func (s *CommissionSchedule) Rules() []CommissionRule {
	out := make([]CommissionRule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

// Issues returns the validation errors of skipped entries, ordered by level.
func (s *CommissionSchedule) Issues() []error {
	levels := make([]int, 0, len(s.invalid))
	for l := range s.invalid {
		levels = append(levels, l)
	}
	sort.Ints(levels)
	out := make([]error, 0, len(levels))
	for _, l := range levels {
		out = append(out, s.invalid[l])
	}
	return out
}

// ActivePercentageTotal sums the values of active PERCENTAGE rules.
func (s *CommissionSchedule) ActivePercentageTotal() decimal.Decimal {
	total := decimal.Zero
	for _, r := range s.rules {
		if r.IsActive && r.Type == CommissionPercentage {
			total = total.Add(r.Value)
		}
	}
	return total
}

// PercentageTotal sums the values of active PERCENTAGE rules in entries.
func PercentageTotal(entries []CommissionRule) decimal.Decimal {
	return NewCommissionSchedule(0, entries, time.Time{}).ActivePercentageTotal()
}
