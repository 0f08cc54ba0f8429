package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/rewards_ledger/internal/apperrors"
	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRoundHalfDown(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		places int32
		want   string
	}{
		{name: "exact half goes down", value: "2.5", places: 0, want: "2"},
		{name: "above half goes up", value: "2.51", places: 0, want: "3"},
		{name: "below half goes down", value: "2.49", places: 0, want: "2"},
		{name: "cents half goes down", value: "0.125", places: 2, want: "0.12"},
		{name: "cents above half", value: "0.3125", places: 2, want: "0.31"},
		{name: "already exact", value: "7", places: 0, want: "7"},
		{name: "negative half toward zero", value: "-2.5", places: 0, want: "-2"},
		{name: "negative above half away from zero", value: "-2.6", places: 0, want: "-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.RoundHalfDown(dec(tt.value), tt.places)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestCommissionRule_Commission(t *testing.T) {
	pct := domain.CommissionRule{Level: 1, Type: domain.CommissionPercentage, Value: dec("10"), IsActive: true}
	flat := domain.CommissionRule{Level: 2, Type: domain.CommissionFlatRate, Value: dec("3"), IsActive: true}

	assert.True(t, pct.Commission(dec("100"), 0).Equal(dec("10")))
	assert.True(t, pct.Commission(dec("25"), 0).Equal(dec("2")), "2.5 rounds half down")
	assert.True(t, pct.Commission(dec("3.125"), 2).Equal(dec("0.31")))
	assert.True(t, flat.Commission(dec("100000"), 0).Equal(dec("3")), "flat rate ignores the base")
	assert.True(t, pct.Commission(dec("4"), 0).IsZero(), "0.4 rounds to zero")
}

func TestCommissionRule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rule    domain.CommissionRule
		wantErr bool
	}{
		{name: "percentage", rule: domain.CommissionRule{Level: 1, Type: domain.CommissionPercentage, Value: dec("10")}},
		{name: "flat rate", rule: domain.CommissionRule{Level: 10, Type: domain.CommissionFlatRate, Value: dec("5")}},
		{name: "hundred percent", rule: domain.CommissionRule{Level: 3, Type: domain.CommissionPercentage, Value: dec("100")}},
		{name: "level zero", rule: domain.CommissionRule{Level: 0, Type: domain.CommissionPercentage, Value: dec("1")}, wantErr: true},
		{name: "level eleven", rule: domain.CommissionRule{Level: 11, Type: domain.CommissionPercentage, Value: dec("1")}, wantErr: true},
		{name: "negative value", rule: domain.CommissionRule{Level: 1, Type: domain.CommissionFlatRate, Value: dec("-1")}, wantErr: true},
		{name: "percentage above hundred", rule: domain.CommissionRule{Level: 1, Type: domain.CommissionPercentage, Value: dec("100.01")}, wantErr: true},
		{name: "unknown type", rule: domain.CommissionRule{Level: 1, Type: "BONUS", Value: dec("1")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, apperrors.ErrScheduleEntryInvalid), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCommissionSchedule_RuleAt(t *testing.T) {
	schedule := domain.NewCommissionSchedule(2, []domain.CommissionRule{
		{Level: 1, Type: domain.CommissionPercentage, Value: dec("10"), IsActive: true},
		{Level: 2, Type: domain.CommissionPercentage, Value: dec("5"), IsActive: false},
		{Level: 3, Type: "WEIRD", Value: dec("1"), IsActive: true},
		{Level: 4, Type: domain.CommissionFlatRate, Value: dec("1"), IsActive: true},
		{Level: 4, Type: domain.CommissionFlatRate, Value: dec("2"), IsActive: true},
	}, time.Now())

	rule, found, err := schedule.RuleAt(1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, rule.IsActive)

	rule, found, err = schedule.RuleAt(2)
	require.NoError(t, err)
	assert.True(t, found, "inactive rules are still returned")
	assert.False(t, rule.IsActive)

	_, found, err = schedule.RuleAt(3)
	assert.False(t, found)
	assert.ErrorIs(t, err, apperrors.ErrScheduleEntryInvalid)

	_, found, err = schedule.RuleAt(4)
	assert.False(t, found)
	assert.ErrorIs(t, err, apperrors.ErrScheduleEntryInvalid, "duplicate levels are unusable")

	_, found, err = schedule.RuleAt(9)
	assert.NoError(t, err)
	assert.False(t, found)

	assert.Len(t, schedule.Rules(), 2)
	assert.Len(t, schedule.Issues(), 2)
	assert.True(t, schedule.ActivePercentageTotal().Equal(dec("10")))
}

func TestCommissionSchedule_NilIsEmpty(t *testing.T) {
	var schedule *domain.CommissionSchedule
	_, found, err := schedule.RuleAt(1)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestPercentageTotal(t *testing.T) {
	total := domain.PercentageTotal([]domain.CommissionRule{
		{Level: 1, Type: domain.CommissionPercentage, Value: dec("60"), IsActive: true},
		{Level: 2, Type: domain.CommissionPercentage, Value: dec("50"), IsActive: true},
		{Level: 3, Type: domain.CommissionFlatRate, Value: dec("500"), IsActive: true},
		{Level: 4, Type: domain.CommissionPercentage, Value: dec("30"), IsActive: false},
	})
	assert.True(t, total.Equal(dec("110")))
}
