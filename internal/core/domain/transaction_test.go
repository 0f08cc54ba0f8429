package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionKind_CountsTowardEarnings(t *testing.T) {
	tests := []struct {
		kind domain.TransactionKind
		want bool
	}{
		{domain.KindEarning, true},
		{domain.KindReferral, true},
		{domain.KindBonus, true},
		{domain.KindRefund, false},
		{domain.KindAdjustment, false},
		{domain.KindPenalty, false},
		{domain.KindWithdrawal, false},
		{domain.KindReversal, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.True(t, tt.kind.IsValid())
			assert.Equal(t, tt.want, tt.kind.CountsTowardEarnings())
		})
	}
	assert.False(t, domain.TransactionKind("GIFT").IsValid())
}

func TestTransaction_LedgerAndAmount(t *testing.T) {
	points := domain.Transaction{Points: -40}
	assert.Equal(t, domain.PointsLedger, points.Ledger())
	assert.True(t, points.Amount().Equal(decimal.NewFromInt(-40)))

	cash := domain.Transaction{CashAmount: decimal.RequireFromString("1.25")}
	assert.Equal(t, domain.CashLedger, cash.Ledger())
	assert.True(t, cash.Amount().Equal(decimal.RequireFromString("1.25")))
}

func TestReferences(t *testing.T) {
	assert.Equal(t, "referral:evt-1:L3", domain.ReferralReference("evt-1", 3))
	assert.Equal(t, "reversal:rev-1:L1", domain.ReversalReference("rev-1", 1))
	assert.Equal(t, "event:task:42", domain.EventReference("task:42"))
	assert.Equal(t, "event:task:42", domain.EarningEvent{EventID: "task:42"}.Reference())

	day := time.Date(2026, 3, 1, 23, 30, 0, 0, time.FixedZone("UTC+2", 2*60*60))
	assert.Equal(t, "checkin:a1:2026-03-01", domain.CheckInEventID("a1", day))
}

func TestAccount_Balance(t *testing.T) {
	acc := domain.Account{PointsBalance: 12, CashBalance: decimal.RequireFromString("0.50")}
	assert.True(t, acc.Balance(domain.PointsLedger).Equal(decimal.NewFromInt(12)))
	assert.True(t, acc.Balance(domain.CashLedger).Equal(decimal.RequireFromString("0.5")))
	assert.False(t, acc.HasReferrer())
	assert.True(t, domain.Account{ReferredBy: "p"}.HasReferrer())
}
