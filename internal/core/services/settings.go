package services

import (
	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	"github.com/SscSPs/rewards_ledger/internal/platform/config"
	"github.com/shopspring/decimal"
)

// LedgerSettings controls amount precision and where commissions are paid.
type LedgerSettings struct {
	CommissionLedger    domain.LedgerKind
	CashDecimalPlaces   int32
	PointsPerCashUnit   decimal.Decimal
	CheckInRewardPoints int64
}

// DefaultLedgerSettings pays commissions in points and keeps cash to cents.
func DefaultLedgerSettings() LedgerSettings {
	return LedgerSettings{
		CommissionLedger:    domain.PointsLedger,
		CashDecimalPlaces:   2,
		PointsPerCashUnit:   decimal.NewFromInt(100),
		CheckInRewardPoints: 10,
	}
}

// LedgerSettingsFromConfig reads the ledger keys of cfg.
func LedgerSettingsFromConfig(cfg *config.Config) LedgerSettings {
	return LedgerSettings{
		CommissionLedger:    domain.LedgerKind(cfg.CommissionLedger),
		CashDecimalPlaces:   cfg.CashDecimalPlaces,
		PointsPerCashUnit:   cfg.PointsPerCashUnit,
		CheckInRewardPoints: cfg.CheckInRewardPoints,
	}
}

// Places is the number of decimal places amounts on ledger may carry.
func (s LedgerSettings) Places(ledger domain.LedgerKind) int32 {
	if ledger == domain.CashLedger {
		return s.CashDecimalPlaces
	}
	return 0
}

var hundredPercent = decimal.NewFromInt(100)
