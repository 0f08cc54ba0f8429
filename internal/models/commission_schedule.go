package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionScheduleEntry is one stored schedule row; level is the primary key.
type CommissionScheduleEntry struct {
	Level           int             `db:"level"`
	CommissionType  string          `db:"commission_type"`
	CommissionValue decimal.Decimal `db:"commission_value"`
	IsActive        bool            `db:"is_active"`
	Version         int64           `db:"version"`
	UpdatedBy       string          `db:"updated_by"`
	UpdatedAt       time.Time       `db:"updated_at"`
}
