package pgsql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/rewards_ledger/internal/models"
	"github.com/SscSPs/rewards_ledger/internal/utils/mapping"
	"github.com/SscSPs/rewards_ledger/pkg/uow"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PgxCommissionScheduleRepository struct {
	db uow.DBTX
}

func newPgxCommissionScheduleRepository(db uow.DBTX) *PgxCommissionScheduleRepository {
	return &PgxCommissionScheduleRepository{db: db}
}

var _ portsrepo.CommissionScheduleRepositoryFacade = (*PgxCommissionScheduleRepository)(nil)

// LoadSchedule reads the version row and every entry in one statement so a concurrent
// replacement is never half-visible.
func (r *PgxCommissionScheduleRepository) LoadSchedule(ctx context.Context) (int64, []domain.CommissionRule, error) {
	query := `
		SELECT m.version, e.level, e.commission_type, e.commission_value, e.is_active
		FROM commission_schedule_meta m
		LEFT JOIN commission_schedule_entries e ON TRUE
		ORDER BY e.level;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return 0, nil, convertErr(err, "load commission schedule")
	}
	defer rows.Close()

	var version int64
	rules := []domain.CommissionRule{}
	for rows.Next() {
		var (
			level    sql.NullInt32
			cType    sql.NullString
			value    decimal.NullDecimal
			isActive sql.NullBool
		)
		if err := rows.Scan(&version, &level, &cType, &value, &isActive); err != nil {
			return 0, nil, fmt.Errorf("failed to scan commission schedule row: %w", err)
		}
		if !level.Valid {
			continue // schedule with no entries
		}
		rules = append(rules, mapping.ToDomainCommissionRule(models.CommissionScheduleEntry{
			Level:           int(level.Int32),
			CommissionType:  cType.String,
			CommissionValue: value.Decimal,
			IsActive:        isActive.Bool,
			Version:         version,
		}))
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("error iterating commission schedule rows: %w", err)
	}
	return version, rules, nil
}

// ReplaceSchedule must run inside a unit of work: the version bump locks the meta row,
// then the entries are swapped with one batch.
func (r *PgxCommissionScheduleRepository) ReplaceSchedule(ctx context.Context, entries []domain.CommissionRule, updatedBy string) (int64, error) {
	var version int64
	err := r.db.QueryRow(ctx, `
		UPDATE commission_schedule_meta
		SET version = version + 1, updated_by = $1, updated_at = NOW()
		RETURNING version;
	`, updatedBy).Scan(&version)
	if err != nil {
		return 0, convertErr(err, "bump commission schedule version")
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM commission_schedule_entries;`)
	for _, e := range entries {
		m := mapping.ToModelScheduleEntry(e, version, updatedBy, now)
		batch.Queue(`
			INSERT INTO commission_schedule_entries (level, commission_type, commission_value, is_active, version, updated_by, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7);
		`, m.Level, m.CommissionType, m.CommissionValue, m.IsActive, m.Version, m.UpdatedBy, m.UpdatedAt)
	}

	results := r.db.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return 0, convertErr(err, "replace commission schedule statement %d", i)
		}
	}
	if err := results.Close(); err != nil {
		return 0, convertErr(err, "replace commission schedule")
	}
	return version, nil
}
