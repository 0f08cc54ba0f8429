package mapping

import (
	"database/sql"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	"github.com/SscSPs/rewards_ledger/internal/models"
)

// ToModelReferralEarning converts a domain ReferralEarning to a model ReferralEarning
func ToModelReferralEarning(d domain.ReferralEarning) models.ReferralEarning {
	return models.ReferralEarning{
		EarningID:            d.EarningID,
		EventID:              d.EventID,
		SourceAccountID:      d.SourceAccountID,
		BeneficiaryAccountID: d.BeneficiaryAccountID,
		Level:                d.Level,
		Ledger:               string(d.Ledger),
		BaseAmount:           d.BaseAmount,
		CommissionAmount:     d.CommissionAmount,
		TransactionID:        d.TransactionID,
		ReversesEventID:      sql.NullString{String: d.ReversesEventID, Valid: d.ReversesEventID != ""},
		CreatedAt:            d.CreatedAt,
	}
}

// ToDomainReferralEarning converts a model ReferralEarning to a domain ReferralEarning
func ToDomainReferralEarning(m models.ReferralEarning) domain.ReferralEarning {
	return domain.ReferralEarning{
		EarningID:            m.EarningID,
		EventID:              m.EventID,
		SourceAccountID:      m.SourceAccountID,
		BeneficiaryAccountID: m.BeneficiaryAccountID,
		Level:                m.Level,
		Ledger:               domain.LedgerKind(m.Ledger),
		BaseAmount:           m.BaseAmount,
		CommissionAmount:     m.CommissionAmount,
		TransactionID:        m.TransactionID,
		ReversesEventID:      m.ReversesEventID.String,
		CreatedAt:            m.CreatedAt,
	}
}
