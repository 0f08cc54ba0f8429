package mapping

import (
	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	"github.com/SscSPs/rewards_ledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:     d.AccountID,
		PointsBalance: d.PointsBalance,
		CashBalance:   d.CashBalance,
		TotalEarnings: d.TotalEarnings,
		ReferredBy:    d.ReferredBy,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:     m.AccountID,
		PointsBalance: m.PointsBalance,
		CashBalance:   m.CashBalance,
		TotalEarnings: m.TotalEarnings,
		ReferredBy:    m.ReferredBy,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}
