package repositories

import "github.com/SscSPs/rewards_ledger/pkg/uow"

// Names under which repositories are registered with the unit of work.
const (
	AccountRepoName            uow.RepositoryName = "account"
	TransactionRepoName        uow.RepositoryName = "transaction"
	ReferralEarningRepoName    uow.RepositoryName = "referral_earning"
	CommissionScheduleRepoName uow.RepositoryName = "commission_schedule"
	ReferralLinkRepoName       uow.RepositoryName = "referral_link"
)

// RepositoryProvider holds the storage entry points needed by services.
// Work is the unit of work every write goes through; ReferralLinks may be backed
// by a different store than the ledger tables.
type RepositoryProvider struct {
	Work          uow.UOW
	ReferralLinks ReferralLinkReader
}
