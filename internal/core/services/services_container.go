package services

import (
	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/rewards_ledger/internal/core/ports/services"
)

// ContainerOptions carries optional collaborators living outside the relational store.
type ContainerOptions struct {
	// ReferralLinkWriter receives every new referral link, e.g. the graph projection.
	ReferralLinkWriter portsrepo.ReferralLinkWriter
	// SchedulePublisher announces new schedule versions to other replicas.
	SchedulePublisher portsrepo.ScheduleChangePublisher
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(settings LedgerSettings, repos portsrepo.RepositoryProvider, opts ContainerOptions) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	var accountOptions []ServiceOption
	if opts.ReferralLinkWriter != nil {
		accountOptions = append(accountOptions, WithReferralLinkWriter(opts.ReferralLinkWriter))
	}
	container.Account = NewAccountService(repos.Work, accountOptions...)

	var scheduleOptions []ScheduleOption
	if opts.SchedulePublisher != nil {
		scheduleOptions = append(scheduleOptions, WithSchedulePublisher(opts.SchedulePublisher))
	}
	container.Schedule = NewCommissionScheduleService(repos.Work, scheduleOptions...)

	container.Ledger = NewLedgerService(repos.Work, settings)
	container.ReferralGraph = NewReferralGraphService(repos.ReferralLinks)
	container.Distributor = NewCommissionDistributor(repos.Work, container.ReferralGraph, container.Schedule, container.Ledger, settings)
	container.Earning = NewEarningService(repos.Work, container.Ledger, container.Distributor, settings)

	return container
}
