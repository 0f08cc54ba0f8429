package services

import "github.com/prometheus/client_golang/prometheus"

var (
	ledgerPostings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_postings_total",
			Help: "Ledger credits and debits, by direction, ledger and result",
		},
		[]string{"direction", "ledger", "result"},
	)
	commissionLevels = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_commission_levels_total",
			Help: "Fan-out levels processed, by outcome",
		},
		[]string{"outcome"},
	)
	commissionAmount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_commission_amount_total",
			Help: "Commission credited to ancestors, in ledger units",
		},
		[]string{"ledger"},
	)
	commissionChainCorrupted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "referral_chain_corrupted_total",
			Help: "Fan-outs that hit a referral cycle",
		},
	)
	earningEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "earning_events_total",
			Help: "Earning events recorded, by kind and result",
		},
		[]string{"kind", "result"},
	)
	scheduleVersion = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "commission_schedule_version",
			Help: "Version of the commission schedule snapshot in use",
		},
	)
)

func init() {
	prometheus.MustRegister(ledgerPostings, commissionLevels, commissionAmount, commissionChainCorrupted, earningEvents, scheduleVersion)
}
