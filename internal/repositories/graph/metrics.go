package graph

import "github.com/prometheus/client_golang/prometheus"

var projectionRepairs = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "referral_graph_projection_repairs_total",
		Help: "Accounts missing from the referral graph and read from the accounts store instead",
	},
)

func init() {
	prometheus.MustRegister(projectionRepairs)
}
