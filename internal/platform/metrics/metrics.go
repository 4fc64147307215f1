// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionsFinished counts submissions reaching a terminal status.
	SubmissionsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eco_missions_submissions_finished_total",
		Help: "Submissions that reached a terminal status, by status.",
	}, []string{"status"})

	// CoinsCredited counts coins applied to participant balances.
	CoinsCredited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eco_missions_coins_credited_total",
		Help: "Total coins credited through the ledger.",
	})

	// ExpiredJoinRejections counts join attempts against expired events.
	ExpiredJoinRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eco_missions_expired_join_rejections_total",
		Help: "Join attempts rejected because the event already started.",
	})
)
