package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compscore_sync_runs_total",
		Help: "Total sync attempts by provider and terminal status",
	}, []string{"provider", "status"})

	tokenRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compscore_token_refresh_total",
		Help: "OAuth token refresh attempts by provider and result",
	}, []string{"provider", "result"})

	campaignsSyncedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compscore_campaigns_synced_total",
		Help: "Campaign rows upserted by provider",
	}, []string{"provider"})

	comparisonsUpsertedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compscore_comparisons_upserted_total",
		Help: "Benchmark comparison rows upserted by provider",
	}, []string{"provider"})

	comparisonErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compscore_comparison_errors_total",
		Help: "Comparisons skipped due to scoring errors",
	}, []string{"provider"})

	fetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compscore_fetch_errors_total",
		Help: "Fatal fetch errors by provider and kind",
	}, []string{"provider", "kind"})
)
