package trade

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the searcher's prometheus collectors, labeled by trade type.
type Metrics struct {
	searchDuration *prometheus.HistogramVec
	prunedBranches *prometheus.CounterVec
	routesFound    *prometheus.CounterVec
}

func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clamm",
			Subsystem: "trade",
			Name:      "search_duration_seconds",
			Help:      "Duration of best-route searches.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"trade_type"}),
		prunedBranches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clamm",
			Subsystem: "trade",
			Name:      "search_pruned_branches_total",
			Help:      "Search branches abandoned because a pool simulation failed.",
		}, []string{"trade_type"}),
		routesFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clamm",
			Subsystem: "trade",
			Name:      "search_routes_found_total",
			Help:      "Viable routes returned by best-route searches.",
		}, []string{"trade_type"}),
	}
	registry.MustRegister(m.searchDuration, m.prunedBranches, m.routesFound)
	return m
}
