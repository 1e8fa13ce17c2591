package telemetry

import "github.com/prometheus/client_golang/prometheus"

var ScheduleRunsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "grafik",
		Subsystem: "schedule",
		Name:      "runs_total",
		Help:      "Total number of schedule generation runs, by outcome.",
	},
	[]string{"outcome"}, // "complete" | "partial" | "invalid_input"
)

var ScheduleTrialsRun = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "grafik",
		Subsystem: "schedule",
		Name:      "trials_run",
		Help:      "Number of trials actually executed per generation request, including rescue-pass trials.",
		Buckets:   []float64{50, 100, 250, 500, 750, 1000, 1500},
	},
	[]string{"mode"}, // "primary" | "rescue"
)

var ScheduleBestScore = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "grafik",
		Subsystem: "schedule",
		Name:      "best_score",
		Help:      "Score of the best-scoring trial kept for a generation request.",
		Buckets:   prometheus.ExponentialBuckets(1000, 4, 12),
	},
	[]string{"period_start_month"},
)

var ScheduleUnfilledDays = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "grafik",
		Subsystem: "schedule",
		Name:      "unfilled_days",
		Help:      "Number of UNFILLED days in the roster returned to the caller.",
		Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
	},
	[]string{"period_start_month"},
)

var ScheduleDeniedFixedClaims = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "grafik",
		Subsystem: "schedule",
		Name:      "denied_fixed_claims_total",
		Help:      "Total number of FIXED claims denied to a conflicting doctor across all runs.",
	},
)

var PreferenceStoreOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "grafik",
		Subsystem: "preferences",
		Name:      "store_operations_total",
		Help:      "Total number of preference store load/save operations, by backend and outcome.",
	},
	[]string{"backend", "op", "outcome"},
)

var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "grafik",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	},
	[]string{"method", "route", "status"},
)

var SlackNotificationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "grafik",
		Subsystem: "slack",
		Name:      "notifications_total",
		Help:      "Total number of Slack notifications sent, by outcome.",
	},
	[]string{"outcome"},
)

// All returns every metric this service registers.
func All() []prometheus.Collector {
	return []prometheus.Collector{
		ScheduleRunsTotal,
		ScheduleTrialsRun,
		ScheduleBestScore,
		ScheduleUnfilledDays,
		ScheduleDeniedFixedClaims,
		PreferenceStoreOperations,
		HTTPRequestDuration,
		SlackNotificationsTotal,
	}
}
