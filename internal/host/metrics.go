package host

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	commands        *prometheus.CounterVec
	matchesFormed   prometheus.Counter
	resultsRecorded prometheus.Counter
	syncFailures    prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openplay",
			Name:      "commands_total",
			Help:      "Commands dispatched, by kind and whether they changed the session.",
		}, []string{"kind", "applied"}),
		matchesFormed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "openplay",
			Name:      "matches_formed_total",
			Help:      "Matches placed on a court.",
		}),
		resultsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "openplay",
			Name:      "results_recorded_total",
			Help:      "Match results recorded.",
		}),
		syncFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "openplay",
			Name:      "cloud_sync_failures_total",
			Help:      "Failed session summary uploads.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.commands, m.matchesFormed, m.resultsRecorded, m.syncFailures)
	}
	return m
}
