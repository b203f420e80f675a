package provisioning

import "github.com/prometheus/client_golang/prometheus"

var (
	// Phase metrics
	phaseTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kubestrap",
			Subsystem: "provisioning",
			Name:      "phase_total",
			Help:      "Total number of phase executions by result",
		},
		[]string{"phase", "result"},
	)

	phaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kubestrap",
			Subsystem: "provisioning",
			Name:      "phase_duration_seconds",
			Help:      "Duration of phase apply in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~7m
		},
		[]string{"phase"},
	)

	// Run metrics
	runTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kubestrap",
			Subsystem: "provisioning",
			Name:      "run_total",
			Help:      "Total number of provisioning runs by role and result",
		},
		[]string{"role", "result"},
	)
)

// Metric result labels.
const (
	resultApplied   = "applied"
	resultSkipped   = "skipped"
	resultReapplied = "reapplied"
	resultFailed    = "failed"
	resultSuccess   = "success"
)

// RegisterMetrics registers provisioning metrics with the given registry.
func RegisterMetrics(registry prometheus.Registerer) error {
	for _, collector := range []prometheus.Collector{phaseTotal, phaseDuration, runTotal} {
		if err := registry.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

func recordPhase(phase, result string) {
	phaseTotal.WithLabelValues(phase, result).Inc()
}

func observePhaseDuration(phase string, seconds float64) {
	phaseDuration.WithLabelValues(phase).Observe(seconds)
}

func recordRun(role Role, result string) {
	runTotal.WithLabelValues(string(role), result).Inc()
}
