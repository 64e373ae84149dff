package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricsNamespace = "wdlauncher"
)

var (
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	hookSetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "hook_sets_total",
		Help:      "Count of executed hook sets per lifecycle point",
	}, []string{
		"lifecycle",
	})

	hookEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "hook_entries_total",
		Help:      "Count of hook entries handed to the engine per lifecycle point",
	}, []string{
		"lifecycle",
	})

	hookFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "hook_failures_total",
		Help:      "Count of hook failures by lifecycle point and severity",
	}, []string{
		"lifecycle",
		"severity",
	})

	runResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_results",
		Help:      "Result of launcher runs",
	}, []string{
		"run_id",
		"result",
	})

	workerSessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "worker_sessions_total",
		Help:      "Count of worker sessions by status",
	}, []string{
		"run_id",
		"status",
	})

	runDurationSeconds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of the last launcher run",
	}, []string{
		"run_id",
	})
)

// RecordError increments the count for the named error.
func RecordError(name string) {
	errorsTotal.WithLabelValues(name).Inc()
}

// RecordErrorDetails concatenates the error message onto the name and
// records it.
func RecordErrorDetails(name string, err error) {
	if err == nil {
		RecordError(name)
		return
	}
	RecordError(name + ": " + err.Error())
}

// RecordHookSet records one execution of a lifecycle point's hook set.
func RecordHookSet(lifecycle string, entries int) {
	hookSetsTotal.WithLabelValues(lifecycle).Inc()
	hookEntriesTotal.WithLabelValues(lifecycle).Add(float64(entries))
}

// RecordHookFailure records a single hook failure, split by severity.
func RecordHookFailure(lifecycle string, severe bool) {
	severity := "ordinary"
	if severe {
		severity = "severe"
	}
	hookFailuresTotal.WithLabelValues(lifecycle, severity).Inc()
}

// RecordRun records the aggregate outcome of a launcher run.
func RecordRun(runID string, result string, passed, failed int, duration time.Duration) {
	runResults.WithLabelValues(runID, result).Set(1)
	workerSessionsTotal.WithLabelValues(runID, "pass").Add(float64(passed))
	workerSessionsTotal.WithLabelValues(runID, "fail").Add(float64(failed))
	runDurationSeconds.WithLabelValues(runID).Set(duration.Seconds())
}
