package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ReportsProcessedTotal counts full pipeline runs by outcome.
	ReportsProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roadcondition",
		Subsystem: "pipeline",
		Name:      "reports_processed_total",
		Help:      "Total number of reports run through the scoring pipeline, labeled by result.",
	}, []string{"result"})

	// EstimatorDurationSeconds is the wall time per estimator per report.
	EstimatorDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "roadcondition",
		Subsystem: "pipeline",
		Name:      "estimator_duration_seconds",
		Help:      "Time spent in each estimator per report.",
		// Keep buckets fairly coarse to avoid high-cardinality time series.
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60},
	}, []string{"estimator"})

	// JudgeUnavailableTotal counts reports scored without a judge vector.
	JudgeUnavailableTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roadcondition",
		Subsystem: "pipeline",
		Name:      "judge_unavailable_total",
		Help:      "Total number of reports where the judge call failed or returned unparseable output.",
	})

	// ImagesDroppedTotal counts images dropped because the detector could not process them.
	ImagesDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roadcondition",
		Subsystem: "pipeline",
		Name:      "images_dropped_total",
		Help:      "Total number of report images dropped due to detector failures.",
	})

	// FoldInFailuresTotal counts failed location aggregate updates.
	FoldInFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roadcondition",
		Subsystem: "aggregator",
		Name:      "fold_in_failures_total",
		Help:      "Total number of failed location aggregate fold-ins.",
	})
)

// Register registers pipeline metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ReportsProcessedTotal,
			EstimatorDurationSeconds,
			JudgeUnavailableTotal,
			ImagesDroppedTotal,
			FoldInFailuresTotal,
		)
	})
}
