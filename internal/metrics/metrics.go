package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// RunsTotal counts finished runs by job and result (succeeded, halted, failed).
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caption_pipeline",
		Name:      "runs_total",
		Help:      "Total number of pipeline runs, labeled by job and result.",
	}, []string{"job", "result"})

	// HaltsTotal counts runs that stopped early, by halt reason.
	HaltsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caption_pipeline",
		Name:      "halts_total",
		Help:      "Total number of runs halted before completion, labeled by halt reason.",
	}, []string{"halt"})

	// StageDurationSeconds is time spent in each remote call stage.
	StageDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "caption_pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Time spent per pipeline stage (caption, catalog, translate, synthesize).",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"stage"})

	// CatalogLanguages is the size of the current language catalog snapshot.
	CatalogLanguages = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "caption_pipeline",
		Name:      "catalog_languages",
		Help:      "Number of languages in the current catalog snapshot.",
	})
)

// Register registers pipeline metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			RunsTotal,
			HaltsTotal,
			StageDurationSeconds,
			CatalogLanguages,
		)
	})
}

// ObserveStage records the time elapsed since start for stage
func ObserveStage(stage string, start time.Time) {
	StageDurationSeconds.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
