package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presext_jobs_processed_total",
		Help: "Total number of jobs processed, by status",
	}, []string{"status"})

	JobProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "presext_job_analysis_duration_seconds",
		Help:    "Duration of slide analysis pipeline stages",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	SlidesDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presext_slides_detected_total",
		Help: "Total number of slides detected across all jobs",
	})

	FramesAnalyzedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presext_frames_analyzed_total",
		Help: "Total number of frames fed through the change detector",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "presext_active_workers",
		Help: "Number of currently active workers processing jobs",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presext_retry_total",
		Help: "Total number of retries",
	}, []string{"attempt"})
)
