package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	parseJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spendlens_parse_jobs_total",
		Help: "Parse jobs by terminal status.",
	}, []string{"status"})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spendlens_parse_queue_depth",
		Help: "Parse jobs waiting for a worker.",
	})
)
