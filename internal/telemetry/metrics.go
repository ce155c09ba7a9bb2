package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus метрики сервера. Экспортируются на /metrics.
var (
	// RunsStarted — количество запущенных runs.
	RunsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cascade_runs_started_total",
		Help: "Total number of workflow runs started.",
	})

	// RunsCompleted — завершённые runs по статусу.
	RunsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cascade_runs_completed_total",
		Help: "Total number of workflow runs finished, by terminal status.",
	}, []string{"status"})

	// NodesExecuted — выполненные узлы по типу и статусу.
	NodesExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cascade_nodes_executed_total",
		Help: "Total number of node executions, by node type and status.",
	}, []string{"node_type", "status"})

	// RunCost — распределение стоимости завершённых runs.
	RunCost = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cascade_run_cost",
		Help:    "Total cost of finished workflow runs.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 10, 8),
	})

	// HTTPRequests — HTTP запросы по методу, пути и коду ответа.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cascade_http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "code"})

	// StreamSubscribers — активные SSE подписчики.
	StreamSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cascade_stream_subscribers",
		Help: "Number of active SSE subscribers.",
	})
)
