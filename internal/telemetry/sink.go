package telemetry

import "github.com/shaiso/Cascade/internal/domain"

// MetricsSink превращает события выполнения в Prometheus метрики.
// Подключается к оркестратору как дополнительный получатель событий.
type MetricsSink struct{}

// NewMetricsSink создаёт MetricsSink.
func NewMetricsSink() *MetricsSink {
	return &MetricsSink{}
}

// Publish обновляет метрики по событию.
func (s *MetricsSink) Publish(runID string, ev domain.StreamEvent) {
	switch ev.Type {
	case domain.EventLog:
		status, _ := ev.Data["status"].(string)
		switch domain.RunStatus(status) {
		case domain.RunStatusRunning:
			RunsStarted.Inc()
		case domain.RunStatusCompleted, domain.RunStatusFailed:
			RunsCompleted.WithLabelValues(status).Inc()
			if cost, ok := ev.Data["total_cost"].(float64); ok {
				RunCost.Observe(cost)
			}
		}

	case domain.EventNodeCompleted:
		nodeType, _ := ev.Data["node_type"].(string)
		NodesExecuted.WithLabelValues(nodeType, string(domain.NodeCompleted)).Inc()

	case domain.EventNodeFailed:
		nodeType, _ := ev.Data["node_type"].(string)
		NodesExecuted.WithLabelValues(nodeType, string(domain.NodeFailed)).Inc()
	}
}
