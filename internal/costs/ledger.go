package costs

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaiso/Cascade/internal/domain"
)

// Entry — классифицированная запись о стоимости одного узла.
type Entry struct {
	RunID    string         `json:"run_id"`
	GraphID  string         `json:"graph_id,omitempty"`
	NodeID   string         `json:"node_id"`
	NodeType string         `json:"node_type"`
	Provider string         `json:"provider"`
	Model    string         `json:"model,omitempty"`
	Category Category       `json:"category"`
	Cost     float64        `json:"cost"`
	Tokens   map[string]int `json:"tokens,omitempty"`

	RecordedAt time.Time `json:"recorded_at"`
}

// Collector принимает записи о стоимости.
// Реализации: репозиторий БД, публикатор MQ, in-memory для тестов.
type Collector interface {
	RecordCost(ctx context.Context, entry Entry) error
}

// Ledger классифицирует стоимость узлов и рассылает её коллекторам.
type Ledger struct {
	collectors []Collector
	logger     *slog.Logger
}

// NewLedger создаёт Ledger. Работает и без коллекторов: записи тогда
// только логируются.
func NewLedger(logger *slog.Logger, collectors ...Collector) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		collectors: collectors,
		logger:     logger,
	}
}

// Track классифицирует результат узла и пересылает запись коллекторам.
//
// Узлы без стоимости и токенов пропускаются. Сбой коллектора
// логируется и не прерывает ни рассылку остальным, ни выполнение.
func (l *Ledger) Track(ctx context.Context, runID, graphID string, nodeType string, res *domain.NodeResult) {
	if res == nil || (res.Cost == 0 && len(res.TokensUsed) == 0) {
		return
	}

	model := ""
	if res.Output != nil {
		model, _ = res.Output["model"].(string)
	}

	entry := Entry{
		RunID:      runID,
		GraphID:    graphID,
		NodeID:     res.NodeID,
		NodeType:   nodeType,
		Provider:   InferProvider(model),
		Model:      model,
		Category:   Classify(nodeType),
		Cost:       res.Cost,
		Tokens:     res.TokensUsed,
		RecordedAt: time.Now().UTC(),
	}

	l.logger.Info("cost recorded",
		"run_id", runID,
		"node_id", res.NodeID,
		"category", string(entry.Category),
		"provider", entry.Provider,
		"cost", entry.Cost,
	)

	for _, c := range l.collectors {
		if err := c.RecordCost(ctx, entry); err != nil {
			l.logger.Warn("cost collector failed",
				"run_id", runID,
				"node_id", res.NodeID,
				"error", err,
			)
		}
	}
}
