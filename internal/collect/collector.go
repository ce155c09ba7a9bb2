package collect

import (
	"log/slog"

	"github.com/shaiso/Cascade/internal/domain"
)

// Collector собирает входы узла из результатов предшественников.
type Collector struct {
	mode   RoutingMode
	merge  PriorityMerge
	logger *slog.Logger
}

// Config — конфигурация Collector.
type Config struct {
	// Mode — режим маршрутизации (default: RouteDirectOnly).
	Mode RoutingMode

	// Merge — стратегия слияния (default: NewSemanticMerge()).
	Merge PriorityMerge

	// Logger — логгер.
	Logger *slog.Logger
}

// New создаёт новый Collector.
func New(cfg Config) *Collector {
	mode := cfg.Mode
	if mode == "" {
		mode = RouteDirectOnly
	}

	merge := cfg.Merge
	if merge == nil {
		merge = NewSemanticMerge()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Collector{
		mode:   mode,
		merge:  merge,
		logger: logger,
	}
}

// Collect собирает и сливает входы узла.
//
// outputs — уже вычисленные результаты узлов (nodeID → outputs);
// выполнение идёт в топологическом порядке, поэтому результаты всех
// предшественников гарантированно доступны.
//
// Collect никогда не возвращает ошибку: при внутреннем сбое маппинга
// логируется предупреждение и возвращается разрешённое подмножество —
// частичная карта входов считается валидной.
func (c *Collector) Collect(g *domain.Graph, nodeID string, outputs map[string]map[string]any) (result InputMap) {
	result = make(InputMap)

	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("input mapping failed, returning partial inputs",
				"node_id", nodeID,
				"panic", r,
			)
		}
	}()

	sources := gatherSources(g, nodeID, outputs, c.mode)

	// Сначала все прямые источники (безусловные записи), затем
	// косвенные (условные): gatherSources возвращает их именно в этом
	// порядке.
	for _, src := range sources {
		if src.Direct {
			c.merge.MergeDirect(result, src)
		} else {
			c.merge.MergeIndirect(result, src)
		}
	}

	reconcile(result, g.NodeByID(nodeID))

	return result
}
