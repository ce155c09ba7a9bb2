package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Cascade/internal/costs"
)

// CostRepo — персистентное хранилище записей о стоимости.
// Реализует costs.Collector.
type CostRepo struct {
	pool *pgxpool.Pool
}

// NewCostRepo создаёт новый CostRepo.
func NewCostRepo(pool *pgxpool.Pool) *CostRepo {
	return &CostRepo{pool: pool}
}

// RecordCost сохраняет одну запись о стоимости.
func (r *CostRepo) RecordCost(ctx context.Context, entry costs.Entry) error {
	tokensJSON, err := json.Marshal(entry.Tokens)
	if err != nil {
		return fmt.Errorf("marshal tokens: %w", err)
	}

	query := `
		INSERT INTO cost_entries (run_id, graph_id, node_id, node_type,
		                          provider, model, category, cost, tokens, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.pool.Exec(ctx, query,
		entry.RunID,
		nullString(entry.GraphID),
		entry.NodeID,
		entry.NodeType,
		entry.Provider,
		nullString(entry.Model),
		string(entry.Category),
		entry.Cost,
		tokensJSON,
		entry.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cost entry: %w", err)
	}
	return nil
}
