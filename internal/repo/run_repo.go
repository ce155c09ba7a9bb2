package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Cascade/internal/domain"
)

// RunRepo — репозиторий для работы с runs.
//
// Оркестратор сохраняет run целиком в терминальном статусе; результаты
// и трассировка лежат JSON-документами.
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo создаёт новый RunRepo.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// SaveRun вставляет или обновляет run.
func (r *RunRepo) SaveRun(ctx context.Context, run *domain.Run) error {
	resultsJSON, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	traceJSON, err := json.Marshal(run.Trace)
	if err != nil {
		return fmt.Errorf("marshal trace: %w", err)
	}

	query := `
		INSERT INTO runs (id, graph_id, status, started_at, completed_at,
		                  total_cost, results, trace, error, caller_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    completed_at = EXCLUDED.completed_at,
		    total_cost = EXCLUDED.total_cost,
		    results = EXCLUDED.results,
		    trace = EXCLUDED.trace,
		    error = EXCLUDED.error
	`
	_, err = r.pool.Exec(ctx, query,
		run.ID,
		run.GraphID,
		run.Status,
		run.StartedAt,
		run.CompletedAt,
		run.TotalCost,
		resultsJSON,
		traceJSON,
		nullString(run.Error),
		nullString(run.CallerID),
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// GetByID возвращает run по ID.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	query := `
		SELECT id, graph_id, status, started_at, completed_at,
		       total_cost, results, trace, error, caller_id
		FROM runs
		WHERE id = $1
	`
	return scanRun(r.pool.QueryRow(ctx, query, id))
}

// List возвращает список runs с фильтрацией.
// Нулевой Limit заменяется умолчанием.
func (r *RunRepo) List(ctx context.Context, filter RunFilter) ([]domain.Run, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	query := `
		SELECT id, graph_id, status, started_at, completed_at,
		       total_cost, results, trace, error, caller_id
		FROM runs
		WHERE ($1::text IS NULL OR graph_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY started_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(filter.GraphID),
		nullString(string(filter.Status)),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// --- Helpers ---

// RunFilter — параметры фильтрации runs.
type RunFilter struct {
	GraphID string
	Status  domain.RunStatus
	Limit   int
	Offset  int
}

// scanRun сканирует одну строку в Run.
func scanRun(row pgx.Row) (*domain.Run, error) {
	var run domain.Run
	var resultsJSON, traceJSON []byte
	var runError, callerID *string

	err := row.Scan(
		&run.ID,
		&run.GraphID,
		&run.Status,
		&run.StartedAt,
		&run.CompletedAt,
		&run.TotalCost,
		&resultsJSON,
		&traceJSON,
		&runError,
		&callerID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	if resultsJSON != nil {
		if err := json.Unmarshal(resultsJSON, &run.Results); err != nil {
			return nil, fmt.Errorf("unmarshal results: %w", err)
		}
	}
	if traceJSON != nil {
		if err := json.Unmarshal(traceJSON, &run.Trace); err != nil {
			return nil, fmt.Errorf("unmarshal trace: %w", err)
		}
	}

	if runError != nil {
		run.Error = *runError
	}
	if callerID != nil {
		run.CallerID = *callerID
	}

	return &run, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
