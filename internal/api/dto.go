package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Cascade/internal/domain"
)

// Run DTOs

// RunGraphRequest — запрос на выполнение графа.
type RunGraphRequest struct {
	Graph    domain.Graph `json:"graph"`
	CallerID string       `json:"caller_id,omitempty"`
}

// RunResponse — ответ с run.
type RunResponse struct {
	ID          uuid.UUID                     `json:"id"`
	GraphID     string                        `json:"graph_id"`
	Status      domain.RunStatus              `json:"status"`
	StartedAt   time.Time                     `json:"started_at"`
	CompletedAt *time.Time                    `json:"completed_at,omitempty"`
	TotalCost   float64                       `json:"total_cost"`
	Results     map[string]*domain.NodeResult `json:"results,omitempty"`
	Trace       []domain.TraceStep            `json:"trace,omitempty"`
	Error       string                        `json:"error,omitempty"`
}

// RunFromDomain конвертирует domain.Run в RunResponse.
func RunFromDomain(run *domain.Run) RunResponse {
	return RunResponse{
		ID:          run.ID,
		GraphID:     run.GraphID,
		Status:      run.Status,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
		TotalCost:   run.TotalCost,
		Results:     run.Results,
		Trace:       run.Trace,
		Error:       run.Error,
	}
}

// RunSummary — сокращённый run для списков.
type RunSummary struct {
	ID          uuid.UUID        `json:"id"`
	GraphID     string           `json:"graph_id"`
	Status      domain.RunStatus `json:"status"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	TotalCost   float64          `json:"total_cost"`
	Nodes       int              `json:"nodes"`
	Error       string           `json:"error,omitempty"`
}

// SummaryFromDomain конвертирует domain.Run в RunSummary.
func SummaryFromDomain(run *domain.Run) RunSummary {
	return RunSummary{
		ID:          run.ID,
		GraphID:     run.GraphID,
		Status:      run.Status,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
		TotalCost:   run.TotalCost,
		Nodes:       len(run.Results),
		Error:       run.Error,
	}
}
