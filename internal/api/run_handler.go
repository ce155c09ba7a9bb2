package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/engine"
	"github.com/shaiso/Cascade/internal/orchestrator"
	"github.com/shaiso/Cascade/internal/repo"
)

// RunGraph валидирует граф и запускает его асинхронно.
// POST /api/v1/graphs/run
func (h *Handler) RunGraph(w http.ResponseWriter, r *http.Request) {
	var req RunGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if len(req.Graph.Nodes) == 0 {
		BadRequest(w, "graph has no nodes")
		return
	}

	run, err := h.orch.Launch(r.Context(), &req.Graph, req.CallerID)
	if err != nil {
		var structural *engine.StructuralError
		if errors.As(err, &structural) {
			InvalidGraph(w, structural)
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Created(w, RunFromDomain(run))
}

// GetRun возвращает run по ID.
// GET /api/v1/runs/{id}
//
// Run, вытесненный из in-memory окна оркестратора, поднимается из
// персистентного архива, когда тот подключён.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	run, err := h.orch.GetRun(id)
	if err != nil {
		if errors.Is(err, orchestrator.ErrRunNotFound) {
			h.getArchivedRun(w, r, id)
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Success(w, RunFromDomain(run))
}

// getArchivedRun — фоллбэк GetRun на персистентный архив.
func (h *Handler) getArchivedRun(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if h.archive == nil {
		NotFound(w, "run not found")
		return
	}

	run, err := h.archive.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			NotFound(w, "run not found")
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Success(w, RunFromDomain(run))
}

// ListRuns возвращает активные и недавние runs.
// GET /api/v1/runs
//
// Параметры graph_id, status, limit, offset переключают запрос на
// персистентный архив (когда он подключён); без параметров отдаётся
// in-memory окно оркестратора.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filtered := q.Get("graph_id") != "" || q.Get("status") != "" ||
		q.Get("limit") != "" || q.Get("offset") != ""

	if filtered && h.archive != nil {
		h.listArchivedRuns(w, r)
		return
	}

	runs := h.orch.ListRuns()

	result := make([]RunSummary, len(runs))
	for i, run := range runs {
		result[i] = SummaryFromDomain(run)
	}

	List(w, result, len(result))
}

// listArchivedRuns отдаёт отфильтрованный список из архива.
func (h *Handler) listArchivedRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	runs, err := h.archive.List(r.Context(), repo.RunFilter{
		GraphID: q.Get("graph_id"),
		Status:  domain.RunStatus(q.Get("status")),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	result := make([]RunSummary, len(runs))
	for i := range runs {
		result[i] = SummaryFromDomain(&runs[i])
	}

	List(w, result, len(result))
}
