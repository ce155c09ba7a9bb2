package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/stream"
	"github.com/shaiso/Cascade/internal/telemetry"
)

// StreamRun отдаёт события выполнения run как Server-Sent Events.
// GET /api/v1/runs/{id}/stream
//
// Кадр: "event: <type>\ndata: <json>\n\n". Первым всегда идёт
// синтетическое событие connected; после закрытия очереди подписчику
// отправляется синтетическое complete, и соединение закрывается.
func (h *Handler) StreamRun(w http.ResponseWriter, r *http.Request) {
	if h.bus == nil {
		Error(w, http.StatusServiceUnavailable, ErrCodeInternalError, "streaming is not enabled")
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		InternalError(w, h.logger, errors.New("response writer does not support flushing"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	telemetry.StreamSubscribers.Inc()
	defer telemetry.StreamSubscribers.Dec()

	id := runID.String()

	writeSSE(w, domain.NewStreamEvent(domain.EventConnected, id, "", nil))
	flusher.Flush()

	for {
		ev, err := h.bus.Next(r.Context(), id)
		switch {
		case err == nil:
			writeSSE(w, ev)
			flusher.Flush()

		case errors.Is(err, stream.ErrPollTimeout):
			// Keep-alive комментарий, чтобы прокси не закрывали
			// простаивающее соединение.
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()

		case errors.Is(err, stream.ErrStreamClosed):
			writeSSE(w, domain.NewStreamEvent(domain.EventComplete, id, "", nil))
			flusher.Flush()
			return

		default:
			// Контекст клиента отменён.
			return
		}
	}
}

// writeSSE пишет один SSE-кадр.
func writeSSE(w http.ResponseWriter, ev domain.StreamEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
}
