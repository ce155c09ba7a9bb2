package api

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/orchestrator"
	"github.com/shaiso/Cascade/internal/repo"
	"github.com/shaiso/Cascade/internal/stream"
)

// RunArchive — персистентный архив запусков (repo.RunRepo).
// Опционален: без него API отвечает только по in-memory окну
// оркестратора, и runs, вытесненные из окна, становятся недоступны.
type RunArchive interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error)
	List(ctx context.Context, filter repo.RunFilter) ([]domain.Run, error)
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	orch    *orchestrator.Orchestrator
	bus     *stream.Bus
	archive RunArchive
	logger  *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Orchestrator *orchestrator.Orchestrator
	Bus          *stream.Bus
	Archive      RunArchive
	Logger       *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		orch:    cfg.Orchestrator,
		bus:     cfg.Bus,
		archive: cfg.Archive,
		logger:  cfg.Logger,
	}
}
