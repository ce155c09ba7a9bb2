package stream

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Cascade/internal/domain"
)

const (
	// defaultQueueSize — ёмкость очереди событий одного запуска.
	defaultQueueSize = 1024

	// defaultPollTimeout — максимальное время ожидания события.
	defaultPollTimeout = 30 * time.Second

	// defaultRemoveGrace — отсрочка удаления очереди после завершения
	// запуска. Даёт подписчику время дочитать хвост.
	defaultRemoveGrace = 5 * time.Second

	// defaultIdleTTL — порог простоя, после которого очередь
	// подметается.
	defaultIdleTTL = 5 * time.Minute

	// sweepInterval — период фоновой уборки.
	sweepInterval = time.Minute
)

// queue — события одного запуска.
type queue struct {
	events     chan domain.StreamEvent
	lastActive time.Time
	removed    bool
}

// Bus — шина событий выполнения.
type Bus struct {
	mu     sync.Mutex
	queues map[string]*queue

	queueSize   int
	pollTimeout time.Duration
	removeGrace time.Duration
	idleTTL     time.Duration

	logger *slog.Logger
	done   chan struct{}
	once   sync.Once
}

// Config — конфигурация Bus. Нулевые значения заменяются умолчаниями.
type Config struct {
	QueueSize   int
	PollTimeout time.Duration
	RemoveGrace time.Duration
	IdleTTL     time.Duration
	Logger      *slog.Logger
}

// NewBus создаёт шину и запускает фоновую уборку простаивающих очередей.
func NewBus(cfg Config) *Bus {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	if cfg.RemoveGrace <= 0 {
		cfg.RemoveGrace = defaultRemoveGrace
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultIdleTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	b := &Bus{
		queues:      make(map[string]*queue),
		queueSize:   cfg.QueueSize,
		pollTimeout: cfg.PollTimeout,
		removeGrace: cfg.RemoveGrace,
		idleTTL:     cfg.IdleTTL,
		logger:      cfg.Logger,
		done:        make(chan struct{}),
	}

	go b.sweepLoop()

	return b
}

// CreateQueue создаёт очередь запуска. Вызывается оркестратором при
// старте, до публикации первого события. Повторный вызов безвреден.
func (b *Bus) CreateQueue(runID string) {
	b.mu.Lock()
	b.ensureQueue(runID)
	b.mu.Unlock()
}

// Publish ставит событие в очередь запуска.
//
// Для запуска без очереди — no-op. Публикация никогда не блокирует:
// при переполнении событие отбрасывается с предупреждением —
// выполнение важнее наблюдения.
func (b *Bus) Publish(runID string, ev domain.StreamEvent) {
	b.mu.Lock()
	q, ok := b.queues[runID]
	if !ok {
		b.mu.Unlock()
		return
	}
	q.lastActive = time.Now()
	b.mu.Unlock()

	select {
	case q.events <- ev:
	default:
		b.logger.Warn("event queue full, dropping event",
			"run_id", runID,
			"event_type", string(ev.Type),
		)
	}
}

// Next возвращает следующее событие запуска.
//
// Блокируется до появления события, но не дольше интервала опроса:
// по истечении возвращается ErrPollTimeout, и подписчик решает,
// опрашивать ли дальше. Для удалённой и исчерпанной очереди — как и
// для запуска без очереди — возвращается ErrStreamClosed.
func (b *Bus) Next(ctx context.Context, runID string) (domain.StreamEvent, error) {
	b.mu.Lock()
	q, ok := b.queues[runID]
	b.mu.Unlock()
	if !ok {
		return domain.StreamEvent{}, ErrStreamClosed
	}

	select {
	case ev := <-q.events:
		return ev, nil
	default:
	}

	b.mu.Lock()
	removed := q.removed
	b.mu.Unlock()
	if removed {
		return domain.StreamEvent{}, ErrStreamClosed
	}

	timer := time.NewTimer(b.pollTimeout)
	defer timer.Stop()

	select {
	case ev := <-q.events:
		return ev, nil
	case <-timer.C:
		return domain.StreamEvent{}, ErrPollTimeout
	case <-ctx.Done():
		return domain.StreamEvent{}, ctx.Err()
	}
}

// Remove помечает очередь запуска к удалению с отсрочкой.
//
// До истечения отсрочки подписчики продолжают дочитывать накопленные
// события; после — очередь удаляется, и Next возвращает ErrStreamClosed.
func (b *Bus) Remove(runID string) {
	b.mu.Lock()
	q, ok := b.queues[runID]
	if !ok {
		b.mu.Unlock()
		return
	}
	q.removed = true
	b.mu.Unlock()

	time.AfterFunc(b.removeGrace, func() {
		b.mu.Lock()
		delete(b.queues, runID)
		b.mu.Unlock()
	})
}

// Close останавливает фоновую уборку.
func (b *Bus) Close() {
	b.once.Do(func() {
		close(b.done)
	})
}

// ensureQueue возвращает очередь запуска, создавая её при
// необходимости. Вызывается под b.mu.
func (b *Bus) ensureQueue(runID string) *queue {
	q, ok := b.queues[runID]
	if !ok {
		q = &queue{
			events:     make(chan domain.StreamEvent, b.queueSize),
			lastActive: time.Now(),
		}
		b.queues[runID] = q
	}
	return q
}

// sweepLoop периодически удаляет простаивающие очереди — страховка от
// запусков, чей поток никто не закрыл.
func (b *Bus) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.sweep()
		case <-b.done:
			return
		}
	}
}

func (b *Bus) sweep() {
	cutoff := time.Now().Add(-b.idleTTL)

	b.mu.Lock()
	defer b.mu.Unlock()

	for runID, q := range b.queues {
		if q.lastActive.Before(cutoff) {
			delete(b.queues, runID)
			b.logger.Info("swept idle event queue", "run_id", runID)
		}
	}
}
