package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shaiso/Cascade/internal/api"
	"github.com/shaiso/Cascade/internal/costs"
	"github.com/shaiso/Cascade/internal/mq"
	"github.com/shaiso/Cascade/internal/nodes"
	"github.com/shaiso/Cascade/internal/orchestrator"
	"github.com/shaiso/Cascade/internal/repo"
	"github.com/shaiso/Cascade/internal/scheduler"
	"github.com/shaiso/Cascade/internal/stream"
	"github.com/shaiso/Cascade/internal/telemetry"
	"github.com/shaiso/Cascade/internal/trace"
)

var startTime = time.Now()

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting cascade-server")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Подключаемся к базе данных. Без базы сервер работает in-memory:
	// запуски не переживают рестарт, но выполнение не страдает.
	var (
		runStore   orchestrator.RunStore
		runArchive api.RunArchive
		collectors []costs.Collector
	)
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Warn("database unavailable, running without persistence", "error", err)
	} else {
		defer pool.Close()
		logger.Info("connected to database")
		runRepo := repo.NewRunRepo(pool)
		runStore = runRepo
		runArchive = runRepo
		collectors = append(collectors, repo.NewCostRepo(pool))
	}

	// Подключаемся к RabbitMQ. Тоже опционально: зеркало событий
	// best-effort.
	var sinks []orchestrator.EventSink
	sinks = append(sinks, telemetry.NewMetricsSink())

	mqURL := os.Getenv("CASCADE_MQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}
	conn, err := mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Warn("rabbitmq unavailable, running without event mirror", "error", err)
	} else {
		defer conn.Close()
		if err := mq.SetupTopology(ctx, conn); err != nil {
			logger.Warn("failed to declare exchanges", "error", err)
		}
		publisher := mq.NewPublisher(conn, logger)
		sinks = append(sinks, publisher)
		collectors = append(collectors, publisher)
		logger.Info("connected to rabbitmq")
	}

	// Шина событий для SSE-подписчиков
	bus := stream.NewBus(stream.Config{Logger: logger})
	defer bus.Close()

	orch := orchestrator.New(orchestrator.Config{
		Registry: nodes.DefaultRegistry(),
		Stream:   bus,
		Sinks:    sinks,
		Ledger:   costs.NewLedger(logger, collectors...),
		Tracer:   trace.NewLogTracer(logger),
		Store:    runStore,
		Logger:   logger,
	})
	defer orch.Stop()

	// Расписания из конфигурационного файла (опционально)
	sched := scheduler.New(scheduler.Config{Launcher: orch, Logger: logger})
	if path := os.Getenv("CASCADE_SCHEDULES"); path != "" {
		if err := loadSchedules(sched, path); err != nil {
			logger.Error("failed to load schedules", "path", path, "error", err)
			os.Exit(1)
		}
		logger.Info("schedules loaded", "path", path, "count", sched.Count())
	}
	go sched.Start(ctx, time.Second)

	// HTTP
	handler := api.NewHandler(api.Config{
		Orchestrator: orch,
		Bus:          bus,
		Archive:      runArchive,
		Logger:       logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("CASCADE_PORT"); v != "" {
		addr = ":" + v
	}

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}

// loadSchedules читает расписания из JSON-файла и регистрирует их.
func loadSchedules(sched *scheduler.Scheduler, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schedules file: %w", err)
	}

	var schedules []scheduler.Schedule
	if err := json.Unmarshal(data, &schedules); err != nil {
		return fmt.Errorf("parse schedules file: %w", err)
	}

	for _, s := range schedules {
		if err := sched.Add(s); err != nil {
			return err
		}
	}
	return nil
}
