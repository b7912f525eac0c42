package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	apphttp "veriscreen/internal/http"
	"veriscreen/internal/jwttoken"
	"veriscreen/internal/platform/config"
	"veriscreen/internal/platform/httpserver"
	"veriscreen/internal/platform/logger"
	"veriscreen/internal/platform/metrics"
	platformredis "veriscreen/internal/platform/redis"
	"veriscreen/internal/screening/cache"
	screeninghandler "veriscreen/internal/screening/handler"
	screeningmetrics "veriscreen/internal/screening/metrics"
	"veriscreen/internal/screening/service"
	"veriscreen/internal/screening/store/evaluation"
	audit "veriscreen/pkg/platform/audit"
	"veriscreen/pkg/platform/audit/publishers/compliance"
	"veriscreen/pkg/platform/audit/publishers/kafka"
	auditmem "veriscreen/pkg/platform/audit/store/memory"
	auditpg "veriscreen/pkg/platform/audit/store/postgres"
	auditworker "veriscreen/pkg/platform/audit/worker"
)

const (
	tokenIssuer   = "veriscreen"
	tokenAudience = "veriscreen-api"

	eventBufferSize = 256
	shutdownTimeout = 10 * time.Second
)

// main wires dependencies and owns the process lifecycle. Every piece of
// infrastructure is optional: with nothing configured the service runs
// entirely in memory and still evaluates.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := map[string]apphttp.HealthCheck{}

	// Evaluation history store.
	var store service.EvaluationStore = evaluation.NewInMemory()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			return err
		}
		store = evaluation.NewPostgres(pool)
		health["postgres"] = pool.Ping
		log.Info("evaluation store: postgres")
	} else {
		log.Warn("evaluation store: memory (DATABASE_URL not set, history is not durable)")
	}

	// Audit sink. Kafka when brokers are configured, else the postgres
	// outbox, else memory.
	var auditStore audit.Store
	switch {
	case len(cfg.Kafka.Brokers) > 0:
		producer, err := kafka.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return err
		}
		defer producer.Close()
		auditStore = producer
		log.Info("audit sink: kafka", "topic", cfg.Kafka.AuditTopic)
	case cfg.Postgres.URL != "":
		db, err := sql.Open("postgres", cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		auditStore = auditpg.New(db)
		log.Info("audit sink: postgres outbox")
	default:
		auditStore = auditmem.NewInMemoryStore()
		log.Warn("audit sink: memory (events are not durable)")
	}

	compliancePublisher := compliance.New(auditStore,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics()),
	)

	// Async operational and security events drain through the worker.
	events := make(chan audit.Event, eventBufferSize)
	worker := auditworker.NewWorker(auditStore, events, log)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		_ = worker.Run(ctx)
	}()

	// Result cache, only when Redis is configured.
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	var resultCache *cache.ResultCache
	if redisClient != nil {
		defer redisClient.Close()
		resultCache = cache.New(redisClient.Client, cfg.Screening.CacheTTL)
		health["redis"] = redisClient.Health
		log.Info("evaluation cache: redis", "ttl", cfg.Screening.CacheTTL)
	}

	svc := service.New(store, compliancePublisher,
		service.WithLogger(log),
		service.WithMetrics(screeningmetrics.New()),
		service.WithCache(resultCache),
		service.WithAsyncEvents(events),
		service.WithMaxCandidates(cfg.Screening.MaxCandidates),
		service.WithScoreParallelism(cfg.Screening.ScoreParallelism),
	)

	router := apphttp.New(apphttp.Deps{
		Logger:      log,
		Metrics:     metrics.New(),
		Screening:   screeninghandler.New(svc, log),
		JWT:         jwttoken.NewJWTService(cfg.Server.JWTSigningKey, tokenIssuer, tokenAudience),
		RequireAuth: cfg.Server.RequireAuth,
		AdminToken:  cfg.Server.AdminToken,
		APIKeyHash:  cfg.Server.APIKeyHash,
		Events:      events,
		Health:      health,
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting veriscreen", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// The cancelled run context makes the worker flush buffered events and
	// exit; wait so nothing is lost before the sinks close.
	<-workerDone
	return nil
}
