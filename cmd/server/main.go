// Command server wires dependencies, mounts the HTTP API, and owns the
// process lifecycle. Business logic lives in the internal service packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"medcycle/internal/audit"
	"medcycle/internal/audit/kafka"
	"medcycle/internal/auth"
	authhandler "medcycle/internal/auth/handler"
	authservice "medcycle/internal/auth/service"
	"medcycle/internal/info"
	"medcycle/internal/jwttoken"
	"medcycle/internal/medicine"
	medhandler "medcycle/internal/medicine/handler"
	medservice "medcycle/internal/medicine/service"
	"medcycle/internal/platform/config"
	"medcycle/internal/platform/database"
	"medcycle/internal/platform/httpserver"
	"medcycle/internal/platform/logger"
	"medcycle/internal/platform/metrics"
	"medcycle/internal/platform/middleware"
	platformredis "medcycle/internal/platform/redis"
	"medcycle/internal/ratelimit"
	"medcycle/internal/redistribution"
	redisthandler "medcycle/internal/redistribution/handler"
	redistservice "medcycle/internal/redistribution/service"
	"medcycle/internal/supply"
	supplyhandler "medcycle/internal/supply/handler"
	supplyservice "medcycle/internal/supply/service"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		medicineStore medicine.Store
		authStore     auth.Store
		auditStore    audit.Store
	)
	db, err := database.Open(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		medicineStore = medicine.NewPostgresStore(db)
		authStore = auth.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
		log.Info("using postgres storage")
	} else {
		medicineStore = medicine.NewInMemoryStore()
		authStore = auth.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		log.Info("using in-memory storage")
	}
	supplyStore := supply.NewInMemoryStore()
	propositionStore := redistribution.NewInMemoryStore()

	// Audit pipeline: synchronous store append, buffered Kafka forwarding.
	var sinks []audit.Sink
	var kafkaSink *kafka.Sink
	buffer := audit.NewBuffer(1024, log)
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err = kafka.NewSink(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("kafka sink init failed", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sinks = append(sinks, buffer)
		log.Info("audit events forwarded to kafka", "topic", cfg.AuditTopic)
	}
	auditor := audit.NewPublisher(auditStore, log, m.IncAuditFailure, sinks...)

	// Rate limiting: Redis fixed windows, allow-all without Redis.
	var limiter ratelimit.Limiter = ratelimit.AllowAll{}
	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		limiter = ratelimit.NewRedisLimiter(redisClient.Client, 10, time.Minute)
		log.Info("redis rate limiting enabled")
	}

	tokens := jwttoken.NewService(cfg.JWTSigningKey, "medcycle", cfg.TokenTTL)

	authSvc := authservice.New(authStore, tokens, auditor)
	medicineSvc := medservice.New(medicineStore, auditor, m)
	supplySvc := supplyservice.New(supplyStore, auditor)
	redistSvc := redistservice.New(medicineSvc, propositionStore, log)

	if cfg.SeedDevUsers {
		auth.SeedDevUsers(ctx, authStore, log)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Latency(m))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(ratelimit.Middleware(limiter, log))
		authhandler.New(authSvc, log, cfg.TokenTTL).Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens, log))
		medhandler.New(medicineSvc, log).Register(r)
		supplyhandler.New(supplySvc, log).Register(r)
		redisthandler.New(redistSvc, log).Register(r)
		info.New().Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	if kafkaSink != nil {
		worker := audit.NewWorker(kafkaSink, buffer.Events(), log)
		g.Go(func() error {
			err := worker.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		log.Info("starting server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
