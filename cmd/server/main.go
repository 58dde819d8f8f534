package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	accesshandler "medchain/internal/access/handler"
	accessmetrics "medchain/internal/access/metrics"
	accessservice "medchain/internal/access/service"
	accessstore "medchain/internal/access"
	audithandler "medchain/internal/audit/handler"
	emergencyhandler "medchain/internal/emergency/handler"
	emergencyservice "medchain/internal/emergency/service"
	emergencystore "medchain/internal/emergency"
	"medchain/internal/identitytoken"
	"medchain/internal/platform/config"
	"medchain/internal/platform/httpserver"
	"medchain/internal/platform/logger"
	"medchain/internal/platform/metrics"
	"medchain/internal/platform/postgres"
	platformredis "medchain/internal/platform/redis"
	recordhandler "medchain/internal/records/handler"
	recordmetrics "medchain/internal/records/metrics"
	recordservice "medchain/internal/records/service"
	recordstore "medchain/internal/records"
	httptransport "medchain/internal/transport/http"
	id "medchain/pkg/domain"
	"medchain/pkg/platform/audit"
	auditmemory "medchain/pkg/platform/audit/store/memory"
	auditpostgres "medchain/pkg/platform/audit/store/postgres"
	"medchain/pkg/platform/audit/publisher"
	auditworker "medchain/pkg/platform/audit/worker"
	"medchain/pkg/platform/tx"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages. With no POSTGRES_URL the
// process runs fully in memory, which is what the dev and test setups use.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
	}

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var (
		runner     tx.Runner
		recStore   recordstore.Store
		grantStore accessstore.Store
		emgStore   emergencystore.Store
		auditStore audit.Store
	)
	if db != nil {
		runner = tx.NewSQLRunner(db)
		recStore = recordstore.NewPostgresStore(db)
		grantStore = accessstore.NewPostgresStore(db)
		emgStore = emergencystore.NewPostgresStore(db)
		auditStore = auditpostgres.New(db)
	} else {
		runner = tx.NewSerialRunner()
		recStore = recordstore.NewInMemoryStore()
		grantStore = accessstore.NewInMemoryStore()
		emgStore = emergencystore.NewInMemoryStore()
		auditStore = auditmemory.NewInMemoryStore()
	}

	emergencySvc := emergencyservice.New(emgStore, auditStore, runner, log)
	if err := emergencySvc.Seed(ctx, id.Identity(cfg.AdminOwner)); err != nil {
		log.Error("failed to seed administrative owner", "error", err)
		os.Exit(1)
	}

	accessSvc := accessservice.New(grantStore, recStore, emergencySvc, auditStore, runner, log,
		accessservice.WithMetrics(accessmetrics.New()))
	recordSvc := recordservice.New(recStore, accessSvc, emergencySvc, auditStore, runner, log,
		recordservice.WithMetrics(recordmetrics.New()))

	validator := identitytoken.NewService(cfg.JWTSigningKey, "medchain")

	var checkers []httptransport.HealthChecker
	if db != nil {
		checkers = append(checkers, dbHealth{db: db})
	}
	if redisClient != nil {
		checkers = append(checkers, redisClient)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:    log,
		Metrics:   metrics.New(),
		Validator: validator,
		Redis:     redisClient,
		RateLimit: config.DefaultRateLimit,
		Handlers: []httptransport.Registrar{
			recordhandler.New(recordSvc, log),
			accesshandler.New(accessSvc, log),
			emergencyhandler.New(emergencySvc, log),
			audithandler.New(auditStore, log),
		},
		Checkers: checkers,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting medchain server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// The outbox worker needs both a durable outbox and a broker to drain to.
	if db != nil && len(cfg.KafkaBrokers) > 0 {
		kafka, err := publisher.NewKafka(ctx, cfg.KafkaBrokers, publisher.WithLogger(log))
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()

		worker := auditworker.New(db, kafka, log)
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// dbHealth adapts the package-level postgres health check to the router's
// checker interface.
type dbHealth struct {
	db *sql.DB
}

func (h dbHealth) Health(ctx context.Context) error {
	return postgres.Health(ctx, h.db)
}
