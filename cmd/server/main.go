package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"pulseboard/internal/audit"
	"pulseboard/internal/dashboard"
	authhandler "pulseboard/internal/identity/handler"
	identityservice "pulseboard/internal/identity/service"
	identitystore "pulseboard/internal/identity/store"
	"pulseboard/internal/identity/token"
	"pulseboard/internal/jobs"
	"pulseboard/internal/notify"
	"pulseboard/internal/pipeline"
	"pulseboard/internal/platform/config"
	"pulseboard/internal/platform/httpserver"
	"pulseboard/internal/platform/logger"
	"pulseboard/internal/platform/metrics"
	"pulseboard/internal/platform/postgres"
	platformredis "pulseboard/internal/platform/redis"
	"pulseboard/internal/records"
	recordstore "pulseboard/internal/records/store"
	httptransport "pulseboard/internal/transport/http"
	"pulseboard/pkg/platform/tx"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx := context.Background()

	db := openDatabase(ctx, cfg, log)
	if db != nil {
		defer db.Close()
	}

	var runner tx.Runner = tx.NopRunner{}
	if db != nil {
		runner = tx.NewSQLRunner(db)
	}

	enqueuer, redisClient := buildEnqueuer(cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	broadcaster, closeBroadcaster := buildBroadcaster(ctx, cfg, log)
	defer closeBroadcaster()

	m := metrics.New()

	var auditStore audit.Store = audit.NewMemoryStore()
	if db != nil {
		auditStore = audit.NewPostgresStore(db)
	}
	recorder := audit.NewRecorder(auditStore)

	var idStore identitystore.Store = identitystore.NewMemory()
	if db != nil {
		idStore = identitystore.NewPostgres(db)
	}
	tokens := token.NewService(cfg.JWTSigningKey, "pulseboard", cfg.TokenTTL)
	identitySvc := identityservice.New(idStore, tokens, recorder, runner, m, log)

	if cfg.SeedAdmin {
		if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
			log.Warn("SEED_ADMIN set but ADMIN_EMAIL or ADMIN_PASSWORD missing, skipping bootstrap")
		} else if err := identitySvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Error("admin bootstrap failed", "error", err)
			os.Exit(1)
		}
	}

	deps := sectorDeps{
		recorder:    recorder,
		enqueuer:    enqueuer,
		broadcaster: broadcaster,
		runner:      runner,
		metrics:     m,
		logger:      log,
	}

	marketing, marketingHandler := newSector[*records.MarketingRecord, records.MarketingPatch](
		deps, db, recordstore.MarketingMapper(), clonePtr[records.MarketingRecord], func() *records.MarketingRecord { return &records.MarketingRecord{} })
	sales, salesHandler := newSector[*records.SalesRecord, records.SalesPatch](
		deps, db, recordstore.SalesMapper(), clonePtr[records.SalesRecord], func() *records.SalesRecord { return &records.SalesRecord{} })
	events, eventsHandler := newSector[*records.EventsRecord, records.EventsPatch](
		deps, db, recordstore.EventsMapper(), clonePtr[records.EventsRecord], func() *records.EventsRecord { return &records.EventsRecord{} })
	hr, hrHandler := newSector[*records.HRRecord, records.HRPatch](
		deps, db, recordstore.HRMapper(), clonePtr[records.HRRecord], func() *records.HRRecord { return &records.HRRecord{} })
	academic, academicHandler := newSector[*records.AcademicRecord, records.AcademicPatch](
		deps, db, recordstore.AcademicMapper(), clonePtr[records.AcademicRecord], func() *records.AcademicRecord { return &records.AcademicRecord{} })
	finance, financeHandler := newSector[*records.FinanceRecord, records.FinancePatch](
		deps, db, recordstore.FinanceMapper(), clonePtr[records.FinanceRecord], func() *records.FinanceRecord { return &records.FinanceRecord{} })

	overview := dashboard.New(marketing, sales, events, hr, academic, finance)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Auth:     authhandler.New(identitySvc, log),
		Resolver: identitySvc,
		Protected: []httptransport.Registrar{
			marketingHandler, salesHandler, eventsHandler, hrHandler, academicHandler, financeHandler,
			httptransport.NewDashboardHandler(overview, log),
			httptransport.NewAuditHandler(recorder, log),
		},
		Health: func(ctx context.Context) error {
			if db != nil {
				if err := db.PingContext(ctx); err != nil {
					return err
				}
			}
			if redisClient != nil {
				return redisClient.Health(ctx)
			}
			return nil
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting pulseboard", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// sectorDeps bundles the shared collaborators every sector pipeline needs.
type sectorDeps struct {
	recorder    *audit.Recorder
	enqueuer    jobs.Enqueuer
	broadcaster notify.Broadcaster
	runner      tx.Runner
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func newSector[T records.Record, P pipeline.Patch[T]](
	deps sectorDeps,
	db *sql.DB,
	mapper recordstore.Mapper[T],
	clone func(T) T,
	newDraft func() T,
) (*pipeline.Service[T, P], httptransport.Registrar) {
	var st recordstore.Store[T]
	if db != nil {
		st = recordstore.NewPostgres(db, mapper)
	} else {
		st = recordstore.NewMemory(clone)
	}
	svc := pipeline.New[T, P](st, deps.recorder, deps.enqueuer, deps.broadcaster,
		deps.runner, deps.metrics, deps.logger, newDraft())
	return svc, httptransport.NewRecordsHandler(svc, newDraft, deps.logger)
}

func openDatabase(ctx context.Context, cfg config.Config, log *slog.Logger) *sql.DB {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, running with in-memory stores")
		return nil
	}
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	return db
}

func buildEnqueuer(cfg config.Config, log *slog.Logger) (jobs.Enqueuer, *platformredis.Client) {
	if cfg.Redis.URL == "" {
		log.Warn("REDIS_URL not set, recompute jobs disabled")
		return jobs.NopEnqueuer{}, nil
	}
	client, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Warn("redis connection failed, recompute jobs disabled", "error", err)
		return jobs.NopEnqueuer{}, nil
	}
	return jobs.NewRedisEnqueuer(client), client
}

func buildBroadcaster(ctx context.Context, cfg config.Config, log *slog.Logger) (notify.Broadcaster, func()) {
	if cfg.KafkaBrokers == "" {
		log.Warn("KAFKA_BROKERS not set, update broadcasting disabled")
		return notify.NopBroadcaster{}, func() {}
	}
	brokers := strings.Split(cfg.KafkaBrokers, ",")
	kafka, err := notify.NewKafkaBroadcaster(ctx, brokers, log)
	if err != nil {
		log.Warn("kafka connection failed, update broadcasting disabled", "error", err)
		return notify.NopBroadcaster{}, func() {}
	}
	return kafka, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := kafka.Close(closeCtx); err != nil {
			log.Warn("kafka close failed", "error", err)
		}
	}
}

func clonePtr[R any](r *R) *R {
	c := *r
	return &c
}
