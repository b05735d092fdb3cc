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

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"uppf-claims/internal/audit"
	claimsapp "uppf-claims/internal/claims/application"
	claimsevents "uppf-claims/internal/claims/application/events"
	claimsmemory "uppf-claims/internal/claims/infrastructure/memory"
	claimspg "uppf-claims/internal/claims/infrastructure/postgres"
	"uppf-claims/internal/config"
	"uppf-claims/internal/eventing"
	eventingmemory "uppf-claims/internal/eventing/infrastructure/memory"
	eventingpg "uppf-claims/internal/eventing/infrastructure/postgres"
	"uppf-claims/internal/observability/metrics"
	"uppf-claims/internal/platform/logger"
	settlementevents "uppf-claims/internal/settlement/application/events"
	traceevents "uppf-claims/internal/trace/application/events"
	tracememory "uppf-claims/internal/trace/infrastructure/memory"
	tracepg "uppf-claims/internal/trace/infrastructure/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := config.NewStore(cfg)
	if path := os.Getenv("UPPF_CONFIG"); path != "" {
		watcher, err := config.NewWatcher(path, store, log)
		if err != nil {
			log.Fatal("config watcher error", "error", err)
		}
		if err := watcher.Start(ctx); err != nil {
			log.Fatal("config watcher start error", "error", err)
		}
	}

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Fatal("db open error", "error", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal("db ping error", "error", err)
		}
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	metrics.Init(db, log)

	registry := eventing.NewRegistry(
		traceevents.LiveViolationDetected{},
		traceevents.TraceCompleted{},
		claimsevents.ClaimGenerated{},
		claimsevents.ReconciliationCompleted{},
		claimsevents.ClaimStatusChanged{},
		settlementevents.SettlementCreated{},
		settlementevents.SettlementReconciled{},
	)
	bus := eventing.NewInMemoryBus()
	var outbox eventing.OutboxStore = eventingmemory.NewOutboxStore()
	if db != nil {
		outbox = eventingpg.NewOutboxStore(db)
	}
	publisher, err := eventing.NewOutboxPublisher(outbox, eventing.NewLoggingPublisher(bus, log), registry, log)
	if err != nil {
		log.Fatal("outbox publisher error", "error", err)
	}

	var auditLog audit.Logger = audit.NewMemoryLog()
	if db != nil {
		auditLog = audit.NewRepository(db)
	}
	recorder, err := audit.NewRecorder(auditLog, log)
	if err != nil {
		log.Fatal("audit recorder error", "error", err)
	}
	recorder.Subscribe(bus,
		eventing.EventTypeOf[claimsevents.ClaimGenerated](),
		eventing.EventTypeOf[claimsevents.ClaimStatusChanged](),
		eventing.EventTypeOf[settlementevents.SettlementCreated](),
		eventing.EventTypeOf[settlementevents.SettlementReconciled](),
	)

	policy := store.Policy
	deps, source := buildClaimDeps(db, policy, log)
	deps.Publisher = publisher

	processor, err := claimsapp.NewProcessor(deps, log, claimsapp.WithPolicy(policy))
	if err != nil {
		log.Fatal("processor error", "error", err)
	}
	batch, err := claimsapp.NewBatch(processor, func() int { return store.Snapshot().Schedule.Workers }, log)
	if err != nil {
		log.Fatal("batch error", "error", err)
	}
	lifecycle, err := claimsapp.NewLifecycle(deps.Claims, publisher, log, nil)
	if err != nil {
		log.Fatal("lifecycle error", "error", err)
	}
	scheduler, err := claimsapp.NewScheduler(source, batch, lifecycle, func() config.ScheduleConfig { return store.Snapshot().Schedule }, log)
	if err != nil {
		log.Fatal("scheduler error", "error", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "db unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scheduler.Start(gctx)
		return nil
	})
	g.Go(func() error {
		relayOutbox(gctx, publisher, store, log)
		return nil
	})
	g.Go(func() error {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("service stopped")
}

// buildClaimDeps picks Postgres stores when db is set and memory stores
// otherwise. Publisher is left for the caller.
func buildClaimDeps(db *sql.DB, policy func() config.Policy, log *logger.Logger) (claimsapp.Deps, claimsapp.ConsignmentSource) {
	if db != nil {
		consignments := claimspg.NewConsignmentStore(db)
		return claimsapp.Deps{
			Traces:          tracepg.NewTraceStore(db),
			Reference:       claimspg.NewReferenceData(db, policy),
			Volumes:         consignments,
			Evidence:        consignments,
			Claims:          claimspg.NewClaimRepository(db),
			Reconciliations: claimspg.NewReconciliationStore(db),
			Sequence:        claimspg.NewSequence(db),
		}, consignments
	}

	repo := claimsmemory.NewClaimRepository()
	consignments, err := claimsmemory.NewConsignmentStore(repo)
	if err != nil {
		log.Fatal("consignment store error", "error", err)
	}
	return claimsapp.Deps{
		Traces:          tracememory.NewTraceStore(),
		Reference:       claimsmemory.NewReferenceData(policy),
		Volumes:         consignments,
		Evidence:        consignments,
		Claims:          repo,
		Reconciliations: claimsmemory.NewReconciliationStore(),
		Sequence:        claimsmemory.NewSequence(),
	}, consignments
}

func relayOutbox(ctx context.Context, publisher *eventing.OutboxPublisher, store *config.Store, log *logger.Logger) {
	interval := store.Snapshot().Schedule.OutboxRelay
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sent, err := publisher.Relay(ctx, store.Snapshot().Schedule.OutboxBatch)
			if err != nil {
				log.Warn("outbox relay error", "error", err)
				continue
			}
			if sent > 0 {
				log.Debug("outbox relayed", "count", sent)
			}
		}
	}
}
