package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/alumniportal/internal/audit"
	"github.com/geocoder89/alumniportal/internal/config"
	"github.com/geocoder89/alumniportal/internal/db"
	httpx "github.com/geocoder89/alumniportal/internal/http"
	"github.com/geocoder89/alumniportal/internal/login"
	"github.com/geocoder89/alumniportal/internal/observability"
	"github.com/geocoder89/alumniportal/internal/repo/memory"
	"github.com/geocoder89/alumniportal/internal/repo/mongodb"
	"github.com/geocoder89/alumniportal/internal/repo/postgres"
	"github.com/geocoder89/alumniportal/internal/repo/sqlite"
	"github.com/geocoder89/alumniportal/internal/signup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type canonicalStore interface {
	signup.IdentityCreator
	login.IdentityFinder
	Ping(ctx context.Context) error
}

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("api exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	startCtx, cancel := config.WithTimeout(15 * time.Second)
	defer cancel()

	shutdownTracer, err := observability.InitTracer(startCtx, cfg.OTelServiceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		ctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	canonical, closeCanonical, err := openCanonical(startCtx, cfg, prom)
	if err != nil {
		return err
	}
	defer closeCanonical()

	mirrorStore, closeMirrorStore, err := openMirrorStore(startCtx, cfg, prom)
	if err != nil {
		return err
	}
	defer closeMirrorStore()

	protected := audit.NewProtectedStore(mirrorStore, audit.ProtectedStoreConfig{
		Timeout:          cfg.MirrorTimeout,
		FailureThreshold: cfg.MirrorFailureThreshold,
		Cooldown:         cfg.MirrorCooldown,
	})
	mirror := audit.NewMirror(protected, log,
		audit.WithProm(prom),
		audit.WithWriteTimeout(cfg.MirrorTimeout),
	)

	router := httpx.NewRouter(httpx.Deps{
		Log:            log,
		Env:            cfg.Env,
		Signup:         signup.NewService(canonical, mirror, log, cfg.StoreTimeout),
		Login:          login.NewResolver(canonical),
		Canonical:      canonical,
		Mirror:         mirrorStore,
		Prom:           prom,
		Gatherer:       reg,
		ServiceName:    cfg.OTelServiceName,
		AllowedOrigins: cfg.AllowedOrigins,
		StaticDir:      cfg.StaticDir,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting",
			"port", cfg.Port,
			"env", cfg.Env,
			"canonical", cfg.CanonicalStore,
			"mirror", cfg.MirrorDriver,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-stop:
	}

	log.Info("server shutting down")

	ctx, cancelShutdown := config.WithTimeout(10 * time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}

	// no more requests can dispatch mirror writes, drain the ones in flight
	if err := mirror.Close(ctx); err != nil {
		log.Error("mirror drain incomplete", "err", err)
	}

	log.Info("shutdown complete")
	return nil
}

func openCanonical(ctx context.Context, cfg config.Config, prom *observability.Prom) (canonicalStore, func(), error) {
	switch cfg.CanonicalStore {
	case "memory":
		slog.Warn("using in-memory canonical store, data is lost on restart")
		return memory.NewIdentitiesRepo(), func() {}, nil

	case "mongo":
		client, err := db.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connect: %w", err)
		}

		repo := mongodb.NewIdentitiesRepo(client, cfg.MongoDB, cfg.MongoCollection, prom)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}

		closeFn := func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				slog.Error("mongo disconnect failed", "err", err)
			}
		}
		return repo, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown CANONICAL_STORE %q", cfg.CanonicalStore)
	}
}

func openMirrorStore(ctx context.Context, cfg config.Config, prom *observability.Prom) (audit.Store, func(), error) {
	var (
		store   audit.Store
		closeFn func()
	)

	switch cfg.MirrorDriver {
	case "sqlite":
		sqlDB, err := db.NewSqliteDB(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite open: %w", err)
		}
		store = sqlite.NewAuditRepo(sqlDB, prom)
		closeFn = func() { _ = sqlDB.Close() }

	case "postgres":
		pool, err := db.NewPool(ctx, cfg.MirrorDBURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		store = postgres.NewAuditRepo(pool, prom)
		closeFn = pool.Close

	default:
		return nil, nil, fmt.Errorf("unknown MIRROR_DRIVER %q", cfg.MirrorDriver)
	}

	if err := store.EnsureSchema(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("mirror schema: %w", err)
	}

	return store, closeFn, nil
}
