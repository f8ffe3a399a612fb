package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"parcel-dispatch-service/internal/adapters/cache"
	"parcel-dispatch-service/internal/adapters/distance"
	"parcel-dispatch-service/internal/adapters/repositories"
	"parcel-dispatch-service/internal/adapters/store"
	"parcel-dispatch-service/internal/api"
	"parcel-dispatch-service/internal/config"
	"parcel-dispatch-service/internal/platform/db"
	"parcel-dispatch-service/internal/platform/logger"
	"parcel-dispatch-service/internal/platform/metrics"
	"parcel-dispatch-service/internal/ports"
	"parcel-dispatch-service/internal/services"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type repository interface {
	ports.ParcelRepository
	ports.NetworkRepository
}

// main is the application composition root.
// It loads the day's dataset, runs the dispatch simulation once, and serves
// as-of status queries over the result.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(config.Get("DISPATCH_CONFIG", ""))
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Errorw("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, lg *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc := cfg.Scenario
	day, err := sc.Day()
	if err != nil {
		return err
	}
	vehicles, err := sc.Vehicles(day)
	if err != nil {
		return err
	}
	constraints, err := sc.BuildConstraints(day)
	if err != nil {
		return err
	}
	shift, err := sc.Shift(day)
	if err != nil {
		return err
	}
	floor, err := sc.DeferredFloor(day)
	if err != nil {
		return err
	}

	repo, closeRepo, err := openRepository(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeRepo()

	ds, err := services.LoadDataset(ctx, day, repo, repo)
	if err != nil {
		return err
	}
	index, err := distance.NewMatrixIndex(ds.Network)
	if err != nil {
		return err
	}
	parcels := store.NewMemoryParcelStore(ds.Parcels)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewPrometheus(reg, "dispatch")

	outcome, err := services.NewDispatcher(index, parcels, lg, rec).Run(ctx, services.DispatchRequest{
		Hub:                    sc.Hub,
		ShiftStart:             shift,
		DeferredDepartureFloor: floor,
		Drivers:                sc.Fleet.Drivers,
		Vehicles:               vehicles,
		Constraints:            constraints,
	})
	if err != nil {
		return err
	}

	if err := repo.SaveDeliveries(ctx, parcels.All()); err != nil {
		return err
	}

	var statusCache ports.StatusCache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			lg.Warnw("redis unavailable; serving without status cache", "addr", cfg.Redis.Addr, "err", err)
		} else {
			statusCache = cache.NewRedisStatusCache(client, cfg.Redis.TTL)
		}
	}

	router := api.NewRouter(api.Deps{
		Store:    parcels,
		Outcome:  outcome,
		Cache:    statusCache,
		Day:      day,
		Log:      lg,
		Metrics:  rec,
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Infow("server listening", "addr", srv.Addr, "run_id", outcome.RunID.String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	lg.Infow("server stopped")
	return nil
}

// openRepository connects the configured store and seeds it for local runs.
func openRepository(ctx context.Context, sc config.Store) (repository, func(), error) {
	switch sc.Driver {
	case "postgres":
		pool, err := db.OpenPool(ctx, sc.URL)
		if err != nil {
			return nil, nil, err
		}
		repo := repositories.NewPgRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		if sc.SeedPath != "" {
			seed, err := repositories.ReadSeed(sc.SeedPath)
			if err != nil {
				pool.Close()
				return nil, nil, err
			}
			if err := repo.Seed(ctx, seed); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		return repo, pool.Close, nil

	default:
		conn, err := db.OpenSqlite(sc.Path)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = conn.Close() }
		// Initialize schema and seed demo data on startup for local runs.
		if err := repositories.InitSchema(ctx, conn); err != nil {
			closeFn()
			return nil, nil, err
		}
		if sc.SeedPath != "" {
			if err := repositories.SeedFromJSON(ctx, conn, sc.SeedPath); err != nil {
				closeFn()
				return nil, nil, err
			}
		}
		return repositories.NewSqliteRepository(conn), closeFn, nil
	}
}
