package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/bbarathsrinivasan/ACMHack/api/swagger"
	"github.com/bbarathsrinivasan/ACMHack/internal/handler"
	"github.com/bbarathsrinivasan/ACMHack/internal/middleware"
	"github.com/bbarathsrinivasan/ACMHack/internal/repository"
	"github.com/bbarathsrinivasan/ACMHack/internal/service"
	"github.com/bbarathsrinivasan/ACMHack/pkg/cache"
	"github.com/bbarathsrinivasan/ACMHack/pkg/config"
	"github.com/bbarathsrinivasan/ACMHack/pkg/database"
	"github.com/bbarathsrinivasan/ACMHack/pkg/jobs"
	"github.com/bbarathsrinivasan/ACMHack/pkg/logger"
	corsmiddleware "github.com/bbarathsrinivasan/ACMHack/pkg/middleware/cors"
	reqidmiddleware "github.com/bbarathsrinivasan/ACMHack/pkg/middleware/requestid"
	"github.com/bbarathsrinivasan/ACMHack/pkg/storage"
)

// @title Study Planner API
// @version 0.1.0
// @description Deadline-aware study block allocation over a versioned plan collection.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// resources holds connections opened during startup.
type resources struct {
	db      *sqlx.DB
	redis   *redis.Client
	badger  *badger.DB
	closers []io.Closer
}

func (r *resources) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		_ = r.closers[i].Close()
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("planner api stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := openResources(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer res.Close()

	backend, err := collectionBackend(cfg, res)
	if err != nil {
		return err
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	store := repository.NewVersionedStore(backend, logr.Named("store"), cfg.Store.MaxRetries)

	preferences := service.NewPreferenceService(nil, validate, logr.Named("preferences"))
	if res.db != nil {
		preferences = service.NewPreferenceService(repository.NewPreferenceRepository(res.db), validate, logr.Named("preferences"))
	}

	var cacheSvc *service.CacheService
	if cfg.Planner.ProposalCache && res.redis != nil {
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(res.redis, logr.Named("cache")), metrics, cfg.Planner.ProposalTTL, logr.Named("cache"), true)
	}

	auditor := service.NewChangeAuditor(metrics, logr.Named("audit"))
	auditQueue := jobs.NewQueue("plan-audit", auditor.Handle, jobs.QueueConfig{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
		MaxRetries: 1,
		Logger:     logr.Named("queue"),
	})
	auditor.UseDispatcher(auditQueue)

	loc := cfg.Planner.Location()
	planBlocks := service.NewPlanBlockService(store, preferences, auditor, metrics, loc, validate, logr.Named("planblocks"))
	planner := service.NewPlannerService(store, preferences, cacheSvc, auditor, metrics, service.PlannerServiceConfig{
		Location:        loc,
		ProposalTTL:     cfg.Planner.ProposalTTL,
		ApplyMaxRetries: cfg.Planner.ApplyMaxRetries,
	}, validate, logr.Named("planner"))
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiration)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	handler.Register(r, cfg.APIPrefix, middleware.Auth(cfg.Auth.Enabled, tokens), handler.Handlers{
		PlanBlocks:  handler.NewPlanBlockHandler(planBlocks),
		Planner:     handler.NewPlannerHandler(planner),
		Preferences: handler.NewPreferenceHandler(preferences),
		Metrics:     handler.NewMetricsHandler(metrics, readinessChecks(store, res)),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	auditQueue.Start(gctx)

	g.Go(func() error {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("store", cfg.Store.Backend),
			zap.Bool("auth", cfg.Auth.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		auditQueue.Stop()
		logr.Info("server stopped")
		return err
	})

	return g.Wait()
}

func openResources(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*resources, error) {
	res := &resources{}

	if cfg.Store.UsesPostgres() {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		res.db = db
		res.closers = append(res.closers, db)
		if cfg.Database.AutoMigrate {
			version, err := database.Migrate(ctx, db, logr.Named("migrate"))
			if err != nil {
				res.Close()
				return nil, err
			}
			logr.Info("database migrated", zap.Int64("version", version))
		}
	}

	if cfg.Store.Backend == config.StoreBackendRedis || cfg.Planner.ProposalCache {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			res.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		res.redis = client
		res.closers = append(res.closers, client)
	}

	if cfg.Store.Backend == config.StoreBackendBadger {
		db, err := database.NewBadger(cfg.Badger, logr)
		if err != nil {
			res.Close()
			return nil, err
		}
		res.badger = db
		res.closers = append(res.closers, db)
	}

	return res, nil
}

func collectionBackend(cfg *config.Config, res *resources) (repository.CollectionBackend, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		return repository.NewRedisCollection(res.redis, cfg.Store.RedisKey), nil
	case config.StoreBackendPostgres:
		return repository.NewPostgresCollection(res.db, cfg.Store.Collection), nil
	case config.StoreBackendBadger:
		return repository.NewBadgerCollection(res.badger, cfg.Store.Collection), nil
	default:
		local, err := storage.NewLocalStorage(filepath.Dir(cfg.Store.FilePath))
		if err != nil {
			return nil, err
		}
		return repository.NewFileCollection(local, filepath.Base(cfg.Store.FilePath)), nil
	}
}

func readinessChecks(store *repository.VersionedStore, res *resources) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"store": func(ctx context.Context) error {
			_, err := store.Read(ctx)
			return err
		},
	}
	if res.db != nil {
		checks["postgres"] = res.db.PingContext
	}
	if res.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return res.redis.Ping(ctx).Err() }
	}
	return checks
}
