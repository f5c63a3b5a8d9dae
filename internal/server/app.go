// Package server wires the accounts backend together: configuration,
// Postgres, object storage, the optional Redis cache, and the HTTP and
// gRPC servers, with graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mnln/accounts/internal/logging"
	"github.com/mnln/accounts/internal/server/auth"
	"github.com/mnln/accounts/internal/server/cache"
	"github.com/mnln/accounts/internal/server/config"
	"github.com/mnln/accounts/internal/server/httpapi"
	"github.com/mnln/accounts/internal/server/metrics"
	"github.com/mnln/accounts/internal/server/objectstore"
	"github.com/mnln/accounts/internal/server/repositories/repomanager"
	"github.com/mnln/accounts/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/mnln/accounts/internal/server/grpc"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	healthInterval    = 15 * time.Second
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	store   *objectstore.Store
	redis   *redis.Client
	metrics *metrics.Metrics
	router  *gin.Engine
}

// NewApp connects to every backing service and builds the HTTP router.
// Migrations run before the app is returned.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	codec, err := auth.NewCodec(c.SecretKey)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	db.SetMaxOpenConns(c.MaxDBConns)

	app := &App{config: c, logger: logger, db: db, metrics: metrics.New()}

	if err := db.PingContext(ctx); err != nil {
		app.close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app.store, err = objectstore.New(ctx, objectstore.Options{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		BaseEndpoint: c.S3BaseEndpoint,
		Bucket:       c.S3Bucket,
	})
	if err != nil {
		app.close()
		return nil, fmt.Errorf("object store init error: %w", err)
	}
	if err := app.store.EnsureBucket(ctx); err != nil {
		app.close()
		return nil, fmt.Errorf("object store bucket error: %w", err)
	}

	var keys cache.AvatarKeys = cache.Nop{}
	if c.RedisAddr != "" {
		app.redis, err = cache.NewRedisClient(ctx, c.RedisAddr)
		if err != nil {
			app.close()
			return nil, err
		}
		keys = cache.NewRedisAvatarKeys(app.redis, c.AvatarCacheTTL)
	}

	us := services.NewUserService(db, rm, codec, logger)
	as := services.NewAvatarService(db, rm, app.store, keys, logger, c.BaseAPIURL)
	ps := services.NewProfileService(db, rm, logger, c.BaseAPIURL)

	gin.SetMode(gin.ReleaseMode)
	h := httpapi.NewHandler(us, as, ps, app.metrics, logger)
	app.router = httpapi.NewRouter(h, httpapi.RouterConfig{
		FrontendOrigin: c.BaseFrontendURL,
		Verifier:       codec,
		Metrics:        app.metrics,
		Logger:         logger,
	})

	return app, nil
}

func (app *App) close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, healthInterval)
	s.AddCheck("database", app.db.PingContext)
	s.AddCheck("object_store", func(ctx context.Context) error {
		ok, err := app.store.BucketExists(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("bucket %s is missing", app.store.Bucket())
		}
		return nil
	})
	if app.redis != nil {
		s.AddCheck("redis", func(ctx context.Context) error {
			return app.redis.Ping(ctx).Err()
		})
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a termination signal arrives or either server fails.
func (app *App) Run(ctx context.Context) {
	defer app.close()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.logger.Info(ctx, "App stopped")
}
