// Package app wires storage, services and HTTP routes into a runnable server.
package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"railway/internal/config"
	"railway/internal/events"
	"railway/internal/middleware"
	"railway/internal/modules/admin"
	"railway/internal/modules/auth"
	"railway/internal/modules/booking"
	"railway/internal/modules/feed"
	"railway/internal/modules/train"
	"railway/internal/pkg/jwt"
	"railway/internal/pkg/metrics"
	"railway/internal/pkg/response"
	"railway/internal/repository"
	"railway/internal/seed"
	"railway/internal/session"
	"railway/internal/storage"
)

const limiterCleanupInterval = 5 * time.Minute

type App struct {
	Router *gin.Engine

	cfg     *config.Config
	log     *zap.Logger
	backend storage.Backend
	bus     *events.Bus
	revoker session.Revoker
	stop    chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// New opens storage, seeds it when configured and builds the router. The feed
// hub runs until ctx is cancelled.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	backend, err := storage.Open(cfg.StorageDriver, cfg.DatabaseURL, cfg.BoltPath, log)
	if err != nil {
		return nil, err
	}

	revoker, err := session.New(ctx, cfg.RedisURL, log)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		log:     log,
		backend: backend,
		bus:     events.NewBus(log),
		revoker: revoker,
		stop:    make(chan struct{}),
	}

	userRepo := repository.NewUserRepository(backend)
	trainRepo := repository.NewTrainRepository(backend)
	bookingRepo := repository.NewBookingRepository(backend)

	if cfg.SeedOnStart {
		if err := seed.EnsureSeeded(ctx, userRepo, trainRepo, cfg.AdminPassword, log); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	jwtService := jwt.New(cfg.JWTSecret, cfg.JWTTTL)

	authService := auth.NewService(userRepo, bookingRepo, jwtService, revoker, a.bus, log.Named("auth"))
	trainService := train.NewService(trainRepo, log.Named("train"))
	bookingService := booking.NewService(bookingRepo, trainRepo, userRepo, a.bus, log.Named("booking"))
	adminService := admin.NewService(userRepo, trainRepo, bookingService, a.bus, log.Named("admin"))

	hub := feed.NewHub(log.Named("feed"))
	if err := hub.Start(ctx, a.bus, events.BookingTopics); err != nil {
		_ = a.Close()
		return nil, err
	}

	limiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute, cfg.LoginRateBurst, log)
	limiter.StartCleanup(limiterCleanupInterval, a.stop)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(log),
		middleware.RequestLogger(log),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{
			"status":  "ok",
			"storage": cfg.StorageDriver,
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	authHandler := auth.NewHandler(authService)
	trainHandler := train.NewHandler(trainService)
	bookingHandler := booking.NewHandler(bookingService)
	adminHandler := admin.NewHandler(adminService)
	feedHandler := feed.NewHandler(hub, jwtService, revoker, userRepo, cfg.CORSAllowedOrigins, log.Named("feed"))

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1, limiter.Handler())
		trainHandler.RegisterRoutes(v1)
		feedHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(jwtService, revoker, userRepo))
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)

			adminGroup := protected.Group("/admin")
			adminGroup.Use(middleware.AdminOnly())
			{
				adminHandler.RegisterRoutes(adminGroup)
				trainHandler.RegisterAdminRoutes(adminGroup)
			}
		}
	}

	a.Router = r
	return a, nil
}

// Run serves HTTP until ctx is cancelled and then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", zap.String("addr", a.cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down", zap.Duration("timeout", a.cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close releases storage, the event bus and the revocation store.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		close(a.stop)

		var errs []error
		if err := a.bus.Close(); err != nil {
			errs = append(errs, err)
		}
		if c, ok := a.revoker.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := a.backend.Close(); err != nil {
			errs = append(errs, err)
		}
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}
