package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/RouterPanel/backend/internal/api/http"
	"github.com/GriffinCanCode/RouterPanel/backend/internal/api/middleware"
	"github.com/GriffinCanCode/RouterPanel/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/RouterPanel/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/RouterPanel/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/RouterPanel/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/RouterPanel/backend/internal/providers/clipboard"
	"github.com/GriffinCanCode/RouterPanel/backend/internal/providers/filesystem"
	"github.com/GriffinCanCode/RouterPanel/backend/internal/providers/system"
)

const (
	shutdownTimeout    = 15 * time.Second
	maxMultipartMemory = 8 << 20
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	httpSrv *http.Server
	files   *filesystem.Manager
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer wires every component from cfg.
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("Initializing Router Panel",
		zap.String("addr", cfg.Server.Address()),
		zap.String("files_root", cfg.Files.Root),
		zap.Bool("system_enabled", cfg.System.Enabled),
	)

	metrics := monitoring.NewMetrics()

	// One clipboard per process, shared by every request.
	store := clipboard.NewStore()
	files, err := filesystem.NewManager(filesystem.Options{
		Root:        cfg.Files.Root,
		SearchLimit: cfg.Files.SearchLimit,
		Logger:      logger.Logger,
	}, store)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file manager: %w", err)
	}
	logger.Info("File manager ready", zap.String("root", files.Root()))

	var sys *system.Provider
	if cfg.System.Enabled {
		sys = newSystemProvider(cfg, files.Root(), logger.Logger)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := api.NewHandlers(files, sys, metrics, api.Options{
		OperationTimeout: cfg.Files.OperationTimeout(),
		MaxUploadBytes:   cfg.Files.MaxUploadBytes,
		Logger:           logger.Logger,
	})
	api.RegisterRoutes(router, handlers)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		httpSrv: &http.Server{
			Addr:              cfg.Server.Address(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		files:   files,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

func newSystemProvider(cfg *config.Config, storagePath string, logger *zap.Logger) *system.Provider {
	feed := resilience.New("opkg-feed", resilience.Settings{
		Threshold: 3,
		Cooldown:  time.Minute,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Info("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	})
	return system.NewProvider(system.NewExecRunner(system.Programs...), system.Options{
		StoragePath:    storagePath,
		CommandTimeout: cfg.System.CommandTimeout(),
		FeedBreaker:    feed,
		Logger:         logger,
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.httpSrv.Addr))
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// Close flushes the logger.
func (s *Server) Close() error {
	s.logger.Info("Server stopped")
	_ = s.logger.Sync()
	return nil
}
