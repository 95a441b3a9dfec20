package server

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/evalguard/internal/api/http"
	"github.com/GriffinCanCode/evalguard/internal/api/middleware"
	"github.com/GriffinCanCode/evalguard/internal/domain/gate"
	"github.com/GriffinCanCode/evalguard/internal/evalguard"
	"github.com/GriffinCanCode/evalguard/internal/infrastructure/config"
	"github.com/GriffinCanCode/evalguard/internal/infrastructure/logging"
	"github.com/GriffinCanCode/evalguard/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/evalguard/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/evalguard/internal/sandbox"
)

// Version is reported by the root endpoint
const Version = "0.1.0"

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *nethttp.Server
	gate     *gate.Gate
	pool     *sandbox.Pool
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	registry *prometheus.Registry
	reloader *Reloader
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Development)
	}

	logger.Info("Initializing evalguard server",
		zap.String("port", cfg.Server.Port),
		zap.String("rules_glob", cfg.Guard.RulesGlob),
		zap.Bool("sandbox", cfg.Sandbox.Enabled),
	)

	// Initialize metrics first (needed by other components)
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)

	customRules, err := evalguard.LoadRules(cfg.Guard.RulesGlob)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	metrics.SetRulesLoaded("default", len(evalguard.DefaultRules()))
	metrics.SetRulesLoaded("file", len(customRules))
	logger.Info("Rule catalog loaded",
		zap.Int("default", len(evalguard.DefaultRules())),
		zap.Int("custom", len(customRules)),
	)

	g := gate.New(evalguard.New(), gate.Config{
		CustomRules:     customRules,
		SkipSyntaxCheck: cfg.Guard.SkipSyntaxCheck,
		TrustRequests:   cfg.Guard.TrustRequests,
		MaxSnippetBytes: cfg.Guard.MaxSnippetBytes,
	}, logger).WithMetrics(metrics)

	if cfg.Guard.TrustRequests {
		logger.Warn("Requests may bypass validation with allow_dangerous")
	}

	var pool *sandbox.Pool
	if cfg.Sandbox.Enabled {
		sbCfg := sandbox.DefaultConfig()
		sbCfg.Timeout = cfg.Sandbox.Timeout
		pool, err = sandbox.NewPool(sbCfg, cfg.Sandbox.PoolSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create sandbox pool: %w", err)
		}

		breaker := resilience.New("sandbox", resilience.Settings{
			Timeout: cfg.Sandbox.BreakerCooldown,
			ReadyToTrip: func(counts resilience.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(cfg.Sandbox.BreakerFailures)
			},
			OnStateChange: func(name string, from, to resilience.State) {
				metrics.SetBreakerState(int(to))
				logger.Warn("Circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
		g.WithEvaluator(gate.NewBreakerEvaluator(pool, breaker))
		logger.Info("Sandbox pool initialized",
			zap.Int("size", cfg.Sandbox.PoolSize),
			zap.Duration("timeout", cfg.Sandbox.Timeout),
		)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	// Rate limiting keys on the peer address; forwarded headers are not trusted
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("failed to configure trusted proxies: %w", err)
	}

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	var stats http.PoolStatter
	if pool != nil {
		stats = pool
	}
	handlers := http.NewHandlers(g, stats, logger, Version)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/v1")
	v1.GET("/rules", handlers.ListRules)
	v1.POST("/validate", handlers.Validate)
	v1.POST("/evaluate", handlers.Evaluate)

	s := &Server{
		router:   router,
		gate:     g,
		pool:     pool,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		registry: registry,
	}

	if cfg.Guard.RulesGlob != "" && cfg.Guard.WatchRules {
		reloader, err := NewReloader(cfg.Guard.RulesGlob, s.ReloadRules, logger)
		if err != nil {
			// Serving with the rules already loaded beats not serving
			logger.Warn("Rule file watching disabled", zap.Error(err))
		} else {
			s.reloader = reloader
		}
	}

	logger.Info("Server initialized successfully")
	return s, nil
}

// ReloadRules re-reads the rule files. On error the current rules stay.
func (s *Server) ReloadRules() error {
	rules, err := evalguard.LoadRules(s.config.Guard.RulesGlob)
	if err != nil {
		return err
	}
	s.gate.SetCustomRules(rules)
	s.metrics.SetRulesLoaded("file", len(rules))
	s.logger.Info("Rule catalog reloaded", zap.Int("custom", len(rules)))
	return nil
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() nethttp.Handler {
	return s.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.http = &nethttp.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.reloader != nil {
		go s.reloader.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// Close releases the sandbox pool and flushes logs
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	if s.reloader != nil {
		_ = s.reloader.Close()
	}

	if s.pool != nil {
		if err := s.pool.Close(); err != nil {
			s.logger.Error("Failed to close sandbox pool", zap.Error(err))
			return fmt.Errorf("failed to close sandbox pool: %w", err)
		}
		s.logger.Info("Closed sandbox pool")
	}

	// Sync logger before exit
	_ = s.logger.Sync()

	return nil
}
