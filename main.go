package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"localchef-api/cache"
	"localchef-api/config"
	"localchef-api/events"
	"localchef-api/handlers"
	"localchef-api/jobs"
	"localchef-api/logging"
	"localchef-api/metrics"
	"localchef-api/middleware"
	"localchef-api/payment"
	"localchef-api/routes"
	"localchef-api/service"
	"localchef-api/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(cfg.LogLevel, cfg.GinMode == gin.DebugMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := store.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	st := store.New(db)
	logger.Info("database ready", zap.Bool("postgres", cfg.DatabaseURL != ""))

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("publishing domain events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	defer publisher.Close()

	probes := map[string]handlers.Probe{"database": st.Ping}

	var statsCache service.StatsCache
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisStats(cfg.RedisAddr, cfg.RedisPassword, cfg.StatsCacheTTL)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, statistics will not be cached until it recovers", zap.Error(err))
		}
		statsCache = rc
		probes["redis"] = rc.Ping
	}

	var gateway service.PaymentGateway
	if cfg.StripeSecret != "" {
		gateway = payment.NewStripeGateway(cfg.StripeSecret, cfg.SiteDomain)
	} else {
		logger.Warn("STRIPE_SECRET not set, checkout sessions are disabled")
	}

	secret := cfg.AccessTokenSecret
	if len(secret) == 0 {
		logger.Warn("ACCESS_TOKEN_SECRET not set, using an insecure development secret")
		secret = []byte("localchef-dev-secret")
	}
	tokens := middleware.NewTokenIssuer(secret, cfg.TokenTTL)

	deps := service.Deps{Events: publisher, Log: logger, Consistency: cfg.Consistency}
	orders := service.NewOrderEngine(st, gateway, deps)
	roles := service.NewRoleWorkflow(st, cfg.ResolvePolicy, deps)
	users := service.NewUsers(st, deps)
	reporter := service.NewReporter(st, statsCache, logger)
	reconciler := service.NewReconciler(st, logger)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)

	scheduler := jobs.NewScheduler(logger)
	err = scheduler.Add(
		jobs.Job{Name: "reconcile-projections", Schedule: cfg.ReconcileSchedule, Run: reconciler.Run},
		jobs.Job{Name: "rate-limiter-cleanup", Schedule: "@every 5m", Run: limiter.Cleanup},
	)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	h := handlers.New(handlers.Options{
		Orders:       orders,
		Roles:        roles,
		Users:        users,
		Stats:        reporter,
		Catalog:      st.Catalog,
		Tokens:       tokens,
		Backlog:      reconciler.Backlog,
		Probes:       probes,
		Log:          logger,
		SecureCookie: cfg.GinMode == gin.ReleaseMode,
	})

	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.RequestLogger(logger), metrics.Middleware(), middleware.CORS(cfg.SiteDomain))
	routes.SetupRoutes(r, h, routes.Options{Tokens: tokens, Limiter: limiter})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running",
			zap.String("addr", "http://localhost:"+cfg.Port),
			zap.String("consistency", string(cfg.Consistency)),
			zap.String("resolve_policy", string(cfg.ResolvePolicy)))
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

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
