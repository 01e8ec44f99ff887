package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bondcalc/internal/application/service/pricing"
	"bondcalc/internal/application/service/validation"
	"bondcalc/internal/application/service/valuation"
	"bondcalc/internal/config"
	"bondcalc/internal/infrastructure/cache"
	infrahttp "bondcalc/internal/interfaces/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logrus.New().Fatalf("failed to load config: %v", err)
	}

	logger := cfg.Log.NewLogger(os.Stdout)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	validator, err := validation.NewValidator(cfg.Limits.Bond())
	if err != nil {
		logger.Fatalf("failed to init validator: %v", err)
	}
	engine := pricing.NewEngine(cfg.Pricing.Policy())

	opts := []valuation.Option{
		valuation.WithLogger(logger),
		valuation.WithBatchLimits(cfg.Batch.MaxItems, cfg.Batch.Workers),
	}

	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		opts = append(opts, valuation.WithCache(cache.NewRepository(redisClient, cfg.Cache.TTL)))
		logger.WithField("addr", cfg.Redis.Addr).Info("bond value cache enabled")
	}

	service := valuation.NewService(validator, engine, opts...)
	handler := infrahttp.NewHandler(service, logger, cfg.HTTP.CORSOrigins)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr(),
		Handler: handler,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":             cfg.HTTP.Addr(),
			"zero_rate_policy": engine.Policy(),
		}).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown error: %v", err)
	}
	logger.Info("server stopped")
}
