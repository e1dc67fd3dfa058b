package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"checkout-service/internal/config"
	"checkout-service/internal/controllers/http"
	"checkout-service/internal/infra/blob"
	mmysql "checkout-service/internal/infra/mysql"
	"checkout-service/internal/infra/paypal"
	"checkout-service/internal/infra/rabbitmq"
	"checkout-service/internal/infra/redis"
	"checkout-service/internal/logging"
	"checkout-service/internal/metrics"
	mysqlrepo "checkout-service/internal/repository/mysql"
	"checkout-service/internal/retry"
	"checkout-service/internal/services"
	"checkout-service/internal/sweeper"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("checkout service stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := mmysql.Open(cfg.MySQL.DSN(), mmysql.PoolOptions{
		MaxOpenConns:    cfg.MySQL.MaxOpenConns,
		MaxIdleConns:    cfg.MySQL.MaxIdleConns,
		ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("db: connect: %w", err)
	}
	orderRepo := mysqlrepo.NewOrderRepository(db)
	pricingRepo := mysqlrepo.NewPricingRepository(db)

	redisClient := redis.NewClient(redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
		Timeout:  cfg.Redis.Timeout,
	})
	defer redisClient.Close()
	if err := redis.Ping(ctx, redisClient, cfg.Redis.Timeout); err != nil {
		logger.Warn("redis is not reachable yet", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	tokenCache := redis.NewTokenCache(redisClient, cfg.Redis.Prefix, cfg.Redis.Timeout)

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
	if err != nil {
		return fmt.Errorf("failed to init publisher: %w", err)
	}
	defer publisher.Close()
	notifier := rabbitmq.NewNotifier(publisher)

	m := metrics.New(prometheus.DefaultRegisterer)

	baseURL := cfg.PayPal.BaseURL
	if baseURL == "" {
		baseURL = paypal.BaseURLForMode(cfg.PayPal.Mode)
	}
	provider := paypal.NewClient(baseURL, cfg.PayPal.ClientID, cfg.PayPal.ClientSecret, cfg.PayPal.Timeout)

	exec := retry.New(paypal.IsTransportError,
		retry.WithAttempts(cfg.PayPal.MaxAttempts),
		retry.WithBase(cfg.PayPal.RetryBase),
		retry.WithLogger(logger),
		retry.WithOnRetry(func(op string, _ int) { m.ProviderRetries.WithLabelValues(op).Inc() }),
	)

	store := blob.NewLocalStore(afero.NewOsFs(), cfg.Uploads.Dir)

	pricingSvc := services.NewPricingService(pricingRepo)
	orderSvc := services.NewOrderService(orderRepo, pricingSvc, store, notifier, logger, m)
	paymentSvc := services.NewPaymentService(orderRepo, provider, tokenCache, exec, notifier, services.PaymentConfig{
		Currency:    cfg.PayPal.Currency,
		ReturnURL:   cfg.PayPal.ReturnURL,
		CancelURL:   cfg.PayPal.CancelURL,
		BrandName:   cfg.PayPal.BrandName,
		TokenMargin: cfg.PayPal.TokenMargin,
		TokenMinTTL: cfg.PayPal.TokenMinTTL,
	}, logger, m)

	sweep := sweeper.New(orderSvc, cfg.Sweep.Interval, cfg.Sweep.MaxAge, logger, m)
	sweep.Start(ctx)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Static(blob.PublicPrefix, cfg.Uploads.Dir)
	http.NewHandler(orderSvc, paymentSvc, pricingSvc, store, logger).RegisterRoutes(r)

	srv := &nethttp.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting checkout service", zap.Int("port", cfg.Server.Port), zap.String("paypal", baseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		sweep.Stop()
		orderSvc.Drain()
		paymentSvc.Drain()
		return err
	})

	return g.Wait()
}
