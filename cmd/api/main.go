package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zilix-space/adapix-backend/internal/api"
	"github.com/zilix-space/adapix-backend/internal/api/handlers"
	"github.com/zilix-space/adapix-backend/internal/auth"
	"github.com/zilix-space/adapix-backend/internal/config"
	"github.com/zilix-space/adapix-backend/internal/db"
	"github.com/zilix-space/adapix-backend/internal/exchange"
	"github.com/zilix-space/adapix-backend/internal/jobs"
	"github.com/zilix-space/adapix-backend/internal/logger"
	"github.com/zilix-space/adapix-backend/internal/metrics"
	"github.com/zilix-space/adapix-backend/internal/middleware"
	"github.com/zilix-space/adapix-backend/internal/providers"
	"github.com/zilix-space/adapix-backend/internal/providers/alfredpay"
	"github.com/zilix-space/adapix-backend/internal/providers/changenow"
	"github.com/zilix-space/adapix-backend/internal/providers/market"
	"github.com/zilix-space/adapix-backend/internal/repository/postgres"
	"github.com/zilix-space/adapix-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	repos := postgres.NewRepositories(pool)

	var quotes providers.MarketQuoteSource = market.NewBinanceSource(cfg.MarketURL)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("redis url", "err", err)
			os.Exit(1)
		}
		quotes = market.NewCachedSource(quotes, redis.NewClient(opts), cfg.QuoteTTL)
	}
	fiat := alfredpay.New(cfg.PixGatewayURL, cfg.PixGatewayKey)
	crypto := changenow.New(cfg.ChangeNowURL, cfg.ChangeNowKey, nil)

	svc := exchange.NewService(cfg, quotes, fiat, crypto, repos.Transactions, repos.Users, repos.AuditLogs)

	wp := worker.NewPool(4)
	defer wp.Stop()
	sweeper := jobs.NewSweeper(repos.Transactions, svc, wp, cfg.SweepInterval)
	go sweeper.Run(ctx)

	metrics.Init()
	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, 24*time.Hour)
	authH := handlers.NewAuthHandler(repos.Users, tm)
	authMW := middleware.NewAuthMiddleware(tm)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(cfg, authH, authMW, svc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "pair", cfg.CryptoCurrency+"/"+cfg.FiatCurrency)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
