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

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tecmax-dev/sisvida-sub017/internal/api"
	"github.com/tecmax-dev/sisvida-sub017/internal/booking"
	"github.com/tecmax-dev/sisvida-sub017/internal/cache"
	"github.com/tecmax-dev/sisvida-sub017/internal/config"
	"github.com/tecmax-dev/sisvida-sub017/internal/logger"
	"github.com/tecmax-dev/sisvida-sub017/internal/middleware"
	"github.com/tecmax-dev/sisvida-sub017/internal/migrate"
	"github.com/tecmax-dev/sisvida-sub017/internal/repo"
	"github.com/tecmax-dev/sisvida-sub017/internal/seed"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.DatabaseURL == "" {
		zl.Fatal("DATABASE_URL is required")
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		zl.Fatal("conexão postgres", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zl.Fatal("postgres pool", zap.Error(err))
	}
	defer sqlDB.Close()
	if cfg.DBMaxConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxConns)
	}
	if cfg.DBMinConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DBMinConns)
	}
	if cfg.DBMaxConnLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DBMaxConnLifetime)
	}

	ctx := context.Background()
	applied, err := migrate.Run(ctx, db, migrate.Files())
	if err != nil {
		zl.Fatal("migrations", zap.Error(err))
	}
	if len(applied) > 0 {
		zl.Info("migrations applied", zap.Strings("versions", applied))
	}
	if !cfg.IsProduction() {
		if _, err := seed.Run(ctx, db, zl); err != nil {
			zl.Warn("seed (ignored)", zap.Error(err))
		}
	}

	store, err := cache.New(ctx, time.Duration(cfg.CacheTTLSec)*time.Second, cache.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		zl.Fatal("cache", zap.Error(err))
	}
	if rc, ok := store.(*cache.Redis); ok {
		rc.WithLogger(zl)
		defer rc.Close()
		zl.Info("cache: redis", zap.String("addr", cfg.RedisAddr))
	}

	booker := booking.NewService(repo.AppointmentStore{DB: db}, time.Duration(cfg.DefaultDurationMinutes)*time.Minute, zl.Named("booking"))
	h := api.NewHandler(db, cfg, store, zl.Named("api"), booker)

	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", h.Ready).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	h.Register(r, cfg.JWTSecret)

	limiter := middleware.PerMinute(cfg.RateLimitPerMin)
	limiter.TrustProxy = cfg.TrustProxy
	chain := middleware.Recover(zl)(
		middleware.RequestID(
			middleware.RequestLog(zl)(
				middleware.Prometheus(
					limiter.Middleware(
						middleware.Timeout(time.Duration(cfg.RequestTimeoutSec) * time.Second)(
							middleware.CORS(cfg.CORSOrigins)(
								middleware.Gzip(r))))))))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      chain,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.RequestTimeoutSec+5) * time.Second,
	}

	go func() {
		zl.Info("backend listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
	zl.Info("backend stopped")
}
