package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/ratelimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_error", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	initCtx = logging.IntoContext(initCtx, log)

	gdb, err := db.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			log.Error("db_close_error", "error", err)
		}
	}()
	if err := gdb.WithContext(initCtx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.KafkaBrokers)
		if err != nil {
			return err
		}
		publisher = kp
		log.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("publisher_close_error", "error", err)
		}
	}()

	r := repo.New(gdb)

	var (
		searcher search.Searcher = &search.SQLSearcher{Repo: r}
		esReady  bool
	)
	if cfg.ESURL != "" {
		es, err := search.NewESSearcher(search.ESConfig{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			return err
		}
		if err := es.Ping(initCtx); err != nil {
			log.Warn("elasticsearch_unreachable", "error", err)
		} else if err := es.EnsureIndex(initCtx); err != nil {
			log.Warn("elasticsearch_index_failed", "index", cfg.ESIndex, "error", err)
		} else {
			esReady = true
		}
		searcher = es
	}

	images, err := storage.NewImageStore(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		return err
	}

	m := metrics.New(cfg.ServiceName)
	notifier := &service.Notifier{Events: publisher, Metrics: m}
	authSvc := &service.AuthService{
		Repo:       r,
		Secret:     []byte(cfg.JWTSecret),
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
		Notifier:   notifier,
	}

	catalogSvc := &service.CatalogService{Repo: r, Search: searcher, Images: images, Notifier: notifier}
	if esReady {
		backfillCtx, cancelBackfill := context.WithTimeout(logging.IntoContext(context.Background(), log), 2*time.Minute)
		n, err := catalogSvc.Reindex(backfillCtx)
		cancelBackfill()
		if err != nil {
			log.Warn("elasticsearch_backfill_failed", "indexed", n, "error", err)
		} else {
			log.Info("elasticsearch_backfilled", "indexed", n)
		}
	}

	if cfg.AdminSeedEnabled() {
		if _, err := authSvc.EnsureAdmin(initCtx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	e := httpserver.NewEcho(log, m, httpserver.Options{
		CORSOrigins: cfg.CORSOrigins,
		BodyLimit:   fmt.Sprintf("%dK", cfg.UploadMaxBytes/1024+1024),
	})
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	httpserver.Register(e, &httpserver.Deps{
		Auth:        &httpserver.AuthHTTP{Svc: authSvc, CookieName: cfg.CookieName},
		Catalog:     &httpserver.CatalogHTTP{Svc: catalogSvc},
		Cart:        &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Notifier: notifier}},
		Orders:      &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Notifier: notifier}},
		Admin:       &httpserver.AdminHTTP{Svc: &service.AdminService{Repo: r, Notifier: notifier}},
		Gate:        middleware.NewGate([]byte(cfg.JWTSecret), cfg.CookieName),
		AuthLimiter: ratelimit.New(cfg.AuthRatePerSec, cfg.AuthRateBurst),
		Metrics:     m,
		ImageDir:    images.Dir,
		Ready:       sqlDB.PingContext,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("server_starting", "addr", cfg.Addr())
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		log.Info("shutting_down", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("echo start: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown_error", "error", err)
	}
	log.Info("server_stopped")
	return nil
}
