// Command portal serves the MarketingCRM web portal: it holds each browser
// session's credentials and forwards view requests to the CRM backend.
//
//	@title		MarketingCRM Portal API
//	@version	1.0
//	@BasePath	/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/marketingcrm/portal/internal/api"
	"github.com/marketingcrm/portal/internal/api/handler"
	"github.com/marketingcrm/portal/internal/api/metrics"
	"github.com/marketingcrm/portal/internal/core/domain"
	"github.com/marketingcrm/portal/internal/core/ports"
	"github.com/marketingcrm/portal/internal/core/service"
	"github.com/marketingcrm/portal/internal/infrastructure/backend"
	"github.com/marketingcrm/portal/internal/infrastructure/crypto"
	mongostore "github.com/marketingcrm/portal/internal/infrastructure/db/mongo"
	redisstore "github.com/marketingcrm/portal/internal/infrastructure/db/redis"
	"github.com/marketingcrm/portal/internal/infrastructure/memstore"
	"github.com/marketingcrm/portal/internal/infrastructure/queue"
	"github.com/marketingcrm/portal/internal/pkg/config"
	"github.com/marketingcrm/portal/pkg/logger"
)

const (
	shutdownTimeout     = 10 * time.Second
	memorySweepInterval = time.Minute
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "marketingcrm-portal",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("portal stopped")
	}
	log.Info().Msg("portal stopped")
}

// stores holds the credential stores and audit sink for the selected driver.
type stores struct {
	short, long ports.CredentialStore
	audit       ports.AuditRepository
	checks      map[string]handler.Check
	close       func()
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if !cfg.Persistent() {
		short, long := memstore.New(cfg.Session.AccessTTL), memstore.New(cfg.Session.RefreshRetention)
		short.Start(ctx, memorySweepInterval)
		long.Start(ctx, memorySweepInterval)
		return &stores{
			short:  short,
			long:   long,
			audit:  queue.NewLogSink(log),
			checks: map[string]handler.Check{},
			close:  func() {},
		}, nil
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:           cfg.Mongo.URI,
		Database:      cfg.Mongo.Database,
		CredentialTTL: cfg.Session.RefreshRetention,
	})
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &stores{
		short: redisstore.NewCredentialStore(rdb, cfg.Session.AccessTTL),
		long:  mongostore.NewCredentialStore(db),
		audit: mongostore.NewAuditRepository(db),
		checks: map[string]handler.Check{
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
		},
		close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(ctx)
			_ = rdb.Close()
		},
	}, nil
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	crm, err := backend.New(backend.Config{BaseURL: cfg.Backend.URL, Timeout: cfg.Backend.Timeout}, log)
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	defer st.close()
	st.checks["backend"] = crm.Ping

	short, long := st.short, st.long
	if cfg.Session.StoreSecret != "" {
		secret := []byte(cfg.Session.StoreSecret)
		if short, err = crypto.NewSealedStore(short, secret); err != nil {
			return err
		}
		if long, err = crypto.NewSealedStore(long, secret); err != nil {
			return err
		}
	}

	// Workers outlive ctx so Close can drain them after the server stops.
	audit := queue.NewDispatcher(cfg.AuditWorkers, st.audit, log)
	audit.Start(context.Background())
	defer audit.Close()

	registry := service.NewSessionRegistry(crm, short, long, service.RegistryOptions{
		AccessTTL: cfg.Session.AccessTTL,
		IdleTTL:   cfg.Session.IdleTTL,
		Observers: []service.SessionObserver{recordTransition, audit.Observe},
		OnSize:    func(n int) { metrics.OpenSessions.Set(float64(n)) },
	}, logger.With("session"))
	registry.Start(ctx)

	e := api.NewRouter(api.Deps{
		Sessions:     registry,
		Profiles:     service.NewProfileService(crm, log),
		Orders:       service.NewOrderService(crm, log),
		Requests:     service.NewRequestService(crm, log),
		Checks:       st.checks,
		CookieName:   cfg.Session.Cookie,
		CookieSecure: cfg.Session.CookieSecure,
		Log:          logger.With("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("store", cfg.StoreDriver).
			Bool("sealed", cfg.Session.StoreSecret != "").
			Str("backend", cfg.Backend.URL).
			Msg("portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func recordTransition(ev domain.AuthEvent) {
	metrics.SessionTransitionsTotal.WithLabelValues(string(ev.Kind)).Inc()
}
