// Command portal serves the Savanna Accountancy website and client portal.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/savanna-accountancy/portal"
	"github.com/savanna-accountancy/portal/internal/api"
	"github.com/savanna-accountancy/portal/internal/auth"
	"github.com/savanna-accountancy/portal/internal/config"
	"github.com/savanna-accountancy/portal/internal/dashboard"
	"github.com/savanna-accountancy/portal/internal/logging"
	"github.com/savanna-accountancy/portal/internal/session"
	"github.com/savanna-accountancy/portal/internal/signup"
	"github.com/savanna-accountancy/portal/internal/site"
	"github.com/savanna-accountancy/portal/internal/ui"
	"github.com/savanna-accountancy/portal/plugins/picocss"
	"go.uber.org/zap"
)

// sessionTTL matches the lifetime of the session cookies.
const sessionTTL = 7 * 24 * time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "portal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	key, err := cfg.CookieKey()
	if err != nil {
		return err
	}
	if key == nil {
		log.Warn("PORTAL_COOKIE_SECRET not set, sessions will not survive a restart")
	}
	sealer, err := session.NewSealer(key)
	if err != nil {
		return fmt.Errorf("cookie sealer: %w", err)
	}

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	client := api.New(cfg.APIURL, cfg.APITimeout, api.WithLogger(log.Named("api")))
	registry := auth.NewRegistry(client, log.Named("auth"))
	limiter := auth.NewLoginLimiter(cfg.LoginRate, cfg.LoginBurst, auth.WithTrustedProxy(cfg.TrustedProxy))
	stores := func(w http.ResponseWriter, r *http.Request) *session.Store {
		return session.NewStore(
			session.Scope(backend, portal.ClientID(r)),
			session.NewCookieStorage(w, r, sealer, cfg.CookieSecure),
		)
	}

	app := portal.New()
	app.Config(portal.Options{
		ServerAddress: cfg.Addr,
		DocumentTitle: ui.Firm,
		DatastarURL:   cfg.DatastarURL,
		SecureCookies: cfg.CookieSecure,
		TabTTL:        cfg.TabTTL,
		Logger:        log,
		Plugins:       []portal.Plugin{picocss.New(picocss.WithTheme(cfg.PicoTheme))},
	})
	app.Use(logging.Requests(log.Named("http")), auth.Landing(sealer, cfg.CookieSecure, log.Named("landing")))

	signup.Register(app, client)
	dashboard.Register(app, dashboard.Deps{API: client, Registry: registry, Stores: stores})
	site.Register(app, site.Deps{Verifier: client, Registry: registry, Stores: stores, Limiter: limiter})

	housekeeping := portal.NewRoutine(time.Minute, func() {
		registry.Prune(cfg.TabTTL)
		limiter.Cleanup(10 * time.Minute)
		if err := backend.Purge(ctx, time.Now().Add(-sessionTTL)); err != nil {
			log.Warn("purge sessions failed", zap.Error(err))
		}
	})
	housekeeping.Start(ctx)
	defer housekeeping.Stop()

	log.Info("starting portal",
		zap.String("env", cfg.Environment),
		zap.String("api", cfg.APIURL),
		zap.String("sessions", cfg.SessionBackend),
	)
	return app.Start(ctx)
}

func openBackend(ctx context.Context, cfg config.Config) (session.Backend, error) {
	switch cfg.SessionBackend {
	case config.BackendRedis:
		b, err := session.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("redis sessions: %w", err)
		}
		return b, nil
	default:
		b, err := session.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite sessions: %w", err)
		}
		return b, nil
	}
}
