package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/reusemart/reusemart-mobile/internal/adapter/outbound/backend"
	"github.com/reusemart/reusemart-mobile/internal/adapter/outbound/memory"
	"github.com/reusemart/reusemart-mobile/internal/adapter/outbound/sqlite"
	"github.com/reusemart/reusemart-mobile/internal/adapter/outbound/state"
	"github.com/reusemart/reusemart-mobile/internal/config"
	"github.com/reusemart/reusemart-mobile/internal/domain/dispatch"
	"github.com/reusemart/reusemart-mobile/internal/domain/session"
	"github.com/reusemart/reusemart-mobile/internal/service"
)

// app is the wired client for one command invocation.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    session.Store
	cache    *session.Cache
	clients  *backend.Clients
	resolver *dispatch.Resolver
	registry *prometheus.Registry

	auth     *service.AuthService
	account  *service.AccountService
	delivery *service.DeliveryService
	merch    *service.MerchandiseService

	closers []func() error
}

// runApp wraps fn so it runs against a booted app. The session is hydrated
// before fn sees anything.
func runApp(fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if _, err := parseFormat(outputFormat); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		runErr := fn(ctx, a, cmd, args)
		if closeErr := a.close(); closeErr != nil && runErr == nil {
			runErr = closeErr
		}
		return runErr
	}
}

// newApp wires config, store, cache, clients and services, then boots.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	logger.Debug("log level configured", "level", cfg.LogLevel)
	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Debug("loaded config", "file", configFile)
	}

	a := &app{cfg: cfg, logger: logger}

	store, closeStore, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}
	a.store = store
	if closeStore != nil {
		a.closers = append(a.closers, closeStore)
	}

	a.cache = session.NewCache(store, logger)
	a.closers = append(a.closers, func() error {
		a.cache.Close()
		return nil
	})
	if err := service.Boot(ctx, a.cache); err != nil {
		_ = a.close()
		return nil, err
	}

	a.registry = prometheus.NewRegistry()
	overrides := make(map[backend.Area]string, len(cfg.Backend.Areas))
	for area, u := range cfg.Backend.Areas {
		overrides[backend.Area(area)] = u
	}
	a.clients, err = backend.NewClients(
		backend.Endpoints{BaseURL: cfg.Backend.BaseURL, Overrides: overrides},
		a.cache,
		backend.WithTimeout(cfg.Backend.TimeoutDuration()),
		backend.WithRetry(backend.RetryPolicy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelayDuration(),
			MaxDelay:    cfg.Retry.MaxDelayDuration(),
		}),
		backend.WithLogger(logger),
		backend.WithMetrics(backend.NewMetrics(a.registry)),
	)
	if err != nil {
		_ = a.close()
		return nil, err
	}
	for _, c := range a.clients.All() {
		logger.Debug("backend area", "area", c.Area(), "base_url", c.BaseURL())
	}

	a.resolver = dispatch.NewResolver(store, dispatch.DefaultTable(), logger)
	detach := a.resolver.Attach(a.cache)
	// Detach runs before the cache closes.
	a.closers = append(a.closers, func() error {
		detach()
		return nil
	})

	a.auth = service.NewAuthService(a.clients.Auth, store, a.cache, logger)
	a.account = service.NewAccountService(service.AccountAPIs{
		Buyer:     a.clients.Buyer,
		Consignor: a.clients.Consignor,
		Courier:   a.clients.Courier,
		Hunter:    a.clients.Hunter,
		Profile:   a.clients.Profile,
	})
	a.delivery = service.NewDeliveryService(a.clients.Courier, logger)
	a.merch = service.NewMerchandiseService(a.clients.Merchandise, a.clients.Buyer, logger)
	return a, nil
}

// openStore builds the credential store for cfg. The returned close func
// may be nil.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (session.Store, func() error, error) {
	switch cfg.Driver {
	case "memory":
		return memory.NewCredentialStore(), nil, nil
	case "sqlite":
		s, err := sqlite.Open(ctx, cfg.Path, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open credential store: %w", err)
		}
		return s, s.Close, nil
	default:
		return state.NewFileStore(cfg.Path, logger), nil, nil
	}
}

// close flushes pending session writes and releases resources in reverse
// order of acquisition.
func (a *app) close() error {
	var errs []error
	if a.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.cache.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
		cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	a.logMetrics()
	return errors.Join(errs...)
}

// logMetrics writes the request counters at debug level.
func (a *app) logMetrics() {
	if a.registry == nil || !a.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	families, err := a.registry.Gather()
	if err != nil {
		a.logger.Debug("failed to gather metrics", "error", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			attrs := []any{"metric", mf.GetName()}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				attrs = append(attrs, "value", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				attrs = append(attrs, "count", m.GetHistogram().GetSampleCount(), "sum", m.GetHistogram().GetSampleSum())
			}
			a.logger.Debug("client metric", attrs...)
		}
	}
}

// session returns the stored session and the view it dispatches to.
func (a *app) session(ctx context.Context) (session.Session, dispatch.State, dispatch.View) {
	st, view := a.resolver.Resolve(ctx)
	return a.auth.Current(ctx), st, view
}
