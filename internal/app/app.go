package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"eth-anchor/internal/alerting"
	"eth-anchor/internal/config"
	"eth-anchor/internal/fetcher"
	"eth-anchor/internal/httpapi"
	"eth-anchor/internal/metrics"
	"eth-anchor/internal/scheduler"
	"eth-anchor/internal/service"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetchers(m *metrics.Metrics) (*fetcher.Advanced, *fetcher.Exchange) {
	adv := a.Config.Venues.Advanced
	advanced := fetcher.NewAdvanced(fetcher.AdvancedOptions{
		BaseURL:   adv.BaseURL,
		Timeout:   adv.RequestTimeout,
		UserAgent: adv.UserAgent,
		Metrics:   m,
	}, a.Logger)

	ex := a.Config.Venues.Exchange
	exchange := fetcher.NewExchange(fetcher.ExchangeOptions{
		BaseURL:   ex.BaseURL,
		Timeout:   ex.RequestTimeout,
		UserAgent: ex.UserAgent,
		Metrics:   m,
	}, a.Logger)

	return advanced, exchange
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, cfg.Timeout, a.Logger)
	}
	return nil
}

func (a *App) newService(m *metrics.Metrics) (*service.Service, error) {
	advanced, exchange := a.newFetchers(m)
	return service.New(a.Config, advanced, exchange, scheduler.NewTimerWaiter(a.Logger), a.newNotifier(), m, a.Logger)
}

// Serve runs the HTTP API until interrupted.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var m *metrics.Metrics
	if a.Config.Metrics.Enabled {
		m = metrics.New()
	}

	svc, err := a.newService(m)
	if err != nil {
		return err
	}

	srv := httpapi.NewServer(httpapi.Options{
		Addr:            a.Config.Server.Addr,
		ReadTimeout:     a.Config.Server.ReadTimeout,
		WriteTimeout:    a.Config.Server.WriteTimeout,
		IdleTimeout:     a.Config.Server.IdleTimeout,
		ShutdownTimeout: a.Config.Server.ShutdownTimeout,
		GateToken:       a.Config.Gate.Token,
		GateDisabled:    a.Config.Gate.Disabled,
		MetricsPath:     a.Config.Metrics.Path,
	}, svc, m, a.Logger)

	switch {
	case a.Config.Gate.Disabled:
		a.Logger.Warn().Msg("gate disabled; sample endpoint is open")
	case a.Config.Gate.Token == "":
		a.Logger.Warn().Msg("gate.token not configured; sample endpoint rejects all requests")
	}

	a.Logger.Info().Str("addr", a.Config.Server.Addr).Msg("starting anchor api")
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("api terminated with error")
		return err
	}

	a.Logger.Info().Msg("anchor api stopped")
	return nil
}

// SnapshotOptions configure the snapshot command.
type SnapshotOptions struct {
	Table bool
}

// Snapshot computes one cross-checked snapshot and prints it.
func (a *App) Snapshot(ctx context.Context, out io.Writer, opts SnapshotOptions) error {
	svc, err := a.newService(nil)
	if err != nil {
		return err
	}

	resp, err := svc.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("compute snapshot: %w", err)
	}
	if opts.Table {
		renderSnapshot(out, resp)
		return nil
	}
	return writeJSON(out, resp)
}

// Sample runs the simple sampler once and prints the payload.
func (a *App) Sample(ctx context.Context, out io.Writer) error {
	svc, err := a.newService(nil)
	if err != nil {
		return err
	}

	resp, err := svc.Sample(ctx)
	if err != nil {
		return fmt.Errorf("compute sample: %w", err)
	}
	return writeJSON(out, resp)
}

// Check computes a snapshot and alerts on a material discrepancy.
func (a *App) Check(ctx context.Context, out io.Writer) error {
	svc, err := a.newService(nil)
	if err != nil {
		return err
	}
	return a.check(ctx, svc, out)
}

func (a *App) check(ctx context.Context, svc *service.Service, out io.Writer) error {
	resp, alerted, err := svc.Check(ctx)
	if err != nil {
		return fmt.Errorf("check anchor: %w", err)
	}

	renderSnapshot(out, resp)
	if alerted {
		fmt.Fprintln(out, "alert dispatched")
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
