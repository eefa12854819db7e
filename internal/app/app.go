// Package app wires configuration, the credential store, the authorization
// flow, the Telegram frontend, and the operational server into one
// process lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/florianilch/seedrbot/internal/authflow"
	"github.com/florianilch/seedrbot/internal/bot"
	"github.com/florianilch/seedrbot/internal/ops"
	"github.com/florianilch/seedrbot/internal/seedr"
)

// App orchestrates the lifecycle of the bot and related services.
type App struct {
	cfg      *Config
	bot      *bot.Bot
	sessions *authflow.Registry
	ops      *ops.Server
}

// New creates a new App instance.
func New(cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := cfg.Storage.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create token store: %w", err)
	}

	client := seedr.NewClient(seedr.WithBaseURL(cfg.Provider.BaseURL))

	// Retention outlasts the session TTL so a lapsed session is still
	// readable and reports "expired" rather than "not found".
	sessions := authflow.NewRegistry(cfg.Session.TTL * 4)

	flow, err := authflow.New(client, store, sessions, authflow.WithSessionTTL(cfg.Session.TTL))
	if err != nil {
		sessions.Close()
		return nil, fmt.Errorf("failed to create auth flow: %w", err)
	}

	frontend, err := bot.New(cfg.Telegram.Token, flow, store, client)
	if err != nil {
		sessions.Close()
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	a := &App{
		cfg:      cfg,
		bot:      frontend,
		sessions: sessions,
	}
	if cfg.Ops.Enabled {
		a.ops = ops.New(frontend.Running)
	}
	return a, nil
}

// Start starts all services and blocks until shutdown is triggered.
// Uses errgroup for runtime error monitoring and shutdown function collection for coordinated cleanup.
func (a *App) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	var shutdownFuncs []func(context.Context) error
	shutdownFuncs = append(shutdownFuncs, func(context.Context) error {
		a.sessions.Close()
		return nil
	})

	// Startup phase: Start services
	if a.ops != nil {
		address := a.cfg.Ops.Host + ":" + strconv.FormatUint(uint64(a.cfg.Ops.Port), 10)
		slog.InfoContext(gCtx, "starting ops server", "address", address)

		opsErrCh, err := a.ops.Start(gCtx, address)
		if err != nil {
			a.sessions.Close()
			return fmt.Errorf("ops server startup failed: %w", err)
		}
		shutdownFuncs = append(shutdownFuncs, a.ops.Shutdown)

		// Monitor runtime errors - errgroup cancels context on first error
		g.Go(func() error {
			select {
			case err := <-opsErrCh:
				if err != nil {
					slog.ErrorContext(gCtx, "ops server runtime error", "error", err)
					return fmt.Errorf("ops server: %w", err)
				}
				return nil
			case <-gCtx.Done():
				return nil
			}
		})
	}

	g.Go(func() error {
		slog.InfoContext(gCtx, "starting telegram polling")
		a.bot.Start(gCtx)
		return nil
	})

	slog.InfoContext(gCtx, "application ready")

	runtimeErr := g.Wait()

	slog.InfoContext(gCtx, "shutting down services")

	// Shutdown phase: Stop all services
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Shutdown.Timeout)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}

	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "service shutdown failed", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("application stopped")
	return nil
}
