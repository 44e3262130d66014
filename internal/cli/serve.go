package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/storefront/internal/config"
	"github.com/JonMunkholm/storefront/internal/core"
	"github.com/JonMunkholm/storefront/internal/web"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the storefront JSON API.

Configuration comes from the environment (see .env.example). On SIGINT or
SIGTERM the server stops accepting requests, waits for running imports to
finish and shuts down within SERVER_SHUTDOWN_TIMEOUT.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, cmd)
		},
	}
	return cmd
}

func runServe(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"api_key_required", cfg.Security.RequireAPIKey,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := openPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	service, err := newService(pool, cfg)
	if err != nil {
		return err
	}

	limits := service.ImportLimiterStatus()
	slog.Info("import service ready",
		"failure_policy", service.Policy(),
		"max_concurrent", limits.MaxConcurrent,
		"tx_timeout", cfg.Import.TxTimeout,
		"import_timeout", cfg.Import.Timeout,
	)

	server := web.NewServer(service, cfg, pool)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return WrapExitError(ExitCommandError, "server stopped", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}

	// Imports run inside request handlers, so Shutdown already waits for
	// them; this covers runs whose client has gone away.
	status := service.ImportLimiterStatus()
	if status.Active > 0 {
		slog.Info("waiting for imports to complete", "active", status.Active)
		if err := service.WaitForImports(shutdownCtx); err != nil {
			slog.Warn("imports did not complete in time", "error", err)
		} else {
			slog.Info("all imports completed")
		}
	}

	return nil
}

// newService builds the core service from configuration.
func newService(pool core.DB, cfg *config.Config) (*core.Service, error) {
	service, err := core.NewService(pool, core.Options{
		Policy:               cfg.Import.FailurePolicy,
		KeyColumn:            cfg.Import.KeyColumn,
		TxTimeout:            cfg.Import.TxTimeout,
		ImportTimeout:        cfg.Import.Timeout,
		MaxConcurrentImports: cfg.Import.MaxConcurrent,
		MaxImportWait:        cfg.Import.MaxWaitTime,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "create service", err)
	}
	return service, nil
}
