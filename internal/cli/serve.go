package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mbastide/calendis/internal/api"
	"github.com/mbastide/calendis/internal/codec"
	"github.com/mbastide/calendis/internal/config"
	"github.com/mbastide/calendis/internal/engine"
	"github.com/mbastide/calendis/internal/narrate"
	"github.com/mbastide/calendis/internal/truth"
)

// #region serve

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Démarre le serveur HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
}

func runServe(cfg config.Config) error {
	store, err := truth.NewStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	gen := codec.NewClient(codec.DefaultConfig())
	if !gen.Available() {
		log.Printf("[SERVE] generative endpoint not configured, answers stay deterministic")
	}
	eng := engine.New(store, narrate.NewWithClient(gen), engine.DefaultConfig())

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(eng),
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[SERVE] listening on %s", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Printf("[SERVE] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

// #endregion serve
