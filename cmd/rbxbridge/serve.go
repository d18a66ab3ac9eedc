package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rbxbridge/rbxbridge/internal/api"
	"github.com/rbxbridge/rbxbridge/internal/bridge"
	"github.com/rbxbridge/rbxbridge/internal/config"
	"github.com/rbxbridge/rbxbridge/internal/crypto"
	"github.com/rbxbridge/rbxbridge/internal/logger"
	"github.com/rbxbridge/rbxbridge/internal/websocket"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bridge server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :9999, or :$PORT)")
	return cmd
}

func newServer(cfg *config.Config) (*http.Server, error) {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.Writer()

	hub := websocket.NewHub(nil, cfg.AllowedOrigins)
	b := bridge.New(
		bridge.WithNotifier(bridge.Notifiers{bridge.LogNotifier{}, hub}),
		bridge.WithBatchBudget(cfg.BatchBudget),
	)
	hub.Attach(b)

	opts := api.RouterOptions{AllowedOrigins: cfg.AllowedOrigins, Hub: hub}
	if cfg.EditorSecret != "" {
		jwt, err := crypto.NewJWTManager(cfg.EditorSecret)
		if err != nil {
			return nil, fmt.Errorf("create jwt manager: %w", err)
		}
		opts.JWT = jwt
		logger.Infof("Editor API requires a token")
	} else {
		logger.Warnf("No editor secret configured, editor API is unauthenticated")
	}

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(b, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	srv, err := newServer(cfg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("rbxbridge listening on %s (batch budget %d bytes)", cfg.Addr, cfg.BatchBudget)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Infof("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
