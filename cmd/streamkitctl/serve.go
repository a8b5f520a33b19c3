package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amurg-ai/streamkit/hub"
	"github.com/amurg-ai/streamkit/internal/config"
	"github.com/amurg-ai/streamkit/internal/inspector"
	"github.com/amurg-ai/streamkit/internal/store"
)

// serveInspector starts the inspector HTTP server in the background and
// registers its shutdown with the command's context.
func serveInspector(cmd *cobra.Command, h *hub.Hub, cfg *config.Config, logger *slog.Logger) error {
	st, err := store.New(cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	authSvc, err := inspector.NewService(cfg.Inspector)
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("inspector auth: %w", err)
	}

	srv := inspector.NewServer(h, st, authSvc, cfg.Inspector, logger)

	ctx, cancel := context.WithCancel(context.Background())
	srv.StartBackgroundTasks(ctx)

	ln, err := net.Listen("tcp", cfg.Inspector.ListenAddr)
	if err != nil {
		cancel()
		_ = st.Close()
		return fmt.Errorf("listen on %s: %w", cfg.Inspector.ListenAddr, err)
	}

	httpSrv := &http.Server{Handler: srv.Handler()}
	go func() {
		if err := httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("inspector server stopped", "error", err)
		}
	}()
	logger.Info("inspector listening", "addr", cfg.Inspector.ListenAddr)

	go func() {
		<-cmd.Context().Done()
		cancel()
		_ = httpSrv.Close()
		_ = st.Close()
	}()
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [stream-spec.json]",
		Short: "Run the inspector HTTP/websocket surface, optionally loading a stream",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(resolveConfigPath(cmd, ""))
			if err != nil {
				return err
			}
			if !cfg.Inspector.Enabled {
				cfg.Inspector.Enabled = true
			}

			logger := newLogger()
			h := newHub(logger)
			defer h.Quit()

			if len(args) == 1 {
				spec, err := loadStreamSpec(args[0])
				if err != nil {
					return err
				}
				stream, err := h.AddAgentStream(streamNameFromPath(args[0]), spec)
				if err != nil {
					return fmt.Errorf("add stream: %w", err)
				}
				if err := h.StartAgentStream(stream.ID); err != nil {
					return fmt.Errorf("start stream: %w", err)
				}
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			cmd.SetContext(ctx)

			if err := serveInspector(cmd, h, cfg, logger); err != nil {
				return err
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			return nil
		},
	}
	return cmd
}
