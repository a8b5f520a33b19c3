package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <stream-spec.json>",
		Short: "Load a stream spec and run it until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(resolveConfigPath(cmd, ""))
			if err != nil {
				return err
			}

			spec, err := loadStreamSpec(args[0])
			if err != nil {
				return err
			}

			logger := newLogger()
			h := newHub(logger)
			defer h.Quit()

			stream, err := h.AddAgentStream(streamNameFromPath(args[0]), spec)
			if err != nil {
				return fmt.Errorf("add stream: %w", err)
			}
			if err := h.StartAgentStream(stream.ID); err != nil {
				return fmt.Errorf("start stream: %w", err)
			}
			logger.Info("stream running", "stream_id", stream.ID, "name", stream.Name, "agents", len(stream.AgentIDs))

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			cmd.SetContext(ctx)

			if cfg.Inspector.Enabled {
				if err := serveInspector(cmd, h, cfg, logger); err != nil {
					return err
				}
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

func streamNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
