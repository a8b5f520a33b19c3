package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/amurg-ai/streamkit/internal/tui"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui <stream-spec.json>",
		Short: "Load a stream spec and watch it run in a live dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := loadStreamSpec(args[0])
			if err != nil {
				return err
			}

			// Hub logging is discarded rather than written to stdout: the
			// dashboard owns the terminal's alt-screen buffer and raw
			// log lines would corrupt it.
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			h := newHub(logger)
			defer h.Quit()

			stream, err := h.AddAgentStream(streamNameFromPath(args[0]), spec)
			if err != nil {
				return fmt.Errorf("add stream: %w", err)
			}
			if err := h.StartAgentStream(stream.ID); err != nil {
				return fmt.Errorf("start stream: %w", err)
			}

			return tui.Run(h)
		},
	}
}
