package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/boardagent"
	"github.com/amurg-ai/streamkit/hub"
	"github.com/amurg-ai/streamkit/internal/config"
)

// loadConfig reads path if non-empty, otherwise returns defaults —
// streamkitctl is usable without ever writing a config file to disk.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// newLogger builds the process logger the way the teacher's run command
// does: JSON to stdout by default.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// newHub builds a Hub with the built-in board agents registered and the
// event loop running.
func newHub(logger *slog.Logger) *hub.Hub {
	h := hub.New(logger)
	h.Init(boardagent.DefBoardIn, boardagent.DefBoardOut, boardagent.DefVarIn, boardagent.DefVarOut)
	h.Ready()
	return h
}

// loadStreamSpec reads an agent.AgentStreamSpec from a JSON file.
func loadStreamSpec(path string) (agent.AgentStreamSpec, error) {
	var spec agent.AgentStreamSpec
	data, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("read stream spec: %w", err)
	}
	if err := json.Unmarshal(data, &spec); err != nil {
		return spec, fmt.Errorf("parse stream spec: %w", err)
	}
	return spec, nil
}
