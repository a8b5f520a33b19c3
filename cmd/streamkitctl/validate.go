package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amurg-ai/streamkit/boardagent"
	"github.com/amurg-ai/streamkit/internal/registry"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <stream-spec.json>",
		Short: "Parse a stream spec and check every agent references a registered definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := loadStreamSpec(args[0])
			if err != nil {
				return err
			}

			reg := registry.New()
			reg.Register(boardagent.DefBoardIn)
			reg.Register(boardagent.DefBoardOut)
			reg.Register(boardagent.DefVarIn)
			reg.Register(boardagent.DefVarOut)

			var problems []string
			for _, a := range spec.Agents {
				if _, err := reg.Get(a.DefName); err != nil {
					problems = append(problems, fmt.Sprintf("agent %q: %v", a.ID, err))
				}
			}
			seen := make(map[string]bool, len(spec.Agents))
			for _, a := range spec.Agents {
				seen[a.ID] = true
			}
			for _, c := range spec.Channels {
				if !seen[c.SourceAgentID] {
					problems = append(problems, fmt.Sprintf("channel references unknown source agent %q", c.SourceAgentID))
				}
				if !seen[c.TargetAgentID] {
					problems = append(problems, fmt.Sprintf("channel references unknown target agent %q", c.TargetAgentID))
				}
			}

			if len(problems) > 0 {
				for _, p := range problems {
					fmt.Fprintln(cmd.OutOrStdout(), "  -", p)
				}
				return fmt.Errorf("%d problem(s) found", len(problems))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d agents, %d channels — OK\n", args[0], len(spec.Agents), len(spec.Channels))
			return nil
		},
	}
}
