// Command streamkitctl loads a stream spec into a streamkit hub and runs
// it, optionally alongside the inspector HTTP surface and the terminal
// dashboard. Grounded on the teacher's hub/cli package (cobra root with
// a config-path-resolving persistent flag) and runtime/internal/cmd. The
// root command has no action of its own: a subcommand is required.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "streamkitctl",
		Short:         "streamkitctl — run and inspect streamkit agent graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newTUICmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newVersionCmd())

	root.PersistentFlags().StringP("config", "c", "", "path to host config file")
	return root
}

func resolveConfigPath(cmd *cobra.Command, defaultPath string) string {
	if f := cmd.Flag("config"); f != nil && f.Changed {
		return f.Value.String()
	}
	if f := cmd.Root().PersistentFlags().Lookup("config"); f != nil && f.Changed {
		return f.Value.String()
	}
	return defaultPath
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
