// Package cmd wires the Cobra CLI for the preview edge.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dexguide-edge",
		Short: "Link-preview edge for the DexGuide site.",
		Long: `dexguide-edge sits in front of the static DexGuide host and serves
rich link previews to crawler agents: Open Graph HTML for social
unfurlers, rendered PNG cards, and interactive embed pages. Human
traffic passes through to the static assets untouched.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
