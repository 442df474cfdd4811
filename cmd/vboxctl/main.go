// Vboxctl is a command line utility for Vitrea vBox smart home controllers.
//
// It speaks the vBox control protocol over TCP and provides inventory
// queries (rooms, nodes, keys), key actuation, a live event watcher, an
// interactive monitor, and mDNS discovery of controllers on the local
// network.
//
// Usage:
//
//	vboxctl [command] [flags]
//
// See 'vboxctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vitrealabs/vbox/internal/logging"
	"github.com/vitrealabs/vbox/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vboxctl",
	Short: "Vitrea vBox Control Utility",
	Long: `A command line utility for Vitrea vBox smart home controllers.

Talks to the vBox control channel directly: query rooms, nodes and keys,
switch lights and boilers, watch live status updates, or drive everything
from an interactive monitor.

Connection settings come from flags, falling back to VITREA_VBOX_*
environment variables and stock installation defaults.`,
	Version:      version.Version,
	SilenceUsage: true,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vboxctl %s\n", version.Full())
	},
}
