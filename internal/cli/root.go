// Package cli wires the phantasmad command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "phantasmad",
	Short: "phantasmad - Phantasma chain node in Go",
	Long: `phantasmad runs a Phantasma chain node: the deterministic exchange and
liquidity-pool contracts on top of a pebble-backed state store. It is a
native Go implementation following Go conventions and patterns.`,
	Version: "0.1.0-dev",
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}
