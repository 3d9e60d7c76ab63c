// Package cli wires the varuna command tree: serve, migrate and seed.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "varuna",
	Short: "FuelEU maritime compliance balance and settlement service",
	Long: `Varuna tracks maritime fuel-compliance balances under the FuelEU
scheme: it computes per-ship GHG intensity against the yearly regulatory
target, derives compliance balances, banks surplus for future years, applies
banked surplus to deficits, and pools balances across ships.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
