// Package cli wires the ledger command line: `ledger serve` and
// `ledger version`.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

var (
	configPath string
	dotenvPath string
)

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Retail bank ledger service",
	Long: `Retail bank ledger: persons, accounts, deposits, withdrawals, transfers
and loans with socioeconomic-rank pricing, served over HTTP.

Without a subcommand the HTTP server is started.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&dotenvPath, "env-file", ".env", "Path to a .env file (ignored if missing)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
