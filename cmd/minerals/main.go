// Package main provides the minerals binary: the docket and title-chain
// API server plus offline commands over the same data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "minerals"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Mineral-rights docket and title-chain dashboards",
		Long: `Minerals serves the docket dashboard (application metadata and the
holdings of every party in the unit) and the gated title-chain dashboard
(net royalty acres over uploaded parcel summaries).

Configuration is read from the environment; see DATA_DIR, PARTY_SOURCE
and ACCESS_TOKENS.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(
		serveCmd(&logLevel),
		docketCmd(&logLevel),
		partiesCmd(&logLevel),
		titleChainCmd(&logLevel),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}
