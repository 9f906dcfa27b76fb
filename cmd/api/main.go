// Command api serves the platform's account and administration API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atelierai/platform/version"
)

const serviceName = "api"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configFile, envFile string

	cmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Account and administration API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configFile, envFile)
		},
	}
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: search cmd/api/config.yml, config.yml)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", ".env file to load before the environment")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API until SIGINT or SIGTERM",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context(), configFile, envFile)
			},
		},
		migrateCmd(&configFile, &envFile),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", serviceName, version.Get())
			},
		},
	)
	return cmd
}
