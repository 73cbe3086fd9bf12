package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/nfrund/propdesk/internal/config"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/logging"
	"github.com/nfrund/propdesk/internal/server"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "propdesk-cli",
	Short: "PropDesk maintenance tool",
	Long: `propdesk-cli runs maintenance tasks against the database configured
through the environment (or a .env file).

Available commands:
  migrate        Create or update the database schema
  create-admin   Open an administrator account
  seed           Load sample developments, professionals and properties
  search         Rank stored properties against a query

Use "propdesk-cli [command] --help" for more information about a specific command.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openRepositories loads the configuration and opens the configured backend.
// Opening a backend also brings its schema up to date.
func openRepositories(ctx context.Context) (config.Provider, *domain.Repositories, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logging.New()

	repos, err := server.OpenRepositories(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, repos, nil
}
