package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Connects to the backend selected by DB_DRIVER and applies the schema:
gorm AutoMigrate for postgres and sqlite, table and index definitions for SurrealDB.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, repos, err := openRepositories(ctx)
		if err != nil {
			return err
		}
		defer repos.Close(ctx)

		fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date (%s)\n", cfg.GetDBDriver())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
