package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"pos-migrate/cmd/posmigrate/cmd/check"
	"pos-migrate/cmd/posmigrate/cmd/common"
	"pos-migrate/cmd/posmigrate/cmd/migrate"
	"pos-migrate/cmd/posmigrate/cmd/resetseq"
	"pos-migrate/cmd/posmigrate/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "posmigrate",
	Short: "Move a point-of-sale database from SQLite to PostgreSQL",
	Long: `Move a point-of-sale database from SQLite to PostgreSQL.
- Run migrate to copy the tables
- Run reset-sequences so new rows get keys past the copied ones
- Run check to compare row counts

Connections come from SQLITE_DB_PATH and DATABASE_URL (or POSTGRES_URL),
read from the environment or a .env file.`,
	SilenceUsage:     true,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(migrate.Cmd)
	rootCmd.AddCommand(resetseq.Cmd)
	rootCmd.AddCommand(check.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&common.Opts.Verbose, "verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&common.Opts.SQLitePath, "sqlite", "", "SQLite database file (overrides SQLITE_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&common.Opts.DatabaseURL, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&common.Opts.PlanPath, "plan", "", "YAML migration plan (default: built-in point-of-sale plan)")
}
