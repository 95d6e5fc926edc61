package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/simaogato/hearthledger-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/hearthledger-backend/internal/config"
	"github.com/simaogato/hearthledger-backend/internal/logger"
)

var (
	// Global flags
	dbURL      string
	dbDriver   string
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hearthctl",
	Short: "hearthledger operations tool",
	Long: `hearthctl runs maintenance tasks against a hearthledger database.

Commands:
  migrate      - Create or update the database schema
  recalculate  - Re-derive expected balances of an account's checkpoints`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection string (defaults to DB_CONN_STR / DB_* env)")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "driver", postgres.DriverPQ, "Database driver: postgres or pgx")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

func openDB(ctx context.Context) (*postgres.DB, error) {
	connStr := dbURL
	if connStr == "" {
		connStr = config.DatabaseConnString()
	}
	db, err := postgres.NewDB(ctx, dbDriver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func newLogger(w io.Writer) *logrus.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, Format: "text", Output: w})
}
