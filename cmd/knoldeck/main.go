package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/conorfennell/knoldeck/internal/app"
	"github.com/conorfennell/knoldeck/internal/config"
	"github.com/conorfennell/knoldeck/internal/logging"
	"github.com/conorfennell/knoldeck/internal/storage"
	"github.com/conorfennell/knoldeck/internal/storage/migrations"
)

var (
	cfg     *config.Config
	cfgFile string
	envFile string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openApp opens the configured store. The caller must defer a.Close().
func openApp(ctx context.Context) (*app.App, error) {
	a, err := app.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:          "knoldeck",
	Short:        "Notes and spaced-repetition decks in a single SQLite file",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(config.Options{
			File:    cfgFile,
			EnvFile: envFile,
			Flags:   cmd.Flags(),
		})
		if err != nil {
			return err
		}
		cfg = loaded

		logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(cmd.Context(), cfg.Database.Path, cfg.Database.BusyTimeout())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migrations.MigrateUp(db.Conn()); err != nil {
			return err
		}
		fmt.Printf("Database %s is up to date\n", cfg.Database.Path)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(cmd.Context(), cfg.Database.Path, cfg.Database.BusyTimeout())
		if err != nil {
			return err
		}
		defer db.Close()

		st, err := migrations.CheckStatus(db.Conn())
		if err != nil {
			return err
		}
		fmt.Printf("Version: %d of %d\n", st.Version, st.Latest)
		if st.Dirty {
			fmt.Println("State:   dirty (a migration failed part way)")
		} else if !st.Current() {
			fmt.Println("State:   pending migrations, run: knoldeck migrate up")
		} else {
			fmt.Println("State:   current")
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "Config file (.toml, .yaml or .yml)")
	pf.StringVar(&envFile, "env-file", "", "Dotenv file (default ./.env when present)")
	pf.String("db", "", "Database file")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("log-format", "", "Log format: auto, text or json")
	pf.String("repos-dir", "", "Directory for git source clones")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address")
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	exportCmd.Flags().Bool("encrypt", false, "Encrypt the export with a passphrase")
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("into", "", "Destination folder path (default: top level)")
	rootCmd.AddCommand(sourceCmd)
	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceSyncCmd)
}
