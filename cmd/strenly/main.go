// Command strenly administers the program store: schema migrations, template
// seeding, program status changes and notation debugging.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"strenly/internal/adapters/storage"
	"strenly/internal/config"
	"strenly/internal/domain/authz"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "strenly",
	Short:         "Strength program store administration",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "strenly.yaml", "Path to the YAML config file")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(notationCmd)
	rootCmd.AddCommand(programsCmd)
	rootCmd.AddCommand(rowsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app holds what every database-backed command needs.
type app struct {
	cfg *config.Config
	db  *storage.TimedDB
}

// openApp loads config, installs the logger and opens a migrated database.
func openApp(stderr io.Writer) (*app, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(newLogger(stderr, cfg.Log))

	raw, err := storage.Open(cfg.Database.Path, cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, err
	}
	if err := storage.MigrateDB(raw); err != nil {
		raw.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &app{cfg: cfg, db: storage.NewTimedDB(raw, cfg.Database.SlowQueryMs)}, nil
}

func (a *app) Close() error {
	stats := a.db.Stats()
	slog.Debug("storage_event", "event", "closed", "queries", stats.Total, "slow_queries", stats.Slow)
	return a.db.Close()
}

// owner is the organization context commands act as.
func (a *app) owner() authz.OrgContext {
	return authz.OrgContext{
		OrganizationID: a.cfg.Seed.OrganizationID,
		UserID:         a.cfg.Seed.UserID,
		Role:           authz.RoleOwner,
	}
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
