package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"strenly/internal/adapters/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		v, err := storage.SchemaVersion(a.db.RawDB())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s at schema version %d (latest %d)\n", a.cfg.Database.Path, v, storage.LatestSchemaVersion())
		return nil
	},
}
