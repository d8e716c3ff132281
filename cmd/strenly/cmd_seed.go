package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	exerciseStore "strenly/internal/adapters/storage/exercise"
	programStore "strenly/internal/adapters/storage/program"
	"strenly/internal/application/orchestrators"
)

var seedOrg string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the exercise catalog and template programs",
	Long: `Seed the curated exercise catalog and the default template programs
into an organization. Organizations that already own programs are skipped.

Seeding is disabled when seed.templates is false (or STRENLY_SEED_TEMPLATES=false).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.cfg.Seed.Templates {
			fmt.Fprintln(cmd.OutOrStdout(), "template seeding disabled")
			return nil
		}

		org := a.owner()
		if seedOrg != "" {
			org.OrganizationID = seedOrg
		}
		deps := orchestrators.SeedTemplatesDeps{
			ProgramStore:  programStore.NewSQLiteStore(a.db),
			ExerciseStore: exerciseStore.NewSQLiteStore(a.db),
			Now:           time.Now,
		}
		if err := orchestrators.ExecuteSeedTemplates(cmd.Context(), orchestrators.SeedTemplatesInput{Org: org}, deps); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded organization %s\n", org.OrganizationID)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedOrg, "org", "", "Organization to seed (default: seed.organization_id)")
}
