package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	exerciseStore "strenly/internal/adapters/storage/exercise"
	programStore "strenly/internal/adapters/storage/program"
	"strenly/internal/application/orchestrators"
	"strenly/internal/domain/exercise"
	"strenly/internal/domain/program"
)

var programsCmd = &cobra.Command{
	Use:   "programs",
	Short: "List and change the status of programs",
}

var programsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the organization's programs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		programs, err := programStore.NewSQLiteStore(a.db).ListPrograms(cmd.Context(), a.owner())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tTEMPLATE\tUPDATED")
		for _, p := range programs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", p.ID, p.Name, p.Status, p.IsTemplate, p.UpdatedAt.Format(time.DateTime))
		}
		return w.Flush()
	},
}

var programsShowCmd = &cobra.Command{
	Use:   "show <program-id>",
	Short: "Print a program's weeks, sessions and rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		org := a.owner()
		p, err := programStore.NewSQLiteStore(a.db).LoadProgramAggregate(cmd.Context(), org, args[0])
		if err != nil {
			return err
		}
		catalog, err := exerciseStore.NewSQLiteStore(a.db).List(cmd.Context(), org)
		if err != nil {
			return err
		}
		names := make(map[string]string, len(catalog))
		for _, ex := range catalog {
			names[ex.ID] = ex.Name
		}
		printProgram(cmd.OutOrStdout(), p, names)
		return nil
	},
}

var programsActivateCmd = &cobra.Command{
	Use:   "activate <program-id>",
	Short: "Move a draft program to active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatusChange(cmd, args[0], orchestrators.ExecuteActivateProgram)
	},
}

var programsArchiveCmd = &cobra.Command{
	Use:   "archive <program-id>",
	Short: "Archive a draft or active program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatusChange(cmd, args[0], orchestrators.ExecuteArchiveProgram)
	},
}

func init() {
	programsCmd.AddCommand(programsListCmd)
	programsCmd.AddCommand(programsShowCmd)
	programsCmd.AddCommand(programsActivateCmd)
	programsCmd.AddCommand(programsArchiveCmd)
}

func printProgram(w io.Writer, p program.Program, names map[string]string) {
	fmt.Fprintf(w, "%s (%s)\n", p.Name, p.Status)
	for _, week := range p.Weeks {
		fmt.Fprintf(w, "%s\n", week.Name)
		for _, sess := range week.Sessions {
			fmt.Fprintf(w, "  %s [%s]\n", sess.Name, sess.ID)
			for _, g := range sess.ExerciseGroups {
				if g.Name != nil {
					fmt.Fprintf(w, "    %s\n", *g.Name)
				}
				for _, item := range g.Items {
					name, ok := names[item.ExerciseID]
					if !ok {
						name = exercise.FallbackName
					}
					indent := "    "
					if item.IsSubRow() {
						indent = "      "
					}
					fmt.Fprintf(w, "%s%s  %s [%s]\n", indent, name, orchestrators.NotationFromSeries(item.Series), item.ID)
				}
			}
		}
	}
}

type statusChange func(ctx context.Context, input orchestrators.ProgramStatusInput, deps orchestrators.ProgramStatusDeps) (program.Program, error)

func runStatusChange(cmd *cobra.Command, programID string, change statusChange) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	input := orchestrators.ProgramStatusInput{Org: a.owner(), ProgramID: programID}
	deps := orchestrators.ProgramStatusDeps{ProgramStore: programStore.NewSQLiteStore(a.db), Now: time.Now}
	p, err := change(cmd.Context(), input, deps)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", p.ID, p.Status)
	return nil
}
